package models

import (
	"strings"
	"time"
)

// LinkCollection groups links under a title. Likes and views are counted in
// LikesCount and ViewsCount, which are updated in the same transaction as the
// like/view rows themselves.
type LinkCollection struct {
	ID          uint   `gorm:"primaryKey"`
	OwnerID     uint   `gorm:"index;not null"`
	Owner       User   `gorm:"foreignKey:OwnerID"`
	Title       string `gorm:"size:50;not null"`
	// TitleSearch is SearchKey(Title), kept in sync by the repository.
	// SQLite's LOWER() only folds ASCII, so case folding happens in Go.
	TitleSearch string `gorm:"size:100;not null;default:'';index"`
	Description string `gorm:"type:text;not null"`
	IsPublic    bool   `gorm:"not null;default:false;index"`

	// ShareToken is set only while a share link was generated; ShareExpiresAt
	// bounds its validity.
	ShareToken     *string `gorm:"size:36;uniqueIndex"`
	ShareExpiresAt *time.Time

	LikesCount int64 `gorm:"not null;default:0"`
	ViewsCount int64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Links     []Link                  `gorm:"foreignKey:CollectionID"`
	Thumbnail LinkCollectionThumbnail `gorm:"foreignKey:CollectionID"`
}

// SearchKey is the case-folded form of a title used for search.
func SearchKey(s string) string {
	return strings.ToLower(s)
}

// OwnedBy returns the id of the collection owner.
func (c LinkCollection) OwnedBy() uint { return c.OwnerID }

// Public reports whether the collection is readable by anyone.
func (c LinkCollection) Public() bool { return c.IsPublic }

// IsExpired reports whether the share link is unusable at the given instant.
// A collection that never had a share link is always expired.
func (c LinkCollection) IsExpired(now time.Time) bool {
	return c.ShareExpiresAt == nil || c.ShareExpiresAt.Before(now)
}

// HasLiveShareLink reports whether a token exists and has not expired.
func (c LinkCollection) HasLiveShareLink(now time.Time) bool {
	return c.ShareToken != nil && !c.IsExpired(now)
}

// LinkCollectionThumbnail holds the cover image of a collection. One row is
// created with every collection, possibly with a nil ImageURL.
type LinkCollectionThumbnail struct {
	ID           uint    `gorm:"primaryKey"`
	CollectionID uint    `gorm:"uniqueIndex;not null"`
	ImageURL     *string `gorm:"size:256"`
}
