package models

import "time"

// User is a local account created from the identity provider profile.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"size:150;uniqueIndex;not null"`
	Email     string `gorm:"size:254;uniqueIndex;not null"`
	IsStaff   bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Avatar   UserAvatar `gorm:"foreignKey:UserID"`
	Bookmark Bookmark   `gorm:"foreignKey:UserID"`
}

// UserAvatar is created empty together with its user.
type UserAvatar struct {
	ID       uint    `gorm:"primaryKey"`
	UserID   uint    `gorm:"uniqueIndex;not null"`
	ImageURL *string `gorm:"size:256"`
}

// Bookmark is the per-user list of saved collections. Every user owns exactly one.
type Bookmark struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"uniqueIndex;not null"`
}

// OwnedBy returns the bookmark owner.
func (b Bookmark) OwnedBy() uint { return b.UserID }

// Public is always false: a bookmark list is only visible to its owner.
func (b Bookmark) Public() bool { return false }

// BookmarkCollection is the membership row between a bookmark and a collection.
type BookmarkCollection struct {
	BookmarkID       uint      `gorm:"primaryKey"`
	LinkCollectionID uint      `gorm:"primaryKey;index"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

// Viewer identifies who is making a request. The zero value is anonymous.
type Viewer struct {
	UserID uint
}

// Anonymous reports whether the request carries no identity.
func (v Viewer) Anonymous() bool { return v.UserID == 0 }
