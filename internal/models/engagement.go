package models

import "time"

// LinkCollectionLike records that Liker liked Collection. At most one row
// exists per (collection, liker) pair.
type LinkCollectionLike struct {
	ID           uint      `gorm:"primaryKey"`
	CollectionID uint      `gorm:"not null;uniqueIndex:idx_like_collection_liker,priority:1"`
	LikerID      uint      `gorm:"not null;index;uniqueIndex:idx_like_collection_liker,priority:2"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// LinkCollectionView records the first visit of Viewer on Collection.
// Repeat visits do not create new rows.
type LinkCollectionView struct {
	ID           uint      `gorm:"primaryKey"`
	CollectionID uint      `gorm:"not null;uniqueIndex:idx_view_collection_viewer,priority:1"`
	ViewerID     uint      `gorm:"not null;index;uniqueIndex:idx_view_collection_viewer,priority:2"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&User{},
		&UserAvatar{},
		&Bookmark{},
		&LinkCollection{},
		&LinkCollectionThumbnail{},
		&Link{},
		&BookmarkCollection{},
		&LinkCollectionLike{},
		&LinkCollectionView{},
	}
}
