package models

import "time"

// Link is a single URL stored inside a LinkCollection.
type Link struct {
	ID           uint           `gorm:"primaryKey"`
	CollectionID uint           `gorm:"index;not null"`
	Collection   LinkCollection `gorm:"foreignKey:CollectionID"`
	Title        string         `gorm:"size:50;not null"`
	URL          string         `gorm:"size:256;not null"`
	Description  string         `gorm:"type:text;not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

// OwnedBy is the owner of the parent collection. Collection must be loaded.
func (l Link) OwnedBy() uint { return l.Collection.OwnerID }

// Public follows the parent collection's visibility flag.
func (l Link) Public() bool { return l.Collection.IsPublic }
