package models

import "time"

// OwnerDTO is the public projection of a user embedded in collection payloads.
type OwnerDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

// ImageDTO wraps an optional image url (thumbnail, avatar).
type ImageDTO struct {
	ImageURL *string `json:"image_url"`
}

// LinkDTO is the API representation of a Link.
type LinkDTO struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Description  string    `json:"description"`
	CollectionID uint      `json:"collection"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CollectionDTO is a collection as seen by one viewer: counters plus the
// viewer-specific is_liked / is_bookmarked flags.
type CollectionDTO struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Owner           OwnerDTO   `json:"owner"`
	Description     string     `json:"description"`
	IsPublic        bool       `json:"is_public"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Links           []LinkDTO  `json:"links"`
	IsBookmarked    bool       `json:"is_bookmarked"`
	IsLiked         bool       `json:"is_liked"`
	TotalLikes      int64      `json:"total_likes"`
	ViewCounts      int64      `json:"view_counts"`
	ActiveShareLink *string    `json:"active_share_link"`
	ExpireDate      *time.Time `json:"expire_date"`
	Thumbnail       ImageDTO   `json:"thumbnail"`
}

// UserInfoDTO is returned by the /users/me endpoints.
type UserInfoDTO struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	IsStaff  bool     `json:"is_staff"`
	Avatar   ImageDTO `json:"avatar"`
}

// Page is one page of a paginated listing. Next and Previous are page
// numbers, nil at either end.
type Page[T any] struct {
	Count    int64 `json:"count"`
	Next     *int  `json:"next"`
	Previous *int  `json:"previous"`
	Results  []T   `json:"results"`
}

// NewLinkDTO converts a stored link.
func NewLinkDTO(l Link) LinkDTO {
	return LinkDTO{
		ID:           l.ID,
		Title:        l.Title,
		URL:          l.URL,
		Description:  l.Description,
		CollectionID: l.CollectionID,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// NewUserInfoDTO converts a user with its avatar loaded.
func NewUserInfoDTO(u User) UserInfoDTO {
	return UserInfoDTO{
		Username: u.Username,
		Email:    u.Email,
		IsStaff:  u.IsStaff,
		Avatar:   ImageDTO{ImageURL: u.Avatar.ImageURL},
	}
}
