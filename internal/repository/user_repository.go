package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/axellelanca/linkshelf/internal/models"
)

// UserRepository defines data access for users, avatars and bookmarks.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error)
	UpdateUsername(ctx context.Context, id uint, username string) error
	SetAvatarURL(ctx context.Context, userID uint, imageURL string) (*string, error)
	GetBookmark(ctx context.Context, userID uint) (*models.Bookmark, error)
	CountUsers(ctx context.Context) (int64, error)
}

// GormUserRepository is the GORM implementation of UserRepository.
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a GormUserRepository.
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// CreateUser inserts the user together with its empty Bookmark and Avatar,
// so that every stored user owns exactly one of each.
func (r *GormUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}
		user.Bookmark = models.Bookmark{UserID: user.ID}
		if err := tx.Create(&user.Bookmark).Error; err != nil {
			return err
		}
		user.Avatar = models.UserAvatar{UserID: user.ID}
		return tx.Create(&user.Avatar).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create user %q: %w", user.Username, translate(err))
	}
	return nil
}

// GetUserByID loads a user with its avatar.
func (r *GormUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Preload("Avatar").First(&user, id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &user, nil
}

// GetUserByEmail loads a user with its avatar by email address.
func (r *GormUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Preload("Avatar").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, "user", email)
	}
	return &user, nil
}

// UsernameTaken reports whether another user (not excludeID) uses username.
func (r *GormUserRepository) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.User{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// UpdateUsername renames a user.
func (r *GormUserRepository) UpdateUsername(ctx context.Context, id uint, username string) error {
	res := conn(ctx, r.db).Model(&models.User{ID: id}).Update("username", username)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "user", id)
	}
	return nil
}

// SetAvatarURL stores a new avatar url, creating the avatar row if needed, and
// returns the previous url (nil when there was none).
func (r *GormUserRepository) SetAvatarURL(ctx context.Context, userID uint, imageURL string) (*string, error) {
	var previous *string
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var avatar models.UserAvatar
		if err := tx.Where(models.UserAvatar{UserID: userID}).FirstOrCreate(&avatar).Error; err != nil {
			return err
		}
		previous = avatar.ImageURL
		return tx.Model(&avatar).Update("image_url", imageURL).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return previous, nil
}

// GetBookmark returns the bookmark owned by userID.
func (r *GormUserRepository) GetBookmark(ctx context.Context, userID uint) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	if err := conn(ctx, r.db).Where("user_id = ?", userID).First(&bookmark).Error; err != nil {
		return nil, notFound(err, "bookmark", userID)
	}
	return &bookmark, nil
}

// CountUsers returns the number of registered users.
func (r *GormUserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}
