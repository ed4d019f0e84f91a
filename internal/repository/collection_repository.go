package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/axellelanca/linkshelf/internal/models"
)

// CollectionRepository defines data access for link collections and the rows
// that hang off them (thumbnails, likes, views, bookmark memberships).
type CollectionRepository interface {
	CreateCollection(ctx context.Context, c *models.LinkCollection, thumbnailURL *string) error
	GetCollection(ctx context.Context, id uint) (*models.LinkCollection, error)
	GetCollectionByShareToken(ctx context.Context, token string) (*models.LinkCollection, error)
	UpdateCollection(ctx context.Context, c *models.LinkCollection) error
	SetThumbnailURL(ctx context.Context, collectionID uint, imageURL string) (*string, error)
	DeleteCollection(ctx context.Context, id uint) error
	ListByOwner(ctx context.Context, ownerID uint) ([]models.LinkCollection, error)

	QueryFeed(ctx context.Context, f FeedFilter) ([]models.LinkCollection, int64, error)
	LikedAmong(ctx context.Context, likerID uint, ids []uint) ([]uint, error)
	BookmarkedAmong(ctx context.Context, bookmarkID uint, ids []uint) ([]uint, error)

	ToggleLike(ctx context.Context, collectionID, likerID uint) (bool, error)
	ToggleBookmark(ctx context.Context, bookmarkID, collectionID uint) (bool, error)
	RecordView(ctx context.Context, collectionID, viewerID uint) (bool, error)

	IssueShareToken(ctx context.Context, id uint, candidate string, expiresAt, now time.Time) (string, bool, error)
	ClearShareToken(ctx context.Context, id uint) error
}

// GormCollectionRepository is the GORM implementation of CollectionRepository.
type GormCollectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository creates a GormCollectionRepository.
func NewCollectionRepository(db *gorm.DB) *GormCollectionRepository {
	return &GormCollectionRepository{db: db}
}

// withDetails preloads what a collection payload renders.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Owner").
		Preload("Thumbnail").
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("links.id ASC") })
}

// CreateCollection inserts c and its thumbnail row in one transaction.
func (r *GormCollectionRepository) CreateCollection(ctx context.Context, c *models.LinkCollection, thumbnailURL *string) error {
	c.TitleSearch = models.SearchKey(c.Title)
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return err
		}
		c.Thumbnail = models.LinkCollectionThumbnail{CollectionID: c.ID, ImageURL: thumbnailURL}
		return tx.Create(&c.Thumbnail).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", translate(err))
	}
	return nil
}

// GetCollection loads a collection with owner, thumbnail and links.
func (r *GormCollectionRepository) GetCollection(ctx context.Context, id uint) (*models.LinkCollection, error) {
	var c models.LinkCollection
	if err := withDetails(conn(ctx, r.db)).First(&c, id).Error; err != nil {
		return nil, notFound(err, "collection", id)
	}
	return &c, nil
}

// GetCollectionByShareToken loads the collection carrying token, expired or not.
func (r *GormCollectionRepository) GetCollectionByShareToken(ctx context.Context, token string) (*models.LinkCollection, error) {
	var c models.LinkCollection
	if err := withDetails(conn(ctx, r.db)).Where("share_token = ?", token).First(&c).Error; err != nil {
		return nil, notFound(err, "share link", nil)
	}
	return &c, nil
}

// UpdateCollection writes the editable columns of c.
func (r *GormCollectionRepository) UpdateCollection(ctx context.Context, c *models.LinkCollection) error {
	res := conn(ctx, r.db).Model(&models.LinkCollection{ID: c.ID}).Updates(map[string]any{
		"title":        c.Title,
		"title_search": models.SearchKey(c.Title),
		"description":  c.Description,
		"is_public":    c.IsPublic,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "collection", c.ID)
	}
	return nil
}

// SetThumbnailURL replaces the thumbnail url and returns the previous one.
func (r *GormCollectionRepository) SetThumbnailURL(ctx context.Context, collectionID uint, imageURL string) (*string, error) {
	var previous *string
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var thumb models.LinkCollectionThumbnail
		if err := tx.Where(models.LinkCollectionThumbnail{CollectionID: collectionID}).FirstOrCreate(&thumb).Error; err != nil {
			return err
		}
		previous = thumb.ImageURL
		return tx.Model(&thumb).Update("image_url", imageURL).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return previous, nil
}

// DeleteCollection removes a collection and every row that depends on it.
func (r *GormCollectionRepository) DeleteCollection(ctx context.Context, id uint) error {
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		dependents := []struct {
			model  any
			column string
		}{
			{&models.Link{}, "collection_id"},
			{&models.LinkCollectionLike{}, "collection_id"},
			{&models.LinkCollectionView{}, "collection_id"},
			{&models.LinkCollectionThumbnail{}, "collection_id"},
			{&models.BookmarkCollection{}, "link_collection_id"},
		}
		for _, d := range dependents {
			if err := tx.Where(d.column+" = ?", id).Delete(d.model).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.LinkCollection{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return notFound(err, "collection", id)
	}
	return nil
}

// ListByOwner returns every collection of ownerID, newest first.
func (r *GormCollectionRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.LinkCollection, error) {
	var out []models.LinkCollection
	err := withDetails(conn(ctx, r.db)).
		Where("owner_id = ?", ownerID).
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// LikedAmong returns the subset of ids that likerID has liked.
func (r *GormCollectionRepository) LikedAmong(ctx context.Context, likerID uint, ids []uint) ([]uint, error) {
	if likerID == 0 || len(ids) == 0 {
		return nil, nil
	}
	var out []uint
	err := conn(ctx, r.db).Model(&models.LinkCollectionLike{}).
		Where("liker_id = ? AND collection_id IN ?", likerID, ids).
		Pluck("collection_id", &out).Error
	return out, translate(err)
}

// BookmarkedAmong returns the subset of ids that are in bookmarkID.
func (r *GormCollectionRepository) BookmarkedAmong(ctx context.Context, bookmarkID uint, ids []uint) ([]uint, error) {
	if bookmarkID == 0 || len(ids) == 0 {
		return nil, nil
	}
	var out []uint
	err := conn(ctx, r.db).Model(&models.BookmarkCollection{}).
		Where("bookmark_id = ? AND link_collection_id IN ?", bookmarkID, ids).
		Pluck("link_collection_id", &out).Error
	return out, translate(err)
}

// ToggleLike flips the presence of the (collection, liker) like and keeps
// likes_count in step. It returns true when the like now exists.
//
// The delete runs first; only when nothing was deleted is an insert attempted,
// and the unique index turns a concurrent duplicate insert into a no-op.
func (r *GormCollectionRepository) ToggleLike(ctx context.Context, collectionID, likerID uint) (bool, error) {
	var created bool
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("collection_id = ? AND liker_id = ?", collectionID, likerID).
			Delete(&models.LinkCollectionLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return bumpCounter(tx, collectionID, "likes_count", -res.RowsAffected)
		}

		created = true
		like := models.LinkCollectionLike{CollectionID: collectionID, LikerID: likerID}
		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return bumpCounter(tx, collectionID, "likes_count", 1)
	})
	if err != nil {
		return false, translate(err)
	}
	return created, nil
}

// ToggleBookmark flips membership of collectionID in bookmarkID. It returns
// true when the collection is now bookmarked.
func (r *GormCollectionRepository) ToggleBookmark(ctx context.Context, bookmarkID, collectionID uint) (bool, error) {
	var added bool
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("bookmark_id = ? AND link_collection_id = ?", bookmarkID, collectionID).
			Delete(&models.BookmarkCollection{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		added = true
		row := models.BookmarkCollection{BookmarkID: bookmarkID, LinkCollectionID: collectionID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	})
	if err != nil {
		return false, translate(err)
	}
	return added, nil
}

// RecordView stores the first visit of viewerID on collectionID. Later visits
// are ignored. It returns true when a new view was recorded.
func (r *GormCollectionRepository) RecordView(ctx context.Context, collectionID, viewerID uint) (bool, error) {
	var recorded bool
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var exists models.LinkCollection
		if err := tx.Select("id").First(&exists, collectionID).Error; err != nil {
			return err
		}
		view := models.LinkCollectionView{CollectionID: collectionID, ViewerID: viewerID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&view)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		recorded = true
		return bumpCounter(tx, collectionID, "views_count", 1)
	})
	if err != nil {
		return false, notFound(err, "collection", collectionID)
	}
	return recorded, nil
}

// IssueShareToken makes sure collection id carries a live share token expiring
// at expiresAt. If the current token is missing or expired at now, candidate
// replaces it (minted == true); otherwise the live token is kept and only its
// expiry moves. The replacement is a conditional update, so two concurrent
// callers cannot both mint.
func (r *GormCollectionRepository) IssueShareToken(ctx context.Context, id uint, candidate string, expiresAt, now time.Time) (string, bool, error) {
	var (
		token  string
		minted bool
	)
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.LinkCollection{}).
			Where("id = ? AND (share_token IS NULL OR share_expires_at IS NULL OR share_expires_at < ?)", id, now).
			Updates(map[string]any{"share_token": candidate, "share_expires_at": expiresAt})
		if res.Error != nil {
			return res.Error
		}
		minted = res.RowsAffected > 0
		if !minted {
			if err := tx.Model(&models.LinkCollection{}).Where("id = ?", id).
				Update("share_expires_at", expiresAt).Error; err != nil {
				return err
			}
		}

		var c models.LinkCollection
		if err := tx.Select("id", "share_token").First(&c, id).Error; err != nil {
			return err
		}
		if c.ShareToken == nil {
			return errors.New("share token missing after update")
		}
		token = *c.ShareToken
		return nil
	})
	if err != nil {
		return "", false, notFound(err, "collection", id)
	}
	return token, minted, nil
}

// ClearShareToken removes both the share token and its expiry.
func (r *GormCollectionRepository) ClearShareToken(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Model(&models.LinkCollection{}).Where("id = ?", id).
		Updates(map[string]any{"share_token": nil, "share_expires_at": nil})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "collection", id)
	}
	return nil
}

func bumpCounter(tx *gorm.DB, collectionID uint, column string, delta int64) error {
	return tx.Model(&models.LinkCollection{}).
		Where("id = ?", collectionID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}
