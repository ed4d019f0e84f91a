package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/axellelanca/linkshelf/internal/models"
)

// LinkRepository defines data access for links.
type LinkRepository interface {
	CreateLinks(ctx context.Context, links []models.Link) error
	GetLink(ctx context.Context, id uint) (*models.Link, error)
	GetLinksByIDs(ctx context.Context, ids []uint) ([]models.Link, error)
	UpdateLink(ctx context.Context, id uint, changes map[string]any) error
	DeleteLinks(ctx context.Context, ids []uint) error
	GetAllLinks(ctx context.Context) ([]models.Link, error)
}

// GormLinkRepository is the GORM implementation of LinkRepository.
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository creates a GormLinkRepository.
func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// CreateLinks inserts links in a single statement and fills their ids.
func (r *GormLinkRepository) CreateLinks(ctx context.Context, links []models.Link) error {
	if len(links) == 0 {
		return nil
	}
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(&links).Error; err != nil {
		return fmt.Errorf("failed to create links: %w", translate(err))
	}
	return nil
}

// GetLink loads a link with its parent collection.
func (r *GormLinkRepository) GetLink(ctx context.Context, id uint) (*models.Link, error) {
	var link models.Link
	if err := conn(ctx, r.db).Preload("Collection").First(&link, id).Error; err != nil {
		return nil, notFound(err, "link", id)
	}
	return &link, nil
}

// GetLinksByIDs loads links with their parent collections. Missing ids are
// reported as a NotFoundError naming the first one.
func (r *GormLinkRepository) GetLinksByIDs(ctx context.Context, ids []uint) ([]models.Link, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var links []models.Link
	if err := conn(ctx, r.db).Preload("Collection").Where("id IN ?", ids).Find(&links).Error; err != nil {
		return nil, translate(err)
	}
	found := make(map[uint]bool, len(links))
	for _, l := range links {
		found[l.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, notFound(gorm.ErrRecordNotFound, "link", id)
		}
	}
	return links, nil
}

// UpdateLink applies column changes to one link.
func (r *GormLinkRepository) UpdateLink(ctx context.Context, id uint, changes map[string]any) error {
	res := conn(ctx, r.db).Model(&models.Link{ID: id}).Updates(changes)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "link", id)
	}
	return nil
}

// DeleteLinks removes links by id. Every id must exist, otherwise nothing is
// deleted.
func (r *GormLinkRepository) DeleteLinks(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id IN ?", ids).Delete(&models.Link{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(uniqueIDs(ids))) {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return notFound(err, "link", nil)
	}
	return nil
}

// GetAllLinks returns every stored link. Used by the link health monitor.
func (r *GormLinkRepository) GetAllLinks(ctx context.Context) ([]models.Link, error) {
	var links []models.Link
	if err := conn(ctx, r.db).Order("id ASC").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve all links: %w", translate(err))
	}
	return links, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
