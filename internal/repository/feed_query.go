package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/axellelanca/linkshelf/internal/models"
)

// FeedFilter selects one page of collections.
type FeedFilter struct {
	Scope models.FeedScope
	// ViewerID is 0 for anonymous viewers.
	ViewerID uint
	// BookmarkID is required for ScopeBookmarked.
	BookmarkID uint
	Search     string
	Sort       models.FeedSort
	Offset     int
	Limit      int
}

// likeEscaper escapes LIKE wildcards with '!' so the pattern works on both
// SQLite and MySQL (backslash is a string escape in MySQL literals).
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// QueryFeed returns the requested page and the total number of matching rows.
// The page is loaded with a fixed number of queries whatever its size: one
// count, one select, and one per preloaded association.
func (r *GormCollectionRepository) QueryFeed(ctx context.Context, f FeedFilter) ([]models.LinkCollection, int64, error) {
	base := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&models.LinkCollection{})
		switch f.Scope {
		case models.ScopeOwned:
			q = q.Where("link_collections.owner_id = ?", f.ViewerID)
		case models.ScopeBookmarked:
			// A bookmarked collection made private since stays hidden.
			q = q.Joins("JOIN bookmark_collections ON bookmark_collections.link_collection_id = link_collections.id").
				Where("bookmark_collections.bookmark_id = ?", f.BookmarkID).
				Where("(link_collections.is_public = ? OR link_collections.owner_id = ?)", true, f.ViewerID)
		default:
			if f.ViewerID == 0 {
				q = q.Where("link_collections.is_public = ?", true)
			} else {
				q = q.Where("(link_collections.is_public = ? OR link_collections.owner_id = ?)", true, f.ViewerID)
			}
		}
		if f.Search != "" {
			pattern := "%" + likeEscaper.Replace(models.SearchKey(f.Search)) + "%"
			q = q.Where("link_collections.title_search LIKE ? ESCAPE '!'", pattern)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var page []models.LinkCollection
	err := withDetails(base()).
		Select("link_collections.*").
		Order(feedOrder(f.Sort)).
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&page).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return page, total, nil
}

func feedOrder(sort models.FeedSort) string {
	switch sort {
	case models.SortLikes:
		return "link_collections.likes_count DESC, link_collections.id DESC"
	case models.SortViews:
		return "link_collections.views_count DESC, link_collections.id DESC"
	default:
		return "link_collections.id DESC"
	}
}
