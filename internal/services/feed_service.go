package services

import (
	"context"
	"math"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/axellelanca/linkshelf/internal/repository"
)

// FeedQuery selects one page of a feed. Page is 1-based.
type FeedQuery struct {
	Scope  models.FeedScope
	Search string
	Sort   models.FeedSort
	Page   int
}

// BuildFeed returns one page of collections for the viewer, annotated with
// counters and viewer flags. The number of queries does not depend on the
// page size.
func (s *CollectionService) BuildFeed(ctx context.Context, viewer models.Viewer, q FeedQuery) (*models.Page[models.CollectionDTO], error) {
	if q.Page < 1 {
		return nil, apperrors.ValidationError{Field: "page", Reason: "must be a positive integer"}
	}
	// Past this the offset overflows; no feed is that long.
	if q.Page > math.MaxInt32/s.pageSize {
		return nil, apperrors.NotFoundError{Resource: "page", ID: q.Page}
	}

	filter := repository.FeedFilter{
		Scope:    q.Scope,
		ViewerID: viewer.UserID,
		Search:   q.Search,
		Sort:     q.Sort,
		Offset:   (q.Page - 1) * s.pageSize,
		Limit:    s.pageSize,
	}
	switch q.Scope {
	case models.ScopeOwned:
		if err := requireLogin(viewer); err != nil {
			return nil, err
		}
	case models.ScopeBookmarked:
		if err := requireLogin(viewer); err != nil {
			return nil, err
		}
		bookmark, err := s.users.GetBookmark(ctx, viewer.UserID)
		if err != nil {
			return nil, err
		}
		filter.BookmarkID = bookmark.ID
	}

	rows, total, err := s.collections.QueryFeed(ctx, filter)
	if err != nil {
		return nil, err
	}
	if q.Page > 1 && int64(filter.Offset) >= total {
		return nil, apperrors.NotFoundError{Resource: "page", ID: q.Page}
	}

	results, err := s.annotate(ctx, viewer, rows)
	if err != nil {
		return nil, err
	}

	page := &models.Page[models.CollectionDTO]{Count: total, Results: results}
	if int64(q.Page)*int64(s.pageSize) < total {
		next := q.Page + 1
		page.Next = &next
	}
	if q.Page > 1 {
		prev := q.Page - 1
		page.Previous = &prev
	}
	return page, nil
}
