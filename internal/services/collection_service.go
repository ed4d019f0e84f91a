package services

import (
	"context"
	"time"

	"github.com/axellelanca/linkshelf/internal/logging"
	"github.com/axellelanca/linkshelf/internal/metrics"
	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/axellelanca/linkshelf/internal/policy"
	"github.com/axellelanca/linkshelf/internal/repository"
	"github.com/axellelanca/linkshelf/internal/storage"
	"github.com/axellelanca/linkshelf/internal/validation"
)

// CollectionInput is the editable part of a collection. Update replaces every
// field; a nil ThumbnailImageURL keeps the current thumbnail.
type CollectionInput struct {
	Title             string  `json:"title" validate:"required,max=50"`
	Description       string  `json:"description"`
	IsPublic          bool    `json:"is_public"`
	ThumbnailImageURL *string `json:"thumbnail_image_url" validate:"omitempty,url,max=256"`
}

// CollectionService implements collection CRUD, feeds, toggles and share links.
type CollectionService struct {
	collections repository.CollectionRepository
	users       repository.UserRepository
	tx          repository.TxManager
	tasks       TaskDispatcher
	objects     ObjectStorage
	pageSize    int
	baseURL     string
	now         Clock
}

// NewCollectionService wires a CollectionService. objects may be nil when no
// object storage is configured.
func NewCollectionService(
	collections repository.CollectionRepository,
	users repository.UserRepository,
	tx repository.TxManager,
	tasks TaskDispatcher,
	objects ObjectStorage,
	pageSize int,
	baseURL string,
) *CollectionService {
	return &CollectionService{
		collections: collections,
		users:       users,
		tx:          tx,
		tasks:       tasks,
		objects:     objects,
		pageSize:    pageSize,
		baseURL:     baseURL,
		now:         utcNow,
	}
}

// Create stores a new collection owned by the viewer.
func (s *CollectionService) Create(ctx context.Context, viewer models.Viewer, in CollectionInput) (*models.CollectionDTO, error) {
	if err := requireLogin(viewer); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct("", in); err != nil {
		return nil, err
	}
	c := &models.LinkCollection{
		OwnerID:     viewer.UserID,
		Title:       in.Title,
		Description: in.Description,
		IsPublic:    in.IsPublic,
	}
	if err := s.collections.CreateCollection(ctx, c, in.ThumbnailImageURL); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Uint("collection_id", c.ID).Uint("owner_id", c.OwnerID).Msg("Collection created")
	return s.view(ctx, viewer, c.ID)
}

// Get returns one collection the viewer may read. Signed-in readers get a
// view recorded in the background.
func (s *CollectionService) Get(ctx context.Context, viewer models.Viewer, id uint) (*models.CollectionDTO, error) {
	c, err := s.collections.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckRead(viewer, c); err != nil {
		return nil, err
	}
	if !viewer.Anonymous() {
		s.tasks.DispatchRecordView(c.ID, viewer.UserID)
	}
	out, err := s.annotate(ctx, viewer, []models.LinkCollection{*c})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Update replaces the editable fields. A replaced thumbnail object is removed
// once the change is committed.
func (s *CollectionService) Update(ctx context.Context, viewer models.Viewer, id uint, in CollectionInput) (*models.CollectionDTO, error) {
	if err := requireLogin(viewer); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct("", in); err != nil {
		return nil, err
	}

	var previous *string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.collections.GetCollection(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.CheckWrite(viewer, c); err != nil {
			return err
		}
		c.Title, c.Description, c.IsPublic = in.Title, in.Description, in.IsPublic
		if err := s.collections.UpdateCollection(ctx, c); err != nil {
			return err
		}
		if in.ThumbnailImageURL != nil {
			previous, err = s.collections.SetThumbnailURL(ctx, id, *in.ThumbnailImageURL)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if in.ThumbnailImageURL != nil {
		cleanupReplaced(s.tasks, s.objects, previous, *in.ThumbnailImageURL)
	}
	return s.view(ctx, viewer, id)
}

// Delete removes a collection owned by the viewer together with its links.
func (s *CollectionService) Delete(ctx context.Context, viewer models.Viewer, id uint) error {
	if err := requireLogin(viewer); err != nil {
		return err
	}
	var thumbnail *string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.collections.GetCollection(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.CheckWrite(viewer, c); err != nil {
			return err
		}
		thumbnail = c.Thumbnail.ImageURL
		return s.collections.DeleteCollection(ctx, id)
	})
	if err != nil {
		return err
	}
	cleanupReplaced(s.tasks, s.objects, thumbnail, "")
	logging.Ctx(ctx).Info().Uint("collection_id", id).Msg("Collection deleted")
	return nil
}

// ListOwned returns every collection of the viewer, newest first.
func (s *CollectionService) ListOwned(ctx context.Context, viewer models.Viewer) ([]models.CollectionDTO, error) {
	if err := requireLogin(viewer); err != nil {
		return nil, err
	}
	rows, err := s.collections.ListByOwner(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, viewer, rows)
}

// ToggleLike flips the viewer's like on a collection and reports whether the
// like now exists.
func (s *CollectionService) ToggleLike(ctx context.Context, viewer models.Viewer, id uint) (bool, error) {
	if viewer.Anonymous() {
		return false, policy.CheckLike(viewer, models.LinkCollection{})
	}
	var created bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.collections.GetCollection(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.CheckLike(viewer, *c); err != nil {
			return err
		}
		created, err = s.collections.ToggleLike(ctx, id, viewer.UserID)
		return err
	})
	if err != nil {
		return false, err
	}
	metrics.CollectionToggles.WithLabelValues("like", toggleResult(created)).Inc()
	return created, nil
}

// ToggleBookmark flips membership of a readable collection in the viewer's
// bookmark and reports whether it is now bookmarked.
func (s *CollectionService) ToggleBookmark(ctx context.Context, viewer models.Viewer, id uint) (bool, error) {
	if err := requireLogin(viewer); err != nil {
		return false, err
	}
	var added bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.collections.GetCollection(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.CheckRead(viewer, c); err != nil {
			return err
		}
		bookmark, err := s.users.GetBookmark(ctx, viewer.UserID)
		if err != nil {
			return err
		}
		if err := policy.CheckWrite(viewer, bookmark); err != nil {
			return err
		}
		added, err = s.collections.ToggleBookmark(ctx, bookmark.ID, id)
		return err
	})
	if err != nil {
		return false, err
	}
	metrics.CollectionToggles.WithLabelValues("bookmark", toggleResult(added)).Inc()
	return added, nil
}

// PresignThumbnail returns an upload url for a collection thumbnail.
func (s *CollectionService) PresignThumbnail(ctx context.Context, viewer models.Viewer, req UploadRequest) (storage.Upload, error) {
	if err := requireLogin(viewer); err != nil {
		return storage.Upload{}, err
	}
	if err := validation.ValidateStruct("", req); err != nil {
		return storage.Upload{}, err
	}
	if s.objects == nil {
		return storage.Upload{}, errNoObjectStorage
	}
	return s.objects.PresignUpload(ctx, storage.PrefixThumbnails, req.FileName, req.FileType)
}

func (s *CollectionService) view(ctx context.Context, viewer models.Viewer, id uint) (*models.CollectionDTO, error) {
	c, err := s.collections.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.annotate(ctx, viewer, []models.LinkCollection{*c})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// annotate converts rows and fills the viewer flags with one query each.
func (s *CollectionService) annotate(ctx context.Context, viewer models.Viewer, rows []models.LinkCollection) ([]models.CollectionDTO, error) {
	ids := make([]uint, len(rows))
	for i, c := range rows {
		ids[i] = c.ID
	}

	liked, bookmarked := map[uint]bool{}, map[uint]bool{}
	if !viewer.Anonymous() && len(rows) > 0 {
		likedIDs, err := s.collections.LikedAmong(ctx, viewer.UserID, ids)
		if err != nil {
			return nil, err
		}
		bookmark, err := s.users.GetBookmark(ctx, viewer.UserID)
		if err != nil {
			return nil, err
		}
		bookmarkedIDs, err := s.collections.BookmarkedAmong(ctx, bookmark.ID, ids)
		if err != nil {
			return nil, err
		}
		liked, bookmarked = idSet(likedIDs), idSet(bookmarkedIDs)
	}

	now := s.now()
	out := make([]models.CollectionDTO, len(rows))
	for i, c := range rows {
		out[i] = s.toDTO(c, liked[c.ID], bookmarked[c.ID], now)
	}
	return out, nil
}

func (s *CollectionService) toDTO(c models.LinkCollection, liked, bookmarked bool, now time.Time) models.CollectionDTO {
	links := make([]models.LinkDTO, len(c.Links))
	for i, l := range c.Links {
		links[i] = models.NewLinkDTO(l)
	}
	dto := models.CollectionDTO{
		ID:    c.ID,
		Title: c.Title,
		Owner: models.OwnerDTO{
			Username: c.Owner.Username,
			Email:    c.Owner.Email,
			IsStaff:  c.Owner.IsStaff,
		},
		Description:  c.Description,
		IsPublic:     c.IsPublic,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Links:        links,
		IsLiked:      liked,
		IsBookmarked: bookmarked,
		TotalLikes:   c.LikesCount,
		ViewCounts:   c.ViewsCount,
		ExpireDate:   c.ShareExpiresAt,
		Thumbnail:    models.ImageDTO{ImageURL: c.Thumbnail.ImageURL},
	}
	if c.HasLiveShareLink(now) {
		link := s.shareURL(*c.ShareToken)
		dto.ActiveShareLink = &link
	}
	return dto
}

func toggleResult(present bool) string {
	if present {
		return "created"
	}
	return "deleted"
}
