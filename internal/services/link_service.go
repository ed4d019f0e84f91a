package services

import (
	"context"
	"fmt"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/logging"
	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/axellelanca/linkshelf/internal/policy"
	"github.com/axellelanca/linkshelf/internal/repository"
	"github.com/axellelanca/linkshelf/internal/validation"
)

// LinkInput describes a link to create.
type LinkInput struct {
	Title        string `json:"title" validate:"required,max=50"`
	URL          string `json:"url" validate:"required,url,max=256"`
	Description  string `json:"description"`
	CollectionID uint   `json:"collection" validate:"required"`
}

// LinkUpdate replaces the editable fields of a link.
type LinkUpdate struct {
	Title       string `json:"title" validate:"required,max=50"`
	URL         string `json:"url" validate:"required,url,max=256"`
	Description string `json:"description"`
}

// BatchAdd is one link appended by a batch. Only the first entry's
// CollectionID is read: every added link goes to that collection.
type BatchAdd struct {
	Title        string `json:"title" validate:"required,max=50"`
	URL          string `json:"url" validate:"required,url,max=256"`
	Description  string `json:"description"`
	CollectionID uint   `json:"collection"`
}

// BatchUpdate overwrites the title and description of an existing link.
type BatchUpdate struct {
	ID          uint   `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required,max=50"`
	Description string `json:"description"`
}

// BatchRequest groups link additions, updates and deletions applied together.
type BatchRequest struct {
	Added   []BatchAdd    `json:"added"`
	Updated []BatchUpdate `json:"updated"`
	Deleted []uint        `json:"deleted"`
}

// BatchResult counts what a batch changed.
type BatchResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

// LinkService provides business logic for links.
type LinkService struct {
	links       repository.LinkRepository
	collections repository.CollectionRepository
	tx          repository.TxManager
}

// NewLinkService creates a LinkService.
func NewLinkService(links repository.LinkRepository, collections repository.CollectionRepository, tx repository.TxManager) *LinkService {
	return &LinkService{links: links, collections: collections, tx: tx}
}

// CreateLinks stores one or more links. Every target collection must be
// writable by the viewer; either all links are created or none.
func (s *LinkService) CreateLinks(ctx context.Context, viewer models.Viewer, inputs []LinkInput) ([]models.LinkDTO, error) {
	if err := requireLogin(viewer); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, apperrors.ValidationError{Field: "links", Reason: "at least one link is required"}
	}
	for i, in := range inputs {
		if err := validation.ValidateStruct(fmt.Sprintf("links[%d]", i), in); err != nil {
			return nil, err
		}
	}

	links := make([]models.Link, len(inputs))
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		checked := map[uint]bool{}
		for i, in := range inputs {
			if !checked[in.CollectionID] {
				if err := s.checkCollectionWritable(ctx, viewer, in.CollectionID); err != nil {
					return err
				}
				checked[in.CollectionID] = true
			}
			links[i] = models.Link{
				CollectionID: in.CollectionID,
				Title:        in.Title,
				URL:          in.URL,
				Description:  in.Description,
			}
		}
		return s.links.CreateLinks(ctx, links)
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.LinkDTO, len(links))
	for i, l := range links {
		out[i] = models.NewLinkDTO(l)
	}
	return out, nil
}

// GetLink returns a link whose collection the viewer may read.
func (s *LinkService) GetLink(ctx context.Context, viewer models.Viewer, id uint) (*models.LinkDTO, error) {
	link, err := s.links.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckRead(viewer, link); err != nil {
		return nil, err
	}
	dto := models.NewLinkDTO(*link)
	return &dto, nil
}

// UpdateLink replaces the title, url and description of a link.
func (s *LinkService) UpdateLink(ctx context.Context, viewer models.Viewer, id uint, in LinkUpdate) (*models.LinkDTO, error) {
	if err := requireLogin(viewer); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct("", in); err != nil {
		return nil, err
	}
	link, err := s.links.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckWrite(viewer, link); err != nil {
		return nil, err
	}
	if err := s.links.UpdateLink(ctx, id, map[string]any{
		"title":       in.Title,
		"url":         in.URL,
		"description": in.Description,
	}); err != nil {
		return nil, err
	}
	link.Title, link.URL, link.Description = in.Title, in.URL, in.Description
	dto := models.NewLinkDTO(*link)
	return &dto, nil
}

// DeleteLink removes one link.
func (s *LinkService) DeleteLink(ctx context.Context, viewer models.Viewer, id uint) error {
	if err := requireLogin(viewer); err != nil {
		return err
	}
	link, err := s.links.GetLink(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CheckWrite(viewer, link); err != nil {
		return err
	}
	return s.links.DeleteLinks(ctx, []uint{id})
}

// ApplyBatch validates the whole request, then applies additions, updates and
// deletions in one transaction. Any failure leaves the store untouched.
func (s *LinkService) ApplyBatch(ctx context.Context, viewer models.Viewer, req BatchRequest) (*BatchResult, error) {
	if err := requireLogin(viewer); err != nil {
		return nil, err
	}
	if err := validateBatch(req); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if len(req.Added) > 0 {
			target := req.Added[0].CollectionID
			if err := s.checkCollectionWritable(ctx, viewer, target); err != nil {
				return err
			}
			added := make([]models.Link, len(req.Added))
			for i, a := range req.Added {
				added[i] = models.Link{CollectionID: target, Title: a.Title, URL: a.URL, Description: a.Description}
			}
			if err := s.links.CreateLinks(ctx, added); err != nil {
				return err
			}
		}

		if len(req.Updated) > 0 {
			ids := make([]uint, len(req.Updated))
			for i, u := range req.Updated {
				ids[i] = u.ID
			}
			if err := s.checkLinksWritable(ctx, viewer, ids); err != nil {
				return err
			}
			for _, u := range req.Updated {
				if err := s.links.UpdateLink(ctx, u.ID, map[string]any{
					"title":       u.Title,
					"description": u.Description,
				}); err != nil {
					return err
				}
			}
		}

		if len(req.Deleted) > 0 {
			if err := s.checkLinksWritable(ctx, viewer, req.Deleted); err != nil {
				return err
			}
			return s.links.DeleteLinks(ctx, req.Deleted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Added: len(req.Added), Updated: len(req.Updated), Deleted: len(req.Deleted)}
	logging.Ctx(ctx).Info().
		Int("added", result.Added).
		Int("updated", result.Updated).
		Int("deleted", result.Deleted).
		Msg("Link batch applied")
	return result, nil
}

func validateBatch(req BatchRequest) error {
	if len(req.Added) == 0 && len(req.Updated) == 0 && len(req.Deleted) == 0 {
		return apperrors.ValidationError{Reason: "batch is empty"}
	}
	for i, a := range req.Added {
		if err := validation.ValidateStruct(fmt.Sprintf("added[%d]", i), a); err != nil {
			return err
		}
	}
	if len(req.Added) > 0 && req.Added[0].CollectionID == 0 {
		return apperrors.ValidationError{Field: "added[0].collection", Reason: "is required"}
	}
	for i, u := range req.Updated {
		if err := validation.ValidateStruct(fmt.Sprintf("updated[%d]", i), u); err != nil {
			return err
		}
	}
	for i, id := range req.Deleted {
		if id == 0 {
			return apperrors.ValidationError{Field: fmt.Sprintf("deleted[%d]", i), Reason: "is required"}
		}
	}
	return nil
}

func (s *LinkService) checkCollectionWritable(ctx context.Context, viewer models.Viewer, id uint) error {
	c, err := s.collections.GetCollection(ctx, id)
	if err != nil {
		return err
	}
	return policy.CheckWrite(viewer, c)
}

func (s *LinkService) checkLinksWritable(ctx context.Context, viewer models.Viewer, ids []uint) error {
	links, err := s.links.GetLinksByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, l := range links {
		if err := policy.CheckWrite(viewer, l); err != nil {
			return err
		}
	}
	return nil
}
