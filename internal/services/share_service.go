package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/logging"
	"github.com/axellelanca/linkshelf/internal/metrics"
	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/axellelanca/linkshelf/internal/policy"
)

const (
	// DefaultShareDays is the validity of a share link when none is requested.
	DefaultShareDays = 9999
	// MaxShareDays keeps expiries inside the range a DATETIME column holds.
	MaxShareDays = 36500
)

// ShareLink is the result of GenerateShareLink.
type ShareLink struct {
	Token     string    `json:"token"`
	URL       string    `json:"share_link"`
	ExpiresAt time.Time `json:"expire_date"`
}

// GenerateShareLink gives the collection a share link valid for durationDays
// from now. A live token is kept; a missing or expired one is replaced. A nil
// durationDays means DefaultShareDays.
func (s *CollectionService) GenerateShareLink(ctx context.Context, viewer models.Viewer, id uint, durationDays *int) (*ShareLink, error) {
	if err := requireLogin(viewer); err != nil {
		return nil, err
	}
	days := DefaultShareDays
	if durationDays != nil {
		days = *durationDays
	}
	if days < 1 || days > MaxShareDays {
		return nil, apperrors.ValidationError{Field: "expireDate", Reason: fmt.Sprintf("must be between 1 and %d days", MaxShareDays)}
	}

	c, err := s.collections.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckWrite(viewer, c); err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.AddDate(0, 0, days)
	token, minted, err := s.collections.IssueShareToken(ctx, id, uuid.NewString(), expiresAt, now)
	if err != nil {
		return nil, err
	}

	action := "renewed"
	if minted {
		action = "minted"
	}
	metrics.ShareLinks.WithLabelValues(action).Inc()
	logging.Ctx(ctx).Info().Uint("collection_id", id).Str("action", action).Time("expires_at", expiresAt).Msg("Share link issued")

	return &ShareLink{Token: token, URL: s.shareURL(token), ExpiresAt: expiresAt}, nil
}

// RevokeShareLink clears the token and its expiry.
func (s *CollectionService) RevokeShareLink(ctx context.Context, viewer models.Viewer, id uint) error {
	if err := requireLogin(viewer); err != nil {
		return err
	}
	c, err := s.collections.GetCollection(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CheckWrite(viewer, c); err != nil {
		return err
	}
	if err := s.collections.ClearShareToken(ctx, id); err != nil {
		return err
	}
	metrics.ShareLinks.WithLabelValues("revoked").Inc()
	return nil
}

// ResolveShareLink returns the collection behind a live token whatever its
// visibility. The payload carries no viewer flags.
func (s *CollectionService) ResolveShareLink(ctx context.Context, token string) (*models.CollectionDTO, error) {
	c, err := s.collections.GetCollectionByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if c.IsExpired(now) {
		return nil, apperrors.ErrExpired
	}
	metrics.ShareLinks.WithLabelValues("resolved").Inc()
	dto := s.toDTO(*c, false, false, now)
	return &dto, nil
}

func (s *CollectionService) shareURL(token string) string {
	return s.baseURL + "/collections/" + token
}
