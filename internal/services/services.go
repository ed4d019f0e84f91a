// Package services contains the business logic of the link-collection service.
// Handlers call services with a models.Viewer; services enforce the access
// policy, run repository calls inside transactions where needed, and dispatch
// deferred side effects only after a successful commit.
package services

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/identity"
	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/axellelanca/linkshelf/internal/storage"
)

// TaskDispatcher queues deferred side effects without waiting for them.
type TaskDispatcher interface {
	DispatchRecordView(collectionID, viewerID uint)
	DispatchDeleteObject(key string)
}

// ObjectStorage issues upload urls and maps public urls back to object keys.
type ObjectStorage interface {
	PresignUpload(ctx context.Context, prefix, fileName, contentType string) (storage.Upload, error)
	KeyFromURL(imageURL string) string
}

// IdentityProvider exchanges authorization codes for profiles.
type IdentityProvider interface {
	AuthCodeURL() string
	LogoutURL() string
	Exchange(ctx context.Context, code string) (identity.Profile, error)
}

// UploadRequest asks for a presigned upload url.
type UploadRequest struct {
	FileName string `json:"fileName" validate:"required,max=200"`
	FileType string `json:"fileType" validate:"required,max=100"`
}

// errNoObjectStorage is returned by presign calls when no bucket is configured.
var errNoObjectStorage = apperrors.Unavailable("presign upload", errors.New("object storage is not configured"))

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func requireLogin(v models.Viewer) error {
	if v.Anonymous() {
		return apperrors.ErrUnauthorized
	}
	return nil
}

func idSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// cleanupReplaced dispatches the deletion of the object behind previous when
// it was replaced by a different url and belongs to our bucket.
func cleanupReplaced(tasks TaskDispatcher, objects ObjectStorage, previous *string, current string) {
	if previous == nil || *previous == "" || *previous == current || objects == nil {
		return
	}
	if key := objects.KeyFromURL(*previous); key != "" {
		tasks.DispatchDeleteObject(key)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
