package policy

import (
	"errors"
	"testing"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/models"
)

func TestCanReadAndWrite(t *testing.T) {
	public := models.LinkCollection{OwnerID: 1, IsPublic: true}
	private := models.LinkCollection{OwnerID: 1}
	childOfPrivate := models.Link{Collection: private}
	bookmark := models.Bookmark{UserID: 1}

	owner := models.Viewer{UserID: 1}
	other := models.Viewer{UserID: 2}
	anon := models.Viewer{}

	tests := []struct {
		name      string
		viewer    models.Viewer
		resource  Resource
		wantRead  bool
		wantWrite bool
	}{
		{"public collection, anonymous", anon, public, true, false},
		{"public collection, other user", other, public, true, false},
		{"public collection, owner", owner, public, true, true},
		{"private collection, anonymous", anon, private, false, false},
		{"private collection, other user", other, private, false, false},
		{"private collection, owner", owner, private, true, true},
		{"link inherits parent owner", owner, childOfPrivate, true, true},
		{"link inherits parent visibility", other, childOfPrivate, false, false},
		{"bookmark, owner", owner, bookmark, true, true},
		{"bookmark, other user", other, bookmark, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanRead(tt.viewer, tt.resource); got != tt.wantRead {
				t.Errorf("CanRead() = %v, want %v", got, tt.wantRead)
			}
			if got := CanWrite(tt.viewer, tt.resource); got != tt.wantWrite {
				t.Errorf("CanWrite() = %v, want %v", got, tt.wantWrite)
			}
		})
	}
}

func TestCheckLike(t *testing.T) {
	public := models.LinkCollection{OwnerID: 1, IsPublic: true}
	private := models.LinkCollection{OwnerID: 1}

	tests := []struct {
		name    string
		viewer  models.Viewer
		target  models.LinkCollection
		allowed bool
	}{
		{"anonymous", models.Viewer{}, public, false},
		{"owner of public", models.Viewer{UserID: 1}, public, false},
		{"owner of private", models.Viewer{UserID: 1}, private, false},
		{"other on private", models.Viewer{UserID: 2}, private, false},
		{"other on public", models.Viewer{UserID: 2}, public, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckLike(tt.viewer, tt.target)
			if tt.allowed && err != nil {
				t.Fatalf("expected like to be allowed, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, apperrors.ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}
