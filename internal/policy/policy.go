// Package policy decides who may read or mutate collections, links and bookmarks.
//
// Every guarded model implements Resource, so a single pair of checks covers all
// of them without inspecting concrete types.
package policy

import (
	apperrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/models"
)

// Resource is anything with an owner and a visibility flag.
type Resource interface {
	OwnedBy() uint
	Public() bool
}

// IsOwner reports whether an authenticated viewer owns r.
func IsOwner(v models.Viewer, r Resource) bool {
	return !v.Anonymous() && v.UserID == r.OwnedBy()
}

// CanRead allows public resources to everyone and private ones to their owner.
func CanRead(v models.Viewer, r Resource) bool {
	return r.Public() || IsOwner(v, r)
}

// CanWrite allows mutations by the owner only.
func CanWrite(v models.Viewer, r Resource) bool {
	return IsOwner(v, r)
}

// CheckRead returns a ForbiddenError when v may not read r.
func CheckRead(v models.Viewer, r Resource) error {
	if !CanRead(v, r) {
		return apperrors.ForbiddenError{Reason: "this resource is private"}
	}
	return nil
}

// CheckWrite returns a ForbiddenError when v may not mutate r.
func CheckWrite(v models.Viewer, r Resource) error {
	if !CanWrite(v, r) {
		return apperrors.ForbiddenError{Reason: "only the owner can modify this resource"}
	}
	return nil
}

// CheckLike guards like toggles: the viewer must be signed in, the collection
// must be public, and nobody likes their own collection.
func CheckLike(v models.Viewer, c models.LinkCollection) error {
	switch {
	case v.Anonymous():
		return apperrors.ForbiddenError{Reason: "login required"}
	case !c.IsPublic && !IsOwner(v, c):
		return apperrors.ForbiddenError{Reason: "this collection is private"}
	case IsOwner(v, c):
		return apperrors.ForbiddenError{Reason: "self-like is forbidden"}
	}
	return nil
}
