package services

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/models"
)

func TestFindOrCreate_SuffixesTakenNicknames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "neo")
	env.user(t, "neo1")

	u, err := env.users.FindOrCreate(ctx, "neo", "neo-two@example.com")
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if u.Username != "neo2" {
		t.Errorf("username = %q, want neo2", u.Username)
	}

	again, err := env.users.FindOrCreate(ctx, "whatever", "neo-two@example.com")
	if err != nil || again.ID != u.ID {
		t.Fatalf("second login = %+v, %v; want existing user %d", again, err, u.ID)
	}
}

func TestUpdateMe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	env.user(t, "bob")

	if _, err := env.users.UpdateMe(ctx, alice, ProfileUpdate{NewNickname: "bob"}); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("duplicate nickname: expected ErrConflict, got %v", err)
	}

	first := cdn + "/avatar/one.png"
	me, err := env.users.UpdateMe(ctx, alice, ProfileUpdate{NewNickname: "alicia", NewUserAvatarURL: first})
	if err != nil {
		t.Fatalf("UpdateMe: %v", err)
	}
	if me.Username != "alicia" || me.Avatar.ImageURL == nil || *me.Avatar.ImageURL != first {
		t.Errorf("me = %+v", me)
	}
	if len(env.tasks.deletes) != 0 {
		t.Errorf("first avatar dispatched cleanup: %v", env.tasks.deletes)
	}

	if _, err := env.users.UpdateMe(ctx, alice, ProfileUpdate{NewUserAvatarURL: cdn + "/avatar/two.png"}); err != nil {
		t.Fatal(err)
	}
	if len(env.tasks.deletes) != 1 || env.tasks.deletes[0] != "avatar/one.png" {
		t.Errorf("cleanup tasks = %v", env.tasks.deletes)
	}

	if _, err := env.users.UpdateMe(ctx, models.Viewer{}, ProfileUpdate{}); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Errorf("anonymous: expected ErrUnauthorized, got %v", err)
	}
}

func TestCheckNickname(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	env.user(t, "bob")

	tests := []struct {
		nickname string
		want     bool
	}{
		{"bob", false},
		{"alice", true},
		{"carol", true},
	}
	for _, tt := range tests {
		res, err := env.users.CheckNickname(ctx, alice, tt.nickname)
		if err != nil {
			t.Fatalf("CheckNickname(%s): %v", tt.nickname, err)
		}
		if res.IsAvailable != tt.want {
			t.Errorf("CheckNickname(%s) = %v, want %v", tt.nickname, res.IsAvailable, tt.want)
		}
	}
	if _, err := env.users.CheckNickname(ctx, alice, "  "); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("blank nickname: expected ErrValidation, got %v", err)
	}
}
