package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/axellelanca/linkshelf/internal/repository"
)

func TestBuildFeed_AnonymousSeesOnlyPublicWithoutFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	pub := env.collection(t, alice, "public", true)
	env.collection(t, alice, "private", false)
	if _, err := env.collections.ToggleLike(ctx, bob, pub); err != nil {
		t.Fatal(err)
	}
	if _, err := env.collections.ToggleBookmark(ctx, bob, pub); err != nil {
		t.Fatal(err)
	}

	page, err := env.collections.BuildFeed(ctx, models.Viewer{}, FeedQuery{Sort: models.SortLatest, Page: 1})
	if err != nil {
		t.Fatalf("BuildFeed: %v", err)
	}
	if page.Count != 1 || len(page.Results) != 1 {
		t.Fatalf("anonymous feed = %d rows (count %d), want 1", len(page.Results), page.Count)
	}
	row := page.Results[0]
	if !row.IsPublic || row.IsLiked || row.IsBookmarked {
		t.Errorf("row = %+v, want public without flags", row)
	}
	if row.TotalLikes != 1 {
		t.Errorf("total_likes = %d, want 1", row.TotalLikes)
	}

	page, err = env.collections.BuildFeed(ctx, bob, FeedQuery{Sort: models.SortLatest, Page: 1})
	if err != nil {
		t.Fatalf("BuildFeed(bob): %v", err)
	}
	if !page.Results[0].IsLiked || !page.Results[0].IsBookmarked {
		t.Errorf("bob's flags missing: %+v", page.Results[0])
	}
}

func TestBuildFeed_OwnedReturnsExactlyTheViewersCollections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	want := map[uint]bool{
		env.collection(t, alice, "a1", true):  true,
		env.collection(t, alice, "a2", false): true,
	}
	env.collection(t, bob, "b1", true)

	page, err := env.collections.BuildFeed(ctx, alice, FeedQuery{Scope: models.ScopeOwned, Page: 1})
	if err != nil {
		t.Fatalf("BuildFeed: %v", err)
	}
	if page.Count != int64(len(want)) || len(page.Results) != len(want) {
		t.Fatalf("owned feed count = %d, rows = %d", page.Count, len(page.Results))
	}
	for _, r := range page.Results {
		if !want[r.ID] {
			t.Errorf("unexpected collection %d in owned feed", r.ID)
		}
	}

	if _, err := env.collections.BuildFeed(ctx, models.Viewer{}, FeedQuery{Scope: models.ScopeOwned, Page: 1}); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Errorf("anonymous owned feed: expected ErrUnauthorized, got %v", err)
	}
}

func TestBuildFeed_SortByLikes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	fans := []models.Viewer{env.user(t, "f1"), env.user(t, "f2"), env.user(t, "f3"), env.user(t, "f4")}

	// Collection i is liked by 4-i fans.
	ids := make([]uint, 5)
	for i := range ids {
		ids[i] = env.collection(t, owner, "c", true)
		for _, fan := range fans[:4-i] {
			if _, err := env.collections.ToggleLike(ctx, fan, ids[i]); err != nil {
				t.Fatal(err)
			}
		}
	}
	env.collections.pageSize = 10

	page, err := env.collections.BuildFeed(ctx, models.Viewer{}, FeedQuery{Sort: models.SortLikes, Page: 1})
	if err != nil {
		t.Fatalf("BuildFeed: %v", err)
	}
	if len(page.Results) != len(ids) {
		t.Fatalf("likes feed = %d rows, want %d", len(page.Results), len(ids))
	}
	for i, r := range page.Results {
		if r.ID != ids[i] || r.TotalLikes != int64(4-i) {
			t.Errorf("position %d = id %d with %d likes, want id %d with %d", i, r.ID, r.TotalLikes, ids[i], 4-i)
		}
	}
}

func TestBuildFeed_Pagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	for i := 0; i < 7; i++ {
		env.collection(t, owner, "c", true)
	}

	page, err := env.collections.BuildFeed(ctx, models.Viewer{}, FeedQuery{Page: 2})
	if err != nil {
		t.Fatalf("BuildFeed: %v", err)
	}
	if page.Count != 7 || len(page.Results) != 3 {
		t.Fatalf("page 2 = %d rows, count %d", len(page.Results), page.Count)
	}
	if page.Next == nil || *page.Next != 3 || page.Previous == nil || *page.Previous != 1 {
		t.Errorf("next/previous = %v/%v, want 3/1", page.Next, page.Previous)
	}

	last, _ := env.collections.BuildFeed(ctx, models.Viewer{}, FeedQuery{Page: 3})
	if len(last.Results) != 1 || last.Next != nil {
		t.Errorf("last page = %d rows, next %v", len(last.Results), last.Next)
	}

	if _, err := env.collections.BuildFeed(ctx, models.Viewer{}, FeedQuery{Page: 4}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("page past the end: expected ErrNotFound, got %v", err)
	}
	if _, err := env.collections.BuildFeed(ctx, models.Viewer{}, FeedQuery{Page: 0}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("page 0: expected ErrValidation, got %v", err)
	}

	empty := newTestEnv(t)
	if p, err := empty.collections.BuildFeed(ctx, models.Viewer{}, FeedQuery{Page: 1}); err != nil || p.Count != 0 {
		t.Errorf("empty first page = %+v, %v", p, err)
	}
}

func TestBuildFeed_PageFarPastTheEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	env.collection(t, owner, "a", true)
	env.collection(t, owner, "b", true)

	for _, p := range []int{math.MaxInt32/3 + 1, math.MaxInt/3 + 2, math.MaxInt} {
		page, err := env.collections.BuildFeed(ctx, models.Viewer{}, FeedQuery{Page: p})
		if !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("page %d = %+v, %v; want ErrNotFound", p, page, err)
		}
	}
}

func TestBuildFeed_BookmarksHideCollectionsMadePrivate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	id := env.collection(t, alice, "reading", true)
	if _, err := env.links.CreateLinks(ctx, alice, []LinkInput{{Title: "secret", URL: "https://secret.example", CollectionID: id}}); err != nil {
		t.Fatalf("CreateLinks: %v", err)
	}
	if _, err := env.collections.ToggleBookmark(ctx, bob, id); err != nil {
		t.Fatalf("ToggleBookmark: %v", err)
	}

	setPublic := func(public bool) {
		t.Helper()
		if _, err := env.collections.Update(ctx, alice, id, CollectionInput{Title: "reading", IsPublic: public}); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	bookmarked := func() *models.Page[models.CollectionDTO] {
		t.Helper()
		page, err := env.collections.BuildFeed(ctx, bob, FeedQuery{Scope: models.ScopeBookmarked, Page: 1})
		if err != nil {
			t.Fatalf("BuildFeed: %v", err)
		}
		return page
	}

	setPublic(false)
	if _, err := env.collections.Get(ctx, bob, id); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("Get on private: expected ErrForbidden, got %v", err)
	}
	if page := bookmarked(); page.Count != 0 || len(page.Results) != 0 {
		t.Errorf("bookmark feed exposes a private collection: %+v", page.Results)
	}

	setPublic(true)
	if page := bookmarked(); page.Count != 1 || len(page.Results) != 1 || page.Results[0].ID != id {
		t.Errorf("bookmark feed after republishing = %+v", page)
	}
}

// countingTx records how many transactions a service opened.
type countingTx struct {
	inner repository.TxManager
	calls int
}

func (c *countingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	c.calls++
	return c.inner.WithinTx(ctx, fn)
}

func TestToggles_CheckPolicyInsideTheTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	fan := env.user(t, "fan")
	id := env.collection(t, owner, "public", true)

	tx := &countingTx{inner: env.collections.tx}
	env.collections.tx = tx

	if _, err := env.collections.ToggleLike(ctx, fan, id); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if _, err := env.collections.ToggleBookmark(ctx, fan, id); err != nil {
		t.Fatalf("ToggleBookmark: %v", err)
	}
	if tx.calls != 2 {
		t.Errorf("transactions = %d, want one per toggle", tx.calls)
	}

	// A rejected toggle leaves nothing behind.
	if _, err := env.collections.ToggleLike(ctx, owner, id); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("self like: expected ErrForbidden, got %v", err)
	}
	c, err := env.collections.Get(ctx, owner, id)
	if err != nil || c.TotalLikes != 1 {
		t.Errorf("total_likes = %+v, %v; want 1", c, err)
	}
}

func TestToggleLike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	fan := env.user(t, "fan")
	pub := env.collection(t, owner, "public", true)
	priv := env.collection(t, owner, "private", false)

	created, err := env.collections.ToggleLike(ctx, fan, pub)
	if err != nil || !created {
		t.Fatalf("first toggle = %v, %v", created, err)
	}
	created, err = env.collections.ToggleLike(ctx, fan, pub)
	if err != nil || created {
		t.Fatalf("second toggle = %v, %v", created, err)
	}
	c, _ := env.collections.Get(ctx, owner, pub)
	if c.TotalLikes != 0 {
		t.Errorf("total_likes = %d after two toggles, want 0", c.TotalLikes)
	}

	tests := []struct {
		name   string
		viewer models.Viewer
		id     uint
		want   error
	}{
		{"self like", owner, pub, apperrors.ErrForbidden},
		{"self like on private", owner, priv, apperrors.ErrForbidden},
		{"private collection", fan, priv, apperrors.ErrForbidden},
		{"anonymous", models.Viewer{}, pub, apperrors.ErrForbidden},
		{"unknown collection", fan, 999, apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.collections.ToggleLike(ctx, tt.viewer, tt.id); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestToggleBookmark_RequiresReadAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	other := env.user(t, "other")
	priv := env.collection(t, owner, "private", false)

	if _, err := env.collections.ToggleBookmark(ctx, other, priv); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	added, err := env.collections.ToggleBookmark(ctx, owner, priv)
	if err != nil || !added {
		t.Fatalf("owner bookmark = %v, %v", added, err)
	}

	page, err := env.collections.BuildFeed(ctx, owner, FeedQuery{Scope: models.ScopeBookmarked, Page: 1})
	if err != nil || page.Count != 1 || page.Results[0].ID != priv {
		t.Fatalf("bookmark feed = %+v, %v", page, err)
	}
}

func TestGet_RecordsViewForSignedInReaders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	reader := env.user(t, "reader")
	pub := env.collection(t, owner, "public", true)
	priv := env.collection(t, owner, "private", false)

	if _, err := env.collections.Get(ctx, reader, pub); err != nil {
		t.Fatal(err)
	}
	if _, err := env.collections.Get(ctx, models.Viewer{}, pub); err != nil {
		t.Fatal(err)
	}
	if len(env.tasks.views) != 1 || env.tasks.views[0] != [2]uint{pub, reader.UserID} {
		t.Errorf("dispatched views = %v", env.tasks.views)
	}

	if _, err := env.collections.Get(ctx, reader, priv); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("private read: expected ErrForbidden, got %v", err)
	}
}

func TestUpdate_ReplacesThumbnailAndCleansUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	other := env.user(t, "other")

	first := cdn + "/thumbnails/one.png"
	c, err := env.collections.Create(ctx, owner, CollectionInput{Title: "pics", ThumbnailImageURL: &first})
	if err != nil {
		t.Fatal(err)
	}

	second := cdn + "/thumbnails/two.png"
	updated, err := env.collections.Update(ctx, owner, c.ID, CollectionInput{Title: "renamed", IsPublic: true, ThumbnailImageURL: &second})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "renamed" || !updated.IsPublic || *updated.Thumbnail.ImageURL != second {
		t.Errorf("updated = %+v", updated)
	}
	if len(env.tasks.deletes) != 1 || env.tasks.deletes[0] != "thumbnails/one.png" {
		t.Errorf("cleanup tasks = %v", env.tasks.deletes)
	}

	if _, err := env.collections.Update(ctx, other, c.ID, CollectionInput{Title: "hijack"}); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("non-owner update: expected ErrForbidden, got %v", err)
	}
	if _, err := env.collections.Update(ctx, owner, c.ID, CollectionInput{}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("empty title: expected ErrValidation, got %v", err)
	}
	if len(env.tasks.deletes) != 1 {
		t.Errorf("failed updates dispatched cleanup: %v", env.tasks.deletes)
	}
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	other := env.user(t, "other")
	id := env.collection(t, owner, "doomed", true)

	if err := env.collections.Delete(ctx, other, id); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("non-owner delete: expected ErrForbidden, got %v", err)
	}
	if err := env.collections.Delete(ctx, owner, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := env.collections.Get(ctx, owner, id); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("deleted collection still readable: %v", err)
	}
}

func TestShareLinkLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	other := env.user(t, "other")
	id := env.collection(t, owner, "secret", false)

	two := 2
	first, err := env.collections.GenerateShareLink(ctx, owner, id, &two)
	if err != nil {
		t.Fatalf("GenerateShareLink: %v", err)
	}
	if first.URL != "http://app.test/collections/"+first.Token {
		t.Errorf("share url = %s", first.URL)
	}

	env.clock = env.clock.Add(24 * time.Hour)
	again, err := env.collections.GenerateShareLink(ctx, owner, id, &two)
	if err != nil || again.Token != first.Token {
		t.Fatalf("regenerate within validity = %+v, %v; want token %s", again, err, first.Token)
	}
	if !again.ExpiresAt.Equal(env.clock.AddDate(0, 0, 2)) {
		t.Errorf("expiry = %v, want reset to %v", again.ExpiresAt, env.clock.AddDate(0, 0, 2))
	}

	// A private collection resolves through a live token, even anonymously.
	got, err := env.collections.ResolveShareLink(ctx, first.Token)
	if err != nil || got.ID != id || got.IsLiked || got.IsBookmarked {
		t.Fatalf("resolve = %+v, %v", got, err)
	}
	if got.ActiveShareLink == nil || *got.ActiveShareLink != first.URL {
		t.Errorf("active_share_link = %v", got.ActiveShareLink)
	}

	env.clock = env.clock.Add(72 * time.Hour)
	if _, err := env.collections.ResolveShareLink(ctx, first.Token); !errors.Is(err, apperrors.ErrExpired) {
		t.Errorf("resolve after expiry: expected ErrExpired, got %v", err)
	}
	fresh, err := env.collections.GenerateShareLink(ctx, owner, id, nil)
	if err != nil || fresh.Token == first.Token {
		t.Fatalf("generate after expiry = %+v, %v; want a new token", fresh, err)
	}

	if _, err := env.collections.ResolveShareLink(ctx, "no-such-token"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("unknown token: expected ErrNotFound, got %v", err)
	}
	if _, err := env.collections.GenerateShareLink(ctx, other, id, nil); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("non-owner generate: expected ErrForbidden, got %v", err)
	}
	for _, days := range []int{0, -1, MaxShareDays + 1, 1_000_000_000} {
		if _, err := env.collections.GenerateShareLink(ctx, owner, id, &days); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("%d days: expected ErrValidation, got %v", days, err)
		}
	}
	longest := MaxShareDays
	if link, err := env.collections.GenerateShareLink(ctx, owner, id, &longest); err != nil || !link.ExpiresAt.Equal(env.clock.AddDate(0, 0, MaxShareDays)) {
		t.Errorf("%d days = %+v, %v", MaxShareDays, link, err)
	}

	if err := env.collections.RevokeShareLink(ctx, owner, id); err != nil {
		t.Fatalf("RevokeShareLink: %v", err)
	}
	if _, err := env.collections.ResolveShareLink(ctx, fresh.Token); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("revoked token: expected ErrNotFound, got %v", err)
	}
}

func TestPresignThumbnail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")

	up, err := env.collections.PresignThumbnail(ctx, owner, UploadRequest{FileName: "a.png", FileType: "image/png"})
	if err != nil || up.ImageURL != cdn+"/thumbnails/fixed_a.png" {
		t.Fatalf("PresignThumbnail = %+v, %v", up, err)
	}
	if _, err := env.collections.PresignThumbnail(ctx, owner, UploadRequest{FileName: "a.png"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("missing type: expected ErrValidation, got %v", err)
	}
	if _, err := env.collections.PresignThumbnail(ctx, models.Viewer{}, UploadRequest{FileName: "a.png", FileType: "image/png"}); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Errorf("anonymous: expected ErrUnauthorized, got %v", err)
	}
}
