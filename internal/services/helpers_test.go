package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/axellelanca/linkshelf/internal/config"
	"github.com/axellelanca/linkshelf/internal/identity"
	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/axellelanca/linkshelf/internal/repository"
	"github.com/axellelanca/linkshelf/internal/storage"
)

type fakeTasks struct {
	mu      sync.Mutex
	views   [][2]uint
	deletes []string
}

func (f *fakeTasks) DispatchRecordView(collectionID, viewerID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, [2]uint{collectionID, viewerID})
}

func (f *fakeTasks) DispatchDeleteObject(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, key)
}

const cdn = "https://cdn.test"

type fakeObjects struct{}

func (fakeObjects) PresignUpload(_ context.Context, prefix, fileName, _ string) (storage.Upload, error) {
	key := prefix + "/fixed_" + fileName
	return storage.Upload{PresignedURL: "https://bucket.test/" + key + "?sig=1", ImageURL: cdn + "/" + key}, nil
}

func (fakeObjects) KeyFromURL(u string) string {
	key, _ := strings.CutPrefix(u, cdn+"/")
	if key == u {
		return ""
	}
	return key
}

type fakeProvider struct {
	profiles map[string]identity.Profile
}

func (p fakeProvider) AuthCodeURL() string { return "https://idp.test/authorize" }
func (p fakeProvider) LogoutURL() string   { return "https://idp.test/logout" }

func (p fakeProvider) Exchange(_ context.Context, code string) (identity.Profile, error) {
	profile, ok := p.profiles[code]
	if !ok {
		return identity.Profile{}, errUnauthorizedCode
	}
	return profile, nil
}

type testEnv struct {
	collections *CollectionService
	links       *LinkService
	users       *UserService
	tasks       *fakeTasks
	linkRepo    *repository.GormLinkRepository
	clock       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repository.OpenDatabase(config.Database{Driver: "sqlite", Name: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	userRepo := repository.NewUserRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	tx := repository.NewTxManager(db)
	tasks := &fakeTasks{}

	env := &testEnv{
		tasks:    tasks,
		linkRepo: linkRepo,
		clock:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	env.collections = NewCollectionService(collectionRepo, userRepo, tx, tasks, fakeObjects{}, 3, "http://app.test")
	env.collections.now = func() time.Time { return env.clock }
	env.links = NewLinkService(linkRepo, collectionRepo, tx)
	env.users = NewUserService(userRepo, tx, tasks, fakeObjects{})
	return env
}

func (e *testEnv) user(t *testing.T, name string) models.Viewer {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), name, name+"@example.com", false)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return models.Viewer{UserID: u.ID}
}

func (e *testEnv) collection(t *testing.T, owner models.Viewer, title string, public bool) uint {
	t.Helper()
	c, err := e.collections.Create(context.Background(), owner, CollectionInput{Title: title, IsPublic: public})
	if err != nil {
		t.Fatalf("Create(%s): %v", title, err)
	}
	return c.ID
}
