package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/propline/bidboard/dao"
	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/authz"
	"github.com/propline/bidboard/pkg/hub"
	"github.com/propline/bidboard/pkg/notify"
)

// fakeStore is an in-memory object store used by the service tests; it
// records payloads by locator so the cleanup invariants are observable.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(_ context.Context, locator string, r io.Reader, _ int64, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[locator] = data
	return nil
}

func (f *fakeStore) Remove(_ context.Context, locator string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, locator)
	return nil
}

func (f *fakeStore) PresignedGet(_ context.Context, locator string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[locator]; !ok {
		return "", fmt.Errorf("no object at %s", locator)
	}
	return "https://store.test/" + locator, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	// File-backed so every pooled connection sees the same database;
	// the concurrency tests open more than one.
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bidboard.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dao.Migrate(db))

	store := newFakeStore()
	return New(db, notify.New(db, hub.New()), store), store
}

func createUser(t *testing.T, s *Service, name string, role model.Role) authz.Actor {
	t.Helper()
	u := model.User{Name: name, Role: role, Status: model.StatusActive}
	require.NoError(t, s.db.Create(&u).Error)
	return authz.Actor{ID: u.ID, Role: role}
}

// seedOpenProject creates a manager, a property and one Open project.
func seedOpenProject(t *testing.T, s *Service, title string) (authz.Actor, *model.Project) {
	t.Helper()
	mgr := createUser(t, s, "mgr-"+title, model.RoleManager)
	prop, err := s.CreateProperty(context.Background(), mgr, PropertyInput{Name: "Oak Tower"})
	require.NoError(t, err)
	p, err := s.CreateProject(context.Background(), mgr, ProjectInput{
		PropertyID: prop.ID,
		Title:      title,
	})
	require.NoError(t, err)
	p, err = s.PublishProject(context.Background(), mgr, p.ID)
	require.NoError(t, err)
	return mgr, p
}

func notificationsFor(t *testing.T, s *Service, userID uint) []model.Notification {
	t.Helper()
	var ns []model.Notification
	require.NoError(t, s.db.Where("user_id = ?", userID).Order("id ASC").Find(&ns).Error)
	return ns
}
