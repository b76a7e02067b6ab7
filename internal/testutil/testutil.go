// Package testutil provides an in-memory database, an in-memory object store
// and seed helpers for service and handler tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/P3chys/classroom-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every model migrated.
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	// A single connection keeps the shared in-memory database alive.
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

// MemStore is an ObjectStore kept in memory.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// UploadErr, when set, fails every upload.
	UploadErr error
}

func NewMemStore() *MemStore {
	return &MemStore{objects: map[string][]byte{}}
}

func (m *MemStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *MemStore) SignedURL(ctx context.Context, key string) (string, error) {
	return "https://storage.test/classroom/" + strings.ReplaceAll(key, " ", "%20") + "?X-Amz-Expires=604800", nil
}

func (m *MemStore) DeletePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			delete(m.objects, key)
		}
	}
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MemStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (m *MemStore) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

func SeedUser(tb testing.TB, db *gorm.DB, username string, role models.UserRole) *models.User {
	tb.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@classroom.test",
		PasswordHash: "x",
		Role:         role,
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedClassroom(tb testing.TB, db *gorm.DB, ownerID uuid.UUID, studentIDs ...uuid.UUID) *models.Classroom {
	tb.Helper()
	c := &models.Classroom{
		Name:       "Classroom",
		OwnerID:    ownerID,
		JoinCode:   uuid.NewString()[:8],
		StudentIDs: studentIDs,
	}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed classroom: %v", err)
	}
	return c
}

// LoadClassroom re-reads a classroom from db.
func LoadClassroom(tb testing.TB, db *gorm.DB, id uuid.UUID) *models.Classroom {
	tb.Helper()
	var c models.Classroom
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		tb.Fatalf("load classroom: %v", err)
	}
	return &c
}
