package catalog

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"jewelrydam/models"
	"jewelrydam/storage"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errInjected = errors.New("injected store failure")

// faultStore wraps a real backend and fails selected calls
type faultStore struct {
	storage.ObjectStore
	mu         sync.Mutex
	saveCalls  int
	failSaveAt int    // 1-based Save call to fail, 0 never
	failSuffix string // fail Save of keys with this suffix
	failDelete bool
}

func (f *faultStore) Save(ctx context.Context, path string, reader io.Reader, mimeType string) error {
	f.mu.Lock()
	f.saveCalls++
	fail := f.saveCalls == f.failSaveAt || (f.failSuffix != "" && strings.HasSuffix(path, f.failSuffix))
	f.mu.Unlock()
	if fail {
		return errInjected
	}
	return f.ObjectStore.Save(ctx, path, reader, mimeType)
}

func (f *faultStore) Delete(ctx context.Context, path string) error {
	if f.failDelete {
		return errInjected
	}
	return f.ObjectStore.Delete(ctx, path)
}

func (f *faultStore) exists(t *testing.T, key string) bool {
	t.Helper()
	_, err := f.Load(context.Background(), key, io.Discard)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		t.Fatal(err)
	}
	return err == nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if _, err = models.Migrate(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func newTestService(t *testing.T, opts Options) (*Service, *gorm.DB, *faultStore) {
	t.Helper()
	db := openTestDB(t)
	store := &faultStore{ObjectStore: storage.NewDiskStorage(&storage.Bucket{
		StorageType:   storage.StorageTypeFile,
		Path:          t.TempDir(),
		PublicBaseURL: "http://localhost:3091/files",
	})}
	return New(db, store, opts), db, store
}

type releaseCounter struct {
	mu sync.Mutex
	n  int
}

func (r *releaseCounter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

func (r *releaseCounter) file(name string) UploadFile {
	return UploadFile{
		Name:        name,
		ContentType: "image/jpeg",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("content of " + name)), nil
		},
		Release: func() error {
			r.mu.Lock()
			r.n++
			r.mu.Unlock()
			return nil
		},
	}
}

func (r *releaseCounter) files(names ...string) []UploadFile {
	result := make([]UploadFile, 0, len(names))
	for _, name := range names {
		result = append(result, r.file(name))
	}
	return result
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func ingest(t *testing.T, s *Service, req IngestRequest) *IngestResult {
	t.Helper()
	result, err := s.Ingest(context.Background(), req)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	return result
}
