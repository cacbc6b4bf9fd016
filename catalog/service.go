package catalog

import (
	"context"
	"log"
	"time"

	"jewelrydam/models"
	"jewelrydam/storage"

	"gorm.io/gorm"
)

type Options struct {
	// ContinueOnFailure keeps ingesting the rest of a batch after a file fails
	ContinueOnFailure bool
	// StoreTimeout bounds every object store call, 0 means no extra limit
	StoreTimeout time.Duration
}

type Service struct {
	db    *gorm.DB
	store storage.ObjectStore
	opts  Options
}

func New(db *gorm.DB, store storage.ObjectStore, opts Options) *Service {
	return &Service{db: db, store: store, opts: opts}
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}

// audit appends to upload_logs. Failures are only logged.
func (s *Service) audit(ctx context.Context, status models.UploadStatus, assetID, message string) {
	entry := models.UploadLog{
		Message: message,
		Status:  status,
	}
	if assetID != "" {
		entry.AssetID = &assetID
	}
	if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(&entry).Error; err != nil {
		log.Printf("Upload log (%s) for asset %s, error: %v", status, assetID, err)
	}
}

// removeBlobs deletes keys best-effort and returns the ones that failed
func (s *Service) removeBlobs(ctx context.Context, keys ...string) map[string]error {
	failed := map[string]error{}
	for _, key := range keys {
		storeCtx, cancel := s.storeContext(ctx)
		err := s.store.Delete(storeCtx, key)
		cancel()
		if err != nil {
			log.Printf("best-effort: blob %s delete error: %v", key, err)
			failed[key] = err
		}
	}
	return failed
}

// recordOrphans keeps failed blob deletions for the reconciler
func (s *Service) recordOrphans(ctx context.Context, failed map[string]error) {
	db := s.db.WithContext(context.WithoutCancel(ctx))
	for key, cause := range failed {
		if err := models.RecordOrphan(db, key, models.OrphanDeleteFailed, cause); err != nil {
			log.Printf("best-effort: cannot record orphan blob %s: %v", key, err)
		}
	}
}

func strPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
