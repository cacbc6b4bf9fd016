package processing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"jewelrydam/models"
	"jewelrydam/storage"

	"gorm.io/gorm"
)

type maintenanceTask interface {
	getName() string
	run(ctx context.Context) (int, error)
}

// Report is the number of blobs each task handled
type Report map[string]int

type Options struct {
	// Interval between background runs, 0 disables them
	Interval time.Duration
	// GracePeriod protects blobs of ingestions that have not written their row yet
	GracePeriod        time.Duration
	DeleteUnreferenced bool
	StoreTimeout       time.Duration
}

// Reconciler keeps the object store and the assets table consistent
type Reconciler struct {
	db     *gorm.DB
	store  storage.ObjectStore
	opts   Options
	tasks  []maintenanceTask
	runMu  sync.Mutex
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewReconciler(db *gorm.DB, store storage.ObjectStore, opts Options) *Reconciler {
	r := &Reconciler{
		db:    db,
		store: store,
		opts:  opts,
		done:  make(chan struct{}),
	}
	r.registerTask(&retryFailedDeletes{r})
	r.registerTask(&scanUnreferenced{r})
	return r
}

func (r *Reconciler) registerTask(t maintenanceTask) {
	r.tasks = append(r.tasks, t)
}

// Start runs the tasks every Interval until Stop
func (r *Reconciler) Start() {
	if r.opts.Interval <= 0 {
		log.Println("Reconciler disabled")
		return
	}
	log.Printf("Starting reconciler with interval: %v", r.opts.Interval)
	r.ticker = time.NewTicker(r.opts.Interval)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-r.ticker.C:
				if _, err := r.RunOnce(context.Background()); err != nil {
					log.Printf("Reconciler run error: %v", err)
				}
			case <-r.done:
				return
			}
		}
	}()
}

func (r *Reconciler) Stop() {
	if r.ticker == nil {
		return
	}
	log.Println("Stopping reconciler")
	r.ticker.Stop()
	close(r.done)
	r.wg.Wait()
	r.ticker = nil
}

// RunOnce runs every task once. Runs never overlap.
func (r *Reconciler) RunOnce(ctx context.Context) (Report, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	report := Report{}
	var errs []error
	for _, task := range r.tasks {
		n, err := task.run(ctx)
		report[task.getName()] = n
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", task.getName(), err))
			continue
		}
		if n > 0 {
			log.Printf("Reconciler %s handled %d blobs", task.getName(), n)
		}
	}
	return report, errors.Join(errs...)
}

func (r *Reconciler) ListOrphans(ctx context.Context) ([]models.OrphanBlob, error) {
	orphans := []models.OrphanBlob{}
	err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&orphans).Error
	return orphans, err
}

func (r *Reconciler) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.opts.StoreTimeout)
}

func (r *Reconciler) deleteBlob(ctx context.Context, key string) error {
	storeCtx, cancel := r.storeContext(ctx)
	defer cancel()
	return r.store.Delete(storeCtx, key)
}

func (r *Reconciler) dropRecord(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("object_key = ?", key).Delete(&models.OrphanBlob{}).Error
}

// referencedIDs returns which of ids still have an asset row
func (r *Reconciler) referencedIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	const batch = 500
	found := make(map[string]bool, len(ids))
	for start := 0; start < len(ids); start += batch {
		end := start + batch
		if end > len(ids) {
			end = len(ids)
		}
		var existing []string
		err := r.db.WithContext(ctx).Model(&models.Asset{}).Where("id IN ?", ids[start:end]).Pluck("id", &existing).Error
		if err != nil {
			return nil, err
		}
		for _, id := range existing {
			found[id] = true
		}
	}
	return found, nil
}
