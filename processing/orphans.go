package processing

import (
	"context"
	"log"
	"time"

	"jewelrydam/models"
)

// retryFailedDeletes retries blob removals that failed during asset deletion
type retryFailedDeletes struct {
	r *Reconciler
}

func (t *retryFailedDeletes) getName() string {
	return "retry_failed_deletes"
}

func (t *retryFailedDeletes) run(ctx context.Context) (int, error) {
	var orphans []models.OrphanBlob
	err := t.r.db.WithContext(ctx).Where("reason = ?", models.OrphanDeleteFailed).Order("updated_at").Find(&orphans).Error
	if err != nil || len(orphans) == 0 {
		return 0, err
	}
	ids := make([]string, 0, len(orphans))
	for _, o := range orphans {
		if id, ok := models.AssetIDFromPath(o.ObjectKey); ok {
			ids = append(ids, id)
		}
	}
	referenced, err := t.r.referencedIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, o := range orphans {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		// A rolled back deletion leaves the row in place, its blob must stay
		if id, ok := models.AssetIDFromPath(o.ObjectKey); ok && referenced[id] {
			log.Printf("Orphan %s is referenced again, dropping the record", o.ObjectKey)
			if err = t.r.dropRecord(ctx, o.ObjectKey); err != nil {
				return done, err
			}
			continue
		}
		if err := t.r.deleteBlob(ctx, o.ObjectKey); err != nil {
			log.Printf("Orphan %s, delete attempt %d error: %v", o.ObjectKey, o.Attempts+1, err)
			if err = models.RecordOrphan(t.r.db.WithContext(ctx), o.ObjectKey, models.OrphanDeleteFailed, err); err != nil {
				return done, err
			}
			continue
		}
		if err = t.r.dropRecord(ctx, o.ObjectKey); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}

// scanUnreferenced finds blobs under assets/ that no asset row owns
type scanUnreferenced struct {
	r *Reconciler
}

func (t *scanUnreferenced) getName() string {
	return "scan_unreferenced"
}

func (t *scanUnreferenced) run(ctx context.Context) (int, error) {
	storeCtx, cancel := t.r.storeContext(ctx)
	objects, err := t.r.store.List(storeCtx, models.AssetKeyPrefix)
	cancel()
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(objects))
	for _, obj := range objects {
		if id, ok := models.AssetIDFromPath(obj.Key); ok {
			ids = append(ids, id)
		}
	}
	referenced, err := t.r.referencedIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-t.r.opts.GracePeriod)
	unreferenced := []string{}
	handled := 0
	for _, obj := range objects {
		id, ok := models.AssetIDFromPath(obj.Key)
		if !ok || referenced[id] || obj.LastModified.After(cutoff) {
			continue
		}
		if !t.r.opts.DeleteUnreferenced {
			if err = models.RecordOrphan(t.r.db.WithContext(ctx), obj.Key, models.OrphanUnreferenced, nil); err != nil {
				return handled, err
			}
			unreferenced = append(unreferenced, obj.Key)
			handled++
			continue
		}
		if err := t.r.deleteBlob(ctx, obj.Key); err != nil {
			log.Printf("Unreferenced blob %s, delete error: %v", obj.Key, err)
			if err = models.RecordOrphan(t.r.db.WithContext(ctx), obj.Key, models.OrphanUnreferenced, err); err != nil {
				return handled, err
			}
			unreferenced = append(unreferenced, obj.Key)
			continue
		}
		if err = t.r.dropRecord(ctx, obj.Key); err != nil {
			return handled, err
		}
		handled++
	}

	// Forget earlier findings that were since resolved
	stale := t.r.db.WithContext(ctx).Where("reason = ?", models.OrphanUnreferenced)
	if len(unreferenced) > 0 {
		stale = stale.Where("object_key NOT IN ?", unreferenced)
	}
	return handled, stale.Delete(&models.OrphanBlob{}).Error
}
