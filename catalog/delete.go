package catalog

import (
	"context"
	"errors"
	"log"

	"jewelrydam/models"

	"gorm.io/gorm"
)

// DeleteAsset removes the asset blobs (best-effort) and then its row
func (s *Service) DeleteAsset(ctx context.Context, id string) error {
	asset, err := s.GetAsset(ctx, id)
	if err != nil {
		return err
	}
	failed := s.removeBlobs(ctx, asset.Paths()...)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Asset{})
		if res.Error != nil {
			return &StoreError{Op: "delete asset", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return notFound("asset", id)
		}
		return nil
	})
	if err != nil {
		logDangling(asset.Paths(), failed)
		return err
	}
	s.recordOrphans(ctx, failed)
	return nil
}

// DeleteProject removes the project and every asset it owns in one transaction.
// Blob removals already issued are not undone if the transaction rolls back.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	var removed []string
	failed := map[string]error{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project := models.Project{}
		err := tx.Where("id = ?", id).Take(&project).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("project", id)
		}
		if err != nil {
			return &StoreError{Op: "load project", Err: err}
		}
		var assets []models.Asset
		if err = tx.Where("project_id = ?", id).Find(&assets).Error; err != nil {
			return &StoreError{Op: "list project assets", Err: err}
		}
		for i := range assets {
			paths := assets[i].Paths()
			removed = append(removed, paths...)
			for key, cause := range s.removeBlobs(ctx, paths...) {
				failed[key] = cause
			}
		}
		if err = tx.Where("project_id = ?", id).Delete(&models.Asset{}).Error; err != nil {
			return &StoreError{Op: "delete project assets", Err: err}
		}
		res := tx.Where("id = ?", id).Delete(&models.Project{})
		if res.Error != nil {
			return &StoreError{Op: "delete project", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return notFound("project", id)
		}
		log.Printf("Project %s (%s) deleted with %d assets", project.ID, project.Name, len(assets))
		return nil
	})
	if err != nil {
		logDangling(removed, failed)
		return err
	}
	s.recordOrphans(ctx, failed)
	return nil
}

// logDangling reports rows that survived a rollback while their blobs are gone
func logDangling(keys []string, failed map[string]error) {
	for _, key := range keys {
		if _, ok := failed[key]; ok {
			continue
		}
		log.Printf("best-effort: blob %s removed but its row was kept (dangling reference)", key)
	}
}
