package catalog

import (
	"context"
	"errors"
	"testing"

	"jewelrydam/models"
)

func TestDeleteAsset(t *testing.T) {
	s, db, store := newTestService(t, Options{})
	rc := &releaseCounter{}
	tiff := rc.file("ring.tiff")
	result := ingest(t, s, IngestRequest{Files: rc.files("ring.jpg", "other.jpg"), Secondary: []UploadFile{tiff}})
	ring := result.Assets[0]

	if err := s.DeleteAsset(context.Background(), ring.ID); err != nil {
		t.Fatalf("DeleteAsset() error = %v", err)
	}
	if n := countRows(t, db, &models.Asset{}, "id = ?", ring.ID); n != 0 {
		t.Errorf("asset row still exists")
	}
	for _, key := range []string{ring.GetPath(), ring.GetSecondaryPath()} {
		if store.exists(t, key) {
			t.Errorf("blob %s still exists", key)
		}
	}
	if n := countRows(t, db, &models.Asset{}, ""); n != 1 {
		t.Errorf("asset rows = %d, want 1", n)
	}

	err := s.DeleteAsset(context.Background(), ring.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteAsset() of a deleted asset error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteAsset_BlobFailureIsRecorded(t *testing.T) {
	s, db, store := newTestService(t, Options{})
	rc := &releaseCounter{}
	asset := ingest(t, s, IngestRequest{Files: rc.files("ring.jpg")}).Assets[0]

	store.failDelete = true
	if err := s.DeleteAsset(context.Background(), asset.ID); err != nil {
		t.Fatalf("DeleteAsset() error = %v", err)
	}
	if n := countRows(t, db, &models.Asset{}, ""); n != 0 {
		t.Errorf("asset row should be deleted even if the blob removal fails")
	}
	var orphan models.OrphanBlob
	if err := db.First(&orphan, "object_key = ?", asset.GetPath()).Error; err != nil {
		t.Fatalf("orphan not recorded: %v", err)
	}
	if orphan.Reason != models.OrphanDeleteFailed {
		t.Errorf("orphan reason = %s, want %s", orphan.Reason, models.OrphanDeleteFailed)
	}
}

func TestDeleteProject(t *testing.T) {
	s, db, store := newTestService(t, Options{})
	rc := &releaseCounter{}
	first := ingest(t, s, IngestRequest{Files: rc.files("a.jpg", "b.jpg"), ProjectName: "Autumn"})
	other := ingest(t, s, IngestRequest{Files: rc.files("c.jpg"), ProjectName: "Winter"})
	ctx := context.Background()

	if err := s.DeleteProject(ctx, first.Project.ID); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	assets, err := s.ProjectAssets(ctx, first.Project.ID)
	if err != nil || len(assets) != 0 {
		t.Errorf("ProjectAssets() = %v, %v, want empty", assets, err)
	}
	projects, _ := s.ListProjects(ctx)
	if len(projects) != 1 || projects[0].ID != other.Project.ID {
		t.Errorf("ListProjects() = %+v, want only Winter", projects)
	}
	all, _ := s.ListAssets(ctx)
	if len(all) != 1 || all[0].ID != other.Assets[0].ID {
		t.Errorf("ListAssets() = %+v, want only c.jpg", all)
	}
	for _, a := range first.Assets {
		if store.exists(t, a.GetPath()) {
			t.Errorf("blob %s still exists", a.GetPath())
		}
	}
	if _, err = s.GetProject(ctx, first.Project.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProject() error = %v, want %v", err, ErrNotFound)
	}
	if n := countRows(t, db, &models.OrphanBlob{}, ""); n != 0 {
		t.Errorf("orphans = %d, want 0", n)
	}
}

func TestDeleteProject_Missing(t *testing.T) {
	s, _, _ := newTestService(t, Options{})
	if err := s.DeleteProject(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteProject() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteProject_BlobFailures(t *testing.T) {
	s, db, store := newTestService(t, Options{})
	rc := &releaseCounter{}
	result := ingest(t, s, IngestRequest{Files: rc.files("a.jpg", "b.jpg"), ProjectName: "Flaky"})

	store.failDelete = true
	if err := s.DeleteProject(context.Background(), result.Project.ID); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	if n := countRows(t, db, &models.Project{}, ""); n != 0 {
		t.Errorf("project still exists")
	}
	if n := countRows(t, db, &models.OrphanBlob{}, "reason = ?", models.OrphanDeleteFailed); n != 2 {
		t.Errorf("orphans = %d, want 2", n)
	}
}
