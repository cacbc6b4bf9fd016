package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"jewelrydam/db"
	"jewelrydam/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPrimaryType   = "image/jpeg"
	defaultSecondaryType = "image/tiff"
)

// UploadFile is one file of a multipart upload, staged locally by the caller
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
	Release     func() error
}

func (f *UploadFile) release() {
	if f.Release == nil {
		return
	}
	if err := f.Release(); err != nil {
		log.Printf("Release temp file %s, error: %v", f.Name, err)
	}
	f.Release = nil
}

func (f *UploadFile) baseName() string {
	return strings.ToLower(strings.TrimSuffix(f.Name, filepath.Ext(f.Name)))
}

type IngestRequest struct {
	Files []UploadFile
	// Secondary files are paired with Files by base name (ring.jpg + ring.tiff)
	Secondary   []UploadFile
	ProjectID   string
	ProjectName string
	ProjectDate string
	ClientName  string
}

type FileFailure struct {
	Name    string `json:"name"`
	AssetID string `json:"asset_id"`
	Error   string `json:"error"`
}

type IngestResult struct {
	Project *models.Project
	Assets  []models.Asset
	Failed  []FileFailure
	// Aborted is set when a failure stopped the batch before all files were processed
	Aborted bool
}

// Ingest uploads every file to the object store and records an asset for each.
// Files are handled in order. By default the first failure stops the batch,
// earlier files stay committed. The result is returned together with the error.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	defer func() {
		for i := range req.Files {
			req.Files[i].release()
		}
		for i := range req.Secondary {
			req.Secondary[i].release()
		}
	}()

	result := &IngestResult{Assets: []models.Asset{}, Failed: []FileFailure{}}
	if len(req.Files) == 0 {
		return result, ValidationError("At least one image is required")
	}
	date, err := models.ParseDate(req.ProjectDate)
	if err != nil {
		return result, ValidationError("Invalid project date: " + req.ProjectDate)
	}
	project, err := s.resolveProject(ctx, req.ProjectID, strings.TrimSpace(req.ProjectName), date)
	if err != nil {
		return result, err
	}
	result.Project = project
	if date == nil && project != nil {
		date = project.ProjectDate
	}

	secondary := make(map[string]*UploadFile, len(req.Secondary))
	for i := range req.Secondary {
		secondary[req.Secondary[i].baseName()] = &req.Secondary[i]
	}

	template := models.Asset{
		ProjectDate: date,
		ClientName:  strPtr(strings.TrimSpace(req.ClientName)),
	}
	if project != nil {
		template.ProjectID = &project.ID
		template.ProjectName = &project.Name
	}

	var firstErr error
	for i := range req.Files {
		file := &req.Files[i]
		asset, err := s.ingestFile(ctx, template, file, secondary[file.baseName()])
		file.release()
		if err != nil {
			s.audit(ctx, models.UploadFailed, asset.ID, fmt.Sprintf("Upload of %s failed: %v", file.Name, err))
			log.Printf("Ingest: %s, error: %v", file.Name, err)
			result.Failed = append(result.Failed, FileFailure{Name: file.Name, AssetID: asset.ID, Error: err.Error()})
			if firstErr == nil {
				firstErr = err
			}
			if !s.opts.ContinueOnFailure {
				result.Aborted = i < len(req.Files)-1
				return result, firstErr
			}
			continue
		}
		result.Assets = append(result.Assets, *asset)
	}
	if len(result.Assets) == 0 && firstErr != nil {
		return result, firstErr
	}
	return result, nil
}

// ingestFile always returns the asset so its id can be reported on failure
func (s *Service) ingestFile(ctx context.Context, template models.Asset, file, secondary *UploadFile) (*models.Asset, error) {
	asset := template
	asset.ID = uuid.NewString()
	asset.Name = file.Name
	s.audit(ctx, models.UploadStarted, asset.ID, "Upload started: "+file.Name)

	if err := s.upload(ctx, asset.GetPath(), file, defaultPrimaryType); err != nil {
		return &asset, &StoreError{Op: "upload " + file.Name, Err: err}
	}
	if secondary != nil {
		if err := s.upload(ctx, asset.GetSecondaryPath(), secondary, defaultSecondaryType); err != nil {
			s.recordOrphans(ctx, s.removeBlobs(ctx, asset.GetPath()))
			return &asset, &StoreError{Op: "upload " + secondary.Name, Err: err}
		}
		url := s.store.URL(asset.GetSecondaryPath())
		asset.SecondaryImageURL = &url
	}
	s.audit(ctx, models.UploadSuccess, asset.ID, "Stored in object store: "+file.Name)

	asset.PrimaryImageURL = s.store.URL(asset.GetPath())
	if err := s.db.WithContext(ctx).Create(&asset).Error; err != nil {
		s.recordOrphans(ctx, s.removeBlobs(context.WithoutCancel(ctx), asset.Paths()...))
		return &asset, &StoreError{Op: "save asset " + file.Name, Err: err}
	}
	s.audit(ctx, models.UploadCommitted, asset.ID, "Asset created: "+file.Name)
	return &asset, nil
}

func (s *Service) upload(ctx context.Context, key string, file *UploadFile, defaultType string) error {
	if file.Open == nil {
		return errors.New("no content")
	}
	reader, err := file.Open()
	if err != nil {
		return err
	}
	defer reader.Close()
	contentType := file.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = defaultType
	}
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.store.Save(storeCtx, key, reader, contentType)
}

func (s *Service) resolveProject(ctx context.Context, id, name string, date *datatypes.Date) (*models.Project, error) {
	if id != "" {
		project := &models.Project{}
		err := s.db.WithContext(ctx).Where("id = ?", id).Take(project).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ValidationError("Unknown project: " + id)
		}
		if err != nil {
			return nil, &StoreError{Op: "load project", Err: err}
		}
		return project, nil
	}
	if name == "" {
		return nil, nil
	}
	project, _, err := s.findOrCreateProject(ctx, name, date)
	return project, err
}

// findOrCreateProject relies on the unique index on projects.name. The insert
// that loses a concurrent race sees a duplicate key and reads the winner's row.
func (s *Service) findOrCreateProject(ctx context.Context, name string, date *datatypes.Date) (*models.Project, bool, error) {
	tx := s.db.WithContext(ctx)
	for attempt := 0; attempt < 2; attempt++ {
		project := &models.Project{}
		err := tx.Where("name = ?", name).Take(project).Error
		if err == nil {
			return project, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, &StoreError{Op: "find project", Err: err}
		}
		project = &models.Project{Name: name, ProjectDate: date}
		err = tx.Create(project).Error
		if err == nil {
			return project, true, nil
		}
		if !db.IsDuplicateKey(err) {
			return nil, false, &StoreError{Op: "create project", Err: err}
		}
		log.Printf("Project %q created concurrently, looking it up again", name)
	}
	return nil, false, &StoreError{Op: "find or create project", Err: fmt.Errorf("project %q keeps conflicting", name)}
}
