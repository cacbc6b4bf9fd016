package catalog

import (
	"context"
	"errors"
	"strings"

	"jewelrydam/db"
	"jewelrydam/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectInput struct {
	Name        string
	Description string
	ProjectDate string
}

// ProjectPatch holds the fields to change, nil means unchanged
type ProjectPatch struct {
	Name        *string
	Description *string
	ProjectDate *string
}

func (s *Service) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ValidationError("Project name is required")
	}
	date, err := models.ParseDate(in.ProjectDate)
	if err != nil {
		return nil, ValidationError("Invalid project date: " + in.ProjectDate)
	}
	if err = s.checkProjectName(ctx, name, ""); err != nil {
		return nil, err
	}
	project := &models.Project{
		Name:        name,
		Description: strPtr(strings.TrimSpace(in.Description)),
		ProjectDate: date,
	}
	if err = s.db.WithContext(ctx).Create(project).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return nil, &DuplicateError{Name: name}
		}
		return nil, &StoreError{Op: "create project", Err: err}
	}
	return project, nil
}

// UpdateProject applies patch and copies a new name or date onto the project assets
func (s *Service) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (*models.Project, error) {
	project, err := s.loadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	propagate := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ValidationError("Project name is required")
		}
		if name != project.Name {
			if err = s.checkProjectName(ctx, name, id); err != nil {
				return nil, err
			}
			updates["name"] = name
			propagate["project_name"] = name
		}
	}
	if patch.Description != nil {
		updates["description"] = nullable(strings.TrimSpace(*patch.Description))
	}
	if patch.ProjectDate != nil {
		date, err := models.ParseDate(*patch.ProjectDate)
		if err != nil {
			return nil, ValidationError("Invalid project date: " + *patch.ProjectDate)
		}
		updates["project_date"] = dateValue(date)
		propagate["project_date"] = dateValue(date)
	}
	if len(updates) == 0 {
		return project, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(project).Updates(updates).Error; err != nil {
			if db.IsDuplicateKey(err) {
				return &DuplicateError{Name: updates["name"].(string)}
			}
			return &StoreError{Op: "update project", Err: err}
		}
		if len(propagate) == 0 {
			return nil
		}
		err := tx.Model(&models.Asset{}).Where("project_id = ?", id).Updates(propagate).Error
		if err != nil {
			return &StoreError{Op: "update project assets", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadProject(ctx, id)
}

// checkProjectName fails with DuplicateError if another project already uses name
func (s *Service) checkProjectName(ctx context.Context, name, exceptID string) error {
	query := s.db.WithContext(ctx).Model(&models.Project{}).Where("name = ?", name)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var existing models.Project
	err := query.Take(&existing).Error
	if err == nil {
		return &DuplicateError{Name: name}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return &StoreError{Op: "check project name", Err: err}
}

func nullable(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

func dateValue(d *datatypes.Date) interface{} {
	if d == nil {
		return nil
	}
	return *d
}
