package catalog

import (
	"context"
	"errors"
	"strings"

	"jewelrydam/models"

	"gorm.io/gorm"
)

// AssetPatch holds the fields to change, nil means unchanged.
// An empty ProjectID detaches the asset from its project.
type AssetPatch struct {
	Name        *string
	Description *string
	ProjectID   *string
	ProjectDate *string
	ClientName  *string
	Tags        *string
}

func (s *Service) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	asset := &models.Asset{}
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("asset", id)
	}
	if err != nil {
		return nil, &StoreError{Op: "load asset", Err: err}
	}
	return asset, nil
}

func (s *Service) UpdateAsset(ctx context.Context, id string, patch AssetPatch) (*models.Asset, error) {
	asset, err := s.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ValidationError("Asset name cannot be empty")
		}
		updates["name"] = name
	}
	if patch.Description != nil {
		updates["description"] = nullable(strings.TrimSpace(*patch.Description))
	}
	if patch.ClientName != nil {
		updates["client_name"] = nullable(strings.TrimSpace(*patch.ClientName))
	}
	if patch.Tags != nil {
		updates["tags"] = models.NormalizeTags(*patch.Tags)
	}
	if patch.ProjectID != nil {
		projectID := strings.TrimSpace(*patch.ProjectID)
		if projectID == "" {
			updates["project_id"] = nil
			updates["project_name"] = nil
		} else {
			project, err := s.loadProject(ctx, projectID)
			if errors.Is(err, ErrNotFound) {
				return nil, ValidationError("Unknown project: " + projectID)
			}
			if err != nil {
				return nil, err
			}
			updates["project_id"] = project.ID
			updates["project_name"] = project.Name
			if project.ProjectDate != nil {
				updates["project_date"] = *project.ProjectDate
			}
		}
	}
	if patch.ProjectDate != nil {
		date, err := models.ParseDate(*patch.ProjectDate)
		if err != nil {
			return nil, ValidationError("Invalid project date: " + *patch.ProjectDate)
		}
		updates["project_date"] = dateValue(date)
	}
	if len(updates) == 0 {
		return asset, nil
	}
	if err = s.db.WithContext(ctx).Model(asset).Updates(updates).Error; err != nil {
		return nil, &StoreError{Op: "update asset", Err: err}
	}
	return s.GetAsset(ctx, id)
}
