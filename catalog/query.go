package catalog

import (
	"context"
	"errors"
	"strings"

	"jewelrydam/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultRecentAssets = 10
	DefaultUploadLog    = 50
)

type ProjectSummary struct {
	models.Project
	AssetCount  int      `json:"asset_count"`
	LatestImage *string  `json:"latest_image"`
	UploadDates []string `json:"upload_dates"`
}

type DateGroup struct {
	Date   string         `json:"date"`
	Assets []models.Asset `json:"assets"`
}

type ProjectDetail struct {
	models.Project
	AssetCount   int         `json:"asset_count"`
	AssetsByDate []DateGroup `json:"assets_by_date"`
}

func (s *Service) ListAssets(ctx context.Context) ([]models.Asset, error) {
	return s.findAssets(s.db.WithContext(ctx))
}

func (s *Service) RecentAssets(ctx context.Context, limit int) ([]models.Asset, error) {
	if limit <= 0 {
		limit = DefaultRecentAssets
	}
	return s.findAssets(s.db.WithContext(ctx).Limit(limit))
}

// ProjectAssets does not check the project exists, a missing one simply has no assets
func (s *Service) ProjectAssets(ctx context.Context, projectID string) ([]models.Asset, error) {
	return s.findAssets(s.db.WithContext(ctx).Where("project_id = ?", projectID))
}

// SearchAssets matches q case-insensitively against the asset text fields and
// the current name of its project. An empty q lists everything.
func (s *Service) SearchAssets(ctx context.Context, q string) ([]models.Asset, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.ListAssets(ctx)
	}
	like := "%" + escapeLike(strings.ToLower(q)) + "%"
	query := s.db.WithContext(ctx).
		Select("assets.*").
		Joins("LEFT JOIN projects ON projects.id = assets.project_id").
		Where("LOWER(assets.name) LIKE ? ESCAPE '!'"+
			" OR LOWER(COALESCE(assets.description, '')) LIKE ? ESCAPE '!'"+
			" OR LOWER(COALESCE(assets.project_name, '')) LIKE ? ESCAPE '!'"+
			" OR LOWER(COALESCE(assets.client_name, '')) LIKE ? ESCAPE '!'"+
			" OR LOWER(COALESCE(projects.name, '')) LIKE ? ESCAPE '!'",
			like, like, like, like, like)
	return s.findAssets(query)
}

func (s *Service) findAssets(query *gorm.DB) ([]models.Asset, error) {
	assets := []models.Asset{}
	if err := query.Order("assets.created_at DESC").Find(&assets).Error; err != nil {
		return nil, &StoreError{Op: "list assets", Err: err}
	}
	return assets, nil
}

func (s *Service) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	var projects []models.Project
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, &StoreError{Op: "list projects", Err: err}
	}
	var assets []models.Asset
	err := s.db.WithContext(ctx).
		Select("project_id", "jpg_url", "created_at").
		Where("project_id IS NOT NULL").
		Order("created_at DESC").
		Find(&assets).Error
	if err != nil {
		return nil, &StoreError{Op: "list project assets", Err: err}
	}

	byProject := map[string][]models.Asset{}
	for _, a := range assets {
		byProject[*a.ProjectID] = append(byProject[*a.ProjectID], a)
	}
	result := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		owned := byProject[p.ID]
		summary := ProjectSummary{Project: p, AssetCount: len(owned), UploadDates: []string{}}
		if len(owned) > 0 {
			latest := owned[0].PrimaryImageURL
			summary.LatestImage = &latest
		}
		for _, group := range groupByDate(owned) {
			summary.UploadDates = append(summary.UploadDates, group.Date)
		}
		result = append(result, summary)
	}
	return result, nil
}

func (s *Service) GetProject(ctx context.Context, id string) (*ProjectDetail, error) {
	project, err := s.loadProject(ctx, id)
	if err != nil {
		return nil, err
	}
	assets, err := s.ProjectAssets(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProjectDetail{
		Project:      *project,
		AssetCount:   len(assets),
		AssetsByDate: groupByDate(assets),
	}, nil
}

func (s *Service) loadProject(ctx context.Context, id string) (*models.Project, error) {
	project := &models.Project{}
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("project", id)
	}
	if err != nil {
		return nil, &StoreError{Op: "load project", Err: err}
	}
	return project, nil
}

func (s *Service) ListClients(ctx context.Context) ([]models.Client, error) {
	clients := []models.Client{}
	if err := s.db.WithContext(ctx).Order("name").Find(&clients).Error; err != nil {
		return nil, &StoreError{Op: "list clients", Err: err}
	}
	return clients, nil
}

func (s *Service) RecentUploadLog(ctx context.Context, limit int) ([]models.UploadLog, error) {
	if limit <= 0 {
		limit = DefaultUploadLog
	}
	entries := []models.UploadLog{}
	if err := s.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).Limit(limit).Find(&entries).Error; err != nil {
		return nil, &StoreError{Op: "list upload log", Err: err}
	}
	return entries, nil
}

// groupByDate expects assets sorted newest first and keeps that order
func groupByDate(assets []models.Asset) []DateGroup {
	groups := []DateGroup{}
	for _, a := range assets {
		day := a.CreatedAt.UTC().Format(models.DateLayout)
		if n := len(groups); n > 0 && groups[n-1].Date == day {
			groups[n-1].Assets = append(groups[n-1].Assets, a)
			continue
		}
		groups = append(groups, DateGroup{Date: day, Assets: []models.Asset{a}})
	}
	return groups
}

func escapeLike(value string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(value)
}
