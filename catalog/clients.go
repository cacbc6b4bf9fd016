package catalog

import (
	"context"
	"strings"

	"jewelrydam/models"
)

func (s *Service) CreateClient(ctx context.Context, name string) (*models.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError("Client name is required")
	}
	client := &models.Client{Name: name}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, &StoreError{Op: "create client", Err: err}
	}
	return client, nil
}
