package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AssetKeyPrefix = "assets/"

	primaryExt   = ".jpg"
	secondaryExt = ".tiff"
)

type Asset struct {
	ID                string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name              string          `gorm:"type:varchar(300);not null" json:"name"`
	Description       *string         `gorm:"type:text" json:"description"`
	Tags              string          `gorm:"type:varchar(1000);not null;default:''" json:"tags"`
	ProjectID         *string         `gorm:"type:varchar(36);index" json:"project_id"`
	Project           *Project        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	ProjectName       *string         `gorm:"type:varchar(255)" json:"project_name"`
	ProjectDate       *datatypes.Date `json:"project_date"`
	ClientName        *string         `gorm:"type:varchar(255)" json:"client_name"`
	PrimaryImageURL   string          `gorm:"column:jpg_url;type:varchar(2000);not null" json:"jpg_url"`
	SecondaryImageURL *string         `gorm:"column:tiff_url;type:varchar(2000)" json:"tiff_url"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// GetPath returns the object store key of the original image, e.g. assets/<id>.jpg
func (a *Asset) GetPath() string {
	return AssetPath(a.ID)
}

// GetSecondaryPath returns the key of the high resolution variant, e.g. assets/<id>.tiff
func (a *Asset) GetSecondaryPath() string {
	return SecondaryAssetPath(a.ID)
}

// Paths lists every object store key the asset owns
func (a *Asset) Paths() []string {
	paths := []string{a.GetPath()}
	if a.SecondaryImageURL != nil && *a.SecondaryImageURL != "" {
		paths = append(paths, a.GetSecondaryPath())
	}
	return paths
}

func (a *Asset) TagList() []string {
	return SplitTags(a.Tags)
}

func AssetPath(id string) string {
	return AssetKeyPrefix + id + primaryExt
}

func SecondaryAssetPath(id string) string {
	return AssetKeyPrefix + id + secondaryExt
}

// AssetIDFromPath is the reverse of AssetPath/SecondaryAssetPath.
// ok is false for keys outside of the assets/ layout.
func AssetIDFromPath(path string) (id string, ok bool) {
	if !strings.HasPrefix(path, AssetKeyPrefix) {
		return "", false
	}
	name := path[len(AssetKeyPrefix):]
	for _, ext := range []string{primaryExt, secondaryExt} {
		if strings.HasSuffix(name, ext) {
			id = name[:len(name)-len(ext)]
			break
		}
	}
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// SplitTags accepts both "a, b" and `["a","b"]` encodings
func SplitTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var parts []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			parts = strings.Split(strings.Trim(raw, "[]"), ",")
		}
	} else {
		parts = strings.Split(raw, ",")
	}
	seen := map[string]bool{}
	result := []string{}
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"`)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		result = append(result, p)
	}
	return result
}

// NormalizeTags returns the stored (comma separated) form of raw
func NormalizeTags(raw string) string {
	return strings.Join(SplitTags(raw), ", ")
}
