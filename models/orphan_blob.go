package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrphanReason string

const (
	OrphanDeleteFailed OrphanReason = "delete_failed"
	OrphanUnreferenced OrphanReason = "unreferenced"
)

// OrphanBlob is an object store key that no asset row owns any more
type OrphanBlob struct {
	ObjectKey string       `gorm:"column:object_key;type:varchar(500);primaryKey" json:"key"`
	Reason    OrphanReason `gorm:"type:varchar(20);not null;index" json:"reason"`
	LastError string       `gorm:"type:text" json:"last_error"`
	Attempts  int          `gorm:"not null;default:0" json:"attempts"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// RecordOrphan inserts or bumps the record for key
func RecordOrphan(db *gorm.DB, key string, reason OrphanReason, cause error) error {
	lastError := ""
	if cause != nil {
		lastError = cause.Error()
	}
	orphan := OrphanBlob{
		ObjectKey: key,
		Reason:    reason,
		LastError: lastError,
		Attempts:  1,
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "object_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"reason":     reason,
			"last_error": lastError,
			"attempts":   gorm.Expr("orphan_blobs.attempts + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(&orphan).Error
}
