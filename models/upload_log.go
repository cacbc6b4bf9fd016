package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadStatus string

const (
	UploadStarted   UploadStatus = "started"
	UploadSuccess   UploadStatus = "success"
	UploadFailed    UploadStatus = "failed"
	UploadCommitted UploadStatus = "committed"
)

// UploadLog is append-only. AssetID has no FK on purpose: failed uploads never get a row.
type UploadLog struct {
	ID        string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Message   string       `gorm:"type:text" json:"message"`
	AssetID   *string      `gorm:"type:varchar(36);index" json:"asset_id"`
	Status    UploadStatus `gorm:"type:varchar(20);not null" json:"status"`
	Timestamp time.Time    `gorm:"index;autoCreateTime" json:"timestamp"`
}

func (l *UploadLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
