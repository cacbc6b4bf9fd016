package models

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

// SchemaMigration records an applied schema version
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"type:varchar(100);not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

type migration struct {
	version int
	name    string
	up      func(tx *gorm.DB) error
}

func autoMigrate(values ...interface{}) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		return tx.AutoMigrate(values...)
	}
}

// Append only. Never renumber or edit an applied step.
var migrations = []migration{
	{1, "create_clients", autoMigrate(&Client{})},
	{2, "create_projects", autoMigrate(&Project{})},
	{3, "create_assets", autoMigrate(&Asset{})},
	{4, "create_upload_logs", autoMigrate(&UploadLog{})},
	{5, "create_orphan_blobs", autoMigrate(&OrphanBlob{})},
	{6, "case_sensitive_project_names", func(tx *gorm.DB) error {
		// MySQL compares with a case-insensitive collation by default
		if tx.Dialector.Name() != "mysql" {
			return nil
		}
		return tx.Exec("ALTER TABLE projects MODIFY name varchar(255) COLLATE utf8mb4_bin NOT NULL").Error
	}},
}

// Migrate applies every pending migration in order, each in its own transaction
func Migrate(db *gorm.DB) (applied int, err error) {
	if err = db.AutoMigrate(&SchemaMigration{}); err != nil {
		return 0, fmt.Errorf("schema_migrations: %w", err)
	}
	done, err := appliedVersions(db)
	if err != nil {
		return 0, err
	}
	for _, m := range migrations {
		if done[m.version] {
			continue
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := m.up(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{Version: m.version, Name: m.name}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		log.Printf("Applied migration %d: %s", m.version, m.name)
		applied++
	}
	return applied, nil
}

type MigrationStatus struct {
	Version   int
	Name      string
	AppliedAt *time.Time
}

// Status lists all known migrations and when (if ever) they were applied
func Status(db *gorm.DB) ([]MigrationStatus, error) {
	var rows []SchemaMigration
	if db.Migrator().HasTable(&SchemaMigration{}) {
		if err := db.Order("version").Find(&rows).Error; err != nil {
			return nil, err
		}
	}
	byVersion := make(map[int]time.Time, len(rows))
	for _, r := range rows {
		byVersion[r.Version] = r.AppliedAt
	}
	result := make([]MigrationStatus, 0, len(migrations))
	for _, m := range migrations {
		s := MigrationStatus{Version: m.version, Name: m.name}
		if at, ok := byVersion[m.version]; ok {
			at := at
			s.AppliedAt = &at
		}
		result = append(result, s)
	}
	return result, nil
}

func appliedVersions(db *gorm.DB) (map[int]bool, error) {
	var versions []int
	if err := db.Model(&SchemaMigration{}).Pluck("version", &versions).Error; err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(versions))
	for _, v := range versions {
		done[v] = true
	}
	return done, nil
}
