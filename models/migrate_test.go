package models

import (
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	applied, err := Migrate(db)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if applied != len(migrations) {
		t.Errorf("Migrate() applied = %d, want %d", applied, len(migrations))
	}
	for _, table := range []string{"clients", "projects", "assets", "upload_logs", "orphan_blobs"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s is missing", table)
		}
	}
	// Second run is a no-op
	if applied, err = Migrate(db); err != nil || applied != 0 {
		t.Errorf("Migrate() second run = %d, %v, want 0, nil", applied, err)
	}
	status, err := Status(db)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range status {
		if s.AppliedAt == nil {
			t.Errorf("migration %d is not recorded", s.Version)
		}
	}
}

func TestStatus_BeforeMigrate(t *testing.T) {
	status, err := Status(openTestDB(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(status) != len(migrations) || status[0].AppliedAt != nil {
		t.Errorf("Status() = %+v", status)
	}
}

func TestProject_UniqueName(t *testing.T) {
	db := openTestDB(t)
	if _, err := Migrate(db); err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&Project{Name: "Spring 2024"}).Error; err != nil {
		t.Fatal(err)
	}
	err := db.Create(&Project{Name: "Spring 2024"}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("duplicate Create() error = %v, want %v", err, gorm.ErrDuplicatedKey)
	}
	if err = db.Create(&Project{Name: "spring 2024"}).Error; err != nil {
		t.Errorf("Create() with different case error = %v", err)
	}
}

func TestRecordOrphan(t *testing.T) {
	db := openTestDB(t)
	if _, err := Migrate(db); err != nil {
		t.Fatal(err)
	}
	key := "assets/abc.jpg"
	for i := 0; i < 3; i++ {
		if err := RecordOrphan(db, key, OrphanDeleteFailed, errors.New("timeout")); err != nil {
			t.Fatalf("RecordOrphan() error = %v", err)
		}
	}
	var orphan OrphanBlob
	if err := db.First(&orphan, "object_key = ?", key).Error; err != nil {
		t.Fatal(err)
	}
	if orphan.Attempts != 3 || orphan.LastError != "timeout" {
		t.Errorf("orphan = %+v, want 3 attempts", orphan)
	}
}
