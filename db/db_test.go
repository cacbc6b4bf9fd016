package db

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"jewelrydam/config"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"mysql 1062", &gomysql.MySQLError{Number: 1062}, true},
		{"mysql other", &gomysql.MySQLError{Number: 1045}, false},
		{"postgres", &pgconn.PgError{Code: "23505"}, true},
		{"postgres other", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, true},
		{"sqlite fk", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, false},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateKey(tt.err); got != tt.want {
				t.Errorf("IsDuplicateKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{config.DriverMySQL, config.DriverPostgres, config.DriverSQLite} {
		if _, err := Dialector(&config.Config{DBDriver: driver}); err != nil {
			t.Errorf("Dialector(%s) error = %v", driver, err)
		}
	}
	if _, err := Dialector(&config.Config{DBDriver: "oracle"}); err == nil {
		t.Errorf("Dialector(oracle) should fail")
	}
}

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:            config.DriverSQLite,
		SQLiteFile:          filepath.Join(t.TempDir(), "dam.db"),
		DBConnectRetries:    2,
		DBConnectRetryDelay: 10 * time.Millisecond,
	}
	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err = db.Exec("SELECT 1").Error; err != nil {
		t.Errorf("query error = %v", err)
	}
	if err = Close(db); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
