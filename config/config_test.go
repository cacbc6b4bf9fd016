package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.BindAddress != "0.0.0.0:3091" {
		t.Errorf("BindAddress = %v, want 0.0.0.0:3091", cfg.BindAddress)
	}
	if cfg.DBDriver != DriverMySQL || cfg.DBName != "jewelrydam" || cfg.DBPort != 3306 {
		t.Errorf("unexpected DB defaults: %+v", cfg)
	}
	if cfg.DBConnectRetries != 5 || cfg.DBConnectRetryDelay != 2*time.Second {
		t.Errorf("unexpected retry defaults: %d, %v", cfg.DBConnectRetries, cfg.DBConnectRetryDelay)
	}
	if cfg.PublicBaseURL != "http://localhost:9000/jewelrydam" {
		t.Errorf("PublicBaseURL = %v", cfg.PublicBaseURL)
	}
	if cfg.IngestContinueOnError {
		t.Errorf("IngestContinueOnError should default to false")
	}
}

func TestLoad_Env(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(*Config) bool
	}{
		{
			"driver is lower-cased",
			map[string]string{"DB_DRIVER": "SQLite"},
			func(c *Config) bool { return c.DBDriver == DriverSQLite },
		},
		{
			"durations",
			map[string]string{"RECONCILE_INTERVAL": "5m", "OBJECT_STORE_TIMEOUT": "3s"},
			func(c *Config) bool { return c.ReconcileInterval == 5*time.Minute && c.ObjectStoreTimeout == 3*time.Second },
		},
		{
			"invalid duration keeps default",
			map[string]string{"RECONCILE_GRACE_PERIOD": "soon"},
			func(c *Config) bool { return c.ReconcileGracePeriod == time.Hour },
		},
		{
			"bool flags",
			map[string]string{"INGEST_CONTINUE_ON_ERROR": "yes", "DEBUG_MODE": "off"},
			func(c *Config) bool { return c.IngestContinueOnError && !c.DebugMode },
		},
		{
			"file storage public url follows bind port",
			map[string]string{"STORAGE_TYPE": "file", "BIND_ADDRESS": ":8088"},
			func(c *Config) bool { return c.PublicBaseURL == "http://localhost:8088/files" },
		},
		{
			"ssl minio url",
			map[string]string{"MINIO_USE_SSL": "true", "MINIO_ENDPOINT": "s3.local", "MINIO_PORT": "443"},
			func(c *Config) bool { return c.PublicBaseURL == "https://s3.local:443/jewelrydam" },
		},
		{
			"explicit public url loses trailing slash",
			map[string]string{"PUBLIC_BASE_URL": "https://cdn.example.com/dam/"},
			func(c *Config) bool { return c.PublicBaseURL == "https://cdn.example.com/dam" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if cfg := Load(); !tt.check(cfg) {
				t.Errorf("Load() = %+v", cfg)
			}
		})
	}
}
