package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageS3   = "s3"
	StorageFile = "file"
)

type Config struct {
	BindAddress string
	TLSDomains  string // e.g. "dam.example.com,cdn.example.com"
	DebugMode   bool
	TmpDir      string // Multipart uploads are staged here before going to the object store
	MaxUploadMB int

	// Relational store
	DBDriver            string
	DBHost              string
	DBPort              int
	DBUser              string
	DBPassword          string
	DBName              string
	SQLiteFile          string
	DBConnectRetries    int
	DBConnectRetryDelay time.Duration

	// Object store
	StorageType        string
	StorageDir         string // Used when StorageType is "file"
	MinioEndpoint      string
	MinioPort          int
	MinioUseSSL        bool
	MinioAccessKey     string
	MinioSecretKey     string
	MinioBucket        string
	MinioRegion        string
	PublicBaseURL      string
	ObjectStoreTimeout time.Duration

	// Workflows
	IngestContinueOnError       bool
	ReconcileInterval           time.Duration // 0 disables the background job
	ReconcileGracePeriod        time.Duration
	ReconcileDeleteUnreferenced bool
}

// Load reads .env (if present) and then the process environment on top of the defaults
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: cannot load .env file: %v", err)
	}
	cfg := defaults()
	readEnvString("BIND_ADDRESS", &cfg.BindAddress)
	readEnvString("TLS_DOMAINS", &cfg.TLSDomains)
	readEnvBool("DEBUG_MODE", &cfg.DebugMode)
	readEnvString("TMP_DIR", &cfg.TmpDir)
	readEnvInt("MAX_UPLOAD_MB", &cfg.MaxUploadMB)

	readEnvString("DB_DRIVER", &cfg.DBDriver)
	readEnvString("DB_HOST", &cfg.DBHost)
	readEnvInt("DB_PORT", &cfg.DBPort)
	readEnvString("DB_USER", &cfg.DBUser)
	readEnvString("DB_PASSWORD", &cfg.DBPassword)
	readEnvString("DB_NAME", &cfg.DBName)
	readEnvString("SQLITE_FILE", &cfg.SQLiteFile)
	readEnvInt("DB_CONNECT_RETRIES", &cfg.DBConnectRetries)
	readEnvDuration("DB_CONNECT_RETRY_DELAY", &cfg.DBConnectRetryDelay)

	readEnvString("STORAGE_TYPE", &cfg.StorageType)
	readEnvString("STORAGE_DIR", &cfg.StorageDir)
	readEnvString("MINIO_ENDPOINT", &cfg.MinioEndpoint)
	readEnvInt("MINIO_PORT", &cfg.MinioPort)
	readEnvBool("MINIO_USE_SSL", &cfg.MinioUseSSL)
	readEnvString("MINIO_ACCESS_KEY", &cfg.MinioAccessKey)
	readEnvString("MINIO_SECRET_KEY", &cfg.MinioSecretKey)
	readEnvString("MINIO_BUCKET", &cfg.MinioBucket)
	readEnvString("MINIO_REGION", &cfg.MinioRegion)
	readEnvString("PUBLIC_BASE_URL", &cfg.PublicBaseURL)
	readEnvDuration("OBJECT_STORE_TIMEOUT", &cfg.ObjectStoreTimeout)

	readEnvBool("INGEST_CONTINUE_ON_ERROR", &cfg.IngestContinueOnError)
	readEnvDuration("RECONCILE_INTERVAL", &cfg.ReconcileInterval)
	readEnvDuration("RECONCILE_GRACE_PERIOD", &cfg.ReconcileGracePeriod)
	readEnvBool("RECONCILE_DELETE_UNREFERENCED", &cfg.ReconcileDeleteUnreferenced)

	cfg.DBDriver = strings.ToLower(cfg.DBDriver)
	cfg.StorageType = strings.ToLower(cfg.StorageType)
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = cfg.defaultPublicBaseURL()
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return cfg
}

func defaults() *Config {
	return &Config{
		BindAddress: "0.0.0.0:3091",
		DebugMode:   true,
		TmpDir:      os.TempDir(),
		MaxUploadMB: 512,

		DBDriver:            DriverMySQL,
		DBHost:              "localhost",
		DBPort:              3306,
		DBUser:              "damuser",
		DBPassword:          "dampassword",
		DBName:              "jewelrydam",
		SQLiteFile:          "jewelrydam.db",
		DBConnectRetries:    5,
		DBConnectRetryDelay: 2 * time.Second,

		StorageType:        StorageS3,
		StorageDir:         "./data",
		MinioEndpoint:      "localhost",
		MinioPort:          9000,
		MinioAccessKey:     "minioadmin",
		MinioSecretKey:     "minioadmin",
		MinioBucket:        "jewelrydam",
		MinioRegion:        "us-east-1",
		ObjectStoreTimeout: 60 * time.Second,

		ReconcileInterval:    time.Hour,
		ReconcileGracePeriod: time.Hour,
	}
}

func (c *Config) defaultPublicBaseURL() string {
	if c.StorageType == StorageFile {
		port := "3091"
		if i := strings.LastIndex(c.BindAddress, ":"); i >= 0 {
			port = c.BindAddress[i+1:]
		}
		return "http://localhost:" + port + "/files"
	}
	scheme := "http"
	if c.MinioUseSSL {
		scheme = "https"
	}
	return scheme + "://" + c.MinioEndpoint + ":" + strconv.Itoa(c.MinioPort) + "/" + c.MinioBucket
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid integer value for %s, using default %d", name, *value)
		return
	}
	*value = i
}

func readEnvDuration(name string, value *time.Duration) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid duration value for %s, using default %v", name, *value)
		return
	}
	*value = d
}
