package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Backend names accepted for LEDGER_BACKEND and STORE_BACKEND.
const (
	LedgerBackendFile     = "file"
	LedgerBackendPostgres = "postgres"
	StoreBackendDisk      = "disk"
	StoreBackendMinIO     = "minio"
)

// DefaultMaxUploadBytes is the upload size cap (15 MiB).
const DefaultMaxUploadBytes = 15 << 20

// DatabaseConfig holds PostgreSQL connection settings for the
// postgres ledger backend.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the minio content-store backend.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. The defaults for Port and
// AdminSecret are safe-but-insecure development values; deployments must
// override ADMIN_SECRET.
type AppConfig struct {
	Port        string
	AdminSecret string

	// DataDir is the root of the on-disk state: <DataDir>/uploads holds
	// content blobs, <DataDir>/files.json holds the ledger.
	DataDir        string
	MaxUploadBytes int64

	LedgerBackend string
	StoreBackend  string

	Database DatabaseConfig
	MinIO    MinIOConfig
}

// UploadDir returns the content-store directory for the disk backend.
func (c *AppConfig) UploadDir() string {
	return filepath.Join(c.DataDir, "uploads")
}

// LedgerPath returns the ledger file path for the file backend.
func (c *AppConfig) LedgerPath() string {
	return filepath.Join(c.DataDir, "files.json")
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port:           getEnv("PORT", "8080"),
		AdminSecret:    getEnv("ADMIN_SECRET", "change_me_now"), // dev default only
		DataDir:        getEnv("DATA_DIR", "./data"),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		LedgerBackend:  getEnv("LEDGER_BACKEND", LedgerBackendFile),
		StoreBackend:   getEnv("STORE_BACKEND", StoreBackendDisk),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
