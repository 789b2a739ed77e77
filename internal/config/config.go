// Package config reads process configuration from the environment. Values may
// come from a .env file loaded with godotenv; real environment variables win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"partpulse/internal/blob"
	"partpulse/internal/core"
)

const envPrefix = "PARTPULSE_"

// Config is the full process configuration.
type Config struct {
	Env     string
	Server  ServerConfig
	Log     LogConfig
	Storage core.StorageConfig
	Blob    blob.Config
	Redis   RedisConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	PresignExpiry   time.Duration
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level  string
	Format string
}

// RedisConfig enables the shared decision lock when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

// Enabled reports whether a Redis server was configured.
func (r RedisConfig) Enabled() bool { return strings.TrimSpace(r.Addr) != "" }

// Load reads files (default ".env") when present and then the environment.
// A missing .env file is not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv builds a Config from PARTPULSE_* variables with fallbacks.
func FromEnv() Config {
	return Config{
		Env: getEnv("ENV", "development"),
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:     getEnvDuration("READ_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			CORSOrigins:     getEnvSlice("CORS_ORIGINS", []string{"*"}),
			PresignExpiry:   getEnvDuration("PRESIGN_EXPIRY", 15*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Storage: core.StorageConfig{
			Driver:      core.StorageDriver(getEnv("STORAGE_DRIVER", string(core.StorageSQLite))),
			SQLitePath:  getEnv("SQLITE_PATH", "partpulse.db"),
			PostgresDSN: getEnv("POSTGRES_DSN", ""),
		},
		Blob: blob.Config{
			Driver: blob.Driver(getEnv("BLOB_DRIVER", string(blob.DriverFilesystem))),
			FSRoot: getEnv("BLOB_FS_ROOT", "attachments"),
			S3: blob.S3Config{
				Bucket:          getEnv("BLOB_S3_BUCKET", ""),
				Region:          getEnv("BLOB_S3_REGION", "us-east-1"),
				Endpoint:        getEnv("BLOB_S3_ENDPOINT", ""),
				AccessKeyID:     getEnv("BLOB_S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("BLOB_S3_SECRET_ACCESS_KEY", ""),
				PathStyle:       getEnvBool("BLOB_S3_PATH_STYLE", false),
			},
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			LockTTL:  getEnvDuration("LOCK_TTL", 30*time.Second),
		},
	}
}

// Validate rejects driver names no backend understands.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case core.StorageMemory, core.StorageSQLite, core.StoragePostgres:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == core.StoragePostgres && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("config: %sPOSTGRES_DSN is required for the postgres driver", envPrefix)
	}
	switch c.Blob.Driver {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Blob.S3.Bucket == "" {
			return fmt.Errorf("config: %sBLOB_S3_BUCKET is required for the s3 driver", envPrefix)
		}
	default:
		return fmt.Errorf("config: unknown blob driver %q", c.Blob.Driver)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(envPrefix + key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(envPrefix + key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(envPrefix + key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(envPrefix + key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
