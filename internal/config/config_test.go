package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"partpulse/internal/blob"
	"partpulse/internal/core"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.Storage.Driver != core.StorageSQLite {
		t.Fatalf("expected sqlite default, got %q", cfg.Storage.Driver)
	}
	if cfg.Blob.Driver != blob.DriverFilesystem {
		t.Fatalf("expected fs blob default, got %q", cfg.Blob.Driver)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis should be disabled without an address")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PARTPULSE_STORAGE_DRIVER", "postgres")
	t.Setenv("PARTPULSE_POSTGRES_DSN", "postgres://db/partpulse")
	t.Setenv("PARTPULSE_BLOB_DRIVER", "s3")
	t.Setenv("PARTPULSE_BLOB_S3_BUCKET", "quotes")
	t.Setenv("PARTPULSE_BLOB_S3_PATH_STYLE", "true")
	t.Setenv("PARTPULSE_REDIS_ADDR", "redis:6379")
	t.Setenv("PARTPULSE_LOCK_TTL", "5s")
	t.Setenv("PARTPULSE_SHUTDOWN_TIMEOUT", "not-a-duration")
	t.Setenv("PARTPULSE_CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg := FromEnv()
	if cfg.Storage.Driver != core.StoragePostgres || cfg.Storage.PostgresDSN != "postgres://db/partpulse" {
		t.Fatalf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.Blob.Driver != blob.DriverS3 || cfg.Blob.S3.Bucket != "quotes" || !cfg.Blob.S3.PathStyle {
		t.Fatalf("unexpected blob config: %+v", cfg.Blob)
	}
	if !cfg.Redis.Enabled() || cfg.Redis.LockTTL != 5*time.Second {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("invalid duration should fall back, got %v", cfg.Server.ShutdownTimeout)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.Server.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := map[string]func(*Config){
		"storage driver": func(c *Config) { c.Storage.Driver = "mongo" },
		"postgres dsn":   func(c *Config) { c.Storage.Driver = core.StoragePostgres },
		"blob driver":    func(c *Config) { c.Blob.Driver = "gcs" },
		"s3 bucket":      func(c *Config) { c.Blob.Driver = blob.DriverS3 },
		"log format":     func(c *Config) { c.Log.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := FromEnv()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	body := "PARTPULSE_HTTP_ADDR=:9999\nPARTPULSE_STORAGE_DRIVER=memory\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// godotenv never overrides variables that are already set.
	t.Setenv("PARTPULSE_STORAGE_DRIVER", "sqlite")
	t.Cleanup(func() { _ = os.Unsetenv("PARTPULSE_HTTP_ADDR") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("expected addr from file, got %q", cfg.Server.Addr)
	}
	if cfg.Storage.Driver != core.StorageSQLite {
		t.Fatalf("environment should win over file, got %q", cfg.Storage.Driver)
	}
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
}

func TestLoadSurfacesValidationErrors(t *testing.T) {
	t.Setenv("PARTPULSE_BLOB_DRIVER", "ftp")
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	if err == nil || !strings.Contains(err.Error(), "blob driver") {
		t.Fatalf("expected blob driver error, got %v", err)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		cfg   LogConfig
		level zap.AtomicLevel
	}{
		{LogConfig{Level: "debug", Format: "console"}, zap.NewAtomicLevelAt(zap.DebugLevel)},
		{LogConfig{Level: "WARN", Format: "json"}, zap.NewAtomicLevelAt(zap.WarnLevel)},
		{LogConfig{Level: "error", Format: "json"}, zap.NewAtomicLevelAt(zap.ErrorLevel)},
	}
	for _, tc := range cases {
		logger, err := NewLogger(tc.cfg)
		if err != nil {
			t.Fatalf("NewLogger(%+v): %v", tc.cfg, err)
		}
		if !logger.Core().Enabled(tc.level.Level()) {
			t.Fatalf("%+v: level %v should be enabled", tc.cfg, tc.level.Level())
		}
		if tc.level.Level() > zap.DebugLevel && logger.Core().Enabled(tc.level.Level()-1) {
			t.Fatalf("%+v: level below %v should be disabled", tc.cfg, tc.level.Level())
		}
	}
}
