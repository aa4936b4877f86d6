// ==============================================================================
// CONFIG PACKAGE - pkg/config/config.go
// ==============================================================================
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Snapshot SnapshotConfig
	Engine   EngineConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// CORSOrigins lists browser origins allowed to call the API. Empty means
	// any origin.
	CORSOrigins []string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	// PrefsTTL bounds how long a saved preference survives; zero keeps it forever.
	PrefsTTL time.Duration
}

// SnapshotConfig selects where the raw ledger snapshot comes from.
type SnapshotConfig struct {
	Source          string // "file" or "postgres"
	FixturePath     string
	RefreshInterval time.Duration
}

// EngineConfig carries the defaults applied to filter configurations that
// arrive without explicit values.
type EngineConfig struct {
	DefaultThreshold  string
	DefaultEquivalent string
	PageSize          int
}

type LogConfig struct {
	Level string
}

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			CORSOrigins:  getListEnv("CORS_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:      normalizeRedisURL(getEnv("REDIS_URL", "")),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			PrefsTTL: getDurationEnv("PREFS_TTL", 30*24*time.Hour),
		},
		Snapshot: SnapshotConfig{
			Source:          strings.ToLower(getEnv("SNAPSHOT_SOURCE", SourceFile)),
			FixturePath:     getEnv("SNAPSHOT_FIXTURE_PATH", "fixtures/snapshot.json"),
			RefreshInterval: getDurationEnv("SNAPSHOT_REFRESH_INTERVAL", time.Minute),
		},
		Engine: EngineConfig{
			DefaultThreshold:  getEnv("ENGINE_BOTTLENECK_THRESHOLD", "0.10"),
			DefaultEquivalent: getEnv("ENGINE_DEFAULT_EQUIVALENT", "ALL"),
			PageSize:          getIntEnv("ENGINE_PAGE_SIZE", 25),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func normalizeRedisURL(url string) string {
	// Strip redis:// or redis+tls:// scheme if present
	if strings.HasPrefix(url, "redis+tls://") {
		return url[len("redis+tls://"):]
	}
	if strings.HasPrefix(url, "redis://") {
		return url[len("redis://"):]
	}
	return url
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
