package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds every environment-driven setting of the service
type Config struct {
	Env  string
	Port string

	DatabaseURL string
	RedisAddr   string

	Rasterizer string // "canvas" or "chrome"
	ChromePath string

	ExportDir            string
	ExportDriveFolderID  string
	GoogleCredentialPath string

	DesignRegistryPath string
	CatalogConfigPath  string

	NudgeStep float64
	SizeMin   float64
	SizeMax   float64

	// SessionTTL is the idle time after which a session is torn down; 0 disables expiry
	SessionTTL time.Duration
}

// IsProduction reports whether APP_ENV (or ENV) is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// Load reads the configuration from the process environment.
// .env files are applied by main before this runs.
func Load() (*Config, error) {
	cfg := &Config{
		Env:                  firstNonEmpty(os.Getenv("APP_ENV"), os.Getenv("ENV"), "development"),
		Port:                 strings.TrimPrefix(firstNonEmpty(os.Getenv("PORT"), "8080"), ":"),
		DatabaseURL:          databaseURL(),
		RedisAddr:            strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		Rasterizer:           strings.ToLower(firstNonEmpty(os.Getenv("SNAPSHOT_RASTERIZER"), "canvas")),
		ChromePath:           strings.TrimSpace(os.Getenv("CHROME_PATH")),
		ExportDir:            strings.TrimSpace(os.Getenv("EXPORT_DIR")),
		ExportDriveFolderID:  strings.TrimSpace(os.Getenv("EXPORT_DRIVE_FOLDER_ID")),
		GoogleCredentialPath: strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		DesignRegistryPath:   strings.TrimSpace(os.Getenv("DESIGN_REGISTRY_PATH")),
		CatalogConfigPath:    strings.TrimSpace(os.Getenv("CATALOG_CONFIG_PATH")),
	}

	var err error
	if cfg.NudgeStep, err = floatEnv("NUDGE_STEP", 1); err != nil {
		return nil, err
	}
	if cfg.SizeMin, err = floatEnv("SIZE_MIN", 10); err != nil {
		return nil, err
	}
	if cfg.SizeMax, err = floatEnv("SIZE_MAX", 100); err != nil {
		return nil, err
	}
	if cfg.SizeMin <= 0 || cfg.SizeMax > 100 || cfg.SizeMin > cfg.SizeMax {
		return nil, fmt.Errorf("invalid size bounds: SIZE_MIN=%v SIZE_MAX=%v", cfg.SizeMin, cfg.SizeMax)
	}

	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionTTL < 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL=%v", cfg.SessionTTL)
	}

	switch cfg.Rasterizer {
	case "canvas", "chrome":
	default:
		return nil, fmt.Errorf("SNAPSHOT_RASTERIZER must be canvas or chrome, got %q", cfg.Rasterizer)
	}

	if cfg.ExportDir == "" {
		// Downloads folder in the user's home, like a browser save
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		cfg.ExportDir = filepath.Join(home, "Downloads", "whosoever-designs")
	}

	return cfg, nil
}

// databaseURL prefers DATABASE_URL and falls back to the individual DB_* variables.
// Returns "" when neither is configured.
func databaseURL() string {
	if connStr := strings.TrimSpace(os.Getenv("DATABASE_URL")); connStr != "" {
		return connStr
	}

	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	dbname := os.Getenv("DB_NAME")
	if host == "" || user == "" || dbname == "" {
		return ""
	}

	port := firstNonEmpty(os.Getenv("DB_PORT"), "5432")
	sslmode := firstNonEmpty(os.Getenv("DB_SSLMODE"), "disable")
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, os.Getenv("DB_PASSWORD"), dbname, sslmode)
}

func floatEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, raw, err)
	}
	return v, nil
}

// durationEnv accepts Go durations ("45m") or plain seconds ("900")
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, raw, err)
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
