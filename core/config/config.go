package config

import (
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App       AppConfig
	Paths     PathsConfig
	Database  DatabaseConfig
	Scheduler SchedulerConfig
	Broadcast BroadcastConfig
	Channels  ChannelsConfig
}

type AppConfig struct {
	Version        string
	Port           string
	Debug          bool
	Environment    string
	BasePath       string
	TrustedProxies []string
}

type PathsConfig struct {
	BaseDir  string
	Storages string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB name for Postgres
}

// SchedulerConfig drives the dispatch engine cadence.
type SchedulerConfig struct {
	TickInterval   time.Duration
	AdapterTimeout time.Duration
}

// BroadcastConfig carries the pacing defaults applied to newly created
// broadcasts and the send rate inside a single batch.
type BroadcastConfig struct {
	DefaultBatchSize       int
	DefaultIntervalMinutes int
	SendRatePerSec         int
}

// ChannelsConfig maps channel names to webhook endpoints for the generic
// webhook publisher. Real platform adapters are registered in code.
type ChannelsConfig struct {
	Webhooks map[string]string // channel name -> URL
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	appCfg := AppConfig{
		Version:     "v1.3.0",
		Port:        getEnv("APP_PORT", "3000"),
		Debug:       getEnvBool("APP_DEBUG", false),
		Environment: getEnv("APP_ENV", "development"),
		BasePath:    getEnv("APP_BASE_PATH", ""),
	}
	if v := getEnv("APP_TRUSTED_PROXIES", ""); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	pathsCfg := PathsConfig{
		BaseDir:  baseDir,
		Storages: baseDir,
	}

	dbCfg := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "sqlite"),
		Name:     getEnv("DB_NAME", filepath.Join(pathsCfg.Storages, "omnipost.db")),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
	}

	schedCfg := SchedulerConfig{
		TickInterval:   time.Duration(getEnvInt("SCHEDULER_TICK_SECONDS", 60)) * time.Second,
		AdapterTimeout: time.Duration(getEnvInt("SCHEDULER_ADAPTER_TIMEOUT_SECONDS", 30)) * time.Second,
	}

	bcCfg := BroadcastConfig{
		DefaultBatchSize:       getEnvInt("BROADCAST_BATCH_SIZE", 5),
		DefaultIntervalMinutes: getEnvInt("BROADCAST_BATCH_INTERVAL_MINUTES", 8),
		SendRatePerSec:         getEnvInt("BROADCAST_SEND_RATE_PER_SEC", 5),
	}

	// CHANNEL_WEBHOOKS="instagram=https://hook.example/ig,whatsapp=https://hook.example/wa"
	chCfg := ChannelsConfig{Webhooks: map[string]string{}}
	if raw := getEnv("CHANNEL_WEBHOOKS", ""); raw != "" {
		for _, pair := range strings.Split(raw, ",") {
			name, url, ok := strings.Cut(strings.TrimSpace(pair), "=")
			if ok && name != "" && url != "" {
				chCfg.Webhooks[strings.ToLower(name)] = url
			}
		}
	}

	cfg := &Config{
		App:       appCfg,
		Paths:     pathsCfg,
		Database:  dbCfg,
		Scheduler: schedCfg,
		Broadcast: bcCfg,
		Channels:  chCfg,
	}

	Global = cfg
	return cfg, nil
}
