package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env             string
	Port            string
	DatabaseURL     string
	RedisURL        string
	EventChannel    string        // shared pub/sub channel for change events
	CacheMaxAge     time.Duration // staleness cutoff per collection
	PollInterval    time.Duration // auto-refresh polling fallback interval
	PollMaxFailures int           // consecutive poll failures before giving up
	DebounceWindow  time.Duration // coalescing window for bursty change events
	HealthAdminKey  string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = viper.GetString("DATABASE_URL")
	}

	channel := viper.GetString("EVENT_CHANNEL")
	if channel == "" {
		channel = "crestfund:events"
	}

	return &Config{
		Env:             env,
		Port:            port,
		DatabaseURL:     dbURL,
		RedisURL:        viper.GetString("REDIS_URL"),
		EventChannel:    channel,
		CacheMaxAge:     durationOr("CACHE_MAX_AGE_MS", 300000),
		PollInterval:    durationOr("POLL_INTERVAL_MS", 30000),
		PollMaxFailures: intOr("POLL_MAX_FAILURES", 5),
		DebounceWindow:  durationOr("DEBOUNCE_WINDOW_MS", 1000),
		HealthAdminKey:  viper.GetString("HEALTH_ADMIN_KEY"),
	}, nil
}

func durationOr(key string, defMs int) time.Duration {
	ms := viper.GetInt(key)
	if ms <= 0 {
		ms = defMs
	}
	return time.Duration(ms) * time.Millisecond
}

func intOr(key string, def int) int {
	v := viper.GetInt(key)
	if v <= 0 {
		return def
	}
	return v
}
