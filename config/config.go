package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Config holds every tunable for the application. It is loaded once in main
// and consumed by value; handlers never reach for magic numbers directly.
type Config struct {
	Listen   string `yaml:"listen"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	UseSSL   bool   `yaml:"use_ssl"`

	// Process-wide request throttle, separate from the per-user
	// submission limits below
	RateLimit      float64 `yaml:"rate_limit"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	// Server submission limits
	MaxServersPerRequest int           `yaml:"max_servers_per_request"`
	MaxServersPerWindow  int           `yaml:"max_servers_per_window"`
	ServerRateWindow     time.Duration `yaml:"-"`

	// Game request limits
	MaxGameRequestsPerWindow int           `yaml:"max_game_requests_per_window"`
	GameRateWindow           time.Duration `yaml:"-"`

	// Read path
	PageSize         int           `yaml:"page_size"`
	SearchLimit      int           `yaml:"search_limit"`
	TrendingLimit    int           `yaml:"trending_limit"`
	GamesCacheTTL    time.Duration `yaml:"-"`
	SearchCacheTTL   time.Duration `yaml:"-"`
	TrendingCacheTTL time.Duration `yaml:"-"`

	SessionTTL    time.Duration `yaml:"-"`
	RobloxTimeout time.Duration `yaml:"-"`

	ReadTimeout  time.Duration `yaml:"-"`
	WriteTimeout time.Duration `yaml:"-"`
}

// fileDurations carries the duration keys of the config file. They come in
// Go syntax ("5m", "1h") and are parsed separately because yaml only decodes
// time.Duration from raw nanoseconds
type fileDurations struct {
	ServerRateWindow string `yaml:"server_rate_window"`
	GameRateWindow   string `yaml:"game_rate_window"`
	GamesCacheTTL    string `yaml:"games_cache_ttl"`
	SearchCacheTTL   string `yaml:"search_cache_ttl"`
	TrendingCacheTTL string `yaml:"trending_cache_ttl"`
	SessionTTL       string `yaml:"session_ttl"`
	RobloxTimeout    string `yaml:"roblox_timeout"`
	ReadTimeout      string `yaml:"read_timeout"`
	WriteTimeout     string `yaml:"write_timeout"`
}

func setDuration(dst *time.Duration, raw, key string) {
	if raw == "" {
		return
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("Could not parse %s %q: %v", key, raw, err)
	}
	*dst = d
}

// Default returns the stock configuration
func Default() Config {
	return Config{
		Listen:   "",
		Port:     "5000",
		LogLevel: "info",

		RateLimit:      100,
		RateLimitBurst: 200,

		MaxServersPerRequest: 10,
		MaxServersPerWindow:  20,
		ServerRateWindow:     5 * time.Minute,

		MaxGameRequestsPerWindow: 5,
		GameRateWindow:           time.Hour,

		PageSize:         10,
		SearchLimit:      8,
		TrendingLimit:    5,
		GamesCacheTTL:    time.Minute,
		SearchCacheTTL:   5 * time.Minute,
		TrendingCacheTTL: 30 * time.Minute,

		SessionTTL:    6 * time.Hour,
		RobloxTimeout: 10 * time.Second,

		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// Load builds the runtime configuration: defaults, then an optional yaml
// file, then environment variable overrides
func Load(path string) Config {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Could not read config file %s: %v", path, err)
		} else {
			if err = yaml.Unmarshal(data, &cfg); err != nil {
				log.Fatalf("Could not parse config file %s: %v", path, err)
			}
			var durations fileDurations
			if err = yaml.Unmarshal(data, &durations); err != nil {
				log.Fatalf("Could not parse config file %s: %v", path, err)
			}
			setDuration(&cfg.ServerRateWindow, durations.ServerRateWindow, "server_rate_window")
			setDuration(&cfg.GameRateWindow, durations.GameRateWindow, "game_rate_window")
			setDuration(&cfg.GamesCacheTTL, durations.GamesCacheTTL, "games_cache_ttl")
			setDuration(&cfg.SearchCacheTTL, durations.SearchCacheTTL, "search_cache_ttl")
			setDuration(&cfg.TrendingCacheTTL, durations.TrendingCacheTTL, "trending_cache_ttl")
			setDuration(&cfg.SessionTTL, durations.SessionTTL, "session_ttl")
			setDuration(&cfg.RobloxTimeout, durations.RobloxTimeout, "roblox_timeout")
			setDuration(&cfg.ReadTimeout, durations.ReadTimeout, "read_timeout")
			setDuration(&cfg.WriteTimeout, durations.WriteTimeout, "write_timeout")
		}
	}

	if listen, exists := os.LookupEnv("LISTEN"); exists {
		cfg.Listen = listen
	}
	if port, exists := os.LookupEnv("PORT"); exists {
		cfg.Port = port
	}
	if level, exists := os.LookupEnv("LOG_LEVEL"); exists {
		cfg.LogLevel = level
	}
	if ssl, exists := os.LookupEnv("USE_SSL"); exists {
		cfg.UseSSL = ssl == "true" || ssl == "yes"
	}
	if limit, exists := os.LookupEnv("RATE_LIMIT"); exists {
		if f, err := strconv.ParseFloat(limit, 64); err == nil {
			cfg.RateLimit = f
		}
	}

	return cfg
}
