package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	Port          int
	RedisURL      string
	RedisPassword string
	GeminiAPIKey  string // optional, rule-based extraction is used when empty
	DBPath        string
	ProfilePath   string // optional YAML restaurant profile
	SweepMaxAge   time.Duration
	SweepInterval time.Duration
	MirrorTTL     time.Duration
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Port:          8080,
		RedisURL:      "localhost:6379",
		RedisPassword: "",
		DBPath:        "reservations.db",
		SweepMaxAge:   time.Hour,
		SweepInterval: 10 * time.Minute,
		MirrorTTL:     2 * time.Hour,
	}

	// Optional: GEMINI_API_KEY (rule-based extraction when unset)
	config.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	// Optional: PORT
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = p
	}

	// Optional: REDIS_URL (set to empty to disable the Redis mirror)
	if redisURL, ok := os.LookupEnv("REDIS_URL"); ok {
		config.RedisURL = redisURL
	}

	// Optional: REDIS_PASSWORD
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.RedisPassword = redisPassword
	}

	// Optional: DB_PATH
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		config.DBPath = dbPath
	}

	// Optional: PROFILE_PATH
	if profilePath := os.Getenv("PROFILE_PATH"); profilePath != "" {
		config.ProfilePath = profilePath
	}

	// Optional: SWEEP_MAX_AGE (in seconds)
	if maxAge := os.Getenv("SWEEP_MAX_AGE"); maxAge != "" {
		a, err := strconv.Atoi(maxAge)
		if err != nil {
			return nil, fmt.Errorf("invalid SWEEP_MAX_AGE: %w", err)
		}
		config.SweepMaxAge = time.Duration(a) * time.Second
	}

	// Optional: SWEEP_INTERVAL (in seconds)
	if interval := os.Getenv("SWEEP_INTERVAL"); interval != "" {
		i, err := strconv.Atoi(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
		}
		config.SweepInterval = time.Duration(i) * time.Second
	}

	// Optional: MIRROR_TTL (in seconds)
	if ttl := os.Getenv("MIRROR_TTL"); ttl != "" {
		s, err := strconv.Atoi(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid MIRROR_TTL: %w", err)
		}
		config.MirrorTTL = time.Duration(s) * time.Second
	}

	return config, nil
}
