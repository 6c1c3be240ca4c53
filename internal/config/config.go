// apps/go-server/internal/config/config.go
//
// Environment-driven configuration. main loads .env (godotenv) first, so
// every field can come from either the process environment or that file.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port           string        // PORT
	DBPath         string        // DB_PATH, sqlite file
	JWTSecret      string        // JWT_SECRET
	JWTExpiresDays int           // JWT_EXPIRES_DAYS
	CookieName     string        // COOKIE_NAME, auth cookie
	ClientOrigin   string        // CLIENT_ORIGIN, CORS origin
	DailySalt      string        // DAILY_SALT
	BordersFile    string        // BORDERS_FILE, JSON or YAML; empty uses the embedded map
	StrictBorders  bool          // BORDERS_STRICT, reject asymmetric border data
	UnsplashKey    string        // UNSPLASH_ACCESS_KEY
	RedisURL       string        // REDIS_URL, optional image cache
	StaticDir      string        // STATIC_DIR, optional bundled photos
	SessionTTL     time.Duration // SESSION_TTL, how long idle or finished trips are kept
	Production     bool          // APP_ENV=production: secure cookies, plain logs
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:           envOrDefault("PORT", "5175"),
		DBPath:         envOrDefault("DB_PATH", "./data/app.db"),
		JWTSecret:      envOrDefault("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: envInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     envOrDefault("COOKIE_NAME", "overland_token"),
		ClientOrigin:   envOrDefault("CLIENT_ORIGIN", "http://localhost:3000"),
		DailySalt:      envOrDefault("DAILY_SALT", "local_dev_salt"),
		BordersFile:    os.Getenv("BORDERS_FILE"),
		StrictBorders:  envBool("BORDERS_STRICT", false),
		UnsplashKey:    os.Getenv("UNSPLASH_ACCESS_KEY"),
		RedisURL:       os.Getenv("REDIS_URL"),
		StaticDir:      os.Getenv("STATIC_DIR"),
		SessionTTL:     envDuration("SESSION_TTL", 6*time.Hour),
		Production:     strings.EqualFold(os.Getenv("APP_ENV"), "production"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}
