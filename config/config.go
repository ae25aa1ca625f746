// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// Upstream statistics API.
	ErgastBaseURL      string
	StartYear          int
	UpstreamMaxRetries int

	// Response cache TTL.
	CacheTTL time.Duration

	// Weekly refresh schedule (UTC).
	RefreshDay    time.Weekday
	RefreshHour   int
	RefreshMinute int

	// Server
	Debug          bool
	Port           string
	TLSDomains     []string
	FrontendOrigin string
	RPSLimit       float64
	RPSBurst       int
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	v := newViper()

	// Defaults
	v.SetDefault("DB_USER", "f1api")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "f1data")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("ERGAST_BASE_URL", "https://ergast.com/api/f1")
	v.SetDefault("START_YEAR", 1950)
	v.SetDefault("UPSTREAM_MAX_RETRIES", 6)
	v.SetDefault("CACHE_TTL_SECONDS", 300)
	v.SetDefault("REFRESH_DAY", "monday")
	v.SetDefault("REFRESH_HOUR", 3)
	v.SetDefault("REFRESH_MINUTE", 0)
	v.SetDefault("PORT", ":9000")
	v.SetDefault("TLS_DOMAINS", "")
	v.SetDefault("FRONTEND_ORIGIN", "*")
	v.SetDefault("RPS_LIMIT", 20)
	v.SetDefault("RPS_BURST", 40)
	v.SetDefault("DEBUG", false)

	cfg := &Config{
		DatabaseURL:        v.GetString("DATABASE_URL"),
		DBUser:             v.GetString("DB_USER"),
		DBPass:             v.GetString("DB_PASS"),
		DBHost:             v.GetString("DB_HOST"),
		DBPort:             v.GetString("DB_PORT"),
		DBName:             v.GetString("DB_NAME"),
		DBSSLMode:          v.GetString("DB_SSLMODE"),
		ErgastBaseURL:      strings.TrimRight(v.GetString("ERGAST_BASE_URL"), "/"),
		StartYear:          v.GetInt("START_YEAR"),
		UpstreamMaxRetries: v.GetInt("UPSTREAM_MAX_RETRIES"),
		CacheTTL:           time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		RefreshDay:         parseWeekday(v.GetString("REFRESH_DAY")),
		RefreshHour:        v.GetInt("REFRESH_HOUR"),
		RefreshMinute:      v.GetInt("REFRESH_MINUTE"),
		Debug:              v.GetBool("DEBUG"),
		Port:               v.GetString("PORT"),
		TLSDomains:         splitTrimmed(v.GetString("TLS_DOMAINS")),
		FrontendOrigin:     v.GetString("FRONTEND_ORIGIN"),
		RPSLimit:           v.GetFloat64("RPS_LIMIT"),
		RPSBurst:           v.GetInt("RPS_BURST"),
	}

	cfg.validate()
	return cfg
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

func (c *Config) validate() {
	if c.DatabaseURL == "" && c.DBPass == "" {
		log.Fatal("config: DATABASE_URL or DB_PASS must be set")
	}
	if c.RefreshHour < 0 || c.RefreshHour > 23 {
		log.Fatal("config: REFRESH_HOUR must be between 0 and 23")
	}
	if c.RefreshMinute < 0 || c.RefreshMinute > 59 {
		log.Fatal("config: REFRESH_MINUTE must be between 0 and 59")
	}
	if c.UpstreamMaxRetries < 0 {
		log.Fatal("config: UPSTREAM_MAX_RETRIES must not be negative")
	}
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func parseWeekday(s string) time.Weekday {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday":
		return time.Sunday
	case "monday":
		return time.Monday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	case "saturday":
		return time.Saturday
	default:
		log.Printf("config: unknown REFRESH_DAY %q, defaulting to monday", s)
		return time.Monday
	}
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
