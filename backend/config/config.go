package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBConnectAttempts uint

	JWTSecret string
	TokenTTL  time.Duration

	ServerPort     string
	AllowedOrigins string

	// Timezone decides which calendar day counts as "today" for stats.
	Timezone string
	Location *time.Location

	LeaderboardLimit         int
	LeaderboardUniformStreak bool
	LeaderboardCacheTTL      time.Duration
	RedisURL                 string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	LogFormat string
	LogColors bool
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "study_platform"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
		RedisURL:       getEnv("REDIS_URL", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:  getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}

	var errs []error
	attempts, err := getEnvInt("DB_CONNECT_ATTEMPTS", 5)
	errs = append(errs, err)
	cfg.DBConnectAttempts = uint(attempts)

	tokenMinutes, err := getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24)
	errs = append(errs, err)
	cfg.TokenTTL = time.Duration(tokenMinutes) * time.Minute

	cfg.LeaderboardLimit, err = getEnvInt("LEADERBOARD_LIMIT", 50)
	errs = append(errs, err)
	cfg.LeaderboardUniformStreak, err = getEnvBool("LEADERBOARD_UNIFORM_STREAK", false)
	errs = append(errs, err)
	cfg.LeaderboardCacheTTL, err = getEnvDuration("LEADERBOARD_CACHE_TTL", time.Minute)
	errs = append(errs, err)
	cfg.GeminiTimeout, err = getEnvDuration("GEMINI_TIMEOUT", 30*time.Second)
	errs = append(errs, err)
	cfg.LogColors, err = getEnvBool("LOG_COLORS", false)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.LeaderboardLimit <= 0 {
		return fmt.Errorf("LEADERBOARD_LIMIT must be positive, got %d", c.LeaderboardLimit)
	}
	if c.TokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.DBConnectAttempts == 0 {
		c.DBConnectAttempts = 1
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

// DSN returns the Postgres connection string. DATABASE_URL wins over the split DB_* keys.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   c.DBHost + ":" + c.DBPort,
		Path:   c.DBName,
	}
	q := u.Query()
	q.Set("sslmode", c.DBSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Origins splits AllowedOrigins into a trimmed list.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Now returns the current time in the configured location.
func (c *Config) Now() time.Time {
	if c.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.Location)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
