package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	DatabasePath   string
	BaseDomain     string // parent domain shop subdomains hang off, e.g. "localhost"
	CookieDomain   string // Domain attribute for the session cookie, e.g. ".localhost"
	AllowedOrigins []string
	AppEnv         string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "3000")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	origins := strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3001"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return &Config{
		ServerPort:     port,
		DatabasePath:   getEnv("DATABASE_PATH", "./shopstack.db"),
		BaseDomain:     getEnv("BASE_DOMAIN", "localhost"),
		CookieDomain:   getEnv("COOKIE_DOMAIN", ".localhost"),
		AllowedOrigins: origins,
		AppEnv:         getEnv("APP_ENV", "development"),
	}, nil
}

// IsProduction reports whether the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
