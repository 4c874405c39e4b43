package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Token verification
	AuthJWKSURL  string
	AuthIssuer   string
	AuthAudience string
	JWTSecret    string

	// Tenancy
	DefaultOrgID string

	// Local development bypass (never active in production or when token
	// verification is configured)
	AppEnv        string
	DevBypass     bool
	DevSubject    string
	DevEmail      string
	DevRole       string
	DevOrgID      string

	// Abuse guard
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "orbit_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AuthJWKSURL:  getEnv("AUTH_JWKS_URL", ""),
		AuthIssuer:   getEnv("AUTH_ISSUER", ""),
		AuthAudience: getEnv("AUTH_AUDIENCE", ""),
		JWTSecret:    getEnv("JWT_SECRET", ""),

		DefaultOrgID: getEnv("DEFAULT_ORG_ID", ""),

		AppEnv:     getEnv("APP_ENV", "development"),
		DevBypass:  getEnv("AUTH_DEV_BYPASS", "false") == "true",
		DevSubject: getEnv("DEV_SUBJECT", "dev-user"),
		DevEmail:   getEnv("DEV_EMAIL", "dev@localhost"),
		DevRole:    getEnv("DEV_ROLE", "admin"),
		DevOrgID:   getEnv("DEV_ORG_ID", ""),

		RateLimitMax:    parseInt(getEnv("RATE_LIMIT_MAX", "120")),
		RateLimitWindow: parseDuration(getEnv("RATE_LIMIT_WINDOW", "1m")),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// AuthConfigured reports whether token verification is set up. While true,
// the dev bypass path must never be reachable.
func (c *Config) AuthConfigured() bool {
	return c.AuthJWKSURL != "" || c.JWTSecret != ""
}

// BypassAllowed gates the local-development identity path.
func (c *Config) BypassAllowed() bool {
	return c.AppEnv != "production" && c.DevBypass && !c.AuthConfigured()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Minute
	}
	return d
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 120
	}
	return n
}
