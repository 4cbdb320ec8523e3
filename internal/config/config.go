package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultAdminPassword seeds the first admin when ADMIN_PASSWORD is unset.
const DefaultAdminPassword = "admin1"

// Config holds every setting the server reads from the environment.
type Config struct {
	Port string

	Database DatabaseConfig

	JWTSecret string
	TokenTTL  time.Duration

	CORSOrigins []string

	UploadDir      string
	UploadMaxBytes int64
	UploadBaseURL  string
	S3Bucket       string
	AWSRegion      string

	LogFile  string
	LogLevel string

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// DatabaseConfig selects the store. Driver "sqlite" uses Path; "postgres"
// uses the connection fields.
type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

// Load reads .env (if present) and the process environment, applying
// defaults for anything unset.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on env vars")
	}

	return Config{
		Port: getEnv("PORT", "5000"),
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			Path:     getEnv("DB_PATH", "./db/database.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "bus_tracker"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			TimeZone: getEnv("DB_TIMEZONE", "UTC"),
		},
		JWTSecret:      getEnv("JWT_SECRET", "supersecret"),
		TokenTTL:       getDuration("TOKEN_TTL", 24*time.Hour),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		UploadMaxBytes: getInt64("UPLOAD_MAX_BYTES", 5<<20),
		UploadBaseURL:  getEnv("UPLOAD_BASE_URL", "/uploads"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		LogFile:        getEnv("LOG_FILE", "./logs/app.log"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AdminName:      getEnv("ADMIN_NAME", "Admin User"),
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@mail.com"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", DefaultAdminPassword),
	}
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.WithError(err).Warnf("invalid %s, using %s", key, defaultValue)
		return defaultValue
	}
	return d
}

func getInt64(key string, defaultValue int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		logrus.WithError(err).Warnf("invalid %s, using %d", key, defaultValue)
		return defaultValue
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
