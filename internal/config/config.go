package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Bounds for the chunk sizes and the custom cron interval. Values outside
// these ranges are clamped, not rejected.
const (
	MinImportChunkSize   = 10
	MaxImportChunkSize   = 500
	MinBackfillChunkSize = 5
	MaxBackfillChunkSize = 100
	MinCustomMinutes     = 5
	MaxCustomMinutes     = 1440
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string

	// API Configuration
	APIPort string
	APIHost string

	// EDGE connection
	ConnectionKind string // "sftp" or "ftp"
	EdgeHost       string
	EdgeUsername   string
	EdgePassword   string
	EdgePort       int
	RemoteFolder   string // base path; Inbox/Outbox are derived
	VendorID       int

	// Flow tuning
	CustomerChunkSize int
	ProductChunkSize  int
	BackfillChunkSize int

	// Cron
	CustomerCronEnabled       bool
	CustomerCronInterval      string
	CustomerCronCustomMinutes int
	ProductCronEnabled        bool
	ProductCronInterval       string
	ProductCronCustomMinutes  int

	// Mail
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string
	SiteName string
	SiteURL  string

	// Local media
	UploadsDir string

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:  getEnv("DATABASE_URL", "sqlite://edgesync.db"),
		KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
		APIPort:      getEnv("API_PORT", "8080"),
		APIHost:      getEnv("API_HOST", "0.0.0.0"),

		ConnectionKind: getEnv("EDGE_CONNECTION_TYPE", "sftp"),
		EdgeHost:       getEnv("EDGE_HOST", ""),
		EdgeUsername:   getEnv("EDGE_USERNAME", ""),
		EdgePassword:   getEnv("EDGE_PASSWORD", ""),
		EdgePort:       getEnvAsInt("EDGE_PORT", 22),
		RemoteFolder:   getEnv("EDGE_REMOTE_FOLDER", "/"),
		VendorID:       getEnvAsInt("EDGE_VENDOR_ID", 0),

		CustomerChunkSize: clamp(getEnvAsInt("EDGE_CUSTOMER_CHUNK_SIZE", 50), MinImportChunkSize, MaxImportChunkSize),
		ProductChunkSize:  clamp(getEnvAsInt("EDGE_PRODUCT_CHUNK_SIZE", 100), MinImportChunkSize, MaxImportChunkSize),
		BackfillChunkSize: clamp(getEnvAsInt("EDGE_BACKFILL_CHUNK_SIZE", 25), MinBackfillChunkSize, MaxBackfillChunkSize),

		CustomerCronEnabled:       getEnvAsBool("EDGE_CUSTOMER_ENABLE_CRON", false),
		CustomerCronInterval:      getEnv("EDGE_CUSTOMER_CRON_INTERVAL", "daily"),
		CustomerCronCustomMinutes: clamp(getEnvAsInt("EDGE_CUSTOMER_CRON_CUSTOM_MINUTES", 30), MinCustomMinutes, MaxCustomMinutes),
		ProductCronEnabled:        getEnvAsBool("EDGE_PRODUCT_ENABLE_CRON", false),
		ProductCronInterval:       getEnv("EDGE_PRODUCT_CRON_INTERVAL", "daily"),
		ProductCronCustomMinutes:  clamp(getEnvAsInt("EDGE_PRODUCT_CRON_CUSTOM_MINUTES", 30), MinCustomMinutes, MaxCustomMinutes),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", "noreply@localhost"),
		SiteName: getEnv("SITE_NAME", "Storefront"),
		SiteURL:  getEnv("SITE_URL", "http://localhost"),

		UploadsDir: getEnv("UPLOADS_DIR", "uploads"),

		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
