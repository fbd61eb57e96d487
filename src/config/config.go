package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultSessionSecret = "change-me-session-secret-for-hs256-minimum-32-bytes"

type AppConfig struct {
	Port         string
	LogLevel     string
	DatabasePath string

	UploadFolder       string
	StandardizedPrefix string
	MaxUploadSizeBytes int64

	SessionSecret string
	SessionExpiry time.Duration
	CookieSecure  bool

	ReportCacheExpiration time.Duration

	RateLimitInterval time.Duration
	RateLimitBurst    int

	AllowedOrigins []string

	DefaultTopN          int
	RegionTopN           int
	RegionShareThreshold float64
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")
	Cfg = Load()

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, UploadFolder=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.UploadFolder)
}

// Load reads the configuration from the process environment without touching Cfg.
func Load() *AppConfig {
	sessionSecret := getEnv("SESSION_SECRET", defaultSessionSecret)
	if sessionSecret == defaultSessionSecret {
		log.Println("WARNING: Using default insecure SESSION_SECRET. Set SESSION_SECRET environment variable for production.")
	}

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil || maxUploadSizeBytes <= 0 {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	return &AppConfig{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DatabasePath: getEnv("DATABASE_PATH", "./sales.db"),

		UploadFolder:       getEnv("UPLOAD_FOLDER", "uploads"),
		StandardizedPrefix: getEnv("STANDARDIZED_PREFIX", "standardized_"),
		MaxUploadSizeBytes: maxUploadSizeBytes,

		SessionSecret: sessionSecret,
		SessionExpiry: getEnvAsDuration("SESSION_EXPIRY", 24*time.Hour),
		CookieSecure:  getEnvAsBool("COOKIE_SECURE", false),

		ReportCacheExpiration: getEnvAsDuration("REPORT_CACHE_EXPIRATION", 15*time.Minute),

		RateLimitInterval: getEnvAsDuration("RATE_LIMIT_INTERVAL", 100*time.Millisecond),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 30),

		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		DefaultTopN:          getEnvAsInt("DEFAULT_TOP_N", 10),
		RegionTopN:           getEnvAsInt("REGION_TOP_N", 3),
		RegionShareThreshold: getEnvAsFloat("REGION_SHARE_THRESHOLD", 0.05),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Printf("Invalid float value for %s ('%s'), using default: %g", key, valueStr, fallback)
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
