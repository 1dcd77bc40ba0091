package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            string
	Environment     string
	SupabaseURL     string
	SupabaseKey     string
	SupabaseDBURL   string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	CORSOrigins     string
	TablePrefix     string
	// Public share links
	PublicBaseURL string // e.g. https://galeria.example.com, used to build /share/{token} URLs
	// Storage signing
	StorageProvider string // "s3" or "local"
	S3Bucket        string
	S3Region        string
	S3Endpoint      string // optional, for S3-compatible stores
	LocalSignSecret string // HMAC secret for the local provider
	SignedURLTTL    time.Duration
	// Share-token resolution cache
	ShareCacheSize int
	ShareCacheTTL  time.Duration
	// Optional file logging; stdout JSON logging is always on
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := getEnv("SUPABASE_URL", "")

	// Construct JWKS URL from Supabase URL
	jwksURL := supabaseURL + "/auth/v1/.well-known/jwks.json"

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		SupabaseURL:     supabaseURL,
		SupabaseKey:     getEnv("SUPABASE_KEY", ""),
		SupabaseDBURL:   getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL: jwksURL,
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:     tablePrefix,
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		StorageProvider: getEnv("STORAGE_PROVIDER", "local"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		LocalSignSecret: getEnv("LOCAL_SIGN_SECRET", ""),
		SignedURLTTL:    getEnvDuration("SIGNED_URL_TTL", 15*time.Minute),
		ShareCacheSize:  getEnvInt("SHARE_CACHE_SIZE", 1024),
		ShareCacheTTL:   getEnvDuration("SHARE_CACHE_TTL", 5*time.Minute),
		LogDir:          getEnv("LOG_DIR", ""),
		LogMaxFiles:     getEnvInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
