package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	TablePrefix string
	AuthJWKSURL string
	CORSOrigins string
	// Logging
	LogDir      string
	LogMaxFiles int
	// Blob storage
	BlobBackend    string // "s3" or "fs"
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3UseSSL       bool
	BlobDir        string
	BlobBaseURL    string
	BlobSigningKey string
	// Knowledge base behaviour
	AssetMaxBytes      int64
	AssetURLTTL        time.Duration
	CascadeConcurrency int
	RateLimitPerMinute int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	port := getEnv("PORT", "8080")

	return &Config{
		Port:        port,
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getTablePrefix(env),
		AuthJWKSURL: getEnv("AUTH_JWKS_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),

		BlobBackend:    getEnv("BLOB_BACKEND", "fs"),
		S3Endpoint:     getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
		S3Bucket:       getEnv("S3_BUCKET", "knowledge-base"),
		S3UseSSL:       getEnv("S3_USE_SSL", "false") == "true",
		BlobDir:        getEnv("BLOB_DIR", "./data/blobs"),
		BlobBaseURL:    getEnv("BLOB_BASE_URL", "http://localhost:"+port),
		BlobSigningKey: getEnv("BLOB_SIGNING_KEY", devOnly(env, "dev-blob-signing-key")),

		AssetMaxBytes:      int64(getEnvInt("ASSET_MAX_BYTES", DefaultAssetMaxBytes)),
		AssetURLTTL:        getEnvDuration("ASSET_URL_TTL", 15*time.Minute),
		CascadeConcurrency: getEnvInt("CASCADE_CONCURRENCY", DefaultCascadeConcurrency),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 600),
	}
}

// devOnly returns value in the dev environment and "" elsewhere, so
// production must configure secrets explicitly.
func devOnly(env, value string) string {
	if env == "dev" {
		return value
	}
	return ""
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix, ok := os.LookupEnv("TABLE_PREFIX"); ok {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
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
