// Package config reads the front end's settings from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vibetube/vibetube/internal/backend"
	"github.com/vibetube/vibetube/internal/storage"
)

const (
	defaultPort           = "8080"
	defaultBaseURL        = "http://localhost:8080"
	defaultRequestTimeout = 15 * time.Second
	defaultUploadTimeout  = 10 * time.Minute
	defaultMaxUploadBytes = 500 * 1024 * 1024
	defaultUploadRate     = 0.5
	defaultUploadBurst    = 5
)

type Config struct {
	Port           string
	BaseURL        string
	BackendURL     string
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	MaxUploadBytes int64
	UploadRate     float64
	UploadBurst    int
	GeoIPDB        string
	TrustProxy     bool
	Storage        storage.Config
}

// StorageEnabled reports whether player sources should be presigned
// storage URLs instead of backend stream URLs.
func (c Config) StorageEnabled() bool {
	return c.Storage.Bucket != ""
}

// LoadDotEnv loads the given files into the environment. Missing files are
// skipped and variables that are already set are left alone.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load builds a Config from the environment. Unparseable numbers and
// durations fall back to their defaults.
func Load() Config {
	return Config{
		Port:           getEnv("PORT", defaultPort),
		BaseURL:        getEnv("BASE_URL", defaultBaseURL),
		BackendURL:     getEnv("BACKEND_URL", backend.DefaultBaseURL),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", defaultRequestTimeout),
		UploadTimeout:  getEnvDuration("UPLOAD_TIMEOUT", defaultUploadTimeout),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		UploadRate:     getEnvFloat("UPLOAD_RATE_PER_SEC", defaultUploadRate),
		UploadBurst:    int(getEnvInt64("UPLOAD_BURST", defaultUploadBurst)),
		GeoIPDB:        os.Getenv("GEOIP_DB"),
		TrustProxy:     getEnvBool("TRUST_PROXY", false),
		Storage: storage.Config{
			Endpoint:       os.Getenv("S3_ENDPOINT"),
			PublicEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
			Bucket:         os.Getenv("S3_BUCKET"),
			KeyPrefix:      os.Getenv("S3_PREFIX"),
			AccessKey:      os.Getenv("S3_ACCESS_KEY"),
			SecretKey:      os.Getenv("S3_SECRET_KEY"),
			Region:         getEnv("S3_REGION", "eu-central-1"),
		},
	}
}

// PublicStorageEndpoint is the storage origin browsers fetch media from.
func (c Config) PublicStorageEndpoint() string {
	if c.Storage.PublicEndpoint != "" {
		return c.Storage.PublicEndpoint
	}
	return c.Storage.Endpoint
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("30s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
