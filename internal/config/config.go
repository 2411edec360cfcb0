// Package config loads the verification engine's settings from the
// environment, with documented defaults for everything (spec.md §6).
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Noah-Everett/phiacta-verify/internal/logging"
)

// envPrefix is prepended to every configuration key's environment variable
// name, e.g. VERIFY_QUEUE_URL.
const envPrefix = "VERIFY_"

// Config holds the engine's runtime configuration.
type Config struct {
	QueueURL         string
	MaxCodeSizeBytes int64
	SigningKeyPath   string
	MaxWorkers       int
	LogLevel         string
	CORSOrigins      []string
	UpstreamURL      string
	UpstreamToken    string
}

// Load reads .env (falling back to ../.env, matching the teacher's
// bootstrap order) and returns a Config populated from the environment,
// applying defaults for anything unset.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load("../.env")
	}

	return &Config{
		QueueURL:         getEnv("QUEUE_URL", "redis://localhost:6379/0"),
		MaxCodeSizeBytes: getEnvInt64("MAX_CODE_SIZE_BYTES", 1_048_576),
		SigningKeyPath:   getEnv("SIGNING_KEY_PATH", "keys/ed25519.pem"),
		MaxWorkers:       int(getEnvInt64("MAX_WORKERS", 4)),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		CORSOrigins:      getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		UpstreamURL:      getEnv("UPSTREAM_URL", ""),
		UpstreamToken:    getEnv("UPSTREAM_TOKEN", ""),
	}
}

// MustValidate exits the process with a fatal log line if the configuration
// is unusable, mirroring the teacher's MustValidateSecrets posture.
func (c *Config) MustValidate() {
	if c.MaxCodeSizeBytes <= 0 {
		logging.L().Fatal("invalid configuration", zap.String("reason", "max_code_size_bytes must be positive"))
	}
	if c.MaxWorkers <= 0 {
		logging.L().Fatal("invalid configuration", zap.String("reason", "max_workers must be positive"))
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	raw, ok := os.LookupEnv(envPrefix + key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(envPrefix + key)
	if !ok || raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
