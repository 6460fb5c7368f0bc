package config

import "os"

// Config holds the application configuration.
type Config struct {
	// Environment
	Environment string
	Port        string

	// Music model store and corpus locations
	CorpusDir string // Root of per-genre symbolic corpora
	ModelsDir string // Persisted training artifacts, loaded at startup

	// Database (optional - training-run history only)
	DatabaseURL string

	// Observability
	SentryDSN string // Sentry DSN for error tracking
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		CorpusDir:   getEnv("CORPUS_DIR", "./corpus"),
		ModelsDir:   getEnv("MODELS_DIR", "./models"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
