package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server settings
	ServerPort   string        `json:"server_port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Debug        bool          `json:"debug"`

	// Application paths
	LogDir          string `json:"log_dir"`
	CredentialsPath string `json:"credentials_path"`
	GuidelinesPath  string `json:"guidelines_path"`

	// CORS configuration
	CORS CORSConfig `json:"cors"`

	// Rate limiting
	RateLimit RateLimitConfig `json:"rate_limit"`

	// Cache database settings
	Database DatabaseConfig `json:"database"`

	// Analysis pipeline settings
	Analysis AnalysisConfig `json:"analysis"`

	// Optional archive of final analyses
	Archive ArchiveConfig `json:"archive"`

	// Application version
	Version string `json:"version"`

	// Request and shutdown timeouts
	RequestTimeout  time.Duration `json:"request_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path           string `json:"path"`
	MaxConnections int    `json:"max_connections"`
}

type AnalysisConfig struct {
	CallTimeout    time.Duration `json:"call_timeout"`
	MaxAttempts    int           `json:"max_attempts"`
	RetryDelay     time.Duration `json:"retry_delay"`
	ImproveTimeout time.Duration `json:"improve_timeout"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
}

type ArchiveConfig struct {
	Enabled   bool   `json:"enabled"`
	AccessKey string `json:"-"`
	SecretKey string `json:"-"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	Bucket    string `json:"bucket"`
}

type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
	BurstSize         int  `json:"burst_size"`
}

// Load reads configuration from the environment, after loading a local .env
// file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		Debug:        getEnvAsBool("DEBUG", false),

		// Application paths
		LogDir:          getEnv("LOG_DIR", "/var/log/cliplens"),
		CredentialsPath: getEnv("CREDENTIALS_PATH", "/var/lib/cliplens/credentials.json"),
		GuidelinesPath:  getEnv("GUIDELINES_PATH", ""),

		// Application version
		Version: getEnv("VERSION", "1.0.0"),

		// Request and shutdown timeouts
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 5*time.Minute),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		// CORS configuration
		CORS: CORSConfig{
			Enabled:        getEnvAsBool("CORS_ENABLED", true),
			AllowedOrigins: getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsStringSlice(
				"CORS_ALLOWED_METHODS",
				[]string{"GET", "POST", "DELETE", "OPTIONS"},
			),
			AllowedHeaders:   getEnvAsStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type"}),
			ExposedHeaders:   getEnvAsStringSlice("CORS_EXPOSED_HEADERS", []string{}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 86400),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
			BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
		},

		// Cache database
		Database: DatabaseConfig{
			Path:           getEnv("DB_PATH", "/var/lib/cliplens/cache.db"),
			MaxConnections: getEnvAsInt("DB_MAX_CONNECTIONS", 10),
		},

		// Analysis pipeline
		Analysis: AnalysisConfig{
			CallTimeout:    getEnvAsDuration("LLM_CALL_TIMEOUT", 45*time.Second),
			MaxAttempts:    getEnvAsInt("LLM_MAX_ATTEMPTS", 3),
			RetryDelay:     getEnvAsDuration("LLM_RETRY_DELAY", 2*time.Second),
			ImproveTimeout: getEnvAsDuration("IMPROVE_TIMEOUT", 2*time.Minute),
			Temperature:    getEnvAsFloat("LLM_TEMPERATURE", 0.3),
			MaxTokens:      getEnvAsInt("LLM_MAX_TOKENS", 4096),
		},

		// Archive
		Archive: ArchiveConfig{
			Enabled:   getEnvAsBool("ARCHIVE_ENABLED", false),
			AccessKey: getEnv("ARCHIVE_ACCESS_KEY", ""),
			SecretKey: getEnv("ARCHIVE_SECRET_KEY", ""),
			Region:    getEnv("ARCHIVE_REGION", "us-east-1"),
			Endpoint:  getEnv("ARCHIVE_ENDPOINT", ""),
			Bucket:    getEnv("ARCHIVE_BUCKET", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validatePaths(c); err != nil {
		return err
	}
	if err := validateTimeouts(c); err != nil {
		return err
	}
	return validateArchive(c)
}

func validatePaths(c *Config) error {
	paths := []struct {
		path string
		name string
	}{
		{c.LogDir, "log directory"},
		{filepath.Dir(c.CredentialsPath), "credentials directory"},
		{filepath.Dir(c.Database.Path), "database directory"},
	}

	for _, p := range paths {
		if err := os.MkdirAll(p.path, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p.name, err)
		}
	}

	return nil
}

func validateTimeouts(c *Config) error {
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.Analysis.CallTimeout <= 0 {
		return fmt.Errorf("LLM call timeout must be positive")
	}
	if c.Analysis.MaxAttempts <= 0 {
		return fmt.Errorf("LLM max attempts must be positive")
	}
	return nil
}

func validateArchive(c *Config) error {
	if !c.Archive.Enabled {
		return nil
	}
	if c.Archive.Bucket == "" {
		return fmt.Errorf("archive bucket is required when archiving is enabled")
	}
	if c.Archive.AccessKey == "" || c.Archive.SecretKey == "" {
		return fmt.Errorf("archive credentials are required when archiving is enabled")
	}
	return nil
}

// Helper functions for reading environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			return strings.Split(value, ",")
		}
	}
	return defaultValue
}
