package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/docsync/pkg/constants"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Remote store
	Endpoint          string
	RequestTimeout    time.Duration
	RequestsPerSecond float64

	// Catalog
	CatalogName         string
	LibraryPath         string
	AutoRefreshInterval time.Duration

	// Summaries
	GeminiAPIKey string
	GeminiModel  string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (DOCSYNC_ENDPOINT, GEMINI_API_KEY, ...)
// 3. .env files
// 4. Config file (~/.docsync.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.SetEnvPrefix("docsync")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := bindAPIKeys(); err != nil {
		return nil, err
	}

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(constants.DefaultConfigFile)
	}

	// A missing config file is fine
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),
		Format:  viper.GetString("format"),

		ConfigFile: viper.ConfigFileUsed(),

		Endpoint:          viper.GetString("endpoint"),
		RequestTimeout:    viper.GetDuration("request_timeout"),
		RequestsPerSecond: viper.GetFloat64("requests_per_second"),

		CatalogName:         viper.GetString("catalog_name"),
		LibraryPath:         viper.GetString("library_path"),
		AutoRefreshInterval: viper.GetDuration("auto_refresh_interval"),

		GeminiAPIKey: viper.GetString("gemini_api_key"),
		GeminiModel:  viper.GetString("gemini_model"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	config.applyDefaults()
	return config, nil
}

// applyDefaults fills every unset value.
func (c *Config) applyDefaults() {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = constants.DefaultRequestTimeout
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = constants.DefaultRequestsPerSecond
	}
	if c.CatalogName == "" {
		c.CatalogName = constants.DefaultCatalogName
	}
	if c.LibraryPath == "" {
		c.LibraryPath = filepath.Join(constants.DefaultDataPath, constants.DefaultLibraryFile)
	}
	c.LibraryPath = expandHome(c.LibraryPath)
	if c.AutoRefreshInterval <= 0 {
		c.AutoRefreshInterval = constants.DefaultAutoRefreshInterval
	}
	if c.GeminiModel == "" {
		c.GeminiModel = constants.DefaultGeminiModel
	}
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, endpoint string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if endpoint != "" {
		c.Endpoint = endpoint
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// bindAPIKeys maps the conventional Gemini key variables onto the
// gemini_api_key setting.
func bindAPIKeys() error {
	if err := viper.BindEnv("gemini_api_key", "DOCSYNC_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return fmt.Errorf("binding gemini_api_key: %w", err)
	}
	return nil
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
