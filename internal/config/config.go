package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the entire application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
}

// ServerConfig contains OCS server connection settings
type ServerConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	Username          string  `mapstructure:"username"`
	Password          string  `mapstructure:"password"`
	SkipTLSVerify     bool    `mapstructure:"skip_tls_verify"`
	Version           string  `mapstructure:"version"`        // Known server version, skips detection
	DetectVersion     bool    `mapstructure:"detect_version"` // Query status.php when version is empty
	Timeout           string  `mapstructure:"timeout"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig contains snapshot database settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads configuration from the specified file path.
// An empty path reads the environment only. Variables prefixed with OCS_
// override file values, e.g. OCS_SERVER_PASSWORD.
func Load(configPath string) (*Config, error) {
	return load(configPath, (*Config).Validate)
}

// LoadLocal loads configuration for commands that never contact the server.
// Server URL and credentials are not required.
func LoadLocal(configPath string) (*Config, error) {
	return load(configPath, (*Config).ValidateLocal)
}

func load(configPath string, validate func(*Config) error) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ocs")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Registered so AutomaticEnv can resolve them during Unmarshal
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.username", "")
	v.SetDefault("server.password", "")
	v.SetDefault("server.skip_tls_verify", false)
	v.SetDefault("server.version", "")
	v.SetDefault("server.detect_version", true)
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("server.requests_per_second", 0)
	v.SetDefault("server.burst", 1)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("database.path", "")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		return fmt.Errorf("server.base_url must start with http:// or https://")
	}
	if c.Server.Username == "" {
		return fmt.Errorf("server.username is required")
	}
	if c.Server.Password == "" {
		return fmt.Errorf("server.password is required")
	}
	return c.ValidateLocal()
}

// ValidateLocal validates the settings that do not concern the server connection
func (c *Config) ValidateLocal() error {
	if _, err := time.ParseDuration(c.Server.Timeout); err != nil {
		return fmt.Errorf("invalid server.timeout: %w", err)
	}
	if c.Server.RequestsPerSecond < 0 {
		return fmt.Errorf("server.requests_per_second must not be negative")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// GetTimeout returns the request timeout as time.Duration
func (c *ServerConfig) GetTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	if d == 0 {
		return 30 * time.Second
	}
	return d
}
