package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	errs "wvdl/pkg/errors"
)

const (
	// DefaultDownloadPath is used for any feed whose path is not configured.
	DefaultDownloadPath = "posts"

	DefaultMaxConnections = 20
	DefaultAPIBaseURL     = "https://weversewebapi.weverse.io/wapi/v1"
	DefaultWebBaseURL     = "https://weverse.io"
)

// Config holds all configuration options for the downloader
type Config struct {
	CookiesFile    string                  `yaml:"cookies_file" toml:"cookies_file"`
	KeepOpen       bool                    `yaml:"keep_open" toml:"keep_open"`
	MaxConnections int                     `yaml:"max_connections" toml:"max_connections"`
	Artists        map[string]ArtistConfig `yaml:"artists" toml:"artists"`

	HTTP    HTTPConfig    `yaml:"http" toml:"http"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ArtistConfig holds the per-creator download paths and recency limits.
// A nil limit means unlimited; a limit <= 0 disables that feed.
type ArtistConfig struct {
	ArtistDownloadPath  string `yaml:"artist_download_path,omitempty" toml:"artist_download_path"`
	MomentsDownloadPath string `yaml:"moments_download_path,omitempty" toml:"moments_download_path"`
	RecentArtist        *int   `yaml:"recent_artist,omitempty" toml:"recent_artist"`
	RecentMoments       *int   `yaml:"recent_moments,omitempty" toml:"recent_moments"`
}

// HTTPConfig holds transport settings
type HTTPConfig struct {
	APIBaseURL        string        `yaml:"api_base_url" toml:"api_base_url"`
	WebBaseURL        string        `yaml:"web_base_url" toml:"web_base_url"`
	UserAgent         string        `yaml:"user_agent" toml:"user_agent"`
	Timeout           time.Duration `yaml:"timeout" toml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" toml:"requests_per_second"`
	MaxRetries        int           `yaml:"max_retries" toml:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay" toml:"retry_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
	File  string `yaml:"file" toml:"file"`
}

// PostsPath returns the directory that normal posts are committed under.
func (a ArtistConfig) PostsPath() string {
	if a.ArtistDownloadPath == "" {
		return DefaultDownloadPath
	}
	return a.ArtistDownloadPath
}

// MomentsPath returns the directory that moments are committed under.
func (a ArtistConfig) MomentsPath() string {
	if a.MomentsDownloadPath == "" {
		return DefaultDownloadPath
	}
	return a.MomentsDownloadPath
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		KeepOpen:       false,
		MaxConnections: DefaultMaxConnections,
		Artists:        make(map[string]ArtistConfig),
		HTTP: HTTPConfig{
			APIBaseURL: DefaultAPIBaseURL,
			WebBaseURL: DefaultWebBaseURL,
			UserAgent:  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RetryDelay: time.Second,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("WVDL_COOKIES_FILE"); v != "" {
		c.CookiesFile = v
	}
	if v := os.Getenv("WVDL_KEEP_OPEN"); v != "" {
		c.KeepOpen = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("WVDL_MAX_CONNECTIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WVDL_MAX_CONNECTIONS: %w", err)
		}
		c.MaxConnections = n
	}
	if v := os.Getenv("WVDL_REQUESTS_PER_SECOND"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("WVDL_REQUESTS_PER_SECOND: %w", err)
		}
		c.HTTP.RequestsPerSecond = rps
	}
	if v := os.Getenv("WVDL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("WVDL_TIMEOUT: %w", err)
		}
		c.HTTP.Timeout = d
	}
	if v := os.Getenv("WVDL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("WVDL_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or TOML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, c); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	c.normalize()
	return nil
}

// normalize lower-cases artist keys; creator names are matched
// case-insensitively against the community list.
func (c *Config) normalize() {
	if c.Artists == nil {
		c.Artists = make(map[string]ArtistConfig)
		return
	}
	artists := make(map[string]ArtistConfig, len(c.Artists))
	for name, ac := range c.Artists {
		artists[strings.ToLower(strings.TrimSpace(name))] = ac
	}
	c.Artists = artists
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"config.yaml",
		"config.yml",
		"config.toml",
		"wvdl.yaml",
		filepath.Join(home, ".config", "wvdl", "config.yaml"),
		filepath.Join(home, ".config", "wvdl", "config.toml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// ArtistNames returns the configured creator names in sorted order.
func (c *Config) ArtistNames() []string {
	names := make([]string, 0, len(c.Artists))
	for name := range c.Artists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errList []error

	if c.MaxConnections <= 0 {
		errList = append(errList, errors.New("max_connections must be positive"))
	}
	if len(c.Artists) == 0 {
		errList = append(errList, errors.New("at least one artist must be configured"))
	}
	for name := range c.Artists {
		if name == "" {
			errList = append(errList, errors.New("artist name cannot be empty"))
		}
	}

	if c.HTTP.APIBaseURL == "" {
		errList = append(errList, errors.New("api base url is required"))
	}
	if c.HTTP.Timeout <= 0 {
		errList = append(errList, errors.New("http timeout must be positive"))
	}
	if c.HTTP.RequestsPerSecond < 0 {
		errList = append(errList, errors.New("requests per second cannot be negative"))
	}
	if c.HTTP.MaxRetries < 0 {
		errList = append(errList, errors.New("max retries cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errList = append(errList, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	if len(errList) > 0 {
		return errors.Join(errList...)
	}

	return nil
}

// Save saves the configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if cookies, ok := flags["cookies"].(string); ok && cookies != "" {
		c.CookiesFile = cookies
	}
	if n, ok := flags["max-connections"].(int); ok && n > 0 {
		c.MaxConnections = n
	}
	if rps, ok := flags["requests-per-second"].(float64); ok && rps >= 0 {
		c.HTTP.RequestsPerSecond = rps
	}
	if keepOpen, ok := flags["keep-open"].(bool); ok {
		c.KeepOpen = keepOpen
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".wvdl.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfig, configPath, "failed to load config file", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfig, "", "failed to load environment variables", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfig, configPath, "configuration validation failed", err)
	}

	return config, nil
}
