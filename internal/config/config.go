package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	serrors "github.com/cableblog/sitesearch/internal/errors"
	"github.com/cableblog/sitesearch/internal/index"
)

// Config represents the complete sitesearch configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Data      DataConfig      `yaml:"data" json:"data"`
	Index     IndexConfig     `yaml:"index" json:"index"`
	Search    SearchConfig    `yaml:"search" json:"search"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	MCP       MCPConfig       `yaml:"mcp" json:"mcp"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// DataConfig selects the post list to index.
type DataConfig struct {
	// PostsFile is a .yaml, .yml or .json post list. Empty uses the built-in posts.
	PostsFile string `yaml:"posts_file" json:"posts_file"`
}

// IndexConfig configures field weighting and result limits.
type IndexConfig struct {
	TitleBoost      float64 `yaml:"title_boost" json:"title_boost"`
	ExcerptBoost    float64 `yaml:"excerpt_boost" json:"excerpt_boost"`
	CategoriesBoost float64 `yaml:"categories_boost" json:"categories_boost"`
	TagsBoost       float64 `yaml:"tags_boost" json:"tags_boost"`
	PrefixBoost     float64 `yaml:"prefix_boost" json:"prefix_boost"`
	MaxResults      int     `yaml:"max_results" json:"max_results"`
}

// SearchConfig configures the query cycle.
type SearchConfig struct {
	// Debounce is the quiet period before an interactive query runs ("0s" disables it).
	Debounce string `yaml:"debounce" json:"debounce"`
	// CacheSize is the number of distinct queries kept in the result cache (0 disables it).
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// ServerConfig configures the HTTP search server.
type ServerConfig struct {
	Addr          string `yaml:"addr" json:"addr"`
	BaseURL       string `yaml:"base_url" json:"base_url"`
	Watch         bool   `yaml:"watch" json:"watch"`
	WatchDebounce string `yaml:"watch_debounce" json:"watch_debounce"`
	Metrics       bool   `yaml:"metrics" json:"metrics"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	Transport string `yaml:"transport" json:"transport"`
}

// TelemetryConfig configures local query telemetry.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Path of the SQLite database. Empty uses ~/.sitesearch/telemetry.db.
	Path string `yaml:"path" json:"path"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	// File is the rotating log file. Empty logs to stderr only.
	File string `yaml:"file" json:"file"`
}

// Project configuration file names, in lookup order.
var projectConfigNames = []string{".sitesearch.yaml", ".sitesearch.yml"}

// NewConfig creates a new Config with the defaults.
func NewConfig() *Config {
	ic := index.DefaultConfig()
	return &Config{
		Version: 1,
		Index: IndexConfig{
			TitleBoost:      ic.TitleBoost,
			ExcerptBoost:    ic.ExcerptBoost,
			CategoriesBoost: ic.CategoriesBoost,
			TagsBoost:       ic.TagsBoost,
			PrefixBoost:     ic.PrefixBoost,
			MaxResults:      ic.MaxResults,
		},
		Search: SearchConfig{
			Debounce:  "0s",
			CacheSize: 256,
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:4000",
			Watch:         true,
			WatchDebounce: "500ms",
			Metrics:       true,
		},
		MCP: MCPConfig{
			Transport: "stdio",
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DataDir returns the per-user data directory (~/.sitesearch).
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".sitesearch")
	}
	return filepath.Join(home, ".sitesearch")
}

// GetUserConfigPath returns the path to the user configuration file.
// It follows the XDG Base Directory layout:
//   - $XDG_CONFIG_HOME/sitesearch/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/sitesearch/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sitesearch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "sitesearch", "config.yaml")
	}
	return filepath.Join(home, ".config", "sitesearch", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// ProjectConfigPath returns the project configuration file in dir, or the
// preferred name when none exists yet.
func ProjectConfigPath(dir string) string {
	for _, name := range projectConfigNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return filepath.Join(dir, projectConfigNames[0])
}

// Load loads configuration for the given directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config ($XDG_CONFIG_HOME/sitesearch/config.yaml)
//  3. Project config (.sitesearch.yaml in dir)
//  4. Environment variables (SITESEARCH_*)
//
// Command-line flags are applied by the caller on the returned config.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if UserConfigExists() {
		if err := cfg.loadYAML(GetUserConfigPath()); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if path := ProjectConfigPath(dir); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadYAML decodes a YAML file over the current values. Keys absent from
// the file keep their value, so explicit zeros and false are honored.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return serrors.New(serrors.ErrCodeFileUnreadable,
			fmt.Sprintf("failed to read config file %s", path), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return serrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}
	return nil
}

// applyEnvOverrides applies SITESEARCH_* environment variable overrides.
// Empty variables are ignored; unparsable values are errors.
func (c *Config) applyEnvOverrides() error {
	var errs []error

	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}
	float := func(name string, dst *float64) {
		if v := os.Getenv(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(name string, dst *bool) {
		if v := os.Getenv(name); v != "" {
			b, err := strconv.ParseBool(strings.ToLower(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = b
		}
	}

	str("SITESEARCH_POSTS", &c.Data.PostsFile)
	float("SITESEARCH_TITLE_BOOST", &c.Index.TitleBoost)
	num("SITESEARCH_MAX_RESULTS", &c.Index.MaxResults)
	str("SITESEARCH_DEBOUNCE", &c.Search.Debounce)
	num("SITESEARCH_CACHE_SIZE", &c.Search.CacheSize)
	str("SITESEARCH_ADDR", &c.Server.Addr)
	str("SITESEARCH_BASE_URL", &c.Server.BaseURL)
	boolean("SITESEARCH_WATCH", &c.Server.Watch)
	str("SITESEARCH_TRANSPORT", &c.MCP.Transport)
	boolean("SITESEARCH_TELEMETRY", &c.Telemetry.Enabled)
	str("SITESEARCH_LOG_LEVEL", &c.Logging.Level)
	str("SITESEARCH_LOG_FILE", &c.Logging.File)

	if len(errs) > 0 {
		return serrors.ConfigError("invalid environment override", errors.Join(errs...))
	}
	return nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if err := c.ToIndex().Validate(); err != nil {
		return err
	}
	if c.Search.CacheSize < 0 {
		return serrors.ConfigError(fmt.Sprintf("search.cache_size must be >= 0, got %d", c.Search.CacheSize), nil)
	}
	if _, err := c.DebounceDuration(); err != nil {
		return err
	}
	if _, err := c.WatchDebounceDuration(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return serrors.ConfigError("server.addr must not be empty", nil)
	}
	if c.MCP.Transport != "stdio" {
		return serrors.ConfigError(fmt.Sprintf("unknown mcp.transport %q (supported: stdio)", c.MCP.Transport), nil)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return serrors.ConfigError(fmt.Sprintf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level), nil)
	}
	return nil
}

// ToIndex returns the index build configuration.
func (c *Config) ToIndex() index.Config {
	return index.Config{
		TitleBoost:      c.Index.TitleBoost,
		ExcerptBoost:    c.Index.ExcerptBoost,
		CategoriesBoost: c.Index.CategoriesBoost,
		TagsBoost:       c.Index.TagsBoost,
		PrefixBoost:     c.Index.PrefixBoost,
		MaxResults:      c.Index.MaxResults,
	}
}

// DebounceDuration parses search.debounce.
func (c *Config) DebounceDuration() (time.Duration, error) {
	return parseDuration("search.debounce", c.Search.Debounce)
}

// WatchDebounceDuration parses server.watch_debounce.
func (c *Config) WatchDebounceDuration() (time.Duration, error) {
	return parseDuration("server.watch_debounce", c.Server.WatchDebounce)
}

// TelemetryPath returns the telemetry database path.
func (c *Config) TelemetryPath() string {
	if c.Telemetry.Path != "" {
		return c.Telemetry.Path
	}
	return filepath.Join(DataDir(), "telemetry.db")
}

func parseDuration(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, serrors.ConfigError(fmt.Sprintf("%s: invalid duration %q", key, value), err)
	}
	if d < 0 {
		return 0, serrors.ConfigError(fmt.Sprintf("%s must not be negative, got %s", key, value), nil)
	}
	return d, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
