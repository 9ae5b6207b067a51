package database

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// parseBoolEnv reads key as a boolean. The second result reports whether the
// variable was set to a recognised value.
func parseBoolEnv(key string) (bool, bool) {
	value := os.Getenv(key)
	if value == "" {
		return false, false
	}
	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed, true
	}
	switch strings.ToLower(value) {
	case "yes", "y", "on":
		return true, true
	case "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

// Config holds the storage settings for the records database
type Config struct {
	// Path is the database file. Relative paths are resolved against the
	// working directory in development and the per-user data directory in
	// production; absolute paths are used as-is.
	Path string `json:"path" yaml:"path"`
	// SeedFile names a bundled database in the resources directory that is
	// copied to Path once, when Path does not exist yet (production only).
	SeedFile string `json:"seedFile" yaml:"seedFile"`

	MaxConnections        int           `json:"maxConnections" yaml:"maxConnections"`
	MaxIdleConns          int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime       time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
	ConnMaxIdleTime       time.Duration `json:"connMaxIdleTime" yaml:"connMaxIdleTime"`
	ForceSingleConnection bool          `json:"forceSingleConnection" yaml:"forceSingleConnection"`

	JournalMode     string `json:"journalMode" yaml:"journalMode"`         // WAL, DELETE, MEMORY, ...
	SynchronousMode string `json:"synchronousMode" yaml:"synchronousMode"` // OFF, NORMAL, FULL, EXTRA
	BusyTimeout     int    `json:"busyTimeout" yaml:"busyTimeout"`         // milliseconds
	ForeignKeys     bool   `json:"foreignKeys" yaml:"foreignKeys"`

	Environment string `json:"environment" yaml:"environment"`
}

// DefaultConfig returns the packaged (production) configuration
func DefaultConfig() *Config {
	return &Config{
		Path:            "namedesk.db",
		SeedFile:        "namedesk.db",
		MaxConnections:  4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 24 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		JournalMode:     "WAL",
		SynchronousMode: "NORMAL",
		BusyTimeout:     5000,
		ForeignKeys:     true,
		Environment:     EnvProduction,
	}
}

// DevelopmentConfig keeps the database next to the working directory
func DevelopmentConfig() *Config {
	config := DefaultConfig()
	config.Environment = EnvDevelopment
	config.SeedFile = ""
	return config
}

// TestConfig uses a single-connection in-memory database
func TestConfig() *Config {
	config := DefaultConfig()
	config.Path = MemoryPath
	config.SeedFile = ""
	config.Environment = EnvTest
	config.JournalMode = "MEMORY"
	config.SynchronousMode = "OFF"
	config.BusyTimeout = 1000
	config.ForceSingleConnection = true
	return config
}

// ConfigForEnvironment returns the preset for env; unknown values get production
func ConfigForEnvironment(env string) *Config {
	switch env {
	case EnvDevelopment:
		return DevelopmentConfig()
	case EnvTest:
		return TestConfig()
	default:
		return DefaultConfig()
	}
}

// LoadFromEnvironment applies NAMEDESK_DB_* overrides
func (c *Config) LoadFromEnvironment() {
	if path := os.Getenv("NAMEDESK_DB_PATH"); path != "" {
		c.Path = path
	}
	if seed, ok := os.LookupEnv("NAMEDESK_DB_SEED_FILE"); ok {
		c.SeedFile = seed
	}
	if v := os.Getenv("NAMEDESK_DB_MAX_CONNECTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxConnections = n
		}
	}
	if v := os.Getenv("NAMEDESK_DB_MAX_IDLE_CONNECTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MaxIdleConns = n
		}
	}
	if v := os.Getenv("NAMEDESK_DB_CONN_MAX_LIFETIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ConnMaxLifetime = d
		}
	}
	if v := os.Getenv("NAMEDESK_DB_CONN_MAX_IDLE_TIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ConnMaxIdleTime = d
		}
	}
	if v, ok := parseBoolEnv("NAMEDESK_DB_FORCE_SINGLE_CONNECTION"); ok {
		c.ForceSingleConnection = v
	}
	if v := os.Getenv("NAMEDESK_DB_JOURNAL_MODE"); v != "" {
		c.JournalMode = v
	}
	if v := os.Getenv("NAMEDESK_DB_SYNCHRONOUS_MODE"); v != "" {
		c.SynchronousMode = v
	}
	if v := os.Getenv("NAMEDESK_DB_BUSY_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.BusyTimeout = n
		}
	}
	if v, ok := parseBoolEnv("NAMEDESK_DB_FOREIGN_KEYS"); ok {
		c.ForeignKeys = v
	}
}

var (
	validJournalModes = []string{"DELETE", "TRUNCATE", "PERSIST", "MEMORY", "WAL", "OFF"}
	validSyncModes    = []string{"OFF", "NORMAL", "FULL", "EXTRA"}
)

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}

// Validate checks the configuration without touching the filesystem
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.MaxConnections <= 0 {
		return fmt.Errorf("maxConnections must be positive, got %d", c.MaxConnections)
	}
	if c.MaxIdleConns < 0 {
		return fmt.Errorf("maxIdleConns cannot be negative, got %d", c.MaxIdleConns)
	}
	if c.MaxIdleConns > c.MaxConnections {
		return fmt.Errorf("maxIdleConns (%d) cannot be greater than maxConnections (%d)", c.MaxIdleConns, c.MaxConnections)
	}
	if c.ConnMaxLifetime < 0 {
		return fmt.Errorf("connMaxLifetime cannot be negative, got %v", c.ConnMaxLifetime)
	}
	if c.ConnMaxIdleTime < 0 {
		return fmt.Errorf("connMaxIdleTime cannot be negative, got %v", c.ConnMaxIdleTime)
	}
	if !containsFold(validJournalModes, c.JournalMode) {
		return fmt.Errorf("invalid journalMode: %s", c.JournalMode)
	}
	if c.IsInMemory() && strings.EqualFold(c.JournalMode, "WAL") {
		return fmt.Errorf("journalMode cannot be WAL when using in-memory database")
	}
	if !containsFold(validSyncModes, c.SynchronousMode) {
		return fmt.Errorf("invalid synchronousMode: %s", c.SynchronousMode)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("busyTimeout cannot be negative, got %d", c.BusyTimeout)
	}
	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}
	return nil
}

// ConnectionString builds the go-sqlite3 DSN for path
func (c *Config) ConnectionString(path string) string {
	values := url.Values{}
	if c.ForeignKeys {
		values.Set("_foreign_keys", "on")
	} else {
		values.Set("_foreign_keys", "off")
	}
	values.Set("_journal_mode", strings.ToUpper(c.JournalMode))
	values.Set("_synchronous", strings.ToUpper(c.SynchronousMode))
	values.Set("_busy_timeout", strconv.Itoa(c.BusyTimeout))

	// Only the characters that would break query parsing are escaped.
	path = strings.ReplaceAll(path, "?", "%3F")
	path = strings.ReplaceAll(path, "&", "%26")
	return path + "?" + values.Encode()
}

// Clone returns a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

func (c *Config) IsInMemory() bool    { return c.Path == MemoryPath }
func (c *Config) IsDevelopment() bool { return c.Environment == EnvDevelopment }
func (c *Config) IsProduction() bool  { return c.Environment == EnvProduction }
