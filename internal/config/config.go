// Package config loads the application configuration from YAML with
// environment variable expansion and NAMEDESK_* overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"namedesk/internal/database"
	"namedesk/internal/directory"
	"namedesk/internal/ui"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// DefaultAddress is the loopback address of the headless server
const DefaultAddress = "127.0.0.1:8787"

// Config represents the application configuration
type Config struct {
	App       AppConfig        `yaml:"app"`
	Database  *database.Config `yaml:"database"`
	Directory DirectoryConfig  `yaml:"directory"`
	Server    ServerConfig     `yaml:"server"`
	UI        UIConfig         `yaml:"ui"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"logLevel"`
}

// Validate validates the application section
func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Environment, validation.Required,
			validation.In(database.EnvDevelopment, database.EnvProduction, database.EnvTest)),
		validation.Field(&c.LogLevel, validation.Required,
			validation.In("debug", "info", "warn", "warning", "error")),
	)
}

// DirectoryConfig controls listing and watching
type DirectoryConfig struct {
	Ignore   []string      `yaml:"ignore"`
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the directory section
func (c *DirectoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// ServerConfig holds the headless transport settings
type ServerConfig struct {
	Address string `yaml:"address"`
}

// Validate validates the server section
func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Address, validation.Required, validation.By(hostPort)),
	)
}

// UIConfig holds presentation settings
type UIConfig struct {
	WarningTimeout time.Duration `yaml:"warningTimeout"`
}

// Validate validates the ui section
func (c *UIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.WarningTimeout, validation.Required, validation.Min(time.Millisecond)),
	)
}

func hostPort(value interface{}) error {
	addr, _ := value.(string)
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return errors.New("must be host:port")
	}
	return nil
}

// Validate validates every section
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if c.Database == nil {
		return errors.New("database: section missing")
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Directory.Validate(); err != nil {
		return fmt.Errorf("directory: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.UI.Validate(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

// Default returns the configuration preset for env
func Default(env string) *Config {
	db := database.ConfigForEnvironment(env)
	return &Config{
		App: AppConfig{
			Name:        "namedesk",
			Environment: db.Environment,
			LogLevel:    "info",
		},
		Database: db,
		Directory: DirectoryConfig{
			Ignore:   []string{directory.DefaultIgnore},
			Watch:    true,
			Debounce: directory.DefaultDebounce,
		},
		Server: ServerConfig{Address: DefaultAddress},
		UI:     UIConfig{WarningTimeout: ui.DefaultWarningTimeout},
	}
}

// Load builds the configuration. The environment preset is chosen from
// NAMEDESK_ENV, then app.environment in the file, then defaultEnv. A missing
// file leaves the preset in place; an empty filename skips the file.
func Load(filename, defaultEnv string) (*Config, error) {
	var data []byte
	if filename != "" {
		raw, err := os.ReadFile(filename)
		switch {
		case err == nil:
			data = []byte(os.ExpandEnv(string(raw)))
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
		}
	}

	env := defaultEnv
	if len(data) > 0 {
		var peek struct {
			App struct {
				Environment string `yaml:"environment"`
			} `yaml:"app"`
		}
		if err := yaml.Unmarshal(data, &peek); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
		}
		if peek.App.Environment != "" {
			env = peek.App.Environment
		}
	}
	if v := os.Getenv("NAMEDESK_ENV"); v != "" {
		env = v
	}

	cfg := Default(env)
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
		}
		if cfg.Database == nil {
			cfg.Database = database.ConfigForEnvironment(env)
		}
	}
	cfg.App.Environment = env
	cfg.Database.Environment = env

	cfg.loadFromEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromEnvironment() {
	if v := os.Getenv("NAMEDESK_LOG_LEVEL"); v != "" {
		c.App.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("NAMEDESK_SERVER_ADDRESS"); v != "" {
		c.Server.Address = v
	}
	if v, ok := os.LookupEnv("NAMEDESK_DIRECTORY_IGNORE"); ok {
		c.Directory.Ignore = splitList(v)
	}
	if v := os.Getenv("NAMEDESK_DIRECTORY_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Directory.Watch = b
		}
	}
	if v := os.Getenv("NAMEDESK_DIRECTORY_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Directory.Debounce = d
		}
	}
	if v := os.Getenv("NAMEDESK_UI_WARNING_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.UI.WarningTimeout = d
		}
	}
	c.Database.LoadFromEnvironment()
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
