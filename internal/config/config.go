// ABOUTME: Configuration loading for the docreview client
// ABOUTME: Merges defaults, a YAML or TOML file with ${VAR} expansion, and DOCREVIEW_* overrides

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DOCREVIEW"

// EnvConfigPath names the variable that points at a config file.
const EnvConfigPath = EnvPrefix + "_CONFIG"

// DefaultBaseURL is the backend used when nothing else is configured.
const DefaultBaseURL = "http://localhost:8000/api/v1"

// Config is the complete client configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Timeouts TimeoutsConfig `yaml:"timeouts" toml:"timeouts"`
	Storage  StorageConfig  `yaml:"storage" toml:"storage"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Output   OutputConfig   `yaml:"output" toml:"output"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-" toml:"-"`
}

// ServerConfig locates the backend API.
type ServerConfig struct {
	BaseURL string `yaml:"base_url" toml:"base_url" validate:"required,url"`
}

// TimeoutsConfig holds the per-request timeouts of the two HTTP clients.
type TimeoutsConfig struct {
	Standard    time.Duration `yaml:"-" toml:"-" validate:"gt=0"`
	LongRunning time.Duration `yaml:"-" toml:"-" validate:"gt=0"`

	// Raw string values for unmarshaling
	StandardRaw    string `yaml:"standard" toml:"standard"`
	LongRunningRaw string `yaml:"long_running" toml:"long_running"`
}

// StorageConfig selects where the token is persisted.
type StorageConfig struct {
	Driver string `yaml:"driver" toml:"driver" validate:"oneof=file sqlite memory"`
	Path   string `yaml:"path" toml:"path" validate:"required_unless=Driver memory"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" toml:"format" validate:"omitempty,oneof=text json"`
	File   string `yaml:"file" toml:"file"`
}

// OutputConfig controls terminal rendering.
type OutputConfig struct {
	Color bool `yaml:"color" toml:"color"`
}

// envOverrides is the flat set of DOCREVIEW_* variables.
type envOverrides struct {
	BaseURL       string `split_words:"true"`
	Timeout       string `split_words:"true"`
	LongTimeout   string `split_words:"true"`
	StorageDriver string `split_words:"true"`
	StoragePath   string `split_words:"true"`
	LogLevel      string `split_words:"true"`
	LogFormat     string `split_words:"true"`
	LogFile       string `split_words:"true"`
	Color         *bool  `split_words:"true"`
}

// Dir returns the per-user configuration directory for docreview.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = filepath.Join(os.TempDir(), ".config")
	}
	return filepath.Join(base, "docreview")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{BaseURL: DefaultBaseURL},
		Timeouts: TimeoutsConfig{
			StandardRaw:    "30s",
			LongRunningRaw: "120s",
		},
		Storage: StorageConfig{Driver: "file", Path: Dir()},
		Logging: LoggingConfig{Level: "warn", Format: "text"},
		Output:  OutputConfig{Color: true},
	}
}

// ResolvePath picks the config file to read. It returns "" when defaults should be used.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	candidate := filepath.Join(Dir(), "config.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// Load reads the configuration at path on top of the defaults, applies
// environment overrides, parses durations and validates the result.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, err
		}
		cfg.Path = path
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Server.BaseURL, env.BaseURL)
	set(&cfg.Timeouts.StandardRaw, env.Timeout)
	set(&cfg.Timeouts.LongRunningRaw, env.LongTimeout)
	set(&cfg.Storage.Driver, env.StorageDriver)
	set(&cfg.Storage.Path, env.StoragePath)
	set(&cfg.Logging.Level, env.LogLevel)
	set(&cfg.Logging.Format, env.LogFormat)
	set(&cfg.Logging.File, env.LogFile)
	if env.Color != nil {
		cfg.Output.Color = *env.Color
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Timeouts.StandardRaw != "" {
		cfg.Timeouts.Standard, err = time.ParseDuration(cfg.Timeouts.StandardRaw)
		if err != nil {
			return fmt.Errorf("parsing timeouts.standard %q: %w", cfg.Timeouts.StandardRaw, err)
		}
	}

	if cfg.Timeouts.LongRunningRaw != "" {
		cfg.Timeouts.LongRunning, err = time.ParseDuration(cfg.Timeouts.LongRunningRaw)
		if err != nil {
			return fmt.Errorf("parsing timeouts.long_running %q: %w", cfg.Timeouts.LongRunningRaw, err)
		}
	}

	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%s failed %q check (value %v)", fieldName(fe.Namespace()), fe.Tag(), fe.Value())
	}
	return err
}

// fieldName turns "Config.Server.BaseURL" into "server.base_url".
func fieldName(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	switch s {
	case "BaseURL":
		return "base_url"
	case "LongRunning":
		return "long_running"
	}
	return strings.ToLower(s)
}
