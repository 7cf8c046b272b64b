package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the ssbulk connection profile.
type Config struct {
	Splunk  SplunkConfig  `yaml:"splunk"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SplunkConfig holds management endpoint settings. The password is never read from a profile.
type SplunkConfig struct {
	Scheme             string `yaml:"scheme"` // https, http (default: https)
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Username           string `yaml:"username"`
	InsecureSkipVerify *bool  `yaml:"insecure_skip_verify"` // default: true
	TimeoutSec         int    `yaml:"timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: info)
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // empty = no export
}

// Load reads the profile for an environment name (local, dev, prod).
// A missing profile is not an error: defaults are returned.
func Load(env string) (Config, error) {
	path := findConfigPath(env)
	if !fileExists(path) {
		return fromBytes(nil)
	}
	return LoadFile(path)
}

// LoadFile reads an explicit profile file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config %s does not exist: %w", path, err)
		}
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return fromBytes(data)
}

func fromBytes(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Splunk.Scheme == "" {
		c.Splunk.Scheme = "https"
	}
	if c.Splunk.Host == "" {
		c.Splunk.Host = "localhost"
	}
	if c.Splunk.Port == 0 {
		c.Splunk.Port = 8089
	}
	if c.Splunk.Username == "" {
		c.Splunk.Username = "admin"
	}
	if c.Splunk.InsecureSkipVerify == nil {
		insecure := true
		c.Splunk.InsecureSkipVerify = &insecure
	}
	if c.Splunk.TimeoutSec <= 0 {
		c.Splunk.TimeoutSec = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Splunk.Scheme {
	case "http", "https":
		// ok
	default:
		return fmt.Errorf("splunk.scheme must be \"http\" or \"https\", got %q", c.Splunk.Scheme)
	}
	if c.Splunk.Port <= 0 || c.Splunk.Port > 65535 {
		return fmt.Errorf("splunk.port must be between 1 and 65535, got %d", c.Splunk.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

// Insecure reports whether TLS verification is skipped.
func (c *Config) Insecure() bool {
	return c.Splunk.InsecureSkipVerify == nil || *c.Splunk.InsecureSkipVerify
}

// findConfigPath locates the profile file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
