// Package config provides configuration management for the deployctl CLI.
//
// It implements the disciplined Viper pattern where Viper stays contained
// in this package and the rest of the codebase receives explicit Config structs.
// Configuration sources are resolved in this order:
// flags > env > config file > fly.toml > defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/ticktick-mcp/deployctl/internal/envfile"
)

// FlyTomlPath is where the Fly.io app manifest is looked up.
const FlyTomlPath = "fly.toml"

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

var appNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

// Config is the explicit configuration struct
// This is what the rest of the codebase sees
type Config struct {
	AppName        string
	Region         string
	Org            string
	EnvFile        string
	EnvFormat      string
	QuoteMode      string
	PlatformDomain string
	Flyctl         string
	HealthPath     string
	LogLevel       string
}

// Init initializes viper with defaults and config file paths
func Init() error {
	return InitFs(afero.NewOsFs())
}

// InitFs is Init reading fly.toml and config files from fs.
func InitFs(fs afero.Fs) error {
	viper.SetFs(fs)

	// Set config file name and type
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Add config file search paths
	viper.AddConfigPath("$HOME/.deployctl")
	viper.AddConfigPath(".")

	// Set defaults
	viper.SetDefault("app-name", "ticktick-mcp")
	viper.SetDefault("region", "iad")
	viper.SetDefault("org", "personal")
	viper.SetDefault("env-file", ".env")
	viper.SetDefault("env-format", string(envfile.FormatLines))
	viper.SetDefault("quote-mode", string(envfile.QuoteLenient))
	viper.SetDefault("platform-domain", "fly.dev")
	viper.SetDefault("flyctl", "flyctl")
	viper.SetDefault("health-path", "/health")
	viper.SetDefault("log-level", "info")

	// fly.toml sits between the defaults and the config file
	manifest, err := ReadFlyToml(fs, FlyTomlPath)
	if err != nil {
		return err
	}
	if manifest != nil {
		if manifest.App != "" {
			viper.SetDefault("app-name", manifest.App)
		}
		if manifest.PrimaryRegion != "" {
			viper.SetDefault("region", manifest.PrimaryRegion)
		}
	}

	// Bind environment variables with prefix
	viper.SetEnvPrefix("DEPLOYCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return nil
}

// Load reads from all sources and returns explicit Config
func Load() (*Config, error) {
	cfg := &Config{
		AppName:        viper.GetString("app-name"),
		Region:         viper.GetString("region"),
		Org:            viper.GetString("org"),
		EnvFile:        viper.GetString("env-file"),
		EnvFormat:      viper.GetString("env-format"),
		QuoteMode:      viper.GetString("quote-mode"),
		PlatformDomain: viper.GetString("platform-domain"),
		Flyctl:         viper.GetString("flyctl"),
		HealthPath:     viper.GetString("health-path"),
		LogLevel:       viper.GetString("log-level"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures config is sane
func (c *Config) Validate() error {
	if !appNamePattern.MatchString(c.AppName) || strings.HasSuffix(c.AppName, "-") {
		return fmt.Errorf("%w: app-name %q (lowercase letters, digits and dashes, at most 63 chars)", ErrInvalidConfig, c.AppName)
	}

	for key, value := range map[string]string{
		"region":          c.Region,
		"org":             c.Org,
		"env-file":        c.EnvFile,
		"platform-domain": c.PlatformDomain,
		"flyctl":          c.Flyctl,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, key)
		}
	}

	if _, err := envfile.ParseFormat(c.EnvFormat); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if _, err := envfile.ParseQuoteMode(c.QuoteMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.HealthPath != "" && !strings.HasPrefix(c.HealthPath, "/") {
		return fmt.Errorf("%w: health-path %q must start with /", ErrInvalidConfig, c.HealthPath)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log-level %q", ErrInvalidConfig, c.LogLevel)
	}

	return nil
}

// Save writes current config to file. When no config file was read, it
// creates config.yaml in the working directory.
func Save(cfg *Config) (string, error) {
	viper.Set("app-name", cfg.AppName)
	viper.Set("region", cfg.Region)
	viper.Set("org", cfg.Org)
	viper.Set("env-file", cfg.EnvFile)
	viper.Set("env-format", cfg.EnvFormat)
	viper.Set("quote-mode", cfg.QuoteMode)
	viper.Set("platform-domain", cfg.PlatformDomain)
	viper.Set("flyctl", cfg.Flyctl)
	viper.Set("health-path", cfg.HealthPath)
	viper.Set("log-level", cfg.LogLevel)

	path := viper.ConfigFileUsed()
	if path == "" {
		path = filepath.Join(".", "config.yaml")
	}

	if err := viper.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}

// Display shows current config (for deployctl config)
func Display() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = "(not found)"
	}

	return fmt.Sprintf(`Configuration:
  app-name:           %s
  region:             %s
  org:                %s
  env-file:           %s
  env-format:         %s
  quote-mode:         %s
  platform-domain:    %s
  flyctl:             %s
  health-path:        %s
  log-level:          %s

Sources:
  Config file:        %s
  Manifest:           %s
  Environment:        DEPLOYCTL_*
  Flags:              (per command)
`,
		cfg.AppName,
		cfg.Region,
		cfg.Org,
		cfg.EnvFile,
		cfg.EnvFormat,
		cfg.QuoteMode,
		cfg.PlatformDomain,
		cfg.Flyctl,
		cfg.HealthPath,
		cfg.LogLevel,
		configFile,
		FlyTomlPath,
	), nil
}
