package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variables overriding config keys,
// e.g. GOREACH_SOURCE_DIRECTORY for source.directory.
const EnvPrefix = "GOREACH"

// envKeys are the config keys that can be overridden from the environment.
var envKeys = []string{
	"source.driver",
	"source.directory",
	"source.mysql.host",
	"source.mysql.user",
	"source.mysql.password",
	"source.mysql.database",
	"processing.workers",
	"logging.level",
	"logging.format",
	"logging.output",
}

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadOptional behaves like Load, but falls back to defaults (plus environment
// overrides) when configPath does not exist. Used when the config path was not
// set explicitly by the user.
func LoadOptional(configPath string) (*Config, error) {
	if configPath != "" {
		_, err := os.Stat(configPath)
		if err == nil {
			return Load(configPath)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}
	return LoadFromViper(newViper())
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := substituteEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) error {
	cfg.Source.Directory = expandEnvVar(cfg.Source.Directory)

	cfg.Source.MySQL.Host = expandEnvVar(cfg.Source.MySQL.Host)
	cfg.Source.MySQL.User = expandEnvVar(cfg.Source.MySQL.User)
	cfg.Source.MySQL.Password = expandEnvVar(cfg.Source.MySQL.Password)
	cfg.Source.MySQL.Database = expandEnvVar(cfg.Source.MySQL.Database)

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}
