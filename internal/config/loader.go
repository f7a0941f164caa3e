package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads an explicit config file instead of
// searching the root's .codebank directory. A missing file is an error.
func NewFileLoader(configFile string) Loader {
	return &loader{
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CODEBANK_*)
// 2. Config file (.codebank/config.yml or .codebank/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ConfigDirName))
	}

	// Replace . with _ in env var names (e.g., CODEBANK_WATCH_DEBOUNCE)
	v.SetEnvPrefix("CODEBANK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("strategy")
	v.BindEnv("include_package_file")
	v.BindEnv("respect_gitignore")
	v.BindEnv("ignore.dirs")
	v.BindEnv("ignore.patterns")
	v.BindEnv("watch.debounce")
	v.BindEnv("cache.capacity")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("strategy", defaults.Strategy)
	v.SetDefault("include_package_file", defaults.IncludePackageFile)
	v.SetDefault("respect_gitignore", defaults.RespectGitignore)

	v.SetDefault("ignore.dirs", defaults.Ignore.Dirs)
	v.SetDefault("ignore.patterns", defaults.Ignore.Patterns)

	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("cache.capacity", defaults.Cache.Capacity)
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}

// Path returns the location of the project config file under rootDir.
func Path(rootDir string) string {
	return filepath.Join(rootDir, ConfigDirName, ConfigFileName)
}

// Save writes cfg as YAML to the project config file under rootDir and
// returns the path written.
func Save(rootDir string, cfg *Config) (string, error) {
	path := Path(rootDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
