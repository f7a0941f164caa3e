package config

import (
	"time"

	"github.com/tyrchen/codebank-sub000/internal/bank"
	"github.com/tyrchen/codebank-sub000/internal/bank/render"
)

// Directory and file names of the project configuration.
const (
	ConfigDirName  = ".codebank"
	ConfigFileName = "config.yml"
)

// Config represents the complete codebank configuration.
// It can be loaded from .codebank/config.yml with environment variable overrides.
type Config struct {
	Strategy           string       `yaml:"strategy" mapstructure:"strategy"` // "default", "no-tests" or "summary"
	IncludePackageFile bool         `yaml:"include_package_file" mapstructure:"include_package_file"`
	RespectGitignore   bool         `yaml:"respect_gitignore" mapstructure:"respect_gitignore"`
	Ignore             IgnoreConfig `yaml:"ignore" mapstructure:"ignore"`
	Watch              WatchConfig  `yaml:"watch" mapstructure:"watch"`
	Cache              CacheConfig  `yaml:"cache" mapstructure:"cache"`
}

// IgnoreConfig defines which paths are left out of the digest.
type IgnoreConfig struct {
	Dirs     []string `yaml:"dirs" mapstructure:"dirs"`         // directory names skipped at any depth
	Patterns []string `yaml:"patterns" mapstructure:"patterns"` // glob patterns relative to the root
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// CacheConfig configures the parse cache used by long-running commands.
// A capacity of zero disables the cache.
type CacheConfig struct {
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Strategy:           render.Default.String(),
		IncludePackageFile: false,
		RespectGitignore:   true,
		Ignore: IgnoreConfig{
			Dirs: []string{
				"target",
				"node_modules",
				"vendor",
				"dist",
				"build",
				"__pycache__",
			},
			Patterns: []string{},
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Cache: CacheConfig{
			Capacity: 1024,
		},
	}
}

// BankConfig converts the configuration into the assembler's view of rootDir.
// The configuration must have passed Validate.
func (c *Config) BankConfig(rootDir string) (bank.Config, error) {
	strategy, err := render.ParseStrategy(c.Strategy)
	if err != nil {
		return bank.Config{}, err
	}
	return bank.Config{
		RootDir:            rootDir,
		Strategy:           strategy,
		IgnorePatterns:     append([]string(nil), c.Ignore.Patterns...),
		IgnoreDirs:         append([]string(nil), c.Ignore.Dirs...),
		IncludePackageFile: c.IncludePackageFile,
		RespectGitignore:   c.RespectGitignore,
	}, nil
}
