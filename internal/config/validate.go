package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
	"github.com/tyrchen/codebank-sub000/internal/bank/render"
)

var (
	// ErrInvalidStrategy indicates an unknown rendering strategy
	ErrInvalidStrategy = errors.New("invalid strategy")

	// ErrInvalidPattern indicates an ignore pattern that does not compile
	ErrInvalidPattern = errors.New("invalid ignore pattern")

	// ErrInvalidIgnoreDir indicates an empty or nested ignore directory name
	ErrInvalidIgnoreDir = errors.New("invalid ignore directory")

	// ErrInvalidDebounce indicates a non-positive watch debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")

	// ErrInvalidCacheCapacity indicates a negative cache capacity
	ErrInvalidCacheCapacity = errors.New("invalid cache capacity")
)

// Validate checks that the configuration is valid and complete. Every
// violation is reported; each one also matches model.ErrInvalidConfig.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := render.ParseStrategy(cfg.Strategy); err != nil {
		errs = append(errs, fmt.Errorf("%w: must be 'default', 'no-tests' or 'summary', got '%s'", ErrInvalidStrategy, cfg.Strategy))
	}

	errs = append(errs, validateIgnore(&cfg.Ignore)...)

	if cfg.Watch.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("%w: debounce must be positive, got %s", ErrInvalidDebounce, cfg.Watch.Debounce))
	}

	// Zero disables the cache
	if cfg.Cache.Capacity < 0 {
		errs = append(errs, fmt.Errorf("%w: capacity cannot be negative, got %d", ErrInvalidCacheCapacity, cfg.Cache.Capacity))
	}

	if len(errs) > 0 {
		return errors.Join(model.ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

func validateIgnore(cfg *IgnoreConfig) []error {
	var errs []error

	for _, dir := range cfg.Dirs {
		if strings.TrimSpace(dir) == "" || strings.ContainsAny(dir, `/\`) {
			errs = append(errs, fmt.Errorf("%w: %q must be a plain directory name", ErrInvalidIgnoreDir, dir))
		}
	}

	for _, pattern := range cfg.Patterns {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	return errs
}
