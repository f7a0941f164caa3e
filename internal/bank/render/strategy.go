package render

import (
	"fmt"
	"strings"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
)

// Strategy is the rendering fidelity level.
type Strategy int

const (
	// Default emits every file verbatim.
	Default Strategy = iota
	// NoTests elides test functions and test modules.
	NoTests
	// Summary keeps the public surface with bodies replaced by an ellipsis.
	Summary
)

// ParseStrategy parses the CLI and tool-server spelling of a strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return Default, nil
	case "no-tests", "no_tests", "notests":
		return NoTests, nil
	case "summary":
		return Summary, nil
	}
	return Default, fmt.Errorf("%w: unknown strategy %q (expected default, no-tests or summary)", model.ErrInvalidConfig, s)
}

func (s Strategy) String() string {
	switch s {
	case NoTests:
		return "no-tests"
	case Summary:
		return "summary"
	default:
		return "default"
	}
}
