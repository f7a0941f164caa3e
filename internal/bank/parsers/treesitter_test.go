package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for comment helpers:
// - Line and block markers are stripped with one leading space
// - Block comment gutters are removed
// - Blank lines at either end are dropped
// - Continuation lines are dedented by the start column

func TestJoinComments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		comments []string
		want     string
	}{
		{"rust outer docs", []string{"/// First line.", "///   indented"}, "First line.\n  indented"},
		{"go line comments", []string{"// Package x does things."}, "Package x does things."},
		{"python hash", []string{"# Adds numbers."}, "Adds numbers."},
		{"javadoc block", []string{"/**\n * Shape describes anything.\n * Second line.\n */"}, "Shape describes anything.\nSecond line."},
		{"single line block", []string{"/** Supported colors. */"}, "Supported colors."},
		{"inner block", []string{"/*! Inner block doc. */"}, "Inner block doc."},
		{"blank edges", []string{"//", "// body", "//"}, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, joinComments(tt.comments))
		})
	}
}

func TestDedentContinuation(t *testing.T) {
	t.Parallel()

	text := "def m(self):\n        return 1"
	assert.Equal(t, "def m(self):\n    return 1", dedentContinuation(text, 4))
	assert.Equal(t, text, dedentContinuation(text, 0))
	assert.Equal(t, "x\ny", dedentContinuation("x\n  y", 8), "short indentation is removed entirely")
}
