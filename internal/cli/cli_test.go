package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyrchen/codebank-sub000/internal/config"
)

// Test Plan for CLI commands:
// - The root command registers every subcommand and the generation flags
// - init writes a loadable default config and refuses to overwrite without force
// - The progress reporter draws on its writer and prints a summary
// - formatNumber inserts thousands separators

func TestRootCmd_Wiring(t *testing.T) {
	t.Parallel()

	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"init", "mcp", "version", "watch"})

	for _, flag := range []string{"output", "strategy", "ignore", "package-file", "no-gitignore", "progress"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(flag), flag)
	}
	for _, flag := range []string{"config", "verbose"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
	assert.Nil(t, watchCmd.Flags().Lookup("progress"))
}

func TestWriteDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	path, err := writeDefaultConfig(dir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".codebank", "config.yml"), path)

	cfg, err := loadConfig("", dir)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Strategy, cfg.Strategy)
	assert.Equal(t, config.Default().Ignore.Dirs, cfg.Ignore.Dirs)
	assert.Equal(t, config.Default().Watch.Debounce, cfg.Watch.Debounce)

	require.NoError(t, os.WriteFile(path, []byte("strategy: summary\n"), 0o644))
	_, err = writeDefaultConfig(dir, false)
	assert.ErrorContains(t, err, "already exists")

	_, err = writeDefaultConfig(dir, true)
	require.NoError(t, err)
	cfg, err = loadConfig("", dir)
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Strategy)
}

func TestCLIProgressReporter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	reporter := NewCLIProgressReporter(&out)

	reporter.OnDiscoveryComplete(2)
	reporter.OnFileProcessed("a.rs")
	reporter.OnFileProcessed("b.py")
	reporter.OnComplete(2)

	assert.Contains(t, out.String(), "Processing 2 source files")
	assert.Contains(t, out.String(), "✓ Code bank complete: 2 files")

	out.Reset()
	empty := NewCLIProgressReporter(&out)
	empty.OnDiscoveryComplete(0)
	empty.OnComplete(0)
	assert.Contains(t, out.String(), "✓ Code bank complete: 0 files")
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in))
	}
}
