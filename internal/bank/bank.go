// Package bank assembles code bank digests: it walks a source tree, parses
// every file of a known language and renders the files into one Markdown
// document under a chosen strategy.
package bank

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
	"github.com/tyrchen/codebank-sub000/internal/bank/parsers"
	"github.com/tyrchen/codebank-sub000/internal/bank/render"
)

// digestHeader opens every digest.
const digestHeader = "# Code Bank\n\n"

// Config selects what Generate includes and how it renders it.
type Config struct {
	RootDir            string
	Strategy           render.Strategy
	IgnorePatterns     []string
	IgnoreDirs         []string
	IncludePackageFile bool
	RespectGitignore   bool
}

// Bank generates digests. It owns one parser per language for its lifetime
// and may be shared by concurrent callers.
type Bank struct {
	fs            afero.Fs
	logger        zerolog.Logger
	progress      ProgressReporter
	cacheCapacity int
	registry      *parsers.Registry
	cache         *parseCache
}

// Option configures a Bank.
type Option func(*Bank)

// WithFS sets the filesystem files are read from. The default is the OS filesystem.
func WithFS(fs afero.Fs) Option {
	return func(b *Bank) {
		b.fs = fs
	}
}

// WithLogger sets the logger for skipped files and package file failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Bank) {
		b.logger = logger
	}
}

// WithProgress sets the reporter notified during Generate.
func WithProgress(progress ProgressReporter) Option {
	return func(b *Bank) {
		b.progress = progress
	}
}

// WithCache keeps up to capacity parsed files between calls, revalidated by size and mtime.
func WithCache(capacity int) Option {
	return func(b *Bank) {
		b.cacheCapacity = capacity
	}
}

// New creates a Bank.
func New(opts ...Option) (*Bank, error) {
	b := &Bank{
		fs:       afero.NewOsFs(),
		logger:   zerolog.Nop(),
		progress: NoOpProgressReporter{},
	}
	for _, opt := range opts {
		opt(b)
	}

	registry, err := parsers.NewRegistry(b.fs)
	if err != nil {
		return nil, err
	}
	b.registry = registry

	if b.cacheCapacity > 0 {
		cache, err := newParseCache(b.cacheCapacity)
		if err != nil {
			registry.Close()
			return nil, err
		}
		b.cache = cache
	}
	return b, nil
}

// Close releases the parsers and the cache.
func (b *Bank) Close() {
	if b.registry != nil {
		b.registry.Close()
	}
	if b.cache != nil {
		b.cache.close()
		b.cache = nil
	}
}

// Generate walks cfg.RootDir and returns the digest of every supported file.
func (b *Bank) Generate(ctx context.Context, cfg Config) (string, error) {
	info, err := b.fs.Stat(cfg.RootDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", model.ErrDirectoryNotFound, cfg.RootDir)
		}
		return "", fmt.Errorf("%w: stat %s: %w", model.ErrIO, cfg.RootDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", model.ErrInvalidConfig, cfg.RootDir)
	}

	discovery, err := newFileDiscovery(b.fs, cfg.RootDir, cfg, b.logger)
	if err != nil {
		return "", err
	}
	files, err := discovery.discover(ctx)
	if err != nil {
		return "", err
	}
	b.progress.OnDiscoveryComplete(len(files))

	var sb strings.Builder
	sb.WriteString(digestHeader)
	if cfg.IncludePackageFile {
		b.writePackageFile(&sb, cfg.RootDir)
	}

	rendered := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if b.writeFile(ctx, &sb, f, cfg.Strategy) {
			rendered++
		}
		b.progress.OnFileProcessed(f.relPath)
	}
	b.progress.OnComplete(rendered)
	return sb.String(), nil
}

// GenerateSingle returns the digest of one file, headed by its base name.
func (b *Bank) GenerateSingle(ctx context.Context, path string, strategy render.Strategy) (string, error) {
	info, err := b.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %w: %s", model.ErrIO, model.ErrFileNotFound, path)
		}
		return "", fmt.Errorf("%w: stat %s: %w", model.ErrIO, path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", model.ErrInvalidConfig, path)
	}
	lang := model.DetectLanguage(path)
	if lang == model.Unknown {
		return "", fmt.Errorf("%w: %s", model.ErrUnsupportedLanguage, path)
	}

	unit, err := b.parse(ctx, path, info)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(digestHeader)
	writeSection(&sb, filepath.Base(path), lang, render.New(lang).RenderFile(unit, strategy))
	return sb.String(), nil
}

// GenerateToFile writes the digest of cfg to output, creating parent directories.
func (b *Bank) GenerateToFile(ctx context.Context, cfg Config, output string) error {
	digest, err := b.Generate(ctx, cfg)
	if err != nil {
		return err
	}
	return WriteDigest(b.fs, output, digest)
}

// WriteDigest writes digest to output, creating parent directories.
func WriteDigest(fs afero.Fs, output, digest string) error {
	if dir := filepath.Dir(output); dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create %s: %w", model.ErrIO, dir, err)
		}
	}
	if err := afero.WriteFile(fs, output, []byte(digest), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", model.ErrIO, output, err)
	}
	return nil
}

// writeFile parses and renders one discovered file. Failures are logged and
// the file is left out.
func (b *Bank) writeFile(ctx context.Context, sb *strings.Builder, f discoveredFile, strategy render.Strategy) bool {
	renderer := render.New(f.lang)
	if strategy != render.Default && renderer.Rules().IsTestFile(f.path) {
		b.logger.Debug().Str("path", f.relPath).Msg("skipping test file")
		return false
	}

	info, err := b.fs.Stat(f.path)
	if err != nil {
		b.logger.Debug().Err(err).Str("path", f.relPath).Msg("skipping file")
		return false
	}
	unit, err := b.parse(ctx, f.path, info)
	if err != nil {
		b.logger.Debug().Err(err).Str("path", f.relPath).Msg("skipping file")
		return false
	}

	writeSection(sb, f.relPath, f.lang, renderer.RenderFile(unit, strategy))
	return true
}

// parse runs the registry, going through the cache when one is configured.
func (b *Bank) parse(ctx context.Context, path string, info os.FileInfo) (*model.FileUnit, error) {
	if b.cache != nil {
		if unit, ok := b.cache.get(path, info.Size(), info.ModTime()); ok {
			return unit, nil
		}
	}
	unit, err := b.registry.Parse(ctx, path)
	if err != nil {
		return nil, err
	}
	if b.cache != nil {
		b.cache.set(path, info.Size(), info.ModTime(), unit)
	}
	return unit, nil
}

func (b *Bank) writePackageFile(sb *strings.Builder, rootDir string) {
	path := findPackageFile(b.fs, rootDir)
	if path == "" {
		return
	}
	content, err := afero.ReadFile(b.fs, path)
	if err != nil {
		b.logger.Warn().Err(err).Str("path", path).Msg("failed to read package file")
		return
	}
	sb.WriteString("## Package File\n\n")
	sb.WriteString("```")
	sb.WriteString(packageFileFence(filepath.Base(path)))
	sb.WriteString("\n")
	sb.WriteString(terminated(string(content)))
	sb.WriteString("```\n\n")
}

// writeSection emits one file section of the digest.
func writeSection(sb *strings.Builder, relPath string, lang model.LanguageType, body string) {
	sb.WriteString("## ")
	sb.WriteString(relPath)
	sb.WriteString("\n```")
	sb.WriteString(lang.FenceTag())
	sb.WriteString("\n")
	sb.WriteString(terminated(body))
	sb.WriteString("```\n\n")
}

func terminated(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
