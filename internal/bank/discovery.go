package bank

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// fileDiscovery walks a root directory and returns the source files that
// survive the ignore rules.
type fileDiscovery struct {
	fs               afero.Fs
	rootDir          string
	ignoreDirs       map[string]bool
	ignorePatterns   []compiledPattern
	respectGitignore bool
	gitPatterns      []gitignore.Pattern
	logger           zerolog.Logger
}

// discoveredFile is a candidate source file.
type discoveredFile struct {
	path    string
	relPath string
	lang    model.LanguageType
}

func newFileDiscovery(fs afero.Fs, rootDir string, cfg Config, logger zerolog.Logger) (*fileDiscovery, error) {
	fd := &fileDiscovery{
		fs:               fs,
		rootDir:          rootDir,
		ignoreDirs:       make(map[string]bool, len(cfg.IgnoreDirs)),
		respectGitignore: cfg.RespectGitignore,
		logger:           logger,
	}
	for _, dir := range cfg.IgnoreDirs {
		fd.ignoreDirs[dir] = true
	}
	for _, pattern := range cfg.IgnorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Join(model.ErrInvalidConfig, err)
		}
		fd.ignorePatterns = append(fd.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}
	return fd, nil
}

// discover walks the tree and returns the files of known languages sorted by relative path.
func (fd *fileDiscovery) discover(ctx context.Context) ([]discoveredFile, error) {
	var files []discoveredFile

	err := afero.Walk(fd.fs, fd.rootDir, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == fd.rootDir {
				return err
			}
			fd.logger.Debug().Err(err).Str("path", path).Msg("skipping unreadable entry")
			return nil
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath == "." {
				fd.loadGitignore(path, nil)
				return nil
			}
			if fd.skipDir(info.Name(), relPath) {
				return filepath.SkipDir
			}
			fd.loadGitignore(path, strings.Split(relPath, "/"))
			return nil
		}

		if fd.shouldIgnore(info.Name(), relPath, false) {
			return nil
		}
		lang := model.DetectLanguage(path)
		if lang == model.Unknown {
			return nil
		}
		files = append(files, discoveredFile{path: path, relPath: relPath, lang: lang})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].relPath < files[j].relPath
	})
	return files, nil
}

func (fd *fileDiscovery) skipDir(name, relPath string) bool {
	if fd.ignoreDirs[name] {
		return true
	}
	return fd.shouldIgnore(name, relPath, true)
}

// shouldIgnore applies the hidden-entry rule, the ignore globs and the
// collected .gitignore patterns.
func (fd *fileDiscovery) shouldIgnore(name, relPath string, isDir bool) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}

	if fd.matchesAnyPattern(relPath) {
		return true
	}

	// A directory pattern such as "vendor" also covers everything below it.
	if fd.matchesAnyPattern(relPath + "/**") {
		return true
	}

	if fd.respectGitignore && len(fd.gitPatterns) > 0 {
		matcher := gitignore.NewMatcher(fd.gitPatterns)
		if matcher.Match(strings.Split(relPath, "/"), isDir) {
			return true
		}
	}
	return false
}

func (fd *fileDiscovery) matchesAnyPattern(path string) bool {
	for _, cp := range fd.ignorePatterns {
		if cp.glob.Match(path) {
			return true
		}
	}
	return false
}

// loadGitignore reads dir/.gitignore and scopes its patterns to domain.
func (fd *fileDiscovery) loadGitignore(dir string, domain []string) {
	if !fd.respectGitignore {
		return
	}
	f, err := fd.fs.Open(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fd.gitPatterns = append(fd.gitPatterns, gitignore.ParsePattern(line, domain))
	}
	if err := scanner.Err(); err != nil {
		fd.logger.Warn().Err(err).Str("dir", dir).Msg("failed to read .gitignore")
	}
}
