// Package watcher reports debounced source file changes below a directory tree.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period before a batch of changes is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors source files for changes and reports them in debounced batches.
type Watcher interface {
	// Start begins watching, calling callback with each batch of changed files.
	// The callback runs on the watcher's goroutine; batches never overlap.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the watcher and waits for the callback to return. It is safe to call more than once.
	Stop() error
}

// Option configures a Watcher.
type Option func(*fileWatcher)

// WithDebounce sets the quiet period before a batch fires.
func WithDebounce(d time.Duration) Option {
	return func(fw *fileWatcher) {
		if d > 0 {
			fw.debounceTime = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(logger zerolog.Logger) Option {
	return func(fw *fileWatcher) {
		fw.logger = logger
	}
}

// WithSkipDirs names directories that are never watched, at any depth.
// Hidden directories are always skipped.
func WithSkipDirs(names ...string) Option {
	return func(fw *fileWatcher) {
		for _, name := range names {
			fw.skipDirs[name] = true
		}
	}
}

type fileWatcher struct {
	watcher      *fsnotify.Watcher
	extensions   map[string]bool
	skipDirs     map[string]bool
	debounceTime time.Duration
	logger       zerolog.Logger
	callback     func(files []string)
	cancel       context.CancelFunc

	accumulated   map[string]bool
	accumulatedMu sync.Mutex
	debounceTimer *time.Timer
	timerMu       sync.Mutex

	startOnce sync.Once
	stopOnce  sync.Once
	doneCh    chan struct{}
}

// New creates a watcher over rootDir for files with the given extensions
// (e.g. []string{".go", ".rs"}).
func New(rootDir string, extensions []string, opts ...Option) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &fileWatcher{
		watcher:      watcher,
		extensions:   make(map[string]bool, len(extensions)),
		skipDirs:     make(map[string]bool),
		debounceTime: DefaultDebounce,
		logger:       zerolog.Nop(),
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}
	for _, ext := range extensions {
		fw.extensions[ext] = true
	}
	for _, opt := range opts {
		opt(fw)
	}

	if err := fw.addDirectoriesRecursively(rootDir); err != nil {
		watcher.Close()
		return nil, err
	}
	return fw, nil
}

// Start begins watching for file changes. Only the first call has an effect.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	fw.startOnce.Do(func() {
		var watchCtx context.Context
		watchCtx, fw.cancel = context.WithCancel(ctx)
		fw.callback = callback
		go fw.watch(watchCtx)
	})
	return nil
}

// Stop stops the file watcher.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		// Claim startOnce so a later Start is a no-op
		fw.startOnce.Do(func() {})
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		}
		err = fw.watcher.Close()
	})
	return err
}

func (fw *fileWatcher) watch(ctx context.Context) {
	defer close(fw.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// New directories must be added to keep the watch recursive
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !fw.skipDirName(info.Name()) {
					if err := fw.addDirectoriesRecursively(event.Name); err != nil {
						fw.logger.Warn().Err(err).Str("dir", event.Name).Msg("failed to watch new directory")
					}
				}
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.accumulatedMu.Lock()
			fw.accumulated[event.Name] = true
			fw.accumulatedMu.Unlock()

			fw.resetDebounceTimer(fireCh)

		case <-fireCh:
			fw.flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn().Err(err).Msg("file watcher error")
		}
	}
}

// flush hands the accumulated batch, sorted, to the callback.
func (fw *fileWatcher) flush() {
	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}
	files := make([]string, 0, len(fw.accumulated))
	for file := range fw.accumulated {
		files = append(files, file)
	}
	fw.accumulated = make(map[string]bool)
	fw.accumulatedMu.Unlock()

	sort.Strings(files)
	fw.callback(files)
}

func (fw *fileWatcher) resetDebounceTimer(fireCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

// shouldProcessEvent keeps writes, creates, removes and renames of watched extensions.
func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return fw.extensions[filepath.Ext(event.Name)]
}

func (fw *fileWatcher) skipDir(rootPath, path string, info os.FileInfo) bool {
	if path == rootPath {
		return false
	}
	return fw.skipDirName(info.Name())
}

func (fw *fileWatcher) skipDirName(name string) bool {
	return strings.HasPrefix(name, ".") || fw.skipDirs[name]
}

func (fw *fileWatcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			fw.logger.Debug().Err(err).Str("path", path).Msg("skipping unreadable entry")
			return nil
		}

		if !info.IsDir() {
			return nil
		}
		if fw.skipDir(rootPath, path, info) {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn().Err(err).Str("dir", path).Msg("failed to watch directory")
		}
		return nil
	})
}
