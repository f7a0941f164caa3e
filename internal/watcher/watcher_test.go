package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Watcher:
// - New creates a watcher for an existing directory and fails for a missing one
// - A single change fires one callback after the debounce period
// - Rapid changes to several files are batched, sorted and deduplicated
// - Only watched extensions trigger callbacks; hidden files never do
// - Files in directories created after Start are seen
// - Skipped and hidden directories are not watched
// - Stop is idempotent, safe concurrently and safe before Start
// - Context cancellation stops the watch loop

const testDebounce = 100 * time.Millisecond

// batchRecorder collects callback batches.
type batchRecorder struct {
	mu      sync.Mutex
	batches [][]string
	fired   chan struct{}
}

func newBatchRecorder() *batchRecorder {
	return &batchRecorder{fired: make(chan struct{}, 16)}
}

func (r *batchRecorder) callback(files []string) {
	r.mu.Lock()
	r.batches = append(r.batches, files)
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *batchRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.fired:
	case <-time.After(3 * time.Second):
		t.Fatal("callback not called after timeout")
	}
}

func (r *batchRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var files []string
	for _, batch := range r.batches {
		files = append(files, batch...)
	}
	return files
}

func startWatcher(t *testing.T, root string, extensions []string, opts ...Option) (Watcher, *batchRecorder) {
	t.Helper()

	w, err := New(root, extensions, append([]Option{WithDebounce(testDebounce)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	rec := newBatchRecorder()
	require.NoError(t, w.Start(context.Background(), rec.callback))

	// Wait for watcher to initialize
	time.Sleep(100 * time.Millisecond)
	return w, rec
}

func TestNew(t *testing.T) {
	t.Parallel()

	w, err := New(t.TempDir(), []string{".go"})
	require.NoError(t, err)
	require.NotNil(t, w)
	require.NoError(t, w.Stop())

	w, err = New(filepath.Join(t.TempDir(), "nonexistent"), []string{".go"})
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestWatcher_SingleChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir, []string{".rs"})

	file := filepath.Join(dir, "lib.rs")
	require.NoError(t, os.WriteFile(file, []byte("fn main() {}"), 0644))

	rec.wait(t)
	assert.Equal(t, []string{file}, rec.all())
}

func TestWatcher_BatchesAndDeduplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir, []string{".py"})

	b := filepath.Join(dir, "b.py")
	a := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(b, []byte("x = 1\n"), 0644))
	require.NoError(t, os.WriteFile(a, []byte("y = 1\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("x = 2\n"), 0644))

	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.batches, 1)
	assert.Equal(t, []string{a, b}, rec.batches[0])
}

func TestWatcher_ExtensionFiltering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir, []string{".go", ".ts"})

	goFile := filepath.Join(dir, "main.go")
	tsFile := filepath.Join(dir, "app.ts")
	mdFile := filepath.Join(dir, "README.md")
	hidden := filepath.Join(dir, ".hidden.go")

	require.NoError(t, os.WriteFile(mdFile, []byte("# Title"), 0644))
	require.NoError(t, os.WriteFile(hidden, []byte("package main"), 0644))
	require.NoError(t, os.WriteFile(goFile, []byte("package main"), 0644))
	require.NoError(t, os.WriteFile(tsFile, []byte("export {}"), 0644))

	rec.wait(t)

	files := rec.all()
	assert.Contains(t, files, goFile)
	assert.Contains(t, files, tsFile)
	assert.NotContains(t, files, mdFile)
	assert.NotContains(t, files, hidden)
}

func TestWatcher_DirectoryAdded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir, []string{".go"})

	newDir := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(newDir, 0755))

	// Wait for the directory to be added to the watcher
	time.Sleep(300 * time.Millisecond)

	file := filepath.Join(newDir, "util.go")
	require.NoError(t, os.WriteFile(file, []byte("package pkg"), 0644))

	rec.wait(t)
	assert.Contains(t, rec.all(), file)
}

func TestWatcher_SkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	git := filepath.Join(dir, ".git")
	require.NoError(t, os.Mkdir(target, 0755))
	require.NoError(t, os.Mkdir(git, 0755))

	_, rec := startWatcher(t, dir, []string{".rs"}, WithSkipDirs("target"))

	require.NoError(t, os.WriteFile(filepath.Join(target, "build.rs"), []byte("fn main() {}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(git, "hook.rs"), []byte("fn main() {}"), 0644))

	// Give skipped events time to arrive, then write a watched file
	time.Sleep(2 * testDebounce)
	file := filepath.Join(dir, "lib.rs")
	require.NoError(t, os.WriteFile(file, []byte("fn lib() {}"), 0644))

	rec.wait(t)
	assert.Equal(t, []string{file}, rec.all())
}

func TestWatcher_Stop(t *testing.T) {
	t.Parallel()

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		w, err := New(t.TempDir(), []string{".go"})
		require.NoError(t, err)
		require.NoError(t, w.Start(context.Background(), func([]string) {}))

		start := time.Now()
		require.NoError(t, w.Stop())
		assert.Less(t, time.Since(start), 500*time.Millisecond)
		require.NoError(t, w.Stop())
	})

	t.Run("concurrent", func(t *testing.T) {
		t.Parallel()

		w, err := New(t.TempDir(), []string{".go"})
		require.NoError(t, err)
		require.NoError(t, w.Start(context.Background(), func([]string) {}))

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = w.Stop()
			}()
		}
		wg.Wait()
	})

	t.Run("before start", func(t *testing.T) {
		t.Parallel()

		w, err := New(t.TempDir(), []string{".go"})
		require.NoError(t, err)
		require.NoError(t, w.Stop())
		require.NoError(t, w.Start(context.Background(), func([]string) {}))
		require.NoError(t, w.Stop())
	})
}

func TestWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	w, err := New(t.TempDir(), []string{".go"})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, func([]string) {}))

	cancel()

	fw := w.(*fileWatcher)
	select {
	case <-fw.doneCh:
	case <-time.After(time.Second):
		t.Fatal("watch loop did not stop after cancellation")
	}
}
