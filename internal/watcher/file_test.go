package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, path string, opts Options) *FileWatcher {
	t.Helper()
	w, err := NewFileWatcher(path, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Start(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
		<-done
	})
	return w
}

func nextBatch(t *testing.T, w *FileWatcher, timeout time.Duration) []FileEvent {
	t.Helper()
	select {
	case batch, ok := <-w.Events():
		require.True(t, ok, "events channel closed")
		return batch
	case <-time.After(timeout):
		t.Fatal("timeout waiting for file event")
		return nil
	}
}

func TestFileWatcher_DetectsWrite(t *testing.T) {
	// Given: a watched posts file
	dir := t.TempDir()
	path := filepath.Join(dir, "posts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o644))
	w := startWatcher(t, path, Options{DebounceWindow: 50 * time.Millisecond})
	require.False(t, w.Polling())

	// When: the file is rewritten
	require.NoError(t, os.WriteFile(path, []byte("- id: 0\n"), 0o644))

	// Then: one modify batch for that file arrives
	batch := nextBatch(t, w, 2*time.Second)
	require.Len(t, batch, 1)
	assert.Equal(t, w.Path(), batch[0].Path)
	assert.Equal(t, OpModify, batch[0].Operation)
}

func TestFileWatcher_AtomicReplaceIsModify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o644))
	w := startWatcher(t, path, Options{DebounceWindow: 100 * time.Millisecond})

	// editor-style save: write a temp file, rename it over the original
	tmp := filepath.Join(dir, ".posts.yaml.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("- id: 0\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	batch := nextBatch(t, w, 2*time.Second)
	require.Len(t, batch, 1)
	assert.NotEqual(t, OpDelete, batch[0].Operation)
}

func TestFileWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o644))
	w := startWatcher(t, path, Options{DebounceWindow: 50 * time.Millisecond})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case batch := <-w.Events():
		t.Fatalf("unexpected batch for sibling file: %v", batch)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFileWatcher_Polling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posts.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	w := startWatcher(t, path, Options{
		DebounceWindow: 20 * time.Millisecond,
		PollInterval:   20 * time.Millisecond,
		ForcePolling:   true,
	})
	require.True(t, w.Polling())

	// let the poller take its baseline, then change size and mtime
	time.Sleep(60 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":0}]`), 0o644))

	batch := nextBatch(t, w, 2*time.Second)
	require.Len(t, batch, 1)
	assert.Equal(t, OpModify, batch[0].Operation)
}

func TestPollingWatcher_CreateAndDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.yaml")
	p := NewPollingWatcher(path, time.Hour)
	p.last = snapshot(path)

	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	p.poll()
	require.NoError(t, os.Remove(path))
	p.poll()
	p.poll() // no change

	require.NoError(t, p.Stop())
	var ops []Operation
	for e := range p.Events() {
		ops = append(ops, e.Operation)
	}
	assert.Equal(t, []Operation{OpCreate, OpDelete}, ops)
}

func TestFileWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	w, err := NewFileWatcher(path, DefaultOptions())
	require.NoError(t, err)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
	_, ok := <-w.Events()
	assert.False(t, ok)
}
