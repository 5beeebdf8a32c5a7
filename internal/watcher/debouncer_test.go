package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ev(path string, op Operation) FileEvent {
	return FileEvent{Path: path, Operation: op, Timestamp: time.Now()}
}

func waitBatch(t *testing.T, d *Debouncer, timeout time.Duration) []FileEvent {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(timeout):
		t.Fatal("timeout waiting for debounced batch")
		return nil
	}
}

func TestDebouncer_SingleEvent_PassesThrough(t *testing.T) {
	// Given: a debouncer with short window
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// When: a single event is added
	d.Add(ev("posts.yaml", OpModify))

	// Then: it comes out after the window
	batch := waitBatch(t, d, 500*time.Millisecond)
	require.Len(t, batch, 1)
	assert.Equal(t, "posts.yaml", batch[0].Path)
	assert.Equal(t, OpModify, batch[0].Operation)
}

func TestDebouncer_BurstCoalescesToOneBatch(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)
	defer d.Stop()

	// When: an editor writes the file several times in quick succession
	for i := 0; i < 5; i++ {
		d.Add(ev("posts.yaml", OpModify))
		time.Sleep(10 * time.Millisecond)
	}

	// Then: one event comes out
	batch := waitBatch(t, d, time.Second)
	require.Len(t, batch, 1)
	assert.Equal(t, OpModify, batch[0].Operation)

	select {
	case extra := <-d.Output():
		t.Fatalf("unexpected second batch: %v", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name     string
		prev     Operation
		next     Operation
		wantOp   Operation
		wantKeep bool
	}{
		{"create then modify stays create", OpCreate, OpModify, OpCreate, true},
		{"create then delete cancels", OpCreate, OpDelete, 0, false},
		{"modify then delete is delete", OpModify, OpDelete, OpDelete, true},
		{"delete then create is replace", OpDelete, OpCreate, OpModify, true},
		{"modify then modify", OpModify, OpModify, OpModify, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, keep := coalesce(ev("p", tt.prev), ev("p", tt.next))

			assert.Equal(t, tt.wantKeep, keep)
			if keep {
				assert.Equal(t, tt.wantOp, merged.Operation)
			}
		})
	}
}

func TestDebouncer_AtomicSaveIsModify(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// rename-over-original: the old file goes away, the new one appears
	d.Add(ev("posts.yaml", OpDelete))
	d.Add(ev("posts.yaml", OpCreate))

	batch := waitBatch(t, d, 500*time.Millisecond)
	require.Len(t, batch, 1)
	assert.Equal(t, OpModify, batch[0].Operation)
}

func TestDebouncer_CreateThenDelete_NoBatch(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(ev("posts.yaml.tmp", OpCreate))
	d.Add(ev("posts.yaml.tmp", OpDelete))

	select {
	case batch := <-d.Output():
		t.Fatalf("expected no batch, got %v", batch)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDebouncer_BatchSortedByPath(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(ev("b.yaml", OpModify))
	d.Add(ev("a.yaml", OpModify))

	batch := waitBatch(t, d, 500*time.Millisecond)
	require.Len(t, batch, 2)
	assert.Equal(t, "a.yaml", batch[0].Path)
	assert.Equal(t, "b.yaml", batch[1].Path)
}

func TestDebouncer_StopIsIdempotentAndClosesOutput(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	d.Add(ev("posts.yaml", OpModify))

	d.Stop()
	d.Stop()
	d.Add(ev("posts.yaml", OpModify))

	_, ok := <-d.Output()
	assert.False(t, ok)
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "CREATE", OpCreate.String())
	assert.Equal(t, "MODIFY", OpModify.String())
	assert.Equal(t, "DELETE", OpDelete.String())
	assert.Equal(t, "UNKNOWN", Operation(9).String())
}

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()
	assert.Equal(t, DefaultOptions(), opts)

	custom := Options{DebounceWindow: time.Second, PollInterval: time.Minute, ForcePolling: true}.WithDefaults()
	assert.Equal(t, time.Second, custom.DebounceWindow)
	assert.Equal(t, time.Minute, custom.PollInterval)
	assert.True(t, custom.ForcePolling)
}
