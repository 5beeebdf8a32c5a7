package watcher

import (
	"context"
	"os"
	"sync"
	"time"
)

// PollingWatcher detects changes to one file by stat-ing it periodically.
// Used as a fallback when fsnotify is not available.
type PollingWatcher struct {
	path     string
	interval time.Duration
	events   chan FileEvent
	stopCh   chan struct{}
	mu       sync.Mutex
	stopped  bool
	last     fileSnapshot
}

type fileSnapshot struct {
	exists  bool
	modTime time.Time
	size    int64
}

// NewPollingWatcher creates a polling watcher for path.
func NewPollingWatcher(path string, interval time.Duration) *PollingWatcher {
	return &PollingWatcher{
		path:     path,
		interval: interval,
		events:   make(chan FileEvent, 16),
		stopCh:   make(chan struct{}),
	}
}

func snapshot(path string) fileSnapshot {
	info, err := os.Stat(path)
	if err != nil {
		return fileSnapshot{}
	}
	return fileSnapshot{exists: true, modTime: info.ModTime(), size: info.Size()}
}

// Start polls until ctx is cancelled or Stop is called.
func (p *PollingWatcher) Start(ctx context.Context) error {
	p.mu.Lock()
	p.last = snapshot(p.path)
	p.mu.Unlock()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = p.Stop()
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *PollingWatcher) poll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}

	current := snapshot(p.path)
	prev := p.last
	p.last = current

	var op Operation
	switch {
	case !prev.exists && current.exists:
		op = OpCreate
	case prev.exists && !current.exists:
		op = OpDelete
	case current.exists && (!current.modTime.Equal(prev.modTime) || current.size != prev.size):
		op = OpModify
	default:
		return
	}

	select {
	case p.events <- FileEvent{Path: p.path, Operation: op, Timestamp: time.Now()}:
	default:
	}
}

// Events returns the channel of raw (undebounced) events.
func (p *PollingWatcher) Events() <-chan FileEvent {
	return p.events
}

// Stop stops the polling watcher. Safe to call multiple times.
func (p *PollingWatcher) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true
	close(p.stopCh)
	close(p.events)
	return nil
}
