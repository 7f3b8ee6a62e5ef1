// Package telemetry traces builds with OpenTelemetry.
package telemetry

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultMaxLines is the number of buffered lines that forces a flush.
	DefaultMaxLines = 64
	// DefaultInterval is the period after which buffered lines are flushed.
	DefaultInterval = 50 * time.Millisecond
)

var errBatcherClosed = errors.New("line batcher is closed")

// LineBatcher groups command output into batches of complete lines.
// A partial trailing line stays buffered until its newline arrives or the batcher is closed.
// It is safe for concurrent use.
type LineBatcher struct {
	maxLines int
	interval time.Duration
	onFlush  func(lines []string)

	mu      sync.Mutex
	partial bytes.Buffer
	lines   []string
	ticker  *time.Ticker
	stopCh  chan struct{}
	closed  bool
}

// NewLineBatcher returns a LineBatcher that hands lines to onFlush once maxLines are buffered or
// interval has passed. Non-positive limits select the defaults. Close stops the background ticker.
func NewLineBatcher(maxLines int, interval time.Duration, onFlush func(lines []string)) *LineBatcher {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	b := &LineBatcher{
		maxLines: maxLines,
		interval: interval,
		onFlush:  onFlush,
		stopCh:   make(chan struct{}),
		ticker:   time.NewTicker(interval),
	}
	go b.run()

	return b
}

// Write splits p into lines. Carriage returns before the newline are dropped.
func (b *LineBatcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errBatcherClosed
	}

	rest := p
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			break
		}
		b.partial.Write(rest[:i])
		b.lines = append(b.lines, strings.TrimSuffix(b.partial.String(), "\r"))
		b.partial.Reset()
		rest = rest[i+1:]
	}
	b.partial.Write(rest)

	if len(b.lines) >= b.maxLines {
		b.flushLocked()
		b.ticker.Reset(b.interval)
	}
	return len(p), nil
}

// Flush hands the complete buffered lines to the callback.
func (b *LineBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.flushLocked()
}

// Close stops the background flusher and flushes everything, including a partial line.
func (b *LineBatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	close(b.stopCh)
	if b.partial.Len() > 0 {
		b.lines = append(b.lines, b.partial.String())
		b.partial.Reset()
	}
	b.flushLocked()
	return nil
}

func (b *LineBatcher) run() {
	for {
		select {
		case <-b.ticker.C:
			b.Flush()
		case <-b.stopCh:
			b.ticker.Stop()
			return
		}
	}
}

// flushLocked must be called with mu held.
func (b *LineBatcher) flushLocked() {
	if len(b.lines) == 0 {
		return
	}

	lines := b.lines
	b.lines = nil

	// onFlush runs under mu to keep batches in order and must not block.
	if b.onFlush != nil {
		b.onFlush(lines)
	}
}
