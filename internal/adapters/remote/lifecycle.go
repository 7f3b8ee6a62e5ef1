package remote

import (
	"sync"
	"time"
)

// DefaultIdleTimeout is how long an executor server waits for work before it exits.
const DefaultIdleTimeout = 10 * time.Minute

// Lifecycle shuts the executor server down once it has been idle for a timeout.
// Commands in flight keep it alive.
type Lifecycle struct {
	mu           sync.Mutex
	timer        *time.Timer
	startTime    time.Time
	lastActivity time.Time
	timeout      time.Duration
	running      int
	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

// NewLifecycle creates a lifecycle that shuts down after timeout without activity.
func NewLifecycle(timeout time.Duration) *Lifecycle {
	now := time.Now()
	l := &Lifecycle{
		startTime:    now,
		lastActivity: now,
		timeout:      timeout,
		shutdownChan: make(chan struct{}),
	}
	l.timer = time.AfterFunc(timeout, func() {
		l.triggerShutdown()
	})
	return l
}

// ResetTimer restarts the idle timeout.
func (l *Lifecycle) ResetTimer() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastActivity = time.Now()
	if l.running == 0 {
		l.timer.Reset(l.timeout)
	}
}

// Begin marks a command as running. The idle timer is paused until the matching End.
func (l *Lifecycle) Begin() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running++
	l.lastActivity = time.Now()
	l.timer.Stop()
}

// End marks a command as finished and restarts the idle timer after the last one.
func (l *Lifecycle) End() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running--
	l.lastActivity = time.Now()
	if l.running == 0 {
		l.timer.Reset(l.timeout)
	}
}

// Running returns the number of commands in flight.
func (l *Lifecycle) Running() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// IdleRemaining returns the duration until auto-shutdown.
func (l *Lifecycle) IdleRemaining() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running > 0 {
		return l.timeout
	}
	elapsed := time.Since(l.lastActivity)
	remaining := l.timeout - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Uptime returns how long the server has been running.
func (l *Lifecycle) Uptime() time.Duration {
	return time.Since(l.startTime)
}

// LastActivity returns the timestamp of the last activity.
func (l *Lifecycle) LastActivity() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastActivity
}

// ShutdownChan returns a channel that closes when shutdown is triggered.
func (l *Lifecycle) ShutdownChan() <-chan struct{} {
	return l.shutdownChan
}

// triggerShutdown closes the shutdown channel once.
func (l *Lifecycle) triggerShutdown() {
	l.shutdownOnce.Do(func() {
		close(l.shutdownChan)
	})
}

// Shutdown stops the timer and triggers shutdown.
func (l *Lifecycle) Shutdown() {
	l.timer.Stop()
	l.triggerShutdown()
}
