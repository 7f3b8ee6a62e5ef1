package domain

import (
	"slices"
	"sync"
)

// Display tags appended by the runner.
const (
	TagFailed       = "FAILED"
	TagBrokenByDeps = "BROKEN_BY_DEPS"
)

// Tags is an ordered set of display tags, safe for concurrent use.
type Tags struct {
	mu   sync.Mutex
	tags []string
}

// NewTags creates a tag set seeded with initial tags.
func NewTags(initial ...string) *Tags {
	t := &Tags{}
	for _, tag := range initial {
		t.Add(tag)
	}
	return t
}

// Add appends tag unless it is already present. It reports whether the tag was added.
func (t *Tags) Add(tag string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tag == "" || slices.Contains(t.tags, tag) {
		return false
	}
	t.tags = append(t.tags, tag)
	return true
}

// Contains reports whether tag is present.
func (t *Tags) Contains(tag string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Contains(t.tags, tag)
}

// List returns the tags in insertion order.
func (t *Tags) List() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.tags)
}
