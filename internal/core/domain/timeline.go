package domain

import (
	"maps"
	"sync"
	"time"
)

// Stage names a step of a node task.
type Stage string

const (
	// StagePrepare covers build root creation and pattern resolution.
	StagePrepare Stage = "prepare"
	// StageRestoreContentUID covers cache lookups by content uid.
	StageRestoreContentUID = Stage("restore_by_content_uid")
	// StageStealDeps covers hard linking dependency roots.
	StageStealDeps = Stage("steal_deps")
	// StageStrictInputs covers staging of the private source root.
	StageStrictInputs = Stage("strict_inputs")
	// StageExecuteCommand covers one command process.
	StageExecuteCommand = Stage("execute_command")
	// StagePostprocessingCommand covers work after a command exits.
	StagePostprocessingCommand = Stage("postprocessing_command")
	// StageValidate covers build root validation.
	StageValidate = Stage("validate")
	// StageOutputDigests covers output digest computation.
	StageOutputDigests = Stage("output_digests")
)

// TimelineEvent is one closed interval of a stage.
type TimelineEvent struct {
	Start time.Time         `json:"start"`
	Stop  time.Time         `json:"stop"`
	Data  map[string]string `json:"data,omitempty"`
}

// DetailedTimelineStore records consecutive stages of a task.
// Starting a stage closes the previous one.
type DetailedTimelineStore struct {
	mu      sync.Mutex
	events  map[Stage][]TimelineEvent
	current Stage
	started time.Time
	data    map[string]string
	open    bool
}

// NewDetailedTimelineStore creates an empty store.
func NewDetailedTimelineStore() *DetailedTimelineStore {
	return &DetailedTimelineStore{events: make(map[Stage][]TimelineEvent)}
}

// StartStage closes the open stage at now and opens stage.
// data is a list of key, value pairs attached to the new event.
func (s *DetailedTimelineStore) StartStage(stage Stage, now time.Time, data ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeLocked(now)

	s.current = stage
	s.started = now
	s.open = true
	s.data = nil
	if len(data) > 1 {
		s.data = make(map[string]string, len(data)/2)
		for i := 0; i+1 < len(data); i += 2 {
			if data[i+1] != "" {
				s.data[data[i]] = data[i+1]
			}
		}
	}
}

// Finish closes the open stage at now.
func (s *DetailedTimelineStore) Finish(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked(now)
}

func (s *DetailedTimelineStore) closeLocked(now time.Time) {
	if !s.open {
		return
	}
	s.events[s.current] = append(s.events[s.current], TimelineEvent{Start: s.started, Stop: now, Data: s.data})
	s.open = false
}

// Dump returns a copy of the recorded events.
func (s *DetailedTimelineStore) Dump() map[Stage][]TimelineEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[Stage][]TimelineEvent, len(s.events))
	for k, v := range s.events {
		evs := make([]TimelineEvent, len(v))
		for i, ev := range v {
			ev.Data = maps.Clone(ev.Data)
			evs[i] = ev
		}
		out[k] = evs
	}
	return out
}
