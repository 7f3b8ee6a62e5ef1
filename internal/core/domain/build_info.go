package domain

import "time"

// BuildTimeRecord is the last recorded build duration of a node keyed by static uid.
type BuildTimeRecord struct {
	StaticUID string    `json:"static_uid"`
	Seconds   int64     `json:"seconds"`
	Timestamp time.Time `json:"timestamp"`
}
