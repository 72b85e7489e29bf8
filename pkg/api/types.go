package api

import (
	"fmt"
	"time"
)

// Limits enforced on profile writes and event submissions.
const (
	MaxNameLength = 30
	MaxCityLength = 50
)

// Envelope is one user-activity occurrence recorded asynchronously.
// Once enqueued an envelope is immutable; its JSON form must round-trip
// losslessly through the event queue.
type Envelope struct {
	EventID    string                 `json:"event_id"`
	UserID     int64                  `json:"user_id"`
	EventType  string                 `json:"event_type"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	EnqueuedAt time.Time              `json:"enqueued_at"`
}

// Validate checks the envelope's required fields.
func (e *Envelope) Validate() error {
	if e.UserID <= 0 {
		return fmt.Errorf("user_id must be positive, got %d", e.UserID)
	}
	if e.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	return nil
}

// Profile is the authoritative per-user record.
type Profile struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	City   string `json:"city"`
}

// Validate checks field constraints on a profile write.
func (p *Profile) Validate() error {
	if p.UserID <= 0 {
		return fmt.Errorf("user_id must be positive, got %d", p.UserID)
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(p.Name) > MaxNameLength {
		return fmt.Errorf("name exceeds %d characters", MaxNameLength)
	}
	if p.Age < 0 {
		return fmt.Errorf("age must be non-negative, got %d", p.Age)
	}
	if len(p.City) > MaxCityLength {
		return fmt.Errorf("city exceeds %d characters", MaxCityLength)
	}
	return nil
}

// ProfileSource identifies which layer served a profile read.
type ProfileSource string

const (
	SourceCache         ProfileSource = "cache"
	SourceAuthoritative ProfileSource = "authoritative"
)

// ProfileResponse is the read-path response carrying the profile and
// which layer served it.
type ProfileResponse struct {
	Source ProfileSource `json:"source"`
	Data   *Profile      `json:"data"`
}

// EventAck acknowledges an accepted event submission.
type EventAck struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// EventCountResponse is the per-type counter read response.
type EventCountResponse struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// UserActivityResponse is the per-user activity score read response.
type UserActivityResponse struct {
	UserID int64   `json:"user_id"`
	Score  float64 `json:"score"`
}

// StoreStats is a snapshot of the backing store's server introspection data.
type StoreStats struct {
	ConnectedClients       int64  `json:"connected_clients"`
	UsedMemoryHuman        string `json:"used_memory_human"`
	TotalCommandsProcessed int64  `json:"total_commands_processed"`
	UptimeSeconds          int64  `json:"uptime_in_seconds"`
	InstantaneousOpsPerSec int64  `json:"instantaneous_ops_per_sec"`
}

// ErrorResponse is the JSON error body returned by the HTTP boundary.
type ErrorResponse struct {
	Error string `json:"error"`
}
