// Package journal records what the overlay did: user actions, host pushes
// and the outcome of every callback to the host.
package journal

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a journal entry.
type Kind string

const (
	KindAction  Kind = "action"
	KindPush    Kind = "push"
	KindOutcome Kind = "outcome"
)

// Entry is one journal record.
type Entry struct {
	ID        uuid.UUID       `json:"id"`
	Time      time.Time       `json:"time"`
	Kind      Kind            `json:"kind"`
	Type      string          `json:"type"`
	View      string          `json:"view,omitempty"`
	PatientID string          `json:"patientId,omitempty"`
	BodyPart  string          `json:"bodyPart,omitempty"`
	Endpoint  string          `json:"endpoint,omitempty"`
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewEntry creates an entry with a fresh id stamped with the current time.
func NewEntry(kind Kind, typ string) Entry {
	return Entry{
		ID:   uuid.New(),
		Time: time.Now().UTC(),
		Kind: kind,
		Type: typ,
	}
}

// WithPayload attaches v as the entry's JSON payload. Values that fail to
// encode are left out.
func (e Entry) WithPayload(v any) Entry {
	if v == nil {
		return e
	}
	if raw, err := json.Marshal(v); err == nil {
		e.Payload = raw
	}
	return e
}

// Filter selects entries. Zero fields match everything.
type Filter struct {
	Kind  Kind
	Since time.Time
	// Limit keeps only the newest entries.
	Limit int
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Entry) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if !f.Since.IsZero() && e.Time.Before(f.Since) {
		return false
	}
	return true
}

// Apply filters entries and returns them oldest first.
func (f Filter) Apply(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}

// Backend is the interface all journal implementations must satisfy
type Backend interface {
	Init() error
	Close() error

	Record(ctx context.Context, e Entry) error
	Entries(ctx context.Context, f Filter) ([]Entry, error)
}

// Pending is implemented by backends that buffer writes.
type Pending interface {
	Pending() int
}
