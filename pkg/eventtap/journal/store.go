// Package journal records dispatch outcomes for later inspection.
package journal

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/eventtap/pkg/eventtap"
	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
)

// Store persists journal records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores rec and assigns its Sequence.
	// A record without an ID gets a fresh one.
	Append(rec Record) (Record, error)

	// Get retrieves a record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	Get(id string) (Record, error)

	// List returns the records matching q, ordered by sequence.
	// Returns empty slice (not error) if nothing matches.
	List(q Query) ([]Record, error)

	// Count returns the number of stored records.
	Count() (int, error)

	// Prune removes records whose Time is before cutoff and reports how
	// many were removed.
	Prune(cutoff time.Time) (int, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Record is one journaled dispatch pass.
type Record struct {
	ID       string
	Sequence int64
	Time     time.Time

	Type   eventtype.Type
	Source string

	Suppressed     bool
	SuppressedBy   string
	SuppressedForm string

	Enriched    bool
	EnrichError string

	Invoked  int
	Panics   int
	Duration time.Duration
}

// Query filters List results. The zero Query matches everything.
type Query struct {
	// Types restricts results to these event types.
	Types []eventtype.Type
	// SuppressedOnly keeps only suppressed events.
	SuppressedOnly bool
	// Since drops records before this time.
	Since time.Time
	// Limit keeps only the newest Limit matches. Zero means no limit.
	Limit int
}

func (q Query) matches(rec Record) bool {
	if q.SuppressedOnly && !rec.Suppressed {
		return false
	}
	if !q.Since.IsZero() && rec.Time.Before(q.Since) {
		return false
	}
	if len(q.Types) == 0 {
		return true
	}
	for _, t := range q.Types {
		if t == rec.Type {
			return true
		}
	}
	return false
}

// Sentinel errors for journal operations.
var (
	// ErrNotFound indicates a record doesn't exist.
	ErrNotFound = errors.New("journal record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")
)

// FromOutcome builds a record from a dispatch outcome.
// Time is the event timestamp, or now if the event carries none.
func FromOutcome(o eventtap.Outcome) Record {
	rec := Record{
		ID:         uuid.NewString(),
		Time:       o.Event.Timestamp,
		Type:       o.Event.Type,
		Source:     o.Event.Source,
		Suppressed: o.Suppressed,
		Enriched:   o.Enriched,
		Invoked:    o.Invoked,
		Panics:     len(o.Panics),
		Duration:   o.Duration,
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	rec.Time = rec.Time.UTC()
	if o.Suppressed {
		rec.SuppressedBy = o.SuppressedBy
		rec.SuppressedForm = o.SuppressedForm.String()
	}
	if o.EnrichErr != nil {
		rec.EnrichError = o.EnrichErr.Error()
	}
	return rec
}
