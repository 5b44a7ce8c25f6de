// Package vlog keeps a bounded in-memory history of validation results
// for one connection session, used only for telemetry. The correctness
// path never reads it.
package vlog

import (
	"sync"
	"time"

	"github.com/nettield/portalwatch/internal/probe"
)

const DefaultMaxEntries = 100

// Entry is one recorded validation result.
type Entry struct {
	Result probe.Result `json:"result"`
	State  string       `json:"state"`
	At     time.Time    `json:"at"`
}

// Summary aggregates a session for the metrics sink.
type Summary struct {
	Attempts        int           `json:"attempts"`
	PortalSightings int           `json:"portal_sightings"`
	OnlineReached   bool          `json:"online_reached"`
	TimeToOnline    time.Duration `json:"time_to_online,omitempty"`
}

// Log is a bounded append-only result history. Append is fire-and-forget
// and drops the oldest entry once full.
type Log struct {
	mu      sync.RWMutex
	max     int
	started time.Time
	entries []Entry
	summary Summary
}

func New(max int) *Log {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Log{
		max:     max,
		started: time.Now(),
		entries: make([]Entry, 0, max),
	}
}

func (l *Log) Append(r probe.Result) {
	state := r.ValidationState()
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == l.max {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:l.max-1]
	}
	l.entries = append(l.entries, Entry{Result: r, State: state.String(), At: now})

	l.summary.Attempts++
	if state == probe.StatePortalRedirect || state == probe.StatePortalSuspected {
		l.summary.PortalSightings++
	}
	if state == probe.StateInternetConnectivity && !l.summary.OnlineReached {
		l.summary.OnlineReached = true
		l.summary.TimeToOnline = now.Sub(l.started)
	}
}

// Entries returns a copy of the retained history, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Summary returns the session aggregates.
func (l *Log) Summary() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.summary
}
