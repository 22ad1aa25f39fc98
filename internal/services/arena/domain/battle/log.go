package battle

import (
	"fmt"

	"github.com/louisbranch/fusionarena/internal/services/arena/domain/core/encoding"
)

// Entry is an applied action and the logical time it happened at.
type Entry struct {
	Action Action  `json:"action"`
	T      float64 `json:"t"`
}

// Log is the append-only record of applied actions.
type Log struct {
	entries []Entry
}

func (l *Log) append(a Action, t float64) {
	l.entries = append(l.entries, Entry{Action: a, T: t})
}

// Entries returns a copy of the log.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int { return len(l.entries) }

// Envelope is the canonical, self-describing form of an action.
type Envelope struct {
	Type   ActionType `json:"type"`
	Action Action     `json:"action"`
	T      float64    `json:"t"`
}

// Envelopes returns every entry tagged with its action type.
func (l *Log) Envelopes() []Envelope {
	out := make([]Envelope, len(l.entries))
	for i, e := range l.entries {
		out[i] = Envelope{Type: e.Action.Type(), Action: e.Action, T: e.T}
	}
	return out
}

// Hash chains the canonical form of every action in order. Timestamps are
// left out so that retuned timings do not change a battle's fingerprint.
// An empty log hashes to the empty string.
func (l *Log) Hash() (string, error) {
	hash := ""
	for i, e := range l.entries {
		next, err := encoding.ChainHash(hash, struct {
			Type   ActionType `json:"type"`
			Action Action     `json:"action"`
		}{e.Action.Type(), e.Action})
		if err != nil {
			return "", fmt.Errorf("hash entry %d: %w", i, err)
		}
		hash = next
	}
	return hash, nil
}
