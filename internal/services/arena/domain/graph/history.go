package graph

// historyEpsilon is the window within which consecutive writes coalesce.
const historyEpsilon = 1e-6

// Entry is one timed write to a variable.
type Entry struct {
	T     float64 `json:"t"`
	Blend float64 `json:"blend"`
	Value Value   `json:"value"`
}

// History is the ordered write buffer of a single variable.
type History struct {
	entries []Entry
}

// Insert records value at time t. T is clamped to the last entry so the
// history never moves backwards, and a write within historyEpsilon of the
// last entry replaces it. Insert reports false when the value is unchanged.
func (h *History) Insert(t, blend float64, value Value) bool {
	if n := len(h.entries); n > 0 {
		last := &h.entries[n-1]
		if last.Value == value {
			return false
		}
		if t < last.T {
			t = last.T
		}
		if t-last.T < historyEpsilon {
			last.Value = value
			last.Blend = blend
			return true
		}
	}
	h.entries = append(h.entries, Entry{T: t, Blend: blend, Value: value})
	return true
}

// Current returns the latest value.
func (h *History) Current() (Value, bool) {
	if len(h.entries) == 0 {
		return Value{}, false
	}
	return h.entries[len(h.entries)-1].Value, true
}

// At returns the value in effect at time t, i.e. the last entry written at
// or before t.
func (h *History) At(t float64) (Value, bool) {
	found := false
	var value Value
	for _, e := range h.entries {
		if e.T > t {
			break
		}
		value = e.Value
		found = true
	}
	return value, found
}

func (h *History) Len() int { return len(h.entries) }

// Entries returns a copy of the recorded writes.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}
