package report

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/MrWong99/orator/internal/features"
)

// MinuteCount is one labelled window of filler_per_minute.
type MinuteCount struct {
	Label string
	Count int
}

// MinuteCounts maps "Minute N" labels to filler counts. It marshals as a JSON
// object whose keys keep time order ("Minute 2" before "Minute 10"), which a
// Go map cannot guarantee. The zero value marshals as {}.
type MinuteCounts struct {
	om *orderedmap.OrderedMap[string, int]
}

// NewMinuteCounts returns the entries in the given order.
func NewMinuteCounts(entries ...MinuteCount) MinuteCounts {
	om := orderedmap.New[string, int]()
	for _, e := range entries {
		om.Set(e.Label, e.Count)
	}
	return MinuteCounts{om: om}
}

func minuteCounts(in []features.MinuteCount) MinuteCounts {
	entries := make([]MinuteCount, len(in))
	for i, m := range in {
		entries[i] = MinuteCount{Label: m.Label(), Count: m.Count}
	}
	return NewMinuteCounts(entries...)
}

// MarshalJSON implements json.Marshaler.
func (m MinuteCounts) MarshalJSON() ([]byte, error) {
	if m.om == nil {
		return []byte("{}"), nil
	}
	return m.om.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler, keeping the document's key order.
func (m *MinuteCounts) UnmarshalJSON(data []byte) error {
	om := orderedmap.New[string, int]()
	if err := om.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("report: filler_per_minute: %w", err)
	}
	m.om = om
	return nil
}

// Get returns the count for label, 0 when absent.
func (m MinuteCounts) Get(label string) int {
	if m.om == nil {
		return 0
	}
	n, _ := m.om.Get(label)
	return n
}

// Entries returns the windows in time order.
func (m MinuteCounts) Entries() []MinuteCount {
	if m.om == nil {
		return nil
	}
	out := make([]MinuteCount, 0, m.om.Len())
	for p := m.om.Oldest(); p != nil; p = p.Next() {
		out = append(out, MinuteCount{Label: p.Key, Count: p.Value})
	}
	return out
}
