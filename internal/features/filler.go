package features

import (
	"fmt"
	"time"
)

// FillerOccurrence is one detected filler.
type FillerOccurrence struct {
	Phrase string
	At     time.Duration
}

// MinuteCount is the number of fillers that started inside one 60 s window.
type MinuteCount struct {
	// Minute is the zero-based window index.
	Minute int
	Count  int
}

// Label returns the human-readable window name, "Minute 1" for the first.
func (m MinuteCount) Label() string { return fmt.Sprintf("Minute %d", m.Minute+1) }

// FillerStats summarises filler usage.
type FillerStats struct {
	Total int

	// Words is the number of spoken tokens the density is relative to.
	Words int

	// Density is Total/Words, 0 when there are no words.
	Density float64

	// PerMinute lists only the windows that contain fillers, in time order.
	PerMinute []MinuteCount

	Occurrences []FillerOccurrence
}

// WorstMinute returns the highest per-minute count.
func (f FillerStats) WorstMinute() int {
	var worst int
	for _, m := range f.PerMinute {
		worst = max(worst, m.Count)
	}
	return worst
}

// Filler counts filler words and phrases. A multi-word filler counts once and
// its tokens are never matched again.
func (e *Extractor) Filler(in Input) FillerStats {
	st := FillerStats{Words: len(in.Tokens)}
	if st.Words == 0 {
		return st
	}

	matches := e.fillers.FindAll(in.Tokens)
	st.Total = len(matches)
	st.Density = float64(st.Total) / float64(st.Words)
	st.Occurrences = make([]FillerOccurrence, 0, len(matches))

	for _, m := range matches {
		at := in.Tokens[m.Pos].Start
		st.Occurrences = append(st.Occurrences, FillerOccurrence{Phrase: m.Phrase, At: at})

		minute := int(at / time.Minute)
		if n := len(st.PerMinute); n > 0 && st.PerMinute[n-1].Minute == minute {
			st.PerMinute[n-1].Count++
			continue
		}
		st.PerMinute = append(st.PerMinute, MinuteCount{Minute: minute, Count: 1})
	}
	return st
}
