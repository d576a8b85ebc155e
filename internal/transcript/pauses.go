package transcript

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrWong99/orator/pkg/types"
)

// Gaps returns the silence between each adjacent pair of words,
// word[i+1].Start - word[i].End. Overlapping words yield 0, never a negative
// gap. The result always has max(len(words)-1, 0) entries.
func Gaps(words []types.Word) []time.Duration {
	if len(words) < 2 {
		return nil
	}
	out := make([]time.Duration, len(words)-1)
	for i := 0; i < len(words)-1; i++ {
		out[i] = max(words[i+1].Start-words[i].End, 0)
	}
	return out
}

// WithPauses renders the words as text with a "[2.3 second pause]" marker
// wherever the gap to the next word is at least minPause.
func WithPauses(words []types.Word, minPause time.Duration) string {
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			b.WriteByte(' ')
			if gap := w.Start - words[i-1].End; gap >= minPause {
				fmt.Fprintf(&b, "[%.1f second pause] ", gap.Seconds())
			}
		}
		b.WriteString(strings.TrimSpace(w.Text))
	}
	return b.String()
}
