package features

import (
	"time"

	"github.com/MrWong99/orator/internal/transcript"
)

// PauseBucket indexes the four pause ranges.
type PauseBucket int

const (
	PauseShort    PauseBucket = iota // [0, 1.5s)
	PauseMedium                      // [1.5s, 3s)
	PauseLong                        // [3s, 5s)
	PauseVeryLong                    // [5s, ∞)

	numPauseBuckets
)

// Bucket bounds. Each range is closed below and open above.
const (
	PauseMediumFrom   = 1500 * time.Millisecond
	PauseLongFrom     = 3 * time.Second
	PauseVeryLongFrom = 5 * time.Second
)

// Label returns the wire label of the bucket.
func (b PauseBucket) Label() string {
	switch b {
	case PauseShort:
		return "Pauses under 1.5 seconds"
	case PauseMedium:
		return "Pauses between 1.5-3 seconds"
	case PauseLong:
		return "Pauses exceeding 3 seconds"
	case PauseVeryLong:
		return "Pauses exceeding 5 seconds"
	default:
		return "unknown"
	}
}

// PauseBuckets returns every bucket in ascending order.
func PauseBuckets() []PauseBucket {
	return []PauseBucket{PauseShort, PauseMedium, PauseLong, PauseVeryLong}
}

// BucketOf classifies a gap. Negative gaps count as zero.
func BucketOf(gap time.Duration) PauseBucket {
	switch {
	case gap >= PauseVeryLongFrom:
		return PauseVeryLong
	case gap >= PauseLongFrom:
		return PauseLong
	case gap >= PauseMediumFrom:
		return PauseMedium
	default:
		return PauseShort
	}
}

// PauseStats is the histogram of inter-word gaps.
type PauseStats struct {
	Counts  [numPauseBuckets]int
	Longest time.Duration

	// Total is the number of gaps, len(words)-1 for a non-empty transcript.
	Total int
}

// Count returns the number of gaps in b.
func (p PauseStats) Count(b PauseBucket) int {
	if b < 0 || b >= numPauseBuckets {
		return 0
	}
	return p.Counts[b]
}

// Pause buckets every gap between adjacent words.
func (e *Extractor) Pause(in Input) PauseStats {
	var st PauseStats
	for _, g := range transcript.Gaps(in.Words) {
		st.Counts[BucketOf(g)]++
		st.Longest = max(st.Longest, g)
		st.Total++
	}
	return st
}
