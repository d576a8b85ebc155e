package stt

import (
	"strings"
	"time"

	"github.com/MrWong99/orator/pkg/types"
)

// Transcript is the complete recognition result for one recording.
type Transcript struct {
	// Text is the transcribed speech content.
	Text string

	// Words holds one entry per recognised word, ordered by Start.
	Words []types.Word

	// Language is the detected or requested language, when reported.
	Language string

	// Provider names the backend that produced the result.
	Provider string
}

// KeywordBoost represents a keyword to boost in STT recognition.
type KeywordBoost struct {
	// Keyword is the text to boost (e.g., "photosynthesis").
	Keyword string

	// Boost is the intensity of the boost (provider-specific scale).
	Boost float64
}

// Normalize sorts out the small inconsistencies backends produce: empty
// tokens are dropped, zero-length words get a 10 ms extent, and a word that
// starts before its predecessor is moved to the predecessor's start so the
// sequence is non-decreasing in Start. Text is rebuilt from the words when
// the backend left it empty.
func (t Transcript) Normalize() Transcript {
	words := make([]types.Word, 0, len(t.Words))
	for _, w := range t.Words {
		w.Text = strings.TrimSpace(w.Text)
		if w.Text == "" {
			continue
		}
		if n := len(words); n > 0 && w.Start < words[n-1].Start {
			w.Start = words[n-1].Start
		}
		if w.End <= w.Start {
			w.End = w.Start + 10*time.Millisecond
		}
		words = append(words, w)
	}
	t.Words = words
	t.Text = strings.TrimSpace(t.Text)
	if t.Text == "" && len(words) > 0 {
		parts := make([]string, len(words))
		for i, w := range words {
			parts[i] = w.Text
		}
		t.Text = strings.Join(parts, " ")
	}
	return t
}
