// Package features extracts the measurements the scoring engine grades: filler
// usage, pause distribution, voice contours and emphasis, speech structure and
// timing, vocabulary, grammar, topic relevance and rhetorical effectiveness.
//
// Extractors are pure functions of an [Input] and the [Extractor]'s
// configuration. They never mutate the input and may run concurrently. None of
// them returns a score; that is the job of the scoring package, which keeps
// every threshold in one place.
package features

import (
	"time"

	"github.com/MrWong99/orator/internal/transcript"
	"github.com/MrWong99/orator/internal/transcript/phonetic"
	"github.com/MrWong99/orator/pkg/audio"
	"github.com/MrWong99/orator/pkg/provider/vad"
	"github.com/MrWong99/orator/pkg/types"
)

// Input is everything an extractor may look at. Build it with [NewInput].
type Input struct {
	Audio     audio.PCM
	Words     []types.Word
	Tokens    []transcript.Token
	Sentences []transcript.Sentence

	// Duration is the length of the recording, not of the speech inside it.
	Duration time.Duration

	Topic    string
	Expected types.DurationBucket
	Gender   types.Gender
}

// NewInput tokenises words and splits them into sentences.
func NewInput(pcm audio.PCM, words []types.Word, topic string, expected types.DurationBucket, gender types.Gender) Input {
	tokens := transcript.Tokenize(words)
	dur := pcm.Duration()
	if dur == 0 && len(words) > 0 {
		dur = words[len(words)-1].End
	}
	return Input{
		Audio:     pcm,
		Words:     words,
		Tokens:    tokens,
		Sentences: transcript.Sentences(tokens, transcript.DefaultSentenceGap),
		Duration:  dur,
		Topic:     topic,
		Expected:  expected,
		Gender:    gender,
	}
}

// Split is the share of the recording given to the introduction and the
// conclusion. The body takes the rest.
type Split struct {
	Intro      float64
	Conclusion float64
}

// DefaultSplit is the 20/60/20 segmentation.
var DefaultSplit = Split{Intro: 0.2, Conclusion: 0.2}

// Body returns the body share.
func (s Split) Body() float64 { return 1 - s.Intro - s.Conclusion }

func (s Split) valid() bool {
	return s.Intro > 0 && s.Conclusion > 0 && s.Intro+s.Conclusion < 1
}

// Config tunes the extractors. The zero value is usable.
type Config struct {
	Split Split

	// ExtraFillers extend [DefaultFillers].
	ExtraFillers []string

	// ExtraAdvancedWords always count as advanced vocabulary.
	ExtraAdvancedWords []string

	// EmphasisMargin is how far pitch must rise above its rolling baseline
	// (0.15 = 15%) for a frame to count as emphasised.
	EmphasisMargin float64

	// EmphasisMinSpacing is the minimum distance between emphasis points.
	EmphasisMinSpacing time.Duration

	// VAD restricts the voice contours to speech frames. Nil treats every
	// frame above the absolute floor as speech.
	VAD vad.Engine
}

const (
	defaultEmphasisMargin     = 0.15
	defaultEmphasisMinSpacing = 500 * time.Millisecond
)

// Extractor runs the feature extractors with a fixed configuration. It is
// immutable and safe for concurrent use.
type Extractor struct {
	split      Split
	fillers    *transcript.Lexicon
	advanced   map[string]bool
	margin     float64
	minSpacing time.Duration
	vad        vad.Engine
	matcher    *phonetic.Matcher
}

// New returns an Extractor for cfg, filling in defaults for zero fields.
func New(cfg Config) *Extractor {
	e := &Extractor{
		split:      cfg.Split,
		fillers:    transcript.NewLexicon(append(append([]string{}, DefaultFillers...), cfg.ExtraFillers...)...),
		advanced:   make(map[string]bool, len(cfg.ExtraAdvancedWords)),
		margin:     cfg.EmphasisMargin,
		minSpacing: cfg.EmphasisMinSpacing,
		vad:        cfg.VAD,
		matcher:    phonetic.New(),
	}
	if !e.split.valid() {
		e.split = DefaultSplit
	}
	if e.margin <= 0 {
		e.margin = defaultEmphasisMargin
	}
	if e.minSpacing <= 0 {
		e.minSpacing = defaultEmphasisMinSpacing
	}
	for _, w := range cfg.ExtraAdvancedWords {
		if n := transcript.Normalize(w); n != "" {
			e.advanced[n] = true
		}
	}
	return e
}

// Split returns the segmentation in use.
func (e *Extractor) Split() Split { return e.split }

// Fillers returns the compiled filler lexicon.
func (e *Extractor) Fillers() *transcript.Lexicon { return e.fillers }
