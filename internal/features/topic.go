package features

import (
	"strings"

	"github.com/MrWong99/orator/internal/transcript"
)

const (
	// topicKeywordMinLen is the length a topic word must exceed to be a
	// keyword.
	topicKeywordMinLen = 3

	// maxKeywordMatches caps the number of keyword hits that count.
	maxKeywordMatches = 10
)

// TopicStats measures how closely the speech sticks to its declared topic.
type TopicStats struct {
	Topic    string
	Keywords []string

	// Matches is the number of spoken tokens matching a keyword, capped at 10.
	Matches int

	// Covered lists the keywords that were spoken at least once.
	Covered []string

	// FocusShare is the fraction of sentences mentioning a keyword.
	FocusShare float64
}

// HasTopic reports whether a topic with at least one keyword was given.
func (t TopicStats) HasTopic() bool { return len(t.Keywords) > 0 }

// Coverage returns len(Covered)/len(Keywords).
func (t TopicStats) Coverage() float64 {
	if len(t.Keywords) == 0 {
		return 0
	}
	return float64(len(t.Covered)) / float64(len(t.Keywords))
}

// TopicKeywords extracts the content words of a topic title.
func TopicKeywords(topic string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Fields(topic) {
		w := transcript.Normalize(f)
		if len(w) <= topicKeywordMinLen || !alphabetic(w) || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// Topic matches spoken tokens against the topic keywords, tolerating the
// misspellings speech recognition introduces.
func (e *Extractor) Topic(in Input) TopicStats {
	st := TopicStats{Topic: strings.TrimSpace(in.Topic), Keywords: TopicKeywords(in.Topic)}
	if !st.HasTopic() {
		return st
	}

	hit := make(map[int]bool, len(in.Tokens))
	for i, t := range in.Tokens {
		if _, _, ok := e.matcher.Match(t.Norm, st.Keywords); ok {
			hit[i] = true
			st.Matches++
		}
	}
	st.Matches = min(st.Matches, maxKeywordMatches)
	st.Covered = e.matcher.Covered(transcript.Norms(in.Tokens), st.Keywords)

	if len(in.Sentences) > 0 {
		var focused int
		pos := 0
		for _, s := range in.Sentences {
			mentioned := false
			for range s.Tokens {
				if hit[pos] {
					mentioned = true
				}
				pos++
			}
			if mentioned {
				focused++
			}
		}
		st.FocusShare = float64(focused) / float64(len(in.Sentences))
	}
	return st
}
