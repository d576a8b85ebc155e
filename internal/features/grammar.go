package features

import (
	"strings"

	"github.com/MrWong99/orator/internal/transcript"
)

// IssueKind names a grammar heuristic.
type IssueKind string

const (
	// IssueDoubledWord is an accidental repetition ("the the").
	IssueDoubledWord IssueKind = "doubled_word"

	// IssueArticle is an a/an mismatch ("a apple", "an car").
	IssueArticle IssueKind = "article"

	// IssueRunOn is a sentence too long to follow when spoken.
	IssueRunOn IssueKind = "run_on"
)

// runOnWords is the sentence length beyond which a sentence is a run-on.
const runOnWords = 40

// GrammarIssue is one heuristic finding.
type GrammarIssue struct {
	Kind     IssueKind
	Sentence int
	Text     string
}

// GrammarStats counts grammar issues relative to the number of sentences.
type GrammarStats struct {
	Sentences int
	Issues    []GrammarIssue
}

// Ratio returns issues per sentence, 0 when there are no sentences.
func (g GrammarStats) Ratio() float64 {
	if g.Sentences == 0 {
		return 0
	}
	return float64(len(g.Issues)) / float64(g.Sentences)
}

// doubledAllowed are words that are legitimately repeated in speech.
var doubledAllowed = set("that", "had", "very", "no", "bye", "so", "really", "ha")

// Grammar runs shallow, transcript-safe heuristics: doubled words, article
// agreement and run-on sentences. Capitalisation and punctuation come from
// the STT backend, so they are not judged.
func (e *Extractor) Grammar(in Input) GrammarStats {
	st := GrammarStats{Sentences: len(in.Sentences)}
	for si, s := range in.Sentences {
		toks := s.Tokens
		for i := 1; i < len(toks); i++ {
			prev, cur := toks[i-1], toks[i]
			if prev.Norm == cur.Norm && !doubledAllowed[cur.Norm] && !e.fillers.Has(cur.Norm) {
				st.Issues = append(st.Issues, GrammarIssue{Kind: IssueDoubledWord, Sentence: si, Text: pair(prev, cur)})
			}
			if articleMismatch(prev.Norm, cur.Norm) {
				st.Issues = append(st.Issues, GrammarIssue{Kind: IssueArticle, Sentence: si, Text: pair(prev, cur)})
			}
		}
		if len(toks) > runOnWords {
			st.Issues = append(st.Issues, GrammarIssue{Kind: IssueRunOn, Sentence: si, Text: transcript.Text(toks[:5]) + " ..."})
		}
	}
	return st
}

func pair(a, b transcript.Token) string { return a.Text + " " + b.Text }

// articleMismatch checks "a"/"an" against the following word's first letter.
// Spelling rather than sound decides, with the common silent-h and
// "you"-sound exceptions.
func articleMismatch(article, next string) bool {
	if (article != "a" && article != "an") || next == "" || !alphabetic(next) {
		return false
	}
	wantAn := startsWithVowelSound(next)
	return (article == "an") != wantAn
}

var (
	silentH     = []string{"hour", "honest", "honor", "honour", "heir"}
	consonantYu = []string{"uni", "use", "usu", "uti", "ure", "eu", "one", "once"}
)

func startsWithVowelSound(w string) bool {
	for _, p := range silentH {
		if strings.HasPrefix(w, p) {
			return true
		}
	}
	for _, p := range consonantYu {
		if strings.HasPrefix(w, p) {
			return false
		}
	}
	return strings.ContainsRune("aeiou", rune(w[0]))
}
