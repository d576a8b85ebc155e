package features

import "github.com/MrWong99/orator/internal/transcript"

// DefaultFillers are the hesitation words and phrases counted by the filler
// detector. Configuration can extend the list but never shrink it.
var DefaultFillers = []string{
	"um", "uh", "ah", "er", "hmm", "huh",
	"like", "you know", "sort of", "kind of", "kinda",
	"basically", "actually", "literally", "i guess",
}

var (
	// introPhrases frame an opening: greeting, agenda or purpose.
	introPhrases = transcript.NewLexicon(
		"today", "going to", "will discuss", "talk about", "purpose",
		"introduce", "begin", "start", "hello", "good morning",
		"good afternoon", "good evening", "welcome",
	)

	// transitionWords signal development inside the body.
	transitionWords = transcript.NewLexicon(
		"first", "second", "third", "next", "then", "also", "furthermore",
		"however", "additionally", "for example", "such as", "because",
		"moreover", "in addition",
	)

	// closingPhrases mark a deliberate ending.
	closingPhrases = transcript.NewLexicon(
		"conclusion", "finally", "in summary", "to sum up", "therefore",
		"thus", "in closing", "lastly", "thank you", "questions",
	)

	purposeKeywords = transcript.NewLexicon(
		"purpose", "goal", "aim", "objective", "today", "discuss",
		"explain", "demonstrate", "show", "present", "introduce",
		"talk about", "share", "tell you about",
	)

	orgMarkers = transcript.NewLexicon(
		"first", "second", "third", "next", "then", "finally",
		"lastly", "to begin", "to start", "in addition", "furthermore",
	)

	flowMarkers = transcript.NewLexicon(
		"therefore", "thus", "consequently", "as a result", "because",
		"however", "although", "despite", "while", "whereas",
	)

	directAddress = transcript.NewLexicon("you", "we", "us", "our", "your")

	engagingWords = transcript.NewLexicon(
		"imagine", "picture", "think about", "consider", "interesting",
		"amazing", "important", "crucial", "vital", "exciting",
	)

	exampleMarkers = transcript.NewLexicon("for example", "such as", "for instance", "like")

	storyWords = transcript.NewLexicon("when", "once", "story", "time", "experience")

	conclusionMarkers = transcript.NewLexicon(
		"conclusion", "summary", "to sum up", "in closing",
		"finally", "therefore", "thus", "in the end",
	)

	actionWords = transcript.NewLexicon(
		"should", "must", "need to", "encourage", "urge", "ask",
		"remember", "take away", "keep in mind", "apply",
	)

	evidenceMarkers = transcript.NewLexicon(
		"research", "study", "data", "statistics", "according to",
		"evidence", "shows", "proves", "demonstrates",
	)
)

// basicWords are long-ish everyday words that never count as advanced.
var basicWords = set(
	"good", "bad", "nice", "thing", "stuff", "big", "small",
	"very", "really", "like", "said", "went", "got", "put",
	"took", "made", "did", "get", "know", "people", "because",
	"something", "anything", "everything", "nothing", "somebody",
	"everybody", "anybody", "sometimes", "actually", "basically",
	"probably", "definitely", "literally", "whatever", "together",
)

// stopwords is the English function-word list used to pick content words
// for vocabulary and topic analysis.
var stopwords = set(
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you",
	"you're", "you've", "you'll", "you'd", "your", "yours", "yourself",
	"yourselves", "he", "him", "his", "himself", "she", "she's", "her",
	"hers", "herself", "it", "it's", "its", "itself", "they", "them",
	"their", "theirs", "themselves", "what", "which", "who", "whom",
	"this", "that", "that'll", "these", "those", "am", "is", "are", "was",
	"were", "be", "been", "being", "have", "has", "had", "having", "do",
	"does", "did", "doing", "a", "an", "the", "and", "but", "if", "or",
	"because", "as", "until", "while", "of", "at", "by", "for", "with",
	"about", "against", "between", "into", "through", "during", "before",
	"after", "above", "below", "to", "from", "up", "down", "in", "out",
	"on", "off", "over", "under", "again", "further", "then", "once",
	"here", "there", "when", "where", "why", "how", "all", "any", "both",
	"each", "few", "more", "most", "other", "some", "such", "no", "nor",
	"not", "only", "own", "same", "so", "than", "too", "very", "s", "t",
	"can", "will", "just", "don", "don't", "should", "should've", "now",
	"d", "ll", "m", "o", "re", "ve", "y", "ain", "aren", "aren't",
	"couldn", "couldn't", "didn", "didn't", "doesn", "doesn't", "hadn",
	"hadn't", "hasn", "hasn't", "haven", "haven't", "isn", "isn't", "ma",
	"mightn", "mightn't", "mustn", "mustn't", "needn", "needn't", "shan",
	"shan't", "shouldn", "shouldn't", "wasn", "wasn't", "weren",
	"weren't", "won", "won't", "wouldn", "wouldn't", "i'm", "we're",
	"they're", "i've", "we've", "i'll", "we'll", "let's", "can't",
	"um", "uh", "ah", "er", "hmm", "huh",
)

// IsStopword reports whether the normalised word is a function word.
func IsStopword(norm string) bool { return stopwords[norm] }

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
