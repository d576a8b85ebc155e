package features

import (
	"slices"
	"testing"
	"time"

	"github.com/MrWong99/orator/pkg/audio"
	"github.com/MrWong99/orator/pkg/provider/stt/mock"
	"github.com/MrWong99/orator/pkg/types"
)

func wellFormedSpeech() Input {
	var ws []types.Word
	ws = append(ws, mock.Words(0,
		"Good morning everyone.",
		"Today I want to talk about why cities should plant more trees in every single neighborhood.")...)
	ws = append(ws, mock.Words(sec(20),
		"First, trees cool the streets.",
		"Second, they clean the air.",
		"However, they cost money.",
		"Because shade saves energy, also the bills drop.",
		"Next, people walk more.")...)
	ws = append(ws, mock.Words(sec(85),
		"In conclusion, plant trees now and your city will thank you for many years to come.")...)
	in := NewInput(audio.PCM{}, ws, "Urban trees", types.Duration1To2, types.GenderAuto)
	in.Duration = 100 * time.Second
	return in
}

func TestStructure_WellFormed(t *testing.T) {
	t.Parallel()

	st := New(Config{}).Structure(wellFormedSpeech())
	if st.TooShort {
		t.Fatal("TooShort on an eight-sentence speech")
	}
	if st.Intro.To != 20*time.Second || st.Conclusion.From != 80*time.Second {
		t.Errorf("spans = intro %v-%v, conclusion %v-%v", st.Intro.From, st.Intro.To, st.Conclusion.From, st.Conclusion.To)
	}
	for name, g := range map[string]Grade{"intro": st.Intro.Grade, "body": st.Body.Grade, "conclusion": st.Conclusion.Grade} {
		if g != GradeExcellent {
			t.Errorf("%s grade = %s, want Excellent", name, g)
		}
	}
	if st.Intro.Sentences != 2 || st.Body.Sentences != 5 || st.Conclusion.Sentences != 1 {
		t.Errorf("sentence counts = %d/%d/%d, want 2/5/1", st.Intro.Sentences, st.Body.Sentences, st.Conclusion.Sentences)
	}
	if !slices.Contains(st.Intro.Markers, "good morning") || !slices.Contains(st.Conclusion.Markers, "thank you") {
		t.Errorf("markers intro=%v conclusion=%v", st.Intro.Markers, st.Conclusion.Markers)
	}
	if len(st.Body.Markers) < 5 {
		t.Errorf("body markers = %v", st.Body.Markers)
	}
	if st.ShareDeviation <= 0 || st.ShareDeviation >= 1 {
		t.Errorf("ShareDeviation = %v", st.ShareDeviation)
	}
	sum := st.Intro.Share + st.Body.Share + st.Conclusion.Share
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("shares sum to %v", sum)
	}
}

func TestStructure_TooShort(t *testing.T) {
	t.Parallel()

	in := NewInput(audio.PCM{}, mock.Words(0, "Hello there.", "That is all."), "", "", "")
	st := New(Config{}).Structure(in)
	if !st.TooShort {
		t.Fatal("two sentences should be too short")
	}
	if st.Intro.Grade != GradeWeak || st.Body.Grade != GradeWeak || st.Conclusion.Grade != GradeWeak {
		t.Errorf("grades = %s/%s/%s", st.Intro.Grade, st.Body.Grade, st.Conclusion.Grade)
	}
}

func TestStructure_EmptyTranscript(t *testing.T) {
	t.Parallel()

	in := NewInput(audio.PCM{Samples: make([]float32, 16000*30), SampleRate: 16000}, nil, "", "", "")
	st := New(Config{}).Structure(in)
	if !st.TooShort || st.ShareDeviation != 1 || st.Actual != 30*time.Second {
		t.Errorf("empty structure = %+v", st)
	}
}

func TestStructure_CustomSplit(t *testing.T) {
	t.Parallel()

	e := New(Config{Split: Split{Intro: 0.1, Conclusion: 0.3}})
	st := e.Structure(wellFormedSpeech())
	if st.Intro.To != 10*time.Second || st.Conclusion.From != 70*time.Second {
		t.Errorf("custom split spans: intro to %v, conclusion from %v", st.Intro.To, st.Conclusion.From)
	}

	if got := New(Config{Split: Split{Intro: 0.6, Conclusion: 0.6}}).Split(); got != DefaultSplit {
		t.Errorf("invalid split not replaced: %+v", got)
	}
}

func TestGrades(t *testing.T) {
	t.Parallel()

	framing := []struct {
		phrase, long bool
		want         Grade
	}{
		{true, true, GradeExcellent},
		{true, false, GradeGood},
		{false, true, GradeFair},
		{false, false, GradeWeak},
	}
	for _, tt := range framing {
		if got := gradeFraming(tt.phrase, tt.long); got != tt.want {
			t.Errorf("gradeFraming(%v,%v) = %s, want %s", tt.phrase, tt.long, got, tt.want)
		}
	}

	for n, want := range map[int]Grade{0: GradeWeak, 1: GradeFair, 2: GradeFair, 3: GradeGood, 4: GradeGood, 5: GradeExcellent, 9: GradeExcellent} {
		if got := gradeBody(n); got != want {
			t.Errorf("gradeBody(%d) = %s, want %s", n, got, want)
		}
	}
}
