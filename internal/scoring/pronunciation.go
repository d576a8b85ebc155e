package scoring

import "github.com/MrWong99/orator/internal/features"

// Pronunciation scales: a 2 kHz mean centroid or a 0.1 zero-crossing rate
// earns the full 20 points.
const (
	clarityFullHz      = 2000.0
	articulationFullZC = 0.1
	pronunciationMax   = 20.0
)

// PronunciationScore grades clarity and articulation. It does not count
// towards the overall score.
type PronunciationScore struct {
	Clarity      float64
	Articulation float64

	// Total is the mean of Clarity and Articulation, in [0, 20].
	Total    float64
	Rating   string
	Feedback []string
}

var pronunciationRatings = []struct {
	Min   float64
	Label string
}{
	{16, "Excellent"},
	{12, "Good"},
	{8, "Average"},
	{0, "Needs Improvement"},
}

// ScorePronunciation maps the spectral measurements onto 0-20 scales.
func ScorePronunciation(p features.PronunciationStats) PronunciationScore {
	clarity := clamp(p.SpectralCentroid/clarityFullHz*pronunciationMax, 0, pronunciationMax)
	artic := clamp(p.ZeroCrossingRate/articulationFullZC*pronunciationMax, 0, pronunciationMax)
	total := (clarity + artic) / 2

	var fb []string
	switch {
	case clarity < 10:
		fb = append(fb, "Focus on clearer enunciation of words")
	case clarity > 15:
		fb = append(fb, "Excellent speech clarity!")
	}
	switch {
	case artic < 10:
		fb = append(fb, "Work on articulating consonants more distinctly")
	case artic > 15:
		fb = append(fb, "Great articulation!")
	}
	if len(fb) == 0 {
		fb = append(fb, "Good pronunciation overall")
	}

	rating := pronunciationRatings[len(pronunciationRatings)-1].Label
	for _, r := range pronunciationRatings {
		if total >= r.Min {
			rating = r.Label
			break
		}
	}
	return PronunciationScore{
		Clarity:      round1(clarity),
		Articulation: round1(artic),
		Total:        round1(total),
		Rating:       rating,
		Feedback:     fb,
	}
}
