package scoring

import "math"

// Band is one row of a threshold table. A measurement x falls in the band
// with the greatest Min <= x, so every band is closed below and open above
// except the last, which is closed.
type Band struct {
	Min float64

	// Hi is the score at Min; Lo the score at the next band's Min. Bands with
	// Hi == Lo are plain steps.
	Hi, Lo float64

	// Label is the feedback text for a measurement in this band.
	Label string
}

// Table is an ascending list of bands. End is the upper edge of the last band,
// used only for interpolation.
type Table struct {
	Bands []Band
	End   float64
}

// Lookup returns the index of the band containing x. Values below the first
// band's Min use the first band.
func (t Table) Lookup(x float64) int {
	idx := 0
	for i, b := range t.Bands {
		if x >= b.Min {
			idx = i
		}
	}
	return idx
}

// Band returns the band containing x.
func (t Table) Band(x float64) Band { return t.Bands[t.Lookup(x)] }

// Score interpolates linearly from Hi to Lo across the band containing x.
// Past End the last band's Lo is returned.
func (t Table) Score(x float64) float64 {
	i := t.Lookup(x)
	b := t.Bands[i]
	if b.Hi == b.Lo {
		return b.Hi
	}
	upper := t.End
	if i+1 < len(t.Bands) {
		upper = t.Bands[i+1].Min
	}
	if upper <= b.Min || x >= upper {
		return b.Lo
	}
	frac := (x - b.Min) / (upper - b.Min)
	return b.Hi - (b.Hi-b.Lo)*math.Max(0, frac)
}

// Descending is a step table keyed on "x >= Min" from the top down, the
// natural form for "more is better" thresholds.
type Descending []Band

// Band returns the first band whose Min x reaches, or the last band.
func (d Descending) Band(x float64) Band {
	for _, b := range d {
		if x >= b.Min {
			return b
		}
	}
	return d[len(d)-1]
}

// Ascending is a step table keyed on "x < Min" from the bottom up, the
// natural form for "less is better" ratios.
type Ascending []Band

// Band returns the first band whose Min exceeds x, or the last band.
func (a Ascending) Band(x float64) Band {
	for _, b := range a {
		if x < b.Min {
			return b
		}
	}
	return a[len(a)-1]
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// round1 rounds to one decimal place.
func round1(x float64) float64 { return math.Round(x*10) / 10 }
