package rating

import "fmt"

type Band string

const (
	BandOutstanding      Band = "Outstanding"
	BandVerySatisfactory Band = "Very Satisfactory"
	BandSatisfactory     Band = "Satisfactory"
	BandUnsatisfactory   Band = "Unsatisfactory"
	BandPoor             Band = "Poor"
)

type threshold struct {
	min  float64
	band Band
}

// Canonical SPMS banding, evaluated top-down over [1,5].
var bands = []threshold{
	{min: 4.5, band: BandOutstanding},
	{min: 3.5, band: BandVerySatisfactory},
	{min: 2.5, band: BandSatisfactory},
	{min: 1.5, band: BandUnsatisfactory},
	{min: MinScore, band: BandPoor},
}

// Adjectival maps a numeric average to its band.
func Adjectival(avg float64) (Band, error) {
	if avg < MinScore || avg > MaxScore {
		return "", fmt.Errorf("average %.2f outside [1,5]: %w", avg, ErrScoreOutOfRange)
	}
	for _, t := range bands {
		if avg >= t.min {
			return t.band, nil
		}
	}
	return BandPoor, nil
}

// Bands lists every band from highest to lowest.
func Bands() []Band {
	out := make([]Band, 0, len(bands))
	for _, t := range bands {
		out = append(out, t.band)
	}
	return out
}
