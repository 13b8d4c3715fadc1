// Package rating computes IPCR output averages, final averages and the
// adjectival band of a numeric rating.
package rating

import (
	"errors"
	"fmt"
	"math"
)

const (
	MinScore = 1
	MaxScore = 5
)

var ErrScoreOutOfRange = errors.New("rating score must be between 1 and 5")

// Scores holds the Quantity, Efficiency and Timeliness dimensions of one
// output. A nil dimension is unrated.
type Scores struct {
	Quantity   *int `json:"quantity"`
	Efficiency *int `json:"efficiency"`
	Timeliness *int `json:"timeliness"`
}

func NewScores(q, e, t int) Scores {
	return Scores{Quantity: &q, Efficiency: &e, Timeliness: &t}
}

// Complete reports whether all three dimensions are set.
func (s Scores) Complete() bool {
	return s.Quantity != nil && s.Efficiency != nil && s.Timeliness != nil
}

// Validate checks every present dimension against [1,5].
func (s Scores) Validate() error {
	for name, v := range map[string]*int{"quantity": s.Quantity, "efficiency": s.Efficiency, "timeliness": s.Timeliness} {
		if v == nil {
			continue
		}
		if *v < MinScore || *v > MaxScore {
			return fmt.Errorf("%s: %w", name, ErrScoreOutOfRange)
		}
	}
	return nil
}

// Merge overlays the dimensions set in update onto s.
func (s Scores) Merge(update Scores) Scores {
	if update.Quantity != nil {
		s.Quantity = update.Quantity
	}
	if update.Efficiency != nil {
		s.Efficiency = update.Efficiency
	}
	if update.Timeliness != nil {
		s.Timeliness = update.Timeliness
	}
	return s
}

// Equal compares dimension values, treating two unset dimensions as equal.
func (s Scores) Equal(other Scores) bool {
	return sameScore(s.Quantity, other.Quantity) &&
		sameScore(s.Efficiency, other.Efficiency) &&
		sameScore(s.Timeliness, other.Timeliness)
}

func sameScore(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// OutputAverage is defined only when all three dimensions are present. A
// partially rated output has no average rather than a low one.
func OutputAverage(s Scores) (float64, bool) {
	if !s.Complete() {
		return 0, false
	}
	sum := *s.Quantity + *s.Efficiency + *s.Timeliness
	return Round2(float64(sum) / 3), true
}

// FinalAverage is the mean of the defined averages. Undefined entries are
// excluded from numerator and denominator.
func FinalAverage(averages []*float64) (float64, bool) {
	var sum float64
	count := 0
	for _, avg := range averages {
		if avg == nil {
			continue
		}
		sum += *avg
		count++
	}
	if count == 0 {
		return 0, false
	}
	return Round2(sum / float64(count)), true
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
