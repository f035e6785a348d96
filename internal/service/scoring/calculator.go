package scoring

import (
	"math"
	"sort"
)

// SmoothingPseudoCount is the number of phantom votes at the global mean blended into each submission.
const SmoothingPseudoCount = 2.0

// Criterion weights of the composite score. They sum to exactly 1.
const (
	WeightProblemFit  = 0.25
	WeightClarity     = 0.20
	WeightStyle       = 0.20
	WeightOriginality = 0.15
	WeightOverall     = 0.20
)

// Output scales. Criteria map 1-5 to 200-1000, the composite maps 1-5 to 2000-10000.
const (
	criterionScale = 200.0
	finalScale     = 2000.0
)

// scaleEpsilon absorbs float64 rounding so an exact product such as 4.6*200
// floors to 920, not 919. It sits far below the smallest real step (1/2000).
const scaleEpsilon = 1e-9

// Criteria holds one value per voting criterion.
type Criteria struct {
	ProblemFit  float64
	Clarity     float64
	Style       float64
	Originality float64
	Overall     float64
}

// Median returns the median of values, averaging the two middle values for an
// even count. ok is false for an empty slice. values is not modified.
func Median(values []int) (median float64, ok bool) {
	n := len(values)
	if n == 0 {
		return 0, false
	}

	sorted := make([]int, n)
	copy(sorted, values)
	sort.Ints(sorted)

	if n%2 == 1 {
		return float64(sorted[n/2]), true
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2.0, true
}

// Mean returns the arithmetic mean of values. ok is false for an empty slice.
func Mean(values []int) (mean float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values)), true
}

// Smooth blends a submission's local median with the global mean:
// (v/(v+M))*local + (M/(v+M))*global, where v is the submission's vote count.
func Smooth(local, global float64, votes int) float64 {
	v := float64(votes)
	return (v/(v+SmoothingPseudoCount))*local + (SmoothingPseudoCount/(v+SmoothingPseudoCount))*global
}

// Weighted returns the weighted composite of c, still on the 1-5 scale.
func Weighted(c Criteria) float64 {
	return c.ProblemFit*WeightProblemFit +
		c.Clarity*WeightClarity +
		c.Style*WeightStyle +
		c.Originality*WeightOriginality +
		c.Overall*WeightOverall
}

// ScaleCriterion converts a 1-5 criterion score to the stored 0-1000 scale: floor(score*200).
func ScaleCriterion(score float64) int {
	return scale(score, criterionScale)
}

// ScaleFinal converts a 1-5 composite to the stored 0-10000 scale: floor(score*2000).
func ScaleFinal(score float64) int {
	return scale(score, finalScale)
}

func scale(score, factor float64) int {
	return int(math.Floor(score*factor + scaleEpsilon))
}
