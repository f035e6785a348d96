package assignment

import (
	"fmt"
	"math/rand/v2"
)

// Target is a submission together with the user who owns it.
type Target struct {
	SubmissionID uint
	OwnerID      uint
}

// Pair assigns a reviewer to a submission.
type Pair struct {
	ReviewerID   uint
	SubmissionID uint
}

// ReviewsPerUser returns k = min(limit, n-1), or 0 when fewer than two submissions exist.
func ReviewsPerUser(limit, n int) int {
	if n <= 1 || limit <= 0 {
		return 0
	}
	return min(limit, n-1)
}

// Shuffle returns a uniformly permuted copy of targets.
func Shuffle(targets []Target, rng *rand.Rand) []Target {
	shuffled := make([]Target, len(targets))
	copy(shuffled, targets)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// Rotate gives each reviewer k targets by scanning (i+offset) mod n from the
// reviewer's own index i, skipping targets the reviewer owns. The result is a
// pure function of the input order.
func Rotate(reviewers []uint, targets []Target, k int) ([]Pair, error) {
	n := len(targets)
	if n == 0 || k <= 0 {
		return nil, nil
	}
	if k > n {
		return nil, fmt.Errorf("cannot assign %d reviews from %d submissions", k, n)
	}

	pairs := make([]Pair, 0, len(reviewers)*k)
	for i, reviewer := range reviewers {
		collected := 0
		for offset := 0; offset < n && collected < k; offset++ {
			target := targets[(i+offset)%n]
			if target.OwnerID == reviewer {
				continue
			}
			pairs = append(pairs, Pair{ReviewerID: reviewer, SubmissionID: target.SubmissionID})
			collected++
		}
		if collected < k {
			return nil, fmt.Errorf("reviewer %d: found %d of %d eligible submissions", reviewer, collected, k)
		}
	}
	return pairs, nil
}
