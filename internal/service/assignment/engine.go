// Package assignment distributes submissions to peer reviewers.
package assignment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	prommetrics "github.com/aimd54/design-contest/internal/metrics"
	"github.com/aimd54/design-contest/internal/models"
	"github.com/aimd54/design-contest/internal/repository"
	"github.com/aimd54/design-contest/pkg/logger"
)

// Result summarizes one assignment run.
type Result struct {
	Submissions int
	Reviewers   int
	PerReviewer int
	Assignments int
	Duration    time.Duration
}

// Engine rebuilds the vote_assignments table.
type Engine struct {
	reviewsPerUser int
	newRand        func() *rand.Rand
	log            *logger.Logger
}

// NewEngine creates an assignment engine handing out at most reviewsPerUser targets per reviewer.
func NewEngine(reviewsPerUser int, log *logger.Logger) *Engine {
	return &Engine{
		reviewsPerUser: reviewsPerUser,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		log: log.Component("assignment"),
	}
}

// WithSeed makes every run use the same permutation. Intended for tests and reproductions.
func (e *Engine) WithSeed(seed1, seed2 uint64) *Engine {
	e.newRand = func() *rand.Rand {
		return rand.New(rand.NewPCG(seed1, seed2))
	}
	return e
}

// Run deletes every existing assignment and writes a fresh set, all in one
// transaction. When db is already a transaction the run joins it through a savepoint.
func (e *Engine) Run(ctx context.Context, db *repository.DB) (result Result, err error) {
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
		status := "success"
		if err != nil {
			status = "error"
		}
		prommetrics.RecordAssignmentRun(status, result.Assignments)
		prommetrics.ObserveEngineDuration(prommetrics.EngineAssignment, result.Duration.Seconds())
	}()

	err = db.WithContext(ctx).Transaction(func(tx *repository.DB) error {
		submissionRepo := repository.NewSubmissionRepository(tx)
		userRepo := repository.NewUserRepository(tx)

		deleted, err := submissionRepo.DeleteAllAssignments()
		if err != nil {
			return err
		}

		submissions, err := submissionRepo.List()
		if err != nil {
			return err
		}
		result.Submissions = len(submissions)
		if len(submissions) == 0 {
			e.log.Info().Int64("deleted", deleted).Msg("No submissions, nothing to assign")
			return nil
		}

		reviewers, err := userRepo.ListWithSubmissions()
		if err != nil {
			return err
		}
		result.Reviewers = len(reviewers)

		targets := make([]Target, len(submissions))
		for i, s := range submissions {
			targets[i] = Target{SubmissionID: s.ID, OwnerID: s.UserID}
		}
		reviewerIDs := make([]uint, len(reviewers))
		for i, u := range reviewers {
			reviewerIDs[i] = u.ID
		}

		k := ReviewsPerUser(e.reviewsPerUser, len(submissions))
		result.PerReviewer = k

		pairs, err := Rotate(reviewerIDs, Shuffle(targets, e.newRand()), k)
		if err != nil {
			return fmt.Errorf("failed to rotate submissions: %w", err)
		}

		rows := make([]models.VoteAssignment, len(pairs))
		for i, p := range pairs {
			rows[i] = models.VoteAssignment{UserID: p.ReviewerID, SubmissionID: p.SubmissionID}
		}
		if err := submissionRepo.CreateAssignments(rows); err != nil {
			return err
		}
		result.Assignments = len(rows)

		e.log.Debug().Int64("deleted", deleted).Msg("Replaced previous assignments")
		return nil
	})
	if err != nil {
		e.log.Error().Err(err).Msg("Assignment run failed")
		return result, fmt.Errorf("assignment run failed: %w", err)
	}

	e.log.Info().
		Int("submissions", result.Submissions).
		Int("reviewers", result.Reviewers).
		Int("per_reviewer", result.PerReviewer).
		Int("assignments", result.Assignments).
		Dur("duration", time.Since(start)).
		Msg("Assignment run completed")

	return result, nil
}
