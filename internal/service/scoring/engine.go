// Package scoring turns raw votes into smoothed, weighted submission scores.
package scoring

import (
	"context"
	"fmt"
	"time"

	prommetrics "github.com/aimd54/design-contest/internal/metrics"
	"github.com/aimd54/design-contest/internal/models"
	"github.com/aimd54/design-contest/internal/repository"
	"github.com/aimd54/design-contest/pkg/logger"
)

// Result summarizes one scoring run.
type Result struct {
	Votes       int
	Submissions int
	Scored      int
	Skipped     []uint
	Duration    time.Duration
}

// criterionVotes collects one vote column per criterion.
type criterionVotes struct {
	problemFit, clarity, style, originality, overall []int
}

func (c *criterionVotes) add(v *models.Vote) {
	c.problemFit = append(c.problemFit, v.ProblemFitScore)
	c.clarity = append(c.clarity, v.ClarityScore)
	c.style = append(c.style, v.StyleInterpretationScore)
	c.originality = append(c.originality, v.OriginalityScore)
	c.overall = append(c.overall, v.OverallQualityScore)
}

func (c *criterionVotes) means() Criteria {
	problemFit, _ := Mean(c.problemFit)
	clarity, _ := Mean(c.clarity)
	style, _ := Mean(c.style)
	originality, _ := Mean(c.originality)
	overall, _ := Mean(c.overall)
	return Criteria{problemFit, clarity, style, originality, overall}
}

func (c *criterionVotes) medians() Criteria {
	problemFit, _ := Median(c.problemFit)
	clarity, _ := Median(c.clarity)
	style, _ := Median(c.style)
	originality, _ := Median(c.originality)
	overall, _ := Median(c.overall)
	return Criteria{problemFit, clarity, style, originality, overall}
}

// Compute derives one Score per submission with at least one vote and returns
// the ids of submissions skipped for having none. Output follows submission order.
func Compute(votes []models.Vote, submissions []models.Submission) ([]models.Score, []uint) {
	var global criterionVotes
	bySubmission := make(map[uint]*criterionVotes)
	for i := range votes {
		v := &votes[i]
		global.add(v)
		if bySubmission[v.SubmissionID] == nil {
			bySubmission[v.SubmissionID] = &criterionVotes{}
		}
		bySubmission[v.SubmissionID].add(v)
	}
	globalMeans := global.means()

	scores := make([]models.Score, 0, len(submissions))
	var skipped []uint
	for _, sub := range submissions {
		local, ok := bySubmission[sub.ID]
		if !ok {
			skipped = append(skipped, sub.ID)
			continue
		}

		n := len(local.problemFit)
		medians := local.medians()
		smoothed := Criteria{
			ProblemFit:  Smooth(medians.ProblemFit, globalMeans.ProblemFit, n),
			Clarity:     Smooth(medians.Clarity, globalMeans.Clarity, n),
			Style:       Smooth(medians.Style, globalMeans.Style, n),
			Originality: Smooth(medians.Originality, globalMeans.Originality, n),
			Overall:     Smooth(medians.Overall, globalMeans.Overall, n),
		}

		scores = append(scores, models.Score{
			SubmissionID:             sub.ID,
			ProblemFitScore:          ScaleCriterion(smoothed.ProblemFit),
			VisualClarityScore:       ScaleCriterion(smoothed.Clarity),
			StyleInterpretationScore: ScaleCriterion(smoothed.Style),
			OriginalityScore:         ScaleCriterion(smoothed.Originality),
			OverallQualityScore:      ScaleCriterion(smoothed.Overall),
			FinalScore:               ScaleFinal(Weighted(smoothed)),
		})
	}
	return scores, skipped
}

// Engine rebuilds the scores table.
type Engine struct {
	log *logger.Logger
}

// NewEngine creates a scoring engine.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{log: log.Component("scoring")}
}

// Run deletes every score row and writes freshly computed ones in one transaction.
func (e *Engine) Run(ctx context.Context, db *repository.DB) (result Result, err error) {
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
		status := "success"
		if err != nil {
			status = "error"
		}
		prommetrics.RecordScoringRun(status, result.Scored)
		prommetrics.ObserveEngineDuration(prommetrics.EngineScoring, result.Duration.Seconds())
	}()

	err = db.WithContext(ctx).Transaction(func(tx *repository.DB) error {
		voteRepo := repository.NewVoteRepository(tx)
		submissionRepo := repository.NewSubmissionRepository(tx)

		if _, err := voteRepo.DeleteAllScores(); err != nil {
			return err
		}

		votes, err := voteRepo.List()
		if err != nil {
			return err
		}
		submissions, err := submissionRepo.List()
		if err != nil {
			return err
		}
		result.Votes = len(votes)
		result.Submissions = len(submissions)

		scores, skipped := Compute(votes, submissions)
		for _, id := range skipped {
			e.log.Info().Uint("submission_id", id).Msg("Skipping submission with no votes")
		}
		result.Skipped = skipped

		if err := voteRepo.CreateScores(scores); err != nil {
			return err
		}
		result.Scored = len(scores)
		return nil
	})
	if err != nil {
		e.log.Error().Err(err).Msg("Scoring run failed")
		return result, fmt.Errorf("scoring run failed: %w", err)
	}

	e.log.Info().
		Int("votes", result.Votes).
		Int("submissions", result.Submissions).
		Int("scored", result.Scored).
		Int("skipped", len(result.Skipped)).
		Dur("duration", time.Since(start)).
		Msg("Scoring run completed")

	return result, nil
}
