// Package contest implements the request-time operations of the competition
// and the policy gate that decides which of them are legal right now.
package contest

import (
	"context"
	"errors"
	"fmt"
	"time"

	prommetrics "github.com/aimd54/design-contest/internal/metrics"
	"github.com/aimd54/design-contest/internal/models"
	"github.com/aimd54/design-contest/internal/repository"
	"github.com/aimd54/design-contest/internal/service/orchestrator"
	"github.com/aimd54/design-contest/pkg/logger"
)

// Service handles submissions, votes, assignments and configuration.
type Service struct {
	db  *repository.DB
	now func() time.Time
	log *logger.Logger
}

// NewService creates a new contest service.
func NewService(db *repository.DB, log *logger.Logger) *Service {
	return &Service{
		db:  db,
		now: time.Now,
		log: log.Component("contest"),
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) repos(ctx context.Context) (*repository.ConfigRepository, *repository.UserRepository, *repository.SubmissionRepository, *repository.VoteRepository) {
	db := s.db.WithContext(ctx)
	return repository.NewConfigRepository(db),
		repository.NewUserRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewVoteRepository(db)
}

// notFound converts a missing-row error to ErrNotFound and passes anything else through.
func notFound(err error) error {
	if repository.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

// IsAdmin reports whether user holds an admin record.
func (s *Service) IsAdmin(ctx context.Context, user *models.User) (bool, error) {
	_, users, _, _ := s.repos(ctx)
	return users.IsAdmin(user.ID)
}

// currentConfig returns the config row or nil when none exists.
func (s *Service) currentConfig(ctx context.Context) (*models.Config, error) {
	configs, _, _, _ := s.repos(ctx)
	cfg, err := configs.Get()
	if repository.IsNotFound(err) {
		return nil, nil
	}
	return cfg, err
}

// Submit creates the requester's submission during the submission window.
func (s *Service) Submit(ctx context.Context, user *models.User, params *SubmissionParams) (sub *models.Submission, err error) {
	defer func() { prommetrics.RecordSubmission(outcome(err)) }()

	_, _, submissions, _ := s.repos(ctx)

	if _, err := submissions.GetByUserID(user.ID); err == nil {
		return nil, badRequest(msgSubmissionExists)
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	cfg, err := s.currentConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil || !cfg.SubmissionOpen(s.now()) {
		return nil, badRequest(msgSubmissionsClosed)
	}

	sub = &models.Submission{UserID: user.ID}
	params.apply(sub)
	if err := submissions.Create(sub); err != nil {
		if repository.IsDuplicate(err) {
			return nil, badRequest(msgSubmissionExists)
		}
		return nil, err
	}

	s.log.Info().Uint("user_id", user.ID).Uint("submission_id", sub.ID).Msg("Submission created")
	return sub, nil
}

// GetMine returns the requester's submission.
func (s *Service) GetMine(ctx context.Context, user *models.User) (*models.Submission, error) {
	_, _, submissions, _ := s.repos(ctx)
	sub, err := submissions.GetByUserID(user.ID)
	if err != nil {
		return nil, notFound(err)
	}
	return sub, nil
}

// GetSubmission returns a submission visible to its owner, an admin, or a reviewer assigned to it.
func (s *Service) GetSubmission(ctx context.Context, user *models.User, id uint) (*models.Submission, error) {
	_, users, submissions, _ := s.repos(ctx)

	sub, err := submissions.GetByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	if sub.UserID == user.ID {
		return sub, nil
	}

	isAdmin, err := users.IsAdmin(user.ID)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		return sub, nil
	}

	assigned, err := submissions.IsAssigned(user.ID, sub.ID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, ErrUnauthorized
	}
	return sub, nil
}

// UpdateSubmission replaces a submission's fields. Allowed for the owner or an
// admin at any time.
func (s *Service) UpdateSubmission(ctx context.Context, user *models.User, id uint, params *SubmissionParams) (*models.Submission, error) {
	_, users, submissions, _ := s.repos(ctx)

	sub, err := submissions.GetByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	if sub.UserID != user.ID {
		isAdmin, err := users.IsAdmin(user.ID)
		if err != nil {
			return nil, err
		}
		if !isAdmin {
			return nil, ErrUnauthorized
		}
	}

	params.apply(sub)
	if err := submissions.Update(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// MyAssignments lists the submissions the requester has to review.
func (s *Service) MyAssignments(ctx context.Context, user *models.User) ([]models.VoteAssignment, error) {
	_, _, submissions, _ := s.repos(ctx)
	return submissions.ListAssignmentsByUser(user.ID)
}

// CreateVote records the requester's vote during the voting window. At most
// one vote per (user, submission); the unique index settles concurrent attempts.
func (s *Service) CreateVote(ctx context.Context, user *models.User, params *VoteParams) (vote *models.Vote, err error) {
	defer func() { prommetrics.RecordVote("create", outcome(err)) }()

	if err := params.Validate(); err != nil {
		return nil, err
	}

	_, _, submissions, votes := s.repos(ctx)

	exists, err := votes.Exists(user.ID, params.SubmissionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, badRequest(msgAlreadyVoted)
	}

	if err := s.requireVotingOpen(ctx); err != nil {
		return nil, err
	}

	if _, err := submissions.GetByID(params.SubmissionID); err != nil {
		return nil, notFound(err)
	}

	vote = &models.Vote{UserID: user.ID, SubmissionID: params.SubmissionID}
	params.applyScores(vote)
	if err := votes.Create(vote); err != nil {
		if repository.IsDuplicate(err) {
			return nil, badRequest(msgAlreadyVoted)
		}
		return nil, err
	}
	return vote, nil
}

// UpdateVote changes the scores of the requester's own vote during the voting window.
// The target submission cannot change.
func (s *Service) UpdateVote(ctx context.Context, user *models.User, id uint, params *VoteScores) (vote *models.Vote, err error) {
	defer func() { prommetrics.RecordVote("update", outcome(err)) }()

	_, _, _, votes := s.repos(ctx)

	vote, err = votes.GetByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	if vote.UserID != user.ID {
		return nil, ErrUnauthorized
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireVotingOpen(ctx); err != nil {
		return nil, err
	}

	params.applyScores(vote)
	if err := votes.Update(vote); err != nil {
		return nil, err
	}
	return vote, nil
}

// MyVotes lists the requester's votes.
func (s *Service) MyVotes(ctx context.Context, user *models.User) ([]models.Vote, error) {
	_, _, _, votes := s.repos(ctx)
	return votes.ListByUser(user.ID)
}

func (s *Service) requireVotingOpen(ctx context.Context) error {
	cfg, err := s.currentConfig(ctx)
	if err != nil {
		return err
	}
	if cfg == nil || !cfg.VotingOpen(s.now()) {
		return badRequest(msgVotingClosed)
	}
	return nil
}

// GetConfig returns the competition config.
func (s *Service) GetConfig(ctx context.Context) (*models.Config, error) {
	cfg, err := s.currentConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, ErrNotFound
	}
	return cfg, nil
}

// Phase returns the competition phase at the current time.
func (s *Service) Phase(ctx context.Context) (orchestrator.Phase, error) {
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return "", err
	}
	return orchestrator.PhaseAt(cfg, s.now()), nil
}

// PutConfig sets the four window bounds on behalf of an admin, creating the row on first write.
func (s *Service) PutConfig(ctx context.Context, user *models.User, timings *Timings) (*models.Config, error) {
	isAdmin, err := s.IsAdmin(ctx, user)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, ErrUnauthorized
	}
	return s.UpdateTimings(ctx, timings)
}

// UpdateTimings sets the four window bounds, creating the config row on first write.
func (s *Service) UpdateTimings(ctx context.Context, timings *Timings) (*models.Config, error) {
	configs, _, _, _ := s.repos(ctx)
	cfg, err := configs.Upsert(timings.apply)
	if err != nil {
		return nil, fmt.Errorf("failed to update timings: %w", err)
	}

	s.log.Info().
		Interface("submission_start", cfg.SubmissionStart).
		Interface("submission_end", cfg.SubmissionEnd).
		Interface("voting_start", cfg.VotingStart).
		Interface("voting_end", cfg.VotingEnd).
		Msg("Timings updated")
	return cfg, nil
}

// SetShowLeaderboard toggles leaderboard visibility. The config row must exist.
func (s *Service) SetShowLeaderboard(ctx context.Context, show bool) (*models.Config, error) {
	var cfg *models.Config
	err := s.db.WithContext(ctx).Transaction(func(tx *repository.DB) error {
		configs := repository.NewConfigRepository(tx)

		var err error
		cfg, err = configs.GetForUpdate()
		if err != nil {
			return notFound(err)
		}
		cfg.ShowLeaderboard = show
		return configs.Save(cfg)
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// outcome labels a gate result for metrics.
func outcome(err error) string {
	var bad *BadRequestError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &bad):
		return "rejected"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnauthorized):
		return "denied"
	default:
		return "error"
	}
}
