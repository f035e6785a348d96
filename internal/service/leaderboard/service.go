// Package leaderboard provides the ranked view over computed scores.
package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/aimd54/design-contest/internal/models"
	"github.com/aimd54/design-contest/internal/repository"
	"github.com/aimd54/design-contest/pkg/logger"
)

// ErrHidden is returned while the leaderboard is not published.
var ErrHidden = errors.New("leaderboard is not available")

// ConfigRepository interface for config reads.
type ConfigRepository interface {
	Get() (*models.Config, error)
}

// ScoreRepository interface for score reads. Scores come back best first.
type ScoreRepository interface {
	ListScores() ([]models.Score, error)
}

// Entry represents a single entry in a leaderboard.
type Entry struct {
	Rank int `json:"rank"`
	models.Score
}

// Service handles leaderboard generation.
type Service struct {
	configRepo ConfigRepository
	scoreRepo  ScoreRepository
	log        *logger.Logger
}

// NewService creates a new leaderboard service with concrete repository types.
func NewService(
	configRepo *repository.ConfigRepository,
	voteRepo *repository.VoteRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		configRepo: configRepo,
		scoreRepo:  voteRepo,
		log:        log,
	}
}

// NewServiceWithInterfaces creates a new leaderboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	configRepo ConfigRepository,
	scoreRepo ScoreRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		configRepo: configRepo,
		scoreRepo:  scoreRepo,
		log:        log,
	}
}

// GetLeaderboard returns every score ranked by final score once the leaderboard is shown.
func (s *Service) GetLeaderboard(ctx context.Context) ([]Entry, error) {
	cfg, err := s.configRepo.Get()
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrHidden
		}
		return nil, fmt.Errorf("failed to get config: %w", err)
	}
	if !cfg.ShowLeaderboard {
		return nil, ErrHidden
	}
	return s.Ranked(ctx)
}

// Ranked returns every score ranked by final score regardless of visibility.
// Ties keep submission id order and still take distinct ranks.
//
//nolint:revive // ctx reserved for future context-aware operations
func (s *Service) Ranked(ctx context.Context) ([]Entry, error) {
	scores, err := s.scoreRepo.ListScores()
	if err != nil {
		return nil, fmt.Errorf("failed to get scores: %w", err)
	}

	entries := make([]Entry, len(scores))
	for i, score := range scores {
		entries[i] = Entry{Rank: i + 1, Score: score}
	}
	return entries, nil
}
