package repository

import (
	"fmt"

	"github.com/aimd54/design-contest/internal/models"
)

// VoteRepository handles vote and score operations.
type VoteRepository struct {
	db *DB
}

// NewVoteRepository creates a new vote repository.
func NewVoteRepository(db *DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Create creates a new vote. A second vote for the same (user, submission)
// fails with gorm.ErrDuplicatedKey.
func (r *VoteRepository) Create(vote *models.Vote) error {
	if err := r.db.Create(vote).Error; err != nil {
		return fmt.Errorf("failed to create vote: %w", err)
	}
	return nil
}

// Update updates a vote.
func (r *VoteRepository) Update(vote *models.Vote) error {
	if err := r.db.Save(vote).Error; err != nil {
		return fmt.Errorf("failed to update vote %d: %w", vote.ID, err)
	}
	return nil
}

// GetByID retrieves a vote by ID.
func (r *VoteRepository) GetByID(id uint) (*models.Vote, error) {
	var vote models.Vote
	if err := r.db.First(&vote, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get vote by id %d: %w", id, err)
	}
	return &vote, nil
}

// Exists reports whether the user already voted on the submission.
func (r *VoteRepository) Exists(userID, submissionID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Vote{}).
		Where("user_id = ? AND submission_id = ?", userID, submissionID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check vote of user %d on submission %d: %w", userID, submissionID, err)
	}
	return count > 0, nil
}

// ListByUser retrieves the votes cast by a user.
func (r *VoteRepository) ListByUser(userID uint) ([]models.Vote, error) {
	var votes []models.Vote
	if err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("failed to list votes for user %d: %w", userID, err)
	}
	return votes, nil
}

// List retrieves every vote ordered by id.
func (r *VoteRepository) List() ([]models.Vote, error) {
	var votes []models.Vote
	if err := r.db.Order("id ASC").Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return votes, nil
}

// DeleteAllScores removes every score row.
func (r *VoteRepository) DeleteAllScores() (int64, error) {
	result := r.db.Where("1 = 1").Delete(&models.Score{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete scores: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CreateScores inserts a batch of score rows.
func (r *VoteRepository) CreateScores(scores []models.Score) error {
	if len(scores) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(scores, 200).Error; err != nil {
		return fmt.Errorf("failed to create scores: %w", err)
	}
	return nil
}

// ListScores retrieves score rows ordered by final score, best first.
func (r *VoteRepository) ListScores() ([]models.Score, error) {
	var scores []models.Score
	if err := r.db.Order("final_score DESC").Order("submission_id ASC").Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	return scores, nil
}
