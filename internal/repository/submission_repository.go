package repository

import (
	"fmt"

	"github.com/aimd54/design-contest/internal/models"
)

// SubmissionRepository handles submission and vote assignment operations.
type SubmissionRepository struct {
	db *DB
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create creates a new submission.
func (r *SubmissionRepository) Create(submission *models.Submission) error {
	if err := r.db.Create(submission).Error; err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// Update updates a submission.
func (r *SubmissionRepository) Update(submission *models.Submission) error {
	if err := r.db.Save(submission).Error; err != nil {
		return fmt.Errorf("failed to update submission %d: %w", submission.ID, err)
	}
	return nil
}

// GetByID retrieves a submission by ID.
func (r *SubmissionRepository) GetByID(id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.First(&submission, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get submission by id %d: %w", id, err)
	}
	return &submission, nil
}

// GetByUserID retrieves the submission owned by a user.
func (r *SubmissionRepository) GetByUserID(userID uint) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.Where("user_id = ?", userID).First(&submission).Error; err != nil {
		return nil, fmt.Errorf("failed to get submission for user %d: %w", userID, err)
	}
	return &submission, nil
}

// List retrieves all submissions ordered by id.
func (r *SubmissionRepository) List() ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.Order("id ASC").Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

// DeleteAllAssignments removes every vote assignment.
func (r *SubmissionRepository) DeleteAllAssignments() (int64, error) {
	result := r.db.Where("1 = 1").Delete(&models.VoteAssignment{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete vote assignments: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CreateAssignments inserts a batch of vote assignments.
func (r *SubmissionRepository) CreateAssignments(assignments []models.VoteAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(assignments, 200).Error; err != nil {
		return fmt.Errorf("failed to create vote assignments: %w", err)
	}
	return nil
}

// ListAssignmentsByUser retrieves the assignments of a reviewer.
func (r *SubmissionRepository) ListAssignmentsByUser(userID uint) ([]models.VoteAssignment, error) {
	var assignments []models.VoteAssignment
	if err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments for user %d: %w", userID, err)
	}
	return assignments, nil
}

// ListAssignments retrieves all vote assignments.
func (r *SubmissionRepository) ListAssignments() ([]models.VoteAssignment, error) {
	var assignments []models.VoteAssignment
	if err := r.db.Order("id ASC").Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

// IsAssigned reports whether a reviewer holds an assignment for a submission.
func (r *SubmissionRepository) IsAssigned(userID, submissionID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.VoteAssignment{}).
		Where("user_id = ? AND submission_id = ?", userID, submissionID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check assignment of submission %d to user %d: %w", submissionID, userID, err)
	}
	return count > 0, nil
}
