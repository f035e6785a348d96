package repository

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aimd54/design-contest/internal/models"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user, assigning a public id when missing.
func (r *UserRepository) Create(user *models.User) error {
	if user.PID == "" {
		user.PID = uuid.NewString()
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return &user, nil
}

// GetByPID retrieves a user by public id (the JWT subject).
func (r *UserRepository) GetByPID(pid string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("pid = ?", pid).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by pid %s: %w", pid, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// List retrieves all users ordered by id.
func (r *UserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListWithSubmissions retrieves users owning a submission, ordered by id.
func (r *UserRepository) ListWithSubmissions() ([]models.User, error) {
	var users []models.User
	err := r.db.Model(&models.User{}).
		Joins("JOIN submissions ON submissions.user_id = users.id").
		Order("users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users with submissions: %w", err)
	}
	return users, nil
}

// IsAdmin reports whether an admin record references the user.
func (r *UserRepository) IsAdmin(userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Admin{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check admin status for user %d: %w", userID, err)
	}
	return count > 0, nil
}

// CreateAdmin grants admin rights to a user.
func (r *UserRepository) CreateAdmin(userID uint) error {
	if err := r.db.Create(&models.Admin{UserID: userID}).Error; err != nil {
		return fmt.Errorf("failed to create admin for user %d: %w", userID, err)
	}
	return nil
}
