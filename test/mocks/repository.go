package mocks

import "github.com/aimd54/design-contest/internal/models"

// MockConfigRepository is a simple mock for the config repository
type MockConfigRepository struct {
	GetFunc func() (*models.Config, error)
}

func (m *MockConfigRepository) Get() (*models.Config, error) {
	if m.GetFunc != nil {
		return m.GetFunc()
	}
	return &models.Config{}, nil
}

// MockScoreRepository is a simple mock for score listing
type MockScoreRepository struct {
	ListScoresFunc func() ([]models.Score, error)
}

func (m *MockScoreRepository) ListScores() ([]models.Score, error) {
	if m.ListScoresFunc != nil {
		return m.ListScoresFunc()
	}
	return []models.Score{}, nil
}
