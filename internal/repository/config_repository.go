package repository

import (
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/aimd54/design-contest/internal/models"
)

// ConfigRepository handles the singleton competition configuration row.
type ConfigRepository struct {
	db *DB
}

// NewConfigRepository creates a new config repository.
func NewConfigRepository(db *DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// Get retrieves the configuration row.
func (r *ConfigRepository) Get() (*models.Config, error) {
	var cfg models.Config
	if err := r.db.Order("id ASC").First(&cfg).Error; err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}
	return &cfg, nil
}

// GetForUpdate retrieves the configuration row with a row lock. Only
// meaningful inside a transaction. sqlite has no row locks and serializes
// writers instead, so the clause is omitted there.
func (r *ConfigRepository) GetForUpdate() (*models.Config, error) {
	var cfg models.Config
	query := r.db.Order("id ASC")
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&cfg).Error; err != nil {
		return nil, fmt.Errorf("failed to lock config: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration row. The row always carries models.ConfigID.
func (r *ConfigRepository) Save(cfg *models.Config) error {
	if cfg.ID == 0 {
		cfg.ID = models.ConfigID
	}
	if err := r.db.Save(cfg).Error; err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// ensure inserts the empty configuration row unless it already exists.
func (r *ConfigRepository) ensure() error {
	row := &models.Config{ID: models.ConfigID}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	return nil
}

// Upsert applies update to the configuration row, creating the row on first write.
// Concurrent first writers converge on the single row and apply in turn.
func (r *ConfigRepository) Upsert(update func(cfg *models.Config)) (*models.Config, error) {
	var result *models.Config
	err := r.db.Transaction(func(tx *DB) error {
		configs := NewConfigRepository(tx)

		cfg, err := configs.GetForUpdate()
		if IsNotFound(err) {
			if err := configs.ensure(); err != nil {
				return err
			}
			cfg, err = configs.GetForUpdate()
		}
		if err != nil {
			return err
		}

		update(cfg)
		if err := configs.Save(cfg); err != nil {
			return err
		}
		result = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
