// Package testdb opens throwaway sqlite databases for package tests.
package testdb

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aimd54/design-contest/internal/models"
	"github.com/aimd54/design-contest/internal/repository"
)

var seq atomic.Int64

// New returns a migrated, isolated in-memory database closed at test end.
func New(t *testing.T) *repository.DB {
	t.Helper()

	// Named shared-cache memory db so every pooled connection sees the same data.
	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", seq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := &repository.DB{DB: gdb}
	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateUser inserts a user with a derived email.
func CreateUser(t *testing.T, db *repository.DB, name string) *models.User {
	t.Helper()

	user := &models.User{Name: name, Email: name + "@example.com"}
	if err := repository.NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("Failed to create user %s: %v", name, err)
	}
	return user
}

// CreateSubmission inserts a filled-in submission owned by user.
func CreateSubmission(t *testing.T, db *repository.DB, user *models.User) *models.Submission {
	t.Helper()

	sub := &models.Submission{
		UserID:                      user.ID,
		FigmaLink:                   "https://figma.com/file/" + user.PID,
		DesignImage:                 "https://cdn.example.com/" + user.PID + ".png",
		TargetUserAndGoal:           "busy commuters",
		LayoutExplanation:           "single column",
		StyleInterpretation:         "brutalist",
		KeyTradeOff:                 "density over whitespace",
		OriginalityConfirmed:        true,
		TemplateComplianceConfirmed: true,
	}
	if err := repository.NewSubmissionRepository(db).Create(sub); err != nil {
		t.Fatalf("Failed to create submission for %s: %v", user.Name, err)
	}
	return sub
}

// CreateConfig inserts the competition config row.
func CreateConfig(t *testing.T, db *repository.DB, cfg *models.Config) *models.Config {
	t.Helper()

	if err := repository.NewConfigRepository(db).Save(cfg); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}
	return cfg
}

// Window returns a start/end pair offset from now.
func Window(now time.Time, startOffset, endOffset time.Duration) (*time.Time, *time.Time) {
	start := now.Add(startOffset)
	end := now.Add(endOffset)
	return &start, &end
}
