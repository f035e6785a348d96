// Package models defines the persisted records of the design contest.
package models

import (
	"time"
)

// ConfigID is the fixed primary key of the configuration row.
const ConfigID = 1

// Config is the singleton competition configuration row.
// Timestamp pairs define inclusive windows [start, end].
type Config struct {
	ID              uint       `gorm:"primaryKey;check:chk_configs_singleton,id = 1" json:"id"`
	SubmissionStart *time.Time `json:"submission_start"`
	SubmissionEnd   *time.Time `json:"submission_end"`
	VotingStart     *time.Time `json:"voting_start"`
	VotingEnd       *time.Time `json:"voting_end"`
	ShowLeaderboard bool       `gorm:"not null;default:false" json:"show_leaderboard"`
	Assigned        bool       `gorm:"not null;default:false" json:"assigned"`
	CreatedScores   bool       `gorm:"not null;default:false" json:"created_scores"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Config model.
func (Config) TableName() string {
	return "configs"
}

// SubmissionOpen reports whether now lies inside the submission window.
func (c *Config) SubmissionOpen(now time.Time) bool {
	return InWindow(c.SubmissionStart, c.SubmissionEnd, now)
}

// VotingOpen reports whether now lies inside the voting window.
func (c *Config) VotingOpen(now time.Time) bool {
	return InWindow(c.VotingStart, c.VotingEnd, now)
}

// InWindow reports whether start <= now <= end. A missing bound closes the window.
func InWindow(start, end *time.Time, now time.Time) bool {
	if start == nil || end == nil {
		return false
	}
	return !now.Before(*start) && !now.After(*end)
}
