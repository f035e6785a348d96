package models

import (
	"time"
)

// Score bounds accepted for each vote criterion.
const (
	MinCriterionScore = 0
	MaxCriterionScore = 5
)

// Vote holds one user's five criterion scores for one submission.
// (user_id, submission_id) is unique.
type Vote struct {
	ID                       uint      `gorm:"primaryKey" json:"id"`
	UserID                   uint      `gorm:"not null;uniqueIndex:idx_votes_user_submission" json:"user_id"`
	SubmissionID             uint      `gorm:"not null;uniqueIndex:idx_votes_user_submission;index" json:"submission_id"`
	ProblemFitScore          int       `gorm:"not null" json:"problem_fit_score"`
	ClarityScore             int       `gorm:"not null" json:"clarity_score"`
	StyleInterpretationScore int       `gorm:"not null" json:"style_interpretation_score"`
	OriginalityScore         int       `gorm:"not null" json:"originality_score"`
	OverallQualityScore      int       `gorm:"not null" json:"overall_quality_score"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// TableName specifies the table name for Vote model.
func (Vote) TableName() string {
	return "votes"
}

// Score is the computed result for one submission.
// Per-criterion values use a 0-1000 scale, FinalScore a 0-10000 scale.
type Score struct {
	ID                       uint      `gorm:"primaryKey" json:"id"`
	SubmissionID             uint      `gorm:"uniqueIndex;not null" json:"submission_id"`
	ProblemFitScore          int       `gorm:"not null" json:"problem_fit_score"`
	VisualClarityScore       int       `gorm:"not null" json:"visual_clarity_score"`
	StyleInterpretationScore int       `gorm:"not null" json:"style_interpretation_score"`
	OriginalityScore         int       `gorm:"not null" json:"originality_score"`
	OverallQualityScore      int       `gorm:"not null" json:"overall_quality_score"`
	FinalScore               int       `gorm:"not null;index" json:"final_score"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// TableName specifies the table name for Score model.
func (Score) TableName() string {
	return "scores"
}
