package models

import (
	"time"
)

// Submission is a user's design entry. A user owns at most one.
type Submission struct {
	ID                          uint      `gorm:"primaryKey" json:"id"`
	UserID                      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User                        *User     `gorm:"foreignKey:UserID" json:"-"`
	FigmaLink                   string    `gorm:"type:text;not null" json:"figma_link"`
	DesignImage                 string    `gorm:"type:text;not null" json:"design_image"`
	TargetUserAndGoal           string    `gorm:"type:text;not null" json:"target_user_and_goal"`
	LayoutExplanation           string    `gorm:"type:text;not null" json:"layout_explanation"`
	StyleInterpretation         string    `gorm:"type:text;not null" json:"style_interpretation"`
	KeyTradeOff                 string    `gorm:"type:text;not null" json:"key_trade_off"`
	OriginalityConfirmed        bool      `gorm:"not null" json:"originality_confirmed"`
	TemplateComplianceConfirmed bool      `gorm:"not null" json:"template_compliance_confirmed"`
	FutureImprovements          *string   `gorm:"type:text" json:"future_improvements"`
	CreatedAt                   time.Time `json:"created_at"`
	UpdatedAt                   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Submission model.
func (Submission) TableName() string {
	return "submissions"
}

// VoteAssignment pairs a reviewer with a submission to evaluate.
// The table is rebuilt wholesale on every assignment run.
type VoteAssignment struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	UserID       uint        `gorm:"not null;index" json:"user_id"`
	SubmissionID uint        `gorm:"not null;index" json:"submission_id"`
	Submission   *Submission `gorm:"foreignKey:SubmissionID" json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
}

// TableName specifies the table name for VoteAssignment model.
func (VoteAssignment) TableName() string {
	return "vote_assignments"
}
