package models

import (
	"time"
)

// User represents a contest participant.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	PID       string     `gorm:"column:pid;uniqueIndex;not null;size:36" json:"pid"`
	Email     string     `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Name      string     `gorm:"size:255" json:"name"`
	OTP       *string    `gorm:"column:otp;size:16" json:"-"`
	OTPSentAt *time.Time `gorm:"column:otp_sent_at" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// Admin marks a user as an administrator. Membership is the whole role model.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Admin model.
func (Admin) TableName() string {
	return "admins"
}
