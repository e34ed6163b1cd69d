// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered community member.
//
// Email and Nickname each carry a unique index; the password column only
// ever holds a bcrypt hash.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"user_id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Password     string    `gorm:"not null" json:"-"`
	Nickname     string    `gorm:"uniqueIndex;not null" json:"nickname"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
