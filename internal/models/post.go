// Package models contains data structures for the application's domain models.
package models

import "time"

// Post represents a community post.
//
// Views, CommentsCount and Likes are persisted counters. They are never
// written through Save; the repository mutates them with single conditional
// UPDATE statements so concurrent requests cannot under-count.
type Post struct {
	ID uint `gorm:"primaryKey" json:"post_id"`
	// UserID is the owning user; ownership never changes after create.
	UserID uint `gorm:"not null;index" json:"user_id"`
	// AuthorNickname is snapshotted at create time and intentionally not
	// rewritten when the author later renames themselves.
	AuthorNickname string    `gorm:"not null" json:"author_nickname"`
	Title          string    `gorm:"not null" json:"title"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Summary        string    `gorm:"type:text" json:"summary,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	Views          int64     `gorm:"not null;default:0" json:"views"`
	CommentsCount  int64     `gorm:"not null;default:0" json:"comments_count"`
	Likes          int64     `gorm:"not null;default:0" json:"likes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
