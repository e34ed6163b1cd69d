package models

import "time"

// Comment represents a comment on a post. Both the post and the author must
// exist at creation time; the author remains the only identity allowed to
// mutate or delete it.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"comment_id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
