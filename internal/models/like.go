package models

// Like marks that a user liked a post. The composite unique index enforces
// the at-most-one-like-per-(post,user) invariant at the storage layer.
type Like struct {
	ID     uint `gorm:"primaryKey" json:"like_id"`
	PostID uint `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"post_id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"user_id"`
}
