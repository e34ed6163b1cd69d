package repository

import (
	"testing"

	"agora/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, nickname string) *models.User {
	t.Helper()

	user := &models.User{Email: email, Password: "x", Nickname: nickname}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, user *models.User, title string) *models.Post {
	t.Helper()

	post := &models.Post{
		UserID:         user.ID,
		AuthorNickname: user.Nickname,
		Title:          title,
		Content:        "content of " + title,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}
