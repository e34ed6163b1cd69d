// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"agora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password assigned to every seeded user.
const DefaultPassword = "password123!"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rnd *rand.Rand
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	return NewFactoryWithSeed(db, time.Now().UnixNano())
}

// NewFactoryWithSeed creates a Factory with a fixed random seed so repeated
// runs produce the same demo dataset.
func NewFactoryWithSeed(db *gorm.DB, seed int64) *Factory {
	gofakeit.Seed(seed)
	return &Factory{
		db:  db,
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// nickname generates a value that satisfies the nickname rules: no
// whitespace, at most ten characters.
func (f *Factory) nickname() string {
	n := strings.ReplaceAll(gofakeit.Username(), " ", "")
	if len([]rune(n)) > 7 {
		n = string([]rune(n)[:7])
	}
	return fmt.Sprintf("%s%d", n, f.rnd.Intn(1000))
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        gofakeit.Email(),
		Password:     string(hashed),
		Nickname:     f.nickname(),
		ProfileImage: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample post authored by the given
// user, with a realistic created_at spread over the past 90 days.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		UserID:         user.ID,
		AuthorNickname: user.Nickname,
		Title:          gofakeit.Sentence(5),
		Content:        gofakeit.Paragraph(1, 3, 5, "\n"),
		ImageURL:       fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
	}

	daysBack := f.rnd.Intn(90)
	hoursBack := f.rnd.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment and bumps the post's counter, keeping the
// denormalized count consistent with the rows.
func (f *Factory) CreateComment(post *models.Post, user *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:  post.ID,
		UserID:  user.ID,
		Content: gofakeit.Sentence(f.rnd.Intn(15) + 3),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	if err := f.db.Model(&models.Post{}).Where("id = ?", post.ID).
		UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like and bumps the post's counter. Callers must not
// like the same post twice with the same user; the unique index rejects it.
func (f *Factory) CreateLike(post *models.Post, user *models.User) (*models.Like, error) {
	like := &models.Like{PostID: post.ID, UserID: user.ID}
	if err := f.db.Create(like).Error; err != nil {
		return nil, err
	}
	if err := f.db.Model(&models.Post{}).Where("id = ?", post.ID).
		UpdateColumn("likes", gorm.Expr("likes + 1")).Error; err != nil {
		return nil, err
	}
	return like, nil
}
