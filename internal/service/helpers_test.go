package service

import (
	"context"
	"testing"
	"time"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	sessions *session.Store

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return &testEnv{
		db:          db,
		sessions:    session.NewStore(rdb, time.Hour),
		userRepo:    repository.NewUserRepository(db),
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		likeRepo:    repository.NewLikeRepository(db),
	}
}

func (e *testEnv) createUser(t *testing.T, email, nickname, password string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Email: email, Password: string(hashed), Nickname: nickname}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createPost(t *testing.T, author *models.User, title string) *models.Post {
	t.Helper()

	post := &models.Post{
		UserID:         author.ID,
		AuthorNickname: author.Nickname,
		Title:          title,
		Content:        "content of " + title,
	}
	require.NoError(t, e.db.Create(post).Error)
	return post
}

func (e *testEnv) sessionFor(t *testing.T, user *models.User) *session.Session {
	t.Helper()

	sess, err := e.sessions.Create(context.Background(), user.ID, user.Email)
	require.NoError(t, err)
	return sess
}

func assertAppError(t *testing.T, err error, status int, detail string) {
	t.Helper()

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, status, appErr.Status)
	assert.Equal(t, detail, appErr.Detail)
}

// stubSummarizer returns a fixed summary or error, recording its inputs.
type stubSummarizer struct {
	summary string
	err     error
	calls   []string
}

func (s *stubSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.calls = append(s.calls, text)
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}
