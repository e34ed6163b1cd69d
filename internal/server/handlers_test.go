package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agora/internal/config"
	"agora/internal/featureflags"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"
	"agora/internal/session"
	"agora/internal/summarize"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestServer wires a Server against sqlite and miniredis without the
// Prometheus middleware, which registers global collectors and cannot be
// constructed once per test.
func setupTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		SessionSecret: "handler-test-secret",
		SessionTTLMin: 60,
		FeatureFlags:  "summaries=off",
		Env:           "test",
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	ttl := time.Duration(cfg.SessionTTLMin) * time.Minute
	sessions := session.NewStore(rdb, ttl)
	cookies := session.NewCookieCodec(cfg.SessionSecret, ttl)
	flags := featureflags.NewManager(cfg.FeatureFlags)

	s := &Server{
		config:       cfg,
		db:           db,
		redis:        rdb,
		userRepo:     userRepo,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		likeRepo:     likeRepo,
		sessions:     sessions,
		cookies:      cookies,
		featureFlags: flags,
	}
	s.userService = service.NewUserService(userRepo, sessions)
	s.postService = service.NewPostService(postRepo, userRepo, commentRepo, likeRepo, summarize.Noop{}, flags)
	s.commentService = service.NewCommentService(commentRepo, postRepo, userRepo)
	s.likeService = service.NewLikeService(likeRepo, postRepo, userRepo)

	app := fiber.New()
	app.Use(middleware.ResolveSession(sessions, cookies))
	s.SetupRoutes(app)

	return s, app
}

func (s *Server) createTestUser(t *testing.T, email, nickname, password string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Email: email, Password: string(hashed), Nickname: nickname}
	require.NoError(t, s.db.Create(user).Error)
	return user
}

func (s *Server) loginCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()

	sess, err := s.sessions.Create(context.Background(), user.ID, user.Email)
	require.NoError(t, err)
	value, err := s.cookies.Encode(sess)
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: value}
}

type envelope struct {
	Detail string          `json:"detail"`
	Data   json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}, cookie *http.Cookie) (int, envelope, *http.Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env, resp
}

func TestSignupAndLoginFlow(t *testing.T) {
	_, app := setupTestServer(t)

	status, env, _ := doJSON(t, app, http.MethodPost, "/user/signup", fiber.Map{
		"email":    "neo@example.com",
		"password": "s3cret",
		"nickname": "neo",
	}, nil)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, models.DetailRegisterSuccess, env.Detail)

	status, env, resp := doJSON(t, app, http.MethodPost, "/user/login", fiber.Map{
		"email":    "neo@example.com",
		"password": "s3cret",
	}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailLoginSuccess, env.Detail)

	var data struct {
		UserID          uint   `json:"user_id"`
		ProfileNickname string `json:"profile_nickname"`
		SessionID       string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "neo", data.ProfileNickname)
	assert.NotEmpty(t, data.SessionID)

	// The session cookie is set.
	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	assert.True(t, sessionCookie.HttpOnly)

	// Logging in again while the session lives is a conflict.
	status, env, _ = doJSON(t, app, http.MethodPost, "/user/login", fiber.Map{
		"email":    "neo@example.com",
		"password": "s3cret",
	}, sessionCookie)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.DetailAlreadyLoggedIn, env.Detail)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s, app := setupTestServer(t)
	s.createTestUser(t, "neo@example.com", "neo", "s3cret")

	status, env, _ := doJSON(t, app, http.MethodPost, "/user/login", fiber.Map{
		"email":    "neo@example.com",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, models.DetailLoginInvalidEmailOrPwd, env.Detail)

	status, env, _ = doJSON(t, app, http.MethodPost, "/user/login", fiber.Map{
		"email":    "ghost@example.com",
		"password": "s3cret",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.DetailInvalidLoginRequest, env.Detail)
}

func TestCheckEmailAndNickname(t *testing.T) {
	s, app := setupTestServer(t)
	s.createTestUser(t, "taken@example.com", "taken", "pw")

	status, env, _ := doJSON(t, app, http.MethodGet, "/user/check-email?email=not-an-email", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.DetailInvalidEmailFormat, env.Detail)

	status, env, _ = doJSON(t, app, http.MethodGet, "/user/check-email?email=free@example.com", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailEmailCheckSuccess, env.Detail)

	var data struct {
		Possible bool `json:"possible"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.Possible)

	status, env, _ = doJSON(t, app, http.MethodGet, "/user/check-nickname?nickname=taken", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailNicknameCheckSuccess, env.Detail)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.False(t, data.Possible)
}

func TestPostLifecycle(t *testing.T) {
	s, app := setupTestServer(t)

	author := s.createTestUser(t, "a@example.com", "author", "pw")
	cookie := s.loginCookie(t, author)

	// Anonymous creation is rejected.
	status, env, _ := doJSON(t, app, http.MethodPost, "/posts", fiber.Map{
		"user_id": author.ID, "title": "hello", "content": "world",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, models.DetailUnauthorizedUser, env.Detail)

	// Create.
	status, env, _ = doJSON(t, app, http.MethodPost, "/posts", fiber.Map{
		"user_id": author.ID, "title": "hello", "content": "world",
	}, cookie)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, models.DetailPostCreateSuccess, env.Detail)

	var created struct {
		PostID uint `json:"post_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotZero(t, created.PostID)

	// List is public.
	status, env, _ = doJSON(t, app, http.MethodGet, "/posts?cursor_id=0&count=10", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailPostsListSuccess, env.Detail)

	var list struct {
		PostList []struct {
			PostID uint   `json:"post_id"`
			Views  string `json:"views"`
		} `json:"post_list"`
		NextCursor uint `json:"next_cursor"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.PostList, 1)
	assert.Equal(t, created.PostID, list.PostList[0].PostID)
	assert.Equal(t, created.PostID, list.NextCursor)

	// Detail needs a session and counts the view.
	status, env, _ = doJSON(t, app, http.MethodGet, "/posts/1", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env, _ = doJSON(t, app, http.MethodGet, "/posts/1", nil, cookie)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailPostDetailSuccess, env.Detail)

	var detail struct {
		Views       int64 `json:"views"`
		IsLikedByMe bool  `json:"is_liked_by_me"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, int64(1), detail.Views)
	assert.False(t, detail.IsLikedByMe)

	// Update.
	status, env, _ = doJSON(t, app, http.MethodPut, "/posts/1", fiber.Map{
		"user_id": author.ID, "title": "revised", "content": "new text",
	}, cookie)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailPostUpdateSuccess, env.Detail)

	// Delete.
	status, env, _ = doJSON(t, app, http.MethodDelete, "/posts/1", nil, cookie)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailPostDeleteSuccess, env.Detail)

	status, env, _ = doJSON(t, app, http.MethodGet, "/posts/1", nil, cookie)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.DetailPostNotFound, env.Detail)
}

func TestOwnershipEnforcement(t *testing.T) {
	s, app := setupTestServer(t)

	author := s.createTestUser(t, "a@example.com", "author", "pw")
	intruder := s.createTestUser(t, "i@example.com", "intruder", "pw")

	post := &models.Post{UserID: author.ID, AuthorNickname: "author", Title: "mine", Content: "keep out"}
	require.NoError(t, s.db.Create(post).Error)

	cookie := s.loginCookie(t, intruder)

	status, env, _ := doJSON(t, app, http.MethodDelete, "/posts/1", nil, cookie)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.DetailForbiddenUser, env.Detail)

	status, env, _ = doJSON(t, app, http.MethodPut, "/posts/1", fiber.Map{
		"user_id": intruder.ID, "title": "stolen", "content": "x",
	}, cookie)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.DetailForbiddenUser, env.Detail)
}

func TestCommentAndLikeFlow(t *testing.T) {
	s, app := setupTestServer(t)

	author := s.createTestUser(t, "a@example.com", "author", "pw")
	fan := s.createTestUser(t, "f@example.com", "fan", "pw")

	post := &models.Post{UserID: author.ID, AuthorNickname: "author", Title: "popular", Content: "stuff"}
	require.NoError(t, s.db.Create(post).Error)

	cookie := s.loginCookie(t, fan)

	// Comment.
	status, env, _ := doJSON(t, app, http.MethodPost, "/comment", fiber.Map{
		"post_id": post.ID, "user_id": fan.ID, "content": "first!",
	}, cookie)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, models.DetailCommentCreateSuccess, env.Detail)

	var comment struct {
		CommentID uint `json:"comment_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &comment))

	// Like. Success is a plain 200.
	status, env, _ = doJSON(t, app, http.MethodPost, "/like", fiber.Map{
		"post_id": post.ID, "user_id": fan.ID,
	}, cookie)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailLikeCreateSuccess, env.Detail)

	var like struct {
		LikeID uint `json:"like_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &like))

	// A second like is rejected.
	status, env, _ = doJSON(t, app, http.MethodPost, "/like", fiber.Map{
		"post_id": post.ID, "user_id": fan.ID,
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.DetailInvalidLikeCreateRequest, env.Detail)

	// Detail shows the comment and the caller's like.
	status, env, _ = doJSON(t, app, http.MethodGet, "/posts/1", nil, cookie)
	assert.Equal(t, http.StatusOK, status)

	var detail struct {
		CommentsCount int64 `json:"comments_count"`
		Likes         int64 `json:"likes"`
		IsLikedByMe   bool  `json:"is_liked_by_me"`
		Comments      []struct {
			AuthorNickname string `json:"author_nickname"`
		} `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, int64(1), detail.CommentsCount)
	assert.Equal(t, int64(1), detail.Likes)
	assert.True(t, detail.IsLikedByMe)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "fan", detail.Comments[0].AuthorNickname)

	// Update then delete the comment.
	status, env, _ = doJSON(t, app, http.MethodPut, "/comment/1", fiber.Map{"content": "edited"}, cookie)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailCommentUpdateSuccess, env.Detail)

	status, env, _ = doJSON(t, app, http.MethodDelete, "/comment/1", nil, cookie)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailCommentDeleteSuccess, env.Detail)

	// Unlike.
	status, env, _ = doJSON(t, app, http.MethodDelete, "/like/1", nil, cookie)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailLikeDeleteSuccess, env.Detail)

	var remaining models.Post
	require.NoError(t, s.db.First(&remaining, post.ID).Error)
	assert.Equal(t, int64(0), remaining.CommentsCount)
	assert.Equal(t, int64(0), remaining.Likes)
}

func TestLogoutClearsSession(t *testing.T) {
	s, app := setupTestServer(t)

	user := s.createTestUser(t, "u@example.com", "neo", "pw")
	cookie := s.loginCookie(t, user)

	status, env, resp := doJSON(t, app, http.MethodDelete, "/user/logout/1", nil, cookie)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailLogoutSuccess, env.Detail)

	// The cookie is expired on the way out.
	cleared := false
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName && c.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared)

	// The session no longer resolves: the same cookie is now anonymous.
	status, env, _ = doJSON(t, app, http.MethodDelete, "/user/logout/1", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, models.DetailUnauthorizedUser, env.Detail)
}

func TestDeleteUserRevokesEverything(t *testing.T) {
	s, app := setupTestServer(t)

	user := s.createTestUser(t, "u@example.com", "neo", "pw")
	other := s.createTestUser(t, "o@example.com", "other", "pw")

	otherCookie := s.loginCookie(t, other)

	// Deleting someone else's account is forbidden.
	status, env, _ := doJSON(t, app, http.MethodDelete, "/user/1", nil, otherCookie)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.DetailForbiddenUser, env.Detail)

	cookie := s.loginCookie(t, user)
	status, env, _ = doJSON(t, app, http.MethodDelete, "/user/1", nil, cookie)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailUserDeleteSuccess, env.Detail)

	var count int64
	require.NoError(t, s.db.Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)

	// Unknown account now.
	status, env, _ = doJSON(t, app, http.MethodDelete, "/user/1", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.DetailInvalidUserDeleteRequest, env.Detail)
}

func TestGetPostsRejectsBadParams(t *testing.T) {
	_, app := setupTestServer(t)

	status, env, _ := doJSON(t, app, http.MethodGet, "/posts?count=0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.DetailInvalidPostsListRequest, env.Detail)

	status, env, _ = doJSON(t, app, http.MethodGet, "/posts?cursor_id=-1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.DetailInvalidPostsListRequest, env.Detail)
}

func TestUpdateProfileFlow(t *testing.T) {
	s, app := setupTestServer(t)

	user := s.createTestUser(t, "u@example.com", "before", "pw")
	cookie := s.loginCookie(t, user)

	// Anonymous is rejected before the ownership check.
	status, env, _ := doJSON(t, app, http.MethodPut, "/user/update-me/1", fiber.Map{
		"nickname": "after",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, models.DetailUnauthorizedUser, env.Detail)

	status, env, _ = doJSON(t, app, http.MethodPut, "/user/update-me/1", fiber.Map{
		"nickname": "after",
	}, cookie)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailProfileUpdateSuccess, env.Detail)

	var data struct {
		Nickname string `json:"nickname"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "after", data.Nickname)

	// Password change with the wrong current password.
	status, env, _ = doJSON(t, app, http.MethodPut, "/user/update-password/1", fiber.Map{
		"current_password": "wrong", "new_password": "next",
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.DetailInvalidPassword, env.Detail)

	status, env, _ = doJSON(t, app, http.MethodPut, "/user/update-password/1", fiber.Map{
		"current_password": "pw", "new_password": "next",
	}, cookie)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DetailPasswordUpdateSuccess, env.Detail)
}

func TestMalformedIDsAreBadRequests(t *testing.T) {
	s, app := setupTestServer(t)

	user := s.createTestUser(t, "u@example.com", "neo", "pw")
	cookie := s.loginCookie(t, user)

	cases := []struct {
		method string
		target string
		detail string
	}{
		{http.MethodGet, "/posts/abc", models.DetailInvalidPostsDetailRequest},
		{http.MethodPut, "/posts/abc", models.DetailInvalidPostUpdateRequest},
		{http.MethodDelete, "/posts/abc", models.DetailInvalidPostDeleteRequest},
		{http.MethodPut, "/comment/abc", models.DetailInvalidCommentUpdateRequest},
		{http.MethodDelete, "/comment/abc", models.DetailInvalidCommentDeleteRequest},
		{http.MethodDelete, "/like/abc", models.DetailInvalidLikeDeleteRequest},
	}
	for _, tc := range cases {
		t.Run(strings.ToLower(tc.method)+" "+tc.target, func(t *testing.T) {
			status, env, _ := doJSON(t, app, tc.method, tc.target, nil, cookie)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tc.detail, env.Detail)
		})
	}
}
