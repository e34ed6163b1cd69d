package service

import (
	"context"
	"time"

	"agora/internal/featureflags"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/session"
	"agora/internal/summarize"
	"agora/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// listTitleLimit is the character budget for titles on the board listing.
const listTitleLimit = 26

// PostService implements the post resource operations.
type PostService struct {
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	summarizer  summarize.Client
	flags       *featureflags.Manager
}

// NewPostService creates a post service.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	summarizer summarize.Client,
	flags *featureflags.Manager,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		summarizer:  summarizer,
		flags:       flags,
	}
}

// PostListItem is one row of the board listing. Counters are rendered in the
// compact display form and the title is clipped for the board.
type PostListItem struct {
	PostID         uint      `json:"post_id"`
	Title          string    `json:"title"`
	AuthorNickname string    `json:"author_nickname"`
	CreatedAt      time.Time `json:"created_at"`
	Views          string    `json:"views"`
	CommentsCount  string    `json:"comments_count"`
	Likes          string    `json:"likes"`
}

// PostListResult is the board listing payload.
type PostListResult struct {
	PostList   []PostListItem `json:"post_list"`
	NextCursor uint           `json:"next_cursor"`
}

// List returns up to count posts with id greater than cursorID, oldest first.
// NextCursor is the last returned id, or the request cursor when the page is
// empty so the client can poll the same position.
func (s *PostService) List(ctx context.Context, cursorID int64, count int) (*PostListResult, error) {
	if count <= 0 || cursorID < 0 {
		return nil, models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidPostsListRequest)
	}

	posts, err := s.postRepo.ListAfter(ctx, uint(cursorID), count)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	result := &PostListResult{
		PostList:   make([]PostListItem, 0, len(posts)),
		NextCursor: uint(cursorID),
	}
	for _, p := range posts {
		title := p.Title
		if len([]rune(title)) > listTitleLimit {
			title = string([]rune(title)[:listTitleLimit])
		}
		result.PostList = append(result.PostList, PostListItem{
			PostID:         p.ID,
			Title:          title,
			AuthorNickname: p.AuthorNickname,
			CreatedAt:      p.CreatedAt,
			Views:          validation.FormatCount(p.Views),
			CommentsCount:  validation.FormatCount(p.CommentsCount),
			Likes:          validation.FormatCount(p.Likes),
		})
		result.NextCursor = p.ID
	}
	return result, nil
}

// CreatePostInput is the post creation payload.
type CreatePostInput struct {
	UserID   uint   `json:"user_id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	ImageURL string `json:"image_url"`
}

// Create stores a new post under the caller's identity. The summary is best
// effort: a summarizer failure never fails the write.
func (s *PostService) Create(ctx context.Context, sess *session.Session, in CreatePostInput) (uint, error) {
	if err := validation.Struct(in); err != nil {
		return 0, models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidPostCreateRequest)
	}

	if sess == nil {
		return 0, models.NewAppError(fiber.StatusUnauthorized, models.DetailUnauthorizedUser)
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	if user == nil {
		return 0, models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidPostCreateRequest)
	}

	if in.UserID != sess.UserID {
		return 0, models.NewAppError(fiber.StatusForbidden, models.DetailForbiddenUser)
	}

	post := &models.Post{
		UserID:         user.ID,
		AuthorNickname: user.Nickname,
		Title:          in.Title,
		Content:        in.Content,
		Summary:        s.summarizeContent(ctx, user.ID, in.Content),
		ImageURL:       in.ImageURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return 0, models.NewInternalError(err)
	}
	return post.ID, nil
}

// UpdatePostInput is the post update payload.
type UpdatePostInput struct {
	UserID   uint   `json:"user_id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	ImageURL string `json:"image_url"`
}

// Update rewrites a post's title, content and image. Only the owner may
// update, and the summary is regenerated from the new content.
func (s *PostService) Update(ctx context.Context, sess *session.Session, postID uint, in UpdatePostInput) error {
	if err := validation.Struct(in); err != nil {
		return models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidPostUpdateRequest)
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if post == nil {
		return models.NewAppError(fiber.StatusNotFound, models.DetailPostNotFound)
	}

	if sess == nil {
		return models.NewAppError(fiber.StatusUnauthorized, models.DetailUnauthorizedUser)
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if user == nil {
		return models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidPostUpdateRequest)
	}

	if post.UserID != sess.UserID {
		return models.NewAppError(fiber.StatusForbidden, models.DetailForbiddenUser)
	}

	post.Title = in.Title
	post.Content = in.Content
	post.ImageURL = in.ImageURL
	post.Summary = s.summarizeContent(ctx, sess.UserID, in.Content)
	if err := s.postRepo.Update(ctx, post); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CommentView is a comment embedded in the post detail payload.
type CommentView struct {
	CommentID      uint      `json:"comment_id"`
	Content        string    `json:"content"`
	AuthorNickname string    `json:"author_nickname"`
	CreatedAt      time.Time `json:"created_at"`
}

// PostDetailResult is the post detail payload.
type PostDetailResult struct {
	PostID         uint          `json:"post_id"`
	Title          string        `json:"title"`
	Content        string        `json:"content"`
	Summary        string        `json:"summary,omitempty"`
	ImageURL       string        `json:"image_url,omitempty"`
	AuthorNickname string        `json:"author_nickname"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Views          int64         `json:"views"`
	CommentsCount  int64         `json:"comments_count"`
	Likes          int64         `json:"likes"`
	Comments       []CommentView `json:"comments"`
	IsLikedByMe    bool          `json:"is_liked_by_me"`
	LikeID         *uint         `json:"like_id"`
}

// Detail returns the full post with its comments and the caller's like state,
// counting the read as a view.
func (s *PostService) Detail(ctx context.Context, sess *session.Session, postID uint) (*PostDetailResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if post == nil {
		return nil, models.NewAppError(fiber.StatusNotFound, models.DetailPostNotFound)
	}

	if sess == nil {
		return nil, models.NewAppError(fiber.StatusUnauthorized, models.DetailUnauthorizedUser)
	}

	comments, err := s.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		nickname := "unknown"
		author, err := s.userRepo.GetByID(ctx, c.UserID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if author != nil {
			nickname = author.Nickname
		}
		views = append(views, CommentView{
			CommentID:      c.ID,
			Content:        c.Content,
			AuthorNickname: nickname,
			CreatedAt:      c.CreatedAt,
		})
	}

	var likeID *uint
	like, err := s.likeRepo.GetByPostAndUser(ctx, postID, sess.UserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if like != nil {
		likeID = &like.ID
	}

	if err := s.postRepo.IncrementViews(ctx, postID); err != nil {
		return nil, models.NewInternalError(err)
	}

	return &PostDetailResult{
		PostID:         post.ID,
		Title:          post.Title,
		Content:        post.Content,
		Summary:        post.Summary,
		ImageURL:       post.ImageURL,
		AuthorNickname: post.AuthorNickname,
		CreatedAt:      post.CreatedAt,
		UpdatedAt:      post.UpdatedAt,
		Views:          post.Views + 1,
		CommentsCount:  post.CommentsCount,
		Likes:          post.Likes,
		Comments:       views,
		IsLikedByMe:    likeID != nil,
		LikeID:         likeID,
	}, nil
}

// Delete removes a post. Only the owner may delete.
func (s *PostService) Delete(ctx context.Context, sess *session.Session, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if post == nil {
		return models.NewAppError(fiber.StatusNotFound, models.DetailPostNotFound)
	}

	if sess == nil {
		return models.NewAppError(fiber.StatusUnauthorized, models.DetailUnauthorizedUser)
	}
	if post.UserID != sess.UserID {
		return models.NewAppError(fiber.StatusForbidden, models.DetailForbiddenUser)
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *PostService) summarizeContent(ctx context.Context, userID uint, content string) string {
	if s.summarizer == nil || !s.flags.Enabled(featureflags.FlagSummaries, userID) {
		return ""
	}
	summary, err := s.summarizer.Summarize(ctx, content)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "summarizer unavailable, storing post without summary", "error", err)
		return ""
	}
	return summary
}
