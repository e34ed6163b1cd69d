package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/session"
	"agora/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CommentService implements the comment resource operations.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
}

// NewCommentService creates a comment service.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, userRepo repository.UserRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo, userRepo: userRepo}
}

// CreateCommentInput is the comment creation payload.
type CreateCommentInput struct {
	PostID  uint   `json:"post_id" validate:"required"`
	UserID  uint   `json:"user_id" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// Create attaches a comment to a post under the caller's identity and bumps
// the post's comment counter.
func (s *CommentService) Create(ctx context.Context, sess *session.Session, in CreateCommentInput) (uint, error) {
	invalid := models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidCommentCreateRequest)

	if err := validation.Struct(in); err != nil {
		return 0, invalid
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	if post == nil {
		return 0, invalid
	}
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	if user == nil {
		return 0, invalid
	}

	if sess == nil {
		return 0, models.NewAppError(fiber.StatusUnauthorized, models.DetailUnauthorizedUser)
	}
	if in.UserID != sess.UserID {
		return 0, models.NewAppError(fiber.StatusForbidden, models.DetailForbiddenUser)
	}

	comment := &models.Comment{
		PostID:  in.PostID,
		UserID:  in.UserID,
		Content: in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return 0, models.NewInternalError(err)
	}
	if err := s.postRepo.AddComments(ctx, in.PostID, 1); err != nil {
		return 0, models.NewInternalError(err)
	}
	return comment.ID, nil
}

// Update rewrites a comment's content. Only the author may update.
func (s *CommentService) Update(ctx context.Context, sess *session.Session, commentID uint, content string) error {
	if content == "" {
		return models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidCommentUpdateRequest)
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if comment == nil {
		return models.NewAppError(fiber.StatusNotFound, models.DetailCommentNotFound)
	}

	if sess == nil {
		return models.NewAppError(fiber.StatusUnauthorized, models.DetailUnauthorizedUser)
	}
	if comment.UserID != sess.UserID {
		return models.NewAppError(fiber.StatusForbidden, models.DetailForbiddenUser)
	}

	if err := s.commentRepo.UpdateContent(ctx, commentID, content); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes a comment and decrements the post's comment counter. Only
// the author may delete.
func (s *CommentService) Delete(ctx context.Context, sess *session.Session, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if comment == nil {
		return models.NewAppError(fiber.StatusNotFound, models.DetailCommentNotFound)
	}

	if sess == nil {
		return models.NewAppError(fiber.StatusUnauthorized, models.DetailUnauthorizedUser)
	}
	if comment.UserID != sess.UserID {
		return models.NewAppError(fiber.StatusForbidden, models.DetailForbiddenUser)
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return models.NewInternalError(err)
	}
	if err := s.postRepo.AddComments(ctx, comment.PostID, -1); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
