package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/session"
	"agora/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// LikeService implements the like resource operations.
type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

// NewLikeService creates a like service.
func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository, userRepo repository.UserRepository) *LikeService {
	return &LikeService{likeRepo: likeRepo, postRepo: postRepo, userRepo: userRepo}
}

// CreateLikeInput is the like creation payload.
type CreateLikeInput struct {
	PostID uint `json:"post_id" validate:"required"`
	UserID uint `json:"user_id" validate:"required"`
}

// Create records a like on a post under the caller's identity and bumps the
// post's like counter. A second like on the same post by the same user is
// rejected without touching the counter.
func (s *LikeService) Create(ctx context.Context, sess *session.Session, in CreateLikeInput) (uint, error) {
	invalid := models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidLikeCreateRequest)

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

	like := &models.Like{PostID: in.PostID, UserID: in.UserID}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		if err == repository.ErrDuplicate {
			return 0, invalid
		}
		return 0, models.NewInternalError(err)
	}
	if err := s.postRepo.AddLikes(ctx, in.PostID, 1); err != nil {
		return 0, models.NewInternalError(err)
	}
	return like.ID, nil
}

// Delete removes a like and decrements the post's like counter. Only the
// user who placed the like may remove it.
func (s *LikeService) Delete(ctx context.Context, sess *session.Session, likeID uint) error {
	like, err := s.likeRepo.GetByID(ctx, likeID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if like == nil {
		return models.NewAppError(fiber.StatusNotFound, models.DetailLikeNotFound)
	}

	if sess == nil {
		return models.NewAppError(fiber.StatusUnauthorized, models.DetailUnauthorizedUser)
	}
	if like.UserID != sess.UserID {
		return models.NewAppError(fiber.StatusForbidden, models.DetailForbiddenUser)
	}

	if err := s.likeRepo.Delete(ctx, likeID); err != nil {
		return models.NewInternalError(err)
	}
	if err := s.postRepo.AddLikes(ctx, like.PostID, -1); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
