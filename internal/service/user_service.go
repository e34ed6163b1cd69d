// Package service implements the request pipelines behind each controller
// operation: payload validation, entity lookups, authorization against the
// session identity, then the mutation. The session is always an explicit
// parameter; a nil session means "not logged in".
//
// Check ordering inside each operation is part of the API contract (it
// decides which status a client sees first) and must not be rearranged.
package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/session"
	"agora/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// SessionManager is the slice of the session store the user service needs.
type SessionManager interface {
	Create(ctx context.Context, userID uint, email string) (*session.Session, error)
	Destroy(ctx context.Context, sess *session.Session) error
	DestroyAllForUser(ctx context.Context, userID uint) error
}

// UserService implements the user resource operations.
type UserService struct {
	userRepo repository.UserRepository
	sessions SessionManager
}

// NewUserService creates a user service.
func NewUserService(userRepo repository.UserRepository, sessions SessionManager) *UserService {
	return &UserService{userRepo: userRepo, sessions: sessions}
}

// LoginInput is the login request payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the login response payload plus the established session.
type LoginResult struct {
	UserID          uint   `json:"user_id"`
	ProfileImgURL   string `json:"profile_img_url,omitempty"`
	ProfileNickname string `json:"profile_nickname"`
	SessionID       string `json:"session_id"`

	Session *session.Session `json:"-"`
}

// Login checks credentials and establishes a session. A request that already
// carries a live session is rejected as a conflict rather than silently
// re-establishing.
func (s *UserService) Login(ctx context.Context, current *session.Session, in LoginInput) (*LoginResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidLoginRequest)
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil {
		return nil, models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidLoginRequest)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, models.NewAppError(fiber.StatusUnauthorized, models.DetailLoginInvalidEmailOrPwd)
	}

	if current != nil {
		return nil, models.NewAppError(fiber.StatusConflict, models.DetailAlreadyLoggedIn)
	}

	sess, err := s.sessions.Create(ctx, user.ID, user.Email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &LoginResult{
		UserID:          user.ID,
		ProfileImgURL:   user.ProfileImage,
		ProfileNickname: user.Nickname,
		SessionID:       sess.ID,
		Session:         sess,
	}, nil
}

// SignupInput is the signup request payload.
type SignupInput struct {
	Email        string `json:"email" validate:"required"`
	Password     string `json:"password" validate:"required"`
	Nickname     string `json:"nickname" validate:"required"`
	ProfileImage string `json:"profile_image"`
}

// Signup registers a new user and returns the assigned id.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (uint, error) {
	invalid := models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidSignupRequest)

	if err := validation.Struct(in); err != nil {
		return 0, invalid
	}
	if !validation.EmailIsValid(in.Email) || !validation.NicknameIsValid(in.Nickname) {
		return 0, invalid
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	if existing != nil {
		return 0, invalid
	}
	existing, err = s.userRepo.GetByNickname(ctx, in.Nickname)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	if existing != nil {
		return 0, invalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, models.NewInternalError(err)
	}

	user := &models.User{
		Email:        in.Email,
		Password:     string(hashed),
		Nickname:     in.Nickname,
		ProfileImage: in.ProfileImage,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent signup can still win the unique index race.
		if err == repository.ErrDuplicate {
			return 0, invalid
		}
		return 0, models.NewInternalError(err)
	}

	return user.ID, nil
}

// AvailabilityResult reports whether an email or nickname is still free.
type AvailabilityResult struct {
	Email    string `json:"email,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Possible bool   `json:"possible"`
}

// CheckEmail validates the email shape and reports availability.
func (s *UserService) CheckEmail(ctx context.Context, email string) (*AvailabilityResult, error) {
	if !validation.EmailIsValid(email) {
		return nil, models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidEmailFormat)
	}
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AvailabilityResult{Email: email, Possible: existing == nil}, nil
}

// CheckNickname validates the nickname shape and reports availability.
func (s *UserService) CheckNickname(ctx context.Context, nickname string) (*AvailabilityResult, error) {
	if !validation.NicknameIsValid(nickname) {
		return nil, models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidNicknameFormat)
	}
	existing, err := s.userRepo.GetByNickname(ctx, nickname)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AvailabilityResult{Nickname: nickname, Possible: existing == nil}, nil
}

// UpdateProfileInput is the profile update payload. ProfileImage is only
// touched when present in the request body.
type UpdateProfileInput struct {
	Nickname     *string `json:"nickname" validate:"required"`
	ProfileImage *string `json:"profile_image"`
}

// ProfileResult is the profile update response payload.
type ProfileResult struct {
	UserID       uint   `json:"user_id"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// UpdateProfile changes the caller's own nickname/profile image.
func (s *UserService) UpdateProfile(ctx context.Context, sess *session.Session, userID uint, in UpdateProfileInput) (*ProfileResult, error) {
	invalid := models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidProfileUpdateRequest)

	if err := validation.Struct(in); err != nil {
		return nil, invalid
	}

	if sess == nil {
		return nil, models.NewAppError(fiber.StatusUnauthorized, models.DetailUnauthorizedUser)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil {
		return nil, invalid
	}

	if userID != sess.UserID {
		return nil, models.NewAppError(fiber.StatusForbidden, models.DetailForbiddenUser)
	}

	user.Nickname = *in.Nickname
	if in.ProfileImage != nil {
		user.ProfileImage = *in.ProfileImage
	}
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			return nil, invalid
		}
		return nil, models.NewInternalError(err)
	}

	return &ProfileResult{
		UserID:       user.ID,
		Nickname:     user.Nickname,
		ProfileImage: user.ProfileImage,
	}, nil
}

// UpdatePasswordInput is the password change payload.
type UpdatePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// UpdatePassword verifies the current password and stores a hash of the new one.
func (s *UserService) UpdatePassword(ctx context.Context, sess *session.Session, userID uint, in UpdatePasswordInput) error {
	invalid := models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidPasswordUpdateRequest)

	if err := validation.Struct(in); err != nil {
		return invalid
	}

	if sess == nil {
		return models.NewAppError(fiber.StatusUnauthorized, models.DetailUnauthorizedUser)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if user == nil {
		return invalid
	}

	if userID != sess.UserID {
		return models.NewAppError(fiber.StatusForbidden, models.DetailForbiddenUser)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
		return models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidPassword)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Logout ends the caller's session.
func (s *UserService) Logout(ctx context.Context, sess *session.Session, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if user == nil {
		return models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidLogoutRequest)
	}

	if sess == nil {
		return models.NewAppError(fiber.StatusUnauthorized, models.DetailUnauthorizedUser)
	}
	if userID != sess.UserID {
		return models.NewAppError(fiber.StatusForbidden, models.DetailForbiddenUser)
	}

	if err := s.sessions.Destroy(ctx, sess); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteAccount removes the caller's account and revokes every live session.
func (s *UserService) DeleteAccount(ctx context.Context, sess *session.Session, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if user == nil {
		return models.NewAppError(fiber.StatusBadRequest, models.DetailInvalidUserDeleteRequest)
	}

	if sess == nil {
		return models.NewAppError(fiber.StatusUnauthorized, models.DetailUnauthorizedUser)
	}
	if userID != sess.UserID {
		return models.NewAppError(fiber.StatusForbidden, models.DetailForbiddenUser)
	}

	if err := s.sessions.DestroyAllForUser(ctx, userID); err != nil {
		return models.NewInternalError(err)
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
