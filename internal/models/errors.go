package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Symbolic outcome strings carried in the response envelope's "detail"
// field. Clients key off these, so they are part of the API contract.
const (
	DetailInvalidLoginRequest          = "invalid_login_request"
	DetailLoginInvalidEmailOrPwd       = "login_invalid_email_or_pwd"
	DetailAlreadyLoggedIn              = "already_logged_in"
	DetailLoginSuccess                 = "login_success"
	DetailInvalidSignupRequest         = "invalid_signup_request"
	DetailRegisterSuccess              = "register_success"
	DetailInvalidEmailFormat           = "invalid_email_format"
	DetailEmailCheckSuccess            = "email_check_success"
	DetailInvalidNicknameFormat        = "invalid_nickname_format"
	DetailNicknameCheckSuccess         = "nickname_check_success"
	DetailInvalidProfileUpdateRequest  = "invalid_profile_update_request"
	DetailProfileUpdateSuccess         = "profile_update_success"
	DetailInvalidPasswordUpdateRequest = "invalid_password_update_request"
	DetailInvalidPassword              = "invalid_password"
	DetailPasswordUpdateSuccess        = "password_update_success"
	DetailInvalidLogoutRequest         = "invalid_logout_request"
	DetailLogoutSuccess                = "logout_success"
	DetailInvalidUserDeleteRequest     = "invalid_user_delete_request"
	DetailUserDeleteSuccess            = "user_delete_success"
	DetailUnauthorizedUser             = "unauthorized_user"
	DetailForbiddenUser                = "forbidden_user"

	DetailInvalidPostsListRequest   = "invalid_posts_list_request"
	DetailPostsListSuccess          = "posts_list_success"
	DetailInvalidPostCreateRequest  = "invalid_post_create_request"
	DetailPostCreateSuccess         = "post_create_success"
	DetailInvalidPostUpdateRequest  = "invalid_post_update_request"
	DetailPostUpdateSuccess         = "post_update_success"
	DetailInvalidPostsDetailRequest = "invalid_posts_detail_request"
	DetailPostDetailSuccess         = "post_detail_success"
	DetailInvalidPostDeleteRequest  = "invalid_post_delete_request"
	DetailPostDeleteSuccess         = "post_delete_success"
	DetailPostNotFound              = "post_not_found"

	DetailInvalidCommentCreateRequest = "invalid_comment_create_request"
	DetailCommentCreateSuccess        = "comment_create_success"
	DetailInvalidCommentUpdateRequest = "invalid_comment_update_request"
	DetailCommentUpdateSuccess        = "comment_update_success"
	DetailInvalidCommentDeleteRequest = "invalid_comment_delete_request"
	DetailCommentDeleteSuccess        = "comment_delete_success"
	DetailCommentNotFound             = "comment_not_found"

	DetailInvalidLikeCreateRequest = "invalid_like_create_request"
	DetailLikeCreateSuccess        = "like_create_success"
	DetailInvalidLikeDeleteRequest = "invalid_like_delete_request"
	DetailLikeDeleteSuccess        = "like_delete_success"
	DetailLikeNotFound             = "like_not_found"

	DetailInternalServerError = "internal_server_error"
)

// Envelope is the response body shape shared by every endpoint.
type Envelope struct {
	Detail string      `json:"detail"`
	Data   interface{} `json:"data"`
}

// AppError is an expected request failure: a status code plus the symbolic
// detail string to surface. Unexpected errors are wrapped via
// NewInternalError so nothing internal leaks to the client.
type AppError struct {
	Status int
	Detail string
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an expected failure with the given status and detail.
func NewAppError(status int, detail string) *AppError {
	return &AppError{Status: status, Detail: detail}
}

// NewInternalError wraps an unexpected error as a 500 internal_server_error.
func NewInternalError(err error) *AppError {
	return &AppError{Status: fiber.StatusInternalServerError, Detail: DetailInternalServerError, Err: err}
}

// Respond writes the success envelope.
func Respond(c *fiber.Ctx, status int, detail string, data interface{}) error {
	return c.Status(status).JSON(Envelope{Detail: detail, Data: data})
}

// RespondWithError normalizes err into the envelope. Anything that is not an
// AppError is reported as internal_server_error with no further detail.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(Envelope{Detail: appErr.Detail, Data: nil})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(Envelope{Detail: DetailInternalServerError, Data: nil})
}
