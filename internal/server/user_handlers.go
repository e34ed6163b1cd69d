package server

import (
	"time"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"
	"agora/internal/session"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) setSessionCookie(c *fiber.Ctx, sess *session.Session) error {
	value, err := s.cookies.Encode(sess)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(s.cookies.TTL()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   s.config.Env == "production",
	})
	return nil
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   s.config.Env == "production",
	})
}

// Login handles POST /user/login
// @Summary Log in
// @Description Check credentials and establish a session cookie
// @Tags user
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Login request"
// @Success 200 {object} models.Envelope{data=service.LoginResult}
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /user/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var in service.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return models.Respond(c, fiber.StatusBadRequest, models.DetailInvalidLoginRequest, nil)
	}

	result, err := s.userService.Login(c.Context(), middleware.SessionFromLocals(c), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.setSessionCookie(c, result.Session); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	return models.Respond(c, fiber.StatusOK, models.DetailLoginSuccess, result)
}

// Signup handles POST /user/signup
// @Summary Sign up
// @Description Register a new user account
// @Tags user
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "Signup request"
// @Success 201 {object} models.Envelope{data=object{user_id=int}}
// @Failure 400 {object} models.Envelope
// @Router /user/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var in service.SignupInput
	if err := c.BodyParser(&in); err != nil {
		return models.Respond(c, fiber.StatusBadRequest, models.DetailInvalidSignupRequest, nil)
	}

	userID, err := s.userService.Signup(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, models.DetailRegisterSuccess, fiber.Map{
		"user_id": userID,
	})
}

// CheckEmail handles GET /user/check-email
// @Summary Check email availability
// @Tags user
// @Produce json
// @Param email query string true "Email to check"
// @Success 200 {object} models.Envelope{data=service.AvailabilityResult}
// @Failure 400 {object} models.Envelope
// @Router /user/check-email [get]
func (s *Server) CheckEmail(c *fiber.Ctx) error {
	result, err := s.userService.CheckEmail(c.Context(), c.Query("email"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, models.DetailEmailCheckSuccess, result)
}

// CheckNickname handles GET /user/check-nickname
// @Summary Check nickname availability
// @Tags user
// @Produce json
// @Param nickname query string true "Nickname to check"
// @Success 200 {object} models.Envelope{data=service.AvailabilityResult}
// @Failure 400 {object} models.Envelope
// @Router /user/check-nickname [get]
func (s *Server) CheckNickname(c *fiber.Ctx) error {
	result, err := s.userService.CheckNickname(c.Context(), c.Query("nickname"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, models.DetailNicknameCheckSuccess, result)
}

// UpdateMe handles PUT /user/update-me/:user_id
// @Summary Update own profile
// @Tags user
// @Accept json
// @Produce json
// @Param user_id path int true "User ID"
// @Param request body service.UpdateProfileInput true "Profile update request"
// @Success 200 {object} models.Envelope{data=service.ProfileResult}
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /user/update-me/{user_id} [put]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	userID, err := parseID(c, "user_id", models.DetailInvalidProfileUpdateRequest)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var in service.UpdateProfileInput
	if err := c.BodyParser(&in); err != nil {
		return models.Respond(c, fiber.StatusBadRequest, models.DetailInvalidProfileUpdateRequest, nil)
	}

	result, err := s.userService.UpdateProfile(c.Context(), middleware.SessionFromLocals(c), userID, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, models.DetailProfileUpdateSuccess, result)
}

// UpdatePassword handles PUT /user/update-password/:user_id
// @Summary Change own password
// @Tags user
// @Accept json
// @Produce json
// @Param user_id path int true "User ID"
// @Param request body service.UpdatePasswordInput true "Password update request"
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /user/update-password/{user_id} [put]
func (s *Server) UpdatePassword(c *fiber.Ctx) error {
	userID, err := parseID(c, "user_id", models.DetailInvalidPasswordUpdateRequest)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var in service.UpdatePasswordInput
	if err := c.BodyParser(&in); err != nil {
		return models.Respond(c, fiber.StatusBadRequest, models.DetailInvalidPasswordUpdateRequest, nil)
	}

	if err := s.userService.UpdatePassword(c.Context(), middleware.SessionFromLocals(c), userID, in); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, models.DetailPasswordUpdateSuccess, nil)
}

// Logout handles DELETE /user/logout/:user_id
// @Summary Log out
// @Tags user
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /user/logout/{user_id} [delete]
func (s *Server) Logout(c *fiber.Ctx) error {
	userID, err := parseID(c, "user_id", models.DetailInvalidLogoutRequest)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.userService.Logout(c.Context(), middleware.SessionFromLocals(c), userID); err != nil {
		return models.RespondWithError(c, err)
	}

	s.clearSessionCookie(c)
	return models.Respond(c, fiber.StatusOK, models.DetailLogoutSuccess, nil)
}

// DeleteUser handles DELETE /user/:user_id
// @Summary Delete own account
// @Tags user
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /user/{user_id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "user_id", models.DetailInvalidUserDeleteRequest)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.userService.DeleteAccount(c.Context(), middleware.SessionFromLocals(c), userID); err != nil {
		return models.RespondWithError(c, err)
	}

	s.clearSessionCookie(c)
	return models.Respond(c, fiber.StatusOK, models.DetailUserDeleteSuccess, nil)
}
