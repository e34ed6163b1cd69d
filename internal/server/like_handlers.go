package server

import (
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateLike handles POST /like
// @Summary Like a post
// @Tags like
// @Accept json
// @Produce json
// @Param request body service.CreateLikeInput true "Like creation request"
// @Success 200 {object} models.Envelope{data=object{like_id=int}}
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /like [post]
func (s *Server) CreateLike(c *fiber.Ctx) error {
	var in service.CreateLikeInput
	if err := c.BodyParser(&in); err != nil {
		return models.Respond(c, fiber.StatusBadRequest, models.DetailInvalidLikeCreateRequest, nil)
	}

	likeID, err := s.likeService.Create(c.Context(), middleware.SessionFromLocals(c), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, models.DetailLikeCreateSuccess, fiber.Map{
		"like_id": likeID,
	})
}

// DeleteLike handles DELETE /like/:like_id
// @Summary Remove a like
// @Tags like
// @Produce json
// @Param like_id path int true "Like ID"
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /like/{like_id} [delete]
func (s *Server) DeleteLike(c *fiber.Ctx) error {
	likeID, err := parseID(c, "like_id", models.DetailInvalidLikeDeleteRequest)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.likeService.Delete(c.Context(), middleware.SessionFromLocals(c), likeID); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, models.DetailLikeDeleteSuccess, nil)
}
