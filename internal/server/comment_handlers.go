package server

import (
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /comment
// @Summary Create comment
// @Tags comment
// @Accept json
// @Produce json
// @Param request body service.CreateCommentInput true "Comment creation request"
// @Success 201 {object} models.Envelope{data=object{comment_id=int}}
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /comment [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var in service.CreateCommentInput
	if err := c.BodyParser(&in); err != nil {
		return models.Respond(c, fiber.StatusBadRequest, models.DetailInvalidCommentCreateRequest, nil)
	}

	commentID, err := s.commentService.Create(c.Context(), middleware.SessionFromLocals(c), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, models.DetailCommentCreateSuccess, fiber.Map{
		"comment_id": commentID,
	})
}

// UpdateComment handles PUT /comment/:comment_id
// @Summary Update comment
// @Tags comment
// @Accept json
// @Produce json
// @Param comment_id path int true "Comment ID"
// @Param request body object{content=string} true "Comment update request"
// @Success 200 {object} models.Envelope{data=object{comment_id=int}}
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /comment/{comment_id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "comment_id", models.DetailInvalidCommentUpdateRequest)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var in struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&in); err != nil {
		return models.Respond(c, fiber.StatusBadRequest, models.DetailInvalidCommentUpdateRequest, nil)
	}

	if err := s.commentService.Update(c.Context(), middleware.SessionFromLocals(c), commentID, in.Content); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, models.DetailCommentUpdateSuccess, fiber.Map{
		"comment_id": commentID,
	})
}

// DeleteComment handles DELETE /comment/:comment_id
// @Summary Delete comment
// @Tags comment
// @Produce json
// @Param comment_id path int true "Comment ID"
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /comment/{comment_id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "comment_id", models.DetailInvalidCommentDeleteRequest)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.commentService.Delete(c.Context(), middleware.SessionFromLocals(c), commentID); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, models.DetailCommentDeleteSuccess, nil)
}
