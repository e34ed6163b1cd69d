package server

import (
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /posts
// @Summary List posts
// @Description Cursor-paginated board listing, oldest first
// @Tags posts
// @Produce json
// @Param cursor_id query int false "Return posts with id greater than this" default(0)
// @Param count query int false "Page size" default(10)
// @Success 200 {object} models.Envelope{data=service.PostListResult}
// @Failure 400 {object} models.Envelope
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	cursorID := int64(c.QueryInt("cursor_id", 0))
	count := c.QueryInt("count", 10)

	result, err := s.postService.List(c.Context(), cursorID, count)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, models.DetailPostsListSuccess, result)
}

// CreatePost handles POST /posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body service.CreatePostInput true "Post creation request"
// @Success 201 {object} models.Envelope{data=object{post_id=int}}
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var in service.CreatePostInput
	if err := c.BodyParser(&in); err != nil {
		return models.Respond(c, fiber.StatusBadRequest, models.DetailInvalidPostCreateRequest, nil)
	}

	postID, err := s.postService.Create(c.Context(), middleware.SessionFromLocals(c), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, models.DetailPostCreateSuccess, fiber.Map{
		"post_id": postID,
	})
}

// UpdatePost handles PUT /posts/:post_id
// @Summary Update post
// @Tags posts
// @Accept json
// @Produce json
// @Param post_id path int true "Post ID"
// @Param request body service.UpdatePostInput true "Post update request"
// @Success 200 {object} models.Envelope{data=object{post_id=int}}
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /posts/{post_id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "post_id", models.DetailInvalidPostUpdateRequest)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var in service.UpdatePostInput
	if err := c.BodyParser(&in); err != nil {
		return models.Respond(c, fiber.StatusBadRequest, models.DetailInvalidPostUpdateRequest, nil)
	}

	if err := s.postService.Update(c.Context(), middleware.SessionFromLocals(c), postID, in); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, models.DetailPostUpdateSuccess, fiber.Map{
		"post_id": postID,
	})
}

// GetPostDetail handles GET /posts/:post_id
// @Summary Post detail
// @Description Full post with comments and the caller's like state; counts a view
// @Tags posts
// @Produce json
// @Param post_id path int true "Post ID"
// @Success 200 {object} models.Envelope{data=service.PostDetailResult}
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /posts/{post_id} [get]
func (s *Server) GetPostDetail(c *fiber.Ctx) error {
	postID, err := parseID(c, "post_id", models.DetailInvalidPostsDetailRequest)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	result, err := s.postService.Detail(c.Context(), middleware.SessionFromLocals(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, models.DetailPostDetailSuccess, result)
}

// DeletePost handles DELETE /posts/:post_id
// @Summary Delete post
// @Tags posts
// @Produce json
// @Param post_id path int true "Post ID"
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /posts/{post_id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "post_id", models.DetailInvalidPostDeleteRequest)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.postService.Delete(c.Context(), middleware.SessionFromLocals(c), postID); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, models.DetailPostDeleteSuccess, nil)
}
