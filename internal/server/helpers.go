package server

import (
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts a route parameter as a non-negative uint. A malformed or
// negative value yields a 400 with the operation's own detail string; an id
// that simply does not exist is left for the lookup to report.
func parseID(c *fiber.Ctx, param, detail string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id < 0 {
		return 0, models.NewAppError(fiber.StatusBadRequest, detail)
	}
	return uint(id), nil
}
