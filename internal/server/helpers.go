package server

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"dealfeed/internal/models"
)

// anonymousUser identifies callers that did not pass a userId.
const anonymousUser = "anonymous"

// callerID returns the calling user's id from the userId query parameter.
// The feed has no authentication; unidentified callers act as "anonymous".
func callerID(c *fiber.Ctx) string {
	if uid := c.Query("userId"); uid != "" {
		return uid
	}
	return anonymousUser
}

// parseID parses a numeric path parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("invalid " + name)
	}
	return uint(id), nil
}

// respondError maps an application error to its HTTP status.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	status := fiber.StatusInternalServerError
	switch appErr.Code {
	case "NOT_FOUND":
		status = fiber.StatusNotFound
	case "VALIDATION_ERROR":
		status = fiber.StatusBadRequest
	case "CONFLICT":
		status = fiber.StatusConflict
	}
	return models.RespondWithError(c, status, appErr)
}
