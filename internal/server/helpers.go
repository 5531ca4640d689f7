// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"github.com/gofiber/fiber/v2"

	"inkwell/internal/models"
	"inkwell/internal/observability"
)

// parsePage extracts the ?page= query parameter. Pages are 1-based; anything
// missing or malformed falls back to page 1.
func parsePage(c *fiber.Ctx) int {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return page
}

// respondServiceError maps an application error to its HTTP status and writes
// the standard error response.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case models.HasCode(err, models.CodeNotFound):
		status = fiber.StatusNotFound
	case models.HasCode(err, models.CodeValidation):
		status = fiber.StatusBadRequest
	case models.HasCode(err, models.CodeUnauthorized):
		status = fiber.StatusUnauthorized
	case models.HasCode(err, models.CodeForbidden):
		status = fiber.StatusForbidden
	case models.HasCode(err, models.CodeConflict):
		status = fiber.StatusConflict
	}
	if status == fiber.StatusInternalServerError {
		observability.RecordErrorInContext(c.UserContext(), err)
	}
	return models.RespondWithError(c, status, err)
}
