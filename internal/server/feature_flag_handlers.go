package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/feature-flags. It returns every
// configured flag evaluated for the authenticated user, so percent rollouts
// resolve to a stable boolean per account.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	return c.JSON(fiber.Map{
		"flags": s.featureFlags.Snapshot(userID),
	})
}
