// handlers/admin/maintenance.go
package admin

import (
	"skaila/services"

	"github.com/gofiber/fiber/v2"
)

// EvictCache runs the tutor cache eviction on demand.
func EvictCache(c *fiber.Ctx) error {
	removed, err := services.EvictCache()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Eviction failed"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"removed": removed,
	})
}

// CloseStaleSessions closes telemetry sessions past the inactivity
// window.
func CloseStaleSessions(c *fiber.Ctx) error {
	closed, err := services.CloseInactiveSessions()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Sweep failed"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"closed":  closed,
	})
}

// ResetDailyXP zeroes daily counters, normally done by the midnight
// job.
func ResetDailyXP(c *fiber.Ctx) error {
	if err := services.ResetDailyXP(); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Reset failed"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// ResetWeeklyXP zeroes weekly counters and the weekly leaderboard.
func ResetWeeklyXP(c *fiber.Ctx) error {
	if err := services.ResetWeeklyXP(); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Reset failed"})
	}
	return c.JSON(fiber.Map{"success": true})
}
