// handlers/alerts.go
package handlers

import (
	"errors"

	"skaila/middleware"
	"skaila/services"

	"github.com/gofiber/fiber/v2"
)

// ListAlerts returns the alerts visible to the calling teacher,
// ordered by severity then recency.
func ListAlerts(c *fiber.Ctx) error {
	user, err := middleware.GetUser(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	alerts, err := services.TeacherAlerts(user)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load alerts"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"alerts":  alerts,
	})
}

// MyAlerts returns the caller's own alerts, giving students a view of
// what their teachers see about them.
func MyAlerts(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	alerts, err := services.UserAlerts(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load alerts"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"alerts":  alerts,
	})
}

type AcknowledgeAlertRequest struct {
	Notes string `json:"notes"`
}

// AcknowledgeAlert moves an active alert to acknowledged.
func AcknowledgeAlert(c *fiber.Ctx) error {
	teacherID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	alertID, err := c.ParamsInt("id")
	if err != nil || alertID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid alert id"})
	}

	var req AcknowledgeAlertRequest
	_ = c.BodyParser(&req)

	alert, err := services.AcknowledgeAlert(uint(alertID), teacherID, req.Notes)
	if err != nil {
		if errors.Is(err, services.ErrAlertNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Alert not found"})
		}
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"alert":   alert,
	})
}

type ResolveAlertRequest struct {
	ResolutionMethod string `json:"resolution_method"`
}

// ResolveAlert closes an alert. A resolved alert never reopens; a new
// struggle pattern raises a fresh one.
func ResolveAlert(c *fiber.Ctx) error {
	alertID, err := c.ParamsInt("id")
	if err != nil || alertID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid alert id"})
	}

	var req ResolveAlertRequest
	_ = c.BodyParser(&req)

	alert, err := services.ResolveAlert(uint(alertID), req.ResolutionMethod)
	if err != nil {
		if errors.Is(err, services.ErrAlertNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Alert not found"})
		}
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"alert":   alert,
	})
}

// MyRecoveryPaths returns the caller's remediation plans.
func MyRecoveryPaths(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	paths, err := services.UserRecoveryPaths(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load recovery paths"})
	}
	return c.JSON(fiber.Map{"success": true, "recovery_paths": paths})
}

// AdvanceRecoveryPath moves one of the caller's plans to its next
// status.
func AdvanceRecoveryPath(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	pathID, err := c.ParamsInt("id")
	if err != nil || pathID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid recovery path id"})
	}

	path, err := services.AdvanceRecoveryPath(uint(pathID), userID)
	if errors.Is(err, services.ErrRecoveryPathNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Recovery path not found"})
	}
	if errors.Is(err, services.ErrInvalidAlertState) {
		return c.Status(409).JSON(fiber.Map{"error": "Recovery path already completed"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to advance recovery path"})
	}
	return c.JSON(fiber.Map{"success": true, "recovery_path": path})
}
