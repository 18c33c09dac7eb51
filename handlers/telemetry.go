// handlers/telemetry.go
package handlers

import (
	"skaila/middleware"
	"skaila/services"

	"github.com/gofiber/fiber/v2"
)

// TrackEvent ingests one behavioral event from a client.
func TrackEvent(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var in services.TrackInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if in.EventType == "" {
		return c.Status(400).JSON(fiber.Map{"error": "event_type required"})
	}

	result, err := services.Track(userID, in)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to record event"})
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"event_id":   result.EventID,
		"session_id": result.SessionID,
		"struggle":   result.Struggle,
	})
}

type EndSessionRequest struct {
	SessionID string `json:"session_id"`
}

// EndSession closes the caller's session explicitly, e.g. on page
// unload. Sessions left open are swept by the inactivity job anyway.
func EndSession(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req EndSessionRequest
	if err := c.BodyParser(&req); err != nil || req.SessionID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "session_id required"})
	}

	if err := services.EndSession(userID, req.SessionID); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Session not found"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// MySessions returns the caller's recent session summaries.
func MySessions(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	limit := c.QueryInt("limit", 20)
	sessions, err := services.RecentSessions(userID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load sessions"})
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"sessions": sessions,
	})
}

type BatchRequest struct {
	Events []services.TrackInput `json:"events"`
}

// TrackBatch ingests a burst of events in arrival order, e.g. a client
// flushing its offline buffer. Each event is processed independently;
// a bad event is skipped, not fatal for the rest.
func TrackBatch(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req BatchRequest
	if err := c.BodyParser(&req); err != nil || len(req.Events) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "events required"})
	}
	if len(req.Events) > 100 {
		return c.Status(400).JSON(fiber.Map{"error": "batch too large, max 100 events"})
	}

	results := make([]fiber.Map, 0, len(req.Events))
	for _, in := range req.Events {
		if in.EventType == "" {
			results = append(results, fiber.Map{"accepted": false, "error": "event_type required"})
			continue
		}
		result, err := services.Track(userID, in)
		if err != nil {
			results = append(results, fiber.Map{"accepted": false, "error": "failed to record"})
			continue
		}
		results = append(results, fiber.Map{
			"accepted":   true,
			"event_id":   result.EventID,
			"session_id": result.SessionID,
			"struggle":   result.Struggle,
		})
	}
	return c.JSON(fiber.Map{"success": true, "results": results})
}
