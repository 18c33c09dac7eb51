// handlers/opportunities.go
package handlers

import (
	"errors"

	"skaila/middleware"
	"skaila/services"

	"github.com/gofiber/fiber/v2"
)

func parseOpportunityFilter(c *fiber.Ctx) services.OpportunityFilter {
	f := services.OpportunityFilter{
		LocationType: c.Query("location_type"),
		Sector:       c.Query("sector"),
		MinHours:     c.QueryInt("min_hours", 0),
	}
	switch c.Query("pcto_certified") {
	case "true", "1":
		v := true
		f.PCTOCertified = &v
	case "false", "0":
		v := false
		f.PCTOCertified = &v
	}
	return f
}

// ListOpportunities returns active postings, filtered by query params.
func ListOpportunities(c *fiber.Ctx) error {
	opportunities, err := services.ListOpportunities(parseOpportunityFilter(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load opportunities"})
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"opportunities": opportunities,
	})
}

// MatchedOpportunities returns postings scored against the caller's
// candidate card, best match first.
func MatchedOpportunities(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	matches, err := services.MatchedOpportunities(userID, parseOpportunityFilter(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to match opportunities"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"matches": matches,
	})
}

type ApplyRequest struct {
	OpportunityID uint   `json:"opportunity_id"`
	CoverLetter   string `json:"cover_letter"`
}

// SubmitApplication applies the calling student to an opportunity.
func SubmitApplication(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.OpportunityID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "opportunity_id required"})
	}

	application, err := services.Apply(userID, req.OpportunityID, req.CoverLetter)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotStudent):
			return c.Status(403).JSON(fiber.Map{"error": "Only students can apply"})
		case errors.Is(err, services.ErrOpportunityNotFound):
			return c.Status(404).JSON(fiber.Map{"error": "Opportunity not found"})
		case errors.Is(err, services.ErrOpportunityInactive):
			return c.Status(409).JSON(fiber.Map{"error": "Opportunity is no longer active"})
		case errors.Is(err, services.ErrDuplicateApplication):
			return c.Status(409).JSON(fiber.Map{"error": "Already applied to this opportunity"})
		case errors.Is(err, services.ErrOpportunityFull):
			return c.Status(409).JSON(fiber.Map{"error": "No spots left", "reason": "no_spots"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to submit application"})
	}
	return c.Status(201).JSON(fiber.Map{
		"success":     true,
		"application": application,
	})
}

// MyApplications lists the caller's applications, newest first.
func MyApplications(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	applications, err := services.UserApplications(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load applications"})
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"applications": applications,
	})
}
