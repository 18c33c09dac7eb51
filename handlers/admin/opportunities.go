// handlers/admin/opportunities.go
package admin

import (
	"skaila/database"
	"skaila/models"

	"github.com/gofiber/fiber/v2"
)

// CreateCompany registers a partner company.
func CreateCompany(c *fiber.Ctx) error {
	var company models.Company
	if err := c.BodyParser(&company); err != nil || company.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name required"})
	}

	if err := database.GetDB().Create(&company).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create company"})
	}
	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"company": company,
	})
}

// ListCompanies returns all partner companies.
func ListCompanies(c *fiber.Ctx) error {
	var companies []models.Company
	if err := database.GetDB().Order("name").Find(&companies).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch companies"})
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"companies": companies,
	})
}

// CreateOpportunity publishes a new posting.
func CreateOpportunity(c *fiber.Ctx) error {
	var opp models.Opportunity
	if err := c.BodyParser(&opp); err != nil || opp.Title == "" || opp.CompanyID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "title and company_id required"})
	}
	if opp.SpotsAvailable <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "spots_available must be positive"})
	}
	opp.SpotsFilled = 0
	opp.Active = true

	if err := database.GetDB().Create(&opp).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create opportunity"})
	}
	return c.Status(201).JSON(fiber.Map{
		"success":     true,
		"opportunity": opp,
	})
}

// UpdateOpportunity edits a posting. Spots filled is never touched
// here, only the application path moves it.
func UpdateOpportunity(c *fiber.Ctx) error {
	oppID, err := c.ParamsInt("id")
	if err != nil || oppID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid opportunity id"})
	}

	db := database.GetDB()
	var opp models.Opportunity
	if err := db.First(&opp, oppID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Opportunity not found"})
	}

	var patch struct {
		Title          *string  `json:"title"`
		Description    *string  `json:"description"`
		Sector         *string  `json:"sector"`
		Type           *string  `json:"type"`
		LocationType   *string  `json:"location_type"`
		RequiredHours  *int     `json:"required_hours"`
		Compensation   *float64 `json:"compensation"`
		PCTOCertified  *bool    `json:"pcto_certified"`
		SpotsAvailable *int     `json:"spots_available"`
		Active         *bool    `json:"active"`
	}
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if patch.Title != nil {
		opp.Title = *patch.Title
	}
	if patch.Description != nil {
		opp.Description = *patch.Description
	}
	if patch.Sector != nil {
		opp.Sector = *patch.Sector
	}
	if patch.Type != nil {
		opp.Type = *patch.Type
	}
	if patch.LocationType != nil {
		opp.LocationType = *patch.LocationType
	}
	if patch.RequiredHours != nil {
		opp.RequiredHours = *patch.RequiredHours
	}
	if patch.Compensation != nil {
		opp.Compensation = *patch.Compensation
	}
	if patch.PCTOCertified != nil {
		opp.PCTOCertified = *patch.PCTOCertified
	}
	if patch.SpotsAvailable != nil && *patch.SpotsAvailable >= opp.SpotsFilled {
		opp.SpotsAvailable = *patch.SpotsAvailable
	}
	if patch.Active != nil {
		opp.Active = *patch.Active
	}

	if err := db.Save(&opp).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update opportunity"})
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"opportunity": opp,
	})
}

// ListApplications returns applications for one opportunity.
func ListApplications(c *fiber.Ctx) error {
	oppID, err := c.ParamsInt("id")
	if err != nil || oppID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid opportunity id"})
	}

	var applications []models.Application
	err = database.GetDB().
		Where("opportunity_id = ?", oppID).
		Order("created_at DESC").
		Find(&applications).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch applications"})
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"applications": applications,
	})
}

type ApplicationStatusRequest struct {
	Status string `json:"status"`
}

// SetApplicationStatus moves an application through review.
func SetApplicationStatus(c *fiber.Ctx) error {
	appID, err := c.ParamsInt("id")
	if err != nil || appID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid application id"})
	}

	var req ApplicationStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	switch req.Status {
	case models.ApplicationPending, models.ApplicationReviewed,
		models.ApplicationAccepted, models.ApplicationRejected:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "Invalid status"})
	}

	result := database.GetDB().Model(&models.Application{}).
		Where("id = ?", appID).
		Update("status", req.Status)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update application"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Application not found"})
	}
	return c.JSON(fiber.Map{"success": true})
}
