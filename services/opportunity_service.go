// services/opportunity_service.go - Opportunity listing and one-click apply
package services

import (
	"encoding/json"
	"time"

	"skaila/database"
	"skaila/logger"
	"skaila/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpportunityFilter narrows the listing.
type OpportunityFilter struct {
	LocationType  string
	Sector        string
	PCTOCertified *bool
	MinHours      int
}

// ListOpportunities returns active postings matching the filter.
func ListOpportunities(f OpportunityFilter) ([]models.Opportunity, error) {
	q := database.GetDB().Preload("Company").Where("active = ?", true)
	if f.LocationType != "" {
		q = q.Where("location_type = ?", f.LocationType)
	}
	if f.Sector != "" {
		q = q.Where("sector = ?", f.Sector)
	}
	if f.PCTOCertified != nil {
		q = q.Where("pcto_certified = ?", *f.PCTOCertified)
	}
	if f.MinHours > 0 {
		q = q.Where("required_hours >= ?", f.MinHours)
	}

	var opportunities []models.Opportunity
	err := q.Order("created_at DESC").Find(&opportunities).Error
	return opportunities, err
}

// MatchedOpportunities lists active postings scored against the
// student's candidate card.
func MatchedOpportunities(userID uint, f OpportunityFilter) ([]ScoredOpportunity, error) {
	card, err := BuildCandidateCard(userID, false)
	if err != nil {
		return nil, err
	}
	opportunities, err := ListOpportunities(f)
	if err != nil {
		return nil, err
	}
	return ScoreOpportunities(card, opportunities), nil
}

// Apply submits a one-click application. The capacity reservation and
// the application insert happen in one transaction: the conditional
// update on spots_filled is the only way capacity moves, so two
// concurrent applicants for the last spot serialise at the row and
// exactly one wins.
func Apply(userID uint, opportunityID uint, coverLetter string) (*models.Application, error) {
	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if user.Role != "student" {
		return nil, ErrNotStudent
	}

	var prior int64
	db.Model(&models.Application{}).
		Where("user_id = ? AND opportunity_id = ?", userID, opportunityID).
		Count(&prior)
	if prior > 0 {
		return nil, ErrDuplicateApplication
	}

	var opp models.Opportunity
	if err := db.Preload("Company").First(&opp, opportunityID).Error; err != nil {
		return nil, ErrOpportunityNotFound
	}
	if !opp.Active {
		return nil, ErrOpportunityInactive
	}

	card, err := BuildCandidateCard(userID, true)
	if err != nil {
		return nil, err
	}
	snapshot := snapshotCard(card)

	// Reference is what companies see; internal ids stay internal.
	application := models.Application{
		Reference:     uuid.New().String(),
		UserID:        userID,
		OpportunityID: opportunityID,
		Status:        models.ApplicationPending,
		CardSnapshot:  snapshot,
		CoverLetter:   coverLetter,
		CreatedAt:     time.Now().UTC(),
	}

	err = withRetry(func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Opportunity{}).
				Where("id = ? AND spots_filled < spots_available AND active = ?", opportunityID, true).
				UpdateColumn("spots_filled", gorm.Expr("spots_filled + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrOpportunityFull
			}
			return tx.Create(&application).Error
		})
	})
	if err != nil {
		return nil, err
	}

	application.Opportunity = &opp
	logger.Info("application submitted", "user_id", userID, "opportunity_id", opportunityID)
	return &application, nil
}

// snapshotCard freezes the card as plain JSON for the application row.
func snapshotCard(card *CandidateCard) models.JSONMap {
	raw, err := json.Marshal(card)
	if err != nil {
		return models.JSONMap{}
	}
	var snapshot models.JSONMap
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return models.JSONMap{}
	}
	return snapshot
}

// UserApplications lists a student's applications, newest first.
func UserApplications(userID uint) ([]models.Application, error) {
	var applications []models.Application
	err := database.GetDB().
		Preload("Opportunity").Preload("Opportunity.Company").
		Where("user_id = ?", userID).
		Order("created_at DESC").Find(&applications).Error
	return applications, err
}
