// models/opportunity.go
package models

import (
	"time"
)

// Application statuses.
const (
	ApplicationPending  = "pending"
	ApplicationReviewed = "reviewed"
	ApplicationAccepted = "accepted"
	ApplicationRejected = "rejected"
)

type Company struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null;index" json:"name"`
	Sector   string `gorm:"index" json:"sector"`
	Location string `json:"location"`
	Website  string `json:"website"`

	CreatedAt time.Time `json:"created_at"`
}

// Opportunity is an internship or PCTO posting from a partner company.
type Opportunity struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	CompanyID   uint     `gorm:"not null;index" json:"company_id"`
	Company     *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Title       string   `gorm:"not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Sector      string   `gorm:"index" json:"sector"`
	Type        string   `gorm:"default:internship" json:"type"`

	// LocationType is one of: remote, onsite, hybrid.
	LocationType  string  `gorm:"default:onsite;index" json:"location_type"`
	RequiredHours int     `json:"required_hours"`
	Compensation  float64 `json:"compensation"`
	PCTOCertified bool    `gorm:"default:false;index" json:"pcto_certified"`

	SpotsAvailable int  `gorm:"not null;default:1" json:"spots_available"`
	SpotsFilled    int  `gorm:"not null;default:0" json:"spots_filled"`
	// No column default: writers set Active explicitly so that
	// inactive rows survive the insert.
	Active bool `gorm:"index" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Remote reports whether the posting permits remote work.
func (o *Opportunity) Remote() bool {
	return o.LocationType == "remote" || o.LocationType == "hybrid"
}

// Application links a student to an opportunity. One per pair. The
// candidate card is snapshotted at submission time.
type Application struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Reference     string  `gorm:"uniqueIndex" json:"reference"`
	UserID        uint    `gorm:"not null;uniqueIndex:idx_user_opportunity" json:"user_id"`
	OpportunityID uint    `gorm:"not null;uniqueIndex:idx_user_opportunity" json:"opportunity_id"`
	Status        string  `gorm:"not null;default:pending;index" json:"status"`
	CardSnapshot  JSONMap `gorm:"type:text" json:"card_snapshot,omitempty"`
	CoverLetter   string  `gorm:"type:text" json:"cover_letter"`

	CreatedAt time.Time `json:"applied_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Opportunity *Opportunity `gorm:"foreignKey:OpportunityID" json:"opportunity,omitempty"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}

func (Application) TableName() string {
	return "applications"
}
