package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	PostStatusActive = "active"
	PostStatusClosed = "closed"
)

// RoommatePost is a roommate-seeker ad. The listing service owns its lifecycle; the realtime
// core only reads the fields used for compatibility scoring.
type RoommatePost struct {
	ID                string `gorm:"primaryKey" json:"id"`
	UserID            string `gorm:"not null;index" json:"userId"`
	User              *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title             string `json:"title"`
	BudgetMin         int    `json:"budgetMin"`
	BudgetMax         int    `json:"budgetMax"`
	HousingType       string `json:"housingType"`
	PreferredLocation string `json:"preferredLocation"`
	CleanlinessLevel  int    `json:"cleanlinessLevel"`
	NoiseTolerance    int    `json:"noiseTolerance"`
	SocialLevel       int    `json:"socialLevel"`
	SmokingAllowed    bool   `json:"smokingAllowed"`
	PetsAllowed       bool   `json:"petsAllowed"`
	// Tags are free-form lifestyle labels shown on the ad ("vegetarian", "night owl").
	Tags      pq.StringArray `gorm:"type:text[]" json:"tags"`
	Status    string         `gorm:"default:active;index" json:"status"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (p *RoommatePost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
