package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"

	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusInactive  = "inactive"
)

// User is a marketplace account. Only the columns the realtime core reads are mapped here;
// the rest of the users table belongs to the account service.
type User struct {
	ID           string  `gorm:"primaryKey" json:"id"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Role         string  `gorm:"default:student" json:"role"`
	UniversityID *string `gorm:"index" json:"universityId,omitempty"`
	IsVerified   bool    `json:"isVerified"`
	Status       string  `gorm:"default:active;index" json:"status"`
	Language     string  `gorm:"default:en" json:"language"`
	// TelegramChatID is set once the user links the Campus Cart bot.
	TelegramChatID *int64 `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when the caller did not provide one. Emails are stored
// lowercased so login lookups are case-insensitive.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.Email = NormalizeEmail(u.Email)
	return
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) IsActive() bool { return u.Status == StatusActive }

// DisplayName is what other participants see next to a message.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Identity is the normalized user snapshot attached to a live connection.
type Identity struct {
	UserID       string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	UniversityID string `json:"universityId,omitempty"`
	IsVerified   bool   `json:"isVerified"`
	Language     string `json:"language"`
}

func (u *User) Identity() Identity {
	id := Identity{
		UserID:     u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Name:       u.DisplayName(),
		Role:       u.Role,
		IsVerified: u.IsVerified,
		Language:   u.Language,
	}
	if u.UniversityID != nil {
		id.UniversityID = *u.UniversityID
	}
	return id
}
