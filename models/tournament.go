package models

import (
	"time"

	"gorm.io/datatypes"

	"tribex-platform/forms"
)

// Tournament is the central community entity. It owns its registration form:
// RegistrationFields is an ordered list of admin-authored field definitions,
// replaced wholesale whenever the form builder saves. An absent or empty list
// means the registration form has no custom fields.
type Tournament struct {
	ID           string  `json:"id" gorm:"primaryKey"`
	Name         string  `json:"name" gorm:"not null"`
	Game         string  `json:"game" gorm:"not null"`
	Description  string  `json:"description" gorm:"type:text"`
	Prize        float64 `json:"prize" gorm:"default:0"`
	Participants int     `json:"participants" gorm:"default:0"`
	ImageURL     string  `json:"imageUrl"`
	OrganizerID  string  `json:"organizerId" gorm:"index"`

	Status    string     `json:"status" gorm:"default:'draft'"` // draft, scheduled, published
	PublishAt *time.Time `json:"publishAt,omitempty" gorm:"index"`

	StartDate time.Time `json:"startDate" gorm:"not null;index"`
	EndDate   time.Time `json:"endDate"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	RegistrationFields forms.FieldList `json:"registrationFields,omitempty"`
}

// Registration records one user's completed sign-up for one tournament.
// Immutable after creation: there is no edit or withdraw operation. The
// composite unique index backs the one-registration-per-user invariant that
// the endpoint also pre-checks explicitly.
type Registration struct {
	ID           string `json:"id" gorm:"primaryKey"`
	TournamentID string `json:"tournamentId" gorm:"not null;index;uniqueIndex:idx_registration_tournament_user"`
	UserID       string `json:"userId" gorm:"not null;index;uniqueIndex:idx_registration_tournament_user"`

	// CustomData maps field name to the submitted scalar value, with
	// file-typed fields holding the public /uploads path instead of content.
	CustomData datatypes.JSONMap `json:"customData"`

	RegisteredAt time.Time `json:"registeredAt" gorm:"autoCreateTime"`
}
