package models

import "time"

// UserProfile is a local snapshot of an identity-provider account plus the
// profile fields users edit here. The primary key is the provider's uid, so
// registrations reference users by identifier only — there is no foreign key
// back to the provider. Populated and refreshed by the user sync worker.
type UserProfile struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"index"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL,omitempty"`

	// CreatedAt mirrors the provider's account creation time; the admin user
	// list sorts on it, newest first.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
