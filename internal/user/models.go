// Package user provides user profile and settings management.
//
// Accounts and credentials live in the auth package; this package owns the
// profile fields a user can see and edit about themselves. The two share the
// users table.
package user

import (
	"time"
)

// User represents a user's profile and settings.
type User struct {
	// ID is the unique user identifier (format: usr_XXXX).
	ID string

	// Email is the account email, managed by the auth package and read-only
	// here.
	Email string

	// DisplayName is the name shown on shared trips.
	DisplayName string

	// Locale is the user's preferred language/region (BCP 47 format, e.g., "en-US").
	Locale string

	// HomeCity is the user's home base, used as the default trip origin.
	HomeCity *string

	// CreatedAt is when the user was created.
	CreatedAt time.Time

	// UpdatedAt is when the user was last updated.
	UpdatedAt time.Time
}

// Validation limits for profile fields.
const (
	MaxDisplayNameLength = 80
	MaxHomeCityLength    = 120
)
