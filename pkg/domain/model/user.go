package model

import (
	"time"

	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// User represents an authenticated user. The ID is the subject of the verified
// identity token, so users are upserted rather than created.
type User struct {
	ID              types.UserID
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks if the User is valid
func (u *User) Validate() error {
	if u.ID == "" {
		return goerr.New("user ID is required")
	}
	return nil
}

// DisplayName returns the best human-readable name available.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Email != "":
		return u.Email
	default:
		return string(u.ID)
	}
}
