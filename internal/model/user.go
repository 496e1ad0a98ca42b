// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
// PasswordHash is never serialized.
type User struct {
	ID             int       `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Name           *string   `json:"name"`
	PinCode        *string   `json:"pin_code"`
	ProfilePicture *string   `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserProfile is the public projection of a User, without the
// password hash.
type UserProfile struct {
	ID             int     `json:"id"`
	Email          string  `json:"email"`
	Name           *string `json:"name"`
	PinCode        *string `json:"pin_code"`
	ProfilePicture *string `json:"profile_picture"`
}

// Profile projects the user into its public shape.
func (u *User) Profile() *UserProfile {
	return &UserProfile{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		PinCode:        u.PinCode,
		ProfilePicture: u.ProfilePicture,
	}
}
