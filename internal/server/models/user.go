// Package models contains the domain types shared by repositories,
// services and the HTTP layer.
package models

import "time"

// User is a registered account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Bio          *string
	Image        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Registration is the input of a sign-up.
type Registration struct {
	Username string
	Email    string
	Password string
	Bio      *string
	Image    *string
}

// UserUpdate carries a partial update. Nil fields are left unchanged.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
	Bio      *string
	Image    *string
}

// Empty reports whether the update sets nothing.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.Password == nil && u.Bio == nil && u.Image == nil
}

// Profile is the public view of a user as seen by a viewer.
type Profile struct {
	Username  string
	Bio       *string
	Image     *string
	Following bool
}

// ProfileOf builds the profile of u for a viewer whose follow state is following.
func ProfileOf(u *User, following bool) *Profile {
	return &Profile{
		Username:  u.Username,
		Bio:       u.Bio,
		Image:     u.Image,
		Following: following,
	}
}
