package domain

import "time"

// User represents a registered account
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordDigest string    `json:"-"`
	Bio            string    `json:"bio"`
	Avatar         string    `json:"avatar"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserSummary is the public projection of a user embedded in other views
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// Summary returns the public projection of the user
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}
}

// ProfileUpdate carries the mutable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Username *string
	Bio      *string
}
