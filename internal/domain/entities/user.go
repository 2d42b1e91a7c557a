package entities

import "time"

// User is an identity issued by the auth API.
type User struct {
	UID         string
	Email       string
	DisplayName string
	Username    string
	Token       string
	ExpiresAt   time.Time // zero when the token does not expire
}

// Expired reports whether the user's token has expired at t.
func (u User) Expired(t time.Time) bool {
	return !u.ExpiresAt.IsZero() && !t.Before(u.ExpiresAt)
}

// Name returns the best available human-readable name.
func (u User) Name() string {
	switch {
	case u.DisplayName != "":
		return u.DisplayName
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}
