// Package models contains data structures for the application's domain models.
package models

import (
	"slices"
	"strings"
	"time"
)

// User represents an account in the Wild Card application. Username is the
// unique key; lookups and follower sets reference users by it.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	// PasswordHash is persisted with the record; the store is the only
	// reader, there is no external API surface to hide it from.
	PasswordHash string   `json:"password_hash"`
	Followers    []string `json:"followers"`
	Following    []string `json:"following"`
	ProfileViews int      `json:"profile_views"`
	// ProfilePicture and ProfileBanner are keys into the binary asset
	// store, not inline payloads.
	ProfilePicture string    `json:"profile_picture,omitempty"`
	ProfileBanner  string    `json:"profile_banner,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUser constructs a validated user record. The credential is stored as
// given; hashing is the session layer's concern.
func NewUser(username, email, passwordHash string, now time.Time) (*User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, NewValidationError("Username is required")
	}
	if strings.TrimSpace(email) == "" {
		return nil, NewValidationError("Email is required")
	}
	if passwordHash == "" {
		return nil, NewValidationError("Password is required")
	}
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

// Follows reports whether the user follows target.
func (u *User) Follows(target string) bool {
	return slices.Contains(u.Following, target)
}

// AddFollowing appends target to the following set if absent.
func (u *User) AddFollowing(target string) {
	if !slices.Contains(u.Following, target) {
		u.Following = append(u.Following, target)
	}
}

// RemoveFollowing drops target from the following set.
func (u *User) RemoveFollowing(target string) {
	u.Following = slices.DeleteFunc(u.Following, func(s string) bool { return s == target })
}

// AddFollower appends username to the follower set if absent.
func (u *User) AddFollower(username string) {
	if !slices.Contains(u.Followers, username) {
		u.Followers = append(u.Followers, username)
	}
}

// RemoveFollower drops username from the follower set.
func (u *User) RemoveFollower(username string) {
	u.Followers = slices.DeleteFunc(u.Followers, func(s string) bool { return s == username })
}
