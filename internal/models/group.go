package models

import (
	"slices"
	"strings"
	"time"
)

// Group represents a community space. Membership is append-only: there is
// no leave operation, and groups are never deleted.
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Creator     string    `json:"creator"`
	Members     []string  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewGroup constructs a validated group with the creator as first member.
func NewGroup(id int64, name, description, creator string, now time.Time) (*Group, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return nil, NewValidationError("Group name is required")
	}
	if description == "" {
		return nil, NewValidationError("Group description is required")
	}
	return &Group{
		ID:          id,
		Name:        name,
		Description: description,
		Creator:     creator,
		Members:     []string{creator},
		CreatedAt:   now,
	}, nil
}

// HasMember reports whether username belongs to the group.
func (g *Group) HasMember(username string) bool {
	return slices.Contains(g.Members, username)
}

// AddMember appends username if absent. Joining twice is a no-op, not an
// error.
func (g *Group) AddMember(username string) {
	if !g.HasMember(username) {
		g.Members = append(g.Members, username)
	}
}
