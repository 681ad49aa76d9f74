// Package groups implements group creation and append-only membership.
package groups

import (
	"context"

	"wildcard/internal/models"
	"wildcard/internal/observability"
	"wildcard/internal/session"
	"wildcard/internal/store"
)

// Manager mutates the group collection.
type Manager struct {
	store *store.Store
	log   *observability.OpLogger
}

// NewManager creates a Manager over the shared store.
func NewManager(st *store.Store) *Manager {
	return &Manager{
		store: st,
		log:   observability.NewOpLogger("groups"),
	}
}

// Create registers a new group with the session user as creator and first
// member. Name and description must be non-empty after trimming.
func (m *Manager) Create(ctx context.Context, sess *session.Session, name, description string) (*models.Group, error) {
	user, err := sess.RequireUser()
	if err != nil {
		return nil, err
	}

	group, err := models.NewGroup(m.store.NextGroupID(), name, description, user.Username, m.store.Now())
	if err != nil {
		return nil, err
	}
	m.store.AddGroup(group)
	if err := m.store.SaveGroups(ctx); err != nil {
		return nil, err
	}
	m.log.Log(ctx, "create", map[string]any{"group_id": group.ID, "creator": user.Username})
	return group, nil
}

// Join appends the session user to the group's membership. Joining a
// group twice is a no-op, not an error; there is no leave operation.
func (m *Manager) Join(ctx context.Context, sess *session.Session, groupID int64) (*models.Group, error) {
	user, err := sess.RequireUser()
	if err != nil {
		return nil, err
	}
	group, err := m.store.GroupByID(groupID)
	if err != nil {
		return nil, err
	}

	if group.HasMember(user.Username) {
		return group, nil
	}
	group.AddMember(user.Username)
	if err := m.store.SaveGroups(ctx); err != nil {
		return nil, err
	}
	m.log.Log(ctx, "join", map[string]any{"group_id": group.ID, "username": user.Username})
	return group, nil
}
