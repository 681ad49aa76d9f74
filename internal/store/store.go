// Package store implements the entity store: normalized in-memory
// collections of users, posts, groups, and per-user notifications, with
// load/save hooks to an injected key-value persistence collaborator.
//
// Every mutation rewrites the touched collection as one JSON blob. The
// contract is last write wins; there is no diffing, no transaction, and no
// rollback. Exactly one Store is authoritative per data namespace.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"wildcard/internal/kv"
	"wildcard/internal/models"
	"wildcard/internal/observability"
	"wildcard/internal/validation"
)

// Store holds the normalized collections. The engine, feed composer, and
// session layers all operate on one shared instance.
//
// The logical model is a single authenticated viewer; the mutex only makes
// the type safe to share between the CLI entry point and tests.
type Store struct {
	mu sync.Mutex

	backend kv.Store
	log     *observability.OpLogger
	now     func() time.Time

	users  []*models.User
	posts  []*models.Post
	groups []*models.Group
	// notifications are loaded lazily per recipient.
	notifications map[string][]*models.Notification

	lastPostID  int64
	lastGroupID int64
}

// New creates a Store over the given persistence backend and loads the
// global collections. Missing keys load as empty collections.
func New(ctx context.Context, backend kv.Store) (*Store, error) {
	s := &Store{
		backend:       backend,
		log:           observability.NewOpLogger("store"),
		now:           time.Now,
		notifications: make(map[string][]*models.Notification),
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// SetClock overrides the time source. Test helper.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Backend exposes the persistence collaborator for sibling layers that
// store non-collection payloads (session token, binary assets).
func (s *Store) Backend() kv.Store {
	return s.backend
}

func (s *Store) load(ctx context.Context) error {
	ctx, span := observability.StartSpan(ctx, "store.load")
	defer span.End()

	if err := s.loadCollection(ctx, KeyUsers, &s.users); err != nil {
		return err
	}
	if err := s.loadCollection(ctx, KeyPosts, &s.posts); err != nil {
		return err
	}
	if err := s.loadCollection(ctx, KeyGroups, &s.groups); err != nil {
		return err
	}

	for _, p := range s.posts {
		if p.ID > s.lastPostID {
			s.lastPostID = p.ID
		}
	}
	for _, g := range s.groups {
		if g.ID > s.lastGroupID {
			s.lastGroupID = g.ID
		}
	}

	s.log.Log(ctx, "load", map[string]any{
		"users":  len(s.users),
		"posts":  len(s.posts),
		"groups": len(s.groups),
	})
	return nil
}

func (s *Store) loadCollection(ctx context.Context, key string, dest any) error {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("loading %s: %w", key, err)
	}
	if raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (s *Store) saveCollection(ctx context.Context, key string, v any) error {
	ctx, span := observability.StartSpan(ctx, "store.save."+key)
	defer span.End()

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	observability.StoreSaves.WithLabelValues(key).Inc()
	return nil
}

// SaveUsers persists the whole user collection.
func (s *Store) SaveUsers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCollection(ctx, KeyUsers, s.users)
}

// SavePosts persists the whole post collection.
func (s *Store) SavePosts(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCollection(ctx, KeyPosts, s.posts)
}

// SaveGroups persists the whole group collection.
func (s *Store) SaveGroups(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCollection(ctx, KeyGroups, s.groups)
}

// SaveNotifications persists one recipient's notification collection.
func (s *Store) SaveNotifications(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCollection(ctx, NotificationsKey(username), s.notifications[username])
}

// Users returns the user collection. Callers treat it as read-only;
// mutations go through the session layer followed by SaveUsers.
func (s *Store) Users() []*models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users
}

// Posts returns the post collection, newest last (insertion order).
func (s *Store) Posts() []*models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts
}

// Groups returns the group collection.
func (s *Store) Groups() []*models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups
}

// UserByName finds a user by username. Lookups normalize both sides, so
// matching is case-insensitive and ignores stray whitespace.
func (s *Store) UserByName(username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := validation.NormalizeIdentity(username)
	for _, u := range s.users {
		if validation.NormalizeIdentity(u.Username) == needle {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("User", username)
}

// UserByEmail finds a user by email, normalized the same way.
func (s *Store) UserByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := validation.NormalizeIdentity(email)
	for _, u := range s.users {
		if validation.NormalizeIdentity(u.Email) == needle {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("User", email)
}

// AddUser appends a user to the collection. Uniqueness is the session
// layer's concern; the store only holds the data.
func (s *Store) AddUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
}

// PostByID finds a post.
func (s *Store) PostByID(id int64) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, models.NewNotFoundError("Post", id)
}

// AddPost appends a post to the collection.
func (s *Store) AddPost(p *models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, p)
	if p.ID > s.lastPostID {
		s.lastPostID = p.ID
	}
}

// RemovePost drops the post with the given ID. Missing posts are a no-op;
// the engine checks existence and authorship first.
func (s *Store) RemovePost(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.posts[:0]
	for _, p := range s.posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.posts = kept
}

// NextPostID derives a creation-ordered identifier. IDs track wall-clock
// milliseconds but stay strictly monotonic even when two posts land in the
// same millisecond.
func (s *Store) NextPostID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.now().UnixMilli()
	if id <= s.lastPostID {
		id = s.lastPostID + 1
	}
	s.lastPostID = id
	return id
}

// GroupByID finds a group.
func (s *Store) GroupByID(id int64) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, models.NewNotFoundError("Group", id)
}

// AddGroup appends a group to the collection.
func (s *Store) AddGroup(g *models.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, g)
	if g.ID > s.lastGroupID {
		s.lastGroupID = g.ID
	}
}

// NextGroupID returns the next group identifier.
func (s *Store) NextGroupID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastGroupID++
	return s.lastGroupID
}

// Notifications returns the recipient's collection, loading it from the
// backend on first access.
func (s *Store) Notifications(ctx context.Context, username string) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notificationsLocked(ctx, username)
}

func (s *Store) notificationsLocked(ctx context.Context, username string) ([]*models.Notification, error) {
	if cached, ok := s.notifications[username]; ok {
		return cached, nil
	}
	var loaded []*models.Notification
	if err := s.loadCollection(ctx, NotificationsKey(username), &loaded); err != nil {
		return nil, err
	}
	s.notifications[username] = loaded
	return loaded, nil
}

// AppendNotification enqueues a notification into the recipient's
// collection and persists it.
func (s *Store) AppendNotification(ctx context.Context, recipient string, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.notificationsLocked(ctx, recipient)
	if err != nil {
		return err
	}
	s.notifications[recipient] = append(existing, n)
	observability.NotificationsFanned.WithLabelValues(string(n.Type)).Inc()
	return s.saveCollection(ctx, NotificationsKey(recipient), s.notifications[recipient])
}

// MarkNotificationsRead flips the read flag on every notification in the
// recipient's collection and persists it.
func (s *Store) MarkNotificationsRead(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.notificationsLocked(ctx, username)
	if err != nil {
		return err
	}
	for _, n := range existing {
		n.Read = true
	}
	return s.saveCollection(ctx, NotificationsKey(username), existing)
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now()
}
