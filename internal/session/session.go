// Package session tracks the authenticated user and implements identity
// operations: sign-up, log-in, follow toggling, and profile mutations.
//
// There is no module-level current user; every engine call receives an
// explicit *Session so tests can run several side by side over in-memory
// stores.
package session

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"wildcard/internal/assets"
	"wildcard/internal/models"
	"wildcard/internal/observability"
	"wildcard/internal/store"
	"wildcard/internal/validation"
)

// Session binds the entity store, the asset store, and the currently
// authenticated user.
type Session struct {
	store   *store.Store
	assets  *assets.Store
	secret  string
	log     *observability.OpLogger
	current *models.User
}

// New creates an unauthenticated session over the given stores. secret
// signs the persisted session token.
func New(st *store.Store, as *assets.Store, secret string) *Session {
	return &Session{
		store:  st,
		assets: as,
		secret: secret,
		log:    observability.NewOpLogger("session"),
	}
}

// Store exposes the underlying entity store.
func (s *Session) Store() *store.Store {
	return s.store
}

// Current returns the authenticated user, or nil.
func (s *Session) Current() *models.User {
	return s.current
}

// CurrentUsername returns the authenticated username, or "".
func (s *Session) CurrentUsername() string {
	if s.current == nil {
		return ""
	}
	return s.current.Username
}

// RequireUser returns the authenticated user or an unauthorized error.
func (s *Session) RequireUser() (*models.User, error) {
	if s.current == nil {
		return nil, models.NewUnauthorizedError("Not logged in")
	}
	return s.current, nil
}

// SignUp registers a new account and logs it in. Username and email
// collisions are detected case-insensitively and reported as duplicates
// without mutating the user collection.
func (s *Session) SignUp(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, models.NewValidationError("Please fill all fields")
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.store.UserByName(username); err == nil {
		return nil, models.NewDuplicateError("An account with this username already exists")
	}
	if _, err := s.store.UserByEmail(email); err == nil {
		return nil, models.NewDuplicateError("An account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user, err := models.NewUser(username, email, string(hash), s.store.Now())
	if err != nil {
		return nil, err
	}
	s.store.AddUser(user)
	if err := s.store.SaveUsers(ctx); err != nil {
		return nil, err
	}

	if err := s.store.Backend().Set(ctx, store.KeyNewUserFlag, []byte("true")); err != nil {
		s.log.Warn(ctx, "signup.newuserflag", err)
	}

	if err := s.establish(ctx, user); err != nil {
		return nil, err
	}
	s.log.Log(ctx, "signup", map[string]any{"username": user.Username})
	return user, nil
}

// LogIn authenticates by username or email (both case-insensitive) and
// password. The mismatch error does not reveal which part failed.
func (s *Session) LogIn(ctx context.Context, identifier, password string) (*models.User, error) {
	if strings.TrimSpace(identifier) == "" || password == "" {
		return nil, models.NewValidationError("Please fill all fields")
	}

	user, err := s.store.UserByName(identifier)
	if err != nil {
		user, err = s.store.UserByEmail(identifier)
	}
	if err != nil {
		return nil, models.NewInvalidCredentialsError()
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, models.NewInvalidCredentialsError()
	}

	if err := s.establish(ctx, user); err != nil {
		return nil, err
	}
	s.log.Log(ctx, "login", map[string]any{"username": user.Username})
	return user, nil
}

// Resume restores the session from the persisted token, the start-up path
// of a returning user. Returns (nil, nil) when no valid session exists.
func (s *Session) Resume(ctx context.Context) (*models.User, error) {
	raw, err := s.store.Backend().Get(ctx, store.KeyCurrentUser)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	username, err := parseToken(string(raw), s.secret)
	if err != nil {
		// A stale or tampered token is not fatal; the user just has
		// to log in again.
		s.log.Warn(ctx, "resume", err)
		_ = s.store.Backend().Delete(ctx, store.KeyCurrentUser)
		return nil, nil
	}
	user, err := s.store.UserByName(username)
	if err != nil {
		_ = s.store.Backend().Delete(ctx, store.KeyCurrentUser)
		return nil, nil
	}
	s.current = user
	s.mergeProfileImages(ctx, user)
	return user, nil
}

// LogOut clears the persisted session.
func (s *Session) LogOut(ctx context.Context) error {
	s.current = nil
	return s.store.Backend().Delete(ctx, store.KeyCurrentUser)
}

// ConsumeNewUserFlag reports whether the account was just created, and
// clears the flag. The caller shows the welcome screen on true.
func (s *Session) ConsumeNewUserFlag(ctx context.Context) bool {
	raw, err := s.store.Backend().Get(ctx, store.KeyNewUserFlag)
	if err != nil || raw == nil {
		return false
	}
	_ = s.store.Backend().Delete(ctx, store.KeyNewUserFlag)
	return string(raw) == "true"
}

// FollowToggle follows target when not yet followed and unfollows
// otherwise, updating both users' follower/following sets symmetrically.
// The target receives a follow notification only when the result is "now
// following".
func (s *Session) FollowToggle(ctx context.Context, targetUsername string) (*models.User, *models.User, error) {
	me, err := s.RequireUser()
	if err != nil {
		return nil, nil, err
	}
	if strings.EqualFold(me.Username, targetUsername) {
		return nil, nil, models.NewValidationError("You cannot follow yourself")
	}
	target, err := s.store.UserByName(targetUsername)
	if err != nil {
		return nil, nil, err
	}

	nowFollowing := !me.Follows(target.Username)
	if nowFollowing {
		me.AddFollowing(target.Username)
		target.AddFollower(me.Username)
	} else {
		me.RemoveFollowing(target.Username)
		target.RemoveFollower(me.Username)
	}
	if err := s.store.SaveUsers(ctx); err != nil {
		return nil, nil, err
	}

	if nowFollowing {
		n := models.NewNotification(models.NotificationFollow, me.Username, s.store.Now())
		if err := s.store.AppendNotification(ctx, target.Username, n); err != nil {
			return nil, nil, err
		}
	}

	s.log.Log(ctx, "follow_toggle", map[string]any{
		"username": me.Username,
		"target":   target.Username,
		"followed": nowFollowing,
	})
	return me, target, nil
}

// RecordProfileView bumps the target's profile view counter. Viewing your
// own profile does not count.
func (s *Session) RecordProfileView(ctx context.Context, targetUsername string) error {
	me, err := s.RequireUser()
	if err != nil {
		return err
	}
	if strings.EqualFold(me.Username, targetUsername) {
		return nil
	}
	target, err := s.store.UserByName(targetUsername)
	if err != nil {
		return err
	}
	target.ProfileViews++
	return s.store.SaveUsers(ctx)
}

// UpdateProfileImage stores a new profile picture or banner through the
// asset pipeline and records its key on the user.
func (s *Session) UpdateProfileImage(ctx context.Context, kind string, payload []byte) error {
	me, err := s.RequireUser()
	if err != nil {
		return err
	}
	key, err := s.assets.Put(ctx, me.Username, kind, payload)
	if err != nil {
		return err
	}
	switch kind {
	case assets.KindPicture:
		me.ProfilePicture = key
	case assets.KindBanner:
		me.ProfileBanner = key
	default:
		return models.NewValidationError("Invalid image kind")
	}
	return s.store.SaveUsers(ctx)
}

// establish signs and persists the session token and sets the current
// user, merging stored profile images into the in-memory record.
func (s *Session) establish(ctx context.Context, user *models.User) error {
	token, err := signToken(user.Username, s.secret, s.store.Now())
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.store.Backend().Set(ctx, store.KeyCurrentUser, []byte(token)); err != nil {
		return err
	}
	s.current = user
	s.mergeProfileImages(ctx, user)
	return nil
}

// mergeProfileImages verifies the user's stored asset keys still resolve;
// a failed read degrades to an unset image.
func (s *Session) mergeProfileImages(ctx context.Context, user *models.User) {
	if s.assets == nil {
		return
	}
	if _, ok := s.assets.Get(ctx, user.ProfilePicture); !ok {
		user.ProfilePicture = ""
	}
	if _, ok := s.assets.Get(ctx, user.ProfileBanner); !ok {
		user.ProfileBanner = ""
	}
}
