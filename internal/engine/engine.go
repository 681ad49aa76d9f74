// Package engine applies interaction events to posts and derives the
// resulting notifications. All operations are synchronous and complete
// before returning; the caller rerenders from the returned state.
package engine

import (
	"context"
	"sort"
	"strings"

	"wildcard/internal/models"
	"wildcard/internal/observability"
	"wildcard/internal/session"
	"wildcard/internal/store"
)

// Kind identifies an interaction event.
type Kind string

const (
	KindLike     Kind = "like"
	KindBookmark Kind = "bookmark"
	KindShare    Kind = "share"
	KindView     Kind = "view"
	KindComment  Kind = "comment"
	KindDelete   Kind = "delete"
)

// Interaction is one event applied to a post. Text carries the comment
// body for KindComment and is ignored otherwise.
type Interaction struct {
	Kind Kind
	Text string
}

// CreatePostInput is the payload for a new post.
type CreatePostInput struct {
	Type       string
	Content    string
	GroupID    *int64
	IsWildCard bool
	MediaKey   string
}

// Engine mutates the entity store in response to events.
type Engine struct {
	store *store.Store
	log   *observability.OpLogger
}

// New creates an Engine over the shared store.
func New(st *store.Store) *Engine {
	return &Engine{
		store: st,
		log:   observability.NewOpLogger("engine"),
	}
}

// CreatePost submits a new post authored by the session user. Posting
// into a group requires membership.
func (e *Engine) CreatePost(ctx context.Context, sess *session.Session, in CreatePostInput) (*models.Post, error) {
	user, err := sess.RequireUser()
	if err != nil {
		return nil, err
	}

	if in.GroupID != nil {
		group, err := e.store.GroupByID(*in.GroupID)
		if err != nil {
			return nil, err
		}
		if !group.HasMember(user.Username) {
			return nil, models.NewUnauthorizedError("Only members can post in this group")
		}
	}

	post, err := models.NewPost(e.store.NextPostID(), user.Username, in.Type, in.Content, e.store.Now())
	if err != nil {
		return nil, err
	}
	post.GroupID = in.GroupID
	post.IsWildCard = in.IsWildCard
	post.MediaKey = in.MediaKey

	e.store.AddPost(post)
	if err := e.store.SavePosts(ctx); err != nil {
		return nil, err
	}
	e.log.Log(ctx, "create_post", map[string]any{"post_id": post.ID, "author": post.Author, "type": post.Type})
	return post, nil
}

// Apply runs one interaction against a post and fans out the matching
// notification to the post author. For delete it returns (nil, nil) on
// success; every other kind returns the updated post.
func (e *Engine) Apply(ctx context.Context, sess *session.Session, postID int64, in Interaction) (*models.Post, error) {
	post, err := e.apply(ctx, sess, postID, in)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.InteractionsApplied.WithLabelValues(string(in.Kind), outcome).Inc()
	return post, err
}

func (e *Engine) apply(ctx context.Context, sess *session.Session, postID int64, in Interaction) (*models.Post, error) {
	actor, err := sess.RequireUser()
	if err != nil {
		return nil, err
	}
	post, err := e.store.PostByID(postID)
	if err != nil {
		return nil, err
	}

	// Set for kinds that notify the author; nil fan-out for the rest.
	var notifType models.NotificationType

	switch in.Kind {
	case KindDelete:
		if post.Author != actor.Username {
			return nil, models.NewUnauthorizedError("You can only delete your own posts")
		}
		e.store.RemovePost(postID)
		if err := e.store.SavePosts(ctx); err != nil {
			return nil, err
		}
		e.log.Log(ctx, "delete", map[string]any{"post_id": postID, "actor": actor.Username})
		return nil, nil

	case KindLike:
		post.IsLiked = !post.IsLiked
		if post.IsLiked {
			post.Likes++
			notifType = models.NotificationLike
		} else {
			post.Likes--
		}

	case KindBookmark:
		post.IsBookmarked = !post.IsBookmarked

	case KindShare:
		post.Shares++
		notifType = models.NotificationShare

	case KindView:
		// One increment per call; per-session dedup is the caller's
		// contract.
		post.Views++

	case KindComment:
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return nil, models.NewValidationError("Comment text is required")
		}
		post.Comments = append(post.Comments, models.Comment{
			Author:    actor.Username,
			Text:      in.Text,
			CreatedAt: e.store.Now(),
		})
		notifType = models.NotificationComment

	default:
		return nil, models.NewValidationError("Unknown interaction kind")
	}

	if err := e.store.SavePosts(ctx); err != nil {
		return nil, err
	}

	if notifType != "" && actor.Username != post.Author {
		n := models.NewNotification(notifType, actor.Username, e.store.Now()).ForPost(post)
		if err := e.store.AppendNotification(ctx, post.Author, n); err != nil {
			return nil, err
		}
	}

	e.log.Log(ctx, string(in.Kind), map[string]any{"post_id": postID, "actor": actor.Username})
	return post, nil
}

// Notifications returns the session user's collection, newest first.
func (e *Engine) Notifications(ctx context.Context, sess *session.Session) ([]*models.Notification, error) {
	user, err := sess.RequireUser()
	if err != nil {
		return nil, err
	}
	list, err := e.store.Notifications(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	sorted := make([]*models.Notification, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted, nil
}

// MarkNotificationsRead flips every notification of the session user to
// read.
func (e *Engine) MarkNotificationsRead(ctx context.Context, sess *session.Session) error {
	user, err := sess.RequireUser()
	if err != nil {
		return err
	}
	return e.store.MarkNotificationsRead(ctx, user.Username)
}
