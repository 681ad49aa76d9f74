package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationShare   NotificationType = "share"
	NotificationFollow  NotificationType = "follow"
)

// Notification lives in the recipient's per-user collection. It is created
// as a side effect of an interaction on the recipient's post or of a follow
// event, mutated only by mark-as-read, and never deleted.
type Notification struct {
	ID       string           `json:"id"`
	Type     NotificationType `json:"type"`
	FromUser string           `json:"from_user"`
	// PostID and Snippet are set for post-bound notifications and empty
	// for follows.
	PostID    *int64    `json:"post_id,omitempty"`
	Snippet   string    `json:"snippet,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotification constructs a notification with a fresh ID.
func NewNotification(typ NotificationType, fromUser string, now time.Time) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		Type:      typ,
		FromUser:  fromUser,
		CreatedAt: now,
	}
}

// ForPost attaches the post reference and content snippet.
func (n *Notification) ForPost(post *Post) *Notification {
	id := post.ID
	n.PostID = &id
	n.Snippet = post.Snippet()
	return n
}
