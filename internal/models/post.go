package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Post types supported by the feed.
const (
	PostTypeText  = "text"
	PostTypeVideo = "video"
)

// SnippetLength caps the post-content excerpt carried on notifications.
const SnippetLength = 30

// Post represents a feed entry. The ID doubles as the recency sort key: it
// is derived from creation time and strictly increases across the life of
// the store.
type Post struct {
	ID         int64  `json:"id"`
	Author     string `json:"author"`
	Type       string `json:"type"`
	GroupID    *int64 `json:"group_id,omitempty"`
	IsWildCard bool   `json:"is_wild_card"`
	Content    string `json:"content"`
	MediaKey   string `json:"media_key,omitempty"`
	Likes      int    `json:"likes"`
	// IsLiked and IsBookmarked are viewer-relative flags materialized on
	// the shared record. Correct only because a single authenticated
	// viewer reads the store at a time; a multi-user redesign would move
	// them into a per-(user, post) relation.
	IsLiked      bool      `json:"is_liked"`
	IsBookmarked bool      `json:"is_bookmarked"`
	Comments     []Comment `json:"comments"`
	Shares       int       `json:"shares"`
	Views        int       `json:"views"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewPost constructs a validated post record.
func NewPost(id int64, author, postType, content string, now time.Time) (*Post, error) {
	switch postType {
	case PostTypeText, PostTypeVideo:
	default:
		return nil, NewValidationError("Invalid post type")
	}
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("Content is required")
	}
	if author == "" {
		return nil, NewValidationError("Author is required")
	}
	return &Post{
		ID:        id,
		Author:    author,
		Type:      postType,
		Content:   content,
		CreatedAt: now,
	}, nil
}

// Snippet returns the leading SnippetLength runes of the post content,
// used on notifications.
func (p *Post) Snippet() string {
	if utf8.RuneCountInString(p.Content) <= SnippetLength {
		return p.Content
	}
	runes := []rune(p.Content)
	return string(runes[:SnippetLength])
}

// Comment is owned exclusively by its parent post. Comments are appended
// on submission and never edited or removed on their own; they disappear
// only when the whole post is deleted.
type Comment struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
