package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserValidation(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name     string
		username string
		email    string
		hash     string
		wantErr  bool
	}{
		{name: "valid", username: "elena", email: "elena@example.com", hash: "x", wantErr: false},
		{name: "empty username", username: "  ", email: "elena@example.com", hash: "x", wantErr: true},
		{name: "empty email", username: "elena", email: "", hash: "x", wantErr: true},
		{name: "empty credential", username: "elena", email: "elena@example.com", hash: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser(tt.username, tt.email, tt.hash, now)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsCode(err, CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.username, u.Username)
		})
	}
}

func TestUserFollowSets(t *testing.T) {
	t.Parallel()

	u := &User{Username: "a"}
	u.AddFollowing("b")
	u.AddFollowing("b")
	assert.Equal(t, []string{"b"}, u.Following)
	assert.True(t, u.Follows("b"))

	u.RemoveFollowing("b")
	assert.False(t, u.Follows("b"))
	assert.Empty(t, u.Following)
}

func TestPostSnippet(t *testing.T) {
	t.Parallel()

	short := &Post{Content: "hello"}
	assert.Equal(t, "hello", short.Snippet())

	long := &Post{Content: strings.Repeat("a", 100)}
	assert.Equal(t, strings.Repeat("a", SnippetLength), long.Snippet())

	// rune-aware, not byte-aware
	emoji := &Post{Content: strings.Repeat("🌄", 40)}
	assert.Equal(t, SnippetLength, len([]rune(emoji.Snippet())))
}

func TestNewPostValidation(t *testing.T) {
	t.Parallel()

	now := time.Now()

	_, err := NewPost(1, "elena", "podcast", "hi", now)
	assert.True(t, IsCode(err, CodeValidation))

	_, err = NewPost(1, "elena", PostTypeText, "   ", now)
	assert.True(t, IsCode(err, CodeValidation))

	p, err := NewPost(1, "elena", PostTypeVideo, "a video", now)
	require.NoError(t, err)
	assert.Equal(t, PostTypeVideo, p.Type)
	assert.False(t, p.IsLiked)
	assert.Empty(t, p.Comments)
}

func TestGroupMembership(t *testing.T) {
	t.Parallel()

	g, err := NewGroup(1, " hikers ", "we hike", "elena", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "hikers", g.Name)
	assert.Equal(t, []string{"elena"}, g.Members)

	g.AddMember("ben")
	g.AddMember("ben")
	assert.Equal(t, []string{"elena", "ben"}, g.Members)
}

func TestNewGroupValidation(t *testing.T) {
	t.Parallel()

	_, err := NewGroup(1, "  ", "desc", "elena", time.Now())
	assert.True(t, IsCode(err, CodeValidation))

	_, err = NewGroup(1, "hikers", "\t", "elena", time.Now())
	assert.True(t, IsCode(err, CodeValidation))
}

func TestNotificationForPost(t *testing.T) {
	t.Parallel()

	post := &Post{ID: 42, Content: strings.Repeat("x", 80)}
	n := NewNotification(NotificationLike, "ben", time.Now()).ForPost(post)

	require.NotNil(t, n.PostID)
	assert.Equal(t, int64(42), *n.PostID)
	assert.Len(t, n.Snippet, SnippetLength)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.Read)
}

func TestAppErrorUnwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("disk on fire")
	err := NewInternalError(inner)
	assert.ErrorIs(t, err, inner)
	assert.True(t, IsCode(err, CodeInternal))
	assert.False(t, IsNotFound(err))
	assert.True(t, IsNotFound(NewNotFoundError("Post", 7)))
}
