package feed

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildcard/internal/kv"
	"wildcard/internal/models"
	"wildcard/internal/store"
)

type builder struct {
	t      *testing.T
	store  *store.Store
	nextID int64
}

func newBuilder(t *testing.T) *builder {
	t.Helper()
	st, err := store.New(context.Background(), kv.NewMemory())
	require.NoError(t, err)
	return &builder{t: t, store: st, nextID: 1000}
}

func (b *builder) user(name string, follows ...string) *models.User {
	b.t.Helper()
	u, err := models.NewUser(name, name+"@example.com", "x", b.store.Now())
	require.NoError(b.t, err)
	for _, f := range follows {
		u.AddFollowing(f)
	}
	b.store.AddUser(u)
	return u
}

func (b *builder) post(author string, mutate ...func(*models.Post)) *models.Post {
	b.t.Helper()
	b.nextID++
	p, err := models.NewPost(b.nextID, author, models.PostTypeText, fmt.Sprintf("post %d by %s", b.nextID, author), b.store.Now())
	require.NoError(b.t, err)
	for _, m := range mutate {
		m(p)
	}
	b.store.AddPost(p)
	return p
}

func (b *builder) group(name, creator string, members ...string) *models.Group {
	b.t.Helper()
	g, err := models.NewGroup(b.store.NextGroupID(), name, "about "+name, creator, b.store.Now())
	require.NoError(b.t, err)
	for _, m := range members {
		g.AddMember(m)
	}
	b.store.AddGroup(g)
	return g
}

func (b *builder) composer(slots int) *Composer {
	return NewComposer(b.store, rand.New(rand.NewSource(1)), slots)
}

func inGroup(id int64) func(*models.Post) {
	return func(p *models.Post) { p.GroupID = &id }
}

func wildCard(p *models.Post) { p.IsWildCard = true }

func postIDs(posts []*models.Post) []int64 {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func TestHomeFollowVisibility(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	// A follows B but not C; B and C each posted a group-less post.
	a := b.user("alice", "bob")
	b.user("bob")
	b.user("carol")
	fromB := b.post("bob")
	fromC := b.post("carol")
	own := b.post("alice")

	home := b.composer(0).Home(a)
	ids := postIDs(home)
	assert.Contains(t, ids, fromB.ID)
	assert.Contains(t, ids, own.ID)
	assert.NotContains(t, ids, fromC.ID, "posts by non-followed authors stay out of the home feed")
}

func TestHomeGroupPosts(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	a := b.user("alice")
	b.user("bob")
	g := b.group("Gardeners", "bob", "alice")
	other := b.group("Chess", "bob")

	inMine := b.post("bob", inGroup(g.ID))
	inOther := b.post("bob", inGroup(other.ID))

	home := b.composer(0).Home(a)
	ids := postIDs(home)
	assert.Contains(t, ids, inMine.ID, "member-group posts appear even from non-followed authors")
	assert.NotContains(t, ids, inOther.ID)
}

func TestHomeGroupPostsFromFollowedAuthorsStillGated(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	a := b.user("alice", "bob")
	b.user("bob")
	g := b.group("Chess", "bob")

	gated := b.post("bob", inGroup(g.ID))
	open := b.post("bob")

	home := b.composer(0).Home(a)
	ids := postIDs(home)
	assert.NotContains(t, ids, gated.ID, "following an author does not open their group posts")
	assert.Contains(t, ids, open.ID)
}

func TestHomeWildCardSampling(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	a := b.user("alice")
	b.user("bob")
	var candidates []int64
	for i := 0; i < 10; i++ {
		candidates = append(candidates, b.post("bob", wildCard).ID)
	}
	// a plain post from a non-followed author is never sampled
	plain := b.post("bob")

	home := b.composer(3).Home(a)
	require.Len(t, home, 3)
	for _, p := range home {
		assert.Contains(t, candidates, p.ID)
		assert.True(t, p.IsWildCard)
	}
	assert.NotContains(t, postIDs(home), plain.ID)

	// same seed, same sample
	again := b.composer(3).Home(a)
	assert.Equal(t, postIDs(home), postIDs(again))
}

func TestHomeWildCardSkipsFollowedAuthors(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	a := b.user("alice", "bob")
	b.user("bob")
	b.user("carol")
	followedWild := b.post("bob", wildCard)
	strangerWild := b.post("carol", wildCard)

	home := b.composer(3).Home(a)
	ids := postIDs(home)
	// bob's post is in via the follow rule, not double-counted as a sample
	assert.Contains(t, ids, followedWild.ID)
	assert.Contains(t, ids, strangerWild.ID)
	assert.Len(t, home, 2)
}

func TestHomeSortedByIDDescending(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	a := b.user("alice", "bob")
	b.user("bob")
	b.user("carol")
	for i := 0; i < 5; i++ {
		b.post("alice")
		b.post("bob")
		b.post("carol", wildCard)
	}

	home := b.composer(2).Home(a)
	require.Len(t, home, 12)
	ids := postIDs(home)
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i-1], ids[i], "sampled posts interleave into one descending order")
	}
}

func TestVideos(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	b.user("alice")
	b.post("alice")
	vid := b.post("alice", func(p *models.Post) { p.Type = models.PostTypeVideo })

	got := b.composer(0).Videos()
	require.Len(t, got, 1)
	assert.Equal(t, vid.ID, got[0].ID)
}

func TestBookmarks(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	b.user("alice")
	b.post("alice")
	marked := b.post("alice", func(p *models.Post) { p.IsBookmarked = true })

	got := b.composer(0).Bookmarks()
	require.Len(t, got, 1)
	assert.Equal(t, marked.ID, got[0].ID)

	// un-bookmarking removes it from the view
	marked.IsBookmarked = false
	assert.Empty(t, b.composer(0).Bookmarks())
}

func TestGroupView(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	member := b.user("alice")
	outsider := b.user("bob")
	g := b.group("Gardeners", "alice")
	p := b.post("alice", inGroup(g.ID))

	view, err := b.composer(0).Group(g.ID, member)
	require.NoError(t, err)
	assert.True(t, view.IsMember)
	assert.True(t, view.CanPost)
	assert.Equal(t, []int64{p.ID}, postIDs(view.Posts))

	// posts are visible to non-members, posting is not
	view, err = b.composer(0).Group(g.ID, outsider)
	require.NoError(t, err)
	assert.False(t, view.IsMember)
	assert.False(t, view.CanPost)
	assert.Equal(t, []int64{p.ID}, postIDs(view.Posts))

	_, err = b.composer(0).Group(99, member)
	assert.True(t, models.IsNotFound(err))
}

func TestProfile(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	b.user("alice")
	b.user("bob")
	mine := b.post("alice")
	b.post("bob")

	view, err := b.composer(0).Profile("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", view.User.Username)
	assert.Equal(t, []int64{mine.ID}, postIDs(view.Posts))

	_, err = b.composer(0).Profile("nobody")
	assert.True(t, models.IsNotFound(err))
}

func TestSearch(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	b.user("alice")
	b.user("alicia")
	b.user("bob")
	hit := b.post("bob", func(p *models.Post) { p.Content = "Planting tomatoes today" })
	b.post("bob", func(p *models.Post) { p.Content = "chess opening prep" })

	tests := []struct {
		name      string
		query     string
		wantUsers []string
		wantPosts []int64
	}{
		{name: "mention matches usernames", query: "@ali", wantUsers: []string{"alice", "alicia"}},
		{name: "mention is case-insensitive", query: "@ALI", wantUsers: []string{"alice", "alicia"}},
		{name: "content substring", query: "tomato", wantPosts: []int64{hit.ID}},
		{name: "content is case-insensitive", query: "PLANTING", wantPosts: []int64{hit.ID}},
		{name: "no match", query: "zzz"},
		{name: "blank", query: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.composer(0).Search(tt.query)
			var users []string
			for _, u := range got.Users {
				users = append(users, u.Username)
			}
			assert.ElementsMatch(t, tt.wantUsers, users)
			assert.Equal(t, tt.wantPosts, postIDs(got.Posts))
		})
	}
}

func TestSampleWithFewCandidates(t *testing.T) {
	t.Parallel()

	b := newBuilder(t)
	a := b.user("alice")
	b.user("bob")
	only := b.post("bob", wildCard)

	home := b.composer(3).Home(a)
	assert.Equal(t, []int64{only.ID}, postIDs(home))
}
