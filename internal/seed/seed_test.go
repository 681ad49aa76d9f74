package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"wildcard/internal/kv"
	"wildcard/internal/store"
)

func runSeed(t *testing.T, opts Options) *store.Store {
	t.Helper()
	st, err := store.New(context.Background(), kv.NewMemory())
	require.NoError(t, err)
	factory, err := NewFactory(st, opts)
	require.NoError(t, err)
	summary, err := factory.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, opts.Users, summary.Users)
	assert.Equal(t, opts.Groups, summary.Groups)
	assert.Equal(t, opts.Posts, summary.Posts)
	return st
}

func TestRunPopulatesStore(t *testing.T) {
	t.Parallel()

	opts := Options{Users: 8, Groups: 3, Posts: 20, Seed: 7}
	st := runSeed(t, opts)

	require.Len(t, st.Users(), 8)
	require.Len(t, st.Groups(), 3)
	require.Len(t, st.Posts(), 20)

	// usernames are unique and every account shares the demo password
	seen := make(map[string]bool)
	for _, u := range st.Users() {
		assert.False(t, seen[u.Username], "duplicate username %q", u.Username)
		seen[u.Username] = true
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(DemoPassword)))
	}

	// every post has a known author, and group posts have a member author
	for _, p := range st.Posts() {
		author, err := st.UserByName(p.Author)
		require.NoError(t, err)
		if p.GroupID != nil {
			group, err := st.GroupByID(*p.GroupID)
			require.NoError(t, err)
			assert.True(t, group.HasMember(author.Username), "group posts come from members only")
		}
	}

	// every group keeps its creator as first member
	for _, g := range st.Groups() {
		require.NotEmpty(t, g.Members)
		assert.Equal(t, g.Creator, g.Members[0])
	}
}

func TestRunPersistsCollections(t *testing.T) {
	t.Parallel()

	st := runSeed(t, Options{Users: 4, Groups: 2, Posts: 6, Seed: 11})

	reloaded, err := store.New(context.Background(), st.Backend())
	require.NoError(t, err)
	assert.Len(t, reloaded.Users(), 4)
	assert.Len(t, reloaded.Groups(), 2)
	assert.Len(t, reloaded.Posts(), 6)
}

func TestRunIsReproducible(t *testing.T) {
	t.Parallel()

	opts := Options{Users: 5, Groups: 2, Posts: 8, Seed: 42}
	first := runSeed(t, opts)
	second := runSeed(t, opts)

	var a, b []string
	for _, u := range first.Users() {
		a = append(a, u.Username)
	}
	for _, u := range second.Users() {
		b = append(b, u.Username)
	}
	assert.Equal(t, a, b, "identical seeds produce identical usernames")
}

func TestFollowEdgesAreSymmetric(t *testing.T) {
	t.Parallel()

	st := runSeed(t, Options{Users: 10, Groups: 1, Posts: 5, Seed: 3})

	for _, u := range st.Users() {
		for _, followed := range u.Following {
			target, err := st.UserByName(followed)
			require.NoError(t, err)
			assert.Contains(t, target.Followers, u.Username)
		}
	}
}

func TestPostIDsAreIncreasing(t *testing.T) {
	t.Parallel()

	st := runSeed(t, Options{Users: 3, Groups: 1, Posts: 15, Seed: 9})

	posts := st.Posts()
	for i := 1; i < len(posts); i++ {
		assert.Greater(t, posts[i].ID, posts[i-1].ID)
	}
}
