// Package feed computes the derived views: home, videos, bookmarks,
// group, profile, and search. Composition is pure over the store's
// collections; the only side effect is a metrics increment.
package feed

import (
	"math/rand"
	"sort"
	"strings"

	"wildcard/internal/models"
	"wildcard/internal/observability"
	"wildcard/internal/store"
)

// DefaultWildCardSlots is how many discovery posts the home feed samples
// when not configured otherwise.
const DefaultWildCardSlots = 3

// MentionSigil switches search from post content to usernames.
const MentionSigil = "@"

// Composer derives view lists from the shared store. The random source is
// injected so tests can seed the wild-card sampling.
type Composer struct {
	store         *store.Store
	rng           *rand.Rand
	wildCardSlots int
}

// NewComposer creates a Composer. rng must not be shared with other
// consumers; slots < 0 selects the default.
func NewComposer(st *store.Store, rng *rand.Rand, slots int) *Composer {
	if slots < 0 {
		slots = DefaultWildCardSlots
	}
	return &Composer{store: st, rng: rng, wildCardSlots: slots}
}

// GroupView is the composed group screen: the posts plus the membership
// gate the caller renders (join prompt for non-members, composer box for
// members).
type GroupView struct {
	Group    *models.Group
	Posts    []*models.Post
	IsMember bool
	CanPost  bool
}

// ProfileView is the composed profile screen.
type ProfileView struct {
	User  *models.User
	Posts []*models.Post
}

// SearchResult holds whichever side of the search matched; a mention
// query fills Users, anything else fills Posts.
type SearchResult struct {
	Users []*models.User
	Posts []*models.Post
}

// Home composes the home feed for user: their own posts, posts in groups
// they belong to, and group-less posts from people they follow, plus up
// to wildCardSlots randomly sampled wild-card posts from non-followed
// authors. One descending-ID sort orders everything; the sampled posts
// interleave rather than trail.
func (c *Composer) Home(user *models.User) []*models.Post {
	observability.FeedCompositions.WithLabelValues("home").Inc()

	memberships := make(map[int64]bool)
	for _, g := range c.store.Groups() {
		if g.HasMember(user.Username) {
			memberships[g.ID] = true
		}
	}

	var included []*models.Post
	seen := make(map[int64]bool)
	var wildCandidates []*models.Post

	for _, p := range c.store.Posts() {
		switch {
		case p.Author == user.Username:
			included = append(included, p)
			seen[p.ID] = true
		case p.GroupID != nil && memberships[*p.GroupID]:
			included = append(included, p)
			seen[p.ID] = true
		case p.GroupID == nil && user.Follows(p.Author):
			included = append(included, p)
			seen[p.ID] = true
		case p.IsWildCard && !user.Follows(p.Author):
			wildCandidates = append(wildCandidates, p)
		}
	}

	for _, p := range c.sample(wildCandidates, c.wildCardSlots) {
		if !seen[p.ID] {
			included = append(included, p)
			seen[p.ID] = true
		}
	}

	sortByIDDesc(included)
	return included
}

// Videos composes the video feed: every video post, newest first.
func (c *Composer) Videos() []*models.Post {
	observability.FeedCompositions.WithLabelValues("videos").Inc()
	var out []*models.Post
	for _, p := range c.store.Posts() {
		if p.Type == models.PostTypeVideo {
			out = append(out, p)
		}
	}
	sortByIDDesc(out)
	return out
}

// Bookmarks composes the bookmarked-post list, newest first.
func (c *Composer) Bookmarks() []*models.Post {
	observability.FeedCompositions.WithLabelValues("bookmarks").Inc()
	var out []*models.Post
	for _, p := range c.store.Posts() {
		if p.IsBookmarked {
			out = append(out, p)
		}
	}
	sortByIDDesc(out)
	return out
}

// Group composes the group screen. Posts are visible to everyone; only
// members can post, and non-members get the join prompt.
func (c *Composer) Group(groupID int64, user *models.User) (*GroupView, error) {
	observability.FeedCompositions.WithLabelValues("group").Inc()
	group, err := c.store.GroupByID(groupID)
	if err != nil {
		return nil, err
	}

	var posts []*models.Post
	for _, p := range c.store.Posts() {
		if p.GroupID != nil && *p.GroupID == groupID {
			posts = append(posts, p)
		}
	}
	sortByIDDesc(posts)

	isMember := user != nil && group.HasMember(user.Username)
	return &GroupView{
		Group:    group,
		Posts:    posts,
		IsMember: isMember,
		CanPost:  isMember,
	}, nil
}

// Profile composes a user's profile screen.
func (c *Composer) Profile(username string) (*ProfileView, error) {
	observability.FeedCompositions.WithLabelValues("profile").Inc()
	user, err := c.store.UserByName(username)
	if err != nil {
		return nil, err
	}
	var posts []*models.Post
	for _, p := range c.store.Posts() {
		if p.Author == user.Username {
			posts = append(posts, p)
		}
	}
	sortByIDDesc(posts)
	return &ProfileView{User: user, Posts: posts}, nil
}

// Search matches usernames when the query starts with the mention sigil
// and post content otherwise, both as case-insensitive substrings.
func (c *Composer) Search(query string) *SearchResult {
	observability.FeedCompositions.WithLabelValues("search").Inc()
	result := &SearchResult{}
	query = strings.TrimSpace(query)
	if query == "" {
		return result
	}

	if strings.HasPrefix(query, MentionSigil) {
		needle := strings.ToLower(strings.TrimPrefix(query, MentionSigil))
		for _, u := range c.store.Users() {
			if strings.Contains(strings.ToLower(u.Username), needle) {
				result.Users = append(result.Users, u)
			}
		}
		return result
	}

	needle := strings.ToLower(query)
	for _, p := range c.store.Posts() {
		if strings.Contains(strings.ToLower(p.Content), needle) {
			result.Posts = append(result.Posts, p)
		}
	}
	sortByIDDesc(result.Posts)
	return result
}

// sample draws up to n elements uniformly without replacement.
func (c *Composer) sample(candidates []*models.Post, n int) []*models.Post {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}
	if len(candidates) <= n {
		return candidates
	}
	shuffled := make([]*models.Post, len(candidates))
	copy(shuffled, candidates)
	c.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

func sortByIDDesc(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].ID > posts[j].ID
	})
}
