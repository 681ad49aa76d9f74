// Package seed provides helpers to create demo data for the application
// store. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"

	"wildcard/internal/models"
	"wildcard/internal/store"
)

// DemoPassword is the shared credential for every seeded account.
const DemoPassword = "wildcard"

// Options controls how much demo data the factory creates. Seed makes
// the output reproducible.
type Options struct {
	Users  int
	Groups int
	Posts  int
	Seed   int64
}

// Summary reports what a seeding run created.
type Summary struct {
	Users  int
	Groups int
	Posts  int
}

// Factory builds domain entities and persists them to the store.
type Factory struct {
	store *store.Store
	faker *gofakeit.Faker
	rng   *rand.Rand
	hash  string
}

// NewFactory creates a Factory bound to the provided store.
func NewFactory(st *store.Store, opts Options) (*Factory, error) {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	// MinCost keeps large seeding runs fast; these are demo accounts.
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	return &Factory{
		store: st,
		faker: gofakeit.New(opts.Seed),
		rng:   rand.New(rand.NewSource(opts.Seed)),
		hash:  string(hash),
	}, nil
}

// Run populates the store with users, follow edges, groups, and posts,
// then persists every collection.
func (f *Factory) Run(ctx context.Context, opts Options) (*Summary, error) {
	users := f.buildUsers(opts.Users)
	f.wireFollows(users)
	groups := f.buildGroups(opts.Groups, users)
	posts := f.buildPosts(opts.Posts, users, groups)

	for _, u := range users {
		f.store.AddUser(u)
	}
	for _, g := range groups {
		f.store.AddGroup(g)
	}
	for _, p := range posts {
		f.store.AddPost(p)
	}

	if err := f.store.SaveUsers(ctx); err != nil {
		return nil, err
	}
	if err := f.store.SaveGroups(ctx); err != nil {
		return nil, err
	}
	if err := f.store.SavePosts(ctx); err != nil {
		return nil, err
	}

	return &Summary{Users: len(users), Groups: len(groups), Posts: len(posts)}, nil
}

func (f *Factory) buildUsers(n int) []*models.User {
	users := make([]*models.User, 0, n)
	taken := make(map[string]bool)
	for len(users) < n {
		username := fmt.Sprintf("%s%d", f.faker.Username(), f.rng.Intn(1000))
		if taken[username] {
			continue
		}
		taken[username] = true
		users = append(users, &models.User{
			Username:     username,
			Email:        fmt.Sprintf("%s@%s", username, f.faker.DomainName()),
			PasswordHash: f.hash,
			CreatedAt:    f.pastTime(120),
		})
	}
	return users
}

// wireFollows gives each user a handful of follow edges.
func (f *Factory) wireFollows(users []*models.User) {
	if len(users) < 2 {
		return
	}
	for _, u := range users {
		edges := f.rng.Intn(min(5, len(users)))
		for i := 0; i < edges; i++ {
			target := users[f.rng.Intn(len(users))]
			if target.Username == u.Username {
				continue
			}
			u.AddFollowing(target.Username)
			target.AddFollower(u.Username)
		}
	}
}

func (f *Factory) buildGroups(n int, users []*models.User) []*models.Group {
	if len(users) == 0 {
		return nil
	}
	groups := make([]*models.Group, 0, n)
	for i := 0; i < n; i++ {
		creator := users[f.rng.Intn(len(users))]
		group, err := models.NewGroup(
			f.store.NextGroupID(),
			f.faker.BuzzWord()+" "+f.faker.NounAbstract(),
			f.faker.Sentence(8),
			creator.Username,
			f.pastTime(90),
		)
		if err != nil {
			continue
		}
		members := f.rng.Intn(len(users))
		for j := 0; j < members; j++ {
			group.AddMember(users[f.rng.Intn(len(users))].Username)
		}
		groups = append(groups, group)
	}
	return groups
}

func (f *Factory) buildPosts(n int, users []*models.User, groups []*models.Group) []*models.Post {
	if len(users) == 0 {
		return nil
	}
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[f.rng.Intn(len(users))]
		postType := models.PostTypeText
		if f.rng.Intn(5) == 0 {
			postType = models.PostTypeVideo
		}

		post, err := models.NewPost(
			f.store.NextPostID(),
			author.Username,
			postType,
			f.faker.Paragraph(1, 3, 8, " "),
			f.pastTime(30),
		)
		if err != nil {
			continue
		}

		// roughly one in four discovery candidates
		post.IsWildCard = f.rng.Intn(4) == 0

		if len(groups) > 0 && f.rng.Intn(3) == 0 {
			group := groups[f.rng.Intn(len(groups))]
			if group.HasMember(author.Username) {
				id := group.ID
				post.GroupID = &id
			}
		}

		for c := f.rng.Intn(4); c > 0; c-- {
			commenter := users[f.rng.Intn(len(users))]
			post.Comments = append(post.Comments, models.Comment{
				Author:    commenter.Username,
				Text:      f.faker.Sentence(10),
				CreatedAt: post.CreatedAt.Add(time.Duration(f.rng.Intn(3600)) * time.Second),
			})
		}
		post.Likes = f.rng.Intn(500)
		post.Shares = f.rng.Intn(50)
		post.Views = post.Likes*3 + f.rng.Intn(1000)

		posts = append(posts, post)
	}
	return posts
}

// pastTime returns a time up to maxDays in the past, for a realistic
// created_at spread.
func (f *Factory) pastTime(maxDays int) time.Time {
	back := time.Duration(f.rng.Intn(maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}
