package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"wildcard/internal/engine"
	"wildcard/internal/models"
	"wildcard/internal/seed"
)

var signupCmd = &cobra.Command{
	Use:   "signup <username> <email> <password>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(3),
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		user, err := rt.session.SignUp(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("Welcome to Wild Card, %s!\n", user.Username)
		return nil
	}),
}

var loginCmd = &cobra.Command{
	Use:   "login <username-or-email> <password>",
	Short: "Log in",
	Args:  cobra.ExactArgs(2),
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		user, err := rt.session.LogIn(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s\n", user.Username)
		if rt.session.ConsumeNewUserFlag(ctx) {
			fmt.Println("We're excited to have you. Try `wildcard feed` to get started.")
		}
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	Args:  cobra.NoArgs,
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		return rt.session.LogOut(ctx)
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		user, err := rt.session.RequireUser()
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> — %d followers, %d following, %d profile views\n",
			user.Username, user.Email, len(user.Followers), len(user.Following), user.ProfileViews)
		return nil
	}),
}

var (
	postVideo    bool
	postWildCard bool
	postGroupID  int64
)

var postCmd = &cobra.Command{
	Use:   "post <content>",
	Short: "Create a post",
	Args:  cobra.ExactArgs(1),
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		in := engine.CreatePostInput{
			Type:       models.PostTypeText,
			Content:    args[0],
			IsWildCard: postWildCard,
		}
		if postVideo {
			in.Type = models.PostTypeVideo
		}
		if cmd.Flags().Changed("group") {
			in.GroupID = &postGroupID
		}
		post, err := rt.engine.CreatePost(ctx, rt.session, in)
		if err != nil {
			return err
		}
		fmt.Printf("Posted #%d\n", post.ID)
		return nil
	}),
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the home feed",
	Args:  cobra.NoArgs,
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		user, err := rt.session.RequireUser()
		if err != nil {
			return err
		}
		renderPosts(rt.composer.Home(user))
		return nil
	}),
}

var videosCmd = &cobra.Command{
	Use:   "videos",
	Short: "Show the video feed",
	Args:  cobra.NoArgs,
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		renderPosts(rt.composer.Videos())
		return nil
	}),
}

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "Show bookmarked posts",
	Args:  cobra.NoArgs,
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		renderPosts(rt.composer.Bookmarks())
		return nil
	}),
}

func interactionCommand(use, short string, kind engine.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <post-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			post, err := rt.engine.Apply(ctx, rt.session, id, engine.Interaction{Kind: kind})
			if err != nil {
				return err
			}
			if post != nil {
				renderPost(post)
			}
			return nil
		}),
	}
}

var (
	likeCmd     = interactionCommand("like", "Toggle a like on a post", engine.KindLike)
	bookmarkCmd = interactionCommand("bookmark", "Toggle a bookmark on a post", engine.KindBookmark)
	shareCmd    = interactionCommand("share", "Share a post", engine.KindShare)
	viewCmd     = interactionCommand("view", "Record a view of a post", engine.KindView)
	deleteCmd   = interactionCommand("delete", "Delete your own post", engine.KindDelete)
)

var commentCmd = &cobra.Command{
	Use:   "comment <post-id> <text>",
	Short: "Comment on a post",
	Args:  cobra.ExactArgs(2),
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		id, err := parsePostID(args[0])
		if err != nil {
			return err
		}
		post, err := rt.engine.Apply(ctx, rt.session, id, engine.Interaction{Kind: engine.KindComment, Text: args[1]})
		if err != nil {
			return err
		}
		renderPost(post)
		return nil
	}),
}

var followCmd = &cobra.Command{
	Use:   "follow <username>",
	Short: "Toggle following a user",
	Args:  cobra.ExactArgs(1),
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		me, target, err := rt.session.FollowToggle(ctx, args[0])
		if err != nil {
			return err
		}
		if me.Follows(target.Username) {
			fmt.Printf("Now following %s\n", target.Username)
		} else {
			fmt.Printf("Unfollowed %s\n", target.Username)
		}
		return nil
	}),
}

var profileCmd = &cobra.Command{
	Use:   "profile <username>",
	Short: "Show a user's profile and posts",
	Args:  cobra.ExactArgs(1),
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		view, err := rt.composer.Profile(args[0])
		if err != nil {
			if models.IsNotFound(err) {
				fmt.Println("This profile doesn't exist.")
				return nil
			}
			return err
		}
		if err := rt.session.RecordProfileView(ctx, view.User.Username); err != nil && !models.IsCode(err, models.CodeUnauthorized) {
			return err
		}
		fmt.Printf("@%s — %d followers, %d following\n", view.User.Username, len(view.User.Followers), len(view.User.Following))
		renderPosts(view.Posts)
		return nil
	}),
}

var profileImageCmd = &cobra.Command{
	Use:   "profile-image <picture|banner> <file>",
	Short: "Set your profile picture or banner from an image file",
	Args:  cobra.ExactArgs(2),
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		payload, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		if err := rt.session.UpdateProfileImage(ctx, args[0], payload); err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", args[0])
		return nil
	}),
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search posts, or users with a leading @",
	Args:  cobra.ExactArgs(1),
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		result := rt.composer.Search(args[0])
		for _, u := range result.Users {
			fmt.Printf("@%s <%s>\n", u.Username, u.Email)
		}
		renderPosts(result.Posts)
		if len(result.Users) == 0 && len(result.Posts) == 0 {
			fmt.Println("No results.")
		}
		return nil
	}),
}

var markRead bool

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show your notifications",
	Args:  cobra.NoArgs,
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		list, err := rt.engine.Notifications(ctx, rt.session)
		if err != nil {
			return err
		}
		for _, n := range list {
			marker := "•"
			if n.Read {
				marker = " "
			}
			line := fmt.Sprintf("%s %s from @%s", marker, n.Type, n.FromUser)
			if n.Snippet != "" {
				line += fmt.Sprintf(" — %q", n.Snippet)
			}
			fmt.Println(line)
		}
		if len(list) == 0 {
			fmt.Println("No notifications.")
		}
		if markRead {
			return rt.engine.MarkNotificationsRead(ctx, rt.session)
		}
		return nil
	}),
}

var (
	seedUsers  int
	seedGroups int
	seedPosts  int
	seedValue  int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the store with demo data",
	Args:  cobra.NoArgs,
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		opts := seed.Options{Users: seedUsers, Groups: seedGroups, Posts: seedPosts, Seed: seedValue}
		factory, err := seed.NewFactory(rt.store, opts)
		if err != nil {
			return err
		}
		summary, err := factory.Run(ctx, opts)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d users, %d groups, %d posts (password for all: %q)\n",
			summary.Users, summary.Groups, summary.Posts, seed.DemoPassword)
		return nil
	}),
}

func parsePostID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, models.NewValidationError("post id must be a number")
	}
	return id, nil
}

func renderPosts(posts []*models.Post) {
	for _, p := range posts {
		renderPost(p)
	}
}

func renderPost(p *models.Post) {
	flags := make([]string, 0, 3)
	if p.Type == models.PostTypeVideo {
		flags = append(flags, "video")
	}
	if p.IsWildCard {
		flags = append(flags, "wild card")
	}
	if p.GroupID != nil {
		flags = append(flags, fmt.Sprintf("group %d", *p.GroupID))
	}
	suffix := ""
	if len(flags) > 0 {
		suffix = " [" + strings.Join(flags, ", ") + "]"
	}
	liked := " "
	if p.IsLiked {
		liked = "♥"
	}
	fmt.Printf("#%d @%s%s\n  %s\n  %s %d likes · %d comments · %d shares · %d views\n",
		p.ID, p.Author, suffix, p.Content, liked, p.Likes, len(p.Comments), p.Shares, p.Views)
	for _, c := range p.Comments {
		fmt.Printf("    @%s: %s\n", c.Author, c.Text)
	}
}

func init() {
	postCmd.Flags().BoolVar(&postVideo, "video", false, "post a video")
	postCmd.Flags().BoolVar(&postWildCard, "wild-card", false, "flag the post for wild-card discovery")
	postCmd.Flags().Int64Var(&postGroupID, "group", 0, "post into a group")
	notificationsCmd.Flags().BoolVar(&markRead, "mark-read", false, "mark all notifications as read")
	seedCmd.Flags().IntVar(&seedUsers, "users", 12, "users to create")
	seedCmd.Flags().IntVar(&seedGroups, "groups", 3, "groups to create")
	seedCmd.Flags().IntVar(&seedPosts, "posts", 40, "posts to create")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed (0 = time-based)")
}
