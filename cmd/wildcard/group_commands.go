package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"wildcard/internal/models"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Create, join, and browse groups",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <name> <description>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(2),
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		group, err := rt.groups.Create(ctx, rt.session, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Created group #%d %q\n", group.ID, group.Name)
		return nil
	}),
}

var groupJoinCmd = &cobra.Command{
	Use:   "join <group-id>",
	Short: "Join a group",
	Args:  cobra.ExactArgs(1),
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		id, err := parseGroupID(args[0])
		if err != nil {
			return err
		}
		group, err := rt.groups.Join(ctx, rt.session, id)
		if err != nil {
			return err
		}
		fmt.Printf("You're in. %q has %d members.\n", group.Name, len(group.Members))
		return nil
	}),
}

var groupShowCmd = &cobra.Command{
	Use:   "show <group-id>",
	Short: "Show a group's feed",
	Args:  cobra.ExactArgs(1),
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		id, err := parseGroupID(args[0])
		if err != nil {
			return err
		}
		view, err := rt.composer.Group(id, rt.session.Current())
		if err != nil {
			if models.IsNotFound(err) {
				fmt.Println("This group doesn't exist.")
				return nil
			}
			return err
		}
		fmt.Printf("%s — %s\n  members: %s\n", view.Group.Name, view.Group.Description,
			strings.Join(view.Group.Members, ", "))
		if !view.IsMember {
			fmt.Printf("You are not a member. Join with `wildcard group join %d` to post.\n", view.Group.ID)
		}
		renderPosts(view.Posts)
		return nil
	}),
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all groups",
	Args:  cobra.NoArgs,
	RunE: withRuntime(func(ctx context.Context, rt *runtime, cmd *cobra.Command, args []string) error {
		groups := rt.store.Groups()
		for _, g := range groups {
			fmt.Printf("#%d %s — %d members\n", g.ID, g.Name, len(g.Members))
		}
		if len(groups) == 0 {
			fmt.Println("No groups yet.")
		}
		return nil
	}),
}

func parseGroupID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, models.NewValidationError("group id must be a number")
	}
	return id, nil
}

func init() {
	groupCmd.AddCommand(groupCreateCmd, groupJoinCmd, groupShowCmd, groupListCmd)
}
