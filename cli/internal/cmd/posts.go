package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emrealmaoglu/trailium/cli/pkg/api"
	"github.com/emrealmaoglu/trailium/cli/pkg/output"
)

var postsCmd = &cobra.Command{
	Use:     "posts",
	Aliases: []string{"post"},
	Short:   "Browse and write posts",
}

func printPosts(page *api.Page[api.Post]) error {
	rows := make([][]string, 0, len(page.Results))
	for _, p := range page.Results {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.User.Username,
			p.Title,
			strconv.FormatInt(p.LikesCount, 10),
			strconv.FormatInt(p.CommentsCount, 10),
			p.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	if err := output.PrintTable(page, []string{"ID", "AUTHOR", "TITLE", "LIKES", "COMMENTS", "CREATED"}, rows); err != nil {
		return err
	}
	if page.Next != nil && output.GetOutputFormat() != output.FormatJSON {
		output.PrintInfo("%d posts total, more with --page", page.Count)
	}
	return nil
}

func pageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 0, "Page number")
	cmd.Flags().Int("page-size", 0, "Results per page")
}

func getPageFlags(cmd *cobra.Command) (int, int) {
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("page-size")
	return page, size
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your posts, or another user's with --user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		userID, _ := cmd.Flags().GetUint("user")
		page, size := getPageFlags(cmd)

		posts, err := api.ListPosts(userID, page, size)
		if err != nil {
			return err
		}
		return printPosts(posts)
	},
}

var postsShowCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show a post with its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		if _, err := requireSession(); err != nil {
			return err
		}

		post, err := api.GetPost(id)
		if err != nil {
			return err
		}
		comments, err := api.ListComments(id)
		if err != nil {
			return err
		}

		if output.GetOutputFormat() == output.FormatJSON {
			return output.Print("", map[string]interface{}{"post": post, "comments": comments})
		}
		if err := output.PrintRecord(post.Title, map[string]interface{}{
			"id":       post.ID,
			"author":   post.User.Username,
			"body":     post.Body,
			"likes":    post.LikesCount,
			"comments": post.CommentsCount,
		}); err != nil {
			return err
		}
		for _, c := range comments {
			output.PrintInfo("  %s: %s", c.User.Username, c.Body)
		}
		return nil
	},
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a post",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		body, _ := cmd.Flags().GetString("body")
		visibility, _ := cmd.Flags().GetString("visibility")
		if _, err := requireSession(); err != nil {
			return err
		}

		post, err := api.CreatePost(api.PostRequest{Title: title, Body: body, Visibility: visibility})
		if err != nil {
			return err
		}
		output.PrintSuccess("Created post %d", post.ID)
		return nil
	},
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		if _, err := requireSession(); err != nil {
			return err
		}
		if err := api.DeletePost(id); err != nil {
			return err
		}
		output.PrintSuccess("Deleted post %d", id)
		return nil
	},
}

var postsLikeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Like a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		if _, err := requireSession(); err != nil {
			return err
		}
		if err := api.LikePost(id); err != nil {
			return err
		}
		output.PrintSuccess("Liked post %d", id)
		return nil
	},
}

var postsUnlikeCmd = &cobra.Command{
	Use:   "unlike <post-id>",
	Short: "Remove your like from a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		if _, err := requireSession(); err != nil {
			return err
		}
		if err := api.UnlikePost(id); err != nil {
			return err
		}
		output.PrintSuccess("Unliked post %d", id)
		return nil
	},
}

var postsCommentCmd = &cobra.Command{
	Use:   "comment <post-id> <text...>",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "post")
		if err != nil {
			return err
		}
		body := strings.Join(args[1:], " ")
		if _, err := requireSession(); err != nil {
			return err
		}
		comment, err := api.CreateComment(id, body)
		if err != nil {
			return err
		}
		output.PrintSuccess("Comment %d added to post %d", comment.ID, id)
		return nil
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show published posts from people you follow",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		page, size := getPageFlags(cmd)
		posts, err := api.GetFeed(page, size)
		if err != nil {
			return err
		}
		if len(posts.Results) == 0 && output.GetOutputFormat() != output.FormatJSON {
			output.PrintInfo("Your feed is empty. Follow someone with 'trailium-cli follow send <user-id>'")
			return nil
		}
		return printPosts(posts)
	},
}

func init() {
	postsListCmd.Flags().Uint("user", 0, "List posts of this user id")
	pageFlags(postsListCmd)
	pageFlags(feedCmd)

	postsCreateCmd.Flags().String("title", "", "Post title")
	postsCreateCmd.Flags().String("body", "", "Post body")
	postsCreateCmd.Flags().String("visibility", "", "public, followers or private (server default: public)")
	_ = postsCreateCmd.MarkFlagRequired("title")

	postsCmd.AddCommand(postsListCmd)
	postsCmd.AddCommand(postsShowCmd)
	postsCmd.AddCommand(postsCreateCmd)
	postsCmd.AddCommand(postsDeleteCmd)
	postsCmd.AddCommand(postsLikeCmd)
	postsCmd.AddCommand(postsUnlikeCmd)
	postsCmd.AddCommand(postsCommentCmd)
}
