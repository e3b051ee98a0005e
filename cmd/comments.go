// ABOUTME: Comment commands: list, add, edit, delete and counts
// ABOUTME: Counts are fetched in one batch for any number of posts

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/tui/forms"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/validate"
)

var commentsCmd = &cobra.Command{
	Use:     "comments",
	Aliases: []string{"comment"},
	Short:   "Read and write comments",
}

var commentsListCmd = &cobra.Command{
	Use:   "list <postId>",
	Short: "List a post's comments",
	Args:  cobra.ExactArgs(1),
	Run:   runE(runCommentsList),
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <postId> [text]",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(1),
	Run:   runE(runCommentsAdd),
}

var commentsEditCmd = &cobra.Command{
	Use:   "edit <postId> <commentId> <text>",
	Short: "Edit one of your comments",
	Args:  cobra.MinimumNArgs(3),
	Run:   runE(runCommentsEdit),
}

var commentsDeleteCmd = &cobra.Command{
	Use:   "delete <postId> <commentId>",
	Short: "Delete one of your comments",
	Args:  cobra.ExactArgs(2),
	Run:   runE(runCommentsDelete),
}

var commentsCountsCmd = &cobra.Command{
	Use:   "counts <postId>...",
	Short: "Show comment counts for several posts",
	Args:  cobra.MinimumNArgs(1),
	Run:   runE(runCommentsCounts),
}

func init() {
	rootCmd.AddCommand(commentsCmd)
	commentsCmd.AddCommand(commentsListCmd, commentsAddCmd, commentsEditCmd, commentsDeleteCmd, commentsCountsCmd)
}

func runCommentsList(ctx context.Context, w io.Writer, args []string) int {
	postID, err := parseID("post id", args[0])
	if err != nil {
		return invalidInput(w, err)
	}
	return withApp(w, func(a *app) int {
		comments, res := a.client.Comments.List(ctx, postID)
		return report(w, res, func() {
			if len(comments) == 0 {
				fmt.Fprintln(w, "No comments.")
				return
			}
			for _, c := range comments {
				fmt.Fprintln(w, formatComment(c))
			}
		})
	})
}

func runCommentsAdd(ctx context.Context, w io.Writer, args []string) int {
	postID, err := parseID("post id", args[0])
	if err != nil {
		return invalidInput(w, err)
	}
	text := strings.Join(args[1:], " ")
	if text == "" {
		if err := prompt(ctx, forms.Comment(&text), "comment text is required"); err != nil {
			return invalidInput(w, err)
		}
	}
	if err := validate.Comment(text); err != nil {
		return invalidInput(w, err)
	}

	return withApp(w, func(a *app) int {
		res := a.client.Comments.Create(ctx, postID, text)
		return report(w, res, func() {
			printSuccess(w, fmt.Sprintf("Commented on post #%d", postID))
		})
	})
}

func runCommentsEdit(ctx context.Context, w io.Writer, args []string) int {
	postID, err := parseID("post id", args[0])
	if err != nil {
		return invalidInput(w, err)
	}
	commentID, err := parseID("comment id", args[1])
	if err != nil {
		return invalidInput(w, err)
	}
	text := strings.Join(args[2:], " ")
	if err := validate.Comment(text); err != nil {
		return invalidInput(w, err)
	}

	return withApp(w, func(a *app) int {
		res := a.client.Comments.Update(ctx, postID, commentID, text)
		return report(w, res, func() {
			printSuccess(w, fmt.Sprintf("Comment #%d updated", commentID))
		})
	})
}

func runCommentsDelete(ctx context.Context, w io.Writer, args []string) int {
	postID, err := parseID("post id", args[0])
	if err != nil {
		return invalidInput(w, err)
	}
	commentID, err := parseID("comment id", args[1])
	if err != nil {
		return invalidInput(w, err)
	}

	return withApp(w, func(a *app) int {
		res := a.client.Comments.Delete(ctx, postID, commentID)
		return report(w, res, func() {
			printSuccess(w, fmt.Sprintf("Comment #%d deleted", commentID))
		})
	})
}

// runCommentsCounts never fails on the API side: unknown or unreachable
// posts simply have no count.
func runCommentsCounts(ctx context.Context, w io.Writer, args []string) int {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID("post id", arg)
		if err != nil {
			return invalidInput(w, err)
		}
		ids = append(ids, id)
	}

	return withApp(w, func(a *app) int {
		counts := a.client.Comments.Counts(ctx, ids)
		if IsJSONOutput() {
			printJSON(w, counts)
			return exitOK
		}
		for _, id := range ids {
			key := strconv.FormatInt(id, 10)
			n, ok := counts[key]
			if !ok {
				fmt.Fprintln(w, field("#"+key, "-"))
				continue
			}
			fmt.Fprintln(w, field("#"+key, strconv.FormatInt(n, 10)))
		}
		return exitOK
	})
}
