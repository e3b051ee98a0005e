// ABOUTME: Post commands: list, show, create, edit, delete, like and unlike
// ABOUTME: Lists page by cursor; images go as multipart or are uploaded first when mixed with URLs

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/client"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/tui/forms"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/validate"
)

// postUploadFolder is where post images uploaded ahead of creation go.
const postUploadFolder = "posts"

var (
	listSize   int
	listCursor string

	postTitle     string
	postContent   string
	postImages    []string
	postImageURLs []string

	editAddImages []string
	editRemoveIDs []int64
)

var postsCmd = &cobra.Command{
	Use:     "posts",
	Aliases: []string{"post"},
	Short:   "Read and write posts",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of the feed",
	Run:   runE(runPostsList),
}

var postsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a post",
	Args:  cobra.ExactArgs(1),
	Run:   runE(runPostsShow),
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a new post",
	Run:   runE(runPostsCreate),
}

var postsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a post's text and images",
	Args:  cobra.ExactArgs(1),
	Run:   runE(runPostsEdit),
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	Run:   runE(runPostsDelete),
}

var postsLikeCmd = &cobra.Command{
	Use:   "like <id>",
	Short: "Like a post",
	Args:  cobra.ExactArgs(1),
	Run:   runE(likeRunner(true)),
}

var postsUnlikeCmd = &cobra.Command{
	Use:   "unlike <id>",
	Short: "Remove your like from a post",
	Args:  cobra.ExactArgs(1),
	Run:   runE(likeRunner(false)),
}

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsListCmd, postsShowCmd, postsCreateCmd, postsEditCmd, postsDeleteCmd, postsLikeCmd, postsUnlikeCmd)

	postsListCmd.Flags().IntVar(&listSize, "size", client.DefaultPageSize, "Posts per page")
	postsListCmd.Flags().StringVar(&listCursor, "cursor", "", "Cursor from a previous page")

	postsCreateCmd.Flags().StringVar(&postTitle, "title", "", "Post title (max 100 characters)")
	postsCreateCmd.Flags().StringVar(&postContent, "content", "", "Post body (max 5000 characters)")
	postsCreateCmd.Flags().StringArrayVar(&postImages, "image", nil, "Image file to attach (repeatable)")
	postsCreateCmd.Flags().StringArrayVar(&postImageURLs, "image-url", nil, "Already uploaded image URL (repeatable)")

	postsEditCmd.Flags().StringVar(&postTitle, "title", "", "New title (default: unchanged)")
	postsEditCmd.Flags().StringVar(&postContent, "content", "", "New body (default: unchanged)")
	postsEditCmd.Flags().StringArrayVar(&editAddImages, "add-image", nil, "Image file to add (repeatable)")
	postsEditCmd.Flags().Int64SliceVar(&editRemoveIDs, "remove-image-id", nil, "Image id to remove (repeatable)")
}

// parseID parses a positive numeric id argument.
func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", name, s)
	}
	return id, nil
}

func runPostsList(ctx context.Context, w io.Writer, _ []string) int {
	if listSize < 1 || listSize > 100 {
		return invalidInput(w, fmt.Errorf("--size must be between 1 and 100, got %d", listSize))
	}

	return withApp(w, func(a *app) int {
		page, res := a.client.Posts.List(ctx, listSize, client.Cursor(listCursor))
		return report(w, res, func() {
			if len(page.Items) == 0 {
				fmt.Fprintln(w, "No posts.")
				return
			}
			for _, p := range page.Items {
				fmt.Fprintln(w, formatPostLine(p))
			}
			if page.HasNext && page.NextCursor != "" {
				fmt.Fprintf(w, "\nMore: board posts list --cursor %s\n", page.NextCursor)
			}
		})
	})
}

func runPostsShow(ctx context.Context, w io.Writer, args []string) int {
	id, err := parseID("post id", args[0])
	if err != nil {
		return invalidInput(w, err)
	}
	return withApp(w, func(a *app) int {
		post, res := a.client.Posts.Get(ctx, id)
		return report(w, res, func() {
			fmt.Fprintln(w, formatPost(post))
		})
	})
}

func runPostsCreate(ctx context.Context, w io.Writer, _ []string) int {
	title, content := postTitle, postContent
	if title == "" || content == "" {
		if err := prompt(ctx, forms.Post(&title, &content), "--title and --content are required"); err != nil {
			return invalidInput(w, err)
		}
	}
	if err := errors.Join(validate.Title(title), validate.Content(content)); err != nil {
		return invalidInput(w, err)
	}
	files, err := validate.ImageFiles(postImages)
	if err != nil {
		return invalidInput(w, err)
	}

	return withApp(w, func(a *app) int {
		var res client.Result
		switch {
		case len(postImageURLs) > 0:
			urls := append([]string(nil), postImageURLs...)
			for _, f := range files {
				url, upRes := a.client.Files.Upload(ctx, f, postUploadFolder)
				if !upRes.Success {
					return report(w, upRes, nil)
				}
				urls = append(urls, url)
			}
			res = a.client.Posts.Create(ctx, title, content, urls)
		case len(files) > 0:
			res = a.client.Posts.CreateWithFiles(ctx, title, content, files)
		default:
			res = a.client.Posts.Create(ctx, title, content, nil)
		}

		return report(w, res, func() {
			created, err := client.DecodeData[client.PostCreated](res)
			if err == nil && created.ID != 0 {
				printSuccess(w, fmt.Sprintf("Post #%d created", created.ID))
				return
			}
			printSuccess(w, "Post created")
		})
	})
}

func runPostsEdit(ctx context.Context, w io.Writer, args []string) int {
	id, err := parseID("post id", args[0])
	if err != nil {
		return invalidInput(w, err)
	}
	files, err := validate.ImageFiles(editAddImages)
	if err != nil {
		return invalidInput(w, err)
	}

	return withApp(w, func(a *app) int {
		// Unchanged fields keep the post's current values
		current, res := a.client.Posts.Get(ctx, id)
		if !res.Success {
			return report(w, res, nil)
		}
		update := client.PostUpdate{
			Title:          firstNonEmpty(postTitle, current.Title),
			Content:        firstNonEmpty(postContent, current.Content),
			RemoveImageIDs: editRemoveIDs,
			NewImages:      files,
		}
		if err := errors.Join(validate.Title(update.Title), validate.Content(update.Content)); err != nil {
			return invalidInput(w, err)
		}

		res = a.client.Posts.Update(ctx, id, update)
		return report(w, res, func() {
			printSuccess(w, fmt.Sprintf("Post #%d updated", id))
		})
	})
}

func runPostsDelete(ctx context.Context, w io.Writer, args []string) int {
	id, err := parseID("post id", args[0])
	if err != nil {
		return invalidInput(w, err)
	}
	return withApp(w, func(a *app) int {
		res := a.client.Posts.Delete(ctx, id)
		return report(w, res, func() {
			printSuccess(w, fmt.Sprintf("Post #%d deleted", id))
		})
	})
}

func likeRunner(like bool) runFunc {
	return func(ctx context.Context, w io.Writer, args []string) int {
		id, err := parseID("post id", args[0])
		if err != nil {
			return invalidInput(w, err)
		}
		return withApp(w, func(a *app) int {
			var res client.Result
			verb := "Liked"
			if like {
				res = a.client.Posts.Like(ctx, id)
			} else {
				res = a.client.Posts.Unlike(ctx, id)
				verb = "Unliked"
			}
			return report(w, res, func() {
				msg := fmt.Sprintf("%s post #%d", verb, id)
				if lr, err := client.DecodeData[client.LikeResponse](res); err == nil && len(res.Data) > 0 {
					msg += fmt.Sprintf(" (%d likes)", lr.LikesCount)
				}
				printSuccess(w, msg)
			})
		})
	}
}
