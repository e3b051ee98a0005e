// ABOUTME: Comment endpoints and the batch comment-count lookup
// ABOUTME: Counts degrade to an empty map so feed rendering never blocks on them

package client

import (
	"context"
	"fmt"
	"net/http"
)

// CommentAPI wraps /posts/{id}/comments endpoints.
type CommentAPI struct {
	c *Client
}

type commentBody struct {
	Content string `json:"content"`
}

// List fetches the comments of a post.
func (cm *CommentAPI) List(ctx context.Context, postID int64) ([]Comment, Result) {
	res := cm.c.Call(ctx, commentsPath(postID), Options{})
	if !res.Success {
		return nil, res
	}
	comments, err := decodeComments(res)
	if err != nil {
		return nil, decodeFailure(res, err)
	}
	return comments, res
}

// decodeComments accepts a bare array or a page object.
func decodeComments(res Result) ([]Comment, error) {
	if len(res.Data) == 0 {
		return nil, nil
	}
	if res.Data[0] == '[' {
		return DecodeData[[]Comment](res)
	}
	page, err := DecodeData[Page[Comment]](res)
	return page.Items, err
}

// Create adds a comment.
func (cm *CommentAPI) Create(ctx context.Context, postID int64, content string) Result {
	return cm.c.Call(ctx, commentsPath(postID), Options{
		Method: http.MethodPost,
		Body:   JSON(commentBody{Content: content}),
	})
}

// Update replaces the text of a comment.
func (cm *CommentAPI) Update(ctx context.Context, postID, commentID int64, content string) Result {
	return cm.c.Call(ctx, commentPath(postID, commentID), Options{
		Method: http.MethodPut,
		Body:   JSON(commentBody{Content: content}),
	})
}

// Delete removes a comment.
func (cm *CommentAPI) Delete(ctx context.Context, postID, commentID int64) Result {
	return cm.c.Call(ctx, commentPath(postID, commentID), Options{Method: http.MethodDelete})
}

// Counts returns comment counts keyed by post id. Any failure yields an
// empty, non-nil map.
func (cm *CommentAPI) Counts(ctx context.Context, postIDs []int64) CommentCounts {
	if postIDs == nil {
		postIDs = []int64{}
	}
	res := cm.c.Call(ctx, "/posts/comments/counts", Options{
		Method: http.MethodPost,
		Body:   JSON(map[string][]int64{"postIds": postIDs}),
		Public: true,
	})
	counts, err := DecodeData[CommentCounts](res)
	if err != nil || counts == nil {
		return CommentCounts{}
	}
	return counts
}

func commentsPath(postID int64) string {
	return fmt.Sprintf("/posts/%d/comments", postID)
}

func commentPath(postID, commentID int64) string {
	return fmt.Sprintf("/posts/%d/comments/%d", postID, commentID)
}
