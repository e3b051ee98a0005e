// ABOUTME: Post endpoints: feed pages, detail, create, edit, delete and likes
// ABOUTME: Image uploads use multipart with a JSON "post" part

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultPageSize is the feed page size used when none is given.
const DefaultPageSize = 5

// PostAPI wraps /posts endpoints.
type PostAPI struct {
	c *Client
}

// PostUpdate is an edit of an existing post.
type PostUpdate struct {
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	RemoveImageIDs []int64 `json:"removeImageIds"`

	NewImages []File `json:"-"`
}

type postCreate struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	ImageURLs []string `json:"imageUrls,omitempty"`
}

// List fetches one feed page. An empty cursor requests the first page.
func (p *PostAPI) List(ctx context.Context, size int, cursor Cursor) (Page[Post], Result) {
	if size <= 0 {
		size = DefaultPageSize
	}
	q := url.Values{}
	q.Set("size", strconv.Itoa(size))
	if cursor != "" {
		q.Set("cursor", string(cursor))
	}

	res := p.c.Call(ctx, "/posts?"+q.Encode(), Options{Public: true})
	if !res.Success {
		return Page[Post]{}, res
	}
	page, err := DecodeData[Page[Post]](res)
	if err != nil {
		return Page[Post]{}, decodeFailure(res, err)
	}
	return page, res
}

// Get fetches a single post.
func (p *PostAPI) Get(ctx context.Context, id int64) (Post, Result) {
	res := p.c.Call(ctx, postPath(id), Options{Public: true})
	if !res.Success {
		return Post{}, res
	}
	post, err := DecodeData[Post](res)
	if err != nil {
		return Post{}, decodeFailure(res, err)
	}
	return post, res
}

// Create publishes a post whose images were already uploaded.
func (p *PostAPI) Create(ctx context.Context, title, content string, imageURLs []string) Result {
	return p.c.Call(ctx, "/posts", Options{
		Method: http.MethodPost,
		Body:   JSON(postCreate{Title: title, Content: content, ImageURLs: imageURLs}),
	})
}

// CreateWithFiles publishes a post and uploads its images in one request.
func (p *PostAPI) CreateWithFiles(ctx context.Context, title, content string, images []File) Result {
	form := NewForm().AddJSON("post", postCreate{Title: title, Content: content})
	for _, img := range images {
		form.AddFile("images", img)
	}
	return p.c.Call(ctx, "/posts", Options{Method: http.MethodPost, Body: Multipart(form)})
}

// Update edits a post, removing and adding images as requested.
func (p *PostAPI) Update(ctx context.Context, id int64, in PostUpdate) Result {
	if in.RemoveImageIDs == nil {
		in.RemoveImageIDs = []int64{}
	}
	form := NewForm().AddJSON("post", in)
	for _, img := range in.NewImages {
		form.AddFile("newImages", img)
	}
	return p.c.Call(ctx, postPath(id), Options{Method: http.MethodPatch, Body: Multipart(form)})
}

// Delete removes a post.
func (p *PostAPI) Delete(ctx context.Context, id int64) Result {
	return p.c.Call(ctx, postPath(id), Options{Method: http.MethodDelete})
}

// Like adds the current user's like.
func (p *PostAPI) Like(ctx context.Context, id int64) Result {
	return p.c.Call(ctx, postPath(id)+"/likes", Options{Method: http.MethodPost})
}

// Unlike removes the current user's like.
func (p *PostAPI) Unlike(ctx context.Context, id int64) Result {
	return p.c.Call(ctx, postPath(id)+"/likes", Options{Method: http.MethodDelete})
}

func postPath(id int64) string {
	return fmt.Sprintf("/posts/%d", id)
}
