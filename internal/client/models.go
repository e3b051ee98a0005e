// ABOUTME: Typed views of the backend's data payloads
// ABOUTME: Posts, comments, cursor pages and auth responses

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/session"
)

// PostImage is one image attached to a post.
type PostImage struct {
	ID  int64  `json:"imageId"`
	URL string `json:"url"`
}

// Post is a bulletin board post as returned by /posts and /posts/{id}.
type Post struct {
	ID              int64       `json:"postId"`
	Title           string      `json:"title"`
	Content         string      `json:"content,omitempty"`
	AuthorID        int64       `json:"authorId,omitempty"`
	AuthorNickname  string      `json:"authorNickname,omitempty"`
	AuthorImageURL  string      `json:"authorProfileImageUrl,omitempty"`
	PrimaryImageURL string      `json:"primaryImageUrl,omitempty"`
	Images          []PostImage `json:"images,omitempty"`
	LikesCount      int64       `json:"likesCount"`
	CommentsCount   int64       `json:"commentsCount"`
	ViewCount       int64       `json:"viewCount"`
	LikedByMe       bool        `json:"likedByMe"`
	CreatedAt       string      `json:"createdAt,omitempty"`
}

// Created parses CreatedAt, accepting RFC 3339 with or without a zone.
func (p Post) Created() (time.Time, bool) {
	return parseTimestamp(p.CreatedAt)
}

// Comment is one comment on a post.
type Comment struct {
	ID             int64  `json:"commentId"`
	PostID         int64  `json:"postId,omitempty"`
	Content        string `json:"content"`
	AuthorID       int64  `json:"authorId,omitempty"`
	AuthorNickname string `json:"authorNickname,omitempty"`
	AuthorImageURL string `json:"authorProfileImageUrl,omitempty"`
	Mine           bool   `json:"mine"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// Created parses CreatedAt.
func (c Comment) Created() (time.Time, bool) {
	return parseTimestamp(c.CreatedAt)
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Cursor is an opaque pagination cursor. The backend sends it as a string,
// a number or null; it is carried back verbatim as a query parameter.
type Cursor string

func (c *Cursor) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if isNull(b) {
		*c = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Cursor(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("cursor must be a string or number: %w", err)
	}
	*c = Cursor(n.String())
	return nil
}

// Page is one cursor page of items.
type Page[T any] struct {
	Items      []T    `json:"items"`
	HasNext    bool   `json:"hasNext"`
	NextCursor Cursor `json:"nextCursor"`
}

// userWire is the backend user shape, which may carry the profile image
// under either profileImageUrl or userProfileUrl.
type userWire struct {
	session.User
	LegacyImageURL string `json:"userProfileUrl,omitempty"`
}

func (w userWire) normalized() *session.User {
	u := w.User
	u.Normalize(w.LegacyImageURL)
	return &u
}

// LoginResponse is the data of a successful /auth/login.
type LoginResponse struct {
	AccessToken string        `json:"accessToken"`
	User        *session.User `json:"-"`
}

func (l *LoginResponse) UnmarshalJSON(b []byte) error {
	var raw struct {
		AccessToken string    `json:"accessToken"`
		User        *userWire `json:"user"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	l.AccessToken = raw.AccessToken
	l.User = nil
	if raw.User != nil {
		l.User = raw.User.normalized()
	}
	return nil
}

// ExistsResponse is the data of the email/nickname duplicate checks.
// The backend answers with a bare boolean (true means already taken);
// an object form {"exists": bool} or {"available": bool} is also accepted.
type ExistsResponse struct {
	Exists bool
}

func (e *ExistsResponse) UnmarshalJSON(b []byte) error {
	var flag bool
	if err := json.Unmarshal(b, &flag); err == nil {
		e.Exists = flag
		return nil
	}
	var obj struct {
		Exists    *bool `json:"exists"`
		Available *bool `json:"available"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("unexpected duplicate-check data: %w", err)
	}
	switch {
	case obj.Exists != nil:
		e.Exists = *obj.Exists
	case obj.Available != nil:
		e.Exists = !*obj.Available
	default:
		return fmt.Errorf("duplicate-check data has no exists or available field")
	}
	return nil
}

// LikeResponse is returned by like and unlike.
type LikeResponse struct {
	LikesCount int64 `json:"likesCount"`
	LikedByMe  bool  `json:"likedByMe"`
}

// PostCreated is returned by post creation.
type PostCreated struct {
	ID int64 `json:"postId"`
}

// CommentCounts maps a post id (as text) to its comment count.
type CommentCounts map[string]int64
