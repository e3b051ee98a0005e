// ABOUTME: Account endpoints: signup, duplicate checks, profile and password
// ABOUTME: Profile reads and updates refresh the cached current user

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// UserAPI wraps /users endpoints.
type UserAPI struct {
	c *Client
}

// SignupInput is the signup form. ProfileImageURL is a previously uploaded
// image; ProfileImage, when set, is sent as a multipart file instead.
type SignupInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`

	ProfileImage *File `json:"-"`
}

// ProfileUpdate is a partial profile change; nil fields are sent as null
// and left unchanged by the backend.
type ProfileUpdate struct {
	Nickname        *string `json:"nickname"`
	ProfileImageURL *string `json:"profileImageUrl"`
}

type passwordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Signup creates an account.
func (u *UserAPI) Signup(ctx context.Context, in SignupInput) Result {
	opts := Options{Method: http.MethodPost, Public: true}
	if in.ProfileImage != nil {
		form := NewForm().AddJSON("user", in).AddFile("profileImage", *in.ProfileImage)
		opts.Body = Multipart(form)
	} else {
		opts.Body = JSON(in)
	}
	return u.c.Call(ctx, "/users/signup", opts)
}

// CheckEmail reports whether the email is already registered.
func (u *UserAPI) CheckEmail(ctx context.Context, email string) (bool, Result) {
	return u.checkExists(ctx, "/users/check-email?email="+url.QueryEscape(email))
}

// CheckNickname reports whether the nickname is already taken.
func (u *UserAPI) CheckNickname(ctx context.Context, nickname string) (bool, Result) {
	return u.checkExists(ctx, "/users/check-nickname?nickname="+url.QueryEscape(nickname))
}

func (u *UserAPI) checkExists(ctx context.Context, endpoint string) (bool, Result) {
	res := u.c.Call(ctx, endpoint, Options{Public: true})
	if !res.Success {
		return false, res
	}
	exists, err := DecodeData[ExistsResponse](res)
	if err != nil {
		return false, decodeFailure(res, err)
	}
	return exists.Exists, res
}

// GetProfile fetches /users/me and caches it as the current user.
func (u *UserAPI) GetProfile(ctx context.Context) Result {
	res := u.c.Call(ctx, "/users/me", Options{})
	u.rememberUser(res)
	return res
}

// UpdateProfile patches /users/me and caches the returned user.
func (u *UserAPI) UpdateProfile(ctx context.Context, in ProfileUpdate) Result {
	res := u.c.Call(ctx, "/users/me", Options{Method: http.MethodPatch, Body: JSON(in)})
	u.rememberUser(res)
	return res
}

// ChangePassword changes the password. The backend revokes the refresh
// token, so callers should treat success as a logout.
func (u *UserAPI) ChangePassword(ctx context.Context, current, next string) Result {
	return u.c.Call(ctx, "/users/me/password", Options{
		Method: http.MethodPatch,
		Body:   JSON(passwordChange{CurrentPassword: current, NewPassword: next}),
	})
}

func (u *UserAPI) rememberUser(res Result) {
	if !res.Success || len(res.Data) == 0 {
		return
	}
	var w userWire
	if err := json.Unmarshal(res.Data, &w); err != nil {
		return
	}
	u.c.session.SetUser(w.normalized())
}

// decodeFailure turns a 2xx whose data does not match the expected shape
// into a failed result that keeps the status and raw body.
func decodeFailure(res Result, err error) Result {
	res.Success = false
	res.Data = nil
	res.Message = MsgRequestFailed
	res.Error = err.Error()
	return res
}
