// ABOUTME: Input validation applied before any request is sent
// ABOUTME: Email, password, nickname, post, comment and image file rules

package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/client"
)

const (
	PasswordMin    = 8
	PasswordMax    = 20
	NicknameMin    = 2
	NicknameMax    = 10
	TitleMax       = 100
	ContentMax     = 5000
	CommentMax     = 255
	MaxImageBytes  = 10 << 20
	MaxImageMBText = "10MB"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nicknamePattern = regexp.MustCompile(`^[\p{Hangul}A-Za-z0-9_]+$`)
)

// ImageTypes are the content types accepted for uploads.
var ImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Email checks the address shape only; availability is the backend's call.
func Email(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email is required")
	}
	if !emailPattern.MatchString(s) {
		return errors.New("email is not a valid address")
	}
	return nil
}

func Password(s string) error {
	n := utf8.RuneCountInString(s)
	switch {
	case n == 0:
		return errors.New("password is required")
	case n < PasswordMin:
		return fmt.Errorf("password must be at least %d characters", PasswordMin)
	case n > PasswordMax:
		return fmt.Errorf("password must be at most %d characters", PasswordMax)
	}
	return nil
}

// PasswordChange validates a change request: the new password must be
// valid, differ from the current one and match its confirmation.
func PasswordChange(current, next, confirm string) error {
	if current == "" {
		return errors.New("current password is required")
	}
	if err := Password(next); err != nil {
		return err
	}
	if next == current {
		return errors.New("new password must differ from the current one")
	}
	if next != confirm {
		return errors.New("passwords do not match")
	}
	return nil
}

func Nickname(s string) error {
	n := utf8.RuneCountInString(s)
	switch {
	case n == 0:
		return errors.New("nickname is required")
	case strings.ContainsAny(s, " \t"):
		return errors.New("nickname cannot contain spaces")
	case n < NicknameMin || n > NicknameMax:
		return fmt.Errorf("nickname must be %d-%d characters", NicknameMin, NicknameMax)
	case !nicknamePattern.MatchString(s):
		return errors.New("nickname may only use letters, digits, _ and Hangul")
	}
	return nil
}

func Title(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("title is required")
	}
	if utf8.RuneCountInString(s) > TitleMax {
		return fmt.Errorf("title must be at most %d characters", TitleMax)
	}
	return nil
}

func Content(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("content is required")
	}
	if utf8.RuneCountInString(s) > ContentMax {
		return fmt.Errorf("content must be at most %d characters", ContentMax)
	}
	return nil
}

func Comment(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("comment is required")
	}
	if utf8.RuneCountInString(s) > CommentMax {
		return fmt.Errorf("comment must be at most %d characters", CommentMax)
	}
	return nil
}

// Image rejects non-image content types and files over 10MB.
func Image(f client.File) error {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(f.ContentType, ";", 2)[0]))
	if !ImageTypes[ct] {
		return fmt.Errorf("%s: only JPG, PNG, GIF or WebP images can be uploaded", f.Name)
	}
	if len(f.Data) > MaxImageBytes {
		return fmt.Errorf("%s: image must be %s or smaller", f.Name, MaxImageMBText)
	}
	return nil
}

// ImageFile reads path and validates it as an image upload.
func ImageFile(path string) (client.File, error) {
	f, err := client.FileFromPath(path)
	if err != nil {
		return client.File{}, err
	}
	if err := Image(f); err != nil {
		return client.File{}, err
	}
	return f, nil
}

// ImageFiles reads and validates every path, reporting all failures at once.
func ImageFiles(paths []string) ([]client.File, error) {
	files := make([]client.File, 0, len(paths))
	var errs []error
	for _, p := range paths {
		f, err := ImageFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, f)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return files, nil
}
