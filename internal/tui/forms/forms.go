// ABOUTME: huh forms used when a command is missing required input
// ABOUTME: Login, signup, password change, post and comment prompts with inline validation

package forms

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/tui/styles"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/validate"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled")

// Theme returns the huh theme matching the CLI palette.
func Theme() *huh.Theme {
	t := huh.ThemeBase()

	gray := lipgloss.Color("#9CA3AF")
	grayLight := lipgloss.Color("#E5E7EB")
	red := lipgloss.Color("#F87171")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(styles.Accent)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(styles.Accent)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Primary).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(lipgloss.Color("#334155")).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

// Login asks for email and password.
func Login(email, password *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(email).
				Validate(validate.Email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(required("password")),
		).Title("Log in"),
	).WithTheme(Theme())
}

// SignupFields are the values collected by the signup form.
type SignupFields struct {
	Email           string
	Password        string
	PasswordConfirm string
	Nickname        string
	ProfileImage    string // optional path
}

// Signup asks for every signup field. Availability checks happen after.
func Signup(f *SignupFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&f.Email).
				Validate(validate.Email),
			huh.NewInput().
				Title("Password").
				Description("8-20 characters").
				EchoMode(huh.EchoModePassword).
				Value(&f.Password).
				Validate(validate.Password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&f.PasswordConfirm).
				Validate(func(s string) error {
					if s != f.Password {
						return errors.New("passwords do not match")
					}
					return nil
				}),
			huh.NewInput().
				Title("Nickname").
				Description("2-10 letters, digits, _ or Hangul").
				Value(&f.Nickname).
				Validate(validate.Nickname),
			huh.NewInput().
				Title("Profile image").
				Description("Optional path to a JPG, PNG, GIF or WebP file").
				Value(&f.ProfileImage).
				Validate(optionalImage),
		).Title("Sign up"),
	).WithTheme(Theme())
}

// PasswordFields are the values collected by the password form.
type PasswordFields struct {
	Current string
	New     string
	Confirm string
}

// Password asks for the current password and a confirmed new one.
func Password(f *PasswordFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Current password").
				EchoMode(huh.EchoModePassword).
				Value(&f.Current).
				Validate(required("current password")),
			huh.NewInput().
				Title("New password").
				EchoMode(huh.EchoModePassword).
				Value(&f.New).
				Validate(validate.Password),
			huh.NewInput().
				Title("Confirm new password").
				EchoMode(huh.EchoModePassword).
				Value(&f.Confirm).
				Validate(func(s string) error {
					return validate.PasswordChange(f.Current, f.New, s)
				}),
		).Title("Change password"),
	).WithTheme(Theme())
}

// Post asks for a post title and body, prefilled with current values.
func Post(title, content *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				CharLimit(validate.TitleMax).
				Value(title).
				Validate(validate.Title),
			huh.NewText().
				Title("Content").
				CharLimit(validate.ContentMax).
				Value(content).
				Validate(validate.Content),
		).Title("Post"),
	).WithTheme(Theme())
}

// Comment asks for comment text.
func Comment(content *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Comment").
				CharLimit(validate.CommentMax).
				Value(content).
				Validate(validate.Comment),
		),
	).WithTheme(Theme())
}

// Confirm asks a yes/no question, defaulting to no.
func Confirm(title string, ok *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(ok),
		),
	).WithTheme(Theme())
}

// Run runs form and maps a user abort to ErrCancelled.
func Run(ctx context.Context, form *huh.Form) error {
	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

func required(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}

func optionalImage(path string) error {
	if path == "" {
		return nil
	}
	_, err := validate.ImageFile(path)
	return err
}
