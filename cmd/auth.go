// ABOUTME: Account commands: login, logout, signup and whoami
// ABOUTME: Prompts with huh forms when credentials are not given as flags

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/client"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/token"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/tui/forms"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/validate"
)

var (
	loginEmail    string
	loginPassword string

	signupEmail    string
	signupPassword string
	signupNickname string
	signupImage    string
)

// interactive reports whether prompts can be shown.
var interactive = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && !IsJSONOutput()
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the session",
	Run:   runE(runLogin),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the saved session",
	Run:   runE(runLogout),
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Long: `Create an account. Email and nickname availability are checked first.

Passwords are 8-20 characters; nicknames 2-10 letters, digits, _ or Hangul.`,
	Run: runE(runSignup),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user and token expiry",
	Run:   runE(runWhoami),
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, signupCmd, whoamiCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")

	signupCmd.Flags().StringVar(&signupEmail, "email", "", "Account email")
	signupCmd.Flags().StringVar(&signupPassword, "password", "", "Password, 8-20 characters")
	signupCmd.Flags().StringVar(&signupNickname, "nickname", "", "Nickname, 2-10 characters")
	signupCmd.Flags().StringVar(&signupImage, "profile-image", "", "Optional profile image file")
}

// prompt runs form when interactive, or fails with missing otherwise.
func prompt(ctx context.Context, form *huh.Form, missing string) error {
	if !interactive() {
		return errors.New(missing)
	}
	return forms.Run(ctx, form)
}

func runLogin(ctx context.Context, w io.Writer, _ []string) int {
	email, password := loginEmail, loginPassword
	if email == "" || password == "" {
		if err := prompt(ctx, forms.Login(&email, &password), "--email and --password are required"); err != nil {
			return invalidInput(w, err)
		}
	}
	if err := validate.Email(email); err != nil {
		return invalidInput(w, err)
	}

	return withApp(w, func(a *app) int {
		res := a.client.Auth.Login(ctx, email, password)
		return report(w, res, func() {
			u := a.session.User()
			name := email
			if u != nil && u.Nickname != "" {
				name = fmt.Sprintf("%s (%s)", u.Nickname, email)
			}
			printSuccess(w, "Logged in as "+name)
		})
	})
}

func runLogout(ctx context.Context, w io.Writer, _ []string) int {
	return withApp(w, func(a *app) int {
		if !a.session.Authenticated() {
			if IsJSONOutput() {
				printJSON(w, map[string]any{"success": true, "message": "not logged in"})
			} else {
				fmt.Fprintln(w, "Not logged in.")
			}
			return exitOK
		}

		res := a.client.Auth.Logout(ctx)
		// Local credentials go either way; the user asked to be logged out
		a.session.Clear()
		a.jar.Reset()

		if IsJSONOutput() {
			printJSON(w, res)
			return exitOK
		}
		if !res.Success {
			printFailure(w, res)
			fmt.Fprintln(w, "Local session cleared.")
			return exitOK
		}
		printSuccess(w, "Logged out")
		return exitOK
	})
}

func runSignup(ctx context.Context, w io.Writer, _ []string) int {
	fields := forms.SignupFields{
		Email:           signupEmail,
		Password:        signupPassword,
		PasswordConfirm: signupPassword,
		Nickname:        signupNickname,
		ProfileImage:    signupImage,
	}
	if fields.Email == "" || fields.Password == "" || fields.Nickname == "" {
		if err := prompt(ctx, forms.Signup(&fields), "--email, --password and --nickname are required"); err != nil {
			return invalidInput(w, err)
		}
	}

	if err := errors.Join(
		validate.Email(fields.Email),
		validate.Password(fields.Password),
		validate.Nickname(fields.Nickname),
	); err != nil {
		return invalidInput(w, err)
	}

	in := client.SignupInput{Email: fields.Email, Password: fields.Password, Nickname: fields.Nickname}
	if fields.ProfileImage != "" {
		img, err := validate.ImageFile(fields.ProfileImage)
		if err != nil {
			return invalidInput(w, err)
		}
		in.ProfileImage = &img
	}

	return withApp(w, func(a *app) int {
		taken, res := a.client.Users.CheckEmail(ctx, in.Email)
		if !res.Success {
			return report(w, res, nil)
		}
		if taken {
			return invalidInput(w, fmt.Errorf("email %s is already registered", in.Email))
		}

		taken, res = a.client.Users.CheckNickname(ctx, in.Nickname)
		if !res.Success {
			return report(w, res, nil)
		}
		if taken {
			return invalidInput(w, fmt.Errorf("nickname %s is already taken", in.Nickname))
		}

		res = a.client.Users.Signup(ctx, in)
		return report(w, res, func() {
			printSuccess(w, "Account created. Run `board login` to sign in.")
		})
	})
}

func runWhoami(_ context.Context, w io.Writer, _ []string) int {
	return withApp(w, func(a *app) int {
		snap := a.session.Snapshot()
		info, tokErr := token.Inspect(snap.AccessToken)

		if IsJSONOutput() {
			out := map[string]any{
				"loggedIn": snap.AccessToken != "",
				"user":     snap.User,
				"apiUrl":   a.baseURL,
			}
			if tokErr == nil && info.HasExpiry() {
				out["expiresAt"] = info.ExpiresAt
				out["expired"] = info.Expired(time.Now())
			}
			printJSON(w, out)
		} else {
			if snap.AccessToken == "" {
				fmt.Fprintln(w, "Not logged in. Run `board login`.")
				return exitError
			}
			fmt.Fprintln(w, formatUser(snap.User))
			fmt.Fprintln(w, field("API", a.baseURL))
			if tokErr == nil && info.HasExpiry() {
				state := "valid"
				if info.Expired(time.Now()) {
					state = "expired, refreshed on next request"
				}
				fmt.Fprintln(w, field("Token", fmt.Sprintf("%s until %s", state, info.ExpiresAt.Local().Format(time.RFC1123))))
			}
		}
		if snap.AccessToken == "" {
			return exitError
		}
		return exitOK
	})
}
