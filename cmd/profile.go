// ABOUTME: Profile commands: show, update and password
// ABOUTME: Profile images are uploaded first and then referenced by URL

package cmd

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/client"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/tui/forms"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/validate"
)

// profileUploadFolder is where profile images are stored.
const profileUploadFolder = "profile"

var (
	profileNickname string
	profileImage    string

	passwordCurrent string
	passwordNew     string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or change your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	Run:   runE(runProfileShow),
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change nickname or profile image",
	Run:   runE(runProfileUpdate),
}

var profilePasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password (logs you out on success)",
	Run:   runE(runProfilePassword),
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd, profilePasswordCmd)

	profileUpdateCmd.Flags().StringVar(&profileNickname, "nickname", "", "New nickname")
	profileUpdateCmd.Flags().StringVar(&profileImage, "image", "", "New profile image file")

	profilePasswordCmd.Flags().StringVar(&passwordCurrent, "current", "", "Current password")
	profilePasswordCmd.Flags().StringVar(&passwordNew, "new", "", "New password, 8-20 characters")
}

func runProfileShow(ctx context.Context, w io.Writer, _ []string) int {
	return withApp(w, func(a *app) int {
		res := a.client.Users.GetProfile(ctx)
		return report(w, res, func() {
			io.WriteString(w, formatUser(a.session.User())+"\n")
		})
	})
}

func runProfileUpdate(ctx context.Context, w io.Writer, _ []string) int {
	if profileNickname == "" && profileImage == "" {
		return invalidInput(w, errors.New("nothing to change: pass --nickname and/or --image"))
	}

	var update client.ProfileUpdate
	if profileNickname != "" {
		if err := validate.Nickname(profileNickname); err != nil {
			return invalidInput(w, err)
		}
		nickname := profileNickname
		update.Nickname = &nickname
	}

	var img client.File
	if profileImage != "" {
		var err error
		if img, err = validate.ImageFile(profileImage); err != nil {
			return invalidInput(w, err)
		}
	}

	return withApp(w, func(a *app) int {
		if profileImage != "" {
			url, res := a.client.Files.Upload(ctx, img, profileUploadFolder)
			if !res.Success {
				return report(w, res, nil)
			}
			update.ProfileImageURL = &url
		}

		if update.Nickname != nil {
			taken, res := a.client.Users.CheckNickname(ctx, *update.Nickname)
			if !res.Success {
				return report(w, res, nil)
			}
			current := a.session.User()
			if taken && (current == nil || current.Nickname != *update.Nickname) {
				return invalidInput(w, errors.New("nickname "+*update.Nickname+" is already taken"))
			}
		}

		res := a.client.Users.UpdateProfile(ctx, update)
		return report(w, res, func() {
			printSuccess(w, "Profile updated")
			io.WriteString(w, formatUser(a.session.User())+"\n")
		})
	})
}

func runProfilePassword(ctx context.Context, w io.Writer, _ []string) int {
	fields := forms.PasswordFields{Current: passwordCurrent, New: passwordNew, Confirm: passwordNew}
	if fields.Current == "" || fields.New == "" {
		if err := prompt(ctx, forms.Password(&fields), "--current and --new are required"); err != nil {
			return invalidInput(w, err)
		}
	}
	if err := validate.PasswordChange(fields.Current, fields.New, fields.Confirm); err != nil {
		return invalidInput(w, err)
	}

	return withApp(w, func(a *app) int {
		res := a.client.Users.ChangePassword(ctx, fields.Current, fields.New)
		if res.Success {
			// Existing tokens are invalid after a password change
			a.session.Clear()
			a.jar.Reset()
		}
		return report(w, res, func() {
			printSuccess(w, "Password changed. Log in again with `board login`.")
		})
	})
}
