// ABOUTME: Output helpers shared by CLI commands
// ABOUTME: Renders results with lipgloss or as the JSON envelope and maps them to exit codes

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/client"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/session"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/tui"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/tui/icons"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/tui/styles"
)

// exitCodeFor maps a result to the CLI exit code convention.
func exitCodeFor(res client.Result) int {
	switch res.Kind() {
	case client.KindOK:
		return exitOK
	case client.KindTransport, client.KindUnauthorized:
		return exitError
	default:
		return exitFailed
	}
}

// report prints res and returns its exit code. human renders a success
// in text mode; --json always prints the envelope.
func report(w io.Writer, res client.Result, human func()) int {
	switch {
	case IsJSONOutput():
		printJSON(w, res)
	case res.Success:
		if human != nil {
			human()
		}
	default:
		printFailure(w, res)
	}
	return exitCodeFor(res)
}

func printJSON(w io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}

func printFailure(w io.Writer, res client.Result) {
	msg := res.Message
	if res.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, res.Status)
	}
	fmt.Fprintln(w, styles.Failure.Render(icons.Critical.String()+" "+msg))
	if res.Error != "" {
		fmt.Fprintln(w, styles.Meta.Render("  "+res.Error))
	}
}

// invalidInput reports a local validation failure before any request.
func invalidInput(w io.Writer, err error) int {
	if IsJSONOutput() {
		printJSON(w, map[string]any{"success": false, "message": err.Error()})
	} else {
		fmt.Fprintln(w, styles.Failure.Render("Error: "+err.Error()))
	}
	return exitFailed
}

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, styles.Success.Render(icons.CheckOK.String()+" "+msg))
}

func field(label, value string) string {
	return styles.Label.Render(label) + " " + styles.ValueStyle.Render(value)
}

func formatPostLine(p client.Post) string {
	likes := fmt.Sprintf("%s %d", icons.LikeIcon(p.LikedByMe), p.LikesCount)
	if p.LikedByMe {
		likes = styles.Liked.Render(likes)
	} else {
		likes = styles.Meta.Render(likes)
	}
	return fmt.Sprintf("%s %s\n     %s  %s  %s  %s  %s",
		styles.Meta.Render(fmt.Sprintf("#%-3d", p.ID)),
		styles.PostTitle.Render(p.Title),
		styles.Author.Render(p.AuthorNickname),
		styles.Meta.Render(tui.FormatTime(p.Created())),
		likes,
		styles.Meta.Render(fmt.Sprintf("%s %d", icons.Comment, p.CommentsCount)),
		styles.Meta.Render(fmt.Sprintf("%s %d", icons.Views, p.ViewCount)),
	)
}

func formatPost(p client.Post) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(p.Title) + "\n")
	b.WriteString(field("Post", fmt.Sprintf("#%d", p.ID)) + "\n")
	b.WriteString(field("Author", p.AuthorNickname) + "\n")
	b.WriteString(field("Created", tui.FormatTime(p.Created())) + "\n")
	b.WriteString(field("Likes", fmt.Sprintf("%d", p.LikesCount)))
	if p.LikedByMe {
		b.WriteString(" " + styles.Liked.Render(icons.Heart.String()))
	}
	b.WriteString("\n")
	b.WriteString(field("Comments", fmt.Sprintf("%d", p.CommentsCount)) + "\n")
	b.WriteString(field("Views", fmt.Sprintf("%d", p.ViewCount)) + "\n")
	b.WriteString(styles.Body.Render(p.Content))
	for _, img := range p.Images {
		b.WriteString("\n" + styles.Meta.Render(fmt.Sprintf("%s [%d] %s", icons.Image, img.ID, img.URL)))
	}
	return b.String()
}

func formatComment(c client.Comment) string {
	mine := ""
	if c.Mine {
		mine = styles.Meta.Render(" (you)")
	}
	return fmt.Sprintf("%s %s%s %s\n     %s",
		styles.Meta.Render(fmt.Sprintf("#%-3d", c.ID)),
		styles.Author.Render(c.AuthorNickname),
		mine,
		styles.Meta.Render(tui.FormatTime(c.Created())),
		c.Content,
	)
}

func formatUser(u *session.User) string {
	if u == nil {
		return styles.Subtitle.Render("No profile cached.")
	}
	lines := []string{
		field("Nickname", u.Nickname),
		field("Email", u.Email),
	}
	if u.ID != 0 {
		lines = append(lines, field("User ID", fmt.Sprintf("%d", u.ID)))
	}
	if u.ProfileImageURL != "" {
		lines = append(lines, field("Image", u.ProfileImageURL))
	}
	return strings.Join(lines, "\n")
}
