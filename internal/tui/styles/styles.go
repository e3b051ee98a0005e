// ABOUTME: Shared lipgloss styles for the board CLI and feed browser
// ABOUTME: Defines the palette plus text styles for posts, comments and status lines

package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - Core palette
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#F9FAFB") // Light

	Accent = lipgloss.Color("#8B5CF6") // Lighter purple for highlights
	Heart  = lipgloss.Color("#F43F5E") // Rose - liked posts

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted)

	// Result lines
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	Failure = lipgloss.NewStyle().
		Foreground(Danger).
		Bold(true)

	Notice = lipgloss.NewStyle().
		Foreground(Warning)

	// Post and comment rendering
	PostTitle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	SelectedPost = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	Author = lipgloss.NewStyle().
		Foreground(Accent)

	Meta = lipgloss.NewStyle().
		Foreground(Muted)

	Liked = lipgloss.NewStyle().
		Foreground(Heart).
		Bold(true)

	Body = lipgloss.NewStyle().
		Foreground(Text).
		MarginTop(1).
		MarginBottom(1)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1)

	// Key style for keyboard shortcuts
	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	// Label/value pairs in detail views
	Label = lipgloss.NewStyle().
		Foreground(Muted).
		Width(10)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)
)

// Truncate shortens s to width cells, ending with an ellipsis when cut.
func Truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
