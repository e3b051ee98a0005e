// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides the post and comment glyphs used by the CLI and feed browser

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// nerdFontTerminals are terminal programs that commonly ship Nerd Fonts.
var nerdFontTerminals = []string{"iTerm.app", "alacritty", "WezTerm", "kitty", "ghostty"}

// detectNerdFonts checks BOARD_NERD_FONTS first, then guesses from the terminal.
func detectNerdFonts() bool {
	if env := os.Getenv("BOARD_NERD_FONTS"); env != "" {
		return env == "1" || strings.EqualFold(env, "true")
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")
	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	// Post metrics
	Heart      = Icon{"󰋑", "♥"} // nf-md-heart
	HeartEmpty = Icon{"󰋕", "♡"} // nf-md-heart_outline
	Comment    = Icon{"󰅺", "✎"} // nf-md-comment_outline
	Views      = Icon{"󰈈", "◉"} // nf-md-eye
	Image      = Icon{"󰋩", "▣"} // nf-md-image
	User       = Icon{"󰀄", "☺"} // nf-md-account

	// Status indicators
	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Warning  = Icon{"", "⚠"} // nf-oct-alert
	Critical = Icon{"", "✗"} // nf-oct-x_circle

	// Actions
	Refresh = Icon{"󰑓", "↻"} // nf-md-refresh
	Next    = Icon{"󰁔", "→"} // nf-md-arrow_right
	Lock    = Icon{"󰌾", "⚿"} // nf-md-lock

	App = Icon{"󰍡", "◈"} // nf-md-message_text
)

// LikeIcon returns the filled heart when liked, the outline otherwise.
func LikeIcon(liked bool) Icon {
	if liked {
		return Heart
	}
	return HeartEmpty
}
