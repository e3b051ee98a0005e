// ABOUTME: Root bubbletea model for the feed browser
// ABOUTME: Pages through posts by cursor, toggles likes and opens a post with its comments

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/client"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/tui/icons"
	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/tui/styles"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenFeed Screen = iota
	ScreenPost
)

// requestTimeout bounds each API call the browser makes.
const requestTimeout = 30 * time.Second

// Posts is the slice of the post API the browser uses.
type Posts interface {
	List(ctx context.Context, size int, cursor client.Cursor) (client.Page[client.Post], client.Result)
	Like(ctx context.Context, id int64) client.Result
	Unlike(ctx context.Context, id int64) client.Result
}

// Comments loads the comments of one post.
type Comments interface {
	List(ctx context.Context, postID int64) ([]client.Comment, client.Result)
}

// pageLoadedMsg carries one page of the feed. reset replaces the list
// instead of appending to it.
type pageLoadedMsg struct {
	page  client.Page[client.Post]
	res   client.Result
	reset bool
}

// likeToggledMsg carries the outcome of a like or unlike.
type likeToggledMsg struct {
	postID int64
	liked  bool
	res    client.Result
}

// commentsLoadedMsg carries the comments of the open post.
type commentsLoadedMsg struct {
	postID   int64
	comments []client.Comment
	res      client.Result
}

type keyMap struct {
	Up, Down, Open, Back, Next, Like, Reload, Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Next, k.Like, k.Reload, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Back}}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:   key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
	Next:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
	Like:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// App is the root model for the feed browser
type App struct {
	posts    Posts
	comments Comments
	pageSize int

	screen   Screen
	width    int
	height   int
	spinner  spinner.Model
	help     help.Model
	loading  bool
	status   string
	failed   bool
	items    []client.Post
	selected int
	cursor   client.Cursor
	hasNext  bool

	// Open post
	thread        []client.Comment
	threadLoading bool
}

// New creates a feed browser. pageSize <= 0 uses the API default.
func New(posts Posts, comments Comments, pageSize int) *App {
	if pageSize <= 0 {
		pageSize = client.DefaultPageSize
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(styles.Accent)

	return &App{
		posts:    posts,
		comments: comments,
		pageSize: pageSize,
		spinner:  sp,
		help:     help.New(),
		loading:  true,
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.loadPage("", true))
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return a, tea.Quit
		}
		if a.screen == ScreenPost {
			return a.updatePost(msg)
		}
		return a.updateFeed(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case pageLoadedMsg:
		return a.handlePage(msg)

	case likeToggledMsg:
		return a.handleLike(msg)

	case commentsLoadedMsg:
		return a.handleComments(msg)
	}

	return a, nil
}

func (a *App) updateFeed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.selected > 0 {
			a.selected--
		}
	case key.Matches(msg, keys.Down):
		if a.selected < len(a.items)-1 {
			a.selected++
		}
	case key.Matches(msg, keys.Next):
		if a.loading {
			return a, nil
		}
		if !a.hasNext {
			a.setStatus("No more posts.", false)
			return a, nil
		}
		a.loading = true
		return a, tea.Batch(a.spinner.Tick, a.loadPage(a.cursor, false))
	case key.Matches(msg, keys.Reload):
		if a.loading {
			return a, nil
		}
		a.loading = true
		return a, tea.Batch(a.spinner.Tick, a.loadPage("", true))
	case key.Matches(msg, keys.Like):
		return a, a.toggleLike()
	case key.Matches(msg, keys.Open):
		post, ok := a.current()
		if !ok {
			return a, nil
		}
		a.screen = ScreenPost
		a.thread = nil
		a.threadLoading = true
		return a, tea.Batch(a.spinner.Tick, a.loadComments(post.ID))
	}
	return a, nil
}

func (a *App) updatePost(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		a.screen = ScreenFeed
		a.thread = nil
		a.threadLoading = false
	case key.Matches(msg, keys.Like):
		return a, a.toggleLike()
	}
	return a, nil
}

func (a *App) handlePage(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	a.loading = false
	if !msg.res.Success {
		a.setStatus(failureText(msg.res), true)
		return a, nil
	}

	if msg.reset {
		a.items = nil
		a.selected = 0
	} else if len(msg.page.Items) > 0 {
		// Jump to the first post of the new page
		a.selected = len(a.items)
	}
	a.items = append(a.items, msg.page.Items...)
	a.cursor = msg.page.NextCursor
	a.hasNext = msg.page.HasNext && msg.page.NextCursor != ""
	a.setStatus(fmt.Sprintf("%d posts loaded", len(a.items)), false)
	return a, nil
}

func (a *App) handleLike(msg likeToggledMsg) (tea.Model, tea.Cmd) {
	if !msg.res.Success {
		a.setStatus(failureText(msg.res), true)
		return a, nil
	}

	for i := range a.items {
		p := &a.items[i]
		if p.ID != msg.postID {
			continue
		}
		if lr, err := client.DecodeData[client.LikeResponse](msg.res); err == nil && len(msg.res.Data) > 0 {
			p.LikesCount = lr.LikesCount
			p.LikedByMe = lr.LikedByMe
		} else {
			p.LikedByMe = msg.liked
			if msg.liked {
				p.LikesCount++
			} else if p.LikesCount > 0 {
				p.LikesCount--
			}
		}
	}
	if msg.liked {
		a.setStatus("Liked.", false)
	} else {
		a.setStatus("Like removed.", false)
	}
	return a, nil
}

func (a *App) handleComments(msg commentsLoadedMsg) (tea.Model, tea.Cmd) {
	post, ok := a.current()
	if a.screen != ScreenPost || !ok || post.ID != msg.postID {
		// Stale response for a post that is no longer open
		return a, nil
	}
	a.threadLoading = false
	if !msg.res.Success {
		a.setStatus(failureText(msg.res), true)
		return a, nil
	}
	a.thread = msg.comments
	return a, nil
}

func (a *App) current() (client.Post, bool) {
	if a.selected < 0 || a.selected >= len(a.items) {
		return client.Post{}, false
	}
	return a.items[a.selected], true
}

func (a *App) setStatus(s string, failed bool) {
	a.status = s
	a.failed = failed
}

func (a *App) loadPage(cursor client.Cursor, reset bool) tea.Cmd {
	size := a.pageSize
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		page, res := a.posts.List(ctx, size, cursor)
		return pageLoadedMsg{page: page, res: res, reset: reset}
	}
}

func (a *App) toggleLike() tea.Cmd {
	post, ok := a.current()
	if !ok {
		return nil
	}
	like := !post.LikedByMe
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var res client.Result
		if like {
			res = a.posts.Like(ctx, post.ID)
		} else {
			res = a.posts.Unlike(ctx, post.ID)
		}
		return likeToggledMsg{postID: post.ID, liked: like, res: res}
	}
}

func (a *App) loadComments(postID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		comments, res := a.comments.List(ctx, postID)
		return commentsLoadedMsg{postID: postID, comments: comments, res: res}
	}
}

// failureText turns a failed result into a status line.
func failureText(res client.Result) string {
	if res.Kind() == client.KindUnauthorized {
		return "Login required, run `board login`."
	}
	if res.Error != "" {
		return res.Message + " (" + res.Error + ")"
	}
	return res.Message
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(icons.App.String() + " Community Board"))
	b.WriteString("\n\n")

	if a.screen == ScreenPost {
		b.WriteString(a.viewPost())
	} else {
		b.WriteString(a.viewFeed())
	}

	b.WriteString("\n")
	if a.loading || a.threadLoading {
		b.WriteString(a.spinner.View() + " Loading…\n")
	} else if a.status != "" {
		style := styles.Meta
		if a.failed {
			style = styles.Failure
		}
		b.WriteString(style.Render(a.status) + "\n")
	}

	b.WriteString(styles.Help.Render(a.help.View(keys)))
	return b.String()
}

func (a *App) viewFeed() string {
	if len(a.items) == 0 {
		if a.loading {
			return ""
		}
		return styles.Subtitle.Render("No posts yet.") + "\n"
	}

	width := a.width - 4
	if width <= 0 {
		width = 76
	}

	var b strings.Builder
	for i, p := range a.items {
		marker := "  "
		titleStyle := styles.PostTitle
		if i == a.selected {
			marker = styles.KeyStyle.Render("> ")
			titleStyle = styles.SelectedPost
		}
		b.WriteString(marker + titleStyle.Render(styles.Truncate(p.Title, width)) + "\n")
		b.WriteString("  " + postMeta(p) + "\n")
	}
	if a.hasNext {
		b.WriteString(styles.Meta.Render("  "+icons.Next.String()+" more (n)") + "\n")
	}
	return b.String()
}

func (a *App) viewPost() string {
	p, ok := a.current()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.PostTitle.Render(p.Title) + "\n")
	b.WriteString(postMeta(p) + "\n")
	b.WriteString(styles.Body.Render(p.Content) + "\n")
	if n := len(p.Images); n > 0 {
		b.WriteString(styles.Meta.Render(fmt.Sprintf("%s %d image(s)", icons.Image, n)) + "\n")
	}

	b.WriteString("\n" + styles.Subtitle.Render(fmt.Sprintf("%s Comments", icons.Comment)) + "\n")
	if !a.threadLoading && len(a.thread) == 0 {
		b.WriteString(styles.Meta.Render("  No comments.") + "\n")
	}
	for _, c := range a.thread {
		b.WriteString("  " + styles.Author.Render(c.AuthorNickname) + " " + styles.Meta.Render(formatTime(c.Created())) + "\n")
		b.WriteString("    " + c.Content + "\n")
	}
	return b.String()
}

// postMeta renders author, time and counters for one post.
func postMeta(p client.Post) string {
	like := styles.Meta.Render(fmt.Sprintf("%s %d", icons.LikeIcon(p.LikedByMe), p.LikesCount))
	if p.LikedByMe {
		like = styles.Liked.Render(fmt.Sprintf("%s %d", icons.LikeIcon(true), p.LikesCount))
	}
	return strings.Join([]string{
		styles.Author.Render(p.AuthorNickname),
		styles.Meta.Render(formatTime(p.Created())),
		like,
		styles.Meta.Render(fmt.Sprintf("%s %d", icons.Comment, p.CommentsCount)),
		styles.Meta.Render(fmt.Sprintf("%s %d", icons.Views, p.ViewCount)),
	}, "  ")
}

// FormatTime renders a backend timestamp the way the feed shows it.
func FormatTime(t time.Time, ok bool) string {
	return formatTime(t, ok)
}

func formatTime(t time.Time, ok bool) string {
	if !ok {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

// Run starts the browser full-screen and blocks until the user quits.
func Run(ctx context.Context, posts Posts, comments Comments, pageSize int) error {
	p := tea.NewProgram(New(posts, comments, pageSize), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
