package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"courtiq-landing/internal/logging"
	"courtiq-landing/internal/signup"
	"courtiq-landing/internal/theme"
)

const (
	headline       = "Serving soon!"
	subline        = "Be the first to know when we launch. Sign up for updates!"
	logoText       = "◉ COURT IQ"
	inputWidth     = 32
	defaultCursor  = 530 * time.Millisecond
	toggleIconDark = "☀"
	toggleIconLite = "☾"
)

var errNoNotifier = errors.New("no notifier configured")

// Message types consumed by Update.
type (
	CursorTickMsg   struct{}
	SubmitResultMsg struct{ Err error }
)

// Options wires a model to one session.
type Options struct {
	Context  context.Context
	Subject  string
	Mode     theme.Mode
	Prefs    theme.Store
	Notifier signup.Notifier
	Renderer *lipgloss.Renderer
	Logger   *log.Logger

	Width  int
	Height int
	// CursorTick is the prompt cursor blink period; zero means the default.
	CursorTick time.Duration
}

// Model is the terminal rendering of the landing page.
type Model struct {
	ctx      context.Context
	subject  string
	prefs    theme.Store
	notifier signup.Notifier
	renderer *lipgloss.Renderer
	logger   *log.Logger

	mode   theme.Mode
	styles styles

	form signup.Form
	hint string

	width       int
	height      int
	cursorBlink bool
	cursorEvery time.Duration
}

// New builds the model for one session.
func New(opts Options) Model {
	m := Model{
		ctx:         opts.Context,
		subject:     opts.Subject,
		prefs:       opts.Prefs,
		notifier:    opts.Notifier,
		renderer:    opts.Renderer,
		logger:      opts.Logger,
		mode:        opts.Mode,
		width:       opts.Width,
		height:      opts.Height,
		cursorBlink: true,
		cursorEvery: opts.CursorTick,
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}
	if m.mode == "" {
		m.mode = theme.ModeLight
	}
	if m.cursorEvery <= 0 {
		m.cursorEvery = defaultCursor
	}
	m.styles = newStyles(m.renderer, theme.PaletteFor(m.mode))
	return m
}

// Mode reports the displayed theme.
func (m Model) Mode() theme.Mode { return m.mode }

// Form reports the current signup state.
func (m Model) Form() signup.Form { return m.form }

func (m Model) Init() tea.Cmd {
	return m.cursorTick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case CursorTickMsg:
		m.cursorBlink = !m.cursorBlink
		return m, m.cursorTick()
	case SubmitResultMsg:
		m.form.Finish(msg.Err)
		if msg.Err != nil {
			m.logger.Warn("signup_failed", "surface", "ssh", "subject", m.subject, "err", msg.Err)
		} else {
			m.logger.Info("signup_succeeded", "surface", "ssh", "subject", m.subject)
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyCtrlT:
		return m.toggleTheme()
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyBackspace:
		if r := []rune(m.form.Email); len(r) > 0 {
			m.form.SetEmail(string(r[:len(r)-1]))
		}
		m.hint = ""
	case tea.KeyRunes:
		m.form.SetEmail(m.form.Email + string(msg.Runes))
		m.hint = ""
	}
	return m, nil
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	m.mode = m.mode.Toggle()
	m.styles = newStyles(m.renderer, theme.PaletteFor(m.mode))

	// Saved inline so the stored mode always matches the last toggle.
	theme.Persist(m.ctx, m.prefs, m.subject, m.mode, m.logger)
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	// The submit control is disabled while a request is outstanding.
	if m.form.Submitting() {
		return m, nil
	}

	email, err := m.form.Begin()
	if err != nil {
		m.hint = signup.MessageInvalid
		return m, nil
	}
	m.hint = ""

	if m.notifier == nil {
		m.form.Finish(errNoNotifier)
		m.logger.Warn("signup_failed", "surface", "ssh", "subject", m.subject, "err", errNoNotifier)
		return m, nil
	}

	ctx, n := m.ctx, m.notifier
	return m, func() tea.Msg {
		return SubmitResultMsg{Err: n.Notify(ctx, email)}
	}
}

func (m Model) cursorTick() tea.Cmd {
	return tea.Tick(m.cursorEvery, func(time.Time) tea.Msg { return CursorTickMsg{} })
}

// View renders the page centered in the window.
func (m Model) View() string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.logo.Render(logoText),
		"",
		m.styles.headline.Render(headline),
		m.styles.subline.Render(subline),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, m.renderInput(), " ", m.renderButton()),
		m.renderStatus(),
		"",
		m.styles.help.Render("enter submit • ctrl+t theme • esc quit"),
	)

	toggle := m.renderToggle()
	if m.width <= 0 || m.height <= 0 {
		return toggle + "\n\n" + body
	}

	top := lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toggle)
	rest := max(m.height-lipgloss.Height(top), lipgloss.Height(body))
	return lipgloss.JoinVertical(lipgloss.Left, top, lipgloss.Place(m.width, rest, lipgloss.Center, lipgloss.Center, body))
}

func (m Model) renderToggle() string {
	if m.mode.IsDark() {
		return m.styles.toggle.Render(toggleIconDark)
	}
	return m.styles.toggle.Render(toggleIconLite)
}

func (m Model) renderInput() string {
	if m.form.Email == "" {
		cursor := " "
		if m.cursorBlink {
			cursor = "█"
		}
		return m.styles.input.Render(cursor + m.styles.inputHint.Render(signup.Placeholder))
	}

	value := m.form.Email
	if r := []rune(value); len(r) > inputWidth-3 {
		value = "…" + string(r[len(r)-(inputWidth-4):])
	}
	if m.cursorBlink {
		value += "█"
	}
	return m.styles.input.Render(value)
}

func (m Model) renderButton() string {
	if m.form.Submitting() {
		return m.styles.disabled.Render(signup.LabelSubmitting)
	}
	return m.styles.button.Render(signup.LabelSubmit)
}

func (m Model) renderStatus() string {
	switch {
	case m.hint != "":
		return m.styles.danger.Render(m.hint)
	case m.form.Status == signup.StatusSuccess:
		return m.styles.success.Render(m.form.Message())
	case m.form.Status == signup.StatusError:
		return m.styles.danger.Render(m.form.Message())
	default:
		return " "
	}
}
