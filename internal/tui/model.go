// Package tui provides the Bubble Tea reaction game interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/verte-zerg/tuireact/internal/eventlog"
	"github.com/verte-zerg/tuireact/internal/game"
	"github.com/verte-zerg/tuireact/internal/model"
	"github.com/verte-zerg/tuireact/internal/player"
	"github.com/verte-zerg/tuireact/internal/record"
)

// History stores played rounds locally.
type History interface {
	InsertRound(ctx context.Context, r model.RoundRecord) error
}

// Options wires the model to its collaborators. Only Controller is required.
type Options struct {
	Controller *game.Controller
	// Name skips the name entry screen when set.
	Name     string
	Prefs    player.Prefs
	History  History
	Recorder record.Recorder
	Log      *eventlog.Logger
	Timeout  time.Duration
}

// ErrNoController is returned by Run when Options has no controller.
var ErrNoController = errors.New("tui: controller is required")

type screen int

const (
	screenName screen = iota
	screenWelcome
	screenGame
)

type timerMsg struct {
	timer game.Timer
}

type historyMsg struct {
	err error
}

// Model implements the Bubble Tea game UI.
type Model struct {
	ctrl     *game.Controller
	prefs    player.Prefs
	history  History
	recorder record.Recorder
	log      *eventlog.Logger
	timeout  time.Duration
	after    func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

	screen    screen
	name      string
	savedName string
	input     textinput.Model
	nameErr   string

	width  int
	height int
}

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	panelStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Align(lipgloss.Center, lipgloss.Center)
)

// panelColors maps each round state to its stimulus panel background.
var panelColors = map[game.RoundState]lipgloss.Color{
	game.StateIdle:          lipgloss.Color("#3A3A3A"),
	game.StateWaiting:       lipgloss.Color("#B3261E"),
	game.StateReady:         lipgloss.Color("#2E7D32"),
	game.StateClickedEarly:  lipgloss.Color("#C89A3A"),
	game.StateClickedLate:   lipgloss.Color("#D4631F"),
	game.StateLevelComplete: lipgloss.Color("#1E5AA8"),
	game.StateGameOver:      lipgloss.Color("#3A3A3A"),
}

const (
	wonColor      = lipgloss.Color("#6A4C93")
	defaultPanelW = 48
	defaultPanelH = 9
)

// NewModel constructs the game TUI model.
func NewModel(opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "your name"
	input.CharLimit = player.MaxNameLen
	input.Prompt = "Name: "

	m := &Model{
		ctrl:     opts.Controller,
		prefs:    opts.Prefs,
		history:  opts.History,
		recorder: opts.Recorder,
		log:      opts.Log,
		timeout:  opts.Timeout,
		after:    tea.Tick,
		input:    input,
	}
	if name, err := player.Normalize(opts.Name); err == nil {
		m.name = name
		m.screen = screenGame
		return m
	}
	if m.prefs != nil {
		m.savedName = player.Load(context.Background(), m.prefs)
	}
	if m.savedName != "" {
		m.screen = screenWelcome
		return m
	}
	m.screen = screenName
	m.input.Focus()
	return m
}

// Name returns the player name, empty until one is chosen.
func (m *Model) Name() string {
	return m.name
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.screen == screenName {
		return textinput.Blink
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case timerMsg:
		wasOver := m.ctrl.State() == game.StateGameOver
		cmd := m.apply(m.ctrl.Fire(msg.timer))
		if !wasOver && m.ctrl.State() == game.StateGameOver {
			st := m.ctrl.Stats()
			m.logEvent(eventlog.Event{Event: eventlog.EventGameOver, Player: m.name, Level: st.Level + 1, TotalScore: st.TotalScore, Lives: st.Lives})
		}
		return m, cmd
	case record.ResultMsg:
		m.logResult(msg)
		return m, nil
	case historyMsg:
		if msg.err != nil {
			m.logEvent(eventlog.Event{Event: eventlog.EventHistoryFailed, Player: m.name, Error: msg.err.Error()})
		}
		return m, nil
	case tea.MouseMsg:
		if m.screen == screenGame && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			return m, m.click()
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, m.quit()
		}
		switch m.screen {
		case screenName:
			return m.updateName(msg)
		case screenWelcome:
			return m.updateWelcome(msg)
		default:
			return m.updateGame(msg)
		}
	default:
		if m.screen == screenName {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) updateName(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	name, err := player.Normalize(m.input.Value())
	if err != nil {
		m.nameErr = err.Error()
		return m, nil
	}
	if m.prefs != nil {
		if _, err := player.Save(context.Background(), m.prefs, name); err != nil {
			logErrf("failed to save player name: %v\n", err)
		}
	}
	m.enterGame(name)
	return m, nil
}

func (m *Model) updateWelcome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace:
		m.enterGame(m.savedName)
		return m, nil
	case msg.Type == tea.KeyTab || isRune(msg, 'n'):
		if m.prefs != nil {
			if err := player.Clear(context.Background(), m.prefs); err != nil {
				logErrf("failed to clear player name: %v\n", err)
			}
		}
		m.savedName = ""
		m.screen = screenName
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case isRune(msg, 'q'):
		return m, m.quit()
	default:
		return m, nil
	}
}

func (m *Model) updateGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeySpace || msg.Type == tea.KeyEnter:
		return m, m.click()
	case isRune(msg, 'r'):
		m.ctrl.Reset()
		m.logEvent(eventlog.Event{Event: eventlog.EventSessionReset, Player: m.name})
		return m, nil
	case isRune(msg, 'q') || msg.Type == tea.KeyEsc:
		return m, m.quit()
	default:
		return m, nil
	}
}

func (m *Model) enterGame(name string) {
	m.name = name
	m.nameErr = ""
	m.input.Blur()
	m.screen = screenGame
}

// click starts the session from idle and counts as a click otherwise.
func (m *Model) click() tea.Cmd {
	if m.ctrl.State() == game.StateIdle {
		m.logEvent(eventlog.Event{Event: eventlog.EventSessionStarted, Player: m.name, Level: 1})
		return m.apply(m.ctrl.Start())
	}
	return m.apply(m.ctrl.Input())
}

func (m *Model) quit() tea.Cmd {
	m.ctrl.Close()
	return tea.Quit
}

// apply turns controller effects into commands.
func (m *Model) apply(effects game.Effects) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(effects.Timers)+3)
	for _, t := range effects.Timers {
		timer := t
		cmds = append(cmds, m.after(timer.After, func(time.Time) tea.Msg {
			return timerMsg{timer: timer}
		}))
	}
	if res := effects.Result; res != nil {
		cmds = append(cmds, m.onResult(res)...)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) onResult(res *game.RoundResult) []tea.Cmd {
	reactionMs := game.Millis(res.Reaction)
	ev := eventlog.Event{
		Event:      eventlog.EventRoundFailed,
		Player:     m.name,
		Level:      res.Level,
		ReactionMs: reactionMs,
		Points:     res.Points,
		TotalScore: res.TotalScore,
		Lives:      res.Lives,
		Data:       map[string]any{"threshold_ms": game.Millis(res.Threshold)},
	}
	if res.Success {
		ev.Event = eventlog.EventRoundScored
	}
	m.logEvent(ev)
	if m.ctrl.State() == game.StateGameOver {
		m.logEvent(eventlog.Event{Event: eventlog.EventGameOver, Player: m.name, Level: res.Level, TotalScore: res.TotalScore})
	}

	var cmds []tea.Cmd
	if cmd := m.saveRound(res, reactionMs); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if res.Success && m.recorder != nil {
		cmds = append(cmds, record.Dispatch(m.recorder, record.ScoreFor(m.name, reactionMs, res.Level, res.TotalScore), m.timeout)...)
	}
	return cmds
}

func (m *Model) saveRound(res *game.RoundResult, reactionMs float64) tea.Cmd {
	if m.history == nil {
		return nil
	}
	rec := model.RoundRecord{
		ID:         uuid.NewString(),
		PlayerName: m.name,
		Level:      res.Level,
		LevelID:    res.LevelID,
		ReactionMs: reactionMs,
		Success:    res.Success,
		Points:     res.Points,
		TotalScore: res.TotalScore,
		Lives:      res.Lives,
		PlayedAt:   res.At,
	}
	history := m.history
	return func() tea.Msg {
		return historyMsg{err: history.InsertRound(context.Background(), rec)}
	}
}

func (m *Model) logResult(msg record.ResultMsg) {
	ev := eventlog.Event{Player: msg.Player, Data: map[string]any{"op": string(msg.Op)}}
	switch {
	case msg.Op == record.OpScore && msg.Err == nil:
		ev.Event = eventlog.EventScoreSubmitted
	case msg.Op == record.OpScore:
		ev.Event = eventlog.EventScoreFailed
	case msg.Err == nil:
		ev.Event = eventlog.EventUserUpserted
	default:
		ev.Event = eventlog.EventUserUpsertFailed
	}
	if msg.Err != nil {
		ev.Error = msg.Err.Error()
	}
	m.logEvent(ev)
}

func (m *Model) logEvent(ev eventlog.Event) {
	if err := m.log.Append(ev); err != nil {
		logErrf("failed to write event log: %v\n", err)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.screen {
	case screenName:
		content = m.renderNameEntry()
	case screenWelcome:
		content = m.renderWelcome()
	default:
		content = m.renderGame()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderNameEntry() string {
	lines := []string{
		headerStyle.Render("Reaction Speed"),
		"",
		"Enter your name to start.",
		m.input.View(),
	}
	if m.nameErr != "" {
		lines = append(lines, errorStyle.Render(m.nameErr))
	}
	lines = append(lines, "", hintStyle.Render("enter: continue · ctrl+c: quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderWelcome() string {
	return strings.Join([]string{
		headerStyle.Render("Reaction Speed"),
		"",
		fmt.Sprintf("Welcome back, %s!", m.savedName),
		"",
		hintStyle.Render("enter: play · n: use different name · q: quit"),
	}, "\n")
}

func (m *Model) renderGame() string {
	panelW, panelH := defaultPanelW, defaultPanelH
	if m.width > 0 {
		panelW = clamp(m.width*2/3, 20, 80)
	}
	if m.height > 0 {
		panelH = clamp(m.height/2, 5, 15)
	}
	bg := panelColors[m.ctrl.State()]
	if m.ctrl.Won() {
		bg = wonColor
	}
	panel := panelStyle.Background(bg).Width(panelW).Height(panelH).Render(m.panelText())
	return strings.Join([]string{
		m.renderHeader(),
		"",
		panel,
		"",
		m.renderFooter(),
		hintStyle.Render("space/enter/click: react · r: reset · q: quit"),
	}, "\n")
}

func (m *Model) renderHeader() string {
	lvl := m.ctrl.Level()
	st := m.ctrl.Stats()
	return headerStyle.Render(fmt.Sprintf("%s · Level %d/%d %s · target %dms · level score %d",
		m.name, st.Level+1, m.ctrl.Levels(), lvl.Name, lvl.Target.Milliseconds(), st.LevelScore))
}

func (m *Model) panelText() string {
	st := m.ctrl.Stats()
	last := m.ctrl.LastResult()
	switch m.ctrl.State() {
	case game.StateIdle:
		return "Press space to start"
	case game.StateWaiting:
		return "Wait for green..."
	case game.StateReady:
		return "CLICK!"
	case game.StateClickedEarly:
		return fmt.Sprintf("Too early!\nRetry in %d", m.ctrl.Countdown())
	case game.StateClickedLate:
		if last == nil {
			return fmt.Sprintf("Too slow!\nRetry in %d", m.ctrl.Countdown())
		}
		return fmt.Sprintf("Too slow: %s (needed %s)\nLives left: %d\nRetry in %d",
			formatMs(last.Reaction), formatMs(last.Threshold), st.Lives, m.ctrl.Countdown())
	case game.StateLevelComplete:
		if m.ctrl.Countdown() > 0 {
			return fmt.Sprintf("Next level in %d", m.ctrl.Countdown())
		}
		if last == nil {
			return "Level complete!"
		}
		return fmt.Sprintf("%s\n+%d points", formatMs(last.Reaction), last.Points)
	case game.StateGameOver:
		if m.ctrl.Won() {
			return fmt.Sprintf("You won!\nTotal points: %d\n\nPress r to play again", st.TotalScore)
		}
		return fmt.Sprintf("Game over\nTotal points: %d\n\nPress r to play again", st.TotalScore)
	default:
		return ""
	}
}

func (m *Model) renderFooter() string {
	st := m.ctrl.Stats()
	segments := []string{
		"Last " + formatOptionalMs(st.LastReaction),
		"Best " + formatOptionalMs(st.BestReaction),
	}
	if avg, ok := st.AverageReaction(); ok {
		segments = append(segments, fmt.Sprintf("Avg %s (%d)", formatMs(avg), st.Rounds))
	} else {
		segments = append(segments, "Avg --")
	}
	segments = append(segments,
		"Lives "+renderLives(st.Lives, m.ctrl.Params().Lives),
		fmt.Sprintf("Score %d", st.TotalScore),
	)
	return footerStyle.Render(strings.Join(segments, "  "))
}

func renderLives(lives, total int) string {
	if lives > total {
		total = lives
	}
	return strings.Repeat("♥", lives) + strings.Repeat("♡", total-lives)
}

func formatMs(d time.Duration) string {
	return fmt.Sprintf("%.0fms", game.Millis(d))
}

func formatOptionalMs(d *time.Duration) string {
	if d == nil {
		return "--"
	}
	return formatMs(*d)
}

func isRune(msg tea.KeyMsg, r rune) bool {
	return msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && msg.Runes[0] == r
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Run starts the game program and blocks until the player quits.
func Run(opts Options) (*Model, error) {
	if opts.Controller == nil {
		return nil, ErrNoController
	}
	m := NewModel(opts)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return m, err
	}
	return m, nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
