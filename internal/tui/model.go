// Package tui provides the Bubble Tea hold-target game.
package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuihold/internal/engine"
	"github.com/verte-zerg/tuihold/internal/logger"
	"github.com/verte-zerg/tuihold/internal/model"
)

const (
	frameRate     = 30
	frameInterval = time.Second / frameRate
)

type screen int

const (
	screenPlaying screen = iota
	screenResults
	screenStopped
	screenError
)

type frameMsg time.Time

// Deps are the collaborators of the game model. Nil fields get defaults.
type Deps struct {
	Config  model.GameConfig
	User    model.UserContext
	Gateway engine.PersistenceGateway
	Audio   engine.AudioCue
	Random  engine.RandomSource
	Logger  *logger.Logger
	// Clock and Queue drive the engine; tests pass a manual clock.
	Clock engine.Clock
	Queue *engine.TimerQueue
}

// Model implements the Bubble Tea game UI.
type Model struct {
	base    model.GameConfig
	user    model.UserContext
	keys    KeyMap
	log     *logger.Logger
	clock   engine.Clock
	queue   *engine.TimerQueue
	surface *Surface
	session *engine.Session

	width  int
	height int

	// pendingStart defers Session.Start until the terminal size is known.
	pendingStart bool
	screen       screen

	result   model.SessionResult
	resultID int64
	saveErr  error
	startErr error
}

// NewModel constructs the game model. The first session starts once the
// terminal reports its size.
func NewModel(d Deps) *Model {
	clock := d.Clock
	if clock == nil {
		clock = engine.NewMonotonicClock()
	}
	queue := d.Queue
	if queue == nil {
		queue = engine.NewTimerQueue(clock)
	}
	log := d.Logger
	if log == nil {
		log = logger.Discard()
	}
	m := &Model{
		base:         d.Config,
		user:         d.User,
		keys:         DefaultKeyMap(),
		log:          log.WithPrefix("tui"),
		clock:        clock,
		queue:        queue,
		surface:      NewSurface(clock, d.Config.Radius),
		pendingStart: true,
	}
	m.session = engine.NewSession(engine.Deps{
		Clock:     clock,
		Scheduler: queue,
		Random:    d.Random,
		Surface:   m.surface,
		Gateway:   d.Gateway,
		Audio:     d.Audio,
		User:      d.User,
		Logger:    log,
	})
	m.session.OnEnded(m.onEnded)
	return m
}

// Session exposes the engine session.
func (m *Model) Session() *engine.Session {
	return m.session
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return frameTick()
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.pendingStart {
			m.pendingStart = false
			m.start()
			return m, nil
		}
		m.resize()
		return m, nil
	case frameMsg:
		m.fireDue()
		m.surface.Advance()
		return m, frameTick()
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

// fireDue runs every timer that is already due, so input is routed against
// the state the engine has at the current time rather than at the last frame.
func (m *Model) fireDue() {
	m.queue.FireDue(m.clock.Now())
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.fireDue()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.session.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Restart):
		if m.width == 0 || m.height == 0 {
			m.pendingStart = true
			return m, nil
		}
		m.start()
	case key.Matches(msg, m.keys.Stop):
		if m.session.State() == model.SessionRunning {
			m.session.Stop()
			m.screen = screenStopped
			m.log.Info("session %s stopped by user", m.session.ID())
		}
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	m.fireDue()
	if m.screen != screenPlaying || m.session.State() != model.SessionRunning {
		return
	}
	x, y, ok := pointerPosition(msg.X, msg.Y, m.width, m.height)
	if !ok {
		m.session.PointerLeave()
		return
	}
	m.session.PointerMove(x, y)
}

// resize moves a running session onto the new playfield. A playfield too
// small for one target stops the session.
func (m *Model) resize() {
	m.fireDue()
	if m.screen != screenPlaying || m.session.State() != model.SessionRunning {
		return
	}
	w, h := playfieldSize(m.width, m.height)
	if err := m.session.Resize(w, h); err != nil {
		m.startErr = err
		m.screen = screenError
		m.log.Warn("session %s stopped on resize: %v", m.session.ID(), err)
	}
}

func (m *Model) start() {
	cfg := m.base
	cfg.PlayfieldWidth, cfg.PlayfieldHeight = playfieldSize(m.width, m.height)
	m.surface.Clear()
	m.surface.SetRadius(cfg.Radius)
	m.startErr = nil
	if err := m.session.Start(cfg); err != nil {
		m.startErr = err
		m.screen = screenError
		m.log.Warn("failed to start session: %v", err)
		return
	}
	m.screen = screenPlaying
}

func (m *Model) onEnded(result model.SessionResult, id int64, err error) {
	m.result = result
	m.resultID = id
	m.saveErr = err
	m.screen = screenResults
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	help := renderHelp(m.width, m.keys.help())
	switch m.screen {
	case screenResults:
		return m.center(renderResults(m.result, m.resultID, m.saveErr), help)
	case screenStopped:
		return m.center(titleStyle.Render("Session stopped")+"\n"+footerStyle.Render("Not saved."), help)
	case screenError:
		msg := "Cannot start session"
		if m.startErr != nil {
			msg = m.startErr.Error()
		}
		if errors.Is(m.startErr, engine.ErrPlayfieldTooSmall) {
			msg += "\nEnlarge the terminal and press r."
		}
		return m.center(errorStyle.Render(msg), help)
	}

	rows := playfieldRows(m.height)
	progress := map[int64]float64{}
	for _, v := range m.session.Targets() {
		progress[v.ID] = v.Progress
	}
	var b strings.Builder
	b.WriteString(renderHUD(m.width, m.session, m.user.Username))
	b.WriteString("\n")
	b.WriteString(renderPlayfield(m.width, rows, m.surface, progress))
	b.WriteString("\n")
	b.WriteString(help)
	return b.String()
}

func (m *Model) center(content, help string) string {
	if m.height < 3 {
		return content
	}
	body := lipgloss.Place(m.width, m.height-footerRows, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.Place(m.width, footerRows, lipgloss.Center, lipgloss.Center, help)
}
