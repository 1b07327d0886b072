package ui

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/tinsel/internal/countdown"
	"github.com/five82/tinsel/internal/logtail"
	"github.com/five82/tinsel/internal/prefs"
	"github.com/five82/tinsel/internal/scene"
)

// SceneManager is the part of scene.Manager the UI drives.
type SceneManager interface {
	Snapshot() scene.Snapshot
	AddNow(ctx context.Context) (int, error)
	Reset(ctx context.Context, confirm scene.Confirmer) (bool, error)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Manager   SceneManager
	Countdown countdown.Target
	// Updates signals that the scene changed. It may be nil.
	Updates       <-chan struct{}
	GeneratorMode string
	ThemeName     string
	Snow          bool
	PrefsPath     string
	LogPath       string
	Logger        *zap.Logger
	Now           func() time.Time
	Rand          *rand.Rand
	Tick          time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx           context.Context
	manager       SceneManager
	countdown     countdown.Target
	updates       <-chan struct{}
	generatorMode string
	prefsPath     string
	logPath       string
	logger        *zap.Logger
	now           func() time.Time
	rng           *rand.Rand
	tick          time.Duration
	keys          keyMap

	// UI state
	theme        Theme
	snowOn       bool
	snowGen      int // frame loop generation; stale frames are dropped
	snow         *snowfield
	width        int
	height       int
	ready        bool
	showHelp     bool
	showSettings bool
	modal        Modal
	status       string

	// Data state
	snapshot scene.Snapshot
	activity []logtail.Entry
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	target := opts.Countdown
	if target.Day == 0 {
		target = countdown.Default()
	}

	m := Model{
		ctx:           ctx,
		manager:       opts.Manager,
		countdown:     target,
		updates:       opts.Updates,
		generatorMode: opts.GeneratorMode,
		prefsPath:     opts.PrefsPath,
		logPath:       opts.LogPath,
		logger:        logger,
		now:           now,
		rng:           rng,
		tick:          tick,
		keys:          DefaultKeyMap(),
		theme:         GetTheme(opts.ThemeName),
		snowOn:        opts.Snow,
		snow:          &snowfield{},
	}
	if m.manager != nil {
		m.snapshot = m.manager.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.manager != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.manager))
	}
	if m.updates != nil {
		cmds = append(cmds, waitForChangeCmd(m.updates))
	}
	if m.snowOn {
		cmds = append(cmds, frameCmd(m.snowGen))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		w, h := m.canvasSize()
		m.snow.resize(w, h, m.rng)
		return m, nil

	case tickMsg:
		var cmds []tea.Cmd
		if m.manager != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.manager))
		}
		if m.showSettings {
			cmds = append(cmds, readActivityCmd(m.logPath))
		}
		cmds = append(cmds, tickCmd(m.tick))
		return m, tea.Batch(cmds...)

	case frameMsg:
		if !m.snowOn || msg.gen != m.snowGen {
			return m, nil
		}
		m.snow.step(m.rng)
		return m, frameCmd(m.snowGen)

	case changedMsg:
		var cmds []tea.Cmd
		if m.manager != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.manager))
		}
		if m.updates != nil {
			cmds = append(cmds, waitForChangeCmd(m.updates))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = scene.Snapshot(msg)
		return m, nil

	case activityMsg:
		m.activity = msg
		return m, nil

	case addDoneMsg:
		switch {
		case errors.Is(msg.err, scene.ErrBusy):
			m.status = "Already adding elements"
		case msg.err != nil:
			m.status = "Add failed: " + msg.err.Error()
		default:
			m.status = fmt.Sprintf("Added %d element(s)", msg.added)
		}
		return m, m.refreshCmd()

	case resetDoneMsg:
		switch {
		case msg.err != nil:
			m.status = "Clear failed: " + msg.err.Error()
		case msg.reset:
			m.status = "Scene cleared"
		default:
			m.status = "Clear cancelled"
		}
		return m, m.refreshCmd()
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	width, height := m.canvasSize()
	body := m.renderCanvas(width, height)
	if m.showSettings && width < m.width {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderSettings(height))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// canvasSize returns the space left for the scene.
func (m Model) canvasSize() (int, int) {
	width := m.width
	if m.showSettings && m.width-LayoutPanelWidth >= LayoutMinCanvasWidth {
		width = m.width - LayoutPanelWidth
	}
	height := m.height - lipgloss.Height(m.renderHeader()) - 1
	if height < 1 {
		height = 1
	}
	return width, height
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleSnow):
		m.snowOn = !m.snowOn
		m.snowGen++
		m.savePrefs()
		if m.snowOn {
			return m, frameCmd(m.snowGen)
		}
		return m, nil

	case key.Matches(msg, m.keys.Settings):
		m.showSettings = !m.showSettings
		m.status = ""
		m.resizeSnow()
		if m.showSettings {
			return m, readActivityCmd(m.logPath)
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.showSettings = false
		m.resizeSnow()
		return m, nil
	}

	if !m.showSettings || m.manager == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.AddNow):
		if m.snapshot.Generating {
			return m, nil
		}
		m.status = "Adding elements..."
		return m, addNowCmd(m.ctx, m.manager)

	case key.Matches(msg, m.keys.Clear):
		answer := make(chan bool, 1)
		m.modal = newConfirmModal("Clear the scene",
			"Are you sure you want to clear all elements?", answer)
		return m, resetCmd(m.ctx, m.manager, answer)
	}
	return m, nil
}

func (m *Model) resizeSnow() {
	if !m.ready {
		return
	}
	w, h := m.canvasSize()
	m.snow.resize(w, h, m.rng)
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, Snow: m.snowOn}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", zap.Error(err))
	}
}

func (m Model) refreshCmd() tea.Cmd {
	var cmds []tea.Cmd
	if m.manager != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.manager))
	}
	if m.showSettings {
		cmds = append(cmds, readActivityCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

// Messages

type tickMsg time.Time

type frameMsg struct {
	gen int
}

type changedMsg struct{}

type snapshotMsg scene.Snapshot

type activityMsg []logtail.Entry

type addDoneMsg struct {
	added int
	err   error
}

type resetDoneMsg struct {
	reset bool
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func frameCmd(gen int) tea.Cmd {
	return tea.Tick(SnowFrameInterval, func(time.Time) tea.Msg {
		return frameMsg{gen: gen}
	})
}

func fetchSnapshotCmd(manager SceneManager) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(manager.Snapshot())
	}
}

func waitForChangeCmd(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func readActivityCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, ActivityLines)
		if err != nil {
			return activityMsg(nil)
		}
		// Newest first
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
		return activityMsg(entries)
	}
}

func addNowCmd(ctx context.Context, manager SceneManager) tea.Cmd {
	return func() tea.Msg {
		added, err := manager.AddNow(ctx)
		return addDoneMsg{added: added, err: err}
	}
}

// resetCmd runs Reset with a Confirmer that blocks until the confirm modal
// answers or ctx ends.
func resetCmd(ctx context.Context, manager SceneManager, answer <-chan bool) tea.Cmd {
	return func() tea.Msg {
		reset, err := manager.Reset(ctx, func() bool {
			select {
			case yes := <-answer:
				return yes
			case <-ctx.Done():
				return false
			}
		})
		return resetDoneMsg{reset: reset, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
