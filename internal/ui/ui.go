package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DaanHessen/valentine-tui/internal/audio"
	"github.com/DaanHessen/valentine-tui/internal/engine"
	"github.com/DaanHessen/valentine-tui/internal/media"
	"github.com/DaanHessen/valentine-tui/internal/text"
	"github.com/DaanHessen/valentine-tui/internal/util"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

type focus int

const (
	focusAccept focus = iota
	focusDecline
)

// photosValidatedMsg delivers the validated photo set for the collage mount that asked for it.
type photosValidatedMsg struct {
	mount  uint64
	photos []media.Photo
}

// frameMsg advances the confetti field. Frames from an older loop carry a stale id.
type frameMsg struct{ id int }

// Options carries everything Run needs besides the scheduler.
type Options struct {
	Config     util.Config
	Script     text.Script
	Candidates []media.Photo
	Validator  *media.Validator
	Music      *audio.Toggle
	Logger     *zap.Logger
	// NewSessionID names each play-through; uuid.NewString when nil.
	NewSessionID func() string
}

type model struct {
	ctx    context.Context
	app    *engine.App
	log    *zap.Logger
	cfg    util.Config
	script text.Script

	md      *text.Renderer
	mdWidth int
	mdCache map[string]string

	candidates []media.Photo
	validator  *media.Validator
	photos     []media.Photo
	validating bool
	selected   int
	lightbox   bool
	tiles      []rect
	vp         viewport.Model
	status     string

	focus       focus
	pointerOnNo bool

	confetti *confetti
	frameID  int

	music     *audio.Toggle
	keys      keyMap
	help      help.Model
	theme     string
	st        styles
	width     int
	height    int
	lastMount uint64
	newID     func() string
}

func newModel(ctx context.Context, sched engine.Scheduler, opts Options) model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	newID := opts.NewSessionID
	if newID == nil {
		newID = uuid.NewString
	}
	seedText := opts.Config.SeedText
	if seedText == "" {
		seedText = newID()
	}
	seed, err := engine.NewSessionSeed(seedText)
	if err != nil {
		log.Warn("session seed rejected", zap.Error(err))
		seed, _ = engine.NewSessionSeed("valentine")
	}

	m := model{
		ctx:        ctx,
		log:        log,
		cfg:        opts.Config,
		script:     opts.Script,
		mdCache:    map[string]string{},
		candidates: opts.Candidates,
		validator:  opts.Validator,
		confetti:   newConfetti(seed.Stream("confetti")),
		music:      opts.Music,
		keys:       defaultKeys(),
		help:       help.New(),
		theme:      opts.Config.Theme,
		width:      defaultWidth,
		height:     defaultHeight,
		newID:      newID,
		vp:         viewport.New(defaultWidth, defaultHeight),
	}
	if _, ok := palettes[m.theme]; !ok {
		m.theme = "rose"
	}
	m.st = newStyles(paletteFor(m.theme))
	m.app = engine.NewApp(engine.Options{
		Scheduler: sched,
		Seed:      seed,
		Logger:    log,
		OnBurst:   m.confetti.emit,
	})
	m.app.Start(newID())
	m.lastMount = m.app.Mount()
	m.resize(defaultWidth, defaultHeight)
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case timerFiredMsg:
		msg.timer.run()
	case photosValidatedMsg:
		m.applyPhotos(msg)
	case frameMsg:
		if msg.id == m.frameID {
			m.confetti.step()
			if m.app.Scene().Kind == engine.SceneCelebration && (!m.app.Celebration().Done() || m.confetti.active()) {
				cmds = append(cmds, m.frameTick())
			}
		}
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	cmds = append(cmds, m.sceneEffects())
	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	w, h := m.width, m.bodyHeight()
	var body string
	switch m.app.Scene().Kind {
	case engine.SceneIntro:
		body = m.introFrame(w, h).String()
	case engine.SceneCollage:
		body = m.collageFrame(w, h).String()
	case engine.SceneProposal:
		body = m.proposalFrame(w, h).canvas.String()
	case engine.SceneCelebration:
		c, _ := m.celebrationFrame(w, h)
		body = c.String()
	}
	return body + "\n" + m.footer()
}

func (m *model) bodyHeight() int {
	return max(1, m.height-lipgloss.Height(m.helpView()))
}

func (m *model) helpView() string {
	m.help.Width = m.width
	return m.help.View(m.keys)
}

func (m *model) footer() string {
	music := "♪ off"
	switch {
	case !m.music.Available():
		music = "♪ n/a"
	case m.music.Playing():
		music = "♪ on"
	}
	status := m.st.status.Render(fmt.Sprintf("%s · %s", music, m.theme))
	return overlay(m.helpView(), status, max(0, m.width-lipgloss.Width(status)), m.width)
}

func (m *model) resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	m.width, m.height = w, h
	m.confetti.resize(w, m.bodyHeight())
	wrap := min(60, max(20, w-10))
	if wrap != m.mdWidth || m.md == nil {
		r, err := text.NewRenderer(m.cfg.GlamourStyle, wrap)
		if err != nil {
			m.log.Warn("markdown renderer unavailable", zap.Error(err))
		}
		m.md, m.mdWidth = r, wrap
		m.mdCache = map[string]string{}
	}
	if m.app.Scene().Kind == engine.SceneCollage {
		m.refreshCollage()
	}
}

func (m *model) renderMarkdown(md string) string {
	if out, ok := m.mdCache[md]; ok {
		return out
	}
	out := m.md.Render(md)
	m.mdCache[md] = out
	return out
}

// sceneEffects starts the side effects that belong to a freshly mounted scene.
func (m *model) sceneEffects() tea.Cmd {
	mount := m.app.Mount()
	if mount == m.lastMount {
		return nil
	}
	m.lastMount = mount
	m.focus = focusAccept
	m.pointerOnNo = false
	m.lightbox = false
	m.status = ""
	switch m.app.Scene().Kind {
	case engine.SceneIntro:
		m.frameID++
		m.confetti.clear()
	case engine.SceneCollage:
		n := min(media.FallbackCount, len(m.candidates))
		m.photos = append([]media.Photo(nil), m.candidates[:n]...)
		m.validating = true
		m.selected = 0
		m.vp.SetYOffset(0)
		m.refreshCollage()
		return m.validateCmd(mount)
	case engine.SceneCelebration:
		m.frameID++
		m.confetti.clear()
		m.confetti.resize(m.width, m.bodyHeight())
		return m.frameTick()
	}
	return nil
}

func (m *model) validateCmd(mount uint64) tea.Cmd {
	v, ctx, candidates := m.validator, m.ctx, m.candidates
	return func() tea.Msg {
		var photos []media.Photo
		if v != nil {
			photos = v.Validate(ctx, candidates)
		} else {
			photos = candidates
		}
		return photosValidatedMsg{mount: mount, photos: photos}
	}
}

func (m *model) applyPhotos(msg photosValidatedMsg) {
	if msg.mount != m.app.Mount() || m.app.Scene().Kind != engine.SceneCollage {
		m.log.Debug("dropping stale validation", zap.Uint64("mount", msg.mount))
		return
	}
	m.photos = msg.photos
	m.validating = false
	if m.selected >= len(m.photos) {
		m.selected = max(0, len(m.photos)-1)
	}
	m.refreshCollage()
}

func (m *model) frameTick() tea.Cmd {
	id := m.frameID
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{id: id} })
}

// refreshCollage re-lays the grid into the viewport and keeps the selection visible.
func (m *model) refreshCollage() {
	body, rects := m.collageGrid(m.width)
	m.tiles = rects
	m.vp.Width = m.width
	m.vp.Height = m.collageViewportHeight(m.bodyHeight())
	m.vp.SetContent(body)
	if m.selected >= len(rects) {
		return
	}
	r := rects[m.selected]
	switch {
	case r.y < m.vp.YOffset:
		m.vp.SetYOffset(r.y)
	case r.y+r.h > m.vp.YOffset+m.vp.Height:
		m.vp.SetYOffset(r.y + r.h - m.vp.Height)
	}
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
		return nil
	case key.Matches(msg, m.keys.Music):
		m.music.Toggle()
		return nil
	case key.Matches(msg, m.keys.Theme):
		m.theme = nextThemeName(m.theme, 1)
		m.st = newStyles(paletteFor(m.theme))
		if m.app.Scene().Kind == engine.SceneCollage {
			m.refreshCollage()
		}
		return nil
	}

	var err error
	switch m.app.Scene().Kind {
	case engine.SceneIntro:
		if key.Matches(msg, m.keys.Confirm) && m.app.Scene().Step == engine.IntroSteps-1 {
			err = m.app.CompleteIntro()
		}
	case engine.SceneCollage:
		err = m.collageKey(msg)
	case engine.SceneProposal:
		err = m.proposalKey(msg)
	case engine.SceneCelebration:
		if key.Matches(msg, m.keys.Replay) {
			err = m.app.Reset(m.newID())
		}
	}
	if err != nil {
		m.log.Debug("input ignored", zap.String("key", msg.String()), zap.Error(err))
	}
	return nil
}

func (m *model) collageKey(msg tea.KeyMsg) error {
	if m.lightbox {
		switch {
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Confirm):
			m.lightbox = false
			m.status = ""
		case key.Matches(msg, m.keys.Copy):
			m.copySelected()
		}
		return nil
	}
	cols := collageColumns(m.width)
	moved := true
	switch {
	case key.Matches(msg, m.keys.Left):
		m.selected--
	case key.Matches(msg, m.keys.Right):
		m.selected++
	case key.Matches(msg, m.keys.Up):
		m.selected -= cols
	case key.Matches(msg, m.keys.Down):
		m.selected += cols
	case key.Matches(msg, m.keys.PageUp):
		m.vp.SetYOffset(m.vp.YOffset - m.vp.Height/2)
		moved = false
	case key.Matches(msg, m.keys.PageDown):
		m.vp.SetYOffset(m.vp.YOffset + m.vp.Height/2)
		moved = false
	case key.Matches(msg, m.keys.Confirm):
		m.lightbox = len(m.photos) > 0
		moved = false
	case key.Matches(msg, m.keys.Copy):
		m.copySelected()
		moved = false
	case key.Matches(msg, m.keys.Next):
		return m.app.FinishCollage()
	default:
		moved = false
	}
	if moved {
		m.selected = min(max(0, m.selected), max(0, len(m.photos)-1))
		m.refreshCollage()
	}
	return nil
}

func (m *model) copySelected() {
	if m.selected >= len(m.photos) {
		return
	}
	src := m.photos[m.selected].Src
	if err := clipboard.WriteAll(src); err != nil {
		m.log.Debug("clipboard unavailable", zap.Error(err))
		m.status = m.st.status.Render("clipboard unavailable")
		return
	}
	m.status = m.st.status.Render("copied " + src)
}

func (m *model) proposalKey(msg tea.KeyMsg) error {
	if !m.app.Scene().EnvelopeOpen {
		if key.Matches(msg, m.keys.Confirm) {
			return m.app.OpenEnvelope()
		}
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Yes):
		return m.app.Accept()
	case key.Matches(msg, m.keys.Confirm):
		if m.focus == focusAccept {
			return m.app.Accept()
		}
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.No):
		// reaching for the decline control makes it flee; focus stays put
		m.app.Decline()
		m.focus = focusAccept
	case key.Matches(msg, m.keys.Left):
		m.focus = focusAccept
	}
	return nil
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	press := msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft
	var err error
	switch m.app.Scene().Kind {
	case engine.SceneIntro:
		if press && m.app.Scene().Step == engine.IntroSteps-1 {
			err = m.app.CompleteIntro()
		}
	case engine.SceneCollage:
		err = m.collageMouse(msg, press)
	case engine.SceneProposal:
		err = m.proposalMouse(msg, press)
	case engine.SceneCelebration:
		if press {
			_, replay := m.celebrationFrame(m.width, m.bodyHeight())
			if replay.contains(msg.X, msg.Y) {
				err = m.app.Reset(m.newID())
			}
		}
	}
	if err != nil {
		m.log.Debug("click ignored", zap.Int("x", msg.X), zap.Int("y", msg.Y), zap.Error(err))
	}
}

func (m *model) collageMouse(msg tea.MouseMsg, press bool) error {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.vp.SetYOffset(m.vp.YOffset - 1)
		return nil
	case tea.MouseButtonWheelDown:
		m.vp.SetYOffset(m.vp.YOffset + 1)
		return nil
	}
	if !press {
		return nil
	}
	if m.lightbox {
		m.lightbox = false
		m.status = ""
		return nil
	}
	if m.continueRect(m.bodyHeight()).contains(msg.X, msg.Y) {
		return m.app.FinishCollage()
	}
	top := lipgloss.Height(m.collageHeader()) + 1
	if msg.Y < top || msg.Y >= top+m.vp.Height {
		return nil
	}
	gy := msg.Y - top + m.vp.YOffset
	for i, r := range m.tiles {
		if r.contains(msg.X, gy) {
			m.selected = i
			m.lightbox = true
			m.refreshCollage()
			break
		}
	}
	return nil
}

func (m *model) proposalMouse(msg tea.MouseMsg, press bool) error {
	if !m.app.Scene().EnvelopeOpen {
		if press {
			return m.app.OpenEnvelope()
		}
		return nil
	}
	switch m.proposalFrame(m.width, m.bodyHeight()).hit(msg.X, msg.Y) {
	case targetAccept:
		m.pointerOnNo = false
		if press {
			return m.app.Accept()
		}
	case targetDecline:
		// entering counts once and a click counts again; after a move the
		// next motion counts anew, wherever the control landed
		if press || !m.pointerOnNo {
			m.app.Decline()
			m.pointerOnNo = false
			return nil
		}
	default:
		m.pointerOnNo = false
	}
	return nil
}
