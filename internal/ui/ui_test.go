package ui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaanHessen/valentine-tui/internal/engine"
	"github.com/DaanHessen/valentine-tui/internal/media"
	"github.com/DaanHessen/valentine-tui/internal/text"
	"github.com/DaanHessen/valentine-tui/internal/util"
)

const introLength = 19400 * time.Millisecond

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	rightKey = tea.KeyMsg{Type: tea.KeyRight}
)

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func testCandidates(n int) []media.Photo {
	out := make([]media.Photo, n)
	for i := range out {
		out[i] = media.Photo{Src: fmt.Sprintf("/photos/%d.jpg", i+1), Caption: media.CaptionFor(i)}
	}
	return out
}

// newTestModel wires a model to a manual clock. Photos whose src ends in "3.jpg" fail to load.
func newTestModel(t *testing.T) (model, *engine.ManualClock) {
	t.Helper()
	clk := engine.NewManualClock(time.Date(2025, 2, 14, 18, 0, 0, 0, time.UTC))
	prober := media.ProberFunc(func(_ context.Context, p media.Photo) error {
		if strings.HasSuffix(p.Src, "/3.jpg") {
			return errors.New("broken")
		}
		return nil
	})
	cfg := util.Default()
	cfg.GlamourStyle = "notty"
	cfg.SeedText = "ui-test"
	ids := 0
	m := newModel(context.Background(), clk, Options{
		Config:     cfg,
		Script:     text.Default("Rapunzel", "Bubu"),
		Candidates: testCandidates(6),
		Validator:  media.NewValidator(prober, 2, nil),
		NewSessionID: func() string {
			ids++
			return fmt.Sprintf("session-%d", ids)
		},
	})
	return m, clk
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

// findValidation runs cmd and any batched commands until a validation result shows up.
func findValidation(cmd tea.Cmd) (photosValidatedMsg, bool) {
	if cmd == nil {
		return photosValidatedMsg{}, false
	}
	switch msg := cmd().(type) {
	case photosValidatedMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if got, ok := findValidation(c); ok {
				return got, true
			}
		}
	}
	return photosValidatedMsg{}, false
}

func toCollage(t *testing.T, m model, clk *engine.ManualClock) (model, photosValidatedMsg) {
	t.Helper()
	clk.Advance(introLength)
	require.Equal(t, engine.IntroSteps-1, m.app.Scene().Step)
	m, cmd := update(t, m, enterKey)
	require.Equal(t, engine.SceneCollage, m.app.Scene().Kind)
	msg, ok := findValidation(cmd)
	require.True(t, ok, "entering the collage should start validation")
	return m, msg
}

func toOpenProposal(t *testing.T, m model, clk *engine.ManualClock) model {
	t.Helper()
	m, msg := toCollage(t, m, clk)
	m, _ = update(t, m, msg)
	m, _ = update(t, m, runeKey('n'))
	require.Equal(t, engine.SceneProposal, m.app.Scene().Kind)
	m, _ = update(t, m, enterKey)
	require.True(t, m.app.EnvelopeOpening())
	clk.Advance(engine.EnvelopeDelay)
	require.True(t, m.app.Scene().EnvelopeOpen)
	return m
}

func TestIntroIgnoresEnterBeforeLastStep(t *testing.T) {
	m, clk := newTestModel(t)
	m, _ = update(t, m, enterKey)
	assert.Equal(t, engine.SceneIntro, m.app.Scene().Kind)
	assert.Equal(t, 0, m.app.Scene().Step)

	clk.Advance(2200 * time.Millisecond)
	assert.Equal(t, 1, m.app.Scene().Step)
	assert.Contains(t, m.View(), "Valentine")
}

func TestCollageShowsRawCandidatesUntilValidated(t *testing.T) {
	m, clk := newTestModel(t)
	m, msg := toCollage(t, m, clk)

	assert.True(t, m.validating)
	assert.Equal(t, testCandidates(4), m.photos)

	m, _ = update(t, m, msg)
	assert.False(t, m.validating)
	require.Len(t, m.photos, 5)
	for _, p := range m.photos {
		assert.NotEqual(t, "/photos/3.jpg", p.Src)
	}
	assert.Equal(t, "/photos/4.jpg", m.photos[2].Src)
	assert.Len(t, m.tiles, 5)
}

func TestStaleValidationIsDropped(t *testing.T) {
	m, clk := newTestModel(t)
	m, msg := toCollage(t, m, clk)
	m, _ = update(t, m, runeKey('n'))
	require.Equal(t, engine.SceneProposal, m.app.Scene().Kind)

	before := m.photos
	m, _ = update(t, m, msg)
	assert.Equal(t, before, m.photos)

	stale := photosValidatedMsg{mount: msg.mount, photos: testCandidates(1)}
	m, _ = update(t, m, stale)
	assert.Equal(t, before, m.photos)
}

func TestCollageSelectionAndLightbox(t *testing.T) {
	m, clk := newTestModel(t)
	m, msg := toCollage(t, m, clk)
	m, _ = update(t, m, msg)

	m, _ = update(t, m, rightKey)
	assert.Equal(t, 1, m.selected)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.selected, "selection clamps at the first tile")

	m, _ = update(t, m, enterKey)
	assert.True(t, m.lightbox)
	assert.Contains(t, m.View(), m.photos[0].Src)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.lightbox)
}

func TestDeclineFleesFromKeyboard(t *testing.T) {
	m, clk := newTestModel(t)
	m = toOpenProposal(t, m, clk)

	ev := m.app.Evasion()
	require.NotNil(t, ev)
	assert.Equal(t, engine.AnchorFlow, ev.Anchoring())
	assert.Contains(t, m.View(), engine.DeclineLadder[0])

	m, _ = update(t, m, rightKey)
	assert.Equal(t, 1, ev.Attempts())
	assert.Equal(t, engine.AnchorViewport, ev.Anchoring())
	assert.Equal(t, focusAccept, m.focus)
	assert.Contains(t, m.View(), engine.DeclineLadder[1])

	for range 10 {
		m, _ = update(t, m, runeKey('x'))
	}
	assert.Equal(t, 11, ev.Attempts())
	assert.Equal(t, engine.SceneProposal, m.app.Scene().Kind, "declining never ends the proposal")
	assert.Contains(t, m.View(), engine.DeclineLadder[6])
}

func TestDeclineFleesFromPointer(t *testing.T) {
	m, clk := newTestModel(t)
	m = toOpenProposal(t, m, clk)
	ev := m.app.Evasion()

	layout := m.proposalFrame(m.width, m.bodyHeight())
	require.Positive(t, layout.no.w)
	hover := tea.MouseMsg{X: layout.no.x, Y: layout.no.y, Action: tea.MouseActionMotion}
	m, _ = update(t, m, hover)
	assert.Equal(t, 1, ev.Attempts())

	away := tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion}
	m, _ = update(t, m, away)
	assert.Equal(t, 1, ev.Attempts())
	assert.False(t, m.pointerOnNo)

	// wherever the control lands, the next motion over it counts again
	layout = m.proposalFrame(m.width, m.bodyHeight())
	m, _ = update(t, m, tea.MouseMsg{X: layout.no.x, Y: layout.no.y, Action: tea.MouseActionMotion})
	assert.Equal(t, 2, ev.Attempts())
	assert.Equal(t, engine.SceneProposal, m.app.Scene().Kind)
}

func leftPress(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func overlaps(a, b rect) bool {
	return a.y == b.y && a.x < b.x+b.w && b.x < a.x+a.w
}

// relocateUntil declines until the roaming control's rect satisfies ok.
func relocateUntil(t *testing.T, m model, ok func(no, yes rect) bool) proposalLayout {
	t.Helper()
	for range 5000 {
		m.app.Decline()
		layout := m.proposalFrame(m.width, m.bodyHeight())
		if ok(layout.no, layout.yes) {
			return layout
		}
	}
	t.Fatal("decline control never reached the wanted position")
	return proposalLayout{}
}

func TestClickOnRoamingDeclineRelocates(t *testing.T) {
	m, clk := newTestModel(t)
	m = toOpenProposal(t, m, clk)
	ev := m.app.Evasion()

	layout := relocateUntil(t, m, func(no, yes rect) bool { return !overlaps(no, yes) })
	require.Equal(t, engine.AnchorViewport, ev.Anchoring())
	before := ev.Attempts()
	m, _ = update(t, m, leftPress(layout.no.x, layout.no.y))
	assert.Equal(t, engine.SceneProposal, m.app.Scene().Kind)
	assert.Equal(t, before+1, ev.Attempts())
}

func TestClickWhereDeclineCoversAcceptRelocates(t *testing.T) {
	m, clk := newTestModel(t)
	m = toOpenProposal(t, m, clk)
	ev := m.app.Evasion()

	layout := relocateUntil(t, m, overlaps)
	require.True(t, layout.noOnTop)
	x := max(layout.no.x, layout.yes.x)
	require.True(t, layout.yes.contains(x, layout.no.y))
	assert.Equal(t, targetDecline, layout.hit(x, layout.no.y))

	before := ev.Attempts()
	m, _ = update(t, m, leftPress(x, layout.no.y))
	assert.Equal(t, engine.SceneProposal, m.app.Scene().Kind, "the covered accept button must not fire")
	assert.Equal(t, before+1, ev.Attempts())
}

func TestProposalHitFollowsStacking(t *testing.T) {
	l := proposalLayout{yes: rect{x: 0, y: 5, w: 10, h: 1}, no: rect{x: 6, y: 5, w: 8, h: 1}}
	assert.Equal(t, targetAccept, l.hit(7, 5), "in flow the accept button is on top")
	assert.Equal(t, targetDecline, l.hit(12, 5))
	assert.Equal(t, targetNone, l.hit(20, 5))

	l.noOnTop = true
	assert.Equal(t, targetDecline, l.hit(7, 5))
	assert.Equal(t, targetAccept, l.hit(2, 5))
}

func TestAcceptCelebratesAndReplayRestarts(t *testing.T) {
	m, clk := newTestModel(t)
	m = toOpenProposal(t, m, clk)
	first := m.app.SessionID()

	m, cmd := update(t, m, runeKey('y'))
	require.Equal(t, engine.SceneCelebration, m.app.Scene().Kind)
	assert.NotNil(t, cmd, "celebration starts the frame loop")

	clk.Advance(time.Second)
	assert.True(t, m.confetti.active())
	frame := m.frameID
	m, _ = update(t, m, frameMsg{id: frame})
	assert.Contains(t, m.View(), "YES")

	m, _ = update(t, m, runeKey('r'))
	assert.Equal(t, engine.IntroScene(0), m.app.Scene())
	assert.NotEqual(t, first, m.app.SessionID())
	assert.False(t, m.confetti.active())
	assert.NotEqual(t, frame, m.frameID)
}

func TestClickOnAcceptCelebrates(t *testing.T) {
	m, clk := newTestModel(t)
	m = toOpenProposal(t, m, clk)
	layout := m.proposalFrame(m.width, m.bodyHeight())
	click := tea.MouseMsg{X: layout.yes.x, Y: layout.yes.y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m, _ = update(t, m, click)
	assert.Equal(t, engine.SceneCelebration, m.app.Scene().Kind)
}

func TestThemeCycles(t *testing.T) {
	m, _ := newTestModel(t)
	start := m.theme
	m, _ = update(t, m, runeKey('t'))
	assert.NotEqual(t, start, m.theme)
	assert.Equal(t, nextThemeName(start, 1), m.theme)
}

func TestTeaTimerRunsOnce(t *testing.T) {
	calls := 0
	tt := &teaTimer{fn: func() { calls++ }, t: time.NewTimer(time.Hour)}
	tt.run()
	tt.run()
	assert.Equal(t, 1, calls)
	assert.False(t, tt.Stop())

	stopped := &teaTimer{fn: func() { calls++ }, t: time.NewTimer(time.Hour)}
	assert.True(t, stopped.Stop())
	stopped.run()
	assert.Equal(t, 1, calls, "a queued callback is skipped after Stop")
}

func TestSchedulerHoldsTimersUntilBound(t *testing.T) {
	s := newTeaScheduler()
	calls := 0
	s.AfterFunc(time.Millisecond, func() { calls++ })
	stopped := s.AfterFunc(time.Millisecond, func() { calls++ })
	time.Sleep(20 * time.Millisecond)
	stopped.Stop()

	got := make(chan tea.Msg, 2)
	s.bind(func(msg tea.Msg) { got <- msg })
	select {
	case msg := <-got:
		fired, ok := msg.(timerFiredMsg)
		require.True(t, ok)
		fired.timer.run()
	case <-time.After(time.Second):
		t.Fatal("timer due before bind was lost")
	}
	assert.Equal(t, 1, calls)
	select {
	case msg := <-got:
		t.Fatalf("stopped timer delivered %v", msg)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestOverlay(t *testing.T) {
	assert.Equal(t, "hello XXrld", overlay("hello world", "XX", 6, 0))
	assert.Equal(t, "ab  Z", overlay("ab", "Z", 4, 0))
	assert.Equal(t, "abcXY", overlay("abcde", "XYZ", 3, 5))
	assert.Equal(t, "Zb", overlay("ab", "YZ", -1, 0))
}

func TestConfettiLifecycle(t *testing.T) {
	seed, err := engine.NewSessionSeed("confetti")
	require.NoError(t, err)
	c := newConfetti(seed.Stream("test"))
	c.emit(engine.Burst{Particles: 10, OriginX: 0.5, OriginY: 0.5})
	assert.False(t, c.active(), "no field size yet")

	c.resize(80, 24)
	c.emit(engine.Burst{Particles: 10, OriginX: 0.5, OriginY: 0.5})
	assert.Len(t, c.particles, 10)
	assert.Len(t, c.visible(), 10)
	for range particleLife {
		c.step()
	}
	assert.False(t, c.active())
}
