package engine

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const introLength = 19400 * time.Millisecond

func newTestApp(t *testing.T) (*App, *ManualClock, *[]Burst) {
	t.Helper()
	clk := NewManualClock(epoch)
	bursts := &[]Burst{}
	app := NewApp(Options{
		Scheduler:     clk,
		EvasionSource: FixedSource(0.1, 0.9),
		OnBurst:       func(b Burst) { *bursts = append(*bursts, b) },
	})
	app.Start("test-session")
	return app, clk, bursts
}

func walkToProposal(t *testing.T, app *App, clk *ManualClock) {
	t.Helper()
	clk.Advance(introLength)
	require.NoError(t, app.CompleteIntro())
	require.NoError(t, app.FinishCollage())
	require.NoError(t, app.OpenEnvelope())
	clk.Advance(EnvelopeDelay)
	require.True(t, app.Scene().EnvelopeOpen)
}

func TestAppIntroRequiresTerminalStep(t *testing.T) {
	app, clk, _ := newTestApp(t)
	assert.Equal(t, IntroScene(0), app.Scene())

	err := app.CompleteIntro()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	clk.Advance(introLength)
	assert.Equal(t, 7, app.Scene().Step)
	require.NoError(t, app.CompleteIntro())
	assert.Equal(t, SceneCollage, app.Scene().Kind)
}

func TestAppRejectsSkipsAndBackwardMoves(t *testing.T) {
	app, clk, _ := newTestApp(t)
	clk.Advance(introLength)
	assert.ErrorIs(t, app.Advance(SceneProposal), ErrInvalidTransition)
	require.NoError(t, app.Advance(SceneCollage))
	assert.ErrorIs(t, app.Advance(SceneIntro), ErrInvalidTransition)
	assert.ErrorIs(t, app.Reset("again"), ErrInvalidTransition)
}

func TestAppMountChangesPerScene(t *testing.T) {
	app, clk, _ := newTestApp(t)
	first := app.Mount()
	clk.Advance(introLength)
	require.NoError(t, app.CompleteIntro())
	assert.Greater(t, app.Mount(), first)
}

func TestAppEnvelopeAndEvasion(t *testing.T) {
	app, clk, _ := newTestApp(t)
	clk.Advance(introLength)
	require.NoError(t, app.CompleteIntro())
	require.NoError(t, app.FinishCollage())

	assert.ErrorIs(t, app.Accept(), ErrInvalidTransition, "cannot accept a closed envelope")
	app.Decline()
	assert.Nil(t, app.Evasion())

	require.NoError(t, app.OpenEnvelope())
	assert.True(t, app.EnvelopeOpening())
	clk.Advance(EnvelopeDelay - time.Millisecond)
	assert.False(t, app.Scene().EnvelopeOpen)
	clk.Advance(time.Millisecond)
	require.True(t, app.Scene().EnvelopeOpen)

	for i := 0; i < 3; i++ {
		app.Decline()
	}
	ev := app.Evasion()
	require.NotNil(t, ev)
	assert.Equal(t, "Think about it!", ev.Label())
	assert.Equal(t, AnchorViewport, ev.Anchoring())
	assert.Equal(t, SceneProposal, app.Scene().Kind, "decline is never an outcome")
}

func TestAppAcceptStartsCelebration(t *testing.T) {
	app, clk, bursts := newTestApp(t)
	walkToProposal(t, app, clk)
	require.NoError(t, app.Accept())
	require.Equal(t, SceneCelebration, app.Scene().Kind)
	require.NotNil(t, app.Celebration())

	clk.Advance(time.Second)
	assert.Len(t, *bursts, 8)
}

func TestAppResetClearsState(t *testing.T) {
	app, clk, bursts := newTestApp(t)
	walkToProposal(t, app, clk)
	app.Decline()
	require.NoError(t, app.Accept())
	clk.Advance(time.Second)
	before := len(*bursts)

	require.NoError(t, app.Reset("replay"))
	assert.Equal(t, IntroScene(0), app.Scene())
	assert.Nil(t, app.Evasion())
	assert.Nil(t, app.Celebration())
	assert.Equal(t, "replay", app.SessionID())

	// only the new intro timer remains armed
	assert.Equal(t, 1, clk.Pending())
	clk.Advance(2200 * time.Millisecond)
	assert.Equal(t, before, len(*bursts))
	assert.Equal(t, 1, app.Scene().Step)

	walkToProposal(t, app, clk)
	assert.Equal(t, 0, app.Evasion().Attempts(), "evasion state starts over after replay")
}

func TestAppCloseCancelsEverything(t *testing.T) {
	app, clk, _ := newTestApp(t)
	walkToProposal(t, app, clk)
	require.NoError(t, app.Accept())
	app.Close()
	assert.Zero(t, clk.Pending())
}

func TestAppOnChangeSeesTimerSteps(t *testing.T) {
	clk := NewManualClock(epoch)
	var steps []int
	app := NewApp(Options{Scheduler: clk, OnChange: func(s Scene) {
		if s.Kind == SceneIntro {
			steps = append(steps, s.Step)
		}
	}})
	app.Start("s")
	clk.Advance(5000 * time.Millisecond)
	assert.Equal(t, []int{0, 1, 2}, steps)
}

func TestAppEnvelopeTimerDroppedOnClose(t *testing.T) {
	app, clk, _ := newTestApp(t)
	clk.Advance(introLength)
	require.NoError(t, app.CompleteIntro())
	require.NoError(t, app.FinishCollage())
	require.NoError(t, app.OpenEnvelope())
	app.Close()
	clk.Advance(time.Second)
	assert.False(t, app.Scene().EnvelopeOpen)
}
