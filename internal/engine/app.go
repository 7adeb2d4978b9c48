package engine

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrInvalidTransition is returned for any scene move outside the forward path.
var ErrInvalidTransition = errors.New("invalid scene transition")

// EnvelopeDelay is how long the envelope takes to open before the letter shows.
const EnvelopeDelay = 900 * time.Millisecond

// Options wires an App. Scheduler is required; the rest have defaults.
type Options struct {
	Scheduler Scheduler
	Seed      SessionSeed
	Logger    *zap.Logger
	// OnBurst receives celebration particle bursts.
	OnBurst func(Burst)
	// OnChange observes every scene or step change, including timer driven ones.
	OnChange func(Scene)
	// EvasionSource and CelebrationSource override the seeded streams.
	EvasionSource     Source
	CelebrationSource Source
}

// App owns the current scene and composes the per-scene state machines.
// All methods must be called from the goroutine that runs scheduler callbacks.
type App struct {
	opts      Options
	log       *zap.Logger
	sessionID string

	scene Scene
	mount uint64

	seq         *Sequencer
	evasion     *Evasion
	envelope    Timer
	celebration *Celebration
}

func NewApp(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Seed.Text == "" {
		opts.Seed, _ = NewSessionSeed("valentine")
	}
	a := &App{opts: opts, log: opts.Logger}
	a.seq = NewSequencer(opts.Scheduler, opts.Logger, func(step int) {
		a.scene.Step = step
		a.changed()
	})
	return a
}

// Start enters the intro for a fresh session.
func (a *App) Start(sessionID string) {
	a.sessionID = sessionID
	a.log = a.opts.Logger.With(zap.String("session", sessionID))
	a.enter(IntroScene(0))
}

// Scene returns the active scene.
func (a *App) Scene() Scene { return a.scene }

// Mount identifies the current scene instance; it changes on every entry.
func (a *App) Mount() uint64 { return a.mount }

func (a *App) SessionID() string { return a.sessionID }

// Evasion returns the decline controller, or nil outside an opened proposal.
func (a *App) Evasion() *Evasion { return a.evasion }

// Celebration returns the running scheduler, or nil outside the celebration.
func (a *App) Celebration() *Celebration { return a.celebration }

// EnvelopeOpening reports whether the envelope was clicked but has not opened yet.
func (a *App) EnvelopeOpening() bool { return a.envelope != nil }

// Advance moves to the next scene. Only the immediate successor is accepted and
// the current scene must be ready to hand over.
func (a *App) Advance(to SceneKind) error {
	next, ok := a.scene.Kind.Next()
	if !ok || next != to {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", a.scene.Kind, to)
	}
	switch a.scene.Kind {
	case SceneIntro:
		if !a.seq.Complete() {
			return errors.Wrapf(ErrInvalidTransition, "intro step %d is not final", a.scene.Step)
		}
	case SceneProposal:
		if !a.scene.EnvelopeOpen {
			return errors.Wrap(ErrInvalidTransition, "envelope still closed")
		}
	}
	a.enter(Scene{Kind: to})
	return nil
}

// CompleteIntro is the user action on the final intro step.
func (a *App) CompleteIntro() error { return a.Advance(SceneCollage) }

// FinishCollage is the collage continue action.
func (a *App) FinishCollage() error { return a.Advance(SceneProposal) }

// OpenEnvelope starts the opening delay; the letter appears when it elapses.
func (a *App) OpenEnvelope() error {
	if a.scene.Kind != SceneProposal {
		return errors.Wrapf(ErrInvalidTransition, "no envelope in %s", a.scene.Kind)
	}
	if a.scene.EnvelopeOpen || a.envelope != nil {
		return nil
	}
	mount := a.mount
	a.envelope = a.opts.Scheduler.AfterFunc(EnvelopeDelay, func() {
		if a.mount != mount {
			return
		}
		a.envelope = nil
		a.scene.EnvelopeOpen = true
		a.evasion = NewEvasion(a.evasionSource())
		a.log.Debug("envelope opened")
		a.changed()
	})
	a.changed()
	return nil
}

// Accept is the only path into the celebration.
func (a *App) Accept() error {
	if a.scene.Kind != SceneProposal {
		return errors.Wrapf(ErrInvalidTransition, "accept outside proposal (%s)", a.scene.Kind)
	}
	if a.evasion == nil {
		return errors.Wrap(ErrInvalidTransition, "envelope still closed")
	}
	a.log.Info("proposal accepted", zap.Int("decline_attempts", a.evasion.Attempts()))
	return a.Advance(SceneCelebration)
}

// Decline is redirected into evasion; it never produces an outcome.
func (a *App) Decline() {
	if a.evasion == nil {
		return
	}
	a.evasion.Relocate()
	a.log.Debug("decline evaded",
		zap.Int("attempts", a.evasion.Attempts()),
		zap.Float64("x", a.evasion.Position().X),
		zap.Float64("y", a.evasion.Position().Y))
	a.changed()
}

// Reset replays from the first intro step. It is only offered from the celebration.
func (a *App) Reset(sessionID string) error {
	if a.scene.Kind != SceneCelebration {
		return errors.Wrapf(ErrInvalidTransition, "reset from %s", a.scene.Kind)
	}
	a.log.Info("replaying presentation", zap.String("next_session", sessionID))
	a.Start(sessionID)
	return nil
}

// Close tears down the active scene and cancels every timer.
func (a *App) Close() { a.teardown() }

func (a *App) enter(s Scene) {
	a.teardown()
	a.mount++
	a.scene = s
	switch s.Kind {
	case SceneIntro:
		a.seq.Start()
		a.scene.Step = a.seq.Step()
	case SceneCelebration:
		a.celebration = NewCelebration(a.opts.Scheduler, a.celebrationSource(), a.log, a.opts.OnBurst)
		a.celebration.Start()
	}
	a.log.Info("scene entered", zap.String("scene", string(s.Kind)), zap.Uint64("mount", a.mount))
	a.changed()
}

func (a *App) teardown() {
	a.seq.Stop()
	if a.envelope != nil {
		a.envelope.Stop()
		a.envelope = nil
	}
	a.evasion = nil
	if a.celebration != nil {
		a.celebration.Stop()
		a.celebration = nil
	}
}

func (a *App) changed() {
	if a.opts.OnChange != nil {
		a.opts.OnChange(a.scene)
	}
}

func (a *App) evasionSource() Source {
	if a.opts.EvasionSource != nil {
		return a.opts.EvasionSource
	}
	return a.opts.Seed.WithSession(a.sessionID).Stream("evasion")
}

func (a *App) celebrationSource() Source {
	if a.opts.CelebrationSource != nil {
		return a.opts.CelebrationSource
	}
	return a.opts.Seed.WithSession(a.sessionID).Stream("celebration")
}
