package engine

import (
	"time"

	"go.uber.org/zap"
)

// IntroSteps is the number of narrative steps; the last one waits for the user.
const IntroSteps = 8

// stepRule is one row of the intro state table. A terminal row never
// auto-advances; leaving it requires Complete.
type stepRule struct {
	Dwell    time.Duration
	Next     int
	Terminal bool
}

// introTable maps step -> (dwell, next | terminal).
var introTable = [IntroSteps]stepRule{
	0: {Dwell: 2200 * time.Millisecond, Next: 1},
	1: {Dwell: 2800 * time.Millisecond, Next: 2},
	2: {Dwell: 2800 * time.Millisecond, Next: 3},
	3: {Dwell: 2800 * time.Millisecond, Next: 4},
	4: {Dwell: 2800 * time.Millisecond, Next: 5},
	5: {Dwell: 2800 * time.Millisecond, Next: 6},
	6: {Dwell: 3200 * time.Millisecond, Next: 7},
	7: {Terminal: true},
}

// DwellFor returns how long step stays visible and whether it auto-advances.
func DwellFor(step int) (time.Duration, bool) {
	if step < 0 || step >= IntroSteps {
		return 0, false
	}
	r := introTable[step]
	return r.Dwell, !r.Terminal
}

// Sequencer drives the intro steps forward on timers from the injected Scheduler.
type Sequencer struct {
	sched   Scheduler
	log     *zap.Logger
	step    int
	timer   Timer
	running bool
	onStep  func(step int)
}

// NewSequencer builds a stopped sequencer at step 0. onStep (optional) observes every advance.
func NewSequencer(sched Scheduler, log *zap.Logger, onStep func(step int)) *Sequencer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sequencer{sched: sched, log: log, onStep: onStep}
}

// Start resets to step 0 and arms the first dwell timer.
func (s *Sequencer) Start() {
	s.Stop()
	s.step = 0
	s.running = true
	s.arm()
}

// Step returns the current intro step.
func (s *Sequencer) Step() int { return s.step }

// Terminal reports whether the sequencer is waiting for Complete.
func (s *Sequencer) Terminal() bool { return introTable[s.step].Terminal }

// Complete consumes the external completion signal. It only succeeds on the terminal step.
func (s *Sequencer) Complete() bool {
	if !s.running || !s.Terminal() {
		return false
	}
	s.Stop()
	return true
}

// Stop cancels any pending dwell timer. A stopped sequencer never mutates again until Start.
func (s *Sequencer) Stop() {
	s.running = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Sequencer) arm() {
	dwell, auto := DwellFor(s.step)
	if !auto {
		s.timer = nil
		return
	}
	from := s.step
	s.timer = s.sched.AfterFunc(dwell, func() { s.fire(from) })
}

func (s *Sequencer) fire(from int) {
	// a callback that outlived its arming step is stale
	if !s.running || s.step != from {
		s.log.Debug("dropping stale intro timer", zap.Int("armed_at", from), zap.Int("step", s.step))
		return
	}
	s.step = introTable[from].Next
	s.log.Debug("intro advanced", zap.Int("step", s.step))
	if s.onStep != nil {
		s.onStep(s.step)
	}
	s.arm()
}
