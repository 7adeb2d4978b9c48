package ui

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DaanHessen/valentine-tui/internal/engine"
)

// teaScheduler runs engine timers on the bubbletea event loop: the wall-clock
// timer only posts a message, and Update runs the callback. Timers that come
// due before bind wait for it.
type teaScheduler struct {
	bound chan struct{}
	once  sync.Once
	send  func(tea.Msg)
}

type teaTimer struct {
	t       *time.Timer
	fn      func()
	stopped atomic.Bool
}

// timerFiredMsg carries a due engine callback into Update.
type timerFiredMsg struct{ timer *teaTimer }

func newTeaScheduler() *teaScheduler { return &teaScheduler{bound: make(chan struct{})} }

// bind connects the scheduler to a program's Send. Only the first call counts.
func (s *teaScheduler) bind(send func(tea.Msg)) {
	s.once.Do(func() {
		s.send = send
		close(s.bound)
	})
}

func (s *teaScheduler) Now() time.Time { return time.Now() }

func (s *teaScheduler) AfterFunc(d time.Duration, fn func()) engine.Timer {
	tt := &teaTimer{fn: fn}
	tt.t = time.AfterFunc(d, func() {
		<-s.bound
		if tt.stopped.Load() {
			return
		}
		s.send(timerFiredMsg{timer: tt})
	})
	return tt
}

// Stop also covers the window where the message is already queued: run skips it.
func (t *teaTimer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	t.t.Stop()
	return true
}

func (t *teaTimer) run() {
	if t.stopped.Swap(true) {
		return
	}
	t.fn()
}
