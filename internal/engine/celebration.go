package engine

import (
	"time"

	"go.uber.org/zap"
)

const (
	CelebrationDuration = 10 * time.Second
	CelebrationInterval = 250 * time.Millisecond
	BaseParticleCount   = 50
)

// Burst is one particle emission. Origins are fractions of the viewport; a
// negative OriginY starts above the top edge.
type Burst struct {
	Particles int
	OriginX   float64
	OriginY   float64
	Tick      int
}

// Celebration emits two mirrored, decaying bursts every interval until the
// duration runs out.
type Celebration struct {
	sched   Scheduler
	src     Source
	log     *zap.Logger
	onBurst func(Burst)

	start time.Time
	end   time.Time
	timer Timer
	ticks int
	done  bool
}

func NewCelebration(sched Scheduler, src Source, log *zap.Logger, onBurst func(Burst)) *Celebration {
	if log == nil {
		log = zap.NewNop()
	}
	return &Celebration{sched: sched, src: src, log: log, onBurst: onBurst}
}

// Start fixes the time box and arms the first tick.
func (c *Celebration) Start() {
	c.start = c.sched.Now()
	c.end = c.start.Add(CelebrationDuration)
	c.ticks = 0
	c.done = false
	c.timer = c.sched.AfterFunc(CelebrationInterval, c.tick)
}

// Stop cancels the repeating tick. Safe to call more than once.
func (c *Celebration) Stop() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.done = true
}

func (c *Celebration) Done() bool        { return c.done }
func (c *Celebration) Ticks() int        { return c.ticks }
func (c *Celebration) EndTime() time.Time { return c.end }

// Remaining is the time left in the box, never negative.
func (c *Celebration) Remaining() time.Duration {
	r := c.end.Sub(c.sched.Now())
	if r < 0 {
		return 0
	}
	return r
}

// ParticleCount is the per-burst count for the given remaining time.
func ParticleCount(remaining time.Duration) int {
	if remaining <= 0 {
		return 0
	}
	if remaining > CelebrationDuration {
		remaining = CelebrationDuration
	}
	return int(float64(BaseParticleCount) * float64(remaining) / float64(CelebrationDuration))
}

func (c *Celebration) tick() {
	if c.done {
		return
	}
	c.ticks++
	remaining := c.Remaining()
	if remaining <= 0 {
		c.log.Debug("celebration finished", zap.Int("ticks", c.ticks))
		c.Stop()
		return
	}
	n := ParticleCount(remaining)
	left := Burst{Particles: n, OriginX: between(c.src, 0.1, 0.3), OriginY: c.src.Float64() - 0.2, Tick: c.ticks}
	right := Burst{Particles: n, OriginX: between(c.src, 0.7, 0.9), OriginY: c.src.Float64() - 0.2, Tick: c.ticks}
	if c.onBurst != nil {
		c.onBurst(left)
		c.onBurst(right)
	}
	c.timer = c.sched.AfterFunc(CelebrationInterval, c.tick)
}
