package ui

import (
	"math"
	"time"

	"github.com/DaanHessen/valentine-tui/internal/engine"
)

const (
	frameInterval  = 50 * time.Millisecond
	particleLife   = 60 // frames, the burst "ticks"
	maxParticles   = 800
	gravity        = 0.06
	drag           = 0.94
	startVelocity  = 1.6
	verticalSquash = 0.5 // terminal cells are about twice as tall as wide
)

var confettiGlyphs = []rune{'♥', '*', '•', '✦', '❤', '+', '·'}

type particle struct {
	x, y   float64
	vx, vy float64
	life   int
	glyph  rune
	color  int
}

// confetti turns scheduler bursts into moving glyphs on a width×height field.
type confetti struct {
	rng       *engine.Stream
	particles []particle
	width     int
	height    int
}

func newConfetti(rng *engine.Stream) *confetti { return &confetti{rng: rng} }

func (c *confetti) resize(w, h int) { c.width, c.height = w, h }

// emit spawns a burst at its fractional origin with a full 360° spread.
func (c *confetti) emit(b engine.Burst) {
	if c.width <= 0 || c.height <= 0 {
		return
	}
	ox := b.OriginX * float64(c.width)
	oy := b.OriginY * float64(c.height)
	for i := 0; i < b.Particles && len(c.particles) < maxParticles; i++ {
		angle := c.rng.Float64() * 2 * math.Pi
		speed := startVelocity * (0.4 + 0.6*c.rng.Float64())
		c.particles = append(c.particles, particle{
			x:     ox,
			y:     oy,
			vx:    math.Cos(angle) * speed,
			vy:    math.Sin(angle) * speed * verticalSquash,
			life:  particleLife,
			glyph: confettiGlyphs[c.rng.Intn(len(confettiGlyphs))],
			color: c.rng.Intn(1 << 16),
		})
	}
}

// step advances every particle one frame and drops the expired ones.
func (c *confetti) step() {
	alive := c.particles[:0]
	for _, p := range c.particles {
		p.x += p.vx
		p.y += p.vy
		p.vx *= drag
		p.vy = p.vy*drag + gravity
		p.life--
		if p.life <= 0 || p.y >= float64(c.height) {
			continue
		}
		alive = append(alive, p)
	}
	c.particles = alive
}

func (c *confetti) active() bool { return len(c.particles) > 0 }

func (c *confetti) clear() { c.particles = c.particles[:0] }

// visible returns the particles that currently fall inside the field.
func (c *confetti) visible() []particle {
	out := make([]particle, 0, len(c.particles))
	for _, p := range c.particles {
		col, row := int(p.x), int(p.y)
		if p.x < 0 || p.y < 0 || col >= c.width || row >= c.height {
			continue
		}
		out = append(out, p)
	}
	return out
}
