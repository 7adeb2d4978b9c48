package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 2, 14, 19, 0, 0, 0, time.UTC)

func TestDwellPolicy(t *testing.T) {
	cases := []struct {
		step  int
		dwell time.Duration
		auto  bool
	}{
		{0, 2200 * time.Millisecond, true},
		{1, 2800 * time.Millisecond, true},
		{5, 2800 * time.Millisecond, true},
		{6, 3200 * time.Millisecond, true},
		{7, 0, false},
		{8, 0, false},
	}
	for _, c := range cases {
		d, auto := DwellFor(c.step)
		assert.Equal(t, c.dwell, d, "step %d", c.step)
		assert.Equal(t, c.auto, auto, "step %d", c.step)
	}
}

func TestSequencerFirstStepNotEarly(t *testing.T) {
	clk := NewManualClock(epoch)
	seq := NewSequencer(clk, nil, nil)
	seq.Start()

	clk.Advance(2199 * time.Millisecond)
	require.Equal(t, 0, seq.Step())
	clk.Advance(time.Millisecond)
	require.Equal(t, 1, seq.Step())
}

func TestSequencerReachesTerminalAndStays(t *testing.T) {
	clk := NewManualClock(epoch)
	var seen []int
	seq := NewSequencer(clk, nil, func(step int) { seen = append(seen, step) })
	seq.Start()

	// 2200 + 5*2800 + 3200
	clk.Advance(19400 * time.Millisecond)
	require.Equal(t, 7, seq.Step())
	require.True(t, seq.Terminal())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, seen)

	clk.Advance(time.Hour)
	assert.Equal(t, 7, seq.Step(), "terminal step must not auto-advance")
	assert.Zero(t, clk.Pending())
}

func TestSequencerCompleteOnlyAtTerminal(t *testing.T) {
	clk := NewManualClock(epoch)
	seq := NewSequencer(clk, nil, nil)
	seq.Start()
	assert.False(t, seq.Complete())

	clk.Advance(19400 * time.Millisecond)
	assert.True(t, seq.Complete())
	assert.False(t, seq.Complete(), "completion is consumed once")
}

func TestSequencerStopCancelsPendingTimer(t *testing.T) {
	clk := NewManualClock(epoch)
	calls := 0
	seq := NewSequencer(clk, nil, func(int) { calls++ })
	seq.Start()
	clk.Advance(1000 * time.Millisecond)
	seq.Stop()

	clk.Advance(time.Minute)
	assert.Equal(t, 0, seq.Step())
	assert.Zero(t, calls)
	assert.Zero(t, clk.Pending())
}

func TestSequencerStaleCallbackIgnored(t *testing.T) {
	clk := NewManualClock(epoch)
	seq := NewSequencer(clk, nil, nil)
	seq.Start()
	clk.Advance(2200 * time.Millisecond)
	require.Equal(t, 1, seq.Step())

	// a callback armed for step 0 arriving late must not move anything
	seq.fire(0)
	assert.Equal(t, 1, seq.Step())
}

func TestSequencerRestart(t *testing.T) {
	clk := NewManualClock(epoch)
	seq := NewSequencer(clk, nil, nil)
	seq.Start()
	clk.Advance(8000 * time.Millisecond)
	require.Equal(t, 3, seq.Step())

	seq.Start()
	assert.Equal(t, 0, seq.Step())
	assert.Equal(t, 1, clk.Pending())
	clk.Advance(2200 * time.Millisecond)
	assert.Equal(t, 1, seq.Step())
}
