package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutCycle(t *testing.T) {
	assert.Equal(t, Large, LayoutOf(0))
	want := []SizeVariant{Large, Small, Tall, Small, Wide, Small}
	for i := 0; i < 60; i++ {
		assert.Equal(t, want[i%6], LayoutOf(i))
		assert.Equal(t, LayoutOf(i), LayoutOf(i+6))
	}
}

func TestSlotsMatchLayout(t *testing.T) {
	slots := Slots(13)
	require.Len(t, slots, 13)
	for i, s := range slots {
		assert.Equal(t, i, s.Index)
		assert.Equal(t, LayoutOf(i), s.Size)
	}
}

func TestPlaceDense(t *testing.T) {
	g := Place(6, 4)
	require.Len(t, g.Cells, 6)
	pos := func(i int) [4]int {
		c := g.Cells[i]
		return [4]int{c.Col, c.Row, c.Cols, c.Rows}
	}
	assert.Equal(t, [4]int{0, 0, 2, 2}, pos(0)) // large
	assert.Equal(t, [4]int{2, 0, 1, 1}, pos(1)) // small
	assert.Equal(t, [4]int{3, 0, 1, 2}, pos(2)) // tall
	assert.Equal(t, [4]int{2, 1, 1, 1}, pos(3)) // small fills the hole
	assert.Equal(t, [4]int{0, 2, 2, 1}, pos(4)) // wide
	assert.Equal(t, [4]int{2, 2, 1, 1}, pos(5))
	assert.Equal(t, 3, g.Rows)
}

func TestPlaceNoOverlapAndClamp(t *testing.T) {
	for _, cols := range []int{1, 2, 3, 5} {
		g := Place(40, cols)
		occupied := map[[2]int]int{}
		for _, c := range g.Cells {
			require.LessOrEqual(t, c.Col+c.Cols, cols)
			for y := c.Row; y < c.Row+c.Rows; y++ {
				for x := c.Col; x < c.Col+c.Cols; x++ {
					prev, dup := occupied[[2]int{x, y}]
					require.False(t, dup, "cols=%d cell %d overlaps %d at (%d,%d)", cols, c.Index, prev, x, y)
					occupied[[2]int{x, y}] = c.Index
				}
			}
		}
	}
}

func TestPlaceIsDeterministic(t *testing.T) {
	assert.Equal(t, Place(17, 4), Place(17, 4))
	assert.Empty(t, Place(0, 4).Cells)
}
