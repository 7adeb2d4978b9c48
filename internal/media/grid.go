package media

// Cell is a slot placed on the grid, in column/row units.
type Cell struct {
	Slot
	Col  int
	Row  int
	Cols int
	Rows int
}

// Grid is the result of placing slots on a fixed number of columns.
type Grid struct {
	Columns int
	Rows    int
	Cells   []Cell
}

// Place packs n tiles densely: each tile takes the first free position in
// row-major order that fits its span. Spans wider than the grid are clamped.
func Place(n, columns int) Grid {
	if columns < 1 {
		columns = 1
	}
	g := Grid{Columns: columns, Cells: make([]Cell, 0, n)}
	var used [][]bool
	free := func(r, c, w, h int) bool {
		if c+w > columns {
			return false
		}
		for y := r; y < r+h; y++ {
			for len(used) <= y {
				used = append(used, make([]bool, columns))
			}
			for x := c; x < c+w; x++ {
				if used[y][x] {
					return false
				}
			}
		}
		return true
	}
	for _, s := range Slots(n) {
		w, h := s.Size.Span()
		w = min(w, columns)
		placed := false
		for r := 0; !placed; r++ {
			for c := 0; c < columns; c++ {
				if !free(r, c, w, h) {
					continue
				}
				for y := r; y < r+h; y++ {
					for x := c; x < c+w; x++ {
						used[y][x] = true
					}
				}
				g.Cells = append(g.Cells, Cell{Slot: s, Col: c, Row: r, Cols: w, Rows: h})
				g.Rows = max(g.Rows, r+h)
				placed = true
				break
			}
		}
	}
	return g
}
