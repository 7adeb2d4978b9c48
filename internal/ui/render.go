package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/DaanHessen/valentine-tui/internal/engine"
	"github.com/DaanHessen/valentine-tui/internal/media"
)

// Decline offsets are in pixel-like units; a terminal cell is roughly 8×16.
const (
	pxPerCol = 8.0
	pxPerRow = 16.0
)

type rect struct{ x, y, w, h int }

func (r rect) contains(x, y int) bool {
	return r.w > 0 && x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// canvas is a fixed-height stack of styled lines that blocks can be stamped onto.
type canvas struct {
	lines []string
	width int
}

func newCanvas(width, height int) *canvas {
	return &canvas{lines: make([]string, max(height, 0)), width: width}
}

// stamp writes block with its top-left corner at (col,row), clipping at the edges.
func (c *canvas) stamp(block string, col, row int) {
	for i, line := range strings.Split(block, "\n") {
		r := row + i
		if r < 0 || r >= len(c.lines) {
			continue
		}
		c.lines[r] = overlay(c.lines[r], line, col, c.width)
	}
}

// center stamps block in the middle and returns where it landed.
func (c *canvas) center(block string) rect {
	w, h := lipgloss.Width(block), lipgloss.Height(block)
	x := max(0, (c.width-w)/2)
	y := max(0, (len(c.lines)-h)/2)
	c.stamp(block, x, y)
	return rect{x: x, y: y, w: w, h: h}
}

func (c *canvas) String() string { return strings.Join(c.lines, "\n") }

// overlay replaces the cells of base starting at col with fg.
func overlay(base, fg string, col, limit int) string {
	if col < 0 {
		fg = ansi.TruncateLeft(fg, -col, "")
		col = 0
	}
	if limit > 0 && col >= limit {
		return base
	}
	if limit > 0 {
		fg = ansi.Truncate(fg, limit-col, "")
	}
	if w := ansi.StringWidth(base); w < col {
		base += strings.Repeat(" ", col-w)
	}
	left := ansi.Truncate(base, col, "")
	right := ansi.TruncateLeft(base, col+ansi.StringWidth(fg), "")
	return left + fg + right
}

// ---------------------------------------------------------------- intro

func (m *model) introFrame(width, height int) *canvas {
	c := newCanvas(width, height)
	step := m.app.Scene().Step
	body := m.renderMarkdown(m.script.IntroStep(step))
	dots := make([]string, engine.IntroSteps)
	for i := range dots {
		if i == step {
			dots[i] = m.st.title.Render("●")
		} else {
			dots[i] = m.st.muted.Render("○")
		}
	}
	parts := []string{body, "", strings.Join(dots, " ")}
	if step == engine.IntroSteps-1 {
		parts = append(parts, "", m.st.button.Render(m.script.IntroContinue))
	}
	c.center(lipgloss.JoinVertical(lipgloss.Center, parts...))
	return c
}

// ---------------------------------------------------------------- collage

const collageRowHeight = 5

func collageColumns(width int) int {
	if width < 70 {
		return 2
	}
	return 4
}

// collageGrid renders the tiles and returns each tile's rect in grid coordinates.
func (m *model) collageGrid(width int) (string, []rect) {
	cols := collageColumns(width)
	colW := max(12, width/cols)
	g := media.Place(len(m.photos), cols)
	c := newCanvas(cols*colW, g.Rows*collageRowHeight)
	rects := make([]rect, len(g.Cells))
	for _, cell := range g.Cells {
		w := cell.Cols*colW - 1
		h := cell.Rows*collageRowHeight - 1
		style := m.st.tile
		if cell.Index == m.selected {
			style = m.st.tileSel
		}
		p := m.photos[cell.Index]
		inner := w - 2
		label := ansi.Truncate(p.Caption, inner, "…")
		meta := m.st.muted.Render(ansi.Truncate(fmt.Sprintf("#%d · %s", cell.Index+1, cell.Size), inner, "…"))
		tile := style.Width(inner).Height(h - 2).Render(label + "\n" + meta)
		x, y := cell.Col*colW, cell.Row*collageRowHeight
		c.stamp(tile, x, y)
		rects[cell.Index] = rect{x: x, y: y, w: w, h: h}
	}
	return c.String(), rects
}

func (m *model) collageHeader() string {
	sub := m.script.CollageSubtitle
	if m.validating {
		sub = "Checking our memories..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.st.title.Render(m.script.CollageTitle), m.st.subtitle.Render(sub))
}

func (m *model) collageFooter() string {
	return m.st.button.Render(m.script.CollageContinue) + "  " + m.st.muted.Render("n to continue")
}

func (m *model) collageFrame(width, height int) *canvas {
	c := newCanvas(width, height)
	header := m.collageHeader()
	c.stamp(header, 0, 0)
	c.stamp(m.vp.View(), 0, lipgloss.Height(header)+1)
	c.stamp(m.collageFooter(), 0, height-1)
	if m.lightbox && m.selected < len(m.photos) {
		p := m.photos[m.selected]
		box := m.st.card.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.st.title.Render(p.Caption),
			"",
			m.st.muted.Render(p.Src),
			"",
			m.st.muted.Render("c copy path · esc close"),
			m.status,
		))
		c.center(box)
	}
	return c
}

// collageViewportHeight leaves room for header, spacer and footer.
func (m *model) collageViewportHeight(height int) int {
	return max(3, height-lipgloss.Height(m.collageHeader())-2)
}

func (m *model) continueRect(height int) rect {
	return rect{x: 0, y: height - 1, w: lipgloss.Width(m.st.button.Render(m.script.CollageContinue)), h: 1}
}

// ---------------------------------------------------------------- proposal

// acceptZIndex is the stacking level of the accept button and the letter card.
const acceptZIndex = 1

type proposalTarget int

const (
	targetNone proposalTarget = iota
	targetAccept
	targetDecline
)

type proposalLayout struct {
	canvas *canvas
	yes    rect
	no     rect
	// noOnTop is set when the decline button is stamped above the accept button.
	noOnTop bool
}

// hit resolves a cell to the topmost control drawn there.
func (l proposalLayout) hit(x, y int) proposalTarget {
	if l.noOnTop && l.no.contains(x, y) {
		return targetDecline
	}
	switch {
	case l.yes.contains(x, y):
		return targetAccept
	case l.no.contains(x, y):
		return targetDecline
	}
	return targetNone
}

func (m *model) envelopeArt() string {
	label := m.script.EnvelopeLabel
	if m.app.EnvelopeOpening() {
		return m.st.card.Render(lipgloss.JoinVertical(lipgloss.Center,
			"╱╲        ╱╲",
			"  ╲______╱  ",
			"",
			m.st.title.Render(label),
			"",
			m.st.muted.Render("opening..."),
		))
	}
	return m.st.card.Render(lipgloss.JoinVertical(lipgloss.Center,
		"╲            ╱",
		"  ╲        ╱  ",
		"    ╲____╱    ",
		"",
		m.st.title.Render(label),
		"",
		m.st.muted.Render("Click to Open · enter"),
	))
}

func (m *model) proposalFrame(width, height int) proposalLayout {
	c := newCanvas(width, height)
	scene := m.app.Scene()
	ev := m.app.Evasion()
	if !scene.EnvelopeOpen || ev == nil {
		c.center(m.envelopeArt())
		return proposalLayout{canvas: c}
	}

	cardWidth := min(64, max(20, width-8))
	letter := lipgloss.JoinVertical(lipgloss.Center,
		m.st.title.Render(m.script.LetterHeading),
		"",
		lipgloss.NewStyle().Width(cardWidth-8).Render(m.renderMarkdown(m.script.Letter)),
		"",
		m.renderMarkdown(m.script.Question),
	)
	card := m.st.card.Width(cardWidth).Render(letter)

	yesStyle := m.st.yes
	if m.focus == focusAccept {
		yesStyle = m.st.yesFocus
	}
	yesBtn := yesStyle.Render(m.script.AcceptLabel)
	noBtn := m.st.no.Render(ev.Label())

	flow := ev.Anchoring() == engine.AnchorFlow
	onTop := ev.ZIndex() > acceptZIndex
	row := yesBtn
	if flow {
		row = lipgloss.JoinHorizontal(lipgloss.Top, yesBtn, "   ", noBtn)
	}
	block := lipgloss.JoinVertical(lipgloss.Center, card, "", row)
	at := c.center(block)

	rowW := lipgloss.Width(row)
	rowX := at.x + (at.w-rowW)/2
	rowY := at.y + lipgloss.Height(card) + 1
	out := proposalLayout{canvas: c, noOnTop: onTop}
	out.yes = rect{x: rowX, y: rowY, w: lipgloss.Width(yesBtn), h: 1}
	if flow {
		out.no = rect{x: rowX + lipgloss.Width(yesBtn) + 3, y: rowY, w: lipgloss.Width(noBtn), h: 1}
		return out
	}

	// viewport-fixed: roam around the screen centre
	pos := ev.Position()
	w := lipgloss.Width(noBtn)
	x := width/2 + int(pos.X/pxPerCol) - w/2
	y := height/2 + int(pos.Y/pxPerRow)
	x = min(max(0, x), max(0, width-w))
	y = min(max(0, y), max(0, height-1))
	// stamped last: it sits above the card and the accept button
	c.stamp(noBtn, x, y)
	out.no = rect{x: x, y: y, w: w, h: 1}
	return out
}

// ---------------------------------------------------------------- celebration

func (m *model) celebrationBlock() string {
	return m.st.card.Render(lipgloss.JoinVertical(lipgloss.Center,
		m.st.title.Render("✦ "+m.script.CelebrationTitle+" ✦"),
		"",
		m.st.subtitle.Render(m.script.CelebrationSubtitle),
		"",
		m.st.muted.Render(m.script.CelebrationNote),
		"",
		m.st.button.Render(m.script.ReplayLabel),
	))
}

func (m *model) celebrationFrame(width, height int) (*canvas, rect) {
	c := newCanvas(width, height)
	block := m.celebrationBlock()
	at := c.center(block)
	replayW := lipgloss.Width(m.st.button.Render(m.script.ReplayLabel))
	// the replay button is the last line inside the card border and padding
	replay := rect{x: at.x + (at.w-replayW)/2, y: at.y + at.h - 3, w: replayW, h: 1}

	colors := paletteFor(m.theme).Confetti
	for _, p := range m.confetti.visible() {
		glyph := lipgloss.NewStyle().Foreground(colors[p.color%len(colors)]).Render(string(p.glyph))
		c.stamp(glyph, int(p.x), int(p.y))
	}
	return c, replay
}
