package engine

// Bounds of a relocation offset, in pixel-equivalent units.
const (
	EvasionRangeX = 300.0
	EvasionRangeY = 250.0
)

// DeclineLadder is shown on the decline control as attempts pile up.
var DeclineLadder = [...]string{
	"No",
	"Wait... are you sure?",
	"Really??",
	"Think about it!",
	"Please?",
	"Don't break my heart",
	"Just say YES!",
}

// Offset of the decline control from its resting position.
type Offset struct {
	X float64
	Y float64
}

// Evasion keeps the decline control out of reach. It lives exactly as long as
// one Proposal scene.
type Evasion struct {
	src      Source
	attempts int
	pos      Offset
	anchor   Anchoring
}

func NewEvasion(src Source) *Evasion {
	return &Evasion{src: src, anchor: AnchorFlow}
}

// Relocate handles a hover, pointer-enter or activation attempt.
func (e *Evasion) Relocate() {
	e.pos = Offset{
		X: (e.src.Float64() - 0.5) * EvasionRangeX,
		Y: (e.src.Float64() - 0.5) * EvasionRangeY,
	}
	e.attempts++
	if e.anchor == AnchorFlow {
		e.anchor = AnchorViewport
	}
}

func (e *Evasion) Attempts() int        { return e.attempts }
func (e *Evasion) Position() Offset     { return e.pos }
func (e *Evasion) Anchoring() Anchoring { return e.anchor }

// Label is the decline text for the current attempt count.
func (e *Evasion) Label() string {
	return DeclineLadder[min(e.attempts, len(DeclineLadder)-1)]
}

// ZIndex is the stacking order: raised once the control roams the viewport.
func (e *Evasion) ZIndex() int {
	if e.anchor == AnchorViewport {
		return 100
	}
	return 1
}
