package media

// SizeVariant is the footprint of a collage tile.
type SizeVariant string

const (
	Large SizeVariant = "large"
	Small SizeVariant = "small"
	Tall  SizeVariant = "tall"
	Wide  SizeVariant = "wide"
)

var layoutPattern = [6]SizeVariant{Large, Small, Tall, Small, Wide, Small}

// LayoutOf returns the tile size for the photo at index. The pattern repeats every six photos.
func LayoutOf(index int) SizeVariant {
	i := index % len(layoutPattern)
	if i < 0 {
		i += len(layoutPattern)
	}
	return layoutPattern[i]
}

// Span is the number of grid columns and rows the variant covers.
func (s SizeVariant) Span() (cols, rows int) {
	switch s {
	case Large:
		return 2, 2
	case Tall:
		return 1, 2
	case Wide:
		return 2, 1
	default:
		return 1, 1
	}
}

// Slot pairs a position in the validated set with its size.
type Slot struct {
	Index int
	Size  SizeVariant
}

// Slots derives the slots for n photos.
func Slots(n int) []Slot {
	out := make([]Slot, n)
	for i := range out {
		out[i] = Slot{Index: i, Size: LayoutOf(i)}
	}
	return out
}
