package media

import (
	"image"
	"image/color"
	"io"
	"io/fs"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// KeepsakeOptions controls the exported collage image.
type KeepsakeOptions struct {
	Columns  int
	CellSize int
	Gap      int
	Title    string
}

func (o KeepsakeOptions) withDefaults() KeepsakeOptions {
	if o.Columns <= 0 {
		o.Columns = 4
	}
	if o.CellSize <= 0 {
		o.CellSize = 180
	}
	if o.Gap <= 0 {
		o.Gap = 8
	}
	return o
}

const (
	keepsakeHeader  = 56
	captionBarPx    = 22
	keepsakeBgHex   = "#fff5f7"
	keepsakeTextHex = "#e63946"
)

// RenderKeepsake draws photos onto one PNG using the collage placement.
// Photos that fail to decode are drawn as labelled placeholders.
func RenderKeepsake(w io.Writer, fsys fs.FS, photos []Photo, opts KeepsakeOptions) error {
	opts = opts.withDefaults()
	grid := Place(len(photos), opts.Columns)
	unit := opts.CellSize + opts.Gap
	width := opts.Columns*unit + opts.Gap
	height := keepsakeHeader + grid.Rows*unit + opts.Gap

	dc := gg.NewContext(width, height)
	dc.SetHexColor(keepsakeBgHex)
	dc.Clear()

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return errors.Wrap(err, "parse font")
	}
	titleFace := truetype.NewFace(ttf, &truetype.Options{Size: 22, DPI: 72, Hinting: font.HintingFull})
	captionFace := truetype.NewFace(ttf, &truetype.Options{Size: 12, DPI: 72, Hinting: font.HintingFull})

	if opts.Title != "" {
		dc.SetFontFace(titleFace)
		dc.SetHexColor(keepsakeTextHex)
		dc.DrawStringAnchored(printable(titleFace, opts.Title), float64(width)/2, keepsakeHeader/2, 0.5, 0.5)
	}

	dc.SetFontFace(captionFace)
	for _, cell := range grid.Cells {
		x := opts.Gap + cell.Col*unit
		y := keepsakeHeader + cell.Row*unit
		w := cell.Cols*unit - opts.Gap
		h := cell.Rows*unit - opts.Gap
		p := photos[cell.Index]

		if img, err := decodeAsset(fsys, p.Src); err == nil {
			dc.DrawImage(cover(img, w, h), x, y)
		} else {
			dc.SetRGB(0.9, 0.85, 0.87)
			dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
			dc.Fill()
		}

		dc.SetColor(color.RGBA{0, 0, 0, 140})
		dc.DrawRectangle(float64(x), float64(y+h-captionBarPx), float64(w), captionBarPx)
		dc.Fill()
		dc.SetColor(color.White)
		dc.DrawStringAnchored(printable(captionFace, p.Caption), float64(x+6), float64(y+h-captionBarPx/2), 0, 0.5)
	}

	if err := dc.EncodePNG(w); err != nil {
		return errors.Wrap(err, "encode keepsake")
	}
	return nil
}

func decodeAsset(fsys fs.FS, src string) (image.Image, error) {
	f, err := fsys.Open(AssetPath(src))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// cover scales src to fill w×h, cropping the overflow around the centre.
func cover(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	crop := b
	srcRatio := float64(b.Dx()) / float64(b.Dy())
	dstRatio := float64(w) / float64(h)
	if srcRatio > dstRatio {
		cw := int(float64(b.Dy()) * dstRatio)
		off := (b.Dx() - cw) / 2
		crop = image.Rect(b.Min.X+off, b.Min.Y, b.Min.X+off+cw, b.Max.Y)
	} else if srcRatio < dstRatio {
		ch := int(float64(b.Dx()) / dstRatio)
		off := (b.Dy() - ch) / 2
		crop = image.Rect(b.Min.X, b.Min.Y+off, b.Max.X, b.Min.Y+off+ch)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Over, nil)
	return dst
}

// printable drops runes the face has no glyph for (gomono has no emoji).
func printable(face font.Face, s string) string {
	var b strings.Builder
	for _, r := range s {
		if _, ok := face.GlyphAdvance(r); ok {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
