package media

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"strings"

	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"
)

// Prober checks that a photo can be loaded and decoded.
type Prober interface {
	Probe(ctx context.Context, p Photo) error
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, p Photo) error

func (f ProberFunc) Probe(ctx context.Context, p Photo) error { return f(ctx, p) }

// FSProber resolves Src inside an asset tree and decodes the image header.
type FSProber struct {
	FS fs.FS
}

func (f FSProber) Probe(ctx context.Context, p Photo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := AssetPath(p.Src)
	file, err := f.FS.Open(name)
	if err != nil {
		return errors.Wrapf(err, "open %s", name)
	}
	defer file.Close()
	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return errors.Wrapf(err, "decode %s", name)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.Errorf("%s: empty %s image", name, format)
	}
	return nil
}

// AssetPath maps a web-style src ("/img/photos/photo1.jpg") to an fs.FS path.
func AssetPath(src string) string {
	return strings.TrimPrefix(src, "/")
}
