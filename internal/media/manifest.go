// Package media turns a prepared photo list into a collage: it loads the list,
// probes each entry, and lays the survivors out on a grid.
package media

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Photo is one collage candidate.
type Photo struct {
	Src     string `json:"src"`
	Caption string `json:"caption"`
}

// Captions is assigned to photos in order; later photos get "Memory N".
var Captions = [30]string{
	"Us being us", "Cute moment", "Stupid selfie 😂", "Best day ever", "You look so pretty",
	"My fav ❤️", "Remember this?", "Banku photobomb 🐱", "That look tho", "Together ❤️",
	"Silly faces", "Our place", "Golden hour", "Love this one", "My Rapunzel",
	"Date night", "You + Me", "Candid queen", "Missing you", "My whole world",
	"That smile 😍", "Favourite human", "Banku says hi 🐱", "Always & forever",
	"Can't stop staring", "My happy place", "Twinning!", "This was fun", "Precious moments",
	"Us forever ❤️",
}

// DefaultPhotos stands in when the manifest is missing or empty.
var DefaultPhotos = []Photo{
	{Src: "/img/photos/photo1.jpg", Caption: "Us being us"},
	{Src: "/img/photos/photo2.jpg", Caption: "Cute moment"},
}

// ImageExtensions are the file types picked up when scanning a photo directory.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// CaptionFor returns the caption for the zero-based photo index.
func CaptionFor(i int) string {
	if i >= 0 && i < len(Captions) {
		return Captions[i]
	}
	return fmt.Sprintf("Memory %d", i+1)
}

// LoadManifest reads a JSON photo list. A missing file yields DefaultPhotos.
func LoadManifest(p string) ([]Photo, error) {
	raw, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultPhotos, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read manifest %s", p)
	}
	var photos []Photo
	if err := json.Unmarshal(raw, &photos); err != nil {
		return nil, errors.Wrapf(err, "parse manifest %s", p)
	}
	if len(photos) == 0 {
		return DefaultPhotos, nil
	}
	return photos, nil
}

// WriteManifest stores photos as indented JSON.
func WriteManifest(p string, photos []Photo) error {
	raw, err := json.MarshalIndent(photos, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode manifest")
	}
	if err := os.WriteFile(p, append(raw, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "write manifest %s", p)
	}
	return nil
}

var firstNumber = regexp.MustCompile(`\d+`)

// ScanDir lists image files in dir, ordered by the first number in the name
// (names without one sort last) and then by natural order.
func ScanDir(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !isImage(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.SliceStable(files, func(i, j int) bool {
		ni, nj := leadingKey(files[i]), leadingKey(files[j])
		if ni != nj {
			return ni < nj
		}
		return naturalLess(files[i], files[j])
	})
	return files, nil
}

// BuildManifest assigns captions to files and prefixes them with urlPrefix.
func BuildManifest(files []string, urlPrefix string) []Photo {
	out := make([]Photo, len(files))
	for i, f := range files {
		out[i] = Photo{Src: path.Join(urlPrefix, f), Caption: CaptionFor(i)}
	}
	return out
}

// RenameSequential renames files in dir to photo1.ext, photo2.ext, ... keeping
// extensions. It goes through temporary names so existing photoN files cannot collide.
func RenameSequential(dir string, files []string) ([]string, error) {
	temps := make([]string, len(files))
	for i, f := range files {
		temps[i] = fmt.Sprintf("__temp_%d%s", i, filepath.Ext(f))
		if err := os.Rename(filepath.Join(dir, f), filepath.Join(dir, temps[i])); err != nil {
			return nil, errors.Wrapf(err, "stage %s", f)
		}
	}
	renamed := make([]string, len(files))
	for i, tmp := range temps {
		renamed[i] = fmt.Sprintf("photo%d%s", i+1, filepath.Ext(tmp))
		if err := os.Rename(filepath.Join(dir, tmp), filepath.Join(dir, renamed[i])); err != nil {
			return nil, errors.Wrapf(err, "finalise %s", renamed[i])
		}
	}
	return renamed, nil
}

func isImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func leadingKey(name string) int {
	m := firstNumber.FindString(name)
	if m == "" {
		return 9999
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 9999
	}
	return n
}

// naturalLess compares strings treating digit runs as numbers.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ca, cb := a[0], b[0]
		if isDigit(ca) && isDigit(cb) {
			da, ra := splitDigits(a)
			db, rb := splitDigits(b)
			na, _ := strconv.Atoi(da)
			nb, _ := strconv.Atoi(db)
			if na != nb {
				return na < nb
			}
			a, b = ra, rb
			continue
		}
		la, lb := strings.ToLower(string(ca)), strings.ToLower(string(cb))
		if la != lb {
			return la < lb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func splitDigits(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}
