// Package typeface locates a font for watermark text.
//
// A Resolver walks an ordered list of probes and keeps the first one that
// yields a usable scalable font. When nothing works it hands out the fixed
// 7x13 bitmap face so rendering can always proceed.
package typeface

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"

	"github.com/five82/vidmark/internal/logging"
)

// FallbackName identifies the fixed-size bitmap face.
const FallbackName = "basicfont 7x13"

// Probe loads one font candidate. It returns a display name for logs.
type Probe func() (*opentype.Font, string, error)

// Typeface is a resolved font. Scalable is false for the bitmap fallback,
// whose Face ignores the requested size.
type Typeface struct {
	Name     string
	Scalable bool
	font     *opentype.Font
}

// Face builds a face at size pixels. Hinting is off so that glyph extents
// scale linearly with size, which the auto-scale loop relies on.
func (t *Typeface) Face(size float64) (font.Face, error) {
	if !t.Scalable {
		return basicfont.Face7x13, nil
	}
	return opentype.NewFace(t.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// Fallback returns the fixed-size bitmap typeface.
func Fallback() *Typeface {
	return &Typeface{Name: FallbackName}
}

// Resolver picks the first working probe and remembers it.
type Resolver struct {
	probes []Probe

	mu       sync.Mutex
	resolved *Typeface
}

// NewResolver returns a resolver over probes in priority order.
func NewResolver(probes ...Probe) *Resolver {
	return &Resolver{probes: probes}
}

// Resolve returns a typeface able to build a face at size. It never fails;
// when no probe succeeds the bitmap fallback is returned.
func (r *Resolver) Resolve(size float64) *Typeface {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved != nil && r.resolved.usable(size) {
		return r.resolved
	}

	log := logging.Global().WithComponent("typeface")
	for _, probe := range r.probes {
		f, name, err := probe()
		if err != nil {
			log.Debug("font candidate rejected", "font", name, "error", err)
			continue
		}
		tf := &Typeface{Name: name, Scalable: true, font: f}
		if !tf.usable(size) {
			log.Debug("font candidate cannot render size", "font", name, "size", size)
			continue
		}
		log.Debug("font resolved", "font", name)
		r.resolved = tf
		return tf
	}

	m := basicfont.Face7x13.Metrics()
	log.Warn("no scalable font found, using fixed bitmap face; watermark size will not track frame size",
		"font", FallbackName, "line_height_px", m.Height.Ceil())
	return Fallback()
}

func (t *Typeface) usable(size float64) bool {
	face, err := t.Face(size)
	if err != nil {
		return false
	}
	_ = face.Close()
	return true
}

// FileProbe loads a font file. TrueType collections (.ttc) yield their first
// face.
func FileProbe(path string) Probe {
	return func() (*opentype.Font, string, error) {
		name := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, name, err
		}
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, name, fmt.Errorf("parse %s: %w", path, err)
		}
		if coll.NumFonts() == 0 {
			return nil, name, fmt.Errorf("%s contains no fonts", path)
		}
		f, err := coll.Font(0)
		if err != nil {
			return nil, name, fmt.Errorf("load %s: %w", path, err)
		}
		return f, name, nil
	}
}

var (
	embeddedOnce sync.Once
	embeddedFont *opentype.Font
	embeddedErr  error
)

// EmbeddedProbe yields the Go Bold font compiled into the binary.
func EmbeddedProbe() Probe {
	return func() (*opentype.Font, string, error) {
		embeddedOnce.Do(func() {
			embeddedFont, embeddedErr = opentype.Parse(gobold.TTF)
		})
		return embeddedFont, "Go Bold (embedded)", embeddedErr
	}
}

// SystemFontCandidates are the font files looked for on the host, bold
// weights first.
var SystemFontCandidates = []string{
	// macOS
	"/System/Library/Fonts/Supplemental/Arial Bold.ttf",
	"/Library/Fonts/Arial Bold.ttf",
	// Linux
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
	"/usr/share/fonts/truetype/freefont/FreeSansBold.ttf",
	// Windows
	`C:\Windows\Fonts\arialbd.ttf`,

	// macOS
	"/System/Library/Fonts/Arial.ttf",
	"/Library/Fonts/Arial.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
	// Linux
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/freefont/FreeSans.ttf",
	// Windows
	`C:\Windows\Fonts\arial.ttf`,
	`C:\Windows\Fonts\segoeui.ttf`,
}

// DefaultProbes builds the standard probe order: the user's font file if
// given, then SystemFontCandidates, then the embedded font when enabled.
func DefaultProbes(userFont string, embedded bool) []Probe {
	probes := make([]Probe, 0, len(SystemFontCandidates)+2)
	if userFont != "" {
		probes = append(probes, FileProbe(userFont))
	}
	for _, path := range SystemFontCandidates {
		probes = append(probes, FileProbe(path))
	}
	if embedded {
		probes = append(probes, EmbeddedProbe())
	}
	return probes
}

// NewDefaultResolver is NewResolver(DefaultProbes(userFont, embedded)...).
func NewDefaultResolver(userFont string, embedded bool) *Resolver {
	return NewResolver(DefaultProbes(userFont, embedded)...)
}
