// Package overlay renders the watermark text into a frame-sized RGBA image.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/five82/vidmark/internal/logging"
	"github.com/five82/vidmark/internal/typeface"
	"github.com/five82/vidmark/internal/util"
)

const (
	// MinBaseFontSize is the floor of the starting font size in pixels.
	MinBaseFontSize = 60

	// MaxScaleIterations bounds the auto-scale loop.
	MaxScaleIterations = 6

	// RatioTolerance is how far the achieved width ratio may sit from the
	// target before the loop stops (0.02 = two percentage points).
	RatioTolerance = 0.02

	// HeightCeiling is the largest share of the frame height the text block
	// may occupy.
	HeightCeiling = 0.9

	// LineSpacingRatio is the gap between two lines relative to the taller
	// line's ink height.
	LineSpacingRatio = 0.2

	// minFontSize keeps faces constructible on tiny frames.
	minFontSize = 1.0
)

// Text describes what to draw and how strongly.
type Text struct {
	Line1 string
	Line2 string
	// CoveragePct is the target width of the widest line as a percentage of
	// the frame width. Clamped to [1, 100].
	CoveragePct float64
	// OpacityPct is the peak alpha of the text. Clamped to [0, 100].
	OpacityPct float64
}

// LineMetrics is the measured ink box of one line at the final font size.
type LineMetrics struct {
	Text string
	// Ink is the pixel-aligned bounding box relative to the pen origin.
	Ink    image.Rectangle
	Width  int
	Height int
	// Rect is where the ink landed on the canvas.
	Rect image.Rectangle
}

// Overlay is the rendered watermark. Image is never modified after Compose
// returns.
type Overlay struct {
	Image *image.NRGBA

	FontName string
	FontSize float64
	Scalable bool

	Lines       []LineMetrics
	Spacing     int
	BlockHeight int

	TargetRatio   float64
	AchievedRatio float64
	Iterations    int
	Alpha         uint8
}

// Empty reports whether nothing was drawn.
func (o *Overlay) Empty() bool {
	return len(o.Lines) == 0
}

// BaseFontSize is the starting size for a frame: max(60, min(W/5, H/6)).
func BaseFontSize(width, height int) int {
	return max(MinBaseFontSize, min(width/5, height/6))
}

// TargetAlpha converts an opacity percentage to an 8-bit alpha.
func TargetAlpha(opacityPct float64) uint8 {
	o := clampPct(opacityPct, 0, 100) / 100
	return uint8(math.Round(255 * o))
}

func clampPct(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return util.Clamp(v, lo, hi)
}

// visibleLines drops lines that contain nothing but whitespace.
func visibleLines(t Text) []string {
	var lines []string
	for _, l := range []string{t.Line1, t.Line2} {
		if s := strings.TrimSpace(l); s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

// block is one measurement of all lines at a font size.
type block struct {
	lines    []LineMetrics
	maxWidth int
	spacing  int
	height   int
}

func measure(face font.Face, lines []string) block {
	var b block
	tallest := 0
	for _, s := range lines {
		bounds, _ := font.BoundString(face, s)
		ink := image.Rect(
			bounds.Min.X.Floor(), bounds.Min.Y.Floor(),
			bounds.Max.X.Ceil(), bounds.Max.Y.Ceil(),
		)
		lm := LineMetrics{Text: s, Ink: ink, Width: ink.Dx(), Height: ink.Dy()}
		b.lines = append(b.lines, lm)
		b.maxWidth = max(b.maxWidth, lm.Width)
		b.height += lm.Height
		tallest = max(tallest, lm.Height)
	}
	if len(lines) == 2 {
		b.spacing = int(math.Round(LineSpacingRatio * float64(tallest)))
		b.height += b.spacing
	}
	return b
}

func measureAt(tf *typeface.Typeface, size float64, lines []string) (block, error) {
	face, err := tf.Face(size)
	if err != nil {
		return block{}, fmt.Errorf("build %s face at %.1fpx: %w", tf.Name, size, err)
	}
	defer face.Close()
	return measure(face, lines), nil
}

// Compose renders t onto a transparent width x height canvas. The widest
// line is scaled toward CoveragePct of the width while the block stays
// within HeightCeiling of the height. The block is centered vertically and
// each line horizontally. Text with no visible line produces a fully
// transparent overlay and no error.
func Compose(width, height int, t Text, resolver *typeface.Resolver) (*Overlay, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	coverage := clampPct(t.CoveragePct, 1, 100)
	ov := &Overlay{
		Image:       image.NewNRGBA(image.Rect(0, 0, width, height)),
		TargetRatio: coverage / 100,
		Alpha:       TargetAlpha(t.OpacityPct),
	}

	lines := visibleLines(t)
	if len(lines) == 0 {
		return ov, nil
	}

	size := float64(BaseFontSize(width, height))
	tf := resolver.Resolve(size)
	ov.FontName = tf.Name
	ov.Scalable = tf.Scalable

	b, err := measureAt(tf, size, lines)
	if err != nil {
		return nil, err
	}

	ceiling := HeightCeiling * float64(height)
	if tf.Scalable {
		size, b, ov.Iterations, err = autoScale(tf, size, b, lines, width, ov.TargetRatio, ceiling)
		if err != nil {
			return nil, err
		}
	}

	ov.FontSize = size
	ov.Spacing = b.spacing
	ov.BlockHeight = b.height
	ov.AchievedRatio = float64(b.maxWidth) / float64(width)

	face, err := tf.Face(size)
	if err != nil {
		return nil, fmt.Errorf("build %s face at %.1fpx: %w", tf.Name, size, err)
	}
	defer face.Close()

	top := (height - b.height) / 2
	for i, lm := range b.lines {
		left := (width - lm.Width) / 2
		lm.Rect = image.Rect(left, top, left+lm.Width, top+lm.Height)
		drawLine(ov.Image, face, lm, ov.Alpha)
		b.lines[i] = lm
		top += lm.Height + b.spacing
	}
	ov.Lines = b.lines

	logging.Global().WithComponent("overlay").Debug("watermark composed",
		"font", ov.FontName, "size", math.Round(ov.FontSize*10)/10,
		"target_ratio", ov.TargetRatio, "achieved_ratio", ov.AchievedRatio,
		"iterations", ov.Iterations, "block_height", ov.BlockHeight)

	return ov, nil
}

// autoScale nudges size until the widest line hits target or the height
// ceiling binds. A final shrink guarantees the ceiling.
func autoScale(tf *typeface.Typeface, size float64, b block, lines []string, width int, target, ceiling float64) (float64, block, int, error) {
	var err error
	iterations := 0
	for i := 0; i < MaxScaleIterations; i++ {
		if b.maxWidth <= 0 || b.height <= 0 {
			break
		}
		achieved := float64(b.maxWidth) / float64(width)
		if math.Abs(achieved-target) <= RatioTolerance {
			break
		}

		scale := target / achieved
		if float64(b.height)*scale > ceiling {
			scale = ceiling / float64(b.height)
		}
		if math.Abs(scale-1) < 1e-3 {
			break
		}

		size = math.Max(size*scale, minFontSize)
		iterations++
		if b, err = measureAt(tf, size, lines); err != nil {
			return 0, block{}, 0, err
		}
	}

	// Pixel rounding can leave the block a hair over the ceiling. Each pass
	// shrinks by at least 3% so this terminates quickly.
	for i := 0; i < 20 && float64(b.height) > ceiling && size > minFontSize; i++ {
		size = math.Max(size*math.Min(ceiling/float64(b.height), 0.97), minFontSize)
		if b, err = measureAt(tf, size, lines); err != nil {
			return 0, block{}, 0, err
		}
	}
	return size, b, iterations, nil
}

// drawLine rasterises one line's coverage and merges it into dst as white
// at up to alpha. Overlapping ink keeps the larger alpha.
func drawLine(dst *image.NRGBA, face font.Face, lm LineMetrics, alpha uint8) {
	area := lm.Rect.Intersect(dst.Bounds())
	if area.Empty() || alpha == 0 {
		return
	}

	mask := image.NewAlpha(lm.Rect)
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(lm.Rect.Min.X-lm.Ink.Min.X, lm.Rect.Min.Y-lm.Ink.Min.Y),
	}
	d.DrawString(lm.Text)

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			m := mask.AlphaAt(x, y).A
			if m == 0 {
				continue
			}
			a := uint8((uint32(m)*uint32(alpha) + 127) / 255)
			if a == 0 {
				continue
			}
			if cur := dst.NRGBAAt(x, y).A; a > cur {
				dst.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: a})
			}
		}
	}
}
