// Package blend applies a rendered overlay to raw rgb24 frames.
//
// BuildMask runs once per video and flattens the overlay into a straight RGB
// color plane and a per-pixel weight. Apply then blends every decoded frame
// against that immutable mask.
package blend

import (
	"fmt"
	"image"
	"math"

	"github.com/five82/vidmark/internal/util"
)

// BytesPerPixel is the size of one rgb24 pixel.
const BytesPerPixel = 3

// Mask is the precomputed blend state for one video. It is read-only after
// BuildMask and may be shared by concurrent readers.
type Mask struct {
	Width  int
	Height int
	// Color is the overlay's RGB, Width*Height*3 bytes.
	Color []uint8
	// Weights holds clamp(alpha/255 * strength, 0, 1) per pixel.
	Weights []float32

	// active lists the pixel indices with a non-zero weight.
	active []int
}

// FrameSize is the byte length of one rgb24 frame of this mask's geometry.
func (m *Mask) FrameSize() int {
	return m.Width * m.Height * BytesPerPixel
}

// Coverage is the fraction of pixels the overlay touches.
func (m *Mask) Coverage() float64 {
	if len(m.Weights) == 0 {
		return 0
	}
	return float64(len(m.active)) / float64(len(m.Weights))
}

// IsZero reports whether applying the mask leaves frames unchanged.
func (m *Mask) IsZero() bool {
	return len(m.active) == 0
}

// BuildMask converts an overlay into a blend mask. strength scales the
// overlay alpha; 1 uses it as-is. Negative or NaN strengths act as 0.
func BuildMask(overlay *image.NRGBA, strength float64) (*Mask, error) {
	if overlay == nil {
		return nil, fmt.Errorf("nil overlay")
	}
	if math.IsNaN(strength) || strength < 0 {
		strength = 0
	}

	b := overlay.Bounds()
	w, h := b.Dx(), b.Dy()
	m := &Mask{
		Width:   w,
		Height:  h,
		Color:   make([]uint8, w*h*BytesPerPixel),
		Weights: make([]float32, w*h),
	}

	for y := 0; y < h; y++ {
		row := overlay.Pix[y*overlay.Stride : y*overlay.Stride+w*4]
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+4]
			i := y*w + x
			copy(m.Color[i*BytesPerPixel:i*BytesPerPixel+3], px[:3])

			weight := util.Clamp(float64(px[3])/255*strength, 0, 1)
			m.Weights[i] = float32(weight)
			if weight > 0 {
				m.active = append(m.active, i)
			}
		}
	}

	return m, nil
}

// Apply writes the blended frame into dst. src and dst are rgb24 frames of
// the mask's geometry and may be the same slice. Each channel becomes
// round(clamp(src*(1-w) + color*w, 0, 255)); w=0 leaves the pixel untouched
// and w=1 yields the overlay color exactly.
func (m *Mask) Apply(dst, src []byte) error {
	size := m.FrameSize()
	if len(src) != size {
		return fmt.Errorf("frame is %d bytes, expected %d for %dx%d rgb24", len(src), size, m.Width, m.Height)
	}
	if len(dst) != size {
		return fmt.Errorf("output buffer is %d bytes, expected %d", len(dst), size)
	}

	if size == 0 {
		return nil
	}
	if &dst[0] != &src[0] {
		copy(dst, src)
	}

	for _, i := range m.active {
		w := m.Weights[i]
		off := i * BytesPerPixel
		if w >= 1 {
			copy(dst[off:off+3], m.Color[off:off+3])
			continue
		}
		inv := 1 - w
		for c := off; c < off+3; c++ {
			v := float32(src[c])*inv + float32(m.Color[c])*w
			dst[c] = uint8(util.Clamp(v, 0, 255) + 0.5)
		}
	}
	return nil
}

// ApplyInPlace blends the mask into frame.
func (m *Mask) ApplyInPlace(frame []byte) error {
	return m.Apply(frame, frame)
}
