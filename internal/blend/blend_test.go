package blend

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"
)

func solidFrame(w, h int, r, g, b uint8) []byte {
	f := make([]byte, w*h*BytesPerPixel)
	for i := 0; i < len(f); i += 3 {
		f[i], f[i+1], f[i+2] = r, g, b
	}
	return f
}

func TestBuildMaskTransparentIsNoop(t *testing.T) {
	ov := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	m, err := BuildMask(ov, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsZero() || m.Coverage() != 0 {
		t.Fatalf("transparent overlay produced active pixels")
	}

	frame := solidFrame(8, 4, 10, 200, 33)
	frame[5] = 77
	want := append([]byte(nil), frame...)
	out := make([]byte, len(frame))
	if err := m.Apply(out, frame); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, want) {
		t.Error("zero-weight mask changed the frame")
	}
}

func TestApplyFullWeightGivesOverlayColor(t *testing.T) {
	ov := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	ov.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	m, err := BuildMask(ov, 1)
	if err != nil {
		t.Fatal(err)
	}
	frame := solidFrame(2, 1, 1, 2, 3)
	if err := m.ApplyInPlace(frame); err != nil {
		t.Fatal(err)
	}
	if want := []byte{200, 100, 50, 1, 2, 3}; !bytes.Equal(frame, want) {
		t.Errorf("got %v, want %v", frame, want)
	}
}

func TestApplyFormula(t *testing.T) {
	tests := []struct {
		name     string
		alpha    uint8
		strength float64
		src      uint8
		col      uint8
	}{
		{"ten percent white on black", 26, 1, 0, 255},
		{"ten percent white on grey", 26, 1, 128, 255},
		{"half strength", 200, 0.5, 40, 255},
		{"strength above one saturates", 200, 3, 40, 255},
		{"dark overlay", 128, 1, 250, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ov := image.NewNRGBA(image.Rect(0, 0, 1, 1))
			ov.SetNRGBA(0, 0, color.NRGBA{R: tt.col, G: tt.col, B: tt.col, A: tt.alpha})
			m, err := BuildMask(ov, tt.strength)
			if err != nil {
				t.Fatal(err)
			}

			w := math.Min(math.Max(float64(tt.alpha)/255*tt.strength, 0), 1)
			if math.Abs(float64(m.Weights[0])-w) > 1e-6 {
				t.Errorf("weight = %v, want %v", m.Weights[0], w)
			}

			frame := []byte{tt.src, tt.src, tt.src}
			if err := m.ApplyInPlace(frame); err != nil {
				t.Fatal(err)
			}
			want := float64(tt.src)*(1-w) + float64(tt.col)*w
			for c, got := range frame {
				if math.Abs(float64(got)-want) > 0.5+1e-3 {
					t.Errorf("channel %d = %d, want round(%.3f)", c, got, want)
				}
			}
		})
	}
}

func TestBuildMaskStrengthClamp(t *testing.T) {
	ov := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	ov.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 100})

	for _, s := range []float64{-1, math.NaN()} {
		m, err := BuildMask(ov, s)
		if err != nil {
			t.Fatal(err)
		}
		if !m.IsZero() {
			t.Errorf("strength %v should disable the mask", s)
		}
	}

	m, err := BuildMask(ov, 10)
	if err != nil {
		t.Fatal(err)
	}
	if m.Weights[0] != 1 {
		t.Errorf("weight = %v, want 1", m.Weights[0])
	}
}

func TestBuildMaskHonoursStride(t *testing.T) {
	parent := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	parent.SetNRGBA(3, 3, color.NRGBA{R: 9, G: 8, B: 7, A: 255})
	sub := parent.SubImage(image.Rect(2, 2, 6, 6)).(*image.NRGBA)

	m, err := BuildMask(sub, 1)
	if err != nil {
		t.Fatal(err)
	}
	if m.Width != 4 || m.Height != 4 {
		t.Fatalf("mask %dx%d", m.Width, m.Height)
	}
	i := 1*4 + 1
	if m.Weights[i] != 1 || !bytes.Equal(m.Color[i*3:i*3+3], []byte{9, 8, 7}) {
		t.Errorf("pixel (1,1) = %v %v", m.Weights[i], m.Color[i*3:i*3+3])
	}
	if m.Coverage() != 1.0/16 {
		t.Errorf("coverage = %v", m.Coverage())
	}
}

func TestApplySizeMismatch(t *testing.T) {
	m, err := BuildMask(image.NewNRGBA(image.Rect(0, 0, 4, 4)), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.ApplyInPlace(make([]byte, 10)); err == nil {
		t.Error("expected error for short frame")
	}
	if err := m.Apply(make([]byte, 10), make([]byte, m.FrameSize())); err == nil {
		t.Error("expected error for short output buffer")
	}
}

func TestApplyIsStateless(t *testing.T) {
	ov := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	ov.SetNRGBA(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 64})
	m, err := BuildMask(ov, 1)
	if err != nil {
		t.Fatal(err)
	}

	first := solidFrame(3, 3, 90, 90, 90)
	if err := m.ApplyInPlace(first); err != nil {
		t.Fatal(err)
	}
	second := solidFrame(3, 3, 90, 90, 90)
	if err := m.ApplyInPlace(second); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("identical frames blended differently")
	}
}

func TestBuildMaskNil(t *testing.T) {
	if _, err := BuildMask(nil, 1); err == nil {
		t.Error("expected error for nil overlay")
	}
}
