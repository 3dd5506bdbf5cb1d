// Package imageproc holds the image-processing primitives shared by the
// diagnostic pipeline: the model input tensor, HSV color masks, morphology,
// edge analysis and connected-component extraction.
package imageproc

import (
	"image"
	"math/rand"

	"github.com/pkg/errors"
)

// Tensor is a single-image NHWC float32 tensor (batch size 1) with values
// normalized to [0,1]. It is never mutated after creation; augmented views
// are always fresh copies.
type Tensor struct {
	Data   []float32
	Height int
	Width  int
	Chans  int
}

// NewTensor allocates a zeroed tensor of the given spatial size.
func NewTensor(height, width, chans int) *Tensor {
	return &Tensor{
		Data:   make([]float32, height*width*chans),
		Height: height,
		Width:  width,
		Chans:  chans,
	}
}

// TensorFromImage converts an image to a [0,1] NHWC tensor, multiplying each
// channel by brightness before normalization. Brightness values are clamped
// so the result stays inside [0,1].
func TensorFromImage(img image.Image, brightness float64) *Tensor {
	b := img.Bounds()
	t := NewTensor(b.Dy(), b.Dx(), 3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			t.Data[i] = clamp01(float32(float64(r>>8) * brightness / 255.0))
			t.Data[i+1] = clamp01(float32(float64(g>>8) * brightness / 255.0))
			t.Data[i+2] = clamp01(float32(float64(bl>>8) * brightness / 255.0))
			i += 3
		}
	}
	return t
}

// At returns the value at (y, x, c).
func (t *Tensor) At(y, x, c int) float32 {
	return t.Data[(y*t.Width+x)*t.Chans+c]
}

// Set writes the value at (y, x, c).
func (t *Tensor) Set(y, x, c int, v float32) {
	t.Data[(y*t.Width+x)*t.Chans+c] = v
}

// Len reports the number of elements including the batch dimension.
func (t *Tensor) Len() int { return len(t.Data) }

// Shape reports the NHWC shape with the leading batch dimension.
func (t *Tensor) Shape() []int64 {
	return []int64{1, int64(t.Height), int64(t.Width), int64(t.Chans)}
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	out := NewTensor(t.Height, t.Width, t.Chans)
	copy(out.Data, t.Data)
	return out
}

// FlipHorizontal returns a copy mirrored along the width axis.
func (t *Tensor) FlipHorizontal() *Tensor {
	out := NewTensor(t.Height, t.Width, t.Chans)
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			for c := 0; c < t.Chans; c++ {
				out.Set(y, x, c, t.At(y, t.Width-1-x, c))
			}
		}
	}
	return out
}

// Scale returns a copy with every value multiplied by f and clipped to [0,1].
func (t *Tensor) Scale(f float64) *Tensor {
	out := NewTensor(t.Height, t.Width, t.Chans)
	for i, v := range t.Data {
		out.Data[i] = clamp01(float32(float64(v) * f))
	}
	return out
}

// Roll returns a copy shifted by (dy, dx) with wraparound, the spatial analog
// of a circular shift along both axes.
func (t *Tensor) Roll(dy, dx int) *Tensor {
	out := NewTensor(t.Height, t.Width, t.Chans)
	for y := 0; y < t.Height; y++ {
		sy := ((y-dy)%t.Height + t.Height) % t.Height
		for x := 0; x < t.Width; x++ {
			sx := ((x-dx)%t.Width + t.Width) % t.Width
			for c := 0; c < t.Chans; c++ {
				out.Set(y, x, c, t.At(sy, sx, c))
			}
		}
	}
	return out
}

// Validate checks the shape and value-range invariants expected by the
// classifiers.
func (t *Tensor) Validate(height, width, chans int) error {
	if t.Height != height || t.Width != width || t.Chans != chans {
		return errors.Errorf("tensor shape (1,%d,%d,%d), want (1,%d,%d,%d)",
			t.Height, t.Width, t.Chans, height, width, chans)
	}
	for _, v := range t.Data {
		if v < 0 || v > 1 {
			return errors.Errorf("tensor value %f outside [0,1]", v)
		}
	}
	return nil
}

// RandRoll draws a roll offset in [-10, 10) on both axes from r.
func RandRoll(r *rand.Rand) (dy, dx int) {
	return r.Intn(20) - 10, r.Intn(20) - 10
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
