// Package preprocess normalizes arbitrary uploaded photos into the tensors
// the classifiers were trained on.
package preprocess

import (
	"bytes"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math/rand"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/tomatoguard/diagnosis-api/internal/imageproc"
)

// TargetSize is the spatial size of the classifier input.
const TargetSize = 224

const contrastPercent = 15 // matches a 1.15 contrast factor

// Error is the hard failure raised when an image cannot be decoded or
// transformed. It carries the underlying cause.
type Error struct {
	Cause error
}

func (e *Error) Error() string { return "image preprocessing failed: " + e.Cause.Error() }

// Unwrap exposes the underlying decode/transform error.
func (e *Error) Unwrap() error { return e.Cause }

// Info is the diagnostic record of a single preprocessing run.
type Info struct {
	Method           string  `json:"method"`
	Format           string  `json:"format"`
	OriginalWidth    int     `json:"original_width"`
	OriginalHeight   int     `json:"original_height"`
	CropSize         int     `json:"cropped_size,omitempty"`
	TargetSize       int     `json:"target_size"`
	Rotated          bool    `json:"rotated"`
	RotationDegrees  float64 `json:"rotation_degrees,omitempty"`
	BrightnessFactor float64 `json:"brightness_adjusted,omitempty"`
	ContrastFactor   float64 `json:"contrast_applied,omitempty"`
	Enhanced         bool    `json:"enhanced_preprocessing"`
}

// Preprocessor converts raw image bytes into model-ready tensors. The random
// source drives the training-style rotation jitter; inject a seeded source to
// make runs reproducible.
type Preprocessor struct {
	rnd *rand.Rand
}

// New returns a Preprocessor drawing rotation jitter from rnd.
func New(rnd *rand.Rand) *Preprocessor {
	return &Preprocessor{rnd: rnd}
}

// Enhanced runs the full normalization chain: center crop to a square,
// Lanczos resize to 224×224, a coin-flip rotation in [-25°, +25°] with white
// fill (mirroring the training augmentation distribution), a fixed contrast
// boost, and a brightness rescale targeting mid-gray average luminance.
func (p *Preprocessor) Enhanced(raw []byte) (*imageproc.Tensor, Info, error) {
	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, Info{}, &Error{Cause: err}
	}

	bounds := src.Bounds()
	info := Info{
		Method:         "enhanced",
		Format:         format,
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
		TargetSize:     TargetSize,
		ContrastFactor: 1.15,
		Enhanced:       true,
	}

	// Center-crop to a square on the shorter side, then resize like training.
	cropSize := bounds.Dx()
	if bounds.Dy() < cropSize {
		cropSize = bounds.Dy()
	}
	info.CropSize = cropSize
	img := imaging.CropAnchor(src, cropSize, cropSize, imaging.Center)
	img = imaging.Clone(resize.Resize(TargetSize, TargetSize, img, resize.Lanczos3))

	// Rotation jitter on half of the inputs, white fill for exposed corners.
	if p.rnd.Float64() > 0.5 {
		angle := p.rnd.Float64()*50 - 25
		rotated := imaging.Rotate(img, angle, color.White)
		img = imaging.CropAnchor(rotated, TargetSize, TargetSize, imaging.Center)
		info.Rotated = true
		info.RotationDegrees = angle
	}

	img = imaging.AdjustContrast(img, contrastPercent)

	factor := brightnessFactor(img)
	info.BrightnessFactor = factor

	return imageproc.TensorFromImage(img, factor), info, nil
}

// Basic is the plain legacy path: resize to the target size and normalize,
// with no crop, jitter or tone adjustments.
func (p *Preprocessor) Basic(raw []byte) (*imageproc.Tensor, Info, error) {
	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, Info{}, &Error{Cause: err}
	}
	bounds := src.Bounds()
	info := Info{
		Method:         "original",
		Format:         format,
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
		TargetSize:     TargetSize,
	}
	img := imaging.Clone(resize.Resize(TargetSize, TargetSize, src, resize.Lanczos3))
	return imageproc.TensorFromImage(img, 1.0), info, nil
}

// Run dispatches between the enhanced and legacy paths.
func (p *Preprocessor) Run(raw []byte, enhanced bool) (*imageproc.Tensor, Info, error) {
	if enhanced {
		return p.Enhanced(raw)
	}
	return p.Basic(raw)
}

// brightnessFactor computes the multiplier that would bring the image's
// average luminance to mid-gray, clamped to [0.7, 1.3].
func brightnessFactor(img image.Image) float64 {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	var hist [256]int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[gray.NRGBAAt(x, y).R]++
		}
	}
	var sum float64
	for v, n := range hist {
		sum += float64(v) * float64(n)
	}
	avg := sum / float64(b.Dx()*b.Dy()*255)
	if avg <= 0 {
		return 1.0
	}
	factor := 0.5 / avg
	if factor < 0.7 {
		factor = 0.7
	}
	if factor > 1.3 {
		factor = 1.3
	}
	return factor
}
