package preprocess

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"go.viam.com/test"
)

// fixedSource forces the rotation coin flip: 0 keeps the no-rotate branch,
// values near 1<<63 force rotation.
type fixedSource struct{ v int64 }

func (s fixedSource) Int63() int64 { return s.v }
func (s fixedSource) Seed(int64)   {}

var (
	noRotate    = fixedSource{0}
	forceRotate = fixedSource{1<<63 - 1<<10}
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	test.That(t, png.Encode(&buf, img), test.ShouldBeNil)
	return buf.Bytes()
}

func testImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 90, A: 255,
			})
		}
	}
	return encodePNG(t, img)
}

func TestEnhancedShapeInvariant(t *testing.T) {
	p := New(rand.New(noRotate))
	tensor, info, err := p.Enhanced(testImage(t, 640, 480))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tensor.Shape(), test.ShouldResemble, []int64{1, 224, 224, 3})
	test.That(t, tensor.Validate(224, 224, 3), test.ShouldBeNil)
	test.That(t, info.OriginalWidth, test.ShouldEqual, 640)
	test.That(t, info.OriginalHeight, test.ShouldEqual, 480)
	test.That(t, info.CropSize, test.ShouldEqual, 480)
	test.That(t, info.Method, test.ShouldEqual, "enhanced")
	test.That(t, info.BrightnessFactor, test.ShouldBeBetweenOrEqual, 0.7, 1.3)
}

func TestEnhancedDeterministicWithoutRotation(t *testing.T) {
	raw := testImage(t, 300, 300)

	a, infoA, err := New(rand.New(noRotate)).Enhanced(raw)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, infoA.Rotated, test.ShouldBeFalse)

	b, _, err := New(rand.New(noRotate)).Enhanced(raw)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a.Data, test.ShouldResemble, b.Data)
}

func TestEnhancedRotationBranch(t *testing.T) {
	_, info, err := New(rand.New(forceRotate)).Enhanced(testImage(t, 300, 300))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Rotated, test.ShouldBeTrue)
	test.That(t, info.RotationDegrees, test.ShouldBeBetween, -25.0, 25.0)
}

func TestBasicPath(t *testing.T) {
	p := New(rand.New(noRotate))
	tensor, info, err := p.Basic(testImage(t, 100, 50))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tensor.Validate(224, 224, 3), test.ShouldBeNil)
	test.That(t, info.Method, test.ShouldEqual, "original")
	test.That(t, info.CropSize, test.ShouldEqual, 0)
}

func TestDecodeFailure(t *testing.T) {
	p := New(rand.New(noRotate))
	_, _, err := p.Enhanced([]byte("not an image"))
	test.That(t, err, test.ShouldNotBeNil)

	var perr *Error
	test.That(t, errors.As(err, &perr), test.ShouldBeTrue)
}
