package imageproc

import (
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestTensorFromImage(t *testing.T) {
	img := solidImage(4, 3, color.NRGBA{R: 255, G: 0, B: 127, A: 255})
	tensor := TensorFromImage(img, 1.0)

	test.That(t, tensor.Shape(), test.ShouldResemble, []int64{1, 3, 4, 3})
	test.That(t, tensor.Validate(3, 4, 3), test.ShouldBeNil)
	test.That(t, tensor.At(0, 0, 0), test.ShouldEqual, float32(1.0))
	test.That(t, tensor.At(0, 0, 1), test.ShouldEqual, float32(0.0))
	test.That(t, tensor.At(2, 3, 2), test.ShouldAlmostEqual, float32(127.0/255.0), 1e-6)
}

func TestTensorBrightnessClamps(t *testing.T) {
	img := solidImage(2, 2, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	tensor := TensorFromImage(img, 1.3)
	for _, v := range tensor.Data {
		test.That(t, v, test.ShouldEqual, float32(1.0))
	}
}

func TestTensorFlipHorizontal(t *testing.T) {
	tensor := NewTensor(2, 3, 1)
	tensor.Set(0, 0, 0, 0.1)
	tensor.Set(0, 2, 0, 0.9)

	flipped := tensor.FlipHorizontal()
	test.That(t, flipped.At(0, 0, 0), test.ShouldEqual, float32(0.9))
	test.That(t, flipped.At(0, 2, 0), test.ShouldEqual, float32(0.1))
	// Source untouched.
	test.That(t, tensor.At(0, 0, 0), test.ShouldEqual, float32(0.1))
}

func TestTensorRollWraps(t *testing.T) {
	tensor := NewTensor(3, 3, 1)
	tensor.Set(0, 0, 0, 1)

	rolled := tensor.Roll(1, 2)
	test.That(t, rolled.At(1, 2, 0), test.ShouldEqual, float32(1))
	test.That(t, rolled.At(0, 0, 0), test.ShouldEqual, float32(0))

	back := rolled.Roll(-1, -2)
	test.That(t, back.Data, test.ShouldResemble, tensor.Data)
}

func TestTensorScaleClips(t *testing.T) {
	tensor := NewTensor(1, 2, 1)
	tensor.Set(0, 0, 0, 0.5)
	tensor.Set(0, 1, 0, 0.9)

	scaled := tensor.Scale(1.5)
	test.That(t, scaled.At(0, 0, 0), test.ShouldAlmostEqual, float32(0.75), 1e-6)
	test.That(t, scaled.At(0, 1, 0), test.ShouldEqual, float32(1.0))
}

func TestTensorValidateRejectsBadShape(t *testing.T) {
	tensor := NewTensor(2, 2, 3)
	test.That(t, tensor.Validate(4, 4, 3), test.ShouldNotBeNil)
}
