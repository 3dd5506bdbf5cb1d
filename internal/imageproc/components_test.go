package imageproc

import (
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestConnectedComponentsTwoBlobs(t *testing.T) {
	mask := mat.NewDense(20, 20, nil)
	// 4x4 blob at (2,2) and 3x3 blob at (12,12).
	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			mask.Set(y, x, 1)
		}
	}
	for y := 12; y < 15; y++ {
		for x := 12; x < 15; x++ {
			mask.Set(y, x, 1)
		}
	}

	components := ConnectedComponents(mask, 0)
	test.That(t, len(components), test.ShouldEqual, 2)
	test.That(t, components[0].Bounds, test.ShouldResemble, image.Rect(2, 2, 6, 6))
	test.That(t, components[0].Area, test.ShouldEqual, 16)
	test.That(t, components[1].Bounds, test.ShouldResemble, image.Rect(12, 12, 15, 15))
	test.That(t, components[1].Area, test.ShouldEqual, 9)
}

func TestConnectedComponentsMinArea(t *testing.T) {
	mask := mat.NewDense(10, 10, nil)
	for y := 1; y < 4; y++ {
		for x := 1; x < 4; x++ {
			mask.Set(y, x, 1)
		}
	}
	// area is 9; a strict > filter drops it at minArea 9.
	test.That(t, len(ConnectedComponents(mask, 9)), test.ShouldEqual, 0)
	test.That(t, len(ConnectedComponents(mask, 8)), test.ShouldEqual, 1)
}

func TestConnectedComponentsDiagonalNotConnected(t *testing.T) {
	mask := mat.NewDense(4, 4, nil)
	mask.Set(0, 0, 1)
	mask.Set(1, 1, 1)
	test.That(t, len(ConnectedComponents(mask, 0)), test.ShouldEqual, 2)
}

func TestEdgeDensitySolidVersusChecker(t *testing.T) {
	solid := solidImage(64, 64, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	test.That(t, EdgeDensity(solid, 50, 150), test.ShouldEqual, 0.0)

	checker := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			c := color.NRGBA{R: 230, G: 230, B: 230, A: 255}
			if (x/8+y/8)%2 == 0 {
				c = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
			}
			checker.SetNRGBA(x, y, c)
		}
	}
	test.That(t, EdgeDensity(checker, 50, 150), test.ShouldBeGreaterThan, 0.1)
}

func TestEdgeDensityThinEdges(t *testing.T) {
	// Ten vertical stripes of width 10: nine step boundaries, each of which
	// must contribute a single-pixel-wide edge column, not a thick gradient
	// ridge. Nine thin columns over 98 interior rows is 0.0882.
	stripes := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			c := color.NRGBA{R: 230, G: 230, B: 230, A: 255}
			if (x/10)%2 == 0 {
				c = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
			}
			stripes.SetNRGBA(x, y, c)
		}
	}
	test.That(t, EdgeDensity(stripes, 50, 150), test.ShouldBeBetween, 0.07, 0.11)
}
