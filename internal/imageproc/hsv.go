package imageproc

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/mat"
)

// HSV is a color in OpenCV-style units: H in [0,180], S and V in [0,255].
// All threshold tables in the system are written in these units.
type HSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// Window is an inclusive HSV threshold window.
type Window struct {
	Lower HSV `json:"lower"`
	Upper HSV `json:"upper"`
}

// Contains reports whether c falls inside the window.
func (w Window) Contains(c HSV) bool {
	return c.H >= w.Lower.H && c.H <= w.Upper.H &&
		c.S >= w.Lower.S && c.S <= w.Upper.S &&
		c.V >= w.Lower.V && c.V <= w.Upper.V
}

// RGBToHSV converts 8-bit RGB to OpenCV-unit HSV.
func RGBToHSV(r, g, b uint8) HSV {
	h, s, v := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}.Hsv()
	return HSV{H: h / 2.0, S: s * 255.0, V: v * 255.0}
}

// InRangeMask builds a binary mask (values 0/1) of the pixels whose HSV color
// falls inside the window.
func InRangeMask(img image.Image, w Window) *mat.Dense {
	b := img.Bounds()
	mask := mat.NewDense(b.Dy(), b.Dx(), nil)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if w.Contains(RGBToHSV(uint8(r>>8), uint8(g>>8), uint8(bl>>8))) {
				mask.Set(y, x, 1)
			}
		}
	}
	return mask
}

// UnionMask builds a binary mask of the pixels matching any of the windows.
func UnionMask(img image.Image, windows []Window) *mat.Dense {
	b := img.Bounds()
	mask := mat.NewDense(b.Dy(), b.Dx(), nil)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			hsv := RGBToHSV(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			for _, w := range windows {
				if w.Contains(hsv) {
					mask.Set(y, x, 1)
					break
				}
			}
		}
	}
	return mask
}

// MaskRatio reports the fraction of set pixels in a binary mask.
func MaskRatio(mask *mat.Dense) float64 {
	rows, cols := mask.Dims()
	if rows == 0 || cols == 0 {
		return 0
	}
	count := 0
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if mask.At(y, x) > 0 {
				count++
			}
		}
	}
	return float64(count) / float64(rows*cols)
}
