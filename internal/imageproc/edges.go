package imageproc

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// gaussian5 is the usual 5×5 Gaussian kernel (sigma ≈ 1), normalized by 273.
var gaussian5 = [5][5]float64{
	{1, 4, 7, 4, 1},
	{4, 16, 26, 16, 4},
	{7, 26, 41, 26, 7},
	{4, 16, 26, 16, 4},
	{1, 4, 7, 4, 1},
}

// EdgeDensity measures the fraction of edge pixels in the image: grayscale,
// 5×5 Gaussian blur, Sobel gradients, non-maximum suppression along the
// gradient direction, then a double threshold with hysteresis. Suppression
// thins gradient ridges to single-pixel edges so the ratio is comparable to
// a Canny edge map rather than being inflated by ridge width.
func EdgeDensity(img image.Image, low, high float64) float64 {
	gray := grayFloat(imaging.Grayscale(img))
	rows := len(gray)
	if rows == 0 {
		return 0
	}
	cols := len(gray[0])
	if cols == 0 {
		return 0
	}

	blurred := gaussianBlur5(gray)
	gx, gy := sobelGradients(blurred)
	mag := nonMaxSuppress(gx, gy)

	strong := make([]bool, rows*cols)
	weak := make([]bool, rows*cols)
	queue := []image.Point{}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			switch {
			case mag[y][x] >= high:
				strong[y*cols+x] = true
				queue = append(queue, image.Point{x, y})
			case mag[y][x] >= low:
				weak[y*cols+x] = true
			}
		}
	}

	// Promote weak pixels reachable from a strong one.
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				ny, nx := p.Y+dy, p.X+dx
				if ny < 0 || ny >= rows || nx < 0 || nx >= cols {
					continue
				}
				idx := ny*cols + nx
				if weak[idx] && !strong[idx] {
					strong[idx] = true
					queue = append(queue, image.Point{nx, ny})
				}
			}
		}
	}

	count := 0
	for _, s := range strong {
		if s {
			count++
		}
	}
	return float64(count) / float64(rows*cols)
}

func grayFloat(img *image.NRGBA) [][]float64 {
	b := img.Bounds()
	out := make([][]float64, b.Dy())
	for y := range out {
		row := make([]float64, b.Dx())
		for x := range row {
			// Grayscale image: R == G == B.
			row[x] = float64(img.NRGBAAt(b.Min.X+x, b.Min.Y+y).R)
		}
		out[y] = row
	}
	return out
}

func gaussianBlur5(src [][]float64) [][]float64 {
	rows, cols := len(src), len(src[0])
	out := make([][]float64, rows)
	for y := 0; y < rows; y++ {
		out[y] = make([]float64, cols)
		for x := 0; x < cols; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					ny := clampInt(y+ky, 0, rows-1)
					nx := clampInt(x+kx, 0, cols-1)
					sum += src[ny][nx] * gaussian5[ky+2][kx+2]
				}
			}
			out[y][x] = sum / 273.0
		}
	}
	return out
}

func sobelGradients(src [][]float64) (gx, gy [][]float64) {
	rows, cols := len(src), len(src[0])
	gx = make([][]float64, rows)
	gy = make([][]float64, rows)
	for y := 0; y < rows; y++ {
		gx[y] = make([]float64, cols)
		gy[y] = make([]float64, cols)
		if y == 0 || y == rows-1 {
			continue
		}
		for x := 1; x < cols-1; x++ {
			gx[y][x] = -src[y-1][x-1] + src[y-1][x+1] -
				2*src[y][x-1] + 2*src[y][x+1] -
				src[y+1][x-1] + src[y+1][x+1]
			gy[y][x] = -src[y-1][x-1] - 2*src[y-1][x] - src[y-1][x+1] +
				src[y+1][x-1] + 2*src[y+1][x] + src[y+1][x+1]
		}
	}
	return gx, gy
}

// nonMaxSuppress keeps only pixels whose gradient magnitude is a local
// maximum along the quantized gradient direction. Plateau ties keep exactly
// one pixel: the comparison is >= against the previous neighbor and strictly
// > against the next.
func nonMaxSuppress(gx, gy [][]float64) [][]float64 {
	rows, cols := len(gx), len(gx[0])
	mag := make([][]float64, rows)
	for y := range mag {
		mag[y] = make([]float64, cols)
		for x := range mag[y] {
			mag[y][x] = math.Hypot(gx[y][x], gy[y][x])
		}
	}

	out := make([][]float64, rows)
	for y := 0; y < rows; y++ {
		out[y] = make([]float64, cols)
		for x := 0; x < cols; x++ {
			m := mag[y][x]
			if m == 0 {
				continue
			}
			dx, dy := gradientStep(gx[y][x], gy[y][x])
			if m >= magAt(mag, y-dy, x-dx) && m > magAt(mag, y+dy, x+dx) {
				out[y][x] = m
			}
		}
	}
	return out
}

// gradientStep quantizes a gradient vector into one of the four Canny
// directions and returns the unit step toward the "next" neighbor.
func gradientStep(gx, gy float64) (dx, dy int) {
	theta := math.Atan2(gy, gx) * 180 / math.Pi
	if theta < 0 {
		theta += 180
	}
	switch {
	case theta < 22.5 || theta >= 157.5:
		return 1, 0
	case theta < 67.5:
		return 1, 1
	case theta < 112.5:
		return 0, 1
	default:
		return -1, 1
	}
}

func magAt(mag [][]float64, y, x int) float64 {
	if y < 0 || y >= len(mag) || x < 0 || x >= len(mag[0]) {
		return 0
	}
	return mag[y][x]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
