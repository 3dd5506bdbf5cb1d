package imageproc

import (
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func maskFromRows(rows [][]float64) *mat.Dense {
	data := make([]float64, 0, len(rows)*len(rows[0]))
	for _, r := range rows {
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), len(rows[0]), data)
}

func countSet(m *mat.Dense) int {
	rows, cols := m.Dims()
	n := 0
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if m.At(y, x) > 0 {
				n++
			}
		}
	}
	return n
}

func TestOpenSquareRemovesSpeckle(t *testing.T) {
	// A lone pixel cannot survive a 3x3 erosion.
	mask := maskFromRows([][]float64{
		{0, 0, 0, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
	})
	opened := OpenSquare(mask, 3)
	test.That(t, countSet(opened), test.ShouldEqual, 0)
}

func TestCloseSquareFillsGap(t *testing.T) {
	// A one-pixel hole inside a filled block is closed.
	mask := maskFromRows([][]float64{
		{1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1},
		{1, 1, 0, 1, 1},
		{1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1},
	})
	closed := CloseSquare(mask, 3)
	test.That(t, closed.At(2, 2), test.ShouldEqual, 1.0)
}

func TestDilateThenErodeSolidBlock(t *testing.T) {
	mask := maskFromRows([][]float64{
		{0, 0, 0, 0, 0},
		{0, 1, 1, 1, 0},
		{0, 1, 1, 1, 0},
		{0, 1, 1, 1, 0},
		{0, 0, 0, 0, 0},
	})
	dilated := DilateSquare(mask, 3)
	test.That(t, countSet(dilated), test.ShouldEqual, 25)

	eroded := ErodeSquare(mask, 3)
	test.That(t, countSet(eroded), test.ShouldEqual, 1)
	test.That(t, eroded.At(2, 2), test.ShouldEqual, 1.0)
}
