package imageproc

import "gonum.org/v1/gonum/mat"

// Morphological operators over binary masks (0/1 valued mat.Dense), with
// square structuring elements of odd side length.

// DilateSquare sets a pixel if any pixel under the k×k element is set.
func DilateSquare(mask *mat.Dense, k int) *mat.Dense {
	return morph(mask, k, true)
}

// ErodeSquare sets a pixel only if every pixel under the k×k element is set.
func ErodeSquare(mask *mat.Dense, k int) *mat.Dense {
	return morph(mask, k, false)
}

// CloseSquare fills small gaps: dilation followed by erosion.
func CloseSquare(mask *mat.Dense, k int) *mat.Dense {
	return ErodeSquare(DilateSquare(mask, k), k)
}

// OpenSquare removes speckle noise: erosion followed by dilation.
func OpenSquare(mask *mat.Dense, k int) *mat.Dense {
	return DilateSquare(ErodeSquare(mask, k), k)
}

func morph(mask *mat.Dense, k int, dilate bool) *mat.Dense {
	rows, cols := mask.Dims()
	out := mat.NewDense(rows, cols, nil)
	r := k / 2
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			hit := !dilate
			for dy := -r; dy <= r && hit != dilate; dy++ {
				for dx := -r; dx <= r; dx++ {
					ny, nx := y+dy, x+dx
					if ny < 0 || ny >= rows || nx < 0 || nx >= cols {
						// Outside pixels count as unset.
						if !dilate {
							hit = false
							break
						}
						continue
					}
					set := mask.At(ny, nx) > 0
					if dilate && set {
						hit = true
						break
					}
					if !dilate && !set {
						hit = false
						break
					}
				}
			}
			if hit {
				out.Set(y, x, 1)
			}
		}
	}
	return out
}
