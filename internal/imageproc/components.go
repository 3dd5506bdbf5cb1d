package imageproc

import (
	"image"

	"gonum.org/v1/gonum/mat"
)

// Component is a connected region of set pixels in a binary mask.
type Component struct {
	Bounds image.Rectangle
	Area   int
}

// ConnectedComponents finds the 4-connected components of a binary mask and
// returns one entry per component with strictly more than minArea pixels.
// The result follows mask scan order; callers sort as needed.
func ConnectedComponents(mask *mat.Dense, minArea int) []Component {
	rows, cols := mask.Dims()
	seen := make([]bool, rows*cols)
	var out []Component
	queue := []image.Point{}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			idx := y*cols + x
			if seen[idx] {
				continue
			}
			seen[idx] = true
			if mask.At(y, x) <= 0 {
				continue
			}
			// Flood-fill this component, tracking its bounding box.
			x0, y0, x1, y1 := x, y, x, y
			area := 0
			queue = append(queue[:0], image.Point{x, y})
			for len(queue) > 0 {
				p := queue[0]
				queue = queue[1:]
				area++
				if p.X < x0 {
					x0 = p.X
				}
				if p.X > x1 {
					x1 = p.X
				}
				if p.Y < y0 {
					y0 = p.Y
				}
				if p.Y > y1 {
					y1 = p.Y
				}
				for _, n := range [4]image.Point{
					{p.X, p.Y - 1}, {p.X, p.Y + 1}, {p.X - 1, p.Y}, {p.X + 1, p.Y},
				} {
					if n.X < 0 || n.X >= cols || n.Y < 0 || n.Y >= rows {
						continue
					}
					nIdx := n.Y*cols + n.X
					if seen[nIdx] {
						continue
					}
					seen[nIdx] = true
					if mask.At(n.Y, n.X) > 0 {
						queue = append(queue, n)
					}
				}
			}
			if area > minArea {
				out = append(out, Component{
					Bounds: image.Rect(x0, y0, x1+1, y1+1),
					Area:   area,
				})
			}
		}
	}
	return out
}
