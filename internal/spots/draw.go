package spots

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
)

// drawBoxes renders the boxes, per-spot labels and a disease banner onto a
// copy of the image.
func drawBoxes(img image.Image, boxes []Box, disease string) (image.Image, error) {
	b := img.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)

	c := annotationColor(disease)
	dc.SetRGB255(int(c.R), int(c.G), int(c.B))
	dc.SetLineWidth(2)

	for i, box := range boxes {
		dc.DrawRectangle(float64(box.X), float64(box.Y), float64(box.Width), float64(box.Height))
		dc.Stroke()
		dc.DrawString(fmt.Sprintf("Spot %d", i+1), float64(box.X), float64(box.Y)-4)
		dc.DrawString(formatPercent(box.Confidence), float64(box.X), float64(box.Y+box.Height)+14)
	}

	dc.DrawString("Disease: "+disease, 10, 30)

	out := dc.Image()
	if out == nil {
		return nil, errors.New("annotation rendering produced no image")
	}
	return out, nil
}
