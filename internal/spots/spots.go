// Package spots localizes likely lesion regions with classical color-based
// segmentation and renders an annotated copy of the image.
package spots

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sort"

	"github.com/pkg/errors"

	"github.com/tomatoguard/diagnosis-api/internal/config"
	"github.com/tomatoguard/diagnosis-api/internal/imageproc"
)

// Box is an axis-aligned bounding box around a suspected lesion. Confidence
// is a simple size proxy: min(1, area/1000).
type Box struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Area       float64 `json:"area"`
	Confidence float64 `json:"confidence"`
}

// Result holds the detected boxes plus annotated and original renderings as
// inline JPEG data URIs.
type Result struct {
	Boxes          []Box   `json:"bounding_boxes"`
	AnnotatedImage string  `json:"annotated_image"`
	OriginalImage  string  `json:"original_image"`
	TotalSpots     int     `json:"total_spots"`
	TotalArea      float64 `json:"total_area"`
	DiseaseName    string  `json:"disease_name"`
}

// Detector thresholds the image in HSV with a per-disease window, cleans the
// mask with a morphological close then open, and turns the surviving
// components into bounding boxes.
type Detector struct {
	cfg config.SpotConfig
}

// New returns a Detector with the given threshold table.
func New(cfg config.SpotConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Detect finds lesion regions for the given disease label. Unknown labels
// fall back to the generic window.
func (d *Detector) Detect(raw []byte, disease string) (*Result, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}

	mask := imageproc.InRangeMask(img, d.cfg.Window(disease))
	mask = imageproc.CloseSquare(mask, d.cfg.MorphKernel)
	mask = imageproc.OpenSquare(mask, d.cfg.MorphKernel)

	components := imageproc.ConnectedComponents(mask, d.cfg.MinArea)
	boxes := make([]Box, 0, len(components))
	for _, c := range components {
		area := float64(c.Area)
		conf := area / d.cfg.ConfAreaScale
		if conf > 1 {
			conf = 1
		}
		boxes = append(boxes, Box{
			X:          c.Bounds.Min.X,
			Y:          c.Bounds.Min.Y,
			Width:      c.Bounds.Dx(),
			Height:     c.Bounds.Dy(),
			Area:       area,
			Confidence: conf,
		})
	}
	sort.SliceStable(boxes, func(a, b int) bool { return boxes[a].Area > boxes[b].Area })
	if len(boxes) > d.cfg.MaxBoxes {
		boxes = boxes[:d.cfg.MaxBoxes]
	}

	annotated, err := drawBoxes(img, boxes, disease)
	if err != nil {
		return nil, err
	}
	annotatedURI, err := imageproc.ToDataURI(annotated)
	if err != nil {
		return nil, err
	}
	originalURI, err := imageproc.ToDataURI(img)
	if err != nil {
		return nil, err
	}

	var totalArea float64
	for _, b := range boxes {
		totalArea += b.Area
	}
	return &Result{
		Boxes:          boxes,
		AnnotatedImage: annotatedURI,
		OriginalImage:  originalURI,
		TotalSpots:     len(boxes),
		TotalArea:      totalArea,
		DiseaseName:    disease,
	}, nil
}

// EncodeOriginal renders just the original image as a data URI, used when
// spot detection is skipped but the response still echoes the image.
func EncodeOriginal(raw []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", errors.Wrap(err, "decode image")
	}
	return imageproc.ToDataURI(img)
}

var diseaseColors = map[string]color.RGBA{
	"Early Blight":       {G: 255, A: 255},
	"Late Blight":        {R: 255, A: 255},
	"Bacterial Spot":     {B: 255, A: 255},
	"Septoria Leaf Spot": {G: 255, B: 255, A: 255},
}

var defaultColor = color.RGBA{R: 255, G: 165, A: 255} // orange

func annotationColor(disease string) color.RGBA {
	if c, ok := diseaseColors[disease]; ok {
		return c
	}
	return defaultColor
}

func formatPercent(conf float64) string {
	return fmt.Sprintf("%.1f%%", conf*100)
}
