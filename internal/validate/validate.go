// Package validate decides whether an uploaded image plausibly shows a
// tomato plant part before the expensive disease stages run.
package validate

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"github.com/tomatoguard/diagnosis-api/internal/config"
	"github.com/tomatoguard/diagnosis-api/internal/imageproc"
)

// Scores are the three independent check values, rounded to 3 decimals.
type Scores struct {
	PlantColorRatio float64 `json:"plant_color_ratio"`
	PartConfidence  float64 `json:"part_confidence"`
	TextureScore    float64 `json:"texture_score"`
	SoftPass        bool    `json:"soft_pass,omitempty"`
}

// Verdict is the gate decision. A rejection is a normal outcome, not an
// error; RejectionReason lists every failed check with its measured value.
type Verdict struct {
	IsValid         bool   `json:"is_valid"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	Scores          Scores `json:"scores"`
}

// Validator runs three cheap heuristics — plant-color ratio, part-classifier
// confidence, and edge-texture density — and accepts on a strict pass or a
// 2-of-3 majority soft pass. No single check is trusted on its own: a fully
// red ripe tomato has almost no green, and a leaf against a plain wall has
// sparse texture.
type Validator struct {
	cfg config.ValidatorConfig
}

// New returns a Validator with the given thresholds.
func New(cfg config.ValidatorConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate gates the image. partConfidence is the organ classifier's top-1
// confidence, already computed upstream. Thresholds are compared against the
// raw measurements; the reported Scores are rounded copies.
func (v *Validator) Validate(raw []byte, partConfidence float64) Verdict {
	colorRatio := v.plantColorRatio(raw)
	texture := v.textureScore(raw)

	scores := Scores{
		PlantColorRatio: round3(colorRatio),
		PartConfidence:  round3(partConfidence),
		TextureScore:    round3(texture),
	}

	var reasons []string
	if colorRatio < v.cfg.MinPlantColorRatio {
		reasons = append(reasons, fmt.Sprintf(
			"image color profile does not match tomato plant (plant colors: %.0f%%, need >=%.0f%%)",
			colorRatio*100, v.cfg.MinPlantColorRatio*100))
	}
	if partConfidence < v.cfg.MinPartConfidence {
		reasons = append(reasons, fmt.Sprintf(
			"part classifier confidence too low (%.0f%%, need >=%.0f%%)",
			partConfidence*100, v.cfg.MinPartConfidence*100))
	}
	if texture < v.cfg.MinTextureScore {
		reasons = append(reasons, fmt.Sprintf(
			"image texture does not resemble a plant surface (score: %.2f, need >=%.2f)",
			texture, v.cfg.MinTextureScore))
	}

	verdict := Verdict{IsValid: len(reasons) == 0, Scores: scores}
	if !verdict.IsValid {
		// Majority vote: accept anyway when enough checks pass on their own.
		passing := 0
		if colorRatio >= v.cfg.MinPlantColorRatio {
			passing++
		}
		if partConfidence >= v.cfg.MinPartConfidence {
			passing++
		}
		if texture >= v.cfg.MinTextureScore {
			passing++
		}
		if passing >= v.cfg.SoftPassMin {
			verdict.IsValid = true
			verdict.Scores.SoftPass = true
		} else {
			verdict.RejectionReason = strings.Join(reasons, "; ")
		}
	}
	return verdict
}

// plantColorRatio is the fraction of pixels inside any of the plant color
// bands. Undecodable images score 0.
func (v *Validator) plantColorRatio(raw []byte) float64 {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return 0
	}
	windows := make([]imageproc.Window, len(v.cfg.PlantColorBands))
	for i, band := range v.cfg.PlantColorBands {
		windows[i] = band.Window
	}
	return imageproc.MaskRatio(imageproc.UnionMask(img, windows))
}

// textureScore is the edge-pixel density. Plant surfaces are textured;
// solid walls and screens are not. Undecodable images score 0.
func (v *Validator) textureScore(raw []byte) float64 {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return 0
	}
	return imageproc.EdgeDensity(img, v.cfg.CannyLow, v.cfg.CannyHigh)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
