// Package config holds the tunable constants of the diagnostic pipeline.
// Default() reproduces the values the classifiers were tuned against; an
// optional JSON file placed alongside the model artifacts can override them.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/tomatoguard/diagnosis-api/internal/imageproc"
)

// ColorBand is a labeled HSV window used by the plant-color check.
type ColorBand struct {
	Label  string           `json:"label"`
	Window imageproc.Window `json:"window"`
}

// ValidatorConfig drives the tomato validation gate.
type ValidatorConfig struct {
	MinPlantColorRatio float64     `json:"min_plant_color_ratio"`
	MinPartConfidence  float64     `json:"min_part_confidence"`
	MinTextureScore    float64     `json:"min_texture_score"`
	SoftPassMin        int         `json:"soft_pass_min"`
	CannyLow           float64     `json:"canny_low"`
	CannyHigh          float64     `json:"canny_high"`
	PlantColorBands    []ColorBand `json:"plant_color_bands"`
}

// SpotConfig drives disease spot detection.
type SpotConfig struct {
	Windows       map[string]imageproc.Window `json:"windows"`
	Fallback      imageproc.Window            `json:"fallback"`
	MinArea       int                         `json:"min_area"`
	MaxBoxes      int                         `json:"max_boxes"`
	MorphKernel   int                         `json:"morph_kernel"`
	ConfAreaScale float64                     `json:"conf_area_scale"`
}

// PipelineConfig drives the orchestrator's branching.
type PipelineConfig struct {
	// LowConfidenceCutoff splits single-label results from primary/secondary
	// pairs. SpotSkipCutoff gates spot detection. The two thresholds are
	// intentionally distinct.
	LowConfidenceCutoff float64 `json:"low_confidence_cutoff"`
	SpotSkipCutoff      float64 `json:"spot_skip_cutoff"`
	TTAAugmentations    int     `json:"tta_augmentations"`
	SeverityNormArea    float64 `json:"severity_norm_area"`
	MaxConcurrent       int64   `json:"max_concurrent"`
}

// Config aggregates every tunable of the pipeline.
type Config struct {
	Validator ValidatorConfig     `json:"validator"`
	Spots     SpotConfig          `json:"spots"`
	Pipeline  PipelineConfig      `json:"pipeline"`
	Classes   map[string][]string `json:"classes"`
}

// Default returns the configuration the frozen classifiers were tuned
// against. Threshold values should not be changed without re-evaluation.
func Default() Config {
	return Config{
		Validator: ValidatorConfig{
			MinPlantColorRatio: 0.15,
			MinPartConfidence:  0.55,
			MinTextureScore:    0.10,
			SoftPassMin:        2,
			CannyLow:           50,
			CannyHigh:          150,
			PlantColorBands: []ColorBand{
				{Label: "green", Window: window(25, 30, 30, 95, 255, 255)},
				{Label: "red_low", Window: window(0, 50, 50, 10, 255, 255)},
				{Label: "red_high", Window: window(170, 50, 50, 180, 255, 255)},
				{Label: "yellow_orange", Window: window(10, 50, 50, 25, 255, 255)},
				{Label: "brown", Window: window(10, 30, 20, 20, 200, 150)},
			},
		},
		Spots: SpotConfig{
			Windows: map[string]imageproc.Window{
				"Early Blight":       window(20, 40, 40, 30, 255, 255),
				"Late Blight":        window(0, 40, 40, 10, 255, 255),
				"Bacterial Spot":     window(15, 40, 40, 25, 255, 255),
				"Septoria Leaf Spot": window(25, 40, 40, 35, 255, 255),
				"Anthracnose":        window(10, 40, 40, 20, 255, 255),
				"Botrytis Gray Mold": window(0, 0, 50, 180, 50, 150),
				"Yellow Leaf Curl":   window(30, 40, 40, 90, 255, 255),
				"Buckeye Rot":        window(0, 40, 40, 15, 255, 255),
				"Sunscald":           window(0, 0, 150, 180, 50, 255),
				"Blossom End Rot":    window(0, 40, 40, 10, 255, 255),
				"Blight":             window(0, 40, 40, 20, 255, 255),
				"Wilt":               window(20, 40, 40, 40, 255, 255),
			},
			Fallback:      window(0, 40, 40, 180, 255, 255),
			MinArea:       100,
			MaxBoxes:      10,
			MorphKernel:   5,
			ConfAreaScale: 1000,
		},
		Pipeline: PipelineConfig{
			LowConfidenceCutoff: 0.6,
			SpotSkipCutoff:      0.5,
			TTAAugmentations:    3,
			SeverityNormArea:    50000,
			MaxConcurrent:       3,
		},
		Classes: map[string][]string{
			"part":  {"fruit", "leaf", "stem"},
			"fruit": {"Anthracnose", "Blossom End Rot", "Botrytis Gray Mold", "Buckeye Rot", "Healthy", "Sunscald"},
			"leaf":  {"Bacterial Spot", "Early Blight", "Healthy", "Late Blight", "Septoria Leaf Spot", "Yellow Leaf Curl"},
			"stem":  {"Blight", "Healthy", "Wilt"},
		},
	}
}

// Load returns Default() overlaid with the JSON file at path. A missing file
// is not an error; the defaults are used as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(err, "read pipeline config")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse pipeline config %s", path)
	}
	return cfg, nil
}

// Window returns the spot-detection window for a disease, falling back to the
// generic window for diseases not in the table.
func (c SpotConfig) Window(disease string) imageproc.Window {
	if w, ok := c.Windows[disease]; ok {
		return w
	}
	return c.Fallback
}

func window(lh, ls, lv, uh, us, uv float64) imageproc.Window {
	return imageproc.Window{
		Lower: imageproc.HSV{H: lh, S: ls, V: lv},
		Upper: imageproc.HSV{H: uh, S: us, V: uv},
	}
}
