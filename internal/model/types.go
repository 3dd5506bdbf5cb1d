package model

import "time"

// Metadata is the sidecar JSON exported alongside each classifier artifact.
type Metadata struct {
	InputShape  []int64 `json:"input_shape"`
	OutputShape []int64 `json:"output_shape"`
	Parameters  int64   `json:"parameters"`
	ImageSize   int     `json:"image_size"`
}

// Info is the static diagnostic record of a loaded model.
type Info struct {
	Name        string    `json:"name"`
	Filename    string    `json:"filename"`
	Path        string    `json:"path"`
	Parameters  int64     `json:"parameters"`
	InputShape  []int64   `json:"input_shape"`
	OutputShape []int64   `json:"output_shape"`
	Classes     int       `json:"classes"`
	LoadSeconds float64   `json:"load_time"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// PartScore is one entry of the part classifier's ranked output.
type PartScore struct {
	Part       string  `json:"part"`
	Confidence float64 `json:"confidence"`
}

// PartResult is the part classifier's full output: the winning organ, the raw
// distribution and the top-3 alternates for diagnostics.
type PartResult struct {
	Part       string      `json:"part"`
	Confidence float64     `json:"confidence"`
	All        []float64   `json:"all_predictions"`
	Top        []PartScore `json:"top_predictions"`
}

// LabelScore is a (label, confidence) pair.
type LabelScore struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
}

// Prediction is a disease classifier result. High-confidence results carry a
// single Disease/Confidence pair; low-confidence results switch shape and
// report the top two labels as Primary/Secondary instead.
type Prediction struct {
	Disease       string      `json:"disease,omitempty"`
	Confidence    float64     `json:"confidence,omitempty"`
	Primary       *LabelScore `json:"primary,omitempty"`
	Secondary     *LabelScore `json:"secondary,omitempty"`
	LowConfidence bool        `json:"is_low_confidence"`
	TTAUsed       bool        `json:"tta_used"`
	Augmentations int         `json:"num_augmentations"`
	Distribution  []float64   `json:"-"`
}

// NotLoadedError is returned when inference is requested for a model that
// failed to load or was never present.
type NotLoadedError struct {
	Name      string
	Available []string
}

func (e *NotLoadedError) Error() string {
	return "model \"" + e.Name + "\" not loaded"
}
