package pipeline

import (
	"time"

	"github.com/tomatoguard/diagnosis-api/internal/model"
	"github.com/tomatoguard/diagnosis-api/internal/preprocess"
	"github.com/tomatoguard/diagnosis-api/internal/recommend"
	"github.com/tomatoguard/diagnosis-api/internal/spots"
	"github.com/tomatoguard/diagnosis-api/internal/validate"
)

// DiseaseResult is the disease stage's contribution to the final result. Low
// confidence adds the runner-up label and a human-readable warning.
type DiseaseResult struct {
	Disease               string  `json:"disease"`
	Confidence            float64 `json:"confidence"`
	AlternativeDisease    string  `json:"alternative_disease,omitempty"`
	AlternativeConfidence float64 `json:"alternative_confidence,omitempty"`
	LowConfidence         bool    `json:"is_low_confidence"`
	Warning               string  `json:"warning,omitempty"`
	TTAUsed               bool    `json:"tta_used"`
}

// Severity is the ordinal infection band derived from total lesion area.
type Severity struct {
	Level       string  `json:"level"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// SpotAnalysisInfo ties a spot detection back to the diagnosis it annotated.
type SpotAnalysisInfo struct {
	DiseaseName       string    `json:"disease_name"`
	DiseaseConfidence float64   `json:"disease_confidence"`
	PlantPart         string    `json:"plant_part"`
	Timestamp         time.Time `json:"timestamp"`
}

// SpotReport wraps the detector output with pipeline-level status. Status is
// empty on a full run, "healthy" or "skipped_low_confidence" when detection
// was skipped, and "failed" when the detector itself degraded.
type SpotReport struct {
	*spots.Result
	Status       string            `json:"status,omitempty"`
	Message      string            `json:"message,omitempty"`
	Error        string            `json:"error,omitempty"`
	DiseaseName  string            `json:"disease_name,omitempty"`
	Severity     *Severity         `json:"severity,omitempty"`
	AnalysisInfo *SpotAnalysisInfo `json:"analysis_info,omitempty"`
}

// Recommendations carries either looked-up advice, the rejection guidance, or
// a fallback when the advice collaborator failed.
type Recommendations struct {
	*recommend.Advice
	Message        string   `json:"message,omitempty"`
	Suggestions    []string `json:"suggestions,omitempty"`
	Error          string   `json:"error,omitempty"`
	FallbackAdvice []string `json:"fallback_advice,omitempty"`
}

// ModelInfo is the diagnostic block attached to every result.
type ModelInfo struct {
	LoadedModels         []string  `json:"loaded_models"`
	TotalModels          int       `json:"total_models"`
	AnalysisTimestamp    time.Time `json:"analysis_timestamp"`
	PreprocessingMethod  string    `json:"preprocessing_method"`
	BoundingBoxesEnabled bool      `json:"bounding_boxes_enabled"`
	ValidationGate       string    `json:"validation_gate"`
}

// Performance holds per-stage wall-clock timings in seconds.
type Performance struct {
	Timings      map[string]float64 `json:"timings"`
	TotalSeconds float64            `json:"total_seconds"`
	Summary      string             `json:"summary"`
}

// Result is the aggregate analysis output. A validator rejection is a fully
// formed Result with IsTomato false and nil disease/spot sections, not an
// error.
type Result struct {
	IsTomato         bool              `json:"is_tomato"`
	RejectionReason  string            `json:"rejection_reason,omitempty"`
	ValidationScores validate.Scores   `json:"validation_scores"`
	PartDetection    *model.PartResult `json:"part_detection"`
	DiseaseDetection *DiseaseResult    `json:"disease_detection"`
	SpotDetection    *SpotReport       `json:"spot_detection"`
	Recommendations  Recommendations   `json:"recommendations"`
	ImageInfo        preprocess.Info   `json:"image_info"`
	ModelInfo        ModelInfo         `json:"model_info"`
	Performance      Performance       `json:"performance"`
}
