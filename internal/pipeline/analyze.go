// Package pipeline sequences the diagnostic stages: preprocess, part
// classification, the tomato validation gate, disease classification with
// TTA escalation, spot detection and result assembly.
package pipeline

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/tomatoguard/diagnosis-api/internal/config"
	"github.com/tomatoguard/diagnosis-api/internal/imageproc"
	"github.com/tomatoguard/diagnosis-api/internal/model"
	"github.com/tomatoguard/diagnosis-api/internal/preprocess"
	"github.com/tomatoguard/diagnosis-api/internal/recommend"
	"github.com/tomatoguard/diagnosis-api/internal/spots"
	"github.com/tomatoguard/diagnosis-api/internal/validate"
)

// Options tune a single analysis request.
type Options struct {
	// EnhancedPreprocessing selects the full normalization chain; the legacy
	// resize-only path is kept for parity with older clients.
	EnhancedPreprocessing bool
	// UseTTA opts into multi-view escalation when the fast pass comes back
	// low-confidence.
	UseTTA bool
}

// DefaultOptions is what the HTTP layer uses when the request does not say
// otherwise.
func DefaultOptions() Options {
	return Options{EnhancedPreprocessing: true}
}

// Analyzer runs the full pipeline. All fields are request-independent; every
// Analyze call works on request-local state only, so a single Analyzer is
// shared by concurrent requests.
type Analyzer struct {
	registry  *model.Registry
	pre       *preprocess.Preprocessor
	tta       *model.TTA
	validator *validate.Validator
	spots     *spots.Detector
	advice    recommend.Provider
	cfg       config.PipelineConfig
	logger    *zap.SugaredLogger
}

// New wires an Analyzer from its collaborators. The random source drives the
// preprocessor's rotation jitter and the TTA views; inject a seeded source
// for reproducible runs.
func New(registry *model.Registry, cfg config.Config, rnd *rand.Rand, advice recommend.Provider, logger *zap.SugaredLogger) *Analyzer {
	return &Analyzer{
		registry:  registry,
		pre:       preprocess.New(rnd),
		tta:       model.NewTTA(registry, cfg.Pipeline.LowConfidenceCutoff, rnd),
		validator: validate.New(cfg.Validator),
		spots:     spots.New(cfg.Spots),
		advice:    advice,
		cfg:       cfg.Pipeline,
		logger:    logger,
	}
}

// Analyze runs the complete pipeline on one uploaded image. Preprocessing
// and classifier failures are hard errors; validator rejection, spot
// detection failure and advice-lookup failure all degrade into the result.
func (a *Analyzer) Analyze(raw []byte, opts Options) (*Result, error) {
	timings := map[string]float64{}
	start := time.Now()

	loaded := a.registry.Names()

	// Preprocess.
	t0 := time.Now()
	tensor, imageInfo, err := a.pre.Run(raw, opts.EnhancedPreprocessing)
	timings["preprocessing"] = seconds(t0)
	if err != nil {
		return nil, err
	}

	// Part classification.
	t0 = time.Now()
	partResult, err := a.registry.PredictPart(tensor)
	timings["part_classification"] = seconds(t0)
	if err != nil {
		return nil, err
	}

	// Validation gate.
	t0 = time.Now()
	verdict := a.validator.Validate(raw, partResult.Confidence)
	timings["validation"] = seconds(t0)

	if !verdict.IsValid {
		timings["total"] = seconds(start)
		a.logger.Infow("image rejected by validation gate",
			"reason", verdict.RejectionReason, "scores", verdict.Scores)
		return &Result{
			IsTomato:         false,
			RejectionReason:  verdict.RejectionReason,
			ValidationScores: verdict.Scores,
			PartDetection:    partResult,
			Recommendations: Recommendations{
				Message: "The uploaded image does not appear to be a tomato plant part.",
				Suggestions: []string{
					"Make sure the photo clearly shows a tomato leaf, fruit, or stem",
					"Avoid photos with too much background or non-plant objects",
					"Ensure good lighting so plant colors are visible",
					"Try cropping the image to focus on the plant part",
				},
			},
			ImageInfo:   imageInfo,
			ModelInfo:   a.modelInfo(loaded, opts, false, "rejected"),
			Performance: performance(timings),
		}, nil
	}

	// Disease classification: fast pass first, full TTA only on demand.
	t0 = time.Now()
	diseaseResult, err := a.predictDisease(tensor, partResult.Part, opts.UseTTA)
	timings["disease_classification"] = seconds(t0)
	if err != nil {
		return nil, err
	}

	// Spot detection, skipped for healthy or uncertain diagnoses.
	t0 = time.Now()
	spotReport := a.detectSpots(raw, partResult.Part, diseaseResult)
	timings["spot_detection"] = seconds(t0)

	recommendations := a.lookupAdvice(partResult.Part, diseaseResult)

	timings["total"] = seconds(start)
	return &Result{
		IsTomato:         true,
		ValidationScores: verdict.Scores,
		PartDetection:    partResult,
		DiseaseDetection: diseaseResult,
		SpotDetection:    spotReport,
		Recommendations:  recommendations,
		ImageInfo:        imageInfo,
		ModelInfo:        a.modelInfo(loaded, opts, spotReport.Error == "", "passed"),
		Performance:      performance(timings),
	}, nil
}

// predictDisease runs the fast single pass, escalating to full TTA only when
// the fast pass was low-confidence and the caller opted in. This trades one
// retry on uncertain cases for a much cheaper common path.
func (a *Analyzer) predictDisease(tensor *imageproc.Tensor, part string, useTTA bool) (*DiseaseResult, error) {
	pred, err := a.tta.Predict(tensor, part, 1)
	if err != nil {
		return nil, err
	}
	if pred.LowConfidence && useTTA {
		pred, err = a.tta.Predict(tensor, part, a.cfg.TTAAugmentations)
		if err != nil {
			return nil, err
		}
	}

	if pred.Primary != nil {
		out := &DiseaseResult{
			Disease:       pred.Primary.Disease,
			Confidence:    pred.Primary.Confidence,
			LowConfidence: true,
			TTAUsed:       pred.TTAUsed,
		}
		if pred.Secondary != nil {
			out.AlternativeDisease = pred.Secondary.Disease
			out.AlternativeConfidence = pred.Secondary.Confidence
			out.Warning = fmt.Sprintf("Low confidence (%.1f%%). Could also be: %s",
				pred.Primary.Confidence*100, pred.Secondary.Disease)
		}
		return out, nil
	}
	return &DiseaseResult{
		Disease:    pred.Disease,
		Confidence: pred.Confidence,
		TTAUsed:    pred.TTAUsed,
	}, nil
}

// detectSpots runs or skips the spot detector and never fails the request:
// detector errors come back as a degraded report.
func (a *Analyzer) detectSpots(raw []byte, part string, disease *DiseaseResult) *SpotReport {
	isDiseased := disease.Disease != "" && disease.Disease != "Healthy"
	confident := disease.Confidence >= a.cfg.SpotSkipCutoff

	if isDiseased && confident {
		result, err := a.spots.Detect(raw, disease.Disease)
		if err != nil {
			a.logger.Warnw("spot detection failed", "disease", disease.Disease, "error", err)
			return &SpotReport{
				Status:      "failed",
				Error:       "disease spot detection failed: " + err.Error(),
				DiseaseName: disease.Disease,
			}
		}
		// The outer field shadows the promoted one in JSON, so it must be
		// set here for disease_name to survive marshaling.
		return &SpotReport{
			Result:      result,
			DiseaseName: disease.Disease,
			Severity:    a.severity(result.TotalArea),
			AnalysisInfo: &SpotAnalysisInfo{
				DiseaseName:       disease.Disease,
				DiseaseConfidence: disease.Confidence,
				PlantPart:         part,
				Timestamp:         time.Now(),
			},
		}
	}

	// Skipped: synthesize a zero-spot placeholder that still echoes the
	// original image.
	status, message := "healthy", "No disease spots detected - plant appears healthy"
	if isDiseased {
		status, message = "skipped_low_confidence", "Spot detection skipped due to low confidence"
	}
	original, err := spots.EncodeOriginal(raw)
	if err != nil {
		original = ""
	}
	return &SpotReport{
		Result:      &spots.Result{OriginalImage: original},
		Status:      status,
		Message:     message,
		DiseaseName: disease.Disease,
	}
}

// severity maps total lesion area to an ordinal band.
func (a *Analyzer) severity(totalArea float64) *Severity {
	score := totalArea / a.cfg.SeverityNormArea
	if score > 1 {
		score = 1
	}
	var level string
	switch {
	case score < 0.1:
		level = "Low"
	case score < 0.3:
		level = "Moderate"
	case score < 0.6:
		level = "High"
	default:
		level = "Critical"
	}
	return &Severity{
		Level:       level,
		Score:       math.Round(score*100) / 100,
		Description: fmt.Sprintf("Infection covers approximately %d%% of visible area", int(score*100)),
	}
}

// lookupAdvice consults the recommendations collaborator; its failure never
// aborts the analysis.
func (a *Analyzer) lookupAdvice(part string, disease *DiseaseResult) Recommendations {
	advice, err := a.advice(part, disease.Disease, disease.Confidence)
	if err != nil {
		a.logger.Warnw("recommendation lookup failed", "disease", disease.Disease, "error", err)
		return Recommendations{
			Error: "failed to get recommendations: " + err.Error(),
			FallbackAdvice: []string{
				"Remove infected plant parts",
				"Apply appropriate treatment",
				"Monitor plant closely",
				"Consult agricultural expert if symptoms worsen",
			},
		}
	}
	return Recommendations{Advice: &advice}
}

func (a *Analyzer) modelInfo(loaded []string, opts Options, boxesEnabled bool, gate string) ModelInfo {
	method := "original"
	if opts.EnhancedPreprocessing {
		method = "enhanced"
	}
	return ModelInfo{
		LoadedModels:         loaded,
		TotalModels:          len(loaded),
		AnalysisTimestamp:    time.Now(),
		PreprocessingMethod:  method,
		BoundingBoxesEnabled: boxesEnabled,
		ValidationGate:       gate,
	}
}

func performance(timings map[string]float64) Performance {
	return Performance{
		Timings:      timings,
		TotalSeconds: timings["total"],
		Summary: fmt.Sprintf("Total: %.3fs (validation: %.3fs, part: %.3fs, disease: %.3fs, spots: %.3fs)",
			timings["total"], timings["validation"], timings["part_classification"],
			timings["disease_classification"], timings["spot_detection"]),
	}
}

func seconds(since time.Time) float64 {
	return math.Round(time.Since(since).Seconds()*1000) / 1000
}
