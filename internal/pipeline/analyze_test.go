package pipeline

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"go.uber.org/zap"
	"go.viam.com/test"

	"github.com/tomatoguard/diagnosis-api/internal/config"
	"github.com/tomatoguard/diagnosis-api/internal/imageproc"
	"github.com/tomatoguard/diagnosis-api/internal/model"
	"github.com/tomatoguard/diagnosis-api/internal/recommend"
)

// stubClassifier returns a fixed distribution and counts invocations.
type stubClassifier struct {
	dist  []float64
	calls int
}

func (s *stubClassifier) Predict(*imageproc.Tensor) ([]float64, error) {
	s.calls++
	return append([]float64(nil), s.dist...), nil
}

func (s *stubClassifier) Close() error { return nil }

func newTestAnalyzer(t *testing.T, stubs map[string]*stubClassifier) *Analyzer {
	t.Helper()
	cfg := config.Default()
	logger := zap.NewNop().Sugar()
	registry := model.NewRegistry(cfg.Classes, logger)
	for name, stub := range stubs {
		registry.Register(name, stub, model.Info{Name: name})
	}
	return New(registry, cfg, rand.New(rand.NewSource(1)), recommend.Get, logger)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	test.That(t, png.Encode(&buf, img), test.ShouldBeNil)
	return buf.Bytes()
}

// leafPhoto is a checkerboard of two in-band greens, large enough to survive
// the center crop: it passes both the color and texture checks.
func leafPhoto(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			c := color.NRGBA{R: 100, G: 255, B: 120, A: 255}
			if (x/8+y/8)%2 == 0 {
				c = color.NRGBA{R: 10, G: 40, B: 15, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return encodePNG(t, img)
}

func grayPhoto(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	return encodePNG(t, img)
}

func TestAnalyzeRejectsNonPlantImage(t *testing.T) {
	a := newTestAnalyzer(t, map[string]*stubClassifier{
		"part": {dist: []float64{0.2, 0.5, 0.3}},
	})

	result, err := a.Analyze(grayPhoto(t), DefaultOptions())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.IsTomato, test.ShouldBeFalse)
	test.That(t, result.RejectionReason, test.ShouldNotBeEmpty)
	test.That(t, result.DiseaseDetection, test.ShouldBeNil)
	test.That(t, result.SpotDetection, test.ShouldBeNil)
	test.That(t, result.PartDetection.Part, test.ShouldEqual, "leaf")
	test.That(t, result.ModelInfo.ValidationGate, test.ShouldEqual, "rejected")
	test.That(t, result.Recommendations.Message, test.ShouldContainSubstring, "does not appear to be a tomato")
	test.That(t, len(result.Recommendations.Suggestions), test.ShouldEqual, 4)
	test.That(t, result.Performance.Timings["total"], test.ShouldBeGreaterThanOrEqualTo, 0.0)
}

func TestAnalyzeHealthyLeaf(t *testing.T) {
	a := newTestAnalyzer(t, map[string]*stubClassifier{
		"part": {dist: []float64{0.05, 0.9, 0.05}},
		"leaf": {dist: []float64{0.01, 0.01, 0.95, 0.01, 0.01, 0.01}},
	})

	result, err := a.Analyze(leafPhoto(t), DefaultOptions())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.IsTomato, test.ShouldBeTrue)
	test.That(t, result.PartDetection.Part, test.ShouldEqual, "leaf")
	test.That(t, result.DiseaseDetection.Disease, test.ShouldEqual, "Healthy")
	test.That(t, result.DiseaseDetection.LowConfidence, test.ShouldBeFalse)
	test.That(t, result.DiseaseDetection.TTAUsed, test.ShouldBeFalse)

	spot := result.SpotDetection
	test.That(t, spot.Status, test.ShouldEqual, "healthy")
	test.That(t, spot.TotalSpots, test.ShouldEqual, 0)
	test.That(t, spot.OriginalImage, test.ShouldNotBeEmpty)
	test.That(t, spot.Severity, test.ShouldBeNil)

	test.That(t, result.Recommendations.Advice, test.ShouldNotBeNil)
	test.That(t, result.Recommendations.Advice.Disease, test.ShouldEqual, "Healthy")
	test.That(t, result.ModelInfo.ValidationGate, test.ShouldEqual, "passed")
}

func TestAnalyzeLowConfidenceEscalatesToTTA(t *testing.T) {
	leafStub := &stubClassifier{dist: []float64{0.05, 0.55, 0.02, 0.3, 0.05, 0.03}}
	a := newTestAnalyzer(t, map[string]*stubClassifier{
		"part": {dist: []float64{0.05, 0.9, 0.05}},
		"leaf": leafStub,
	})

	opts := DefaultOptions()
	opts.UseTTA = true
	result, err := a.Analyze(leafPhoto(t), opts)
	test.That(t, err, test.ShouldBeNil)

	// One fast pass plus the three-view escalation.
	test.That(t, leafStub.calls, test.ShouldEqual, 4)

	disease := result.DiseaseDetection
	test.That(t, disease.LowConfidence, test.ShouldBeTrue)
	test.That(t, disease.TTAUsed, test.ShouldBeTrue)
	test.That(t, disease.Disease, test.ShouldEqual, "Early Blight")
	test.That(t, disease.Confidence, test.ShouldAlmostEqual, 0.55, 1e-9)
	test.That(t, disease.AlternativeDisease, test.ShouldEqual, "Late Blight")
	test.That(t, disease.Warning, test.ShouldContainSubstring, "Could also be: Late Blight")

	// Confident enough for spot detection; no tan lesions on a green leaf.
	spot := result.SpotDetection
	test.That(t, spot.Status, test.ShouldEqual, "")
	test.That(t, spot.TotalSpots, test.ShouldEqual, 0)
	test.That(t, spot.Severity.Level, test.ShouldEqual, "Low")
	test.That(t, spot.Severity.Score, test.ShouldEqual, 0.0)
	test.That(t, spot.AnalysisInfo.PlantPart, test.ShouldEqual, "leaf")
}

func TestSpotReportJSONKeepsDiseaseName(t *testing.T) {
	// The wrapper's disease_name field shadows the embedded detector field in
	// JSON; a full detection run must still carry the name at the top level.
	a := newTestAnalyzer(t, map[string]*stubClassifier{
		"part": {dist: []float64{0.05, 0.9, 0.05}},
		"leaf": {dist: []float64{0.05, 0.8, 0.02, 0.08, 0.03, 0.02}},
	})

	result, err := a.Analyze(leafPhoto(t), DefaultOptions())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.SpotDetection.DiseaseName, test.ShouldEqual, "Early Blight")

	raw, err := json.Marshal(result.SpotDetection)
	test.That(t, err, test.ShouldBeNil)
	var keys map[string]any
	test.That(t, json.Unmarshal(raw, &keys), test.ShouldBeNil)
	test.That(t, keys["disease_name"], test.ShouldEqual, "Early Blight")
	test.That(t, keys["total_spots"], test.ShouldNotBeNil)
	test.That(t, keys["severity"], test.ShouldNotBeNil)
}

func TestAnalyzeSkipsSpotsBelowCutoff(t *testing.T) {
	leafStub := &stubClassifier{dist: []float64{0.1, 0.45, 0.05, 0.25, 0.1, 0.05}}
	a := newTestAnalyzer(t, map[string]*stubClassifier{
		"part": {dist: []float64{0.05, 0.9, 0.05}},
		"leaf": leafStub,
	})

	result, err := a.Analyze(leafPhoto(t), DefaultOptions())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.DiseaseDetection.Disease, test.ShouldEqual, "Early Blight")
	test.That(t, result.DiseaseDetection.TTAUsed, test.ShouldBeFalse)

	spot := result.SpotDetection
	test.That(t, spot.Status, test.ShouldEqual, "skipped_low_confidence")
	test.That(t, spot.Message, test.ShouldContainSubstring, "low confidence")
	test.That(t, spot.Severity, test.ShouldBeNil)
}

func TestAnalyzeMissingDiseaseModel(t *testing.T) {
	a := newTestAnalyzer(t, map[string]*stubClassifier{
		"part": {dist: []float64{0.05, 0.9, 0.05}},
	})

	_, err := a.Analyze(leafPhoto(t), DefaultOptions())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "leaf")
}

func TestSeverityBands(t *testing.T) {
	a := newTestAnalyzer(t, nil)

	low := a.severity(0)
	test.That(t, low.Level, test.ShouldEqual, "Low")
	test.That(t, low.Score, test.ShouldEqual, 0.0)

	moderate := a.severity(7500)
	test.That(t, moderate.Level, test.ShouldEqual, "Moderate")
	test.That(t, moderate.Score, test.ShouldEqual, 0.15)

	high := a.severity(25000)
	test.That(t, high.Level, test.ShouldEqual, "High")
	test.That(t, high.Score, test.ShouldEqual, 0.5)

	critical := a.severity(50000)
	test.That(t, critical.Level, test.ShouldEqual, "Critical")
	test.That(t, critical.Score, test.ShouldEqual, 1.0)

	capped := a.severity(120000)
	test.That(t, capped.Score, test.ShouldEqual, 1.0)
}
