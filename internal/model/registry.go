package model

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tomatoguard/diagnosis-api/internal/imageproc"
)

// artifactFiles maps a model name to its artifact filename. "part" is the
// reserved name of the organ classifier; the others are keyed by organ.
var artifactFiles = map[string]string{
	"part":  "part_classifier.onnx",
	"leaf":  "leaf_model.onnx",
	"fruit": "fruit_model.onnx",
	"stem":  "stem_model.onnx",
}

// Registry is the process-wide set of loaded classifiers. It is populated
// once at startup and read-only afterwards, so concurrent reads need no
// locking.
type Registry struct {
	logger  *zap.SugaredLogger
	classes map[string][]string
	models  map[string]Classifier
	info    []Info
}

// NewRegistry returns an empty registry with the given class vocabularies.
// Tests register stub classifiers directly; production code calls LoadDir.
func NewRegistry(classes map[string][]string, logger *zap.SugaredLogger) *Registry {
	return &Registry{
		logger:  logger,
		classes: classes,
		models:  map[string]Classifier{},
	}
}

// Register adds a loaded classifier under name.
func (r *Registry) Register(name string, c Classifier, info Info) {
	r.models[name] = c
	r.info = append(r.info, info)
}

// LoadDir loads every known artifact from dir. Each load is attempted
// independently: a missing or broken artifact is logged and skipped so the
// service can run degraded with whichever models did load. The combined
// per-model errors are returned for observability, never as a fatal signal.
func (r *Registry) LoadDir(dir string) error {
	var loadErrs error
	names := make([]string, 0, len(artifactFiles))
	for name := range artifactFiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		filename := artifactFiles[name]
		modelPath := filepath.Join(dir, filename)
		if _, err := os.Stat(modelPath); err != nil {
			r.logger.Warnw("model artifact not found, skipping", "name", name, "path", modelPath)
			loadErrs = multierr.Append(loadErrs, err)
			continue
		}

		start := time.Now()
		metadataPath := strings.TrimSuffix(modelPath, ".onnx") + ".json"
		classifier, metadata, err := NewONNXClassifier(modelPath, metadataPath)
		if err != nil {
			r.logger.Errorw("failed to load model", "name", name, "error", err)
			loadErrs = multierr.Append(loadErrs, err)
			continue
		}

		info := Info{
			Name:        name,
			Filename:    filename,
			Path:        modelPath,
			Parameters:  metadata.Parameters,
			InputShape:  metadata.InputShape,
			OutputShape: metadata.OutputShape,
			Classes:     len(r.classes[name]),
			LoadSeconds: time.Since(start).Seconds(),
			LoadedAt:    time.Now(),
		}
		r.Register(name, classifier, info)
		r.logger.Infow("loaded model",
			"name", name,
			"classes", r.classes[name],
			"parameters", metadata.Parameters,
			"load_seconds", info.LoadSeconds)
	}

	r.logger.Infof("loaded %d/%d models", len(r.models), len(artifactFiles))
	return loadErrs
}

// Get returns the classifier registered under name.
func (r *Registry) Get(name string) (Classifier, error) {
	c, ok := r.models[name]
	if !ok {
		return nil, &NotLoadedError{Name: name, Available: r.Names()}
	}
	return c, nil
}

// Classes returns the class vocabulary for name.
func (r *Registry) Classes(name string) ([]string, error) {
	classes, ok := r.classes[name]
	if !ok {
		return nil, &NotLoadedError{Name: name, Available: r.Names()}
	}
	return classes, nil
}

// Names lists the loaded model names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadedModels returns the diagnostic projection of every loaded model.
func (r *Registry) LoadedModels() []Info {
	out := make([]Info, len(r.info))
	copy(out, r.info)
	return out
}

// PredictPart runs the organ classifier and returns the winner with the top-3
// ranked alternates.
func (r *Registry) PredictPart(t *imageproc.Tensor) (*PartResult, error) {
	classifier, err := r.Get("part")
	if err != nil {
		return nil, err
	}
	classes, err := r.Classes("part")
	if err != nil {
		return nil, err
	}

	dist, err := classifier.Predict(t)
	if err != nil {
		return nil, err
	}
	winner, confidence := argmax(dist)

	topN := 3
	if len(dist) < topN {
		topN = len(dist)
	}
	ranked := argsortDesc(dist)
	top := make([]PartScore, 0, topN)
	for _, idx := range ranked[:topN] {
		top = append(top, PartScore{Part: classes[idx], Confidence: dist[idx]})
	}

	return &PartResult{
		Part:       classes[winner],
		Confidence: confidence,
		All:        dist,
		Top:        top,
	}, nil
}

// VerifyResult is the health report for a single model name.
type VerifyResult struct {
	Status          string   `json:"status"`
	Message         string   `json:"message,omitempty"`
	ModelName       string   `json:"model_name,omitempty"`
	ClassNames      []string `json:"class_names,omitempty"`
	AvailableModels []string `json:"available_models,omitempty"`
}

// Verify reports whether a model is loaded and usable.
func (r *Registry) Verify(name string) VerifyResult {
	if _, ok := r.models[name]; !ok {
		return VerifyResult{
			Status:          "error",
			Message:         "model \"" + name + "\" not loaded",
			AvailableModels: r.Names(),
		}
	}
	return VerifyResult{
		Status:     "success",
		ModelName:  name,
		ClassNames: r.classes[name],
	}
}

// Close releases every loaded classifier.
func (r *Registry) Close() error {
	var errs error
	for _, c := range r.models {
		errs = multierr.Append(errs, c.Close())
	}
	return errs
}

// argsortDesc returns the indices of dist sorted by value descending.
func argsortDesc(dist []float64) []int {
	idx := make([]int, len(dist))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return dist[idx[a]] > dist[idx[b]] })
	return idx
}

// argmax returns the index and value of the largest element.
func argmax(dist []float64) (int, float64) {
	best, bestVal := 0, math.Inf(-1)
	for i, v := range dist {
		if v > bestVal {
			best, bestVal = i, v
		}
	}
	return best, bestVal
}
