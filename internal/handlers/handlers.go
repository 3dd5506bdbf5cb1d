// Package handlers is the thin HTTP glue around the diagnostic pipeline.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/tomatoguard/diagnosis-api/internal/model"
	"github.com/tomatoguard/diagnosis-api/internal/pipeline"
)

const maxUploadBytes = 10 << 20

// Handler serves the analysis endpoints. The semaphore caps concurrent
// pipeline runs to bound CPU and memory contention from the loaded models;
// requests beyond the cap wait rather than being rejected.
type Handler struct {
	analyzer *pipeline.Analyzer
	registry *model.Registry
	sem      *semaphore.Weighted
	logger   *zap.SugaredLogger
}

// NewHandler wires the endpoints. maxConcurrent bounds in-flight analyses.
func NewHandler(analyzer *pipeline.Analyzer, registry *model.Registry, maxConcurrent int64, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		analyzer: analyzer,
		registry: registry,
		sem:      semaphore.NewWeighted(maxConcurrent),
		logger:   logger,
	}
}

// Health reports liveness and the loaded model names.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"loaded_models": h.registry.Names(),
	})
}

// Models reports the diagnostic projection of every loaded model.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"models": h.registry.LoadedModels(),
	})
}

// Analyze runs the full pipeline on an uploaded image. The image arrives as
// multipart form field "image" or as the raw request body.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, err := h.readImage(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := pipeline.DefaultOptions()
	if r.URL.Query().Get("enhanced") == "false" {
		opts.EnhancedPreprocessing = false
	}
	if r.URL.Query().Get("tta") == "true" {
		opts.UseTTA = true
	}

	// Queue behind the concurrency cap; the request context bounds the wait.
	if err := h.sem.Acquire(r.Context(), 1); err != nil {
		http.Error(w, "Request cancelled", http.StatusServiceUnavailable)
		return
	}
	defer h.sem.Release(1)

	result, err := h.analyzer.Analyze(raw, opts)
	if err != nil {
		h.logger.Errorw("analysis failed", "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "analysis failed",
			"detail": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) readImage(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err == nil {
		file, header, err := r.FormFile("image")
		if err != nil {
			return nil, errNoImage
		}
		defer file.Close()
		h.logger.Debugw("received upload", "filename", header.Filename, "size", header.Size)
		return io.ReadAll(file)
	}
	// Not multipart; accept the raw body.
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil || len(raw) == 0 {
		return nil, errNoImage
	}
	return raw, nil
}

type handlerError string

func (e handlerError) Error() string { return string(e) }

const errNoImage = handlerError("no image provided; use multipart field \"image\" or a raw body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
