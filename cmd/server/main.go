package main

import (
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/tomatoguard/diagnosis-api/internal/config"
	"github.com/tomatoguard/diagnosis-api/internal/handlers"
	"github.com/tomatoguard/diagnosis-api/internal/model"
	"github.com/tomatoguard/diagnosis-api/internal/pipeline"
	"github.com/tomatoguard/diagnosis-api/internal/recommend"
)

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zl.Sync() //nolint:errcheck
	logger := zl.Sugar()

	modelDir := os.Getenv("MODEL_DIR")
	if modelDir == "" {
		modelDir = "models"
	}

	cfg, err := config.Load(filepath.Join(modelDir, "pipeline_config.json"))
	if err != nil {
		logger.Fatalw("failed to load pipeline config", "error", err)
	}

	registry := model.NewRegistry(cfg.Classes, logger)
	if err := registry.LoadDir(modelDir); err != nil {
		// Degraded mode: run with whichever models did load.
		logger.Warnw("some models failed to load", "error", err)
	}
	defer registry.Close() //nolint:errcheck

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	analyzer := pipeline.New(registry, cfg, rnd, recommend.Get, logger)
	handler := handlers.NewHandler(analyzer, registry, cfg.Pipeline.MaxConcurrent, logger)

	http.HandleFunc("/health", enableCORS(handler.Health))
	http.HandleFunc("/models", enableCORS(handler.Models))
	http.HandleFunc("/analyze", enableCORS(handler.Analyze))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Infow("server starting",
		"port", port,
		"model_dir", modelDir,
		"loaded_models", registry.Names())
	logger.Info("endpoints: GET /health, GET /models, POST /analyze")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Fatalw("server failed", "error", err)
	}
}
