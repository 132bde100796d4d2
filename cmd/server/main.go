package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/brunobiangulo/godigest"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML or JSON)")
	addr := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	// Structured JSON logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg := godigest.DefaultConfig()
	if *configPath != "" {
		loaded, err := godigest.LoadConfig(*configPath)
		if err != nil {
			slog.Error("loading config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Override from environment variables.
	if v := os.Getenv("GODIGEST_GEN_PROVIDER"); v != "" {
		cfg.Generation.Provider = v
	}
	if v := os.Getenv("GODIGEST_GEN_MODEL"); v != "" {
		cfg.Generation.Model = v
	}
	if v := os.Getenv("GODIGEST_GEN_BASE_URL"); v != "" {
		cfg.Generation.BaseURL = v
	}
	if v := os.Getenv("GODIGEST_GEN_API_KEY"); v != "" {
		cfg.Generation.APIKey = v
	}
	if v := os.Getenv("GODIGEST_VISION_PROVIDER"); v != "" {
		cfg.Vision.Provider = v
	}
	if v := os.Getenv("GODIGEST_VISION_MODEL"); v != "" {
		cfg.Vision.Model = v
	}
	if v := os.Getenv("GODIGEST_VISION_API_KEY"); v != "" {
		cfg.Vision.APIKey = v
	}
	if v := os.Getenv("GODIGEST_TRANSCRIPTION_PROVIDER"); v != "" {
		cfg.Transcription.Provider = v
	}
	if v := os.Getenv("GODIGEST_TRANSCRIPTION_MODEL"); v != "" {
		cfg.Transcription.Model = v
	}
	if v := os.Getenv("GODIGEST_TRANSCRIPTION_API_KEY"); v != "" {
		cfg.Transcription.APIKey = v
	}

	// Fallback: check well-known provider env vars for API keys.
	for _, lc := range []*godigest.LLMConfig{&cfg.Generation, &cfg.Vision, &cfg.Transcription} {
		if lc.APIKey != "" {
			continue
		}
		switch lc.Provider {
		case "openai":
			lc.APIKey = os.Getenv("OPENAI_API_KEY")
		case "groq":
			lc.APIKey = os.Getenv("GROQ_API_KEY")
		case "gemini":
			lc.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}

	apiKey := os.Getenv("GODIGEST_API_KEY")

	engine, err := godigest.New(cfg)
	if err != nil {
		slog.Error("creating engine", "error", err)
		os.Exit(1)
	}

	h := newHandler(engine)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logMiddleware)
	r.Use(authMiddleware(apiKey))

	r.Post("/summarize", h.handleSummarize)
	r.Post("/analyze", h.handleAnalyze)
	r.Get("/health", h.handleHealth)

	srv := &http.Server{
		Addr:        *addr,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// Summaries stream for the length of the pipeline, no write timeout.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
