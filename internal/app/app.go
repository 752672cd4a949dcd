// Package app assembles the generation pipeline shared by the web server, the
// bot and the command line tool.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"variant-studio/internal/config"
	"variant-studio/internal/gallery"
	"variant-studio/internal/gemini"
	"variant-studio/internal/hfinference"
	"variant-studio/internal/httpclient"
	"variant-studio/internal/lexicon"
	"variant-studio/internal/render"
	"variant-studio/internal/studio"
	"variant-studio/internal/variation"
)

// Backend is a remote service that can both paraphrase and draw.
type Backend interface {
	variation.Paraphraser
	render.Generator
}

type BuildOptions struct {
	// HTTPClient overrides the client built from the config.
	HTTPClient *http.Client
	// OnResult is forwarded to the renderer.
	OnResult func(index int, path string, ok bool)
}

type App struct {
	Config   config.Config
	Backend  Backend
	Expander *variation.Expander
	Renderer *render.Renderer
	Gallery  *gallery.Gallery
	Studio   *studio.Studio
}

func Build(cfg config.Config, logger *slog.Logger, opts BuildOptions) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = httpclient.New(httpclient.Options{
			PreferIPv4: cfg.PreferIPv4,
			Timeout:    cfg.HTTPTimeout,
		})
	}

	backend, err := NewBackend(cfg, httpClient, logger)
	if err != nil {
		return nil, err
	}

	dict := lexicon.Dictionary(lexicon.DefaultThesaurus())
	if cfg.ThesaurusPath != "" {
		th, err := lexicon.LoadThesaurus(cfg.ThesaurusPath)
		if err != nil {
			return nil, fmt.Errorf("load thesaurus: %w", err)
		}
		dict = th
	}

	expander := variation.New(variation.Options{
		Paraphraser: backend,
		Lexicon:     lexicon.New(lexicon.Options{Dictionary: dict}),
		Logger:      logger,
		SlotOrder:   cfg.VariationSlotOrder,
	})

	var limiter *rate.Limiter
	if cfg.ImageRatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.ImageRatePerMinute)), 1)
	}

	renderer := render.New(render.Options{
		Generator:     backend,
		OutputDir:     cfg.OutputDir,
		JPEGQuality:   cfg.JPEGQuality,
		MaxConcurrent: cfg.ImageConcurrency,
		Limiter:       limiter,
		Logger:        logger,
		OnResult:      opts.OnResult,
	})

	g := gallery.New(gallery.Options{
		OutputDir:    cfg.OutputDir,
		TTL:          cfg.BatchTTL,
		PurgeExpired: cfg.PurgeExpiredBatches,
		Logger:       logger,
	})

	st := studio.New(studio.Options{
		Expander:   expander,
		Renderer:   renderer,
		Gallery:    g,
		Logger:     logger,
		FlatLayout: cfg.FlatLayout,
	})

	return &App{
		Config:   cfg,
		Backend:  backend,
		Expander: expander,
		Renderer: renderer,
		Gallery:  g,
		Studio:   st,
	}, nil
}

// NewBackend returns the client selected by cfg.ImageBackend.
func NewBackend(cfg config.Config, httpClient *http.Client, logger *slog.Logger) (Backend, error) {
	switch cfg.ImageBackend {
	case config.BackendHuggingFace, "":
		return hfinference.New(hfinference.Options{
			APIKey:             cfg.HFAPIKey,
			ImageModelURL:      cfg.HFImageModelURL,
			ParaphraseModelURL: cfg.HFParaphraseModelURL,
			HTTPClient:         httpClient,
			Logger:             logger,
		}), nil
	case config.BackendGemini:
		return gemini.New(gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			HTTPClient: httpClient,
			Logger:     logger,
		}), nil
	}
	return nil, fmt.Errorf("unknown image backend %q", cfg.ImageBackend)
}

// NewLogger returns a JSON logger on w at cfg.LogLevel.
func NewLogger(cfg config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
