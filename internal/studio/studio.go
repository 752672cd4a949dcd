// Package studio runs one generation request end to end: prompt variants,
// image fan-out and batch registration.
package studio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"variant-studio/internal/gallery"
)

var ErrEmptyPrompt = errors.New("prompt is empty")

type Expander interface {
	Expand(ctx context.Context, prompt string, n int) []string
}

type Renderer interface {
	RenderAll(ctx context.Context, batchID string, variants []string, style, tone string, size int) []string
}

type Request struct {
	Prompt          string
	BackgroundStyle string
	Tone            string
	NumImages       int
	ImageSize       int
}

type Result struct {
	BatchID   string
	Variants  []string
	Paths     []string
	Requested int
}

// Partial reports whether some requested images are missing.
func (r Result) Partial() bool {
	return len(r.Paths) < r.Requested
}

type Options struct {
	Expander Expander
	Renderer Renderer
	Gallery  *gallery.Gallery
	Logger   *slog.Logger

	// FlatLayout writes every request into the output directory itself, so
	// later requests overwrite earlier files.
	FlatLayout bool
	// NewID overrides batch id generation.
	NewID func() string
}

type Studio struct {
	expander   Expander
	renderer   Renderer
	gallery    *gallery.Gallery
	logger     *slog.Logger
	flatLayout bool
	newID      func() string
}

func New(opts Options) *Studio {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	newID := opts.NewID
	if newID == nil {
		newID = gallery.NewID
	}

	return &Studio{
		expander:   opts.Expander,
		renderer:   opts.Renderer,
		gallery:    opts.Gallery,
		logger:     logger,
		flatLayout: opts.FlatLayout,
		newID:      newID,
	}
}

// Generate never fails because of remote faults; it returns fewer paths instead.
func (s *Studio) Generate(ctx context.Context, req Request) (Result, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return Result{}, ErrEmptyPrompt
	}

	batchID := ""
	if !s.flatLayout {
		batchID = s.newID()
	}

	start := time.Now()
	variants := s.expander.Expand(ctx, prompt, req.NumImages)
	paths := s.renderer.RenderAll(ctx, batchID, variants, req.BackgroundStyle, req.Tone, req.ImageSize)

	res := Result{
		BatchID:   batchID,
		Variants:  variants,
		Paths:     paths,
		Requested: req.NumImages,
	}

	if s.gallery != nil && batchID != "" {
		s.gallery.Put(gallery.Batch{
			ID:        batchID,
			Prompt:    prompt,
			Style:     req.BackgroundStyle,
			Tone:      req.Tone,
			Size:      req.ImageSize,
			Variants:  variants,
			Paths:     paths,
			CreatedAt: start,
		})
	}

	s.logger.Info("generation finished",
		"batch", batchID,
		"requested", req.NumImages,
		"variants", len(variants),
		"images", len(paths),
		"dur_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
