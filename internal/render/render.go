// Package render fans prompt variants out to an image model and stores the
// results as square JPEG files.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"variant-studio/internal/catalog"
	"variant-studio/internal/imgutil"
)

// MaxSeed is the largest seed sent to the image model.
const MaxSeed = 99999

type Generator interface {
	GenerateImage(ctx context.Context, prompt string, seed int64) ([]byte, error)
}

type GenerationRequest struct {
	Variant string
	Style   string
	Tone    string
	Prompt  string
	Size    int
	Seed    int64
}

type Options struct {
	Generator   Generator
	OutputDir   string
	JPEGQuality int

	// MaxConcurrent bounds in-flight fetches; 0 means no bound.
	MaxConcurrent int
	// Limiter, when set, is waited on before every remote call.
	Limiter *rate.Limiter

	Rand   *rand.Rand
	Logger *slog.Logger

	// OnResult is called once per fetch as it finishes, from the fetching
	// goroutine. It must be safe for concurrent use.
	OnResult func(index int, path string, ok bool)
}

type Renderer struct {
	gen           Generator
	outputDir     string
	quality       int
	maxConcurrent int
	limiter       *rate.Limiter
	logger        *slog.Logger
	onResult      func(int, string, bool)

	mu  sync.Mutex
	rng *rand.Rand
}

func New(opts Options) *Renderer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "static/images"
	}

	quality := opts.JPEGQuality
	if quality < 1 || quality > 100 {
		quality = imgutil.DefaultQuality
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Renderer{
		gen:           opts.Generator,
		outputDir:     outputDir,
		quality:       quality,
		maxConcurrent: opts.MaxConcurrent,
		limiter:       opts.Limiter,
		logger:        logger,
		onResult:      opts.OnResult,
		rng:           rng,
	}
}

func (r *Renderer) OutputDir() string {
	return r.outputDir
}

// NewRequest builds a request for one variant with a fresh seed in [0, MaxSeed].
func (r *Renderer) NewRequest(variant, style, tone string, size int) GenerationRequest {
	r.mu.Lock()
	seed := r.rng.Int63n(MaxSeed + 1)
	r.mu.Unlock()

	return GenerationRequest{
		Variant: variant,
		Style:   style,
		Tone:    tone,
		Prompt:  catalog.ComposePrompt(variant, style, tone),
		Size:    size,
		Seed:    seed,
	}
}

// RenderAll fetches one image per variant concurrently and returns the saved
// paths in variant order. Failed fetches are left out, so the result may be
// shorter than variants.
func (r *Renderer) RenderAll(ctx context.Context, batchID string, variants []string, style, tone string, size int) []string {
	reqs := make([]GenerationRequest, len(variants))
	for i, v := range variants {
		reqs[i] = r.NewRequest(v, style, tone, size)
	}

	paths := make([]string, len(reqs))
	var eg errgroup.Group
	if r.maxConcurrent > 0 {
		eg.SetLimit(r.maxConcurrent)
	}
	for i, req := range reqs {
		i, req := i, req
		eg.Go(func() error {
			path, ok := r.FetchOne(ctx, batchID, req, i)
			if ok {
				paths[i] = path
			}
			if r.onResult != nil {
				r.onResult(i, path, ok)
			}
			return nil
		})
	}
	_ = eg.Wait()

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}

	r.logger.Info("images rendered", "batch", batchID, "requested", len(variants), "saved", len(out))
	return out
}

// FetchOne requests one image, resizes it to req.Size x req.Size and writes it
// as generated_image_<index+1>.jpg. Faults are logged and reported as !ok.
func (r *Renderer) FetchOne(ctx context.Context, batchID string, req GenerationRequest, index int) (string, bool) {
	path, err := r.fetchOne(ctx, batchID, req, index)
	if err != nil {
		r.logger.Error("image fetch failed", "batch", batchID, "index", index, "seed", req.Seed, "err", err)
		return "", false
	}
	return path, true
}

func (r *Renderer) fetchOne(ctx context.Context, batchID string, req GenerationRequest, index int) (string, error) {
	if r.gen == nil {
		return "", errors.New("no image generator configured")
	}
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	data, err := r.gen.GenerateImage(ctx, req.Prompt, req.Seed)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	encoded, err := imgutil.SquareJPEG(data, req.Size, r.quality)
	if err != nil {
		return "", fmt.Errorf("process image: %w", err)
	}

	return r.save(batchID, index, encoded)
}
