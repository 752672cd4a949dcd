// Package gallery keeps recently generated batches addressable for preview
// and download.
package gallery

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"variant-studio/internal/render"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidName = errors.New("invalid name")
)

type Batch struct {
	ID        string
	Prompt    string
	Style     string
	Tone      string
	Size      int
	Variants  []string
	Paths     []string
	CreatedAt time.Time
}

// Files returns the base names of the batch's saved images.
func (b Batch) Files() []string {
	out := make([]string, len(b.Paths))
	for i, p := range b.Paths {
		out[i] = filepath.Base(p)
	}
	return out
}

type Options struct {
	OutputDir string
	TTL       time.Duration
	// PurgeExpired deletes a batch directory when its entry expires.
	PurgeExpired bool
	Logger       *slog.Logger
}

type Gallery struct {
	cache     *cache.Cache
	outputDir string
	logger    *slog.Logger
}

func New(opts Options) *Gallery {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "static/images"
	}

	g := &Gallery{
		cache:     cache.New(ttl, 2*ttl),
		outputDir: outputDir,
		logger:    logger,
	}
	if opts.PurgeExpired {
		g.cache.OnEvicted(g.purge)
	}
	return g
}

// NewID returns a fresh batch id.
func NewID() string {
	return uuid.NewString()
}

// Put registers b with the default expiration. Batches without an id are ignored.
func (g *Gallery) Put(b Batch) {
	if b.ID == "" {
		return
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	g.cache.SetDefault(b.ID, b)
}

func (g *Gallery) Get(id string) (Batch, bool) {
	v, ok := g.cache.Get(id)
	if !ok {
		return Batch{}, false
	}
	b, ok := v.(Batch)
	return b, ok
}

func (g *Gallery) Delete(id string) {
	g.cache.Delete(id)
}

// Recent lists live batches, newest first. limit <= 0 means all.
func (g *Gallery) Recent(limit int) []Batch {
	items := g.cache.Items()
	out := make([]Batch, 0, len(items))
	for _, item := range items {
		if b, ok := item.Object.(Batch); ok {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Resolve maps a batch id and image file name to a path under the output
// directory. Only uuid batch ids and generated image names are accepted; an
// empty batch id addresses the flat layout.
func (g *Gallery) Resolve(batchID, filename string) (string, error) {
	if batchID != "" {
		if _, err := uuid.Parse(batchID); err != nil {
			return "", ErrInvalidName
		}
	}
	if _, ok := render.ParseFileName(filename); !ok {
		return "", ErrInvalidName
	}

	path := filepath.Join(g.outputDir, batchID, filename)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	if info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}

func (g *Gallery) purge(id string, _ interface{}) {
	if _, err := uuid.Parse(id); err != nil {
		return
	}
	dir := filepath.Join(g.outputDir, id)
	if err := os.RemoveAll(dir); err != nil {
		g.logger.Warn("batch purge failed", "batch", id, "err", err)
		return
	}
	g.logger.Info("batch purged", "batch", id)
}
