package studio

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"variant-studio/internal/gallery"
	"variant-studio/internal/lexicon"
	"variant-studio/internal/render"
	"variant-studio/internal/variation"
)

type stubParaphraser struct{}

func (stubParaphraser) Paraphrase(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("paraphrase model unavailable")
}

type stubGenerator struct {
	mu      sync.Mutex
	prompts []string
	img     []byte
}

func (g *stubGenerator) GenerateImage(ctx context.Context, prompt string, seed int64) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.img, nil
}

func squarePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 300, 200))
	for x := 0; x < 300; x++ {
		img.Set(x, 100, color.RGBA{200, 50, 50, 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func newStudio(t *testing.T, outDir string, flat bool, gen render.Generator, g *gallery.Gallery) *Studio {
	t.Helper()
	noSynonyms, err := lexicon.ParseThesaurus(strings.NewReader(""))
	require.NoError(t, err)

	return New(Options{
		Expander: variation.New(variation.Options{
			Paraphraser: stubParaphraser{},
			Lexicon:     lexicon.New(lexicon.Options{Dictionary: noSynonyms}),
		}),
		Renderer:   render.New(render.Options{Generator: gen, OutputDir: outDir}),
		Gallery:    g,
		FlatLayout: flat,
		NewID:      func() string { return "0b6f3c1e-4f5a-4c8e-9a57-3f1d2b7c9e10" },
	})
}

func TestGenerate_FlatLayout(t *testing.T) {
	out := filepath.Join(t.TempDir(), "static", "images")
	gen := &stubGenerator{img: squarePNG(t)}
	s := newStudio(t, out, true, gen, nil)

	res, err := s.Generate(context.Background(), Request{
		Prompt:          "a red fox in snow",
		BackgroundStyle: "watercolor",
		Tone:            "warm",
		NumImages:       2,
		ImageSize:       256,
	})
	require.NoError(t, err)

	assert.Empty(t, res.BatchID)
	assert.Equal(t, []string{"a red fox in snow", "a red fox in snow"}, res.Variants)
	assert.Equal(t, []string{
		filepath.Join(out, "generated_image_1.jpg"),
		filepath.Join(out, "generated_image_2.jpg"),
	}, res.Paths)
	assert.False(t, res.Partial())

	for _, p := range res.Paths {
		f, err := os.Open(p)
		require.NoError(t, err)
		cfg, format, err := image.DecodeConfig(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 256, cfg.Width)
		assert.Equal(t, 256, cfg.Height)
	}

	assert.Equal(t, []string{
		"a red fox in snow, background style: watercolor, tone: warm",
		"a red fox in snow, background style: watercolor, tone: warm",
	}, gen.prompts)
}

func TestGenerate_BatchLayoutRegistersGallery(t *testing.T) {
	out := t.TempDir()
	g := gallery.New(gallery.Options{OutputDir: out})
	s := newStudio(t, out, false, &stubGenerator{img: squarePNG(t)}, g)

	res, err := s.Generate(context.Background(), Request{
		Prompt:          "a lighthouse",
		BackgroundStyle: "anime",
		Tone:            "cool",
		NumImages:       3,
		ImageSize:       64,
	})
	require.NoError(t, err)

	id := "0b6f3c1e-4f5a-4c8e-9a57-3f1d2b7c9e10"
	assert.Equal(t, id, res.BatchID)
	require.Len(t, res.Paths, 3)
	assert.Equal(t, filepath.Join(out, id, "generated_image_3.jpg"), res.Paths[2])

	b, ok := g.Get(id)
	require.True(t, ok)
	assert.Equal(t, "a lighthouse", b.Prompt)
	assert.Equal(t, res.Paths, b.Paths)

	path, err := g.Resolve(id, "generated_image_2.jpg")
	require.NoError(t, err)
	assert.Equal(t, res.Paths[1], path)
}

func TestGenerate_PartialAndEmpty(t *testing.T) {
	t.Run("empty prompt", func(t *testing.T) {
		s := newStudio(t, t.TempDir(), true, &stubGenerator{}, nil)
		_, err := s.Generate(context.Background(), Request{Prompt: "   ", NumImages: 2})
		assert.ErrorIs(t, err, ErrEmptyPrompt)
	})

	t.Run("undecodable images give an empty result", func(t *testing.T) {
		s := newStudio(t, t.TempDir(), true, &stubGenerator{img: []byte("nope")}, nil)
		res, err := s.Generate(context.Background(), Request{Prompt: "fox", NumImages: 2, ImageSize: 32})
		require.NoError(t, err)
		assert.Empty(t, res.Paths)
		assert.True(t, res.Partial())
	})
}
