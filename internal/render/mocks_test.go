package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

type generatedCall struct {
	Prompt string
	Seed   int64
}

// fakeGenerator returns a PNG for every prompt unless the prompt contains one
// of the fail markers.
type fakeGenerator struct {
	t      *testing.T
	failOn []string
	body   []byte

	mu    sync.Mutex
	calls []generatedCall

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, prompt string, seed int64) ([]byte, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, generatedCall{Prompt: prompt, Seed: seed})
	f.mu.Unlock()

	for _, marker := range f.failOn {
		if strings.Contains(prompt, marker) {
			return nil, errors.New("remote failure")
		}
	}
	if f.body != nil {
		return f.body, nil
	}
	return pngBytes(f.t, 40, 30), nil
}

func (f *fakeGenerator) recorded() []generatedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]generatedCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 128, 255, 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Errorf("encode png: %v", err)
	}
	return buf.Bytes()
}
