package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createImageData encodes a w x h red rectangle.
func createImageData(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}

	buf := new(bytes.Buffer)
	var err error
	switch format {
	case "png":
		err = png.Encode(buf, img)
	case "jpeg":
		err = jpeg.Encode(buf, img, nil)
	default:
		t.Fatalf("unsupported format: %s", format)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func TestSquareJPEG(t *testing.T) {
	t.Run("non square png becomes a square jpeg", func(t *testing.T) {
		in := createImageData(t, "png", 40, 20)

		out, err := SquareJPEG(in, 16, 80)
		require.NoError(t, err)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 16, cfg.Width)
		assert.Equal(t, 16, cfg.Height)
	})

	t.Run("upscales", func(t *testing.T) {
		in := createImageData(t, "jpeg", 8, 8)

		out, err := SquareJPEG(in, 32, 80)
		require.NoError(t, err)

		cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 32, cfg.Width)
		assert.Equal(t, 32, cfg.Height)
	})

	t.Run("zero size keeps dimensions", func(t *testing.T) {
		in := createImageData(t, "png", 12, 6)

		out, err := SquareJPEG(in, 0, 80)
		require.NoError(t, err)

		cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.Width)
		assert.Equal(t, 6, cfg.Height)
	})

	t.Run("invalid data", func(t *testing.T) {
		_, err := SquareJPEG([]byte("this is not an image"), 16, 80)
		assert.Error(t, err)
	})

	t.Run("empty data", func(t *testing.T) {
		_, err := SquareJPEG(nil, 16, 80)
		assert.Error(t, err)
	})
}

func TestEncodeJPEG_QualityFallback(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	out, err := EncodeJPEG(img, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
