package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposePrompt(t *testing.T) {
	assert.Equal(t,
		"a red fox in snow, background style: watercolor, tone: warm",
		ComposePrompt("a red fox in snow", "watercolor", "warm"),
	)
}

func TestParseArgs(t *testing.T) {
	defaults := Options{BackgroundStyle: "realistic", Tone: "warm", NumImages: 4, ImageSize: 512}

	tests := []struct {
		name string
		raw  string
		want Options
	}{
		{
			name: "empty keeps defaults",
			raw:  "   ",
			want: defaults,
		},
		{
			name: "plain prompt",
			raw:  "a red fox in snow",
			want: Options{Prompt: "a red fox in snow", BackgroundStyle: "realistic", Tone: "warm", NumImages: 4, ImageSize: 512},
		},
		{
			name: "all keys",
			raw:  "a red fox style=oil_painting tone=cool n=2 size=256 in snow",
			want: Options{Prompt: "a red fox in snow", BackgroundStyle: "oil painting", Tone: "cool", NumImages: 2, ImageSize: 256},
		},
		{
			name: "bad numbers stay in the prompt",
			raw:  "fox n=many size=big",
			want: Options{Prompt: "fox n=many size=big", BackgroundStyle: "realistic", Tone: "warm", NumImages: 4, ImageSize: 512},
		},
		{
			name: "unknown keys and bare equals stay in the prompt",
			raw:  "e=mc2 x= fox",
			want: Options{Prompt: "e=mc2 x= fox", BackgroundStyle: "realistic", Tone: "warm", NumImages: 4, ImageSize: 512},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseArgs(tt.raw, defaults))
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize(Options{Prompt: "  fox ", NumImages: 50, ImageSize: 10})
	assert.Equal(t, Options{Prompt: "fox", BackgroundStyle: "realistic", Tone: "warm", NumImages: MaxNumImages, ImageSize: MinImageSize}, got)

	got = Normalize(Options{Prompt: "fox", BackgroundStyle: "anime", Tone: "dark", NumImages: 0, ImageSize: 4096})
	assert.Equal(t, DefaultNumImages, got.NumImages)
	assert.Equal(t, MaxImageSize, got.ImageSize)
	assert.Equal(t, "anime", got.BackgroundStyle)
}

func TestCatalogOptions(t *testing.T) {
	styles := BackgroundStyles()
	assert.Len(t, styles, 10)
	assert.Equal(t, NamedOption{Key: "realistic", Name: "Realistic"}, styles[0])

	tones := Tones()
	assert.Len(t, tones, 8)
	assert.Equal(t, "warm", tones[0].Key)

	assert.True(t, IsKnownStyle(" Watercolor "))
	assert.False(t, IsKnownStyle("baroque"))
	assert.True(t, IsKnownTone("pastel"))
	assert.False(t, IsKnownTone("loud"))
}
