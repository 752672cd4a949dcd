package catalog

import "strings"

type NamedOption struct {
	Key  string
	Name string
}

const (
	DefaultNumImages = 4
	DefaultImageSize = 512

	MinNumImages = 1
	MaxNumImages = 8
	MinImageSize = 64
	MaxImageSize = 1024
)

var backgroundStyles = map[string]string{
	"realistic":    "Realistic",
	"watercolor":   "Watercolor",
	"oil painting": "Oil painting",
	"anime":        "Anime",
	"pixel art":    "Pixel art",
	"cyberpunk":    "Cyberpunk",
	"minimalist":   "Minimalist",
	"fantasy":      "Fantasy",
	"sketch":       "Pencil sketch",
	"studio":       "Studio backdrop",
}

var tones = map[string]string{
	"warm":       "Warm",
	"cool":       "Cool",
	"vibrant":    "Vibrant",
	"muted":      "Muted",
	"dark":       "Dark",
	"pastel":     "Pastel",
	"monochrome": "Monochrome",
	"cinematic":  "Cinematic",
}

func BackgroundStyles() []NamedOption {
	order := []string{
		"realistic",
		"watercolor",
		"oil painting",
		"anime",
		"pixel art",
		"cyberpunk",
		"minimalist",
		"fantasy",
		"sketch",
		"studio",
	}

	out := make([]NamedOption, 0, len(order))
	for _, key := range order {
		if name, ok := backgroundStyles[key]; ok {
			out = append(out, NamedOption{Key: key, Name: name})
		}
	}
	return out
}

func Tones() []NamedOption {
	order := []string{
		"warm",
		"cool",
		"vibrant",
		"muted",
		"dark",
		"pastel",
		"monochrome",
		"cinematic",
	}

	out := make([]NamedOption, 0, len(order))
	for _, key := range order {
		if name, ok := tones[key]; ok {
			out = append(out, NamedOption{Key: key, Name: name})
		}
	}
	return out
}

// IsKnownStyle reports whether style is one of the predefined background styles.
// Free-form styles are still accepted everywhere.
func IsKnownStyle(style string) bool {
	_, ok := backgroundStyles[strings.ToLower(strings.TrimSpace(style))]
	return ok
}

func IsKnownTone(tone string) bool {
	_, ok := tones[strings.ToLower(strings.TrimSpace(tone))]
	return ok
}

// ClampCount bounds a user supplied image count. Anything below the minimum means default.
func ClampCount(n int) int {
	switch {
	case n < MinNumImages:
		return DefaultNumImages
	case n > MaxNumImages:
		return MaxNumImages
	}
	return n
}

// ClampSize bounds a user supplied edge length. Zero or negative means default.
func ClampSize(px int) int {
	switch {
	case px <= 0:
		return DefaultImageSize
	case px < MinImageSize:
		return MinImageSize
	case px > MaxImageSize:
		return MaxImageSize
	}
	return px
}
