package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// ComposePrompt builds the text sent to the image model for one variant.
func ComposePrompt(variant, style, tone string) string {
	return fmt.Sprintf("%s, background style: %s, tone: %s", variant, style, tone)
}

// Options are the user supplied generation parameters.
type Options struct {
	Prompt          string
	BackgroundStyle string
	Tone            string
	NumImages       int
	ImageSize       int
}

// ParseArgs reads free text with optional key=value tokens:
//
//	a red fox in snow style=watercolor tone=warm n=2 size=256
//
// A bare known style or tone word is kept in the prompt. Unknown keys are
// treated as prompt text.
func ParseArgs(raw string, defaults Options) Options {
	opts := defaults
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return opts
	}

	var prompt []string
	for _, tok := range strings.Fields(raw) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok || value == "" {
			prompt = append(prompt, tok)
			continue
		}

		switch strings.ToLower(key) {
		case "style", "bg", "background":
			opts.BackgroundStyle = strings.ReplaceAll(value, "_", " ")
		case "tone":
			opts.Tone = strings.ReplaceAll(value, "_", " ")
		case "n", "count", "images":
			if n, err := strconv.Atoi(value); err == nil {
				opts.NumImages = n
			} else {
				prompt = append(prompt, tok)
			}
		case "size", "px":
			if px, err := strconv.Atoi(value); err == nil {
				opts.ImageSize = px
			} else {
				prompt = append(prompt, tok)
			}
		default:
			prompt = append(prompt, tok)
		}
	}

	opts.Prompt = strings.TrimSpace(strings.Join(prompt, " "))
	return opts
}

// Normalize fills empty fields with defaults and clamps the numbers.
func Normalize(opts Options) Options {
	opts.Prompt = strings.TrimSpace(opts.Prompt)
	opts.BackgroundStyle = strings.TrimSpace(opts.BackgroundStyle)
	opts.Tone = strings.TrimSpace(opts.Tone)
	if opts.BackgroundStyle == "" {
		opts.BackgroundStyle = "realistic"
	}
	if opts.Tone == "" {
		opts.Tone = "warm"
	}
	opts.NumImages = ClampCount(opts.NumImages)
	opts.ImageSize = ClampSize(opts.ImageSize)
	return opts
}
