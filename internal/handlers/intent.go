package handlers

import (
	"strconv"
	"strings"

	"variant-studio/internal/catalog"
)

// parseRequest reads either the pipe form
//
//	a red fox in snow | watercolor | warm | 2 | 256
//
// or free text with key=value tokens. Empty or invalid fields keep defaults.
func parseRequest(raw string, defaults catalog.Options) catalog.Options {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "|") {
		return catalog.Normalize(catalog.ParseArgs(raw, defaults))
	}

	opts := defaults
	parts := strings.Split(raw, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	opts.Prompt = parts[0]
	if len(parts) > 1 && parts[1] != "" {
		opts.BackgroundStyle = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		opts.Tone = parts[2]
	}
	if len(parts) > 3 {
		if n, err := strconv.Atoi(parts[3]); err == nil {
			opts.NumImages = n
		}
	}
	if len(parts) > 4 {
		if px, err := strconv.Atoi(strings.TrimSuffix(parts[4], "px")); err == nil {
			opts.ImageSize = px
		}
	}

	return catalog.Normalize(opts)
}

// callbackKey encodes a catalog key for callback data, which may not hold spaces.
func callbackKey(key string) string {
	return strings.ReplaceAll(key, " ", "_")
}

func catalogKey(value string) string {
	return strings.ReplaceAll(value, "_", " ")
}
