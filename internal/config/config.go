package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendHuggingFace = "huggingface"
	BackendGemini      = "gemini"
)

type Config struct {
	TelegramToken string
	HFAPIKey      string
	GeminiAPIKey  string

	ImageBackend         string
	HFImageModelURL      string
	HFParaphraseModelURL string
	GeminiBaseURL        string
	GeminiAPIVersion     string

	OutputDir     string
	ThesaurusPath string
	WebAddr       string

	LogLevel string
	Debug    bool

	PreferIPv4 bool

	MaxConcurrent      int
	ImageConcurrency   int
	ImageRatePerMinute int
	JPEGQuality        int
	RequestTimeout     time.Duration
	HTTPTimeout        time.Duration

	BatchTTL            time.Duration
	PurgeExpiredBatches bool
	VariationSlotOrder  bool
	FlatLayout          bool
}

type LoadOptions struct {
	// RequireTelegram makes TELEGRAM_BOT_TOKEN mandatory.
	RequireTelegram bool
	// Backend overrides IMAGE_BACKEND when set.
	Backend string
}

func Load(opts LoadOptions) (Config, error) {
	cfg := Config{
		ImageBackend:         strings.ToLower(strings.TrimSpace(getEnv("IMAGE_BACKEND", BackendHuggingFace))),
		HFImageModelURL:      strings.TrimSpace(getEnv("HF_IMAGE_MODEL_URL", "https://api-inference.huggingface.co/models/black-forest-labs/FLUX.1-dev")),
		HFParaphraseModelURL: strings.TrimSpace(getEnv("HF_PARAPHRASE_MODEL_URL", "https://api-inference.huggingface.co/models/prithivida/parrot_paraphraser_on_T5")),
		GeminiBaseURL:        strings.TrimSpace(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")),
		GeminiAPIVersion:     strings.TrimSpace(getEnv("GEMINI_API_VERSION", "v1beta")),
		OutputDir:            strings.TrimSpace(getEnv("OUTPUT_DIR", "static/images")),
		ThesaurusPath:        strings.TrimSpace(getEnv("THESAURUS_PATH", "")),
		WebAddr:              strings.TrimSpace(getEnv("WEB_ADDR", ":8080")),
		LogLevel:             strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		Debug:                getEnvBool("DEBUG", false),
		PreferIPv4:           getEnvBool("PREFER_IPV4", true),
		MaxConcurrent:        getEnvInt("MAX_CONCURRENT", 4),
		ImageConcurrency:     getEnvInt("IMAGE_CONCURRENCY", 0),
		ImageRatePerMinute:   getEnvInt("IMAGE_RATE_PER_MINUTE", 0),
		JPEGQuality:          getEnvInt("JPEG_QUALITY", 90),
		RequestTimeout:       time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 240)) * time.Second,
		HTTPTimeout:          time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		BatchTTL:             time.Duration(getEnvInt("BATCH_TTL_MINUTES", 60)) * time.Minute,
		PurgeExpiredBatches:  getEnvBool("PURGE_EXPIRED_BATCHES", false),
		VariationSlotOrder:   getEnvBool("VARIATION_SLOT_ORDER", false),
		FlatLayout:           getEnvBool("FLAT_LAYOUT", false),
	}

	if b := strings.ToLower(strings.TrimSpace(opts.Backend)); b != "" {
		cfg.ImageBackend = b
	}

	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	cfg.HFAPIKey = strings.TrimSpace(os.Getenv("HF_API_KEY"))
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))

	switch cfg.ImageBackend {
	case BackendHuggingFace:
		if cfg.HFAPIKey == "" {
			return Config{}, errors.New("HF_API_KEY is required")
		}
	case BackendGemini:
		if cfg.GeminiAPIKey == "" {
			return Config{}, errors.New("GEMINI_API_KEY is required")
		}
	default:
		return Config{}, errors.New("IMAGE_BACKEND must be huggingface or gemini")
	}

	if opts.RequireTelegram && cfg.TelegramToken == "" {
		return Config{}, errors.New("TELEGRAM_BOT_TOKEN is required")
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = "static/images"
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.ImageConcurrency < 0 {
		cfg.ImageConcurrency = 0
	}
	if cfg.ImageRatePerMinute < 0 {
		cfg.ImageRatePerMinute = 0
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 90
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 240 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}
	if cfg.BatchTTL <= 0 {
		cfg.BatchTTL = time.Hour
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
