package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Service credential and endpoint
	AnthropicAPIKey  string
	AnthropicBaseURL string
	Model            string

	// Token budgets per operation
	TranslateMaxTokens int
	AnalyzeMaxTokens   int
	VisionMaxTokens    int

	// Service call behavior
	RequestTimeout time.Duration
	RateLimitEvery time.Duration
	RateLimitBurst int
	MaxConcurrent  int64

	// Orchestration
	DebounceDelay time.Duration

	// OCR
	TesseractBinary string
	TesseractLang   string
	TessdataDir     string
	OCRMinChars     int // OCR output below this falls back to vision

	LogLevel string
}

// fileConfig is the optional YAML config file shape. Environment variables
// override anything set here.
type fileConfig struct {
	AnthropicBaseURL   string `yaml:"anthropic_base_url"`
	Model              string `yaml:"model"`
	TranslateMaxTokens int    `yaml:"translate_max_tokens"`
	AnalyzeMaxTokens   int    `yaml:"analyze_max_tokens"`
	VisionMaxTokens    int    `yaml:"vision_max_tokens"`
	RequestTimeout     string `yaml:"request_timeout"`
	RateLimitEvery     string `yaml:"rate_limit_every"`
	RateLimitBurst     int    `yaml:"rate_limit_burst"`
	MaxConcurrent      int64  `yaml:"max_concurrent"`
	DebounceDelay      string `yaml:"debounce_delay"`
	TesseractBinary    string `yaml:"tesseract_binary"`
	TesseractLang      string `yaml:"tesseract_lang"`
	TessdataDir        string `yaml:"tessdata_dir"`
	OCRMinChars        int    `yaml:"ocr_min_chars"`
	LogLevel           string `yaml:"log_level"`
}

// Load builds the configuration: defaults, then the optional YAML file at
// path (empty path skips it), then environment variables.
func Load(path string) (Config, error) {
	cfg := Config{
		AnthropicBaseURL:   "https://api.anthropic.com/v1/messages",
		Model:              "claude-3-opus-20240229",
		TranslateMaxTokens: 1024,
		AnalyzeMaxTokens:   2048,
		VisionMaxTokens:    4096,
		RequestTimeout:     60 * time.Second,
		RateLimitEvery:     600 * time.Millisecond,
		RateLimitBurst:     5,
		MaxConcurrent:      3,
		DebounceDelay:      time.Second,
		TesseractBinary:    "tesseract",
		TesseractLang:      "rus+eng",
		OCRMinChars:        50,
		LogLevel:           "info",
	}

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.AnthropicAPIKey = envStr("ANTHROPIC_API_KEY", cfg.AnthropicAPIKey)
	cfg.AnthropicBaseURL = envStr("ANTHROPIC_BASE_URL", cfg.AnthropicBaseURL)
	cfg.Model = envStr("ANTHROPIC_MODEL", cfg.Model)
	cfg.TranslateMaxTokens = envInt("TRANSLATE_MAX_TOKENS", cfg.TranslateMaxTokens)
	cfg.AnalyzeMaxTokens = envInt("ANALYZE_MAX_TOKENS", cfg.AnalyzeMaxTokens)
	cfg.VisionMaxTokens = envInt("VISION_MAX_TOKENS", cfg.VisionMaxTokens)
	cfg.RequestTimeout = envDur("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RateLimitEvery = envDur("RATE_LIMIT_EVERY", cfg.RateLimitEvery)
	cfg.RateLimitBurst = envInt("RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.MaxConcurrent = int64(envInt("MAX_CONCURRENT_CALLS", int(cfg.MaxConcurrent)))
	cfg.DebounceDelay = envDur("DEBOUNCE_DELAY", cfg.DebounceDelay)
	cfg.TesseractBinary = envStr("TESSERACT_BINARY", cfg.TesseractBinary)
	cfg.TesseractLang = envStr("TESSERACT_LANG", cfg.TesseractLang)
	cfg.TessdataDir = envStr("TESSDATA_DIR", cfg.TessdataDir)
	cfg.OCRMinChars = envInt("OCR_MIN_CHARS", cfg.OCRMinChars)
	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

// Validate fails fast on a missing credential so the absence surfaces as a
// configuration error rather than a downstream authentication failure.
func (c Config) Validate() error {
	if strings.TrimSpace(c.AnthropicAPIKey) == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	return nil
}

func applyFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fc.AnthropicBaseURL != "" {
		cfg.AnthropicBaseURL = fc.AnthropicBaseURL
	}
	if fc.Model != "" {
		cfg.Model = fc.Model
	}
	if fc.TranslateMaxTokens > 0 {
		cfg.TranslateMaxTokens = fc.TranslateMaxTokens
	}
	if fc.AnalyzeMaxTokens > 0 {
		cfg.AnalyzeMaxTokens = fc.AnalyzeMaxTokens
	}
	if fc.VisionMaxTokens > 0 {
		cfg.VisionMaxTokens = fc.VisionMaxTokens
	}
	if d, err := time.ParseDuration(fc.RequestTimeout); err == nil && d > 0 {
		cfg.RequestTimeout = d
	}
	if d, err := time.ParseDuration(fc.RateLimitEvery); err == nil && d > 0 {
		cfg.RateLimitEvery = d
	}
	if fc.RateLimitBurst > 0 {
		cfg.RateLimitBurst = fc.RateLimitBurst
	}
	if fc.MaxConcurrent > 0 {
		cfg.MaxConcurrent = fc.MaxConcurrent
	}
	if d, err := time.ParseDuration(fc.DebounceDelay); err == nil && d > 0 {
		cfg.DebounceDelay = d
	}
	if fc.TesseractBinary != "" {
		cfg.TesseractBinary = fc.TesseractBinary
	}
	if fc.TesseractLang != "" {
		cfg.TesseractLang = fc.TesseractLang
	}
	if fc.TessdataDir != "" {
		cfg.TessdataDir = fc.TessdataDir
	}
	if fc.OCRMinChars > 0 {
		cfg.OCRMinChars = fc.OCRMinChars
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}

	return nil
}

func envStr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
