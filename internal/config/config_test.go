package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearServiceEnv keeps ambient environment from leaking into assertions.
func clearServiceEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL", "ANTHROPIC_MODEL",
		"TRANSLATE_MAX_TOKENS", "ANALYZE_MAX_TOKENS", "VISION_MAX_TOKENS",
		"REQUEST_TIMEOUT", "RATE_LIMIT_EVERY", "RATE_LIMIT_BURST",
		"MAX_CONCURRENT_CALLS", "DEBOUNCE_DELAY",
		"TESSERACT_BINARY", "TESSERACT_LANG", "TESSDATA_DIR",
		"OCR_MIN_CHARS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearServiceEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Model != "claude-3-opus-20240229" {
		t.Errorf("model default: %q", cfg.Model)
	}
	if cfg.TranslateMaxTokens != 1024 || cfg.VisionMaxTokens != 4096 {
		t.Errorf("token defaults: %d / %d", cfg.TranslateMaxTokens, cfg.VisionMaxTokens)
	}
	if cfg.DebounceDelay != time.Second {
		t.Errorf("debounce default: %v", cfg.DebounceDelay)
	}
	if cfg.TesseractLang != "rus+eng" {
		t.Errorf("ocr language default: %q", cfg.TesseractLang)
	}
	if cfg.OCRMinChars != 50 {
		t.Errorf("ocr threshold default: %d", cfg.OCRMinChars)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("timeout default: %v", cfg.RequestTimeout)
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	clearServiceEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_MODEL", "claude-3-haiku-20240307")
	t.Setenv("DEBOUNCE_DELAY", "250ms")
	t.Setenv("OCR_MIN_CHARS", "80")
	t.Setenv("TESSERACT_LANG", "rus")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.AnthropicAPIKey != "sk-test" {
		t.Errorf("api key: %q", cfg.AnthropicAPIKey)
	}
	if cfg.Model != "claude-3-haiku-20240307" {
		t.Errorf("model: %q", cfg.Model)
	}
	if cfg.DebounceDelay != 250*time.Millisecond {
		t.Errorf("debounce: %v", cfg.DebounceDelay)
	}
	if cfg.OCRMinChars != 80 {
		t.Errorf("ocr threshold: %d", cfg.OCRMinChars)
	}
	if cfg.TesseractLang != "rus" {
		t.Errorf("ocr language: %q", cfg.TesseractLang)
	}
}

func TestInvalidEnvValuesKeepDefaults(t *testing.T) {
	clearServiceEnv(t)
	t.Setenv("TRANSLATE_MAX_TOKENS", "not-a-number")
	t.Setenv("DEBOUNCE_DELAY", "-5s")
	t.Setenv("OCR_MIN_CHARS", "0")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.TranslateMaxTokens != 1024 {
		t.Errorf("bad int should keep default: %d", cfg.TranslateMaxTokens)
	}
	if cfg.DebounceDelay != time.Second {
		t.Errorf("negative duration should keep default: %v", cfg.DebounceDelay)
	}
	if cfg.OCRMinChars != 50 {
		t.Errorf("zero threshold should keep default: %d", cfg.OCRMinChars)
	}
}

func TestFileValuesApplyAndEnvWins(t *testing.T) {
	clearServiceEnv(t)

	path := filepath.Join(t.TempDir(), "troyanskii.yaml")
	body := `
model: claude-3-sonnet-20240229
debounce_delay: 2s
tesseract_lang: rus
ocr_min_chars: 120
log_level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("TESSERACT_LANG", "rus+deu")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Model != "claude-3-sonnet-20240229" {
		t.Errorf("file model not applied: %q", cfg.Model)
	}
	if cfg.DebounceDelay != 2*time.Second {
		t.Errorf("file debounce not applied: %v", cfg.DebounceDelay)
	}
	if cfg.OCRMinChars != 120 {
		t.Errorf("file threshold not applied: %d", cfg.OCRMinChars)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("file log level not applied: %q", cfg.LogLevel)
	}
	if cfg.TesseractLang != "rus+deu" {
		t.Errorf("environment must win over file: %q", cfg.TesseractLang)
	}
}

func TestLoadRejectsUnreadableFile(t *testing.T) {
	clearServiceEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("model: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := Config{AnthropicAPIKey: "   "}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for blank key")
	}

	cfg.AnthropicAPIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
