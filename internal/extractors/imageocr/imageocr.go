package imageocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/troyanskii/troyanskii/internal/extract"
)

// Extractor runs the tesseract binary over an image with a Russian+English
// biased vocabulary. It is best-effort: low-confidence output is returned as
// is, not treated as an error; the pipeline decides whether to fall back.
type Extractor struct {
	binary      string
	lang        string
	tessdataDir string
	runner      Runner
	logger      *slog.Logger
}

func New(binary, lang, tessdataDir string, logger *slog.Logger) *Extractor {
	if strings.TrimSpace(binary) == "" {
		binary = "tesseract"
	}
	if strings.TrimSpace(lang) == "" {
		lang = "rus+eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{binary: binary, lang: lang, tessdataDir: tessdataDir, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner substitutes the command runner. Tests use this to stub the
// tesseract invocation.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

func (e *Extractor) Name() string { return "ocr" }

func (e *Extractor) Extract(ctx context.Context, doc extract.Document) (string, error) {
	path, cleanup, err := writeTemp(doc)
	if err != nil {
		return "", extract.NewError(e.Name(), err)
	}
	defer cleanup()

	args := []string{path, "stdout", "-l", e.lang}
	if e.tessdataDir != "" {
		args = append(args, "--tessdata-dir", e.tessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.binary, args...)
	if err != nil {
		return "", extract.NewError(e.Name(), fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512)))
	}

	return strings.TrimSpace(string(out)), nil
}

// writeTemp spills the document to disk; tesseract only reads files.
func writeTemp(doc extract.Document) (string, func(), error) {
	dir, err := os.MkdirTemp("", "troyanskii-ocr-*")
	if err != nil {
		return "", nil, fmt.Errorf("temp dir: %w", err)
	}

	name := filepath.Base(doc.FileName)
	if name == "" || name == "." {
		name = "input.png"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, doc.Data, 0o600); err != nil {
		os.RemoveAll(dir)
		return "", nil, fmt.Errorf("write temp image: %w", err)
	}

	return path, func() { os.RemoveAll(dir) }, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
