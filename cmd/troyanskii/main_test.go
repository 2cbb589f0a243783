package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/troyanskii/troyanskii/internal/anthropic"
	"github.com/troyanskii/troyanskii/internal/extract"
	"github.com/troyanskii/troyanskii/internal/extractors/plaintext"
)

type stubClient struct {
	translateErr error
	analyzeErr   error
}

func (s *stubClient) Translate(context.Context, string) (string, error) {
	if s.translateErr != nil {
		return "", s.translateErr
	}
	return "Hello", nil
}

func (s *stubClient) Analyze(context.Context, string) ([]anthropic.HighlightedTerm, error) {
	if s.analyzeErr != nil {
		return nil, s.analyzeErr
	}
	return nil, nil
}

func (s *stubClient) VisionExtract(context.Context, []byte, string) (string, error) {
	return "", errors.New("not implemented")
}

func textPipeline() *extract.Pipeline {
	registry := extract.NewRegistry()
	registry.Register(extract.PlainText, plaintext.New())
	return extract.NewPipeline(registry, nil, nil, 0, slog.New(slog.DiscardHandler))
}

func writeInput(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestRunFileExitCodes(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	cases := []struct {
		name   string
		client *stubClient
		path   string
		want   int
	}{
		{"full success", &stubClient{}, writeInput(t, "doc.txt", "Привет"), 0},
		{"translate failure", &stubClient{translateErr: errors.New("service down")}, writeInput(t, "doc.txt", "Привет"), 1},
		{"analyze failure is degraded", &stubClient{analyzeErr: errors.New("malformed reply")}, writeInput(t, "doc.txt", "Привет"), 2},
		{"unreadable file", &stubClient{}, filepath.Join(t.TempDir(), "missing.txt"), 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := runFile(tc.client, textPipeline(), tc.path, logger); got != tc.want {
				t.Fatalf("exit code %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRunFileLegacyDocIsFatal(t *testing.T) {
	path := writeInput(t, "report.doc", "binary")
	if got := runFile(&stubClient{}, textPipeline(), path, slog.New(slog.DiscardHandler)); got != 1 {
		t.Fatalf("legacy input must exit 1, got %d", got)
	}
}
