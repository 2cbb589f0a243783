package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/troyanskii/troyanskii/internal/anthropic"
	"github.com/troyanskii/troyanskii/internal/config"
	"github.com/troyanskii/troyanskii/internal/extract"
	"github.com/troyanskii/troyanskii/internal/extractors/docx"
	"github.com/troyanskii/troyanskii/internal/extractors/imageocr"
	"github.com/troyanskii/troyanskii/internal/extractors/pdf"
	"github.com/troyanskii/troyanskii/internal/extractors/plaintext"
	"github.com/troyanskii/troyanskii/internal/extractors/vision"
	"github.com/troyanskii/troyanskii/internal/translator"
)

func main() {
	filePath := flag.String("file", "", "document to translate (.pdf .doc .docx .txt .jpg .jpeg .png .heic); omit for interactive mode")
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	// .env is a convenience for local runs; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	client := anthropic.NewHTTPClient(anthropic.Options{
		APIKey:             cfg.AnthropicAPIKey,
		BaseURL:            cfg.AnthropicBaseURL,
		Model:              cfg.Model,
		Timeout:            cfg.RequestTimeout,
		TranslateMaxTokens: cfg.TranslateMaxTokens,
		AnalyzeMaxTokens:   cfg.AnalyzeMaxTokens,
		VisionMaxTokens:    cfg.VisionMaxTokens,
		RateLimitEvery:     cfg.RateLimitEvery,
		RateLimitBurst:     cfg.RateLimitBurst,
		MaxConcurrent:      cfg.MaxConcurrent,
		Logger:             logger,
	})

	registry := extract.NewRegistry()
	registry.Register(extract.PlainText, plaintext.New())
	registry.Register(extract.PDF, pdf.New())
	registry.Register(extract.DOCX, docx.New())

	pipeline := extract.NewPipeline(
		registry,
		imageocr.New(cfg.TesseractBinary, cfg.TesseractLang, cfg.TessdataDir, logger),
		vision.New(client),
		cfg.OCRMinChars,
		logger,
	)

	if *filePath != "" {
		os.Exit(runFile(client, pipeline, *filePath, logger))
	}
	os.Exit(runInteractive(client, pipeline, cfg.DebounceDelay, logger))
}

// runFile is the one-shot mode: extract, translate, analyze, print JSON.
// Exit codes: 0 full success, 1 extraction or translation failure, 2 when the
// translation succeeded but term analysis failed (degraded output printed).
func runFile(client anthropic.Client, pipeline *extract.Pipeline, path string, logger *slog.Logger) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
		return 1
	}

	doc := extract.Document{
		Data:     data,
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		FileName: filepath.Base(path),
	}

	ctx := context.Background()
	text, err := pipeline.Run(ctx, doc, func(p extract.Progress) {
		logger.Info("extraction progress", "phase", p.Phase.String(), "percent", p.Percent)
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, extract.UserMessage(err))
		return 1
	}

	if strings.TrimSpace(text) == "" {
		logger.Info("document contained no recognizable text")
		printJSON(translator.State{SourceText: text, PhaseName: "done"})
		return 0
	}

	translated, err := client.Translate(ctx, text)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Translation error occurred. Please try again.")
		logger.Error("translate failed", "error", err)
		return 1
	}

	out := translator.State{SourceText: text, TranslatedText: translated, PhaseName: "done"}
	terms, err := client.Analyze(ctx, text)
	if err != nil {
		logger.Warn("analyze failed", "error", err)
		out.Err = "Term analysis failed; translation shown without annotations."
		out.PhaseName = "failed"
		printJSON(out)
		return 2
	}
	out.Highlights = terms

	printJSON(out)
	return 0
}

// runInteractive reads lines from stdin into a debounced session; each line
// replaces the current source text, and every settled state is printed.
func runInteractive(client anthropic.Client, pipeline *extract.Pipeline, debounce time.Duration, logger *slog.Logger) int {
	settled := make(chan translator.State, 8)
	session := translator.NewSession(client, pipeline,
		translator.WithDebounce(debounce),
		translator.WithNotify(func(st translator.State) { settled <- st }),
		translator.WithLogger(logger),
	)

	go func() {
		for st := range settled {
			printJSON(st)
		}
	}()

	fmt.Fprintln(os.Stderr, "Enter Russian text (one line per revision, empty line clears, Ctrl-D exits):")
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		session.SetSourceText(sc.Text())
	}
	if err := sc.Err(); err != nil {
		logger.Error("stdin read failed", "error", err)
		return 1
	}

	// Let a final pending cycle settle before exiting.
	deadline := time.After(debounce + 30*time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-deadline:
			return 0
		case <-ticker.C:
			switch session.Snapshot().Phase {
			case translator.Idle, translator.Done, translator.Failed:
				return 0
			}
		}
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
