package extract

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// Phase is the pipeline's externally visible stage.
type Phase int

const (
	PhaseClassifying Phase = iota
	PhaseExtracting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseClassifying:
		return "classifying"
	case PhaseExtracting:
		return "extracting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Progress is a coarse milestone hint. Percent values are monotonically
// non-decreasing within one run but are not proportional to bytes processed.
type Progress struct {
	Phase   Phase
	Percent int
}

// ProgressFunc receives milestone hints during a run. May be nil.
type ProgressFunc func(Progress)

// Pipeline sequences classification, extraction, and the image fallback
// chain. It owns the document only for the duration of Run.
type Pipeline struct {
	registry    *Registry
	ocr         Extractor
	vision      Extractor
	minOCRChars int
	logger      *slog.Logger
}

// DefaultMinOCRChars is the OCR confidence heuristic: results shorter than
// this suggest the engine failed on the script and the vision fallback is
// attempted. A tunable quality/cost tradeoff, not a correctness boundary.
const DefaultMinOCRChars = 50

func NewPipeline(registry *Registry, ocr, vision Extractor, minOCRChars int, logger *slog.Logger) *Pipeline {
	if minOCRChars <= 0 {
		minOCRChars = DefaultMinOCRChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{registry: registry, ocr: ocr, vision: vision, minOCRChars: minOCRChars, logger: logger}
}

// Run classifies doc, dispatches to the matching strategy, and returns the
// extracted text. Image documents in standard formats try OCR first and fall
// back to vision exactly once; HEIC goes straight to vision. Legacy and
// unsupported formats fail before any extractor runs. A failed run reports a
// final PhaseFailed milestone at the last percentage reached.
func (p *Pipeline) Run(ctx context.Context, doc Document, report ProgressFunc) (string, error) {
	lastPct := 0
	emit := func(phase Phase, pct int) {
		if pct > lastPct {
			lastPct = pct
		}
		if report != nil {
			report(Progress{Phase: phase, Percent: pct})
		}
	}

	text, err := p.run(ctx, doc, emit)
	if err != nil {
		emit(PhaseFailed, lastPct)
		return "", err
	}
	return text, nil
}

func (p *Pipeline) run(ctx context.Context, doc Document, emit func(Phase, int)) (string, error) {
	emit(PhaseClassifying, 10)

	format := Classify(doc)
	p.logger.Debug("document classified", "file", doc.FileName, "mime", doc.MIMEType, "format", format.String())

	switch format {
	case Unsupported:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, describeInput(doc))
	case DocLegacy:
		return "", fmt.Errorf("%w: %s", ErrLegacyFormat, doc.FileName)
	}

	emit(PhaseExtracting, 30)

	if format.IsImage() {
		text, err := p.extractImage(ctx, doc, format, emit)
		if err != nil {
			return "", err
		}
		emit(PhaseSucceeded, 100)
		return text, nil
	}

	extractor, err := p.registry.Resolve(format)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, describeInput(doc))
	}

	text, err := extractor.Extract(ctx, doc)
	if err != nil {
		return "", err
	}
	emit(PhaseExtracting, 80)
	emit(PhaseSucceeded, 100)
	return text, nil
}

// extractImage runs the OCR-to-vision fallback chain. The heuristic: OCR
// output below the character threshold means the engine likely failed on the
// script, so vision is attempted once; a vision failure is terminal.
func (p *Pipeline) extractImage(ctx context.Context, doc Document, format Format, emit func(Phase, int)) (string, error) {
	if format == ImageHEIC {
		// The OCR engine cannot be trusted on HEIC containers.
		text, err := p.vision.Extract(ctx, doc)
		if err != nil {
			return "", err
		}
		emit(PhaseExtracting, 80)
		return text, nil
	}

	text, ocrErr := p.ocr.Extract(ctx, doc)
	emit(PhaseExtracting, 50)

	if ocrErr == nil && utf8.RuneCountInString(text) >= p.minOCRChars {
		emit(PhaseExtracting, 80)
		return text, nil
	}

	if ocrErr != nil {
		p.logger.Warn("ocr failed, falling back to vision", "file", doc.FileName, "error", ocrErr)
	} else {
		p.logger.Debug("ocr output below threshold, falling back to vision",
			"file", doc.FileName, "chars", utf8.RuneCountInString(text), "threshold", p.minOCRChars)
	}

	text, err := p.vision.Extract(ctx, doc)
	if err != nil {
		return "", err
	}
	emit(PhaseExtracting, 80)
	return text, nil
}

func describeInput(doc Document) string {
	if doc.MIMEType != "" {
		return doc.MIMEType
	}
	return doc.FileName
}
