package vision

import (
	"context"
	"errors"
	"strings"

	"github.com/troyanskii/troyanskii/internal/extract"
)

// Transcriber is the vision operation of the language service: transcribe the
// visible text of an image, preserving original language and layout.
type Transcriber interface {
	VisionExtract(ctx context.Context, image []byte, mediaType string) (string, error)
}

// Extractor delegates image transcription to the vision-capable language
// service. It is the fallback strategy for standard image formats and the
// only strategy for formats the OCR engine cannot be trusted on.
type Extractor struct {
	svc Transcriber
}

func New(svc Transcriber) *Extractor { return &Extractor{svc: svc} }

func (e *Extractor) Name() string { return "vision" }

func (e *Extractor) Extract(ctx context.Context, doc extract.Document) (string, error) {
	text, err := e.svc.VisionExtract(ctx, doc.Data, CoerceMediaType(doc.MIMEType))
	if err != nil {
		return "", extract.NewError(e.Name(), err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", extract.NewError(e.Name(), errors.New("service returned no text"))
	}
	return text, nil
}

// acceptedMediaTypes are the only image subtypes the downstream service takes.
var acceptedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// CoerceMediaType maps any declared image type outside the accepted set to
// image/png. A compatibility shim for the service contract, not validation:
// the bytes are sent either way, only the tag changes. Deterministic.
func CoerceMediaType(declared string) string {
	mt := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.Index(mt, ";"); i > 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if acceptedMediaTypes[mt] {
		return mt
	}
	return "image/png"
}
