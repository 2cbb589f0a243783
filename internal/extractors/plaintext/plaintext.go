package plaintext

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/troyanskii/troyanskii/internal/extract"
)

// Extractor is the passthrough strategy for plain text documents. Content is
// returned verbatim apart from a leading/trailing trim; the only failure mode
// is a decode error.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Name() string { return "text" }

func (e *Extractor) Extract(ctx context.Context, doc extract.Document) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if !utf8.Valid(doc.Data) {
		return "", extract.NewError(e.Name(), errors.New("file is not valid UTF-8 text"))
	}

	return strings.TrimSpace(string(doc.Data)), nil
}
