package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/troyanskii/troyanskii/internal/extract"
)

// Extractor pulls the text layer out of a PDF byte stream with MuPDF. Pages
// are extracted in order and joined with a blank line.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Name() string { return "pdf" }

func (e *Extractor) Extract(ctx context.Context, doc extract.Document) (string, error) {
	fdoc, err := fitz.NewFromMemory(doc.Data)
	if err != nil {
		return "", extract.NewError(e.Name(), fmt.Errorf("open document: %w", err))
	}
	defer fdoc.Close()

	var pages []string
	for i := 0; i < fdoc.NumPage(); i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		text, err := fdoc.Text(i)
		if err != nil {
			return "", extract.NewError(e.Name(), fmt.Errorf("page %d: %w", i+1, err))
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return strings.TrimSpace(strings.Join(pages, "\n\n")), nil
}
