package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/troyanskii/troyanskii/internal/extract"
)

// Extractor reads the raw text content of a DOCX container: word/document.xml
// is walked as a token stream, paragraphs become lines, tabs and soft breaks
// are preserved.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Name() string { return "docx" }

func (e *Extractor) Extract(ctx context.Context, doc extract.Document) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	zr, err := zip.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return "", extract.NewError(e.Name(), fmt.Errorf("open container: %w", err))
	}

	body, err := readZipFile(zr, "word/document.xml")
	if err != nil {
		return "", extract.NewError(e.Name(), err)
	}

	text, err := documentText(body)
	if err != nil {
		return "", extract.NewError(e.Name(), err)
	}

	return strings.TrimSpace(text), nil
}

// documentText walks <w:body> collecting run text. <w:tab> and <w:br> map to
// their plain-text equivalents, each <w:p> ends a line.
func documentText(b []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(b))

	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		}
	}

	return sb.String(), nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("missing %s", name)
}
