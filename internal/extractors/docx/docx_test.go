package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/troyanskii/troyanskii/internal/extract"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Первый абзац.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Колонка</w:t><w:tab/><w:t>значение</w:t></w:r></w:p>
    <w:p><w:r><w:t>Строка</w:t><w:br/><w:t>перенос</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtractParagraphsAndRuns(t *testing.T) {
	doc := extract.Document{Data: buildDocx(t, sampleDocumentXML), FileName: "memo.docx"}

	text, err := New().Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	want := "Первый абзац.\nКолонка\tзначение\nСтрока\nперенос"
	if text != want {
		t.Fatalf("unexpected text:\n got %q\nwant %q", text, want)
	}
}

func TestExtractMalformedContainer(t *testing.T) {
	doc := extract.Document{Data: []byte("not a zip archive"), FileName: "memo.docx"}

	_, err := New().Extract(context.Background(), doc)
	var xe *extract.Error
	if !errors.As(err, &xe) {
		t.Fatalf("expected extraction error, got %v", err)
	}
	if xe.Strategy != "docx" {
		t.Fatalf("expected docx strategy tag, got %q", xe.Strategy)
	}
}

func TestExtractMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/styles.xml")
	_, _ = w.Write([]byte("<styles/>"))
	_ = zw.Close()

	doc := extract.Document{Data: buf.Bytes(), FileName: "memo.docx"}
	if _, err := New().Extract(context.Background(), doc); err == nil {
		t.Fatalf("expected error for container without document.xml")
	}
}
