package extract

import "testing"

func TestClassifyPrefersDeclaredMediaType(t *testing.T) {
	doc := Document{MIMEType: "application/pdf", FileName: "scan.png"}
	if f := Classify(doc); f != PDF {
		t.Fatalf("expected PDF, got %q", f)
	}
}

func TestClassifyFallsBackToExtension(t *testing.T) {
	cases := []struct {
		mime string
		name string
		want Format
	}{
		{"", "notes.TXT", PlainText},
		{"application/octet-stream", "paper.pdf", PDF},
		{"", "memo.docx", DOCX},
		{"", "memo.doc", DocLegacy},
		{"binary/octet-stream", "photo.JPEG", ImageJPEG},
		{"", "photo.heic", ImageHEIC},
		{"", "archive.tar.gz", Unsupported},
		{"application/zip", "archive.zip", Unsupported},
	}

	for _, tc := range cases {
		doc := Document{MIMEType: tc.mime, FileName: tc.name}
		if f := Classify(doc); f != tc.want {
			t.Fatalf("Classify(%q, %q) = %q, want %q", tc.mime, tc.name, f, tc.want)
		}
	}
}

func TestClassifyStripsMIMEParameters(t *testing.T) {
	doc := Document{MIMEType: "text/plain; charset=utf-8", FileName: "x.bin"}
	if f := Classify(doc); f != PlainText {
		t.Fatalf("expected PlainText, got %q", f)
	}
}

func TestClassifySniffsGenericContent(t *testing.T) {
	// %PDF magic with no usable declared type or extension.
	doc := Document{
		MIMEType: "application/octet-stream",
		FileName: "upload",
		Data:     []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"),
	}
	if f := Classify(doc); f != PDF {
		t.Fatalf("expected PDF from sniffed content, got %q", f)
	}
}

func TestIsImage(t *testing.T) {
	for _, f := range []Format{ImageJPEG, ImagePNG, ImageGIF, ImageWebP, ImageHEIC} {
		if !f.IsImage() {
			t.Fatalf("%q should be an image format", f)
		}
	}
	for _, f := range []Format{PlainText, PDF, DOCX, DocLegacy, Unsupported} {
		if f.IsImage() {
			t.Fatalf("%q should not be an image format", f)
		}
	}
}
