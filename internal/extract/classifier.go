package extract

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format is the classification a document receives before extraction.
type Format int

const (
	Unsupported Format = iota
	PlainText
	PDF
	DOCX
	DocLegacy // .doc binary format: terminal, never extracted
	ImageJPEG
	ImagePNG
	ImageGIF
	ImageWebP
	ImageHEIC
)

func (f Format) String() string {
	switch f {
	case PlainText:
		return "text"
	case PDF:
		return "pdf"
	case DOCX:
		return "docx"
	case DocLegacy:
		return "doc"
	case ImageJPEG:
		return "image/jpeg"
	case ImagePNG:
		return "image/png"
	case ImageGIF:
		return "image/gif"
	case ImageWebP:
		return "image/webp"
	case ImageHEIC:
		return "image/heic"
	default:
		return "unsupported"
	}
}

// IsImage reports whether the format routes through the image strategies.
func (f Format) IsImage() bool {
	switch f {
	case ImageJPEG, ImagePNG, ImageGIF, ImageWebP, ImageHEIC:
		return true
	}
	return false
}

var formatByMIME = map[string]Format{
	"text/plain":         PlainText,
	"application/pdf":    PDF,
	"application/msword": DocLegacy,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": DOCX,
	"image/jpeg": ImageJPEG,
	"image/jpg":  ImageJPEG,
	"image/png":  ImagePNG,
	"image/gif":  ImageGIF,
	"image/webp": ImageWebP,
	"image/heic": ImageHEIC,
	"image/heif": ImageHEIC,
}

var formatByExtension = map[string]Format{
	".txt":  PlainText,
	".pdf":  PDF,
	".doc":  DocLegacy,
	".docx": DOCX,
	".jpg":  ImageJPEG,
	".jpeg": ImageJPEG,
	".png":  ImagePNG,
	".gif":  ImageGIF,
	".webp": ImageWebP,
	".heic": ImageHEIC,
}

// Classify chooses an extraction strategy for a document. The declared media
// type wins; when it is absent or generic the file-extension suffix decides;
// as a last resort the leading bytes are sniffed. Anything else classifies as
// Unsupported with no further cost.
func Classify(doc Document) Format {
	mt := strings.ToLower(strings.TrimSpace(doc.MIMEType))
	if i := strings.Index(mt, ";"); i > 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	if !isGenericMIME(mt) {
		if f, ok := formatByMIME[mt]; ok {
			return f
		}
	}

	ext := strings.ToLower(filepath.Ext(doc.FileName))
	if f, ok := formatByExtension[ext]; ok {
		return f
	}

	// Pickers often hand over octet-stream with an unhelpful name; sniffing
	// the content is cheap and deterministic.
	if isGenericMIME(mt) && len(doc.Data) > 0 {
		detected := mimetype.Detect(doc.Data).String()
		if i := strings.Index(detected, ";"); i > 0 {
			detected = detected[:i]
		}
		if f, ok := formatByMIME[strings.TrimSpace(detected)]; ok {
			return f
		}
	}

	return Unsupported
}

func isGenericMIME(mt string) bool {
	switch mt {
	case "", "application/octet-stream", "binary/octet-stream":
		return true
	}
	return false
}
