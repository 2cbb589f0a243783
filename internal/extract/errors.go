package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat means classification rejected the input. The user
	// must pick a different file; nothing was attempted.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrLegacyFormat is the terminal classification for .doc binaries.
	ErrLegacyFormat = errors.New("legacy DOC format is not supported")
)

// Error is an extraction failure attributed to a single strategy.
type Error struct {
	Strategy string // "text" | "pdf" | "docx" | "ocr" | "vision"
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Strategy, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err as an extraction failure of the named strategy.
func NewError(strategy string, err error) error {
	return &Error{Strategy: strategy, Err: err}
}

// UserMessage converts any pipeline error into an end-user readable status
// string. Raw errors never reach the presentation layer.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLegacyFormat):
		return "DOC format is not supported. Please convert to DOCX."
	case errors.Is(err, ErrUnsupportedFormat):
		return "Unsupported file format. Please choose a PDF, DOCX, TXT, or image file."
	}

	var xe *Error
	if errors.As(err, &xe) {
		switch xe.Strategy {
		case "pdf":
			return "Failed to extract text from PDF."
		case "docx":
			return "Failed to extract text from DOCX."
		case "text":
			return "Failed to read the text file."
		case "ocr", "vision":
			return "Failed to extract text from the image."
		}
	}

	return "Document processing failed. Please try again."
}
