package extract

// Document is a user-supplied source document as received from the picker or
// drag-drop surface. It is immutable once constructed and is only retained
// for the duration of extraction.
type Document struct {
	Data     []byte
	MIMEType string // declared media type; may be empty or generic
	FileName string
}

// ExtractedText is the output of exactly one extractor per document. Content
// may be empty when the source genuinely contained no recognizable text.
type ExtractedText struct {
	Content string
}
