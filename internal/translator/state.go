package translator

import "github.com/troyanskii/troyanskii/internal/anthropic"

// Phase is the session's user-visible stage.
type Phase int

const (
	Idle Phase = iota
	Extracting
	Pending // debounce timer armed
	Translating
	Analyzing
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Extracting:
		return "extracting"
	case Pending:
		return "pending"
	case Translating:
		return "translating"
	case Analyzing:
		return "analyzing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the read-only snapshot exposed to presentation. Err is always an
// end-user readable message, never a raw error string.
type State struct {
	SourceText     string                      `json:"sourceText"`
	TranslatedText string                      `json:"translatedText"`
	Highlights     []anthropic.HighlightedTerm `json:"highlights"`
	Phase          Phase                       `json:"-"`
	PhaseName      string                      `json:"phase"`
	Progress       int                         `json:"progress"`
	Err            string                      `json:"error,omitempty"`
}
