package extract

import "context"

// Extractor is implemented by every format strategy. Name doubles as the
// strategy tag carried by extraction errors.
type Extractor interface {
	Extract(ctx context.Context, doc Document) (string, error)
	Name() string
}
