package extract

import "fmt"

// Registry maps single-strategy formats to their extractor. Image formats are
// not registered here; the pipeline owns the OCR/vision pair because their
// dispatch is conditional.
type Registry struct {
	byFormat map[Format]Extractor
}

func NewRegistry() *Registry {
	return &Registry{byFormat: make(map[Format]Extractor)}
}

func (r *Registry) Register(f Format, e Extractor) {
	r.byFormat[f] = e
}

func (r *Registry) Resolve(f Format) (Extractor, error) {
	if e, ok := r.byFormat[f]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("no extractor registered for format %q", f)
}
