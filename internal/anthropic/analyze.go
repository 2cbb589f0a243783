package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// highlightsSchema validates the analysis reply locally before any term is
// accepted. Mirrors the shape promised in analyzeSystemPrompt.
const highlightsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["term", "romanization", "possibleTranslations", "sourceContext"],
		"properties": {
			"term": {"type": "string", "minLength": 1},
			"romanization": {"type": "string"},
			"possibleTranslations": {"type": "array", "items": {"type": "string"}, "minItems": 1},
			"sourceContext": {"type": "string"}
		},
		"additionalProperties": false
	}
}`

var compiledHighlightsSchema = jsonschema.MustCompileString("highlights.schema.json", highlightsSchema)

// Analyze requests term annotations for text. Invoked by the orchestrator
// only after a successful Translate, over the same text; it fails
// independently of the translation.
func (c *HTTPClient) Analyze(ctx context.Context, text string) ([]HighlightedTerm, error) {
	reply, err := c.send(ctx, "analyze", messagesRequest{
		Model:     c.model,
		MaxTokens: c.analyzeMaxTokens,
		System:    analyzeSystemPrompt,
		Messages:  []message{{Role: "user", Content: text}},
	})
	if err != nil {
		return nil, err
	}

	return parseHighlights(reply)
}

// parseHighlights extracts the JSON array from a model reply (code fences
// tolerated), validates it against the schema, and decodes it preserving
// order.
func parseHighlights(reply string) ([]HighlightedTerm, error) {
	raw, err := extractJSONArray(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if err := compiledHighlightsSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: analysis payload failed validation: %v", ErrUnexpectedResponse, err)
	}

	var terms []HighlightedTerm
	if err := json.Unmarshal([]byte(raw), &terms); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return terms, nil
}

// extractJSONArray finds the outermost array in a reply that may be wrapped
// in markdown fences or stray prose.
func extractJSONArray(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end < start {
		return "", fmt.Errorf("no JSON array in reply")
	}
	return s[start : end+1], nil
}

// VisionExtract transcribes the visible text of an image via the service's
// vision capability. image is the raw file content; mediaType must already be
// one of the four accepted subtypes (the vision extractor coerces it).
func (c *HTTPClient) VisionExtract(ctx context.Context, image []byte, mediaType string) (string, error) {
	return c.send(ctx, "vision", messagesRequest{
		Model:     c.model,
		MaxTokens: c.visionMaxTokens,
		System:    visionSystemPrompt,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{Type: "image", Source: &imageSource{
					Type:      "base64",
					MediaType: mediaType,
					Data:      base64.StdEncoding.EncodeToString(image),
				}},
				{Type: "text", Text: visionUserPrompt},
			},
		}},
	})
}
