package search

import (
	"encoding/json"
	"fmt"

	"github.com/chatpal/chatpal-search/internal/domain/query"
	"github.com/chatpal/chatpal-search/internal/engine"
)

// CategoryResult is the response envelope for one queried category.
type CategoryResult struct {
	Docs     []engine.Document `json:"docs"`
	NumFound int64             `json:"numFound"`
	Start    int64             `json:"start"`
	MaxScore *float64          `json:"maxScore,omitempty"`
	Facets   json.RawMessage   `json:"facets,omitempty"`
}

// materialize shapes one engine response into the caller-facing
// envelope: highlight snippets are folded back onto their logical field
// names, fields outside the projection are dropped, and the internal
// unique-key field never leaves the service.
func (s *Service) materialize(resp *engine.Response, tq typeQuery) *CategoryResult {
	docs := make([]engine.Document, 0, len(resp.Docs))
	for _, doc := range resp.Docs {
		inlineHighlights(doc, resp.Highlighting, tq, s.uniqueKey)

		for name := range doc {
			if !tq.fields.Wants(name) {
				delete(doc, name)
			}
		}
		delete(doc, s.uniqueKey)

		docs = append(docs, doc)
	}

	return &CategoryResult{
		Docs:     docs,
		NumFound: resp.NumFound,
		Start:    resp.Start,
		MaxScore: resp.MaxScore,
		Facets:   resp.FacetCounts,
	}
}

// inlineHighlights overwrites document values with the localized
// highlight snippets. The engine stores highlights under the
// language-suffixed field name; the suffix is stripped so callers see
// the logical field. Single-valued fields take the first snippet only.
func inlineHighlights(doc engine.Document, highlighting map[string]map[string][]string,
	tq typeQuery, uniqueKey string) {
	if highlighting == nil {
		return
	}
	id := stringValue(doc[uniqueKey])
	highlights, ok := highlighting[id]
	if !ok {
		return
	}

	for field, snippets := range highlights {
		target := query.TrimLangField(field, tq.lang)
		if !tq.fields.Wants(target) || len(snippets) == 0 {
			continue
		}
		if isMultiValued(doc, target) {
			doc[target] = snippets
		} else {
			doc[target] = snippets[0]
		}
	}
}

// isMultiValued guesses a field's cardinality from the stored value.
// Unknown fields are treated as multi-valued.
func isMultiValued(doc engine.Document, field string) bool {
	v, ok := doc[field]
	if !ok {
		return true
	}
	_, isList := v.([]any)
	return isList
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
