package solr

import (
	"encoding/json"
	"fmt"

	"github.com/chatpal/chatpal-search/internal/engine"
)

type selectResponse struct {
	ResponseHeader struct {
		Status int   `json:"status"`
		QTime  int64 `json:"QTime"`
	} `json:"responseHeader"`
	Response struct {
		NumFound int64             `json:"numFound"`
		Start    int64             `json:"start"`
		MaxScore *float64          `json:"maxScore"`
		Docs     []engine.Document `json:"docs"`
	} `json:"response"`
	Highlighting map[string]map[string][]string `json:"highlighting"`
	FacetCounts  json.RawMessage                `json:"facet_counts"`
	Facets       json.RawMessage                `json:"facets"`
}

type facetCounts struct {
	FacetFields map[string][]json.RawMessage `json:"facet_fields"`
}

func parseResponse(body []byte) (*engine.Response, error) {
	var sr selectResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("decode engine response: %w", err)
	}

	out := &engine.Response{
		Docs:         sr.Response.Docs,
		NumFound:     sr.Response.NumFound,
		Start:        sr.Response.Start,
		MaxScore:     sr.Response.MaxScore,
		Highlighting: sr.Highlighting,
		FacetCounts:  sr.FacetCounts,
		Facets:       sr.Facets,
		QueryTime:    sr.ResponseHeader.QTime,
	}

	if len(sr.FacetCounts) > 0 {
		fields, err := parseFacetFields(sr.FacetCounts)
		if err != nil {
			return nil, err
		}
		out.FacetFields = fields
	}

	return out, nil
}

// parseFacetFields decodes the flat [value, count, value, count, ...]
// facet encoding, preserving engine order.
func parseFacetFields(raw json.RawMessage) (map[string][]engine.FacetCount, error) {
	var fc facetCounts
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("decode facet counts: %w", err)
	}
	if len(fc.FacetFields) == 0 {
		return nil, nil
	}

	out := make(map[string][]engine.FacetCount, len(fc.FacetFields))
	for field, flat := range fc.FacetFields {
		counts := make([]engine.FacetCount, 0, len(flat)/2)
		for i := 0; i+1 < len(flat); i += 2 {
			var value string
			if err := json.Unmarshal(flat[i], &value); err != nil {
				return nil, fmt.Errorf("decode facet value for %s: %w", field, err)
			}
			var count int64
			if err := json.Unmarshal(flat[i+1], &count); err != nil {
				return nil, fmt.Errorf("decode facet count for %s: %w", field, err)
			}
			counts = append(counts, engine.FacetCount{Value: value, Count: count})
		}
		out[field] = counts
	}
	return out, nil
}
