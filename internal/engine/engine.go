// Package engine defines the contract with the shared document-search
// engine: the flat parameter bag a query is expressed in, and the
// result envelope the engine hands back.
package engine

import (
	"context"
	"encoding/json"

	"github.com/chatpal/chatpal-search/internal/domain/params"
)

// Well-known keys of the engine parameter bag.
const (
	KeyQuery       = "q"
	KeyDefType     = "defType"
	KeyDefField    = "df"
	KeyQueryFields = "qf"
	KeyBoostFunc   = "bf"
	KeyFilterQuery = "fq"
	KeyFieldList   = "fl"
	KeySort        = "sort"
	KeyStart       = "start"
	KeyRows        = "rows"

	KeyHighlight       = "hl"
	KeyHighlightFields = "hl.fl"

	KeyFacet         = "facet"
	KeyFacetField    = "facet.field"
	KeyFacetPrefix   = "facet.prefix"
	KeyFacetMinCount = "facet.mincount"
	KeyFacetLimit    = "facet.limit"

	KeyJSONFacet = "json.facet"
)

// DefTypeLucene disables the weighted-field query parser in favor of
// the engine's native syntax. Used when the caller supplies a
// pre-formed query.
const DefTypeLucene = "lucene"

// MatchAll is the engine's match-all query clause.
const MatchAll = "*:*"

// ScoreField is the pseudo-field carrying the relevance score.
const ScoreField = "score"

// Document is a single returned document as a loose field map.
type Document map[string]any

// FacetCount is one entry of a field facet, in engine order.
type FacetCount struct {
	Value string
	Count int64
}

// Response is the engine's answer to one query.
type Response struct {
	Docs     []Document
	NumFound int64
	Start    int64
	// MaxScore is present only when scoring was requested.
	MaxScore *float64

	// Highlighting maps unique document id -> engine field name ->
	// snippet values.
	Highlighting map[string]map[string][]string

	// FacetFields holds parsed field facets keyed by field name,
	// preserving engine order.
	FacetFields map[string][]FacetCount
	// FacetCounts is the raw facet block, passed through to callers.
	FacetCounts json.RawMessage
	// Facets is the raw JSON-facet block (stats queries).
	Facets json.RawMessage

	// QueryTime is the engine-reported time in milliseconds.
	QueryTime int64
}

// Engine executes one structured query against the document-search
// engine. Implementations must honor the caller's context.
type Engine interface {
	Execute(ctx context.Context, query params.Params) (*Response, error)
}
