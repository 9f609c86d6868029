// Package suggest completes partial search phrases from the indexed
// suggestion terms: the last token of the input becomes a facet prefix,
// the preceding tokens become exact-match filters, and the facet counts
// rank the completions.
package suggest

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chatpal/chatpal-search/internal/domain"
	"github.com/chatpal/chatpal-search/internal/domain/params"
	"github.com/chatpal/chatpal-search/internal/domain/query"
	"github.com/chatpal/chatpal-search/internal/engine"
)

// facetLimit is how many facet entries the engine is asked for; the
// emitted list is capped separately so already-typed terms can be
// skipped without coming up short.
const facetLimit = 15

// Suggestion is one ranked completion.
type Suggestion struct {
	Text  string `json:"text"`
	Count int64  `json:"count"`
}

// Reporter receives the per-request summary record.
type Reporter interface {
	Suggestion(client, searchTerm string, queryTimeMS int64)
}

// Fields names the index fields the suggestion query depends on.
type Fields struct {
	ACL        string
	Type       string
	Suggestion string
}

// Service answers suggestion requests.
type Service struct {
	engine   engine.Engine
	fields   Fields
	size     int
	client   string
	reporter Reporter
	logger   *zap.Logger
}

// New creates the suggestion service. size caps the emitted list; values
// below 1 fall back to the default of 10.
func New(eng engine.Engine, fields Fields, size int, client string, reporter Reporter, logger *zap.Logger) *Service {
	if size < 1 {
		logger.Warn("configured suggestion size is less than 1, falling back to default",
			zap.Int("size", size))
		size = 10
	}
	return &Service{
		engine:   eng,
		fields:   fields,
		size:     size,
		client:   client,
		reporter: reporter,
		logger:   logger,
	}
}

// Suggest completes the partial phrase in the request's text parameter.
// Empty input returns an empty list without touching the engine.
func (s *Service) Suggest(ctx context.Context, req params.Params) ([]Suggestion, error) {
	start := time.Now()

	text := req.Get(domain.ParamText)
	if text == "" {
		return []Suggestion{}, nil
	}

	tokens := strings.Fields(strings.ToLower(text))

	// Unless the input ends mid-token there is nothing to prefix-match:
	// every token is a committed filter.
	var prefix string
	if !strings.HasSuffix(text, " ") && len(tokens) > 0 {
		prefix = tokens[len(tokens)-1]
		tokens = tokens[:len(tokens)-1]
	}

	q, err := s.buildQuery(req, tokens, prefix)
	if err != nil {
		return nil, err
	}

	resp, err := s.engine.Execute(ctx, q)
	if err != nil {
		return nil, err
	}

	suggestions := s.collect(resp.FacetFields[s.fields.Suggestion], tokens)

	s.reporter.Suggestion(s.client, prefix, time.Since(start).Milliseconds())

	return suggestions, nil
}

func (s *Service) buildQuery(req params.Params, committed []string, prefix string) (params.Params, error) {
	q := params.New()
	q.Set(engine.KeyQuery, engine.MatchAll)
	q.Set(engine.KeyRows, "0")
	q.Set(engine.KeyFacet, "true")
	q.Set(engine.KeyFacetField, s.fields.Suggestion)
	q.Set(engine.KeyFacetMinCount, "1")
	q.Set(engine.KeyFacetLimit, strconv.Itoa(facetLimit))
	if prefix != "" {
		q.Set(engine.KeyFacetPrefix, prefix)
	}

	if types := req.MultiValue(domain.ParamType); types != nil {
		f, err := query.TermsFilter(s.fields.Type, types)
		if err != nil {
			return nil, err
		}
		q.Add(engine.KeyFilterQuery, f)
	}

	// A completion must co-occur with every committed token.
	for _, token := range committed {
		q.Add(engine.KeyFilterQuery, s.fields.Suggestion+":"+query.Escape(token))
	}

	acl, err := query.TermsFilter(s.fields.ACL, req.MultiValue(domain.ParamACL))
	if err != nil {
		return nil, err
	}
	q.Add(engine.KeyFilterQuery, acl)

	return q, nil
}

// collect turns the engine-ordered facet entries into suggestions,
// skipping terms the caller already typed.
func (s *Service) collect(entries []engine.FacetCount, committed []string) []Suggestion {
	prefix := strings.Join(committed, " ")
	if prefix != "" {
		prefix += " "
	}

	suggestions := make([]Suggestion, 0, s.size)
	for _, entry := range entries {
		if slices.Contains(committed, entry.Value) {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Text:  prefix + entry.Value,
			Count: entry.Count,
		})
		if len(suggestions) >= s.size {
			break
		}
	}
	return suggestions
}
