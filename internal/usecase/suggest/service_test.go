package suggest

import (
	"context"
	"errors"
	"slices"
	"testing"

	"go.uber.org/zap"

	"github.com/chatpal/chatpal-search/internal/domain/params"
	"github.com/chatpal/chatpal-search/internal/engine"
)

// --- Mocks ---

type mockEngine struct {
	resp   *engine.Response
	err    error
	lastQ  params.Params
	called bool
}

func (m *mockEngine) Execute(_ context.Context, q params.Params) (*engine.Response, error) {
	m.called = true
	m.lastQ = q.Clone()
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

type mockReporter struct {
	called bool
	client string
	term   string
}

func (m *mockReporter) Suggestion(client, searchTerm string, _ int64) {
	m.called = true
	m.client = client
	m.term = searchTerm
}

func facetResponse(field string, entries ...engine.FacetCount) *engine.Response {
	return &engine.Response{
		FacetFields: map[string][]engine.FacetCount{field: entries},
	}
}

func testFields() Fields {
	return Fields{ACL: "rid", Type: "type", Suggestion: "suggestion"}
}

// --- Tests ---

func TestSuggest_PrefixCompletion(t *testing.T) {
	eng := &mockEngine{resp: facetResponse("suggestion",
		engine.FacetCount{Value: "chat", Count: 5},
		engine.FacetCount{Value: "channel", Count: 2},
	)}
	rep := &mockReporter{}
	svc := New(eng, testFields(), 10, "chatpal", rep, zap.NewNop())

	got, err := svc.Suggest(context.Background(),
		params.Params{"text": {"rocket ch"}, "acl": {"r1"}})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}

	want := []Suggestion{
		{Text: "rocket chat", Count: 5},
		{Text: "rocket channel", Count: 2},
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("suggestions = %v, want %v", got, want)
	}

	q := eng.lastQ
	if q.Get("q") != "*:*" || q.Get("rows") != "0" {
		t.Errorf("base query q=%q rows=%q", q.Get("q"), q.Get("rows"))
	}
	if q.Get("facet.prefix") != "ch" {
		t.Errorf("facet.prefix = %q", q.Get("facet.prefix"))
	}
	if q.Get("facet.field") != "suggestion" {
		t.Errorf("facet.field = %q", q.Get("facet.field"))
	}
	if q.Get("facet.limit") != "15" {
		t.Errorf("facet.limit = %q", q.Get("facet.limit"))
	}
	fq := q.Values("fq")
	if !slices.Contains(fq, "suggestion:rocket") {
		t.Errorf("fq missing committed-token filter: %v", fq)
	}
	if !slices.Contains(fq, "{!terms f=rid}r1") {
		t.Errorf("fq missing acl filter: %v", fq)
	}

	if !rep.called || rep.term != "ch" {
		t.Errorf("report called=%v term=%q", rep.called, rep.term)
	}
}

func TestSuggest_TrailingSpaceCommitsAllTokens(t *testing.T) {
	eng := &mockEngine{resp: facetResponse("suggestion",
		engine.FacetCount{Value: "rocket", Count: 7},
		engine.FacetCount{Value: "chat", Count: 5},
	)}
	svc := New(eng, testFields(), 10, "chatpal", &mockReporter{}, zap.NewNop())

	got, err := svc.Suggest(context.Background(),
		params.Params{"text": {"rocket "}, "acl": {"r1"}})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}

	q := eng.lastQ
	if q.Has("facet.prefix") {
		t.Errorf("no prefix expected, got %q", q.Get("facet.prefix"))
	}
	if !slices.Contains(q.Values("fq"), "suggestion:rocket") {
		t.Errorf("fq = %v", q.Values("fq"))
	}

	// The already-typed token is skipped, the rest are extensions.
	if len(got) != 1 || got[0].Text != "rocket chat" {
		t.Errorf("suggestions = %v", got)
	}
}

func TestSuggest_EmptyText(t *testing.T) {
	eng := &mockEngine{}
	rep := &mockReporter{}
	svc := New(eng, testFields(), 10, "chatpal", rep, zap.NewNop())

	got, err := svc.Suggest(context.Background(), params.Params{"acl": {"r1"}})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("suggestions = %v, want empty list", got)
	}
	if eng.called {
		t.Error("engine must not be queried for empty text")
	}
	if rep.called {
		t.Error("empty requests are not reported")
	}
}

func TestSuggest_LowercasesInput(t *testing.T) {
	eng := &mockEngine{resp: facetResponse("suggestion")}
	svc := New(eng, testFields(), 10, "chatpal", &mockReporter{}, zap.NewNop())

	if _, err := svc.Suggest(context.Background(),
		params.Params{"text": {"Rocket CH"}, "acl": {"r1"}}); err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if got := eng.lastQ.Get("facet.prefix"); got != "ch" {
		t.Errorf("facet.prefix = %q", got)
	}
	if !slices.Contains(eng.lastQ.Values("fq"), "suggestion:rocket") {
		t.Errorf("fq = %v", eng.lastQ.Values("fq"))
	}
}

func TestSuggest_CommittedTokenEscaped(t *testing.T) {
	eng := &mockEngine{resp: facetResponse("suggestion")}
	svc := New(eng, testFields(), 10, "chatpal", &mockReporter{}, zap.NewNop())

	if _, err := svc.Suggest(context.Background(),
		params.Params{"text": {"c:a x"}, "acl": {"r1"}}); err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if !slices.Contains(eng.lastQ.Values("fq"), `suggestion:c\:a`) {
		t.Errorf("fq = %v", eng.lastQ.Values("fq"))
	}
}

func TestSuggest_TypeFilter(t *testing.T) {
	eng := &mockEngine{resp: facetResponse("suggestion")}
	svc := New(eng, testFields(), 10, "chatpal", &mockReporter{}, zap.NewNop())

	if _, err := svc.Suggest(context.Background(),
		params.Params{"text": {"x"}, "acl": {"r1"}, "type": {"message,room"}}); err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if !slices.Contains(eng.lastQ.Values("fq"), "{!terms f=type}message,room") {
		t.Errorf("fq = %v", eng.lastQ.Values("fq"))
	}
}

func TestSuggest_SizeCap(t *testing.T) {
	entries := make([]engine.FacetCount, 0, facetLimit)
	for i := 0; i < facetLimit; i++ {
		entries = append(entries, engine.FacetCount{Value: string(rune('a' + i)), Count: int64(facetLimit - i)})
	}
	eng := &mockEngine{resp: facetResponse("suggestion", entries...)}
	svc := New(eng, testFields(), 10, "chatpal", &mockReporter{}, zap.NewNop())

	got, err := svc.Suggest(context.Background(),
		params.Params{"text": {"a"}, "acl": {"r1"}})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("len = %d, want cap of 10", len(got))
	}
}

func TestSuggest_EngineError(t *testing.T) {
	boom := errors.New("down")
	eng := &mockEngine{err: boom}
	rep := &mockReporter{}
	svc := New(eng, testFields(), 10, "chatpal", rep, zap.NewNop())

	_, err := svc.Suggest(context.Background(),
		params.Params{"text": {"x"}, "acl": {"r1"}})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	if rep.called {
		t.Error("failed requests are not reported")
	}
}

func TestNew_SizeFallback(t *testing.T) {
	svc := New(&mockEngine{}, testFields(), 0, "chatpal", &mockReporter{}, zap.NewNop())
	if svc.size != 10 {
		t.Errorf("size = %d, want fallback 10", svc.size)
	}
}
