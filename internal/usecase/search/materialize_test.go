package search

import (
	"reflect"
	"testing"

	"github.com/chatpal/chatpal-search/internal/engine"
)

func materializeWith(t *testing.T, resp *engine.Response, fl []string, lang string) *CategoryResult {
	t.Helper()
	s := testService()
	tq := typeQuery{lang: lang, fields: engine.ParseReturnFields(fl)}
	return s.materialize(resp, tq)
}

func TestMaterialize_MultiValuedHighlight(t *testing.T) {
	resp := &engine.Response{
		Docs: []engine.Document{
			{"id": "m1", "text": []any{"first line", "second line"}},
		},
		Highlighting: map[string]map[string][]string{
			"m1": {"text_en": {"<em>first</em> line", "second <em>line</em>"}},
		},
		NumFound: 1,
	}

	res := materializeWith(t, resp, nil, "en")
	want := []string{"<em>first</em> line", "second <em>line</em>"}
	if got := res.Docs[0]["text"]; !reflect.DeepEqual(got, want) {
		t.Errorf("text = %v, want all snippets for multi-valued field", got)
	}
}

func TestMaterialize_SingleValuedHighlightTakesFirst(t *testing.T) {
	resp := &engine.Response{
		Docs: []engine.Document{{"id": "m1", "text": "plain"}},
		Highlighting: map[string]map[string][]string{
			"m1": {"text_en": {"<em>plain</em>", "extra"}},
		},
		NumFound: 1,
	}

	res := materializeWith(t, resp, nil, "en")
	if got := res.Docs[0]["text"]; got != "<em>plain</em>" {
		t.Errorf("text = %v, want first snippet only", got)
	}
}

func TestMaterialize_UnwantedHighlightSkipped(t *testing.T) {
	resp := &engine.Response{
		Docs: []engine.Document{{"id": "m1", "user": "alice"}},
		Highlighting: map[string]map[string][]string{
			"m1": {"text_en": {"<em>x</em>"}},
		},
		NumFound: 1,
	}

	res := materializeWith(t, resp, []string{"user"}, "en")
	doc := res.Docs[0]
	if _, ok := doc["text"]; ok {
		t.Error("highlight for unprojected field must be dropped")
	}
	if doc["user"] != "alice" {
		t.Errorf("user = %v", doc["user"])
	}
}

func TestMaterialize_UniqueKeyAlwaysDropped(t *testing.T) {
	resp := &engine.Response{
		Docs:     []engine.Document{{"id": "m1", "text": "hi"}},
		NumFound: 1,
	}

	// Even an explicit fl=id does not leak the unique key.
	res := materializeWith(t, resp, []string{"id,text"}, "none")
	if _, ok := res.Docs[0]["id"]; ok {
		t.Error("unique key must never be returned")
	}
}

func TestMaterialize_ScoreKeptWhenRequested(t *testing.T) {
	resp := &engine.Response{
		Docs:     []engine.Document{{"id": "m1", "text": "hi", "score": 1.2}},
		NumFound: 1,
	}

	res := materializeWith(t, resp, []string{"text,score"}, "none")
	if got := res.Docs[0]["score"]; got != 1.2 {
		t.Errorf("score = %v, want 1.2", got)
	}

	res = materializeWith(t, resp, []string{"text"}, "none")
	if _, ok := res.Docs[0]["score"]; ok {
		t.Error("unrequested score must be dropped")
	}
}

func TestMaterialize_Envelope(t *testing.T) {
	score := 2.5
	resp := &engine.Response{
		Docs:     []engine.Document{},
		NumFound: 42,
		Start:    10,
		MaxScore: &score,
	}

	res := materializeWith(t, resp, nil, "none")
	if res.NumFound != 42 || res.Start != 10 {
		t.Errorf("envelope = %+v", res)
	}
	if res.MaxScore == nil || *res.MaxScore != 2.5 {
		t.Errorf("maxScore = %v", res.MaxScore)
	}
	if res.Docs == nil {
		t.Error("docs must marshal as [], not null")
	}
}
