package search

import (
	"fmt"

	"github.com/chatpal/chatpal-search/internal/domain"
	"github.com/chatpal/chatpal-search/internal/domain/category"
	"github.com/chatpal/chatpal-search/internal/domain/params"
	"github.com/chatpal/chatpal-search/internal/domain/query"
	"github.com/chatpal/chatpal-search/internal/engine"
)

// adapterKind tags one category-specific query mutation step. Chains
// are explicit per category so the build order stays inspectable.
type adapterKind int

const (
	adapterLanguageWeight adapterKind = iota
	adapterRecencyBoost
	adapterForceNoLanguage
	adapterACL
	adapterExclusion
)

func adapterChain(cat category.Category) []adapterKind {
	switch cat {
	case category.Message:
		return []adapterKind{adapterLanguageWeight, adapterRecencyBoost, adapterACL, adapterExclusion}
	case category.File:
		// Files carry no language-specific text.
		return []adapterKind{adapterForceNoLanguage, adapterRecencyBoost, adapterACL, adapterExclusion}
	case category.Room:
		return []adapterKind{adapterACL, adapterExclusion}
	case category.User:
		return []adapterKind{adapterACL}
	default:
		return nil
	}
}

// typeQuery is the per-category derived query: the composed parameter
// bag, the language the highlights were produced in, and the caller's
// return-field projection.
type typeQuery struct {
	query  params.Params
	lang   string
	fields engine.ReturnFields
}

// compose builds the complete type-scoped query for one category.
func (s *Service) compose(cat category.Category, req params.Params) (typeQuery, error) {
	q := params.New()
	lang := req.GetDefault(domain.ParamLang, domain.LangNone)

	// The 'query' parameter overrides 'text'. A pre-formed query is
	// trusted verbatim: no sanitization, no weighted-field parsing.
	structured := req.Has(domain.ParamQuery)
	if structured {
		q.Set(engine.KeyDefType, engine.DefTypeLucene)
		q.Set(engine.KeyQuery, req.Get(domain.ParamQuery))
	} else if req.Has(domain.ParamText) {
		q.Set(engine.KeyQuery, query.CleanText(req.Get(domain.ParamText)))
	}

	if req.Has(domain.ParamSort) {
		q.Set(engine.KeySort, req.Get(domain.ParamSort))
	}
	if req.Has(domain.ParamFL) {
		q.Set(engine.KeyFieldList, req.Values(domain.ParamFL)...)
	}

	q.Set(engine.KeyFilterQuery, s.fields.Type+":"+cat.IndexValue())

	// Pagination: the category-prefixed parameter wins over the global one.
	if start, ok := pagedParam(req, cat, domain.ParamStart); ok {
		q.Set(engine.KeyStart, start)
	}
	if rows, ok := pagedParam(req, cat, domain.ParamRows); ok {
		q.Set(engine.KeyRows, rows)
	}

	for _, kind := range adapterChain(cat) {
		switch kind {
		case adapterLanguageWeight:
			applyLanguageWeight(q, lang, structured)
		case adapterRecencyBoost:
			if !structured {
				q.Set(engine.KeyBoostFunc,
					fmt.Sprintf("recip(ms(NOW,%s),3.6e-11,3,1)", s.fields.Updated))
			}
		case adapterForceNoLanguage:
			lang = domain.LangNone
		case adapterACL:
			acl, err := query.TermsFilter(s.fields.ACL, req.MultiValue(domain.ParamACL))
			if err != nil {
				return typeQuery{}, err
			}
			q.Add(engine.KeyFilterQuery, acl)
		case adapterExclusion:
			if err := s.applyExclusions(q, cat, req); err != nil {
				return typeQuery{}, err
			}
		}
	}

	// Layered defaulting: composed query > category defaults > global
	// defaults, resolved uniformly for every attribute.
	chain := params.Chain{q, s.typeDefaults[cat.Key()], s.globalDefaults}
	flat := chain.Flatten()

	// The projection is what the caller asked for; the unique-key field
	// is appended afterwards so highlight snippets can be correlated
	// without ever being returned.
	fields := engine.ParseReturnFields(flat.Values(engine.KeyFieldList))
	flat.Add(engine.KeyFieldList, s.uniqueKey)

	return typeQuery{query: flat, lang: lang, fields: fields}, nil
}

// applyLanguageWeight sets the language-dependent field weighting and
// registers the language text field for highlighting. In structured
// mode only the default field is adjusted.
func applyLanguageWeight(q params.Params, lang string, structured bool) {
	textField := query.LangField("text", lang)
	if structured {
		q.Set(engine.KeyDefField, textField)
		return
	}
	q.Set(engine.KeyQueryFields, fmt.Sprintf("context^2 %s^1 %s^.5",
		textField, query.LangField("decompose_text", lang)))
	q.Add(engine.KeyHighlightFields, textField)
}

// applyExclusions appends the exclusion filters carried by the request.
// Room exclusions apply to messages and rooms, message exclusions to
// messages only.
func (s *Service) applyExclusions(q params.Params, cat category.Category, req params.Params) error {
	if cat == category.Message || cat == category.Room {
		f, err := query.ExclusionFilter(s.fields.RoomID, req.MultiValue(domain.ParamExclRoom))
		if err != nil {
			return err
		}
		if f != "" {
			q.Add(engine.KeyFilterQuery, f)
		}
	}
	if cat == category.Message {
		f, err := query.ExclusionFilter(s.fields.MessageID, req.MultiValue(domain.ParamExclMsg))
		if err != nil {
			return err
		}
		if f != "" {
			q.Add(engine.KeyFilterQuery, f)
		}
	}
	return nil
}

func pagedParam(req params.Params, cat category.Category, name string) (string, bool) {
	if v, ok := req.Lookup(cat.Key() + "." + name); ok {
		return v, true
	}
	return req.Lookup(name)
}

// accepts reports whether the caller's type filter includes the
// category. An absent or empty filter means all categories.
func accepts(req params.Params, cat category.Category) bool {
	types := req.MultiValue(domain.ParamType)
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if t == cat.Key() {
			return true
		}
	}
	return false
}
