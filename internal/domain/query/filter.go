package query

import (
	"fmt"
	"strings"

	"github.com/chatpal/chatpal-search/internal/domain"
)

// TermsFilter builds a filter clause that requires one of the values on
// field, using the engine's terms query parser. Blank values are
// dropped. An empty or nil value list yields a filter matching no
// documents, never "match all" — callers presenting no values see
// nothing (fail closed). Values are joined unescaped: they are assumed
// to be pre-validated identifiers, not free text.
func TermsFilter(field string, values []string) (string, error) {
	if strings.TrimSpace(field) == "" {
		return "", fmt.Errorf("%w: terms filter field must not be blank", domain.ErrInvalidArgument)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "{!terms f=%s}", field)
	first := true
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if !first {
			sb.WriteByte(',')
		}
		sb.WriteString(v)
		first = false
	}
	return sb.String(), nil
}

// OrFilter builds a filter clause matching any of the values on field.
// A blank field targets the engine's configured default field. An empty
// or nil value list yields the universal exclusion (negated match-all)
// scoped to the field if one is given. Every value is query-syntax
// escaped before joining.
func OrFilter(field string, values []string) string {
	kept := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			kept = append(kept, v)
		}
	}

	if len(kept) == 0 {
		if strings.TrimSpace(field) == "" {
			return "-[* TO *]"
		}
		return "-" + field + ":*"
	}

	var sb strings.Builder
	sb.WriteString("{!q.op=OR}")
	if strings.TrimSpace(field) != "" {
		sb.WriteString(field)
		sb.WriteByte(':')
	}
	sb.WriteByte('(')
	for i, v := range kept {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(Escape(v))
	}
	sb.WriteByte(')')
	return sb.String()
}

// ExclusionFilter builds a negated terms filter over the excluded ids.
// Returns "" when there is nothing to exclude, so callers can skip the
// clause entirely.
func ExclusionFilter(field string, excluded []string) (string, error) {
	if len(excluded) == 0 {
		return "", nil
	}
	terms, err := TermsFilter(field, excluded)
	if err != nil {
		return "", err
	}
	return "-" + terms, nil
}
