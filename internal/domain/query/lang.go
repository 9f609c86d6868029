package query

import "strings"

// LangField maps a logical field name to its language-suffixed engine
// field, e.g. ("text", "en") -> "text_en".
func LangField(base, lang string) string {
	return base + "_" + lang
}

// TrimLangField reverses LangField: it strips the "_<lang>" suffix from
// an engine field name, returning the logical name. Names without the
// suffix are returned unchanged.
func TrimLangField(name, lang string) string {
	return strings.TrimSuffix(name, "_"+lang)
}
