// Package query builds the engine-grammar fragments shared by search
// and suggestion: text sanitization, terms/OR filter clauses, and the
// language-suffixed field-name transform.
package query

import "strings"

// CleanText escapes query-grammar syntax not allowed in the plain text
// parameter. Deliberately NOT escaped:
//   - '*' for prefix/infix wildcards
//   - '"' for phrase queries
//   - '-' for negation and '+' for MUST
//   - whitespace, so multiple terms keep OR semantics
func CleanText(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\', '!', '(', ')', ':', '^', '[', ']', '{', '}', '~', '|', '&', '?', ';', '/':
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// escaper escapes every character with special meaning in the engine's
// query grammar. Used for values embedded into OR filters, where caller
// input must never leak syntax.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	`+`, `\+`,
	`-`, `\-`,
	`!`, `\!`,
	`(`, `\(`,
	`)`, `\)`,
	`:`, `\:`,
	`^`, `\^`,
	`[`, `\[`,
	`]`, `\]`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\~`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`&`, `\&`,
	`;`, `\;`,
	`/`, `\/`,
	` `, `\ `,
)

// Escape escapes all query-grammar special characters in s.
func Escape(s string) string {
	return escaper.Replace(s)
}
