package engine

import "strings"

// ReturnFields is the caller's return-field projection, parsed from the
// fl parameter. The zero value (no fl given) wants every stored field.
type ReturnFields struct {
	explicit bool
	all      bool
	score    bool
	fields   map[string]struct{}
}

// ParseReturnFields parses the fl parameter values. Entries may be
// comma or space separated; "*" requests all stored fields and "score"
// requests scoring.
func ParseReturnFields(fl []string) ReturnFields {
	rf := ReturnFields{fields: make(map[string]struct{})}
	if len(fl) == 0 {
		rf.all = true
		return rf
	}
	rf.explicit = true
	for _, entry := range fl {
		for _, name := range strings.FieldsFunc(entry, func(r rune) bool {
			return r == ',' || r == ' '
		}) {
			switch name {
			case "*":
				rf.all = true
			case ScoreField:
				rf.score = true
			default:
				rf.fields[name] = struct{}{}
			}
		}
	}
	return rf
}

// Wants reports whether the projection includes the given field.
func (rf ReturnFields) Wants(field string) bool {
	if rf.all {
		return true
	}
	if field == ScoreField {
		return rf.score
	}
	_, ok := rf.fields[field]
	return ok
}

// WantsScore reports whether scoring was requested.
func (rf ReturnFields) WantsScore() bool { return rf.score }
