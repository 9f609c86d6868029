package domain

// Request parameter names of the public search API. These names are the
// external contract and must not change between releases.
const (
	// ParamText is the plain search text. Only '*' and '?' wildcards are honored.
	ParamText = "text"
	// ParamQuery is a query in the engine's native syntax. If present it
	// takes preference over ParamText and is passed through verbatim.
	ParamQuery = "query"

	ParamLang  = "language"
	ParamACL   = "acl"
	ParamType  = "type"
	ParamStart = "start"
	ParamRows  = "rows"
	ParamSort  = "sort"
	ParamFL    = "fl"

	ParamExclMsg  = "excl.msg"
	ParamExclRoom = "excl.room"
)

// LangNone is the language sentinel for documents without language-specific text.
const LangNone = "none"
