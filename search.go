package chatpal

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// SearchRequest carries the parameters of a search call. Zero-valued
// fields are omitted from the request.
type SearchRequest struct {
	// Text is the free-form search text.
	Text string
	// Query is a structured engine query. When set it takes
	// precedence over Text on the server side.
	Query string
	// Language selects the language-specific text fields, e.g. "en".
	Language string
	// Categories restricts the search to the given result types
	// (message, room, user, file). Empty means all enabled types.
	Categories []string
	// ACL lists the room ids the caller may see. An empty, non-nil
	// slice matches nothing.
	ACL []string
	// ExcludeRooms and ExcludeMessages hide individual rooms or
	// messages from the results.
	ExcludeRooms    []string
	ExcludeMessages []string

	Start  int
	Rows   int
	Sort   string
	Fields []string
}

// CategoryResult is the per-type slice of a search response.
type CategoryResult struct {
	Docs     []map[string]any `json:"docs"`
	NumFound int64            `json:"numFound"`
	Start    int64            `json:"start"`
	MaxScore *float64         `json:"maxScore,omitempty"`
	Facets   json.RawMessage  `json:"facets,omitempty"`
}

// SearchResponse maps result type keys to their results.
type SearchResponse map[string]*CategoryResult

func (r SearchRequest) values() url.Values {
	v := url.Values{}
	setStr := func(name, val string) {
		if val != "" {
			v.Set(name, val)
		}
	}
	setList := func(name string, vals []string) {
		if vals != nil {
			v.Set(name, strings.Join(vals, ","))
		}
	}

	setStr("text", r.Text)
	setStr("query", r.Query)
	setStr("language", r.Language)
	setStr("sort", r.Sort)
	setList("type", r.Categories)
	setList("acl", r.ACL)
	setList("excl.room", r.ExcludeRooms)
	setList("excl.msg", r.ExcludeMessages)
	if len(r.Fields) > 0 {
		v.Set("fl", strings.Join(r.Fields, ","))
	}
	if r.Start > 0 {
		v.Set("start", strconv.Itoa(r.Start))
	}
	if r.Rows > 0 {
		v.Set("rows", strconv.Itoa(r.Rows))
	}
	return v
}

// Search runs a search across all requested result types.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	var out SearchResponse
	if err := c.get(ctx, "/search", req.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}
