package chatpal

import (
	"context"
	"net/url"
	"strings"
)

// Suggestion is one completion proposal.
type Suggestion struct {
	Text  string `json:"text"`
	Count int64  `json:"count"`
}

type suggestEnvelope struct {
	Suggestion []Suggestion `json:"suggestion"`
}

// Suggest completes the given text. ACL and types follow the same
// semantics as SearchRequest.
func (c *Client) Suggest(ctx context.Context, text string, acl, types []string) ([]Suggestion, error) {
	v := url.Values{}
	v.Set("text", text)
	if acl != nil {
		v.Set("acl", strings.Join(acl, ","))
	}
	if types != nil {
		v.Set("type", strings.Join(types, ","))
	}

	var out suggestEnvelope
	if err := c.get(ctx, "/suggest", v, &out); err != nil {
		return nil, err
	}
	if out.Suggestion == nil {
		return []Suggestion{}, nil
	}
	return out.Suggestion, nil
}

// Feature reports whether a search feature is active.
type Feature struct {
	Enabled bool `json:"enabled"`
}

// FileFeature additionally carries the indexable file size limit.
type FileFeature struct {
	Enabled     bool  `json:"enabled"`
	MaxFileSize int64 `json:"maxFileSize"`
}

// APIConfig is the feature block of a ping response.
type APIConfig struct {
	GeneralSearch Feature     `json:"generalSearch"`
	FileSearch    FileFeature `json:"fileSearch"`
}

// Status is the ping response.
type Status struct {
	Status string         `json:"status"`
	Config *APIConfig     `json:"config,omitempty"`
	Stats  map[string]any `json:"stats,omitempty"`
}

// Ping probes the service. With stats set the response includes
// per-category index statistics; config is returned by default.
func (c *Client) Ping(ctx context.Context, stats bool) (*Status, error) {
	v := url.Values{}
	if stats {
		v.Set("stats", "true")
	}

	var out Status
	if err := c.get(ctx, "/ping", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
