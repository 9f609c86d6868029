package search

import (
	"github.com/chatpal/chatpal-search/internal/engine"
)

// Engine executes composed queries. Satisfied by the Solr client.
type Engine = engine.Engine

// Reporter receives the per-request summary record.
type Reporter interface {
	Query(client, searchTerm string, queryTimeMS int64, resultSize map[string]int64)
}

// Fields names the index fields the composer builds filters on. All
// values are validated non-blank at startup.
type Fields struct {
	ACL       string
	Type      string
	RoomID    string
	MessageID string
	Updated   string
}
