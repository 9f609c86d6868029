// Package report emits one structured JSON record per handled request
// toward the reporting sink. Emission is best-effort: a record that
// cannot be serialized or written is dropped, never surfaced to the
// caller.
package report

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Client identifies the index collection a record belongs to.
type Client struct {
	Collection string `json:"collection"`
}

// QueryRecord summarizes one search request.
type QueryRecord struct {
	Type   string    `json:"type"` // always "query"
	Client Client    `json:"client"`
	Query  QueryBody `json:"query"`
}

// QueryBody carries the per-request measurements.
type QueryBody struct {
	SearchTerm string           `json:"searchterm,omitempty"`
	QueryTime  int64            `json:"querytime"`
	ResultSize map[string]int64 `json:"resultsize,omitempty"`
}

// SuggestionRecord summarizes one suggestion request.
type SuggestionRecord struct {
	Type   string    `json:"type"` // always "suggestion"
	Client Client    `json:"client"`
	Query  QueryBody `json:"query"`
}

// IndexRecord carries per-category index statistics.
type IndexRecord struct {
	Type   string         `json:"type"` // always "index"
	Client Client         `json:"client"`
	Stats  map[string]any `json:"stats"`
}

// Reporter writes records as JSON lines.
type Reporter struct {
	mu  sync.Mutex
	out io.Writer
}

// Config holds the rotating-file sink settings.
type Config struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New creates a reporter with a rotating file sink, or stdout when no
// path is configured.
func New(cfg Config) *Reporter {
	if cfg.Path == "" {
		return NewWriter(os.Stdout)
	}
	return NewWriter(&lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	})
}

// NewWriter creates a reporter writing to w.
func NewWriter(w io.Writer) *Reporter {
	return &Reporter{out: w}
}

// Query emits a query record.
func (r *Reporter) Query(client, searchTerm string, queryTimeMS int64, resultSize map[string]int64) {
	r.emit(QueryRecord{
		Type:   "query",
		Client: Client{Collection: client},
		Query: QueryBody{
			SearchTerm: searchTerm,
			QueryTime:  queryTimeMS,
			ResultSize: resultSize,
		},
	})
}

// Suggestion emits a suggestion record.
func (r *Reporter) Suggestion(client, searchTerm string, queryTimeMS int64) {
	r.emit(SuggestionRecord{
		Type:   "suggestion",
		Client: Client{Collection: client},
		Query: QueryBody{
			SearchTerm: searchTerm,
			QueryTime:  queryTimeMS,
		},
	})
}

// Index emits an index-statistics record.
func (r *Reporter) Index(client string, stats map[string]any) {
	r.emit(IndexRecord{
		Type:   "index",
		Client: Client{Collection: client},
		Stats:  stats,
	})
}

func (r *Reporter) emit(record any) {
	if r == nil || r.out == nil {
		return
	}
	b, err := json.Marshal(record)
	if err != nil {
		return
	}
	b = append(b, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.out.Write(b)
}
