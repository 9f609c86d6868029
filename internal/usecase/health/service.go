// Package health answers ping requests: engine liveness, the active
// API feature configuration, and optional per-category index
// statistics.
package health

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/chatpal/chatpal-search/internal/domain/category"
	"github.com/chatpal/chatpal-search/internal/domain/params"
	"github.com/chatpal/chatpal-search/internal/engine"
)

// Engine is the collaborator contract for health checks: query
// execution plus a liveness probe.
type Engine interface {
	engine.Engine
	Ping(ctx context.Context) error
}

// Reporter receives the index-statistics record.
type Reporter interface {
	Index(client string, stats map[string]any)
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

// APIConfig is the feature block returned to callers.
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

// Options configures the health service.
type Options struct {
	TypeField      string
	CreatedField   string
	GeneralEnabled bool
	FileEnabled    bool
	MaxFileSize    int64
	Client         string
}

// Service answers ping requests.
type Service struct {
	engine   Engine
	opts     Options
	reporter Reporter
	logger   *zap.Logger
}

// New creates the health service.
func New(eng Engine, opts Options, reporter Reporter, logger *zap.Logger) *Service {
	return &Service{engine: eng, opts: opts, reporter: reporter, logger: logger}
}

// Ping probes the engine and assembles the status response. Statistics
// cover only the categories whose feature flag is on.
func (s *Service) Ping(ctx context.Context, includeStats, includeConfig bool) (*Status, error) {
	if err := s.engine.Ping(ctx); err != nil {
		return nil, err
	}

	status := &Status{Status: "OK"}

	if includeConfig {
		status.Config = &APIConfig{
			GeneralSearch: Feature{Enabled: s.opts.GeneralEnabled},
			FileSearch: FileFeature{
				Enabled:     s.opts.FileEnabled,
				MaxFileSize: s.opts.MaxFileSize,
			},
		}
	}

	if includeStats {
		stats := make(map[string]any)
		if s.opts.GeneralEnabled {
			for _, cat := range []category.Category{category.Message, category.Room, category.User} {
				facets, err := s.categoryStats(ctx, cat)
				if err != nil {
					return nil, err
				}
				stats[cat.Key()] = facets
			}
		}
		if s.opts.FileEnabled {
			facets, err := s.categoryStats(ctx, category.File)
			if err != nil {
				return nil, err
			}
			stats[category.File.Key()] = facets
		}
		status.Stats = stats

		s.reporter.Index(s.opts.Client, countsOnly(stats))
	}

	return status, nil
}

// categoryStats counts one category's documents along with the age of
// its oldest and newest entries.
func (s *Service) categoryStats(ctx context.Context, cat category.Category) (map[string]any, error) {
	q := params.New()
	q.Set(engine.KeyQuery, engine.MatchAll)
	q.Set(engine.KeyRows, "0")
	q.Set(engine.KeyFilterQuery, s.opts.TypeField+":"+cat.IndexValue())
	q.Set(engine.KeyJSONFacet, fmt.Sprintf("{oldest:'min(%[1]s)', newest:'max(%[1]s)'}", s.opts.CreatedField))

	resp, err := s.engine.Execute(ctx, q)
	if err != nil {
		return nil, err
	}

	facets := make(map[string]any)
	if len(resp.Facets) > 0 {
		if err := json.Unmarshal(resp.Facets, &facets); err != nil {
			return nil, fmt.Errorf("decode stats facets for %s: %w", cat.Key(), err)
		}
	}
	if _, ok := facets["count"]; !ok {
		facets["count"] = resp.NumFound
	}
	return facets, nil
}

// countsOnly reduces the stats block to the document counts the
// reporting record carries.
func countsOnly(stats map[string]any) map[string]any {
	out := make(map[string]any, len(stats))
	for key, v := range stats {
		if m, ok := v.(map[string]any); ok {
			out[key] = map[string]any{"count": m["count"]}
		}
	}
	return out
}
