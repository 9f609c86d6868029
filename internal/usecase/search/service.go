// Package search drives the per-category search fan-out: each eligible
// category gets its own type-scoped query, the sub-queries run
// concurrently against the engine, and the shaped results are merged
// into one envelope keyed by category.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chatpal/chatpal-search/internal/domain"
	"github.com/chatpal/chatpal-search/internal/domain/category"
	"github.com/chatpal/chatpal-search/internal/domain/params"
)

// Result maps category external keys to their envelopes.
type Result map[string]*CategoryResult

// Options configures the search service.
type Options struct {
	Fields         Fields
	UniqueKey      string
	GlobalDefaults params.Params
	TypeDefaults   map[string]params.Params
	FileEnabled    bool
	// Client identifies this index collection in reporting records.
	Client string
}

// Service orchestrates multi-category search requests.
type Service struct {
	engine         Engine
	fields         Fields
	uniqueKey      string
	globalDefaults params.Params
	typeDefaults   map[string]params.Params
	fileEnabled    bool
	client         string
	reporter       Reporter
	logger         *zap.Logger
}

// New creates the search service. The default-parameter layers in opts
// are treated as immutable after this call.
func New(eng Engine, opts Options, reporter Reporter, logger *zap.Logger) *Service {
	return &Service{
		engine:         eng,
		fields:         opts.Fields,
		uniqueKey:      opts.UniqueKey,
		globalDefaults: opts.GlobalDefaults,
		typeDefaults:   opts.TypeDefaults,
		fileEnabled:    opts.FileEnabled,
		client:         opts.Client,
		reporter:       reporter,
		logger:         logger,
	}
}

// Search runs one multi-category request. Sub-queries execute
// concurrently; the first failure cancels the rest and propagates —
// there are no partial results.
func (s *Service) Search(ctx context.Context, req params.Params) (Result, error) {
	start := time.Now()

	var cats []category.Category
	for _, cat := range category.All() {
		if cat == category.File && !s.fileEnabled {
			continue
		}
		if accepts(req, cat) {
			cats = append(cats, cat)
		}
	}

	results := make([]*CategoryResult, len(cats))
	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range cats {
		g.Go(func() error {
			res, err := s.searchCategory(gctx, cat, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(Result, len(cats))
	sizes := make(map[string]int64, len(cats))
	for i, cat := range cats {
		merged[cat.Key()] = results[i]
		sizes[cat.Key()] = results[i].NumFound
	}

	s.reporter.Query(s.client, req.Get(domain.ParamText),
		time.Since(start).Milliseconds(), sizes)

	return merged, nil
}

func (s *Service) searchCategory(ctx context.Context, cat category.Category, req params.Params) (*CategoryResult, error) {
	tq, err := s.compose(cat, req)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("category query",
		zap.String("category", cat.Key()),
		zap.Any("params", tq.query))

	resp, err := s.engine.Execute(ctx, tq.query)
	if err != nil {
		return nil, err
	}
	return s.materialize(resp, tq), nil
}
