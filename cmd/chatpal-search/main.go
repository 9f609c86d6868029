package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chatpal/chatpal-search/internal/config"
	"github.com/chatpal/chatpal-search/internal/domain/params"
	"github.com/chatpal/chatpal-search/internal/engine/solr"
	logpkg "github.com/chatpal/chatpal-search/internal/logger"
	"github.com/chatpal/chatpal-search/internal/metrics"
	"github.com/chatpal/chatpal-search/internal/report"
	chiTransport "github.com/chatpal/chatpal-search/internal/transport/chi"
	healthuc "github.com/chatpal/chatpal-search/internal/usecase/health"
	searchuc "github.com/chatpal/chatpal-search/internal/usecase/search"
	suggestuc "github.com/chatpal/chatpal-search/internal/usecase/suggest"
	"github.com/chatpal/chatpal-search/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting chatpal-search",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("engine", cfg.Engine.BaseURL),
		zap.String("core", cfg.Engine.Core),
	)

	engineClient, err := solr.New(solr.Config{
		BaseURL: cfg.Engine.BaseURL,
		Core:    cfg.Engine.Core,
		Timeout: time.Duration(cfg.Engine.TimeoutSec) * time.Second,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create engine client", zap.Error(err))
	}

	reporter := report.New(report.Config{
		Path:       cfg.Report.Path,
		MaxSizeMB:  cfg.Report.MaxSizeMB,
		MaxBackups: cfg.Report.MaxBackups,
		MaxAgeDays: cfg.Report.MaxAgeDays,
	})

	// Default-parameter layers: loaded once, immutable afterwards.
	typeDefaults := make(map[string]params.Params, len(cfg.Defaults.Types))
	for key, layer := range cfg.Defaults.Types {
		typeDefaults[key] = params.FromMap(layer)
	}

	searchSvc := searchuc.New(engineClient, searchuc.Options{
		Fields: searchuc.Fields{
			ACL:       cfg.Fields.ACL,
			Type:      cfg.Fields.Type,
			RoomID:    cfg.Fields.RoomID,
			MessageID: cfg.Fields.MessageID,
			Updated:   cfg.Fields.Updated,
		},
		UniqueKey:      cfg.Engine.UniqueKey,
		GlobalDefaults: params.FromMap(cfg.Defaults.Params),
		TypeDefaults:   typeDefaults,
		FileEnabled:    cfg.Search.FileEnabled,
		Client:         cfg.Engine.Core,
	}, reporter, logger)

	suggestSvc := suggestuc.New(engineClient, suggestuc.Fields{
		ACL:        cfg.Fields.ACL,
		Type:       cfg.Fields.Type,
		Suggestion: cfg.Fields.Suggestion,
	}, cfg.Search.SuggestionSize, cfg.Engine.Core, reporter, logger)

	healthSvc := healthuc.New(engineClient, healthuc.Options{
		TypeField:      cfg.Fields.Type,
		CreatedField:   cfg.Fields.Created,
		GeneralEnabled: cfg.Search.GeneralSearchEnabled(),
		FileEnabled:    cfg.Search.FileEnabled,
		MaxFileSize:    cfg.Search.MaxFileSize,
		Client:         cfg.Engine.Core,
	}, reporter, logger)

	server := chiTransport.NewServer(searchSvc, suggestSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// requestLogMiddleware emits one canonical log line per request and
// stores a request-scoped logger in the context.
func requestLogMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.WithContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
