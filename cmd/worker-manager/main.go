package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"listing-workers/internal/common/camunda"
	"listing-workers/internal/common/config"
	"listing-workers/internal/common/database"
	"listing-workers/internal/common/logger"
	"listing-workers/internal/common/observability"
	"listing-workers/internal/listing/catalog"
	"listing-workers/internal/listing/markup"
	"listing-workers/pkg/registry"

	cf "listing-workers/internal/workers/listing/clear-filters"
	fl "listing-workers/internal/workers/listing/filter-listings"
	pfc "listing-workers/internal/workers/listing/parse-filter-criteria"
	rl "listing-workers/internal/workers/listing/render-listings"
)

var connectRetry = camunda.RetryConfig{
	MaxRetries: 15,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("catalogSource", cfg.Catalog.Source),
	)

	obs, err := observability.New(cfg.Observability.ServiceName)
	if err != nil {
		zapLog.Warn("otel meter unavailable, continuing without it", zap.Error(err))
	}
	if cfg.Observability.JaegerEndpoint != "" {
		tracing, err := observability.NewTracing(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
		if err != nil {
			zapLog.Warn("tracing disabled", zap.Error(err))
		} else {
			obs.WithTracing(tracing)
		}
	}
	defer obs.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.String("path", cfg.Registry.Path), zap.Error(err))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry is invalid", zap.Error(err))
	}

	deps, ready, closeDeps, err := connectCatalogDeps(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("catalog dependencies unavailable", zap.Error(err))
	}
	defer closeDeps()

	source, err := catalog.FromConfig(cfg.Catalog, deps, log)
	if err != nil {
		zapLog.Fatal("catalog source setup failed", zap.Error(err))
	}
	catalogs := catalog.NewSet(cfg.Catalog.Name).Add(cfg.Catalog.Name, source)

	zeebeClient, err := camunda.Connect(ctx, cfg.Camunda, camunda.DefaultRetryConfig, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	workers := camunda.NewWorkers(zeebeClient, log)

	if wcfg := config.GetWorkerConfig(cfg, pfc.TaskType); wcfg.Enabled {
		handler := pfc.NewHandler(&pfc.Config{Timeout: taskTimeout(reg, pfc.TaskType, wcfg)}, obs, log)
		workers.Start(pfc.TaskType, wcfg, handler.Handle)
	}

	if wcfg := config.GetWorkerConfig(cfg, fl.TaskType); wcfg.Enabled {
		handler := fl.NewHandler(
			&fl.Config{
				Timeout:     taskTimeout(reg, fl.TaskType, wcfg),
				InputSchema: inputSchema(reg, fl.TaskType),
			},
			catalogs, obs, log,
		)
		workers.Start(fl.TaskType, wcfg, handler.Handle)
	}

	if wcfg := config.GetWorkerConfig(cfg, cf.TaskType); wcfg.Enabled {
		handler := cf.NewHandler(&cf.Config{Timeout: taskTimeout(reg, cf.TaskType, wcfg)}, catalogs, obs, log)
		workers.Start(cf.TaskType, wcfg, handler.Handle)
	}

	if wcfg := config.GetWorkerConfig(cfg, rl.TaskType); wcfg.Enabled {
		handler := rl.NewHandler(
			&rl.Config{
				Timeout:     taskTimeout(reg, rl.TaskType, wcfg),
				Selectors:   selectors(cfg.Markup),
				InputSchema: inputSchema(reg, rl.TaskType),
			},
			obs, log,
		)
		workers.Start(rl.TaskType, wcfg, handler.Handle)
	}

	zapLog.Info("workers registered", zap.Int("count", workers.Count()))

	server := newHealthServer(cfg.Observability.MetricsAddress, ready)
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workers.Close(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// readyCheck reports whether the catalog can be served.
type readyCheck func(ctx context.Context) error

// connectCatalogDeps opens only the stores the configured catalog needs. The
// returned check confirms the catalog table or index is present.
func connectCatalogDeps(ctx context.Context, cfg *config.Config, log logger.Logger) (catalog.Deps, readyCheck, func(), error) {
	var deps catalog.Deps
	var closers []func() error
	ready := readyCheck(func(context.Context) error { return nil })
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	switch cfg.Catalog.Source {
	case config.SourcePostgres:
		var pg *database.PostgresClient
		err := camunda.RetryWithBackoff(ctx, connectRetry, log, "PostgreSQL connection", func(ctx context.Context) error {
			var err error
			if pg == nil {
				if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
					return err
				}
			}
			return pg.Ping(ctx)
		})
		if err != nil {
			return deps, ready, closeAll, err
		}
		closers = append(closers, pg.Close)
		deps.DB = pg.DB
		table := cfg.Catalog.Table
		ready = func(ctx context.Context) error {
			return catalogPresent(pg.TableExists(ctx, table))("table", table)
		}
		log.Info("PostgreSQL connected successfully", nil)

	case config.SourceElasticsearch:
		var es *database.ElasticsearchClient
		err := camunda.RetryWithBackoff(ctx, connectRetry, log, "Elasticsearch connection", func(ctx context.Context) error {
			var err error
			if es == nil {
				if es, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
					return err
				}
			}
			return es.Ping(ctx)
		})
		if err != nil {
			return deps, ready, closeAll, err
		}
		deps.Elasticsearch = es.Client
		index := cfg.Catalog.Index
		ready = func(ctx context.Context) error {
			return catalogPresent(es.IndexExists(ctx, index))("index", index)
		}
		log.Info("Elasticsearch connected successfully", nil)
	}

	if cfg.Catalog.CacheTTL > 0 {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return deps, ready, closeAll, err
		}
		// cache reads fall through to the origin while redis is down
		if err := rdb.Ping(ctx); err != nil {
			log.Warn("redis unavailable, catalog cache will miss", map[string]interface{}{"error": err})
		} else if keys, err := rdb.CachedCatalogs(ctx, catalog.CacheKey("")); err == nil {
			log.Info("catalog cache connected", map[string]interface{}{"cachedCatalogs": len(keys)})
		}
		closers = append(closers, rdb.Close)
		deps.Redis = rdb.Client
	}

	return deps, ready, closeAll, nil
}

// catalogPresent turns an existence lookup into a readiness error.
func catalogPresent(exists bool, err error) func(kind, name string) error {
	return func(kind, name string) error {
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("catalog %s %q not found", kind, name)
		}
		return nil
	}
}

func inputSchema(reg *registry.ActivityRegistry, taskType string) map[string]interface{} {
	if activity, ok := reg.Find(taskType); ok {
		return activity.InputSchema
	}
	return nil
}

// taskTimeout is the execution budget for one job: the registry's declared
// timeout, or the worker's job timeout when the registry has none.
func taskTimeout(reg *registry.ActivityRegistry, taskType string, wcfg config.WorkerConfig) time.Duration {
	if activity, ok := reg.Find(taskType); ok {
		if d, err := activity.TimeoutDuration(); err == nil && d > 0 {
			return d
		}
	}
	return config.GetDuration(wcfg.Timeout)
}

func selectors(mcfg config.MarkupConfig) markup.Selectors {
	sel := markup.DefaultSelectors()
	if mcfg.CardSelector != "" {
		sel.Card = mcfg.CardSelector
	}
	if mcfg.NoResultsSelector != "" {
		sel.NoResults = mcfg.NoResultsSelector
	}
	return sel
}

func newHealthServer(addr string, ready readyCheck) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", "")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err.Error())
			return
		}
		writeStatus(w, http.StatusOK, "ready", "")
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func writeStatus(w http.ResponseWriter, code int, status, reason string) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if reason != "" {
		body["reason"] = reason
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
