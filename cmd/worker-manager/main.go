// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"hiring-workers/internal/badge"
	"hiring-workers/internal/cache"
	awsclients "hiring-workers/internal/common/aws"
	"hiring-workers/internal/common/camunda"
	"hiring-workers/internal/common/config"
	"hiring-workers/internal/common/database"
	"hiring-workers/internal/common/logger"
	"hiring-workers/internal/common/observability"
	"hiring-workers/internal/common/retry"
	"hiring-workers/internal/common/validation"
	"hiring-workers/internal/directory"
	"hiring-workers/internal/lifecycle"
	"hiring-workers/internal/notification"
	"hiring-workers/internal/outbox"
	"hiring-workers/internal/search"
	"hiring-workers/internal/store/postgres"
	"hiring-workers/pkg/registry"

	aa "hiring-workers/internal/workers/application/approve-application"
	la "hiring-workers/internal/workers/application/list-applications"
	sa "hiring-workers/internal/workers/application/search-applications"
	sub "hiring-workers/internal/workers/application/submit-application"
	ta "hiring-workers/internal/workers/application/transition-application"
	eb "hiring-workers/internal/workers/gamification/evaluate-badges"
	mnr "hiring-workers/internal/workers/notification/mark-notification-read"
)

func main() {
	bootLog := logger.New("info", "console")
	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewFromConfig(cfg.Logging)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Dependencies, each retried until reachable ---
	var zeebe *camunda.Client
	if err := retry.Do(ctx, retry.DefaultPolicy, log, "Zeebe client initialization", func(ctx context.Context) error {
		var err error
		zeebe, err = camunda.NewClient(ctx, cfg.Camunda)
		return err
	}); err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	var pg *database.PostgresClient
	if err := retry.Do(ctx, retry.DefaultPolicy, log, "PostgreSQL connection", func(ctx context.Context) error {
		var err error
		if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
			return err
		}
		return pg.Ping(ctx)
	}); err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.RegisterMetrics(prometheus.DefaultRegisterer, cfg.Database.Postgres.Database); err != nil {
		zapLog.Warn("postgres pool metrics not registered", zap.Error(err))
	}

	if cfg.Database.Postgres.MigrateOnStart {
		if err := postgres.Migrate(ctx, pg.DB); err != nil {
			zapLog.Fatal("schema migration failed", zap.Error(err))
		}
		zapLog.Info("schema migrated")
	}

	var rdb *database.RedisClient
	if err := retry.Do(ctx, retry.DefaultPolicy, log, "Redis connection", func(ctx context.Context) error {
		var err error
		if rdb, err = database.NewRedis(cfg.Database.Redis, cfg.App.Name); err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}); err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()

	var es *database.ElasticsearchClient
	if cfg.Search.Enabled {
		if err := retry.Do(ctx, retry.DefaultPolicy, log, "Elasticsearch connection", func(ctx context.Context) error {
			var err error
			if es, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
				return err
			}
			return es.Ping(ctx)
		}); err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
	}

	// --- Domain components ---
	pgStore := postgres.New(pg.DB)
	pgDirectory := postgres.NewDirectory(pg.DB)
	cachedDirectory := directory.NewCached(pgDirectory, rdb.Client, config.GetDuration(cfg.Cache.DirectoryTTL), log)

	var index *search.Index
	if es != nil {
		index = search.NewIndex(es.Client, cfg.Search.ApplicationIndex, cachedDirectory, log)
		if err := index.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("search index setup failed", zap.Error(err))
		}
	}

	listing := cache.NewListing(rdb.Client, config.GetDuration(cfg.Cache.ListingTTL), nil, log)
	coordinator := lifecycle.New(pgStore, cachedDirectory, log, lifecycle.WithListingCache(listing))

	channels, err := buildChannels(ctx, cfg, cachedDirectory)
	if err != nil {
		zapLog.Fatal("notification channels failed", zap.Error(err))
	}
	dispatcher := notification.NewDispatcher(pgStore, cachedDirectory, channels, log)
	evaluator := badge.NewEvaluator(pgStore, pgStore, pgDirectory, log, badge.WithNotifier(dispatcher))

	obs := observability.New(cfg.App.Name, prometheus.DefaultRegisterer, log)
	defer obs.Shutdown(context.Background())

	deps := outbox.Deps{Applications: pgStore, Notifier: dispatcher, Badges: evaluator}
	if index != nil {
		deps.Indexer = index
	}
	relay := outbox.NewRelay(pgStore, outbox.ConfigFrom(cfg.Outbox), log, outbox.WithObservability(obs))
	outbox.RegisterDefaults(relay, deps)

	// --- Workers ---
	reg, err := registry.Default()
	if err != nil {
		zapLog.Fatal("activity registry failed", zap.Error(err))
	}
	validator := validation.NewValidator(reg)

	var searcher sa.Searcher
	if index != nil {
		searcher = index
	}

	client := zeebe.GetClient()
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}
	handlers := map[string]camunda.JobHandlerFunc{
		sub.TaskType: sub.NewHandler(&sub.Config{Timeout: timeout(sub.TaskType)}, coordinator, validator, log).Handle,
		ta.TaskType:  ta.NewHandler(&ta.Config{Timeout: timeout(ta.TaskType)}, coordinator, validator, log).Handle,
		aa.TaskType:  aa.NewHandler(&aa.Config{Timeout: timeout(aa.TaskType)}, coordinator, validator, log).Handle,
		la.TaskType:  la.NewHandler(&la.Config{Timeout: timeout(la.TaskType)}, coordinator, validator, log).Handle,
		sa.TaskType:  sa.NewHandler(&sa.Config{Timeout: timeout(sa.TaskType)}, searcher, validator, log).Handle,
		eb.TaskType:  eb.NewHandler(&eb.Config{Timeout: timeout(eb.TaskType)}, evaluator, cachedDirectory, validator, log).Handle,
		mnr.TaskType: mnr.NewHandler(&mnr.Config{Timeout: timeout(mnr.TaskType)}, dispatcher, validator, log).Handle,
	}

	var jobWorkers []worker.JobWorker
	for taskType, handle := range handlers {
		if jw := camunda.StartWorker(client, taskType, config.GetWorkerConfig(cfg, taskType), handle, log); jw != nil {
			jobWorkers = append(jobWorkers, jw)
		}
	}
	zapLog.Info("workers registered", zap.Int("count", len(jobWorkers)))

	// --- Background loops ---
	var wg conc.WaitGroup
	if cfg.Outbox.Enabled {
		wg.Go(func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zapLog.Error("outbox relay stopped", zap.Error(err))
			}
		})
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newServeMux(zeebe, pg, rdb),
		ReadHeaderTimeout: 5 * time.Second,
	}
	wg.Go(func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	})

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, jw := range jobWorkers {
		jw.Close()
		jw.AwaitClose()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	wg.Wait()

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	zapLog.Info("Worker manager stopped gracefully")
}

// buildChannels assembles the enabled delivery channels. No enabled channel means
// notifications are only stored.
func buildChannels(ctx context.Context, cfg *config.Config, dir directory.Directory) (notification.Channel, error) {
	n := cfg.Notifications
	if !n.Email.Enabled && !n.SMS.Enabled {
		return nil, nil
	}

	awsCfg, err := awsclients.LoadConfig(ctx, n.AWS.Region)
	if err != nil {
		return nil, err
	}

	var channels notification.MultiChannel
	if n.Email.Enabled {
		channels = append(channels, notification.NewSESChannel(awsclients.NewSESClient(awsCfg), dir, n.Email.FromEmail))
	}
	if n.SMS.Enabled {
		channels = append(channels, notification.NewSNSChannel(awsclients.NewSNSClient(awsCfg), dir, n.SMS.SenderID))
	}
	return channels, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func newServeMux(zeebe *camunda.Client, pg, rdb pinger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		status := http.StatusOK
		for name, check := range map[string]func(context.Context) error{
			"zeebe":    zeebe.HealthCheck,
			"postgres": pg.Ping,
			"redis":    rdb.Ping,
		} {
			if err := check(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		checks["status"] = "ready"
		if status != http.StatusOK {
			checks["status"] = "not ready"
		}
		writeStatus(w, status, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
