package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/venuekit/venuekit/pkg/audit"
	"github.com/venuekit/venuekit/pkg/config"
	"github.com/venuekit/venuekit/pkg/logger"
	"github.com/venuekit/venuekit/pkg/pg"
	"github.com/venuekit/venuekit/pkg/queue"
	"github.com/venuekit/venuekit/pkg/redis"
	"github.com/venuekit/venuekit/pkg/webhook"
	"github.com/venuekit/venuekit/svc/booking"
	"github.com/venuekit/venuekit/svc/eventsync"
	"github.com/venuekit/venuekit/svc/provider"
	"github.com/venuekit/venuekit/svc/social"
	"github.com/venuekit/venuekit/svc/webhooks"
)

type appConfig struct {
	Environment  string `env:"APP_ENV" envDefault:"development"`
	ServiceName  string `env:"SERVICE_NAME" envDefault:"venuekit-worker"`
	Storage      string `env:"QUEUE_STORAGE" envDefault:"memory"` // memory | redis | postgres
	MetricsAddr  string `env:"METRICS_ADDR" envDefault:":9090"`
	AppSecretKey string `env:"APP_SECRET_KEY"`

	Queue queue.Config
}

// jobStorage is the combined storage surface shared by the enqueuer and the
// workers.
type jobStorage interface {
	queue.EnqueuerRepository
	queue.WorkerRepository
}

func main() {
	if err := run(); err != nil {
		slog.Error("worker exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load[appConfig]()
	if err != nil {
		return err
	}

	log := logger.New(logger.WithEnvironment(cfg.Environment, cfg.ServiceName))
	logger.SetAsDefault(log)

	storage, cleanup, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := queue.NewMetrics(registry)

	workers, err := buildWorkers(cfg, storage, metrics, log)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		g.Go(w.Run(ctx))
	}
	g.Go(serveMetrics(ctx, cfg.MetricsAddr, registry, log))

	log.Info("worker pools started",
		slog.String("storage", cfg.Storage),
		slog.String("metrics_addr", cfg.MetricsAddr))

	return g.Wait()
}

func openStorage(ctx context.Context, cfg appConfig, log *slog.Logger) (jobStorage, func(), error) {
	switch cfg.Storage {
	case "memory":
		s := queue.NewMemoryStorage()
		return s, func() { _ = s.Close() }, nil

	case "redis":
		redisCfg, err := config.Load[redis.Config]()
		if err != nil {
			return nil, nil, err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return nil, nil, err
		}
		s, err := queue.NewRedisStorage(client)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return s, func() { _ = client.Close() }, nil

	case "postgres":
		pgCfg, err := config.Load[pg.Config]()
		if err != nil {
			return nil, nil, err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, nil, err
		}
		s, err := queue.NewPGStorage(pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown queue storage %q", cfg.Storage)
	}
}

// buildWorkers wires the four pipelines onto their queues. The entity stores
// default to the in-memory implementations until the persistence service
// is linked in; swap them out here when wiring real storage.
func buildWorkers(cfg appConfig, storage jobStorage, metrics *queue.Metrics, log *slog.Logger) ([]*queue.Worker, error) {
	auditLog := audit.NewLogger(audit.NewMemoryStorage())

	accountStore := provider.NewMemoryAccountStore()
	adapterRegistry := provider.NewRegistry()

	var cipher *provider.TokenCipher
	if cfg.AppSecretKey != "" {
		var err error
		if cipher, err = provider.NewTokenCipher([]byte(cfg.AppSecretKey)); err != nil {
			return nil, fmt.Errorf("app secret key: %w", err)
		}
	}
	tokens := provider.NewTokenService(accountStore, adapterRegistry, cipher, log)

	socialPipeline := social.NewPipeline(
		social.NewMemoryPostStore(), accountStore, adapterRegistry, tokens, auditLog, log)
	syncPipeline := eventsync.NewPipeline(
		eventsync.NewMemoryStore(), accountStore, adapterRegistry, tokens, auditLog, log)
	webhookStore := webhooks.NewMemoryStore()
	deliveryPipeline := webhooks.NewPipeline(webhookStore, webhookStore, webhook.NewSender(), log)
	expiryPipeline := booking.NewExpiryPipeline(booking.NewMemoryRequestStore(), auditLog, log)

	queueHandlers := map[string]queue.Handler{
		queue.QueueSocialPublish:   socialPipeline.Handler(),
		queue.QueueEventSync:       syncPipeline.Handler(),
		queue.QueueWebhookDelivery: deliveryPipeline.Handler(),
		queue.QueueHoldExpiry:      expiryPipeline.Handler(),
	}

	workers := make([]*queue.Worker, 0, len(queueHandlers))
	for queueName, handler := range queueHandlers {
		w, err := queue.NewWorker(storage,
			queue.WithQueues(queueName),
			queue.WithPullInterval(cfg.Queue.PollInterval),
			queue.WithLockTimeout(cfg.Queue.LockTimeout),
			queue.WithMaxConcurrentJobs(cfg.Queue.MaxConcurrentJobs),
			queue.WithWorkerLogger(log.With(logger.Queue(queueName))),
			queue.WithMetrics(metrics),
		)
		if err != nil {
			return nil, fmt.Errorf("build worker for %s: %w", queueName, err)
		}
		if err := w.RegisterHandler(handler); err != nil {
			return nil, fmt.Errorf("register handler for %s: %w", queueName, err)
		}
		workers = append(workers, w)
	}
	return workers, nil
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry, log *slog.Logger) func() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	return func() error {
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("metrics server shutdown failed", slog.Any("error", err))
			}
		}()

		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
