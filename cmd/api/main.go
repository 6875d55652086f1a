package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/azizikri/claims-management/internal/config"
	httphandler "github.com/azizikri/claims-management/internal/delivery/http"
	"github.com/azizikri/claims-management/internal/delivery/kafka"
	"github.com/azizikri/claims-management/internal/logging"
	"github.com/azizikri/claims-management/internal/metrics"
	"github.com/azizikri/claims-management/internal/repository"
	"github.com/azizikri/claims-management/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	service := usecase.NewRecordService(store, m, logger)

	g, gctx := errgroup.WithContext(ctx)

	var (
		gateway usecase.RecordGateway
		clients []*kgo.Client
	)
	if cfg.EventDriven() {
		kgateway, kclients, err := startEventDriven(gctx, g, cfg, service, logger)
		if err != nil {
			return err
		}
		gateway = kgateway
		clients = kclients
	} else {
		gateway = kafka.NewDirectGateway(service)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			logger.Warn("health check failed", "error", err)
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	httphandler.NewHandler(gateway, logger).Routes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metrics.Handler(registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	for name, s := range map[string]*http.Server{"api": srv, "metrics": metricsSrv} {
		g.Go(func() error {
			logger.Info("starting server", "server", name, "addr", s.Addr)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, s := range []*http.Server{srv, metricsSrv} {
			if err := s.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		for _, c := range clients {
			c.Close()
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// openStore connects the backend named by STORE_DRIVER and prepares its
// schema. The returned func releases the connection.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to mongo: %w", err)
		}
		disconnect := func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}

		db := client.Database(cfg.MongoDatabase)
		store := repository.NewMongo(db)
		if err := store.Ping(ctx); err != nil {
			disconnect()
			return nil, nil, err
		}
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			disconnect()
			return nil, nil, err
		}
		logger.Info("connected to mongo", "database", cfg.MongoDatabase)
		return store, disconnect, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store, records are lost on exit")
		return repository.NewInMemory(), func() {}, nil

	default:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("unable to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("unable to ping database: %w", err)
		}
		if err := repository.RunMigrations(ctx, pool, cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("connected to postgres", "host", cfg.DBHost, "database", cfg.DBName)
		return repository.NewPostgres(pool), pool.Close, nil
	}
}

// startEventDriven creates the Kafka clients, ensures topics and starts the
// request consumer and the reply poller in g.
func startEventDriven(ctx context.Context, g *errgroup.Group, cfg *config.Config, service *usecase.RecordService, logger *slog.Logger) (*kafka.Gateway, []*kgo.Client, error) {
	brokers := strings.Split(cfg.KafkaBrokers, ",")

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(cfg.KafkaClientID),
		kgo.ConsumerGroup(cfg.KafkaGroupID),
		kgo.ConsumeTopics(kafka.RequestTopics...),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	if err := kafka.EnsureTopics(ctx, client, cfg, logger); err != nil {
		logger.Warn("failed to ensure topics", "error", err)
	}

	replyClient, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(cfg.KafkaClientID+"-reply"),
		kgo.ConsumeTopics(kafka.ReplyTopic(cfg.KafkaInstanceID)),
	)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to create reply kafka client: %w", err)
	}

	gateway := kafka.NewGateway(cfg, client, service, logger)
	consumer := kafka.NewConsumer(client, service, logger)

	g.Go(func() error {
		consumer.Start(ctx)
		return nil
	})
	g.Go(func() error {
		gateway.ConsumeReplies(ctx, replyClient)
		return nil
	})

	logger.Info("event driven mode enabled", "brokers", brokers, "reply_topic", kafka.ReplyTopic(cfg.KafkaInstanceID))
	return gateway, []*kgo.Client{client, replyClient}, nil
}
