package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"vetgate/internal/audit"
	candidatehandler "vetgate/internal/candidate/handler"
	candidateservice "vetgate/internal/candidate/service"
	candidatestore "vetgate/internal/candidate/store"
	httpapi "vetgate/internal/http"
	"vetgate/internal/jobs"
	"vetgate/internal/jobs/inprocess"
	"vetgate/internal/jobs/redisq"
	"vetgate/internal/platform/config"
	"vetgate/internal/platform/httpserver"
	"vetgate/internal/platform/logger"
	"vetgate/internal/platform/metrics"
	"vetgate/internal/platform/postgres"
	platformredis "vetgate/internal/platform/redis"
	verificationhandler "vetgate/internal/verification/handler"
	"vetgate/internal/verification/orchestrator"
	"vetgate/internal/verification/providers"
	"vetgate/internal/verification/providers/dataset"
	"vetgate/internal/verification/providers/exclusions"
	checkregistry "vetgate/internal/verification/registry"
	verificationservice "vetgate/internal/verification/service"
	id "vetgate/pkg/domain"
)

// main wires environment-selected backends into services and keeps the server
// lifecycle small. Business logic lives in the internal feature packages.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("vetgate exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	static, err := checkregistry.Load()
	if err != nil {
		return fmt.Errorf("load check registry: %w", err)
	}

	// Storage backend selection: a connection string switches candidates,
	// reference lists, and the audit trail from in-memory to Postgres.
	var (
		candidates candidatestore.Store
		refStore   dataset.Store
		auditStore audit.Store
		health     = map[string]func() error{}
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		candidates = candidatestore.NewPostgres(db)
		refStore = dataset.NewPostgres(db)
		auditStore = audit.NewPostgres(db)
		health["postgres"] = db.Ping
		log.Info("using postgres storage")
	} else {
		candidates = candidatestore.NewInMemoryStore()
		seeded, err := dataset.NewSeededInMemoryStore()
		if err != nil {
			return fmt.Errorf("seed reference lists: %w", err)
		}
		refStore = seeded
		auditStore = audit.NewInMemoryStore()
		log.Info("using in-memory storage")
	}

	publisherOpts := []audit.PublisherOption{audit.WithLogger(log)}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, audit.WithKafkaLogger(log))
		if err != nil {
			return fmt.Errorf("connect kafka audit sink: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = sink.Close(flushCtx)
		}()
		publisherOpts = append(publisherOpts, audit.WithSink(sink))
		log.Info("audit events forwarded to kafka", slog.Any("brokers", cfg.KafkaBrokers))
	}
	publisher := audit.NewPublisher(auditStore, publisherOpts...)

	m := metrics.New()

	registry := providers.NewRegistry(static)
	for _, listType := range dataset.ListTypes() {
		if err := registry.Register(dataset.New(listType, static.LabelFor(listType), refStore)); err != nil {
			return fmt.Errorf("register %s provider: %w", listType, err)
		}
	}
	if err := registry.Register(exclusions.New(exclusions.Config{
		BaseURL: cfg.ExclusionsBaseURL,
		APIKey:  cfg.ExclusionsAPIKey,
	})); err != nil {
		return fmt.Errorf("register exclusions provider: %w", err)
	}

	orch := orchestrator.New(static, registry, orchestrator.WithLogger(log))
	verifySvc := verificationservice.New(candidates, orch, static,
		verificationservice.WithLogger(log),
		verificationservice.WithAuditPublisher(publisher),
		verificationservice.WithMetrics(m),
	)
	candidateSvc := candidateservice.New(candidates, verifySvc,
		candidateservice.WithLogger(log),
		candidateservice.WithAuditPublisher(publisher),
		candidateservice.WithMetrics(m),
	)

	processor := jobs.ProcessorFunc(func(ctx context.Context, candidateID id.CandidateID) error {
		_, err := verifySvc.Run(ctx, candidateID)
		return err
	})

	// Queue backend selection: a broker URL switches from in-process
	// goroutines to the durable Redis queue with a worker loop.
	g, gctx := errgroup.WithContext(ctx)
	var queue jobs.Queue
	rclient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rclient != nil {
		defer rclient.Close()
		rq := redisq.New(rclient.Client, processor,
			redisq.WithLogger(log),
			redisq.WithAuditPublisher(publisher),
			redisq.WithMetrics(m),
		)
		queue = rq
		health["redis"] = func() error { return rclient.Health(context.Background()) }
		g.Go(func() error { return rq.RunWorker(gctx) })
		log.Info("using redis job queue")
	} else {
		queue = inprocess.New(processor,
			inprocess.WithLogger(log),
			inprocess.WithAuditPublisher(publisher),
			inprocess.WithMetrics(m),
		)
		log.Info("using in-process job queue")
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:     log,
		Candidates: candidatehandler.New(candidateSvc, log),
		Compliance: verificationhandler.New(verifySvc, log,
			verificationhandler.WithQueue(queue),
			verificationhandler.WithAuditPublisher(publisher),
			verificationhandler.WithMetrics(m),
		),
		HealthFuncs: health,
	})

	srv := httpserver.New(cfg.Addr, router)
	g.Go(func() error { return httpserver.Run(gctx, srv, config.ShutdownGrace) })
	log.Info("vetgate listening", slog.String("addr", cfg.Addr))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
