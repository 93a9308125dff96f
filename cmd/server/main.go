package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"attestra/internal/advisory"
	"attestra/internal/anchor"
	"attestra/internal/compliance"
	"attestra/internal/compliance/metrics"
	"attestra/internal/fetch"
	"attestra/internal/ledger"
	"attestra/internal/platform/config"
	"attestra/internal/platform/httpserver"
	"attestra/internal/platform/logger"
	"attestra/internal/platform/middleware"
	"attestra/internal/platform/redisclient"
	"attestra/internal/scheduler"
	httpapi "attestra/internal/transport/http"
	"attestra/internal/verdictstream"
)

// main wires the dependency graph and owns the process lifecycle. Business
// logic lives in the internal services.
func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	log := logger.New(slog.LevelInfo)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}
	policy, err := cfg.ResolvePolicy()
	if err != nil {
		log.Error("policy resolution failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Ledger store: Postgres when configured, in-memory otherwise.
	var store ledger.Store = ledger.NewInMemoryStore()
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pgStore := ledger.NewPostgres(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Error("postgres schema failed", "error", err)
			os.Exit(1)
		}
		store = pgStore
	}

	auditLedger, err := ledger.New(ctx, store, log)
	if err != nil {
		log.Error("ledger init failed", "error", err)
		os.Exit(1)
	}

	// Snapshot gathering: HTTP sources plus an optional Redis outage cache.
	var reserveSource fetch.ReserveSource = fetch.UnconfiguredSource{}
	var liabilitySource fetch.LiabilitySource = fetch.UnconfiguredSource{}
	sourcesConfigured := cfg.ReservesURL != "" && cfg.LiabilitiesURL != ""
	if sourcesConfigured {
		httpClient := &http.Client{Timeout: 10 * time.Second}
		source := fetch.NewHTTPSource(httpClient, cfg.ReservesURL, cfg.LiabilitiesURL)
		reserveSource = source
		liabilitySource = source
	}

	gatherOpts := []fetch.GathererOption{fetch.WithMetrics(m)}
	if cfg.RedisAddr != "" {
		redisClient, err := redisclient.New(ctx, cfg.RedisAddr)
		if err != nil {
			log.Error("redis connect failed", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		gatherOpts = append(gatherOpts, fetch.WithCache(fetch.NewSnapshotCache(redisClient)))
	}
	gatherer := fetch.NewGatherer(reserveSource, liabilitySource, log, gatherOpts...)

	// Verdict fan-out: Kafka when brokers are configured.
	var publisher verdictstream.Publisher = verdictstream.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := verdictstream.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		publisher = kafka
	}

	service, err := compliance.NewService(
		compliance.NewEngine(),
		gatherer,
		auditLedger,
		policy,
		log,
		m,
		compliance.WithPublisher(verdictstream.NewServiceAdapter(publisher)),
		compliance.WithAdvisor(advisory.NewTemplateExplainer()),
		compliance.WithSubmitter(anchor.NewLogSubmitter(log)),
	)
	if err != nil {
		log.Error("service init failed", "error", err)
		os.Exit(1)
	}

	auth := middleware.NewAuditorAuth(cfg.AuditorJWTKey, cfg.AuditorAPIKeyBcrypt, log)
	handler := httpapi.New(service, auditLedger, auth, log)
	srv := httpserver.New(cfg.Addr, handler.Router())

	if sourcesConfigured {
		sched := scheduler.New(scheduler.RunnerFunc(func(ctx context.Context) error {
			_, err := service.RunCycle(ctx)
			return err
		}), cfg.EvalInterval, log)
		go func() {
			if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("scheduler stopped", "error", err)
			}
		}()
	} else {
		log.Warn("no snapshot sources configured; scheduled evaluation disabled")
	}

	go func() {
		log.Info("starting attestra", "addr", cfg.Addr, "policy_version", policy.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
