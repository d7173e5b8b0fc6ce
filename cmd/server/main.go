// Command server runs the soulbound credential service: institution
// registry, credential lifecycle, and private-data access control behind a
// single HTTP API, with metrics on a separate listener.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	accesshandler "soulbound/internal/access/handler"
	accessmetrics "soulbound/internal/access/metrics"
	accessports "soulbound/internal/access/ports"
	accessservice "soulbound/internal/access/service"
	accessstore "soulbound/internal/access/store"
	credentialhandler "soulbound/internal/credential/handler"
	credentialmetrics "soulbound/internal/credential/metrics"
	credentialservice "soulbound/internal/credential/service"
	credentialstore "soulbound/internal/credential/store"
	"soulbound/internal/credential/tracer"
	"soulbound/internal/events"
	jwttoken "soulbound/internal/jwt_token"
	"soulbound/internal/platform/config"
	"soulbound/internal/platform/database"
	"soulbound/internal/platform/health"
	"soulbound/internal/platform/logger"
	"soulbound/internal/platform/redis"
	registryhandler "soulbound/internal/registry/handler"
	registrymetrics "soulbound/internal/registry/metrics"
	registryservice "soulbound/internal/registry/service"
	registrystore "soulbound/internal/registry/store"
	transporthttp "soulbound/internal/transport/http"
	"soulbound/migrations"
	"soulbound/pkg/domain"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	owner, err := domain.ParseIdentity(cfg.Owner)
	if err != nil || owner.IsZero() {
		log.Error("SOULBOUND_OWNER must be a valid non-zero identity", "error", err)
		os.Exit(1)
	}
	if cfg.OwnerTokenHash == "" {
		log.Error("SOULBOUND_OWNER_TOKEN_HASH is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
		if err := migrations.Apply(ctx, pool.DB()); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		log.Info("database connected, migrations applied")
	} else {
		log.Info("no database configured, using in-memory stores")
	}

	redisClient, err := redis.New(redis.Config{Addr: cfg.RedisAddr})
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	kafkaSink, err := events.NewKafkaSink(events.KafkaConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaEventTopic,
	})
	if err != nil {
		log.Error("kafka event sink failed", "error", err)
		os.Exit(1)
	}

	eventStore := events.NewInMemoryStore()
	publisherOpts := []events.PublisherOption{
		events.WithAsyncBuffer(cfg.EventBuffer),
		events.WithLogger(log),
	}
	if kafkaSink != nil {
		defer kafkaSink.Close()
		publisherOpts = append(publisherOpts, events.WithSink(kafkaSink))
	}
	if redisClient != nil {
		publisherOpts = append(publisherOpts, events.WithSink(events.NewRedisSink(redisClient.Client, "")))
	}
	publisher := events.NewPublisher(eventStore, publisherOpts...)
	defer publisher.Close()

	var (
		institutionStore registryservice.Store
		credStore        credentialservice.Store
		grantStore       accessservice.Store
	)
	if pool != nil {
		institutionStore = registrystore.NewPostgres(pool.DB())
		credStore = credentialstore.NewPostgres(pool.DB())
		grantStore = accessstore.NewPostgres(pool.DB())
	} else {
		institutionStore = registrystore.NewInMemory()
		credStore = credentialstore.NewInMemory()
		grantStore = accessstore.NewInMemory()
	}

	registrySvc := registryservice.New(owner, institutionStore,
		registryservice.WithLogger(log),
		registryservice.WithEventPublisher(publisher),
		registryservice.WithMetrics(registrymetrics.New()),
	)
	accessSvc := accessservice.New(owner, accessports.NewStoreAdapter(credStore), grantStore,
		accessservice.WithLogger(log),
		accessservice.WithEventPublisher(publisher),
		accessservice.WithMetrics(accessmetrics.New()),
	)
	credentialSvc := credentialservice.New(registrySvc, credStore,
		credentialservice.WithLogger(log),
		credentialservice.WithEventPublisher(publisher),
		credentialservice.WithMetrics(credentialmetrics.New()),
		credentialservice.WithTracer(tracer.NewOTel()),
		credentialservice.WithAccessGranter(accessSvc),
	)

	tokenSvc := jwttoken.NewService(cfg.JWTSigningKey, "soulbound", cfg.TokenTTL)

	healthHandler := health.New()
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(checkCtx)
		})
	}
	if redisClient != nil {
		healthHandler.RegisterCheck("redis", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(checkCtx)
		})
	}
	if kafkaSink != nil {
		healthHandler.RegisterCheck("kafka", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if !kafkaSink.Healthy(checkCtx) {
				return errors.New("kafka unreachable")
			}
			return nil
		})
	}

	router := transporthttp.New(transporthttp.Config{
		Logger:         log,
		TokenValidator: tokenSvc,
		Owner:          owner,
		OwnerTokenHash: cfg.OwnerTokenHash,
		Registry:       registryhandler.New(registrySvc, log),
		Credentials:    credentialhandler.New(credentialSvc, log),
		Access:         accesshandler.New(accessSvc, log),
		Events:         events.NewHandler(eventStore, log),
		Health:         healthHandler,
	})

	apiServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("api server listening", "addr", cfg.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("metrics server listening", "addr", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
		return apiServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
