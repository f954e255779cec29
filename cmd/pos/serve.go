package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"github.com/urfave/cli/v2"

	"github.com/tair/station-pos/docs"
	"github.com/tair/station-pos/internal/config"
	"github.com/tair/station-pos/internal/inventory"
	"github.com/tair/station-pos/internal/store"
	"github.com/tair/station-pos/internal/store/gormstore"
	"github.com/tair/station-pos/internal/store/memstore"
	"github.com/tair/station-pos/internal/transaction"
	"github.com/tair/station-pos/internal/transaction/numbering"
	"github.com/tair/station-pos/internal/transaction/usecase/command"
	"github.com/tair/station-pos/kafka"
	"github.com/tair/station-pos/pkg/auth"
	"github.com/tair/station-pos/pkg/database"
	"github.com/tair/station-pos/pkg/grpcserver"
	"github.com/tair/station-pos/pkg/logger"
	"github.com/tair/station-pos/pkg/middleware"
	"github.com/tair/station-pos/pkg/tracing"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP and gRPC servers",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "auto-migrate",
				Usage: "create the schema with gorm AutoMigrate instead of SQL migrations",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("env-file"))
			if err != nil {
				return err
			}
			return serve(c.Context, cfg, c.Bool("auto-migrate"))
		},
	}
}

// publisher is every event the service emits
type publisher interface {
	command.EventPublisher
	Close() error
}

func serve(parent context.Context, cfg *config.Config, autoMigrate bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Init(cfg.ServiceName, cfg.IsDevelopment(), cfg.LogLevel)
	logger.Logger.Info().
		Str("environment", cfg.Environment).
		Str("store", cfg.StoreDriver).
		Bool("kafka", cfg.KafkaEnabled()).
		Bool("redis", cfg.RedisEnabled()).
		Msg("Starting station POS")

	tp, err := tracing.InitTracer(cfg.ServiceName, cfg.JaegerEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	s, closeStore, err := openStore(cfg, autoMigrate)
	if err != nil {
		return err
	}
	defer closeStore()

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = numbering.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}
	numbers := newNumberGenerator(redisClient)

	events, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer events.Close()

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	authn := middleware.NewAuthenticator(tokens)

	txHandler, err := transaction.InitializeHTTPHandler(s, numbers, events, authn, command.SettlementOptions{
		MaxNumberAttempts:   cfg.MaxNumberAttempts,
		AutoApplyPromotions: cfg.AutoApplyPromotions,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize transaction handler: %w", err)
	}
	invHandler, err := inventory.InitializeHTTPHandler(s, events, authn)
	if err != nil {
		return fmt.Errorf("failed to initialize inventory handler: %w", err)
	}

	if cfg.KafkaEnabled() {
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, []string{kafka.TopicStockReceived})
		if err != nil {
			return err
		}
		defer consumer.Close()
		consumer.OnStockReceived(inventory.InitializeStockReceivedHandler(s, events).HandleStockReceived)
		if err := consumer.Start(ctx); err != nil {
			return err
		}
	}

	router := newRouter(cfg, s, redisClient, txHandler, invHandler)
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           middleware.SetupCORS(middleware.DefaultConfig(cfg.HTTPTimeout))(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer := grpcserver.New(tokens)
	go grpcServer.WatchHealth(ctx, 10*time.Second, s)

	errs := make(chan error, 2)
	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/index.html").
			Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		if err := grpcServer.ListenAndServe(":" + cfg.GRPCPort); err != nil {
			errs <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Logger.Info().Msg("Shutting down server...")
	case err = <-errs:
		logger.Logger.Error().Err(err).Msg("Server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	grpcServer.GracefulStop()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Logger.Warn().Err(shutdownErr).Msg("HTTP shutdown incomplete")
	}
	return err
}

func newRouter(cfg *config.Config, s store.Store, redisClient *redis.Client, routes ...interface{ RegisterRoutes(*mux.Router) }) *mux.Router {
	router := mux.NewRouter()
	middleware.Register(router, middleware.DefaultConfig(cfg.HTTPTimeout))
	if redisClient != nil && cfg.RateLimitPerMinute > 0 {
		router.Use(middleware.NewRateLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute).Middleware)
	}

	for _, r := range routes {
		r.RegisterRoutes(router)
	}

	router.HandleFunc("/health", healthCheck(s)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler())

	docs.SwaggerInfo.Host = ""
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	return router
}

// healthCheck godoc
// @Summary Health check
// @Description Check service health and store connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func healthCheck(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := s.Ping(r.Context()); err != nil {
			logger.Warn(r.Context()).Err(err).Msg("Health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"status":"unhealthy"}`)
			return
		}
		fmt.Fprint(w, `{"status":"healthy"}`)
	}
}

func openStore(cfg *config.Config, autoMigrate bool) (store.Store, func(), error) {
	if cfg.StoreDriver == "memory" {
		logger.Logger.Warn().Msg("Using in-memory store; nothing survives a restart")
		return memstore.New(), func() {}, nil
	}

	db, err := database.NewGormConnection(databaseConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	s := gormstore.New(db)
	if autoMigrate {
		if err := s.AutoMigrate(); err != nil {
			sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Logger.Info().Msg("Database schema auto-migrated")
	}
	return s, func() { sqlDB.Close() }, nil
}

func newNumberGenerator(client *redis.Client) *numbering.Generator {
	if client == nil {
		return numbering.NewGenerator(nil)
	}
	return numbering.NewGenerator(numbering.NewRedisSequence(client))
}

func newPublisher(cfg *config.Config) (publisher, error) {
	if !cfg.KafkaEnabled() {
		return kafka.NoopPublisher{}, nil
	}
	p, err := kafka.NewPublisher(cfg.KafkaBrokers)
	if err != nil {
		return nil, err
	}
	return p, nil
}
