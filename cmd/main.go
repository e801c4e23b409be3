package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/grpcapp"
	"github.com/MelvinKr/skybh/crew-compliance/internal/api/http/handlers"
	"github.com/MelvinKr/skybh/crew-compliance/internal/application/service"
	"github.com/MelvinKr/skybh/crew-compliance/internal/config"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/eligibility"
	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/ftl"
	postgres "github.com/MelvinKr/skybh/crew-compliance/internal/infrastructures/db/postgres/repo"
	cacheredis "github.com/MelvinKr/skybh/crew-compliance/internal/infrastructures/db/redis"
	"github.com/MelvinKr/skybh/crew-compliance/internal/infrastructures/tracing"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "crew-compliance"

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Log.Level)
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := tracing.Init(ctx, serviceName, cfg.Env, cfg.Telemetry)
	if err != nil {
		log.Fatal("failed to init telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Warn("failed to shutdown telemetry", zap.Error(err))
		}
	}()

	log.Info("crew-compliance starting",
		zap.String("env", cfg.Env),
		zap.String("http_addr", cfg.HTTP.Address()),
		zap.Float64("ftl_daily_flight_hours", cfg.FTL.DailyFlightHours),
	)

	dbCtx, cancelDB := context.WithTimeout(ctx, cfg.DB.Timeout)
	repo, err := postgres.New(dbCtx, cfg.DB.DatabaseURL())
	cancelDB()
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer repo.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warn("failed to close redis client", zap.Error(err))
		}
	}()

	evaluator, err := ftl.NewEvaluator(cfg.FTL)
	if err != nil {
		log.Fatal("invalid ftl limits", zap.Error(err))
	}
	validator, err := eligibility.NewValidator(cfg.Eligibility, evaluator)
	if err != nil {
		log.Fatal("invalid eligibility policy", zap.Error(err))
	}

	verdictCache := cacheredis.NewVerdictCacheRepository(redisClient)
	complianceService := service.NewComplianceService(log, repo, repo, verdictCache, cfg.Cache.VerdictTTL, validator)
	scanner := service.NewFleetScanner(log, repo, complianceService, repo, cacheredis.NewScanLock(redisClient), service.ScanOptions{
		Horizon:                cfg.Scan.Horizon,
		LockTTL:                cfg.Scan.LockTTL,
		UtilizationHoursPerDay: cfg.Scan.UtilizationHoursPerDay,
		Policy:                 cfg.Eligibility,
	})

	crewHandler := handlers.NewCrewHandler(log, complianceService, cfg.HTTP.RequestTimeout)
	scanHandler := handlers.NewScanHandler(log, scanner)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handlers.Health)
	mux.Handle("/v1/crew/", crewHandler)
	mux.HandleFunc("/v1/scan", scanHandler.TriggerScan)

	server := &http.Server{
		Addr:         cfg.HTTP.Address(),
		Handler:      handlers.LoggingMiddleware(log, mux),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	grpcApp := grpcapp.New(log, cfg.GRPC.Host, cfg.GRPC.Port)
	go grpcApp.WatchStorage(ctx, repo, cfg.GRPC.HealthInterval)

	if cfg.Scan.Enabled {
		go scanner.Start(ctx, cfg.Scan.Interval, time.Now)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	go func() {
		errCh <- grpcApp.Run()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", zap.Error(err))
	}
	grpcApp.Stop()
}

func setupLogger(level string) *zap.Logger {
	zapLevel := parseLogLevel(level)
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return log
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
