package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/notify"
	"github.com/light-bringer/inventory-service/internal/config"
	"github.com/light-bringer/inventory-service/internal/pkg/logger"
	"github.com/light-bringer/inventory-service/internal/pkg/tracing"
	"github.com/light-bringer/inventory-service/internal/services"
	grpctransport "github.com/light-bringer/inventory-service/internal/transport/grpc"
	httptransport "github.com/light-bringer/inventory-service/internal/transport/http"
)

const serviceName = "inventory-service"

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("starting inventory service",
		zap.String("env", cfg.Server.AppEnv),
		zap.String("store", cfg.Store.Driver),
		zap.String("http_port", cfg.Server.HTTPPort),
		zap.String("grpc_port", cfg.Server.GRPCPort),
	)

	// 2. Tracing
	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}

	// 3. Initialize service dependencies (DI container)
	svc, err := services.NewServiceOptions(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	defer svc.Close()

	// 4. gRPC health + reflection
	grpcServer := grpctransport.NewServer(appLogger)
	lis, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}
	go func() {
		appLogger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("gRPC server error", zap.Error(err))
		}
	}()
	go grpcServer.WatchReadiness(ctx, 10*time.Second, func(ctx context.Context) error {
		_, err := svc.Stores.Outbox.List(ctx, contracts.EventFilter{Limit: 1})
		return err
	})

	// 5. HTTP API
	if cfg.Server.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httptransport.NewRouter(httptransport.NewHandler(svc, appLogger), cfg.Server.RequestTimeout)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		appLogger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// 6. Outbox relay and cleanup jobs
	scheduler, err := notify.NewScheduler(ctx, svc.Relay, notify.ScheduleConfig{
		RelaySchedule:          cfg.Outbox.RelaySchedule,
		CleanupSchedule:        cfg.Outbox.CleanupSchedule,
		CompletedRetentionDays: cfg.Outbox.CompletedRetentionDays,
		FailedRetentionDays:    cfg.Outbox.FailedRetentionDays,
	}, appLogger)
	if err != nil {
		return err
	}
	scheduler.Start()

	// 7. Graceful shutdown handling
	<-ctx.Done()
	appLogger.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	<-scheduler.Stop().Done()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown error", zap.Error(err))
	}
	grpcServer.Shutdown()

	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.Warn("tracer shutdown error", zap.Error(err))
	}
	return nil
}
