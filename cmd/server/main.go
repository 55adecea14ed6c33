package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/simaogato/wealthflow-widgets/internal/adapter/api"
	grpcadapter "github.com/simaogato/wealthflow-widgets/internal/adapter/grpc"
	httpadapter "github.com/simaogato/wealthflow-widgets/internal/adapter/http"
	"github.com/simaogato/wealthflow-widgets/internal/adapter/repository/memory"
	"github.com/simaogato/wealthflow-widgets/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthflow-widgets/internal/adapter/sheet"
	"github.com/simaogato/wealthflow-widgets/internal/config"
	"github.com/simaogato/wealthflow-widgets/internal/domain"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/seeder"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/series"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/simulation"
	"github.com/simaogato/wealthflow-widgets/pkg/logger"
)

func main() {
	// 1. Load configuration and build the logger
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
}

// run wires and serves everything; deferred cleanups finish before it returns
func run(cfg *config.Config, log zerolog.Logger) error {

	ctx := context.Background()

	// 2. Initialize Repositories
	instrumentRepo, seriesRepo, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Str("storage", cfg.Storage).Msg("Failed to open storage")
		return err
	}
	defer closeStorage()

	// 3. Seed the instrument catalogue and optional reference returns
	created, err := seeder.NewCatalogSeeder(instrumentRepo).Seed(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to seed instrument catalogue")
		return err
	}
	log.Info().Int("created", created).Msg("Instrument catalogue seeded")

	seriesService := series.NewService(instrumentRepo, seriesRepo)
	if cfg.SeriesFile != "" {
		imported, err := sheet.NewImporter("").ParseFile(cfg.SeriesFile)
		if err != nil {
			log.Error().Err(err).Str("file", cfg.SeriesFile).Msg("Failed to parse series file")
			return err
		}
		recorded, err := seriesService.ImportSeries(ctx, imported)
		if err != nil {
			log.Error().Err(err).Str("file", cfg.SeriesFile).Msg("Failed to import series file")
			return err
		}
		log.Info().Int("returns", recorded).Str("file", cfg.SeriesFile).Msg("Reference returns imported")
	}

	// 4. Warm the series cache and schedule refreshes
	cache := series.NewCache(seriesRepo, log)
	if err := cache.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to load series cache")
		return err
	}
	if err := cache.Start(cfg.SeriesRefreshCron); err != nil {
		log.Error().Err(err).Str("spec", cfg.SeriesRefreshCron).Msg("Failed to schedule series refresh")
		return err
	}
	defer cache.Stop()

	// 5. Initialize Services (Use Cases)
	simulationService := simulation.NewService(instrumentRepo, cache.Lookup, log)
	apiService := api.NewService(instrumentRepo, seriesService, simulationService)

	// 6. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log.With().Str("component", "grpc").Logger()),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)
	grpcadapter.RegisterAllocationServiceServer(grpcServer, grpcadapter.NewServer(apiService))
	reflection.Register(grpcServer)

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error().Err(err).Str("addr", grpcAddr).Msg("Failed to listen")
		return err
	}

	// Serve errors end the process through waitForShutdown so deferred cleanups run
	serveErr := make(chan error, 2)

	go func() {
		log.Info().Str("addr", grpcAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			serveErr <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// 7. Start HTTP Server
	httpServer := httpadapter.New(httpadapter.Config{
		Port:        cfg.HTTPPort,
		Log:         log,
		API:         apiService,
		CORSOrigins: cfg.CORSOrigins,
		RefreshedAt: cache.RefreshedAt,
		APIToken:    cfg.APIToken,
	})

	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(quit)

	return waitForShutdown(log, quit, serveErr, grpcServer, httpServer)
}

// openStorage opens the configured storage backend
// The returned close function is always safe to call
func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.InstrumentRepository, domain.ReturnSeriesRepository, func(), error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn().Msg("Using in-memory storage; reference data is lost on restart")
		return memory.NewInstrumentRepository(), memory.NewReturnSeriesRepository(), func() {}, nil
	}

	db, err := connectWithRetry(cfg.DBConnStr, 5, 2*time.Second, log)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}
	return postgres.NewInstrumentRepository(db), postgres.NewReturnSeriesRepository(db), closeDB, nil
}

// connectWithRetry waits for Postgres to come up (containers start in any order)
func connectWithRetry(connStr string, attempts int, delay time.Duration, log zerolog.Logger) (*postgres.DB, error) {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		db, err := postgres.NewDB(connStr)
		if err == nil {
			return db, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", i).Msg("Database not ready")
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, lastErr)
}

// waitForShutdown blocks until a signal arrives or a server fails, then stops both servers
// It returns the serve error, or nil after a signal
func waitForShutdown(log zerolog.Logger, quit <-chan os.Signal, serveErr <-chan error, grpcServer *grpclib.Server, httpServer *httpadapter.Server) error {
	var failure error
	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")
	case failure = <-serveErr:
		log.Error().Err(failure).Msg("Server failed, shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	grpcServer.GracefulStop()
	log.Info().Msg("Servers stopped")
	return failure
}
