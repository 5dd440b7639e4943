package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/folio-backend/internal/adapter/grpc"
	"github.com/simaogato/folio-backend/internal/adapter/ops"
	"github.com/simaogato/folio-backend/internal/adapter/repository/memory"
	"github.com/simaogato/folio-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/folio-backend/internal/config"
	"github.com/simaogato/folio-backend/internal/domain"
	"github.com/simaogato/folio-backend/internal/logger"
	"github.com/simaogato/folio-backend/internal/scheduler"
	"github.com/simaogato/folio-backend/internal/usecase/payment"
	"github.com/simaogato/folio-backend/internal/usecase/portfolio"
	"github.com/simaogato/folio-backend/internal/usecase/profile"
	"github.com/simaogato/folio-backend/internal/usecase/seeder"
)

const shutdownTimeout = 10 * time.Second

// repositories bundles the store selected by configuration
type repositories struct {
	portfolios domain.PortfolioRepository
	catalog    domain.CatalogRepository
	profiles   domain.ProfileRepository
	payments   domain.PaymentRepository
	pinger     ops.Pinger
	close      func() error
}

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	flag.Parse()

	// 1. Configuration and logging
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})

	ctx := context.Background()

	// 2. Storage
	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open storage")
	}
	defer repos.close()

	if err := seeder.NewCatalogSeeder(repos.catalog, log).Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed reference data")
	}

	// 3. Services (Use Cases)
	portfolioService := portfolio.NewPortfolioService(repos.portfolios, repos.catalog, repos.profiles, log)
	portfolioService.RecommendationLimit = cfg.Planning.RecommendationLimit
	profileService := profile.NewProfileService(repos.profiles, cfg.Planning.Tolerance, log)
	paymentService := payment.NewPaymentService(repos.payments, repos.profiles, repos.portfolios, cfg.Planning.Currency, log)

	// 4. gRPC server
	interceptors := []grpclib.UnaryServerInterceptor{
		grpcadapter.LoggingInterceptor(log),
		grpcadapter.RecoveryInterceptor(log),
		grpcadapter.AuthInterceptor(cfg.Server.APIToken),
	}
	if cfg.Server.RateLimit > 0 {
		interceptors = append(interceptors, grpcadapter.RateLimitInterceptor(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst))
	}
	grpcServer := grpclib.NewServer(grpclib.ChainUnaryInterceptor(interceptors...))

	grpcadapter.RegisterPortfolioServiceServer(grpcServer, grpcadapter.NewServer(portfolioService, profileService, paymentService, log))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Server.GRPCAddr).Msg("failed to listen")
	}

	go func() {
		log.Info().Str("addr", cfg.Server.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("failed to serve gRPC server")
		}
	}()

	// 5. Ops HTTP server
	opsServer := ops.New(ops.Config{Addr: cfg.Server.OpsAddr, Log: log, Storage: repos.pinger})
	go func() {
		if err := opsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("ops HTTP server failed")
		}
	}()

	// 6. Background jobs
	sched := scheduler.New(log)
	if cfg.Scheduler.Enabled {
		job := payment.NewMissedPaymentsJob(payment.MissedPaymentsConfig{
			Repo:      repos.payments,
			GraceDays: cfg.Scheduler.GraceDays,
			Log:       log,
		})
		if err := sched.AddJob(cfg.Scheduler.MissedPaymentsCron, job); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Scheduler.MissedPaymentsCron).Msg("failed to register job")
		}
		sched.Start()
	}

	// Graceful shutdown
	waitForShutdown(log)

	healthServer.Shutdown()
	if cfg.Scheduler.Enabled {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down ops HTTP server")
	}

	grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")
}

// openRepositories connects to the configured store. Postgres is migrated before use.
func openRepositories(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repositories, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			portfolios: memory.NewPortfolioRepository(store),
			catalog:    memory.NewCatalogRepository(store),
			profiles:   memory.NewProfileRepository(store),
			payments:   memory.NewPaymentRepository(store),
			close:      func() error { return nil },
		}, nil
	}

	lifetime, err := cfg.Storage.Lifetime()
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := connectWithRetry(connectCtx, cfg.Storage.ConnString(), postgres.Options{
		MaxOpenConns:    cfg.Storage.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.MaxIdleConns,
		ConnMaxLifetime: lifetime,
	}, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &repositories{
		portfolios: postgres.NewPortfolioRepository(db),
		catalog:    postgres.NewCatalogRepository(db),
		profiles:   postgres.NewProfileRepository(db),
		payments:   postgres.NewPaymentRepository(db),
		pinger:     db,
		close:      db.Close,
	}, nil
}

// connectWithRetry waits for Postgres to accept connections, e.g. while its container starts
func connectWithRetry(ctx context.Context, connStr string, opts postgres.Options, log zerolog.Logger) (*postgres.DB, error) {
	for attempt := 1; ; attempt++ {
		db, err := postgres.NewDB(ctx, connStr, opts)
		if err == nil {
			return db, nil
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("database not ready, retrying")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		case <-time.After(2 * time.Second):
		}
	}
}

// waitForShutdown blocks until SIGTERM or SIGINT
func waitForShutdown(log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("received signal, shutting down gracefully")
}
