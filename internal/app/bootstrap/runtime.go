package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/dinkominfo-madiun/appcensus/internal/adapters/cache"
	"github.com/dinkominfo-madiun/appcensus/internal/adapters/flagfile"
	httpadapter "github.com/dinkominfo-madiun/appcensus/internal/adapters/http"
	"github.com/dinkominfo-madiun/appcensus/internal/adapters/logfile"
	"github.com/dinkominfo-madiun/appcensus/internal/adapters/postgres"
	"github.com/dinkominfo-madiun/appcensus/internal/adapters/security"
	"github.com/dinkominfo-madiun/appcensus/internal/application"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	flag       *flagfile.MaintenanceFlag
	healthSrv  *health.Server
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping census service", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("init redis client: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	repos := postgres.NewRepositories(pool)

	signer, err := security.NewJWTSigner(cfg.SessionSecret)
	if err != nil {
		if !cfg.AllowEphemeralSecret {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init session signer: %w", err)
		}
		logger.Warn("using ephemeral session secret for local/dev runtime")
		signer, err = security.NewEphemeralJWTSigner()
		if err != nil {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init ephemeral session signer: %w", err)
		}
	}

	incidents, err := logfile.NewSecurityLog(cfg.SecurityLogPath)
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init security log: %w", err)
	}

	flag := flagfile.NewMaintenanceFlag(cfg.MaintenanceFlagPath)

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)

	// Health reflects the maintenance gate: a gated runtime reports
	// NOT_SERVING so upstream checks see the planned outage.
	applyHealth := func(enabled bool) {
		status := healthpb.HealthCheckResponse_SERVING
		if enabled {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		healthSrv.SetServingStatus("", status)
	}
	if state, stateErr := flag.State(); stateErr == nil {
		applyHealth(state.Enabled)
	} else {
		applyHealth(true)
	}

	rateLimits := make(map[string]application.RateLimitPolicy, len(cfg.RateLimits))
	for category, budget := range cfg.RateLimits {
		rateLimits[category] = application.RateLimitPolicy{
			MaxAttempts: budget.MaxAttempts,
			Window:      budget.Window,
		}
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			SiteName:              cfg.SiteName,
			Agencies:              cfg.Agencies,
			MaxLoginAttempts:      cfg.MaxLoginAttempts,
			LockoutDuration:       cfg.LockoutDuration,
			SessionIdleTimeout:    cfg.SessionIdleTimeout,
			RateLimits:            rateLimits,
			MaintenanceAllowedIPs: cfg.MaintenanceAllowedIPs,
			StoreTimeout:          cfg.StoreTimeout,
		},
		Accounts:          repos.Accounts,
		Submissions:       repos.Submissions,
		Activity:          repos.Activity,
		Sessions:          cacheadapter.NewRedisSessionStore(redisClient),
		RateLimits:        cacheadapter.NewRedisRateLimitStore(redisClient),
		Maintenance:       flag,
		Incidents:         incidents,
		Hasher:            security.NewBcryptHasher(cfg.BcryptCost),
		TokenSigner:       signer,
		MaintenanceNotify: applyHealth,
	})

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		flag:       flag,
		healthSrv:  healthSrv,
		cleanupFn: func(ctx context.Context) {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Keep the cached maintenance state in sync with CLI flips of the flag
	// file while the server runs.
	go r.flag.Watch(ctx, func(enabled bool) {
		status := healthpb.HealthCheckResponse_SERVING
		if enabled {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		r.healthSrv.SetServingStatus("", status)
	})

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}
