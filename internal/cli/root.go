// Package cli implements the censusctl management tool. It talks to the same
// stores as the server, so admin accounts and the maintenance flag can be
// managed while the HTTP surface is locked down or not running at all.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	cacheadapter "github.com/dinkominfo-madiun/appcensus/internal/adapters/cache"
	"github.com/dinkominfo-madiun/appcensus/internal/adapters/flagfile"
	"github.com/dinkominfo-madiun/appcensus/internal/adapters/logfile"
	"github.com/dinkominfo-madiun/appcensus/internal/adapters/postgres"
	"github.com/dinkominfo-madiun/appcensus/internal/adapters/security"
	"github.com/dinkominfo-madiun/appcensus/internal/app/bootstrap"
	"github.com/dinkominfo-madiun/appcensus/internal/application"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "censusctl",
	Short: "Management tool for the application census service",
	Long: `censusctl manages the application census service out of band:
administrator accounts, the maintenance gate, audit log retention, and
operational checks.

Examples:
  censusctl admin create rina       # Create an administrator (password prompted)
  censusctl admin unlock rina       # Clear a lockout
  censusctl maintenance on -m "DB upgrade"
  censusctl maintenance off
  censusctl stats                   # Submission counters
  censusctl logs clean 90           # Drop audit records older than 90 days
  censusctl health                  # Check DB, Redis, and the running server`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/default.yaml", "Path to configuration file")

	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(maintenanceCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(healthCmd)
}

// toolkit bundles the wired service with the resources behind it.
type toolkit struct {
	cfg     bootstrap.Config
	service *application.Service
	close   func()
}

// newToolkit wires a full service against the configured stores. The CLI uses
// the same application layer as the server so every change lands in the audit
// trail through the same choke point.
func newToolkit(ctx context.Context) (*toolkit, error) {
	cfg, err := bootstrap.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

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
		_ = redisClient.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	signer, err := security.NewEphemeralJWTSigner()
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init session signer: %w", err)
	}

	incidents, err := logfile.NewSecurityLog(cfg.SecurityLogPath)
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init security log: %w", err)
	}

	repos := postgres.NewRepositories(pool)
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
		Accounts:    repos.Accounts,
		Submissions: repos.Submissions,
		Activity:    repos.Activity,
		Sessions:    cacheadapter.NewRedisSessionStore(redisClient),
		RateLimits:  cacheadapter.NewRedisRateLimitStore(redisClient),
		Maintenance: flagfile.NewMaintenanceFlag(cfg.MaintenanceFlagPath),
		Incidents:   incidents,
		Hasher:      security.NewBcryptHasher(cfg.BcryptCost),
		TokenSigner: signer,
	})

	return &toolkit{
		cfg:     cfg,
		service: svc,
		close: func() {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

// cliActor identifies command-line invocations in the audit trail.
func cliActor() application.AdminActor {
	username := os.Getenv("USER")
	if username == "" {
		username = "cli"
	}
	return application.AdminActor{
		Username:  username,
		IPAddress: "127.0.0.1",
		UserAgent: "censusctl",
	}
}

// promptPassword prompts for a password with hidden input, twice.
func promptPassword() (string, error) {
	fmt.Print("Password: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
