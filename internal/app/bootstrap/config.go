package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RateBudget is one fixed-window rate-limit setting as configured.
type RateBudget struct {
	MaxAttempts int
	Window      time.Duration
}

// Config is the resolved runtime configuration.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	SiteName string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string
	MaxDBConns  int32

	SessionSecret        string
	AllowEphemeralSecret bool
	BcryptCost           int

	MaxLoginAttempts   int
	LockoutDuration    time.Duration
	SessionIdleTimeout time.Duration
	StoreTimeout       time.Duration

	RateLimits map[string]RateBudget

	Agencies []string

	MaintenanceFlagPath   string
	MaintenanceAllowedIPs []string
	SecurityLogPath       string
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		Name     string `yaml:"name"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Security struct {
		SessionSecret        string   `yaml:"session_secret"`
		AllowEphemeralSecret *bool    `yaml:"allow_ephemeral_secret"`
		BcryptCost           int      `yaml:"bcrypt_cost"`
		MaxLoginAttempts     int      `yaml:"max_login_attempts"`
		LockoutMinutes       int      `yaml:"lockout_minutes"`
		SessionIdleMinutes   int      `yaml:"session_idle_minutes"`
		MaintenanceFlagPath  string   `yaml:"maintenance_flag_path"`
		MaintenanceAllowIPs  []string `yaml:"maintenance_allowed_ips"`
		SecurityLogPath      string   `yaml:"security_log_path"`
	} `yaml:"security"`
	RateLimits map[string]struct {
		MaxAttempts   int `yaml:"max_attempts"`
		WindowSeconds int `yaml:"window_seconds"`
	} `yaml:"rate_limits"`
	Form struct {
		Agencies []string `yaml:"agencies"`
	} `yaml:"form"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		SiteName:             "appcensus",
		HTTPPort:             8080,
		GRPCPort:             9090,
		MaxDBConns:           20,
		AllowEphemeralSecret: true,
		BcryptCost:           12,
		MaxLoginAttempts:     5,
		LockoutDuration:      15 * time.Minute,
		SessionIdleTimeout:   time.Hour,
		StoreTimeout:         3 * time.Second,
		RateLimits: map[string]RateBudget{
			"login":        {MaxAttempts: 10, Window: 5 * time.Minute},
			"form_submit":  {MaxAttempts: 5, Window: time.Minute},
			"export":       {MaxAttempts: 3, Window: 10 * time.Minute},
			"admin_access": {MaxAttempts: 120, Window: time.Minute},
		},
		MaintenanceFlagPath:   ".maintenance",
		MaintenanceAllowedIPs: []string{"127.0.0.1", "::1"},
		SecurityLogPath:       "logs/security.log",
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.Name != "" {
			cfg.SiteName = f.Service.Name
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Security.SessionSecret != "" {
			cfg.SessionSecret = f.Security.SessionSecret
		}
		if f.Security.AllowEphemeralSecret != nil {
			cfg.AllowEphemeralSecret = *f.Security.AllowEphemeralSecret
		}
		if f.Security.BcryptCost > 0 {
			cfg.BcryptCost = f.Security.BcryptCost
		}
		if f.Security.MaxLoginAttempts > 0 {
			cfg.MaxLoginAttempts = f.Security.MaxLoginAttempts
		}
		if f.Security.LockoutMinutes > 0 {
			cfg.LockoutDuration = time.Duration(f.Security.LockoutMinutes) * time.Minute
		}
		if f.Security.SessionIdleMinutes > 0 {
			cfg.SessionIdleTimeout = time.Duration(f.Security.SessionIdleMinutes) * time.Minute
		}
		if f.Security.MaintenanceFlagPath != "" {
			cfg.MaintenanceFlagPath = f.Security.MaintenanceFlagPath
		}
		if len(f.Security.MaintenanceAllowIPs) > 0 {
			cfg.MaintenanceAllowedIPs = f.Security.MaintenanceAllowIPs
		}
		if f.Security.SecurityLogPath != "" {
			cfg.SecurityLogPath = f.Security.SecurityLogPath
		}
		for category, budget := range f.RateLimits {
			if budget.MaxAttempts <= 0 || budget.WindowSeconds <= 0 {
				continue
			}
			cfg.RateLimits[category] = RateBudget{
				MaxAttempts: budget.MaxAttempts,
				Window:      time.Duration(budget.WindowSeconds) * time.Second,
			}
		}
		if len(f.Form.Agencies) > 0 {
			cfg.Agencies = f.Form.Agencies
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.SessionSecret = envOrDefault("SESSION_SECRET", cfg.SessionSecret)
	cfg.AllowEphemeralSecret = envBool("SESSION_ALLOW_EPHEMERAL", cfg.AllowEphemeralSecret)
	cfg.MaintenanceFlagPath = envOrDefault("MAINTENANCE_FLAG_PATH", cfg.MaintenanceFlagPath)
	cfg.MaintenanceAllowedIPs = envCSV("MAINTENANCE_ALLOWED_IPS", cfg.MaintenanceAllowedIPs)
	cfg.SecurityLogPath = envOrDefault("SECURITY_LOG_PATH", cfg.SecurityLogPath)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.MaxLoginAttempts = envInt("MAX_LOGIN_ATTEMPTS", cfg.MaxLoginAttempts)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.LockoutDuration = time.Duration(envInt("LOCKOUT_MINUTES", int(cfg.LockoutDuration.Minutes()))) * time.Minute
	cfg.SessionIdleTimeout = time.Duration(envInt("SESSION_IDLE_MINUTES", int(cfg.SessionIdleTimeout.Minutes()))) * time.Minute
	cfg.StoreTimeout = time.Duration(envInt("STORE_TIMEOUT_SECONDS", int(cfg.StoreTimeout.Seconds()))) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.SessionSecret == "" && !cfg.AllowEphemeralSecret {
		return Config{}, fmt.Errorf("missing SESSION_SECRET")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
