package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Basis    BasisConfig    `mapstructure:"basis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	LogLevel string         `mapstructure:"log_level"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type AuthConfig struct {
	// HS256 secret used to verify bearer tokens issued by the platform's
	// auth service. The token subject is resolved to a tenant via the store.
	JWTSecret string `mapstructure:"jwt_secret"`
}

type DatabaseConfig struct {
	DSN                    string `mapstructure:"dsn"`
	AuditRetentionDays     int    `mapstructure:"audit_retention_days"`
	CleanupIntervalMinutes int    `mapstructure:"cleanup_interval_minutes"`
}

type RedisConfig struct {
	Addr                 string `mapstructure:"addr"`
	Password             string `mapstructure:"password"`
	DB                   int    `mapstructure:"db"`
	KillSwitchTTLSeconds int    `mapstructure:"killswitch_ttl_seconds"`
}

// WindowConfig is one fixed rate-limit window for an endpoint class.
type WindowConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

// LimitsConfig holds per-endpoint-class rate limits. These are enforced
// per process instance; under horizontal scaling the effective global rate
// can reach (replicas x limit). Best-effort, not a hard SLA.
type LimitsConfig struct {
	Read    WindowConfig `mapstructure:"read"`
	Scan    WindowConfig `mapstructure:"scan"`
	Trading WindowConfig `mapstructure:"trading"`
	Admin   WindowConfig `mapstructure:"admin"`
}

type ScanConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// BasisConfig holds the funding-arb yield parameters. Global for now;
// whether these become tenant-level risk parameters is an open product
// question, so they are configuration rather than constants.
type BasisConfig struct {
	// FeePctPoints is the round-trip trading cost deducted from the
	// annualized funding rate, in percentage points.
	FeePctPoints float64 `mapstructure:"fee_pct_points"`
	// ActionableAPY is the estimated-APY threshold (percent) above which an
	// opportunity is flagged actionable.
	ActionableAPY float64 `mapstructure:"actionable_apy"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. ARBGATE_DATABASE_DSN, ARBGATE_AUTH_JWT_SECRET
	viper.SetEnvPrefix("arbgate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("database.audit_retention_days", 30)
	viper.SetDefault("database.cleanup_interval_minutes", 60)
	viper.SetDefault("redis.killswitch_ttl_seconds", 5)
	viper.SetDefault("limits.read.max_requests", 100)
	viper.SetDefault("limits.read.window_seconds", 60)
	viper.SetDefault("limits.scan.max_requests", 20)
	viper.SetDefault("limits.scan.window_seconds", 60)
	viper.SetDefault("limits.trading.max_requests", 30)
	viper.SetDefault("limits.trading.window_seconds", 60)
	viper.SetDefault("limits.admin.max_requests", 5)
	viper.SetDefault("limits.admin.window_seconds", 60)
	viper.SetDefault("scan.default_limit", 20)
	viper.SetDefault("scan.max_limit", 50)
	viper.SetDefault("basis.fee_pct_points", 4.0)
	viper.SetDefault("basis.actionable_apy", 10.0)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
