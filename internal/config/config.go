package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	LMS       LMSConfig       `mapstructure:"lms" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// LogFile is the append-only log sink. Empty means stdout.
	LogFile string `mapstructure:"log_file"`
	// MetricsPort serves /metrics on its own listener; 0 disables it.
	MetricsPort            int  `mapstructure:"metrics_port" validate:"gte=0,lt=65536"`
	ExposeTrace            bool `mapstructure:"expose_trace"`
	ShutdownTimeoutSeconds int  `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	TokenSecret string `mapstructure:"token_secret" validate:"required,min=32"`
	// ForbiddenStatus is the HTTP status used for authenticated-but-not-allowed requests.
	ForbiddenStatus  int   `mapstructure:"forbidden_status" validate:"oneof=401 403"`
	AdminRoleID      int64 `mapstructure:"admin_role_id" validate:"gt=0"`
	ClockSkewSeconds int   `mapstructure:"clock_skew_seconds" validate:"gte=0"`
}

// LMSConfig describes the learning-management system behind the gateway.
type LMSConfig struct {
	BaseURL  string `mapstructure:"base_url" validate:"required,url"`
	ClientID string `mapstructure:"client_id" validate:"required"`
}

// RateLimitConfig configures per-client request limits.
type RateLimitConfig struct {
	Requests      int  `mapstructure:"requests" validate:"gte=0"`
	WindowSeconds int  `mapstructure:"window_seconds" validate:"gte=0"`
	Disabled      bool `mapstructure:"disabled"`
}

// CORSConfig configures cross-origin access. No origins means CORS is not mounted.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}
