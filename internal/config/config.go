package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

// SchedulingConfig carries the knobs for conflict detection, slot
// enumeration and the suggestion engine. Every field has a default so an
// empty scheduling section still yields a working service.
type SchedulingConfig struct {
	MinGapMinutes            int    `mapstructure:"min_gap_minutes"`
	SlotStepMinutes          int    `mapstructure:"slot_step_minutes"`
	DefaultDurationMinutes   int    `mapstructure:"default_duration_minutes"`
	DefaultStartTime         string `mapstructure:"default_start_time"`
	EngineIntervalMinutes    int    `mapstructure:"engine_interval_minutes"`
	RetentionDays            int    `mapstructure:"retention_days"`
	GapThresholdMinutes      int    `mapstructure:"gap_threshold_minutes"`
	PreSessionLookaheadMin   int    `mapstructure:"pre_session_lookahead_minutes"`
	CancellationWindowDays   int    `mapstructure:"cancellation_window_days"`
	CancellationPatternCount int    `mapstructure:"cancellation_pattern_count"`
	MaxSuggestions           int    `mapstructure:"max_suggestions"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("TUTOR_DESK")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	setSchedulingDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	return &cfg, nil
}

func setSchedulingDefaults() {
	viper.SetDefault("scheduling.min_gap_minutes", 15)
	viper.SetDefault("scheduling.slot_step_minutes", 30)
	viper.SetDefault("scheduling.default_duration_minutes", 60)
	viper.SetDefault("scheduling.default_start_time", "15:00")
	viper.SetDefault("scheduling.engine_interval_minutes", 1)
	viper.SetDefault("scheduling.retention_days", 30)
	viper.SetDefault("scheduling.gap_threshold_minutes", 120)
	viper.SetDefault("scheduling.pre_session_lookahead_minutes", 90)
	viper.SetDefault("scheduling.cancellation_window_days", 30)
	viper.SetDefault("scheduling.cancellation_pattern_count", 3)
	viper.SetDefault("scheduling.max_suggestions", 5)
}
