package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Tracking TrackingConfig
	Kiosk    KioskConfig
	History  HistoryConfig
	Redis    RedisConfig
	DB       DBConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TABLEORDER_APP_ENV" default:"dev"`
	Port         string `envconfig:"TABLEORDER_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TABLEORDER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TABLEORDER_LOG_WARN_STACK" default:"false"`
	// Origins allowed to drive the kiosk API from a browser.
	CORSOrigins []string `envconfig:"TABLEORDER_CORS_ORIGINS" default:"http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

// BackendConfig points at the ordering API the kiosk talks to.
type BackendConfig struct {
	BaseURL string        `envconfig:"TABLEORDER_API_BASE" default:"http://localhost:8000/api"`
	Timeout time.Duration `envconfig:"TABLEORDER_API_TIMEOUT" default:"20s"`
}

type TrackingConfig struct {
	PollInterval     time.Duration `envconfig:"TABLEORDER_POLL_INTERVAL" default:"3s"`
	CountdownTick    time.Duration `envconfig:"TABLEORDER_COUNTDOWN_TICK" default:"1s"`
	SurchargePercent int64         `envconfig:"TABLEORDER_SURCHARGE_PERCENT" default:"10"`
}

type KioskConfig struct {
	TableNumber string `envconfig:"TABLEORDER_TABLE_NUMBER" required:"true"`
	SessionID   string `envconfig:"TABLEORDER_SESSION_ID"`
}

type HistoryConfig struct {
	Driver     string        `envconfig:"TABLEORDER_HISTORY_DRIVER" default:"memory"`
	SessionTTL time.Duration `envconfig:"TABLEORDER_HISTORY_SESSION_TTL" default:"12h"`
	// How often the sql driver sweeps sessions idle past SessionTTL.
	RetentionInterval time.Duration `envconfig:"TABLEORDER_HISTORY_RETENTION_INTERVAL" default:"1h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TABLEORDER_REDIS_URL"`
	Address      string        `envconfig:"TABLEORDER_REDIS_ADDR"`
	Password     string        `envconfig:"TABLEORDER_REDIS_PASSWORD"`
	DB           int           `envconfig:"TABLEORDER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TABLEORDER_REDIS_POOL_SIZE" default:"4"`
	DialTimeout  time.Duration `envconfig:"TABLEORDER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TABLEORDER_REDIS_READ_TIMEOUT" default:"2s"`
	WriteTimeout time.Duration `envconfig:"TABLEORDER_REDIS_WRITE_TIMEOUT" default:"2s"`
}

type DBConfig struct {
	Driver          string        `envconfig:"TABLEORDER_DB_DRIVER" default:"sqlite"`
	DSN             string        `envconfig:"TABLEORDER_DB_DSN" default:"file:tableorder-history.db?cache=shared"`
	MaxOpenConns    int           `envconfig:"TABLEORDER_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"TABLEORDER_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"TABLEORDER_DB_CONN_MAX_LIFETIME" default:"1h"`
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Kiosk.TableNumber) == "" {
		return fmt.Errorf("%s is required", EnvTableNumber)
	}
	if c.Tracking.PollInterval <= 0 || c.Tracking.CountdownTick <= 0 {
		return fmt.Errorf("tracking intervals must be positive")
	}
	if c.Tracking.SurchargePercent < 0 {
		return fmt.Errorf("%s must not be negative", EnvSurchargePercent)
	}

	c.History.Driver = strings.ToLower(strings.TrimSpace(c.History.Driver))
	switch c.History.Driver {
	case HistoryDriverMemory:
	case HistoryDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis history driver", EnvRedisURL, EnvRedisAddr)
		}
	case HistoryDriverSQL:
		switch strings.ToLower(c.DB.Driver) {
		case DBDriverSQLite, DBDriverPostgres:
		default:
			return fmt.Errorf("unsupported %s %q", EnvDBDriver, c.DB.Driver)
		}
		if c.DB.DSN == "" {
			return fmt.Errorf("%s is required for the sql history driver", EnvDBDSN)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvHistoryDriver, c.History.Driver)
	}
	return nil
}
