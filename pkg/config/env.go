package config

// EnvPrefix is passed to envconfig; every field carries an explicit name so the
// prefix only matters for untagged fields.
const EnvPrefix = "TABLEORDER"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	HistoryDriverMemory = "memory"
	HistoryDriverRedis  = "redis"
	HistoryDriverSQL    = "sql"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

const (
	EnvAppEnv           = "TABLEORDER_APP_ENV"
	EnvPort             = "TABLEORDER_APP_PORT"
	EnvLogLevel         = "TABLEORDER_LOG_LEVEL"
	EnvCORSOrigins      = "TABLEORDER_CORS_ORIGINS"
	EnvAPIBase          = "TABLEORDER_API_BASE"
	EnvAPITimeout       = "TABLEORDER_API_TIMEOUT"
	EnvPollInterval     = "TABLEORDER_POLL_INTERVAL"
	EnvCountdownTick    = "TABLEORDER_COUNTDOWN_TICK"
	EnvSurchargePercent = "TABLEORDER_SURCHARGE_PERCENT"
	EnvTableNumber      = "TABLEORDER_TABLE_NUMBER"
	EnvSessionID        = "TABLEORDER_SESSION_ID"
	EnvHistoryDriver    = "TABLEORDER_HISTORY_DRIVER"
	EnvHistoryTTL       = "TABLEORDER_HISTORY_SESSION_TTL"
	EnvHistoryRetention = "TABLEORDER_HISTORY_RETENTION_INTERVAL"
	EnvRedisURL         = "TABLEORDER_REDIS_URL"
	EnvRedisAddr        = "TABLEORDER_REDIS_ADDR"
	EnvDBDriver         = "TABLEORDER_DB_DRIVER"
	EnvDBDSN            = "TABLEORDER_DB_DSN"
)
