package config

// EnvPrefix is empty because every field declares its fully-qualified variable name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv      = "RHOOD_APP_ENV"
	EnvPort        = "RHOOD_APP_PORT"
	EnvLogLevel    = "RHOOD_LOG_LEVEL"
	EnvLogFormat   = "RHOOD_LOG_FORMAT"
	EnvDBDSN       = "RHOOD_DB_DSN"
	EnvDBHost      = "RHOOD_DB_HOST"
	EnvDBUser      = "RHOOD_DB_USER"
	EnvDBName      = "RHOOD_DB_NAME"
	EnvRedisURL    = "RHOOD_REDIS_URL"
	EnvJWTSecret   = "RHOOD_JWT_SECRET"
	EnvJWTIssuer   = "RHOOD_JWT_ISSUER"
	EnvJWTExpMins  = "RHOOD_JWT_EXPIRATION_MINUTES"
	EnvUseSQLite   = "RHOOD_USE_SQLITE"
	EnvSQLitePath  = "RHOOD_SQLITE_PATH"
	EnvRateWindow  = "RHOOD_RATE_LIMIT_WINDOW"
	EnvRateLimit   = "RHOOD_RATE_LIMIT_REQUESTS"
	EnvCronEvery   = "RHOOD_CRON_INTERVAL"
	EnvCronLockTTL = "RHOOD_CRON_LOCK_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
