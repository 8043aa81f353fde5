package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	RateLimit    RateLimitConfig
	Cron         CronConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		return &cfg, nil
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RHOOD_APP_ENV" required:"true"`
	Port         string `envconfig:"RHOOD_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RHOOD_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"RHOOD_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"RHOOD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"RHOOD_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"RHOOD_DB_DSN"`
	Driver string `envconfig:"RHOOD_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RHOOD_DB_HOST"`
	LegacyPort     int    `envconfig:"RHOOD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RHOOD_DB_USER"`
	LegacyPassword string `envconfig:"RHOOD_DB_PASSWORD"`
	LegacyName     string `envconfig:"RHOOD_DB_NAME"`
	LegacySSLMode  string `envconfig:"RHOOD_DB_SSLMODE" default:"require"`

	MaxOpenConns    int           `envconfig:"RHOOD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RHOOD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RHOOD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RHOOD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RHOOD_REDIS_URL"`
	Address      string        `envconfig:"RHOOD_REDIS_ADDR"`
	Password     string        `envconfig:"RHOOD_REDIS_PASSWORD"`
	DB           int           `envconfig:"RHOOD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RHOOD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RHOOD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RHOOD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RHOOD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RHOOD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes the tokens minted by the identity provider. The secret is
// the provider's project signing secret.
type JWTConfig struct {
	Secret            string `envconfig:"RHOOD_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RHOOD_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RHOOD_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TTL returns the lifetime of an access token.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"RHOOD_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"RHOOD_SQLITE_PATH" default:"studio.db"`
	AutoMigrate bool   `envconfig:"RHOOD_AUTO_MIGRATE" default:"false"`
}

type RateLimitConfig struct {
	Window   time.Duration `envconfig:"RHOOD_RATE_LIMIT_WINDOW" default:"1m"`
	Requests int           `envconfig:"RHOOD_RATE_LIMIT_REQUESTS" default:"120"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"RHOOD_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"RHOOD_CRON_LOCK_TTL" default:"10m"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"RHOOD_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
