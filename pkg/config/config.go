package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	HTTP         HTTPConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WAREHOUSE_APP_ENV" required:"true"`
	Port         string `envconfig:"WAREHOUSE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"WAREHOUSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WAREHOUSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"WAREHOUSE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"WAREHOUSE_DB_DSN"`
	Driver string `envconfig:"WAREHOUSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WAREHOUSE_DB_HOST"`
	LegacyPort     int    `envconfig:"WAREHOUSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WAREHOUSE_DB_USER"`
	LegacyPassword string `envconfig:"WAREHOUSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"WAREHOUSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"WAREHOUSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WAREHOUSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WAREHOUSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WAREHOUSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WAREHOUSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite engine.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"WAREHOUSE_REDIS_URL"`
	Address      string        `envconfig:"WAREHOUSE_REDIS_ADDR"`
	Password     string        `envconfig:"WAREHOUSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"WAREHOUSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WAREHOUSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WAREHOUSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WAREHOUSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WAREHOUSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WAREHOUSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WAREHOUSE_AUTO_MIGRATE" default:"false"`
	// RestockOnCancel reverses an order's inventory effect when it is canceled.
	RestockOnCancel bool `envconfig:"WAREHOUSE_FEATURE_RESTOCK_ON_CANCEL" default:"false"`
}

type HTTPConfig struct {
	AllowedOrigins  []string      `envconfig:"WAREHOUSE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"WAREHOUSE_HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"WAREHOUSE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"WAREHOUSE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"WAREHOUSE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic    string `envconfig:"WAREHOUSE_PUBSUB_ORDERS_TOPIC" default:"warehouse-order-events"`
	InventoryTopic string `envconfig:"WAREHOUSE_PUBSUB_INVENTORY_TOPIC" default:"warehouse-inventory-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"WAREHOUSE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"WAREHOUSE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"WAREHOUSE_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"WAREHOUSE_OUTBOX_RETENTION_DAYS" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"WAREHOUSE_CRON_INTERVAL" default:"1h"`
	// MetricsAddr exposes /metrics from the worker when set, e.g. ":9091".
	MetricsAddr string `envconfig:"WAREHOUSE_CRON_METRICS_ADDR"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DriverSQLite)
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
