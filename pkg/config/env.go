package config

const (
	EnvPrefix = "WAREHOUSE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "WAREHOUSE_APP_ENV"
	EnvPort         = "WAREHOUSE_APP_PORT"
	EnvLogLevel     = "WAREHOUSE_LOG_LEVEL"
	EnvLogWarnStack = "WAREHOUSE_LOG_WARN_STACK"
	EnvServiceKind  = "WAREHOUSE_SERVICE_KIND"

	EnvDBDSN             = "WAREHOUSE_DB_DSN"
	EnvDBDriver          = "WAREHOUSE_DB_DRIVER"
	EnvDBHost            = "WAREHOUSE_DB_HOST"
	EnvDBPort            = "WAREHOUSE_DB_PORT"
	EnvDBUser            = "WAREHOUSE_DB_USER"
	EnvDBPassword        = "WAREHOUSE_DB_PASSWORD"
	EnvDBName            = "WAREHOUSE_DB_NAME"
	EnvDBSSLMode         = "WAREHOUSE_DB_SSLMODE"
	EnvDBMaxOpenConns    = "WAREHOUSE_DB_MAX_OPEN_CONNS"
	EnvDBMaxIdleConns    = "WAREHOUSE_DB_MAX_IDLE_CONNS"
	EnvDBConnMaxLifetime = "WAREHOUSE_DB_CONN_MAX_LIFETIME"
	EnvDBConnMaxIdleTime = "WAREHOUSE_DB_CONN_MAX_IDLE_TIME"

	EnvRedisURL      = "WAREHOUSE_REDIS_URL"
	EnvRedisAddr     = "WAREHOUSE_REDIS_ADDR"
	EnvRedisPassword = "WAREHOUSE_REDIS_PASSWORD"
	EnvRedisDB       = "WAREHOUSE_REDIS_DB"

	EnvAutoMigrate     = "WAREHOUSE_AUTO_MIGRATE"
	EnvRestockOnCancel = "WAREHOUSE_FEATURE_RESTOCK_ON_CANCEL"
	EnvCORSOrigins     = "WAREHOUSE_CORS_ALLOWED_ORIGINS"

	EnvGCPProjectID         = "WAREHOUSE_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic    = "WAREHOUSE_PUBSUB_ORDERS_TOPIC"
	EnvPubSubInventoryTopic = "WAREHOUSE_PUBSUB_INVENTORY_TOPIC"

	EnvOutboxBatchSize     = "WAREHOUSE_OUTBOX_PUBLISH_BATCH_SIZE"
	EnvOutboxPollMS        = "WAREHOUSE_OUTBOX_PUBLISH_POLL_MS"
	EnvOutboxMaxAttempts   = "WAREHOUSE_OUTBOX_MAX_ATTEMPTS"
	EnvOutboxRetentionDays = "WAREHOUSE_OUTBOX_RETENTION_DAYS"

	EnvCronInterval    = "WAREHOUSE_CRON_INTERVAL"
	EnvCronMetricsAddr = "WAREHOUSE_CRON_METRICS_ADDR"
)

var legacyDBEnvVars = []string{
	EnvDBHost,
	EnvDBUser,
	EnvDBName,
}
