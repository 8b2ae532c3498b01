package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "RESELLERHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:resellerhub.db?cache=shared&_foreign_keys=on"
)

const (
	EnvAppEnv            = "RESELLERHUB_APP_ENV"
	EnvPort              = "RESELLERHUB_APP_PORT"
	EnvDBDSN             = "RESELLERHUB_DB_DSN"
	EnvDBHost            = "RESELLERHUB_DB_HOST"
	EnvDBUser            = "RESELLERHUB_DB_USER"
	EnvDBName            = "RESELLERHUB_DB_NAME"
	EnvUseSQLite         = "RESELLERHUB_USE_SQLITE"
	EnvRedisURL          = "RESELLERHUB_REDIS_URL"
	EnvJWTSecret         = "RESELLERHUB_JWT_SECRET"
	EnvJWTIssuer         = "RESELLERHUB_JWT_ISSUER"
	EnvOrderExpiry       = "RESELLERHUB_ORDER_EXPIRY_HOURS"
	EnvGCPProjectID      = "RESELLERHUB_GCP_PROJECT_ID"
	EnvPubSubTopic       = "RESELLERHUB_PUBSUB_SETTLEMENT_TOPIC"
	EnvOutboxMaxAttempts = "RESELLERHUB_OUTBOX_MAX_ATTEMPTS"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
