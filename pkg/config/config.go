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
	Commerce     CommerceConfig
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
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RESELLERHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"RESELLERHUB_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"RESELLERHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RESELLERHUB_LOG_WARN_STACK" default:"false"`
	// CORSOrigins is a comma separated allow list.
	CORSOrigins []string `envconfig:"RESELLERHUB_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"RESELLERHUB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"RESELLERHUB_DB_DSN"`
	Driver string `envconfig:"RESELLERHUB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"RESELLERHUB_DB_HOST"`
	Port     int    `envconfig:"RESELLERHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"RESELLERHUB_DB_USER"`
	Password string `envconfig:"RESELLERHUB_DB_PASSWORD"`
	Name     string `envconfig:"RESELLERHUB_DB_NAME"`
	SSLMode  string `envconfig:"RESELLERHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RESELLERHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RESELLERHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RESELLERHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RESELLERHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver was selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"RESELLERHUB_REDIS_URL"`
	Address      string        `envconfig:"RESELLERHUB_REDIS_ADDR"`
	Password     string        `envconfig:"RESELLERHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"RESELLERHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RESELLERHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RESELLERHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RESELLERHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RESELLERHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RESELLERHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"RESELLERHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RESELLERHUB_JWT_ISSUER" default:"resellerhub"`
	ExpirationMinutes int    `envconfig:"RESELLERHUB_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RESELLERHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RESELLERHUB_AUTO_MIGRATE" default:"false"`
}

// CommerceConfig holds settlement knobs that operators tune per deployment.
type CommerceConfig struct {
	OrderExpiryHours int           `envconfig:"RESELLERHUB_ORDER_EXPIRY_HOURS" default:"72"`
	IdempotencyTTL   time.Duration `envconfig:"RESELLERHUB_IDEMPOTENCY_TTL" default:"24h"`
}

// OrderExpiry returns how long an unpaid online order may stay pending.
func (c CommerceConfig) OrderExpiry() time.Duration {
	if c.OrderExpiryHours <= 0 {
		return 72 * time.Hour
	}
	return time.Duration(c.OrderExpiryHours) * time.Hour
}

type GCPConfig struct {
	ProjectID              string `envconfig:"RESELLERHUB_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"RESELLERHUB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"RESELLERHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	SettlementTopic string `envconfig:"RESELLERHUB_PUBSUB_SETTLEMENT_TOPIC" default:"resellerhub-settlement-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"RESELLERHUB_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"RESELLERHUB_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"RESELLERHUB_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"RESELLERHUB_OUTBOX_RETENTION_DAYS" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"RESELLERHUB_CRON_INTERVAL" default:"1h"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
	}
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
