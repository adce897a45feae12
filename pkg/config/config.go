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
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"FLOORLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"FLOORLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FLOORLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FLOORLINE_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"FLOORLINE_CORS_ORIGINS"`

	ReadTimeout     time.Duration `envconfig:"FLOORLINE_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"FLOORLINE_HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"FLOORLINE_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"FLOORLINE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FLOORLINE_DB_DSN"`
	Driver string `envconfig:"FLOORLINE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"FLOORLINE_DB_HOST"`
	Port     int    `envconfig:"FLOORLINE_DB_PORT" default:"5432"`
	User     string `envconfig:"FLOORLINE_DB_USER"`
	Password string `envconfig:"FLOORLINE_DB_PASSWORD"`
	Name     string `envconfig:"FLOORLINE_DB_NAME"`
	SSLMode  string `envconfig:"FLOORLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FLOORLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FLOORLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FLOORLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FLOORLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// UsesSQLite reports whether the sqlite driver was selected (local runs only).
func (db DBConfig) UsesSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"FLOORLINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FLOORLINE_REDIS_ADDR"`
	Password     string        `envconfig:"FLOORLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"FLOORLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FLOORLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FLOORLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FLOORLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FLOORLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FLOORLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate          bool `envconfig:"FLOORLINE_AUTO_MIGRATE" default:"false"`
	NotificationsEnabled bool `envconfig:"FLOORLINE_NOTIFICATIONS_ENABLED" default:"true"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"FLOORLINE_GCP_PROJECT_ID" required:"true"`
}

type PubSubConfig struct {
	OrdersTopic              string `envconfig:"FLOORLINE_PUBSUB_ORDERS_TOPIC" required:"true"`
	OrdersSubscription       string `envconfig:"FLOORLINE_PUBSUB_ORDERS_SUBSCRIPTION"`
	NotificationTopic        string `envconfig:"FLOORLINE_PUBSUB_NOTIFICATION_TOPIC" default:"floorline-notifications"`
	NotificationSubscription string `envconfig:"FLOORLINE_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FLOORLINE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FLOORLINE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FLOORLINE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"FLOORLINE_CRON_INTERVAL" default:"1h"`
	OverdueGraceDays    int           `envconfig:"FLOORLINE_CRON_OVERDUE_GRACE_DAYS" default:"1"`
	OutboxRetentionDays int           `envconfig:"FLOORLINE_CRON_OUTBOX_RETENTION_DAYS" default:"30"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.UsesSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
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
