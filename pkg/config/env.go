package config

const (
	EnvPrefix = "FLOORLINE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv   = "FLOORLINE_APP_ENV"
	EnvPort     = "FLOORLINE_APP_PORT"
	EnvDBDSN    = "FLOORLINE_DB_DSN"
	EnvDBDriver = "FLOORLINE_DB_DRIVER"
	EnvDBHost   = "FLOORLINE_DB_HOST"
	EnvDBUser   = "FLOORLINE_DB_USER"
	EnvDBName   = "FLOORLINE_DB_NAME"
	EnvDBPass   = "FLOORLINE_DB_PASSWORD"

	EnvRedisURL             = "FLOORLINE_REDIS_URL"
	EnvGCPProjectID         = "FLOORLINE_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic    = "FLOORLINE_PUBSUB_ORDERS_TOPIC"
	EnvPubSubOrdersSub      = "FLOORLINE_PUBSUB_ORDERS_SUBSCRIPTION"
	EnvPubSubNotifyTopic    = "FLOORLINE_PUBSUB_NOTIFICATION_TOPIC"
	EnvCronOverdueGraceDays = "FLOORLINE_CRON_OVERDUE_GRACE_DAYS"
	EnvNotificationsEnabled = "FLOORLINE_NOTIFICATIONS_ENABLED"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
