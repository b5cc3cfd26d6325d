package config

const (
	EnvPrefix = "CALLPAY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv          = "CALLPAY_APP_ENV"
	EnvPort            = "CALLPAY_APP_PORT"
	EnvDBDSN           = "CALLPAY_DB_DSN"
	EnvDBHost          = "CALLPAY_DB_HOST"
	EnvDBUser          = "CALLPAY_DB_USER"
	EnvDBName          = "CALLPAY_DB_NAME"
	EnvRedisURL        = "CALLPAY_REDIS_URL"
	EnvUseSQLite       = "CALLPAY_USE_SQLITE"
	EnvSchemaVersion   = "CALLPAY_SCHEMA_VERSION"
	EnvImportLockTTL   = "CALLPAY_IMPORT_LOCK_TTL"
	EnvReportDayRate   = "CALLPAY_REPORT_DAY_RATE"
	EnvReportNightRate = "CALLPAY_REPORT_NIGHT_RATE"
	EnvReportDayStart  = "CALLPAY_REPORT_DAY_START_HOUR"
	EnvReportDayEnd    = "CALLPAY_REPORT_DAY_END_HOUR"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
