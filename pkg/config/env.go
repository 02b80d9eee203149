package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "BACKOFFICE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:backoffice.db?_foreign_keys=on"
)

const (
	EnvAppEnv   = "BACKOFFICE_APP_ENV"
	EnvPort     = "BACKOFFICE_APP_PORT"
	EnvLogLevel = "BACKOFFICE_LOG_LEVEL"

	EnvDBDSN    = "BACKOFFICE_DB_DSN"
	EnvDBDriver = "BACKOFFICE_DB_DRIVER"
	EnvDBHost   = "BACKOFFICE_DB_HOST"
	EnvDBPort   = "BACKOFFICE_DB_PORT"
	EnvDBUser   = "BACKOFFICE_DB_USER"
	EnvDBPass   = "BACKOFFICE_DB_PASSWORD"
	EnvDBName   = "BACKOFFICE_DB_NAME"

	EnvRedisURL = "BACKOFFICE_REDIS_URL"

	EnvJWTSecret               = "BACKOFFICE_JWT_SECRET"
	EnvJWTIssuer               = "BACKOFFICE_JWT_ISSUER"
	EnvJWTExpMins              = "BACKOFFICE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes  = "BACKOFFICE_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite               = "BACKOFFICE_USE_SQLITE"
	EnvCategoryMaxDepth        = "BACKOFFICE_CATALOG_CATEGORY_MAX_DEPTH"
	EnvAuthLoginEmailRateLimit = "BACKOFFICE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
