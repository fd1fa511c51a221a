package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "DESIKART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "DESIKART_APP_ENV"
	EnvPort     = "DESIKART_APP_PORT"
	EnvDBDSN    = "DESIKART_DB_DSN"
	EnvDBHost   = "DESIKART_DB_HOST"
	EnvDBUser   = "DESIKART_DB_USER"
	EnvDBName   = "DESIKART_DB_NAME"
	EnvRedisURL = "DESIKART_REDIS_URL"

	EnvRazorpayKeyID  = "DESIKART_RAZORPAY_KEY_ID"
	EnvRazorpaySecret = "DESIKART_RAZORPAY_KEY_SECRET"

	EnvStorageBucket = "DESIKART_STORAGE_BUCKET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
