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
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Razorpay     RazorpayConfig
	Storage      StorageConfig
	Invoice      InvoiceConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"DESIKART_APP_ENV" required:"true"`
	Port         string `envconfig:"DESIKART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DESIKART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DESIKART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DESIKART_DB_DSN"`
	Driver string `envconfig:"DESIKART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DESIKART_DB_HOST"`
	LegacyPort     int    `envconfig:"DESIKART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DESIKART_DB_USER"`
	LegacyPassword string `envconfig:"DESIKART_DB_PASSWORD"`
	LegacyName     string `envconfig:"DESIKART_DB_NAME"`
	LegacySSLMode  string `envconfig:"DESIKART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DESIKART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DESIKART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DESIKART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DESIKART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DESIKART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DESIKART_REDIS_ADDR"`
	Password     string        `envconfig:"DESIKART_REDIS_PASSWORD"`
	DB           int           `envconfig:"DESIKART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DESIKART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DESIKART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DESIKART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DESIKART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DESIKART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig governs anonymous cart session tokens.
type SessionConfig struct {
	TTLHours   int    `envconfig:"DESIKART_SESSION_TTL_HOURS" default:"336"`
	CookieName string `envconfig:"DESIKART_SESSION_COOKIE" default:"desikart_session"`
}

// TTL returns the configured session lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 0
	}
	return time.Duration(s.TTLHours) * time.Hour
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"DESIKART_RAZORPAY_KEY_ID" required:"true"`
	KeySecret string `envconfig:"DESIKART_RAZORPAY_KEY_SECRET" required:"true"`
	BaseURL   string `envconfig:"DESIKART_RAZORPAY_BASE_URL" default:"https://api.razorpay.com/v1"`
}

// StorageConfig points at the S3-compatible bucket holding invoice artifacts.
type StorageConfig struct {
	Bucket    string `envconfig:"DESIKART_STORAGE_BUCKET" required:"true"`
	Endpoint  string `envconfig:"DESIKART_STORAGE_ENDPOINT"`
	Region    string `envconfig:"DESIKART_STORAGE_REGION" default:"ap-south-1"`
	AccessKey string `envconfig:"DESIKART_STORAGE_ACCESS_KEY"`
	SecretKey string `envconfig:"DESIKART_STORAGE_SECRET_KEY"`
	UseSSL    bool   `envconfig:"DESIKART_STORAGE_USE_SSL" default:"true"`
}

type InvoiceConfig struct {
	SellerName    string `envconfig:"DESIKART_INVOICE_SELLER_NAME" default:"DesiKart Retail Pvt Ltd"`
	SellerAddress string `envconfig:"DESIKART_INVOICE_SELLER_ADDRESS" default:"Bengaluru, Karnataka"`
	SellerGSTIN   string `envconfig:"DESIKART_INVOICE_SELLER_GSTIN" default:""`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DESIKART_AUTO_MIGRATE" default:"false"`
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
