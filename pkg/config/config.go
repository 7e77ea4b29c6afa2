package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "tablebook"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TABLEBOOK_DB_DSN"
	EnvDBHost = "TABLEBOOK_DB_HOST"
	EnvDBUser = "TABLEBOOK_DB_USER"
	EnvDBName = "TABLEBOOK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Calendar     CalendarConfig
	Reservations ReservationsConfig
	Security     SecurityConfig
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
	Env          string `envconfig:"TABLEBOOK_APP_ENV" required:"true"`
	Port         string `envconfig:"TABLEBOOK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TABLEBOOK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TABLEBOOK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TABLEBOOK_DB_DSN"`
	Driver string `envconfig:"TABLEBOOK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TABLEBOOK_DB_HOST"`
	LegacyPort     int    `envconfig:"TABLEBOOK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TABLEBOOK_DB_USER"`
	LegacyPassword string `envconfig:"TABLEBOOK_DB_PASSWORD"`
	LegacyName     string `envconfig:"TABLEBOOK_DB_NAME"`
	LegacySSLMode  string `envconfig:"TABLEBOOK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TABLEBOOK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TABLEBOOK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TABLEBOOK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TABLEBOOK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TABLEBOOK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TABLEBOOK_REDIS_ADDR"`
	Password     string        `envconfig:"TABLEBOOK_REDIS_PASSWORD"`
	DB           int           `envconfig:"TABLEBOOK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TABLEBOOK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TABLEBOOK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TABLEBOOK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TABLEBOOK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TABLEBOOK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CalendarConfig tunes the external calendar mirror.
type CalendarConfig struct {
	BaseURL        string        `envconfig:"TABLEBOOK_CALENDAR_BASE_URL" default:"https://www.googleapis.com/calendar/v3"`
	CalendarID     string        `envconfig:"TABLEBOOK_CALENDAR_ID" default:"primary"`
	RequestTimeout time.Duration `envconfig:"TABLEBOOK_CALENDAR_REQUEST_TIMEOUT" default:"10s"`
	RetryMaxWait   time.Duration `envconfig:"TABLEBOOK_CALENDAR_RETRY_MAX_WAIT" default:"30s"`
	TimeZone       string        `envconfig:"TABLEBOOK_CALENDAR_TIMEZONE" default:"UTC"`
}

// ReservationsConfig carries the occupancy windows driving the expiry sweep.
type ReservationsConfig struct {
	SlotDuration  time.Duration `envconfig:"TABLEBOOK_RESERVATION_SLOT_DURATION" default:"2h"`
	PendingGrace  time.Duration `envconfig:"TABLEBOOK_RESERVATION_PENDING_GRACE" default:"20m"`
	SweepInterval time.Duration `envconfig:"TABLEBOOK_RESERVATION_SWEEP_INTERVAL" default:"20s"`
}

// SecurityConfig holds the at-rest token cipher key (base64, 32 bytes decoded).
type SecurityConfig struct {
	TokenCipherKey string `envconfig:"TABLEBOOK_TOKEN_CIPHER_KEY" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TABLEBOOK_AUTO_MIGRATE" default:"false"`
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
