package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Import       ImportConfig
	Reports      ReportsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Reports.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CALLPAY_APP_ENV" required:"true"`
	Port         string `envconfig:"CALLPAY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CALLPAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CALLPAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CALLPAY_DB_DSN"`
	Driver string `envconfig:"CALLPAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CALLPAY_DB_HOST"`
	LegacyPort     int    `envconfig:"CALLPAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CALLPAY_DB_USER"`
	LegacyPassword string `envconfig:"CALLPAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"CALLPAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"CALLPAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CALLPAY_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"CALLPAY_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CALLPAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CALLPAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional; without a URL or address the import lock falls back
// to a lease row in the database.
type RedisConfig struct {
	URL          string        `envconfig:"CALLPAY_REDIS_URL"`
	Address      string        `envconfig:"CALLPAY_REDIS_ADDR"`
	Password     string        `envconfig:"CALLPAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"CALLPAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CALLPAY_REDIS_POOL_SIZE" default:"5"`
	MinIdleConns int           `envconfig:"CALLPAY_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"CALLPAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CALLPAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CALLPAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CALLPAY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CALLPAY_AUTO_MIGRATE" default:"false"`
}

type ImportConfig struct {
	SchemaVersion int           `envconfig:"CALLPAY_SCHEMA_VERSION" default:"0"`
	LockKey       string        `envconfig:"CALLPAY_IMPORT_LOCK_KEY" default:"import"`
	LockTTL       time.Duration `envconfig:"CALLPAY_IMPORT_LOCK_TTL" default:"15m"`
	MaxUploadMB   int           `envconfig:"CALLPAY_MAX_UPLOAD_MB" default:"20"`
}

// MaxUploadBytes converts the configured upload ceiling to bytes.
func (i ImportConfig) MaxUploadBytes() int64 {
	if i.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return int64(i.MaxUploadMB) << 20
}

type ReportsConfig struct {
	DayRate      string `envconfig:"CALLPAY_REPORT_DAY_RATE" default:"0.25"`
	NightRate    string `envconfig:"CALLPAY_REPORT_NIGHT_RATE" default:"0.37"`
	DayStartHour int    `envconfig:"CALLPAY_REPORT_DAY_START_HOUR" default:"7"`
	DayEndHour   int    `envconfig:"CALLPAY_REPORT_DAY_END_HOUR" default:"19"`
}

// Rates parses the configured per-minute rates.
func (r ReportsConfig) Rates() (day decimal.Decimal, night decimal.Decimal, err error) {
	day, err = decimal.NewFromString(strings.TrimSpace(r.DayRate))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid %s %q: %w", EnvReportDayRate, r.DayRate, err)
	}
	night, err = decimal.NewFromString(strings.TrimSpace(r.NightRate))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid %s %q: %w", EnvReportNightRate, r.NightRate, err)
	}
	return day, night, nil
}

func (r ReportsConfig) validate() error {
	if _, _, err := r.Rates(); err != nil {
		return err
	}
	if r.DayStartHour < 0 || r.DayStartHour > 23 || r.DayEndHour < 0 || r.DayEndHour > 24 {
		return fmt.Errorf("day window hours must be within 0-24")
	}
	if r.DayStartHour >= r.DayEndHour {
		return fmt.Errorf("%s must be before %s", EnvReportDayStart, EnvReportDayEnd)
	}
	return nil
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = "callpay.db"
		}
		return nil
	}
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
