package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	Password      PasswordConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Compliance    ComplianceConfig
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
	Env          string `envconfig:"FIELDMARK_APP_ENV" required:"true"`
	Port         string `envconfig:"FIELDMARK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FIELDMARK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FIELDMARK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FIELDMARK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FIELDMARK_DB_DSN"`
	Driver string `envconfig:"FIELDMARK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FIELDMARK_DB_HOST"`
	LegacyPort     int    `envconfig:"FIELDMARK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FIELDMARK_DB_USER"`
	LegacyPassword string `envconfig:"FIELDMARK_DB_PASSWORD"`
	LegacyName     string `envconfig:"FIELDMARK_DB_NAME"`
	LegacySSLMode  string `envconfig:"FIELDMARK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FIELDMARK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FIELDMARK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FIELDMARK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FIELDMARK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FIELDMARK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FIELDMARK_REDIS_ADDR"`
	Password     string        `envconfig:"FIELDMARK_REDIS_PASSWORD"`
	DB           int           `envconfig:"FIELDMARK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FIELDMARK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FIELDMARK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FIELDMARK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FIELDMARK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FIELDMARK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FIELDMARK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FIELDMARK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"FIELDMARK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"FIELDMARK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// AuthRateLimitConfig throttles credential endpoints. A zero window disables
// the limiter.
type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"FIELDMARK_AUTH_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit    int           `envconfig:"FIELDMARK_AUTH_LOGIN_IP_LIMIT" default:"30"`
	LoginEmailLimit int           `envconfig:"FIELDMARK_AUTH_LOGIN_EMAIL_LIMIT" default:"10"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FIELDMARK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FIELDMARK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FIELDMARK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FIELDMARK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FIELDMARK_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate   bool   `envconfig:"FIELDMARK_AUTO_MIGRATE" default:"false"`
	GCSAccessMode string `envconfig:"FIELDMARK_GCS_ACCESS_MODE" default:"public"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FIELDMARK_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"FIELDMARK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FIELDMARK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"FIELDMARK_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"FIELDMARK_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"FIELDMARK_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type PubSubConfig struct {
	VisitEventsTopic        string `envconfig:"FIELDMARK_PUBSUB_VISIT_EVENTS_TOPIC" default:"fm-visit-events"`
	VisitEventsSubscription string `envconfig:"FIELDMARK_PUBSUB_VISIT_EVENTS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FIELDMARK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FIELDMARK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FIELDMARK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// ComplianceConfig tunes supervisor-facing watchdog behavior. The 80/100 hours
// thresholds are fixed policy constants and deliberately not configurable.
type ComplianceConfig struct {
	OpenVisitCeiling time.Duration `envconfig:"FIELDMARK_OPEN_VISIT_CEILING" default:"16h"`
	CronIntervalMin  int           `envconfig:"FIELDMARK_CRON_INTERVAL_MINUTES" default:"60"`
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
