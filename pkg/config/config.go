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
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Trial         TrialConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Stripe        StripeConfig
	Instagram     InstagramConfig
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
	Env          string `envconfig:"STRANDLY_APP_ENV" required:"true"`
	Port         string `envconfig:"STRANDLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STRANDLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STRANDLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"STRANDLY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"STRANDLY_DB_DSN"`
	Driver string `envconfig:"STRANDLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STRANDLY_DB_HOST"`
	LegacyPort     int    `envconfig:"STRANDLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STRANDLY_DB_USER"`
	LegacyPassword string `envconfig:"STRANDLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"STRANDLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"STRANDLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STRANDLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STRANDLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STRANDLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STRANDLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STRANDLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STRANDLY_REDIS_ADDR"`
	Password     string        `envconfig:"STRANDLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"STRANDLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STRANDLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STRANDLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STRANDLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STRANDLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STRANDLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STRANDLY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STRANDLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"STRANDLY_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"STRANDLY_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STRANDLY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STRANDLY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STRANDLY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STRANDLY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STRANDLY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STRANDLY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"STRANDLY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"STRANDLY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"STRANDLY_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"STRANDLY_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"STRANDLY_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STRANDLY_AUTO_MIGRATE" default:"false"`
}

// TrialConfig controls the free trial granted to new accounts.
type TrialConfig struct {
	LengthDays     int `envconfig:"STRANDLY_TRIAL_LENGTH_DAYS" default:"14"`
	WarnWithinDays int `envconfig:"STRANDLY_TRIAL_WARN_WITHIN_DAYS" default:"3"`
	InviteTTLDays  int `envconfig:"STRANDLY_INVITE_TTL_DAYS" default:"14"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"STRANDLY_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"STRANDLY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STRANDLY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	EngagementTopic        string `envconfig:"STRANDLY_PUBSUB_ENGAGEMENT_TOPIC" default:"strandly-engagement-events"`
	EngagementSubscription string `envconfig:"STRANDLY_PUBSUB_ENGAGEMENT_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"STRANDLY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"STRANDLY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"STRANDLY_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type StripeConfig struct {
	APIKey             string `envconfig:"STRANDLY_STRIPE_API_KEY"`
	Secret             string `envconfig:"STRANDLY_STRIPE_SECRET"`
	Env                string `envconfig:"STRANDLY_STRIPE_ENV" default:"test"`
	ProPriceID         string `envconfig:"STRANDLY_STRIPE_PRO_PRICE_ID"`
	CheckoutSuccessURL string `envconfig:"STRANDLY_STRIPE_CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL  string `envconfig:"STRANDLY_STRIPE_CHECKOUT_CANCEL_URL"`
	PortalReturnURL    string `envconfig:"STRANDLY_STRIPE_PORTAL_RETURN_URL"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// InstagramConfig covers the OAuth collaborator; the token exchange happens off-box.
type InstagramConfig struct {
	ClientID    string `envconfig:"STRANDLY_INSTAGRAM_CLIENT_ID"`
	RedirectURL string `envconfig:"STRANDLY_INSTAGRAM_REDIRECT_URL"`
	Scopes      string `envconfig:"STRANDLY_INSTAGRAM_SCOPES" default:"user_profile,user_media"`
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
