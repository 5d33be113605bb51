package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// DevSecret is the signing secret used when JWT_SECRET is unset. It is
// refused outside development.
const DevSecret = "insecure-dev-secret"

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	UploadDir string `env:"UPLOAD_DIR, default=./uploads"`
	// TrustProxy reads client addresses from X-Forwarded-For.
	TrustProxy bool `env:"TRUST_PROXY, default=false"`

	Auth    AuthConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Cleanup CleanupConfig
}

type AuthConfig struct {
	JWTSecret        string        `env:"JWT_SECRET,         default=insecure-dev-secret"`
	TokenTTL         time.Duration `env:"TOKEN_TTL,          default=1h"`
	BcryptCost       int           `env:"BCRYPT_COST,        default=10"`
	HashConcurrency  int           `env:"HASH_CONCURRENCY,   default=0"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	LoginLockout     time.Duration `env:"LOGIN_LOCKOUT,      default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=tasktrack"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type CleanupConfig struct {
	Workers int `env:"CLEANUP_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// InsecureSecret reports whether the built-in development secret is in use.
func (c *Config) InsecureSecret() bool { return c.Auth.JWTSecret == DevSecret }

func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.IsProduction() && c.InsecureSecret() {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Auth.LoginMaxAttempts <= 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS must be positive"))
	}
	return errors.Join(errs...)
}
