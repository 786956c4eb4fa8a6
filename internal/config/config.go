package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// DefaultAllowList is the permit list used when none is configured.
var DefaultAllowList = []string{
	"/login",
	"/login/**",
	"/access/**",
	"/role/name/**",
	"/github-webhook/**",
	"/channel/all",
	"/user-notification/create",
	"/user/create",
	"/health/**",
	"/metrics",
}

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Login    LoginConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines token parameters and the allow-list.
type AuthConfig struct {
	JWTSecret              string
	AccessTokenTTLMinutes  int
	RefreshTokenTTLMinutes int
	BcryptCost             int
	RotateOnRefresh        bool
	AllowList              []string
}

// LoginConfig controls failed-login throttling. Zero MaxFailedAttempts disables it.
type LoginConfig struct {
	MaxFailedAttempts int
	LockoutMinutes    int
}

type allowListFile struct {
	Allow []string `yaml:"allow"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	allowList, err := loadAllowList()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "notification-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:              getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:  getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			RefreshTokenTTLMinutes: getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_MINUTES", 360),
			BcryptCost:             getEnvAsInt("AUTH_BCRYPT_COST", 12),
			RotateOnRefresh:        getEnvAsBool("AUTH_ROTATE_ON_REFRESH", true),
			AllowList:              allowList,
		},
		Login: LoginConfig{
			MaxFailedAttempts: getEnvAsInt("LOGIN_MAX_FAILED_ATTEMPTS", 5),
			LockoutMinutes:    getEnvAsInt("LOGIN_LOCKOUT_MINUTES", 15),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the token layer cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("AUTH_JWT_SECRET must not be empty")
	}
	if c.Auth.AccessTokenTTLMinutes <= 0 {
		return errors.New("AUTH_ACCESS_TOKEN_TTL_MINUTES must be positive")
	}
	if c.Auth.RefreshTokenTTLMinutes <= c.Auth.AccessTokenTTLMinutes {
		return fmt.Errorf("AUTH_REFRESH_TOKEN_TTL_MINUTES (%d) must exceed the access TTL (%d)",
			c.Auth.RefreshTokenTTLMinutes, c.Auth.AccessTokenTTLMinutes)
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("AUTH_BCRYPT_COST (%d) must be within %d..%d",
			c.Auth.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTTL returns the access token lifetime.
func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTTL returns the refresh token lifetime.
func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLMinutes) * time.Minute
}

// Lockout returns how long a throttled username stays locked.
func (l LoginConfig) Lockout() time.Duration {
	return time.Duration(l.LockoutMinutes) * time.Minute
}

// loadAllowList prefers AUTH_ALLOWLIST_FILE, then AUTH_ALLOWLIST, then the defaults.
func loadAllowList() ([]string, error) {
	if path := os.Getenv("AUTH_ALLOWLIST_FILE"); path != "" {
		return ReadAllowListFile(path)
	}
	if raw := os.Getenv("AUTH_ALLOWLIST"); raw != "" {
		return splitList(raw), nil
	}
	out := make([]string, len(DefaultAllowList))
	copy(out, DefaultAllowList)
	return out, nil
}

// ReadAllowListFile parses a YAML document of the form `allow: [patterns...]`.
func ReadAllowListFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read allow-list file: %w", err)
	}
	var doc allowListFile
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse allow-list file %s: %w", path, err)
	}
	return splitList(strings.Join(doc.Allow, ",")), nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
