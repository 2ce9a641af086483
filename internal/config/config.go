package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	Auth    AuthConfig
	Session SessionConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode is kept explicit for managed-cloud posture.
	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	// JWKSURL is the identity provider's JSON key set endpoint.
	JWKSURL  string
	Issuer   string
	Audience string

	// MockAuth enables the deterministic test verifier. It can never be
	// enabled in production; Validate() rejects that combination outright.
	MockAuth bool
}

type SessionConfig struct {
	// Timeout is the absolute PHI session ceiling. Regulatory default: 15m.
	Timeout time.Duration
	// WarningWindow is how long before expiry the holder is warned.
	WarningWindow time.Duration
	// RefreshWindow is how long before expiry activity triggers a refresh.
	RefreshWindow time.Duration
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Auth.JWKSURL = strings.TrimSpace(os.Getenv("AUTH_JWKS_URL"))
	c.Auth.Issuer = strings.TrimSpace(os.Getenv("AUTH_ISSUER"))
	c.Auth.Audience = strings.TrimSpace(os.Getenv("AUTH_AUDIENCE"))
	c.Auth.MockAuth = parseBool(os.Getenv("AUTH_MOCK"))

	// Minute-granularity env vars are optional; defaults applied in Validate().
	c.Session.Timeout = minutesEnv("SESSION_TIMEOUT_MINUTES")
	c.Session.WarningWindow = minutesEnv("SESSION_WARNING_MINUTES")
	c.Session.RefreshWindow = minutesEnv("SESSION_REFRESH_WINDOW_MINUTES")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	// The mock verifier must be impossible to reach in a compliance
	// deployment. This is a hard startup failure, not a warning.
	if c.Auth.MockAuth && c.IsProduction() {
		errs = append(errs, errors.New("AUTH_MOCK cannot be enabled in production"))
	}
	if !c.Auth.MockAuth {
		if c.Auth.JWKSURL == "" {
			errs = append(errs, errors.New("AUTH_JWKS_URL is required unless AUTH_MOCK is set"))
		}
		if c.Auth.Issuer == "" {
			errs = append(errs, errors.New("AUTH_ISSUER is required unless AUTH_MOCK is set"))
		}
	}
	if c.IsProduction() && c.Auth.Audience == "" {
		errs = append(errs, errors.New("AUTH_AUDIENCE is required in production"))
	}

	if c.Session.Timeout <= 0 {
		// Regulatory ceiling for PHI sessions.
		c.Session.Timeout = 15 * time.Minute
	}
	if c.Session.WarningWindow <= 0 {
		c.Session.WarningWindow = 2 * time.Minute
	}
	if c.Session.RefreshWindow <= 0 {
		c.Session.RefreshWindow = 5 * time.Minute
	}
	if c.Session.WarningWindow >= c.Session.Timeout {
		errs = append(errs, errors.New("SESSION_WARNING_MINUTES must be less than SESSION_TIMEOUT_MINUTES"))
	}
	if c.Session.RefreshWindow >= c.Session.Timeout {
		errs = append(errs, errors.New("SESSION_REFRESH_WINDOW_MINUTES must be less than SESSION_TIMEOUT_MINUTES"))
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func minutesEnv(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Minute
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
