package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	//App
	Env string // dev / staging / prod
	//HTTP
	HTTPAddr string
	//Identity tokens
	JWTSecret string
	JWTIssuer string

	// Infrastructure
	Store     string // postgres | memory
	DBAddr    string
	RedisAddr string
	RabbitURL string
	Exchange  string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	ProfileCacheTTL time.Duration

	// Rate limiting
	RLIPLimit      int
	RLIPWindow     time.Duration
	OTPEmailLimit  int
	OTPEmailWindow time.Duration
	OTPIPLimit     int
	OTPIPWindow    time.Duration

	Mail MailConfig
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		Store:    getEnv("STORE", StorePostgres),
	}
	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "")

	switch cfg.Store {
	case StorePostgres:
		cfg.DBAddr = os.Getenv("DB_ADDR")
		if cfg.DBAddr == "" {
			return nil, fmt.Errorf("missing required env var: DB_ADDR")
		}
		if !strings.HasPrefix(cfg.DBAddr, "postgres://") && !strings.HasPrefix(cfg.DBAddr, "postgresql://") {
			return nil, fmt.Errorf("DB_ADDR must be a postgres:// url")
		}
	case StoreMemory:
		if cfg.Env == "prod" {
			return nil, fmt.Errorf("STORE=memory is not allowed in prod")
		}
	default:
		return nil, fmt.Errorf("invalid STORE: %q", cfg.Store)
	}

	// Redis and RabbitMQ are optional: without them the profile cache and
	// the OTP limiter are disabled and audit events are only logged.
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	if strings.Contains(cfg.RedisAddr, " ") {
		return nil, fmt.Errorf("bad REDIS_ADDR (contains spaces): %q", cfg.RedisAddr)
	}
	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.Exchange = getEnv("RABBIT_EXCHANGE", "raknago.audit")

	var err error
	durations := []struct {
		dst *time.Duration
		key string
		def time.Duration
	}{
		{&cfg.HTTPReadTimeout, "HTTP_READ_TIMEOUT", 10 * time.Second},
		{&cfg.HTTPWriteTimeout, "HTTP_WRITE_TIMEOUT", 30 * time.Second},
		{&cfg.HTTPIdleTimeout, "HTTP_IDLE_TIMEOUT", time.Minute},
		{&cfg.ProfileCacheTTL, "PROFILE_CACHE_TTL", 30 * time.Second},
		{&cfg.RLIPWindow, "RL_IP_WINDOW", time.Minute},
		{&cfg.OTPEmailWindow, "OTP_EMAIL_WINDOW", 10 * time.Minute},
		{&cfg.OTPIPWindow, "OTP_IP_WINDOW", 10 * time.Minute},
	}
	for _, d := range durations {
		if *d.dst, err = getDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	cfg.RLIPLimit = getInt("RL_IP_LIMIT", 300)
	cfg.OTPEmailLimit = getInt("OTP_EMAIL_LIMIT", 5)
	cfg.OTPIPLimit = getInt("OTP_IP_LIMIT", 20)

	if cfg.Mail, err = LoadMail(); err != nil {
		return nil, err
	}
	if cfg.Env == "prod" && cfg.Mail.Sender == MailSenderFake {
		return nil, fmt.Errorf("EMAIL_SENDER=fake is not allowed in prod")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

// getInt falls back to def on empty, unparsable or non-positive values.
func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
