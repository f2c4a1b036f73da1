package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DefaultTokenTTL applies when JWT_EXPIRE is unset or unparseable.
const DefaultTokenTTL = 30 * 24 * time.Hour

type Config struct {
	Port              string        `mapstructure:"PORT"`
	Env               string        `mapstructure:"ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	StoreDriver       string        `mapstructure:"STORE_DRIVER"`
	MongoURI          string        `mapstructure:"MONGO_URI"`
	MongoDatabase     string        `mapstructure:"MONGO_DATABASE"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	DBMaxConns        int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns        int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL          string        `mapstructure:"REDIS_URL"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	JWTExpire         string        `mapstructure:"JWT_EXPIRE"`
	CORSOrigins       []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS      float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst    int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit         string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	SelfURL           string        `mapstructure:"SELF_URL"`
	KeepAliveEnabled  bool          `mapstructure:"KEEP_ALIVE_ENABLED"`
	KeepAliveSchedule string        `mapstructure:"KEEP_ALIVE_SCHEDULE"`
	StatsCacheTTL     time.Duration `mapstructure:"STATS_CACHE_TTL"`
	AuditBuffer       int           `mapstructure:"AUDIT_BUFFER"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "STORE_DRIVER", "MONGO_URI", "MONGO_DATABASE",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "REDIS_URL",
	"JWT_SECRET", "JWT_EXPIRE", "CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"BODY_LIMIT", "REQUEST_TIMEOUT", "SELF_URL", "KEEP_ALIVE_ENABLED",
	"KEEP_ALIVE_SCHEDULE", "STATS_CACHE_TTL", "AUDIT_BUFFER",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGO_DATABASE", "panacea")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("JWT_EXPIRE", "30d")
	v.SetDefault("CORS_ORIGINS", "*")
	// 100 requests per 15 minutes per client.
	v.SetDefault("RATE_LIMIT_RPS", 100.0/(15*60))
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("BODY_LIMIT", "10K")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("KEEP_ALIVE_ENABLED", false)
	v.SetDefault("KEEP_ALIVE_SCHEDULE", "*/14 * * * *")
	v.SetDefault("STATS_CACHE_TTL", "30s")
	v.SetDefault("AUDIT_BUFFER", 256)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if cfg.SelfURL == "" {
		cfg.SelfURL = fmt.Sprintf("http://localhost:%s/api/health", cfg.Port)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
		if cfg.IsDev() {
			cfg.LogLevel = "debug"
		}
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// TokenTTL parses JWT_EXPIRE. Go durations ("720h") and whole days ("30d")
// are accepted; anything else falls back to DefaultTokenTTL.
func (c *Config) TokenTTL() time.Duration {
	return ParseTTL(c.JWTExpire)
}

func ParseTTL(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTokenTTL
	}
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || n <= 0 {
			return DefaultTokenTTL
		}
		return time.Duration(n) * 24 * time.Hour
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return DefaultTokenTTL
	}
	return d
}

// weakSecrets are placeholder values that show up in sample .env files.
var weakSecrets = map[string]bool{
	"secret":          true,
	"changeme":        true,
	"change_me":       true,
	"your_jwt_secret": true,
	"yourjwtsecret":   true,
	"supersecret":     true,
	"jwt_secret":      true,
	"jwtsecret":       true,
	"panacea_secret":  true,
	"mysecret":        true,
	"password":        true,
	"12345678":        true,
}

// MinProductionSecretLen is the shortest JWT_SECRET accepted when ENV=production.
const MinProductionSecretLen = 32

// Validate checks that the configuration is safe to run. The server refuses
// to start in production with a placeholder or short signing secret.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() {
		if weakSecrets[strings.ToLower(c.JWTSecret)] {
			return fmt.Errorf("JWT_SECRET is a known placeholder value; refusing to start in production")
		}
		if len(c.JWTSecret) < MinProductionSecretLen {
			return fmt.Errorf("JWT_SECRET must be at least %d bytes in production, got %d", MinProductionSecretLen, len(c.JWTSecret))
		}
	}

	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_DRIVER is %q", DriverMongo)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is %q", DriverPostgres)
		}
	case DriverMemory:
		if c.IsProduction() {
			return fmt.Errorf("STORE_DRIVER %q is not allowed in production", DriverMemory)
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q, %q, or %q, got %q", DriverMongo, DriverPostgres, DriverMemory, c.StoreDriver)
	}

	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", c.RateLimitRPS)
	}
	if c.AuditBuffer < 1 {
		return fmt.Errorf("AUDIT_BUFFER must be at least 1, got %d", c.AuditBuffer)
	}
	return nil
}
