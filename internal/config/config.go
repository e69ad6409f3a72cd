package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Redis      RedisConfig      `mapstructure:"redis"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Log        LogConfig        `mapstructure:"log"`
	Mail       MailConfig       `mapstructure:"mail"`
	Audit      AuditConfig      `mapstructure:"audit"`
	Outbox     OutboxConfig     `mapstructure:"outbox"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	RBAC       RBACConfig       `mapstructure:"rbac"`
	Security   SecurityConfig   `mapstructure:"security"`
	SuperAdmin SuperAdminConfig `mapstructure:"-"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Mode           string        `mapstructure:"mode"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	HSTS           bool          `mapstructure:"hsts"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Store   string        `mapstructure:"store"`
	Limit   int64         `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type MailConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	Host      string  `mapstructure:"host"`
	Port      int     `mapstructure:"port"`
	Username  string  `mapstructure:"username"`
	Password  string  `mapstructure:"password"`
	From      string  `mapstructure:"from"`
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

type AuditConfig struct {
	RetentionDays   int           `mapstructure:"retention_days"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	MaxRetries    int           `mapstructure:"max_retries"`
	Channel       string        `mapstructure:"channel"`
	Retention     time.Duration `mapstructure:"retention"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

type RBACConfig struct {
	GrantCacheTTL time.Duration `mapstructure:"grant_cache_ttl"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
	// EncryptionKey is a base64 AES key for medical record fields. Empty
	// leaves them in plain text.
	EncryptionKey string `mapstructure:"encryption_key"`
}

// SuperAdminConfig is the env-only credential for role 0. It never lives in
// a config file.
type SuperAdminConfig struct {
	Email        string `envconfig:"EMAIL"`
	PasswordHash string `envconfig:"PASSWORD_HASH"`
}

func (c SuperAdminConfig) Enabled() bool {
	return c.Email != "" && c.PasswordHash != ""
}

func setDefaults(v *viper.Viper) {
	// Keys without a natural default are still registered so AutomaticEnv
	// can fill them when no config file sets them.
	for _, key := range []string{
		"database.user", "database.password", "database.name",
		"jwt.secret", "redis.url",
		"mail.host", "mail.username", "mail.password", "mail.from",
		"security.encryption_key",
	} {
		v.SetDefault(key, "")
	}

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("jwt.issuer", "clinic-api")
	v.SetDefault("jwt.expiry_hours", 24)

	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.store", "memory")
	v.SetDefault("rate_limit.limit", 100)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("log.level", "info")

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.per_second", 1)
	v.SetDefault("mail.burst", 5)

	v.SetDefault("audit.retention_days", 365)
	v.SetDefault("audit.cleanup_interval", 24*time.Hour)

	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", 5*time.Second)
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", time.Second)
	v.SetDefault("outbox.max_retries", 5)
	v.SetDefault("outbox.channel", "clinic.events")
	v.SetDefault("outbox.retention", 7*24*time.Hour)

	v.SetDefault("metrics.namespace", "clinic")
	v.SetDefault("rbac.grant_cache_ttl", time.Minute)
	v.SetDefault("security.bcrypt_cost", 12)
}

// Load reads config.yaml from path (or the usual locations when path is
// empty), overlays CLINIC_* environment variables and the SUPERADMIN_*
// credential, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("CLINIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("SUPERADMIN", &cfg.SuperAdmin); err != nil {
		return nil, fmt.Errorf("failed to read super admin credential: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("jwt.expiry_hours must be positive")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	switch c.RateLimit.Store {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("redis.url is required for the redis rate limit store")
		}
	default:
		return fmt.Errorf("rate_limit.store must be memory or redis, got %q", c.RateLimit.Store)
	}
	if c.RateLimit.Enabled && c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}
	if c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.From == "") {
		return fmt.Errorf("mail.host and mail.from are required when mail is enabled")
	}
	if (c.SuperAdmin.Email == "") != (c.SuperAdmin.PasswordHash == "") {
		return fmt.Errorf("SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD_HASH must be set together")
	}
	return nil
}
