package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Verification VerificationConfig `mapstructure:"verification"`
	Email        EmailConfig        `mapstructure:"email"`
	Log          LogConfig          `mapstructure:"log"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // секунды
	WriteTimeout   int      `mapstructure:"write_timeout"` // секунды
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Enabled: при false используется кеш в памяти процесса
	Enabled bool `mapstructure:"enabled"`

	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Для 'single' используется первый адрес.
	Addrs []string `mapstructure:"addrs"`

	// Addr: адрес для режима 'single', если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expiration_hrs"`
}

// VerificationConfig содержит параметры жизненного цикла одноразовых кодов
type VerificationConfig struct {
	CodeTTL              time.Duration `mapstructure:"code_ttl"`
	MaxAttempts          int           `mapstructure:"max_attempts"`
	ResendInterval       time.Duration `mapstructure:"resend_interval"`
	RequireVerifiedEmail bool          `mapstructure:"require_verified_email"`
}

const (
	EmailProviderResend = "resend"
	EmailProviderSMTP   = "smtp"
	EmailProviderNoop   = "noop"
)

// EmailConfig содержит настройки доставки писем
type EmailConfig struct {
	Provider     string `mapstructure:"provider"`
	From         string `mapstructure:"from"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
}

// LogConfig содержит настройки логгера
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// RateLimitConfig содержит настройки ограничения частоты запросов к auth-эндпоинтам
type RateLimitConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL подключения для golang-migrate
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "3000")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 30)
	vip.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	vip.SetDefault("database.driver", DriverPostgres)
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.max_open_conns", 10)
	vip.SetDefault("database.max_idle_conns", 5)
	vip.SetDefault("database.conn_max_lifetime", time.Hour)
	vip.SetDefault("database.migrations_path", "migrations")

	vip.SetDefault("redis.enabled", false)
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("redis.addr", "localhost:6379")

	vip.SetDefault("jwt.expiration_hrs", 24)

	vip.SetDefault("verification.code_ttl", 5*time.Minute)
	vip.SetDefault("verification.max_attempts", 5)
	vip.SetDefault("verification.resend_interval", 60*time.Second)
	vip.SetDefault("verification.require_verified_email", false)

	vip.SetDefault("email.provider", EmailProviderNoop)
	vip.SetDefault("email.from", `"Cyberpunk Red" <noreply@example.com>`)
	vip.SetDefault("email.smtp_port", 587)

	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.development", false)

	vip.SetDefault("rate_limit.enabled", true)
	vip.SetDefault("rate_limit.max_requests", 20)
	vip.SetDefault("rate_limit.window", time.Minute)
}

// Load загружает конфигурацию из файла и переменных окружения.
// Отсутствие файла не считается ошибкой: значения берутся из окружения и умолчаний.
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	setDefaults(vip)

	// Секреты и параметры окружения привязываются явно
	vip.BindEnv("server.port", "SERVER_PORT")

	vip.BindEnv("database.driver", "DATABASE_DRIVER")
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.enabled", "REDIS_ENABLED")
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expiration_hrs", "JWT_EXPIRATION_HRS")

	vip.BindEnv("verification.resend_interval", "VERIFICATION_RESEND_INTERVAL")
	vip.BindEnv("verification.require_verified_email", "VERIFICATION_REQUIRE_VERIFIED_EMAIL")

	vip.BindEnv("email.provider", "EMAIL_PROVIDER")
	vip.BindEnv("email.from", "EMAIL_FROM")
	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.smtp_host", "SMTP_HOST")
	vip.BindEnv("email.smtp_port", "SMTP_PORT")
	vip.BindEnv("email.smtp_user", "SMTP_USER")
	vip.BindEnv("email.smtp_password", "SMTP_PASSWORD")

	vip.BindEnv("log.level", "LOG_LEVEL")
	vip.BindEnv("log.development", "LOG_DEVELOPMENT")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required (check JWT_SECRET env var)")
	}
	if c.JWT.ExpirationHrs <= 0 {
		return fmt.Errorf("jwt expiration must be positive, got %d", c.JWT.ExpirationHrs)
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
			return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Email.Provider {
	case EmailProviderResend:
		if c.Email.ResendAPIKey == "" {
			return fmt.Errorf("resend provider requires an api key (check RESEND_API_KEY env var)")
		}
	case EmailProviderSMTP:
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("smtp provider requires a host (check SMTP_HOST env var)")
		}
	case EmailProviderNoop:
	default:
		return fmt.Errorf("unknown email provider %q", c.Email.Provider)
	}

	if c.Verification.CodeTTL <= 0 {
		return fmt.Errorf("verification code ttl must be positive")
	}
	if c.Verification.MaxAttempts <= 0 {
		return fmt.Errorf("verification max attempts must be positive")
	}
	if c.Verification.ResendInterval < 0 {
		return fmt.Errorf("verification resend interval must not be negative")
	}
	return nil
}
