package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Report    ReportConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string   `validate:"required,numeric"`
	ReadTimeout    int      `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout   int      `mapstructure:"write_timeout" validate:"gte=0"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `validate:"required"`
	Port            string `validate:"required,numeric"`
	User            string `validate:"required"`
	Password        string
	DBName          string `validate:"required"`
	SSLMode         string `validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ApplicationName string `mapstructure:"application_name"`
	// MigrationsPath: путь к каталогу миграций. Пустая строка отключает миграции при старте.
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=single sentinel cluster"`

	// Addrs: Список адресов Redis (хост:порт). Для 'single' используется первый адрес.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Адрес для режима 'single', если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name" validate:"required_if=Mode sentinel"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// Configured сообщает, задан ли хотя бы один адрес Redis
func (r *RedisConfig) Configured() bool {
	return len(r.Addrs) > 0 || r.Addr != ""
}

// ReportConfig содержит настройки выгрузок
type ReportConfig struct {
	SheetName string `mapstructure:"sheet_name" validate:"omitempty,max=31"`
	CSVBOM    bool   `mapstructure:"csv_bom"`
}

// RateLimitConfig содержит настройки ограничения эндпоинтов отчетов
type RateLimitConfig struct {
	Enabled     bool
	MaxRequests int `mapstructure:"max_requests" validate:"required_if=Enabled true,gte=0"`
	WindowSec   int `mapstructure:"window_sec" validate:"required_if=Enabled true,gte=0"`
}

// Window возвращает окно лимита как time.Duration
func (r *RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSec) * time.Second
}

// MetricsConfig содержит настройки эндпоинта Prometheus
type MetricsConfig struct {
	Enabled bool
	Path    string `validate:"omitempty,startswith=/"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL подключения для cmd/migrate (lib/pq принимает URL напрямую).
// Логин и пароль экранируются.
func (d *DatabaseConfig) PostgresURL() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// Load загружает конфигурацию из .env, файла и переменных окружения
func Load(configPath string) (*Config, error) {
	// .env не обязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Предупреждение: не удалось прочитать .env: %v", err)
	}

	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 60)
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.max_open_conns", 25)
	vip.SetDefault("database.max_idle_conns", 5)
	vip.SetDefault("database.application_name", "tabulation-api")
	vip.SetDefault("database.migrations_path", "migrations")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("report.sheet_name", "Scores")
	vip.SetDefault("rate_limit.max_requests", 10)
	vip.SetDefault("rate_limit.window_sec", 60)
	vip.SetDefault("metrics.enabled", true)
	vip.SetDefault("metrics.path", "/metrics")

	// 2. Привязываем переменные окружения ЯВНО
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("server.port", "SERVER_PORT")

	vip.BindEnv("report.sheet_name", "REPORT_SHEET_NAME")
	vip.BindEnv("report.csv_bom", "REPORT_CSV_BOM")

	vip.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	vip.BindEnv("metrics.enabled", "METRICS_ENABLED")

	// 3. Файл конфигурации (не страшно, если его нет, т.к. есть BindEnv)
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 4. Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Port: %s", cfg.Database.Port)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Mode: %s, configured: %t", cfg.Redis.Mode, cfg.Redis.Configured())
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Rate Limit Enabled: %t", cfg.RateLimit.Enabled)
		log.Printf("-----------------------------------------")
	}

	// 6. Проверка обязательных параметров
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Enabled && !cfg.Redis.Configured() {
		return nil, fmt.Errorf("rate limiting requires redis (check REDIS_ADDR or REDIS_ADDRS env vars)")
	}
	if os.Getenv("GIN_MODE") == "release" && cfg.Database.Password == "" {
		return nil, fmt.Errorf("database password is required in production mode (check DATABASE_PASSWORD env var)")
	}

	return &cfg, nil
}

// Validate проверяет структуру конфигурации по тегам validate
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("invalid config: %s failed on '%s' (%d problem(s))",
				first.Namespace(), first.Tag(), len(fieldErrs))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
