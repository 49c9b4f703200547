package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DriverPostgres хранение комнат в PostgreSQL
	DriverPostgres = "postgres"
	// DriverMemory хранение комнат в памяти процесса
	DriverMemory = "memory"

	// PasswordEnv переменная окружения с паролем БД, перекрывает значение из файла
	PasswordEnv = "SLOTEXCHANGE_DB_PASSWORD"
)

// ErrInvalidConfig некорректная конфигурация
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server          ServerConfig          `toml:"server"`
	Database        DatabaseConfig        `toml:"database"`
	Logs            LogsConfig            `toml:"logs"`
	Metrics         MetricsConfig         `toml:"metrics"`
	ActivityService ActivityServiceConfig `toml:"activity_service"`
	Engine          EngineConfig          `toml:"engine"`
	TravelMode      TravelModeConfig      `toml:"travel_mode"`
}

// ServerConfig HTTP сервер, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig подключение к БД
type DatabaseConfig struct {
	Driver          string `toml:"driver"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig логирование
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig Prometheus метрики
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ActivityServiceConfig внешний журнал активности; пустой URL отключает отправку
type ActivityServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// EngineConfig параметры движка обменов
type EngineConfig struct {
	MaxChainDepth int `toml:"max_chain_depth"`
	SearchWeeks   int `toml:"search_weeks"`
	// LockTimeout ожидание блокировки комнаты в миллисекундах
	LockTimeout int `toml:"lock_timeout"`
}

// TravelModeConfig автоподтверждение режима поездки, интервалы в секундах
type TravelModeConfig struct {
	Enabled       bool `toml:"enabled"`
	CheckInterval int  `toml:"check_interval"`
	ConfirmAfter  int  `toml:"confirm_after"`
}

// Load читает TOML файл, применяет значения по умолчанию и проверяет результат
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if password := strings.TrimSpace(os.Getenv(PasswordEnv)); password != "" {
		cfg.Database.Password = password
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 15)
	setDefault(&c.Server.WriteTimeout, 15)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 10)

	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	setDefault(&c.Database.Port, 5432)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "slotexchange"
	}
	setDefault(&c.ActivityService.Timeout, 5)

	setDefault(&c.Engine.MaxChainDepth, 3)
	setDefault(&c.Engine.SearchWeeks, 2)
	setDefault(&c.Engine.LockTimeout, 5000)

	setDefault(&c.TravelMode.CheckInterval, 60)
	setDefault(&c.TravelMode.ConfirmAfter, 86400)
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	var problems []string
	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	check(c.Server.HTTPPort > 0 && c.Server.HTTPPort < 65536, "server.http_port must be in 1..65535")
	check(c.Server.ReadTimeout > 0 && c.Server.WriteTimeout > 0 && c.Server.IdleTimeout > 0,
		"server timeouts must be positive")
	check(c.Server.ShutdownTimeout > 0, "server.shutdown_timeout must be positive")

	switch c.Database.Driver {
	case DriverPostgres:
		check(c.Database.Host != "", "database.host is required for the postgres driver")
		check(c.Database.User != "", "database.user is required for the postgres driver")
		check(c.Database.DBName != "", "database.dbname is required for the postgres driver")
		check(c.Database.Port > 0 && c.Database.Port < 65536, "database.port must be in 1..65535")
		check(c.Database.MaxOpenConns > 0, "database.max_open_conns must be positive")
		check(c.Database.MaxIdleConns >= 0 && c.Database.MaxIdleConns <= c.Database.MaxOpenConns,
			"database.max_idle_conns must be between 0 and max_open_conns")
	case DriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("database.driver %q must be %s or %s", c.Database.Driver, DriverPostgres, DriverMemory))
	}

	switch strings.ToLower(c.Logs.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logs.level %q must be debug, info, warn or error", c.Logs.Level))
	}

	check(!c.Metrics.Enabled || strings.HasPrefix(c.Metrics.Path, "/"), "metrics.path must start with /")
	check(c.ActivityService.Timeout > 0, "activity_service.timeout must be positive")

	check(c.Engine.MaxChainDepth >= 1 && c.Engine.MaxChainDepth <= 10, "engine.max_chain_depth must be in 1..10")
	check(c.Engine.SearchWeeks >= 1 && c.Engine.SearchWeeks <= 8, "engine.search_weeks must be in 1..8")
	check(c.Engine.LockTimeout > 0, "engine.lock_timeout must be positive")

	check(c.TravelMode.CheckInterval > 0, "travel_mode.check_interval must be positive")
	check(c.TravelMode.ConfirmAfter > 0, "travel_mode.confirm_after must be positive")

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// LockTimeoutDuration таймаут блокировки комнаты
func (e EngineConfig) LockTimeoutDuration() time.Duration {
	return time.Duration(e.LockTimeout) * time.Millisecond
}
