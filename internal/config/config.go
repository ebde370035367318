package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/cx-tal-miterani/airport-booking/internal/database"
)

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Kafka    Kafka    `yaml:"kafka"`
	Temporal Temporal `yaml:"temporal"`
	Auth     Auth     `yaml:"auth"`
	Tracing  Tracing  `yaml:"tracing"`
	Filter   Filter   `yaml:"filter"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"airport-booking"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port            string        `yaml:"port" env:"API_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"airport"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"airport"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"airport"`
	SSLMode  string `yaml:"sslmode" env:"POSTGRES_SSLMODE" env-default:"disable"`
	Migrate  bool   `yaml:"migrate" env:"POSTGRES_MIGRATE" env-default:"true"`
}

// DSN builds a postgres URL from the connection fields.
func (p Postgres) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + p.Port,
		Path:     p.DBName,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Addr    string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Kafka struct {
	Enabled bool     `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"false"`
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"airport-orders"`
}

type Temporal struct {
	Enabled   bool   `yaml:"enabled" env:"TEMPORAL_ENABLED" env-default:"false"`
	Host      string `yaml:"host" env:"TEMPORAL_HOST" env-default:"localhost:7233"`
	TaskQueue string `yaml:"task_queue" env:"TEMPORAL_TASK_QUEUE" env-default:"order-confirmation"`
}

type Auth struct {
	JWTSecret     string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL      time.Duration `yaml:"token_ttl" env:"JWT_TTL" env-default:"24h"`
	AdminEmail    string        `yaml:"admin_email" env:"AUTH_ADMIN_EMAIL"`
	AdminPassword string        `yaml:"admin_password" env:"AUTH_ADMIN_PASSWORD"`
}

type Tracing struct {
	Endpoint string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type Filter struct {
	MatchMode string `yaml:"match_mode" env:"FILTER_MATCH_MODE" env-default:"contains"`
}

// New reads config.yaml when present and lets environment variables override it.
func New() (*Config, error) {
	return Load("config.yaml")
}

func Load(path string) (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("config error: JWT_SECRET is required")
	}
	if (c.Auth.AdminEmail == "") != (c.Auth.AdminPassword == "") {
		return errors.New("config error: AUTH_ADMIN_EMAIL and AUTH_ADMIN_PASSWORD must be set together")
	}
	if _, err := database.ParseMatchMode(c.Filter.MatchMode); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MatchMode returns the validated filter match mode.
func (c *Config) MatchMode() database.MatchMode {
	mode, _ := database.ParseMatchMode(c.Filter.MatchMode)
	return mode
}
