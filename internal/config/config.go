// Package config предоставляет структуры и функции для загрузки конфигурации Natours API.
//
// Конфигурация читается из YAML-файла (путь в CONFIG_PATH), значения могут быть
// переопределены переменными окружения. Перед чтением подгружается необязательный
// файл config.env.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	// EnvDevelopment включает подробные ответы об ошибках и логирование запросов.
	EnvDevelopment = "development"
	// EnvProduction скрывает детали программных ошибок от клиента.
	EnvProduction = "production"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env        string          `yaml:"env" env:"NATOURS_ENV" env-default:"development"`
	HTTPServer HTTPServer      `yaml:"http_server"`
	Mongo      Mongo           `yaml:"mongo"`
	Redis      RedisConnection `yaml:"redis_connection"`
	JWT        JWTToken        `yaml:"jwt"`
	SMTP       SMTP            `yaml:"smtp"`
	RateLimit  RateLimit       `yaml:"rate_limit"`
	CORS       CORS            `yaml:"cors"`
	Cache      Cache           `yaml:"cache"`
}

// HTTPServer структура для настройки сервера. PublicURL адрес, по которому клиенты
// видят API: из него строятся ссылки в письмах.
type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":3000"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	BodyLimit   int64         `yaml:"body_limit" env-default:"10240"`
	PublicURL   string        `yaml:"public_url" env:"PUBLIC_URL" env-default:"http://localhost:3000"`
}

// Mongo настройки подключения к MongoDB.
type Mongo struct {
	URI            string        `yaml:"uri" env:"MONGO_URI" env-required:"true"`
	Database       string        `yaml:"database" env:"MONGO_DATABASE" env-default:"natours"`
	ConnectRetries uint64        `yaml:"connect_retries" env-default:"5"`
	ConnectBackoff time.Duration `yaml:"connect_backoff" env-default:"500ms"`
	MigrationsPath string        `yaml:"migrations_path" env-default:"./migrations"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кэш и переводит лимитер в память процесса.
type RedisConnection struct {
	Address     string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	Secret    string        `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"JWT_EXPIRES_IN" env-default:"2160h"`
	CookieTTL time.Duration `yaml:"cookie_ttl" env:"JWT_COOKIE_EXPIRES_IN" env-default:"2160h"`
}

// SMTP настройки почтового транспорта.
type SMTP struct {
	Host        string        `yaml:"host" env:"EMAIL_HOST"`
	Port        string        `yaml:"port" env:"EMAIL_PORT" env-default:"587"`
	User        string        `yaml:"user" env:"EMAIL_USERNAME"`
	Password    string        `yaml:"password" env:"EMAIL_PASSWORD"`
	From        string        `yaml:"from" env-default:"Natours <support@natours.dev>"`
	StartTLS    bool          `yaml:"start_tls" env-default:"true"`
	SendTimeout time.Duration `yaml:"send_timeout" env-default:"10s"`
}

// RateLimit настройки фиксированного окна для /api.
type RateLimit struct {
	Requests int           `yaml:"requests" env-default:"100"`
	Window   time.Duration `yaml:"window" env-default:"1h"`
}

// CORS список разрешённых источников.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

// Cache время жизни закэшированных туров и статистики.
type Cache struct {
	TTL time.Duration `yaml:"ttl" env-default:"5m"`
}

// IsProduction сообщает, запущено ли приложение в боевом режиме.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load читает конфигурацию из файла path. Рядом с файлом и в рабочем каталоге
// ищется config.env, отсутствие которого не считается ошибкой.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if path == "" {
		return nil, fmt.Errorf("%s: config path is empty", op)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, envFile := range []string{filepath.Join(filepath.Dir(path), "config.env"), "config.env"} {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: load %s: %w", op, envFile, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return nil, fmt.Errorf("%s: unknown env %q", op, cfg.Env)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH, завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"  BodyLimit: %d\n"+
			"Mongo:\n"+
			"  URI: %s\n"+
			"  Database: %s\n"+
			"Redis:\n"+
			"  Address: %s\n"+
			"  DB: %d\n"+
			"JWT:\n"+
			"  Secret: %s\n"+
			"  TokenTTL: %s\n"+
			"SMTP:\n"+
			"  Host: %s\n"+
			"  Port: %s\n"+
			"  User: %s\n"+
			"RateLimit:\n"+
			"  Requests: %d\n"+
			"  Window: %s\n"+
			"CORS:\n"+
			"  AllowedOrigins: %s\n",
		c.Env,
		c.HTTPServer.Address,
		c.HTTPServer.Timeout,
		c.HTTPServer.IdleTimeout,
		c.HTTPServer.BodyLimit,
		mask(c.Mongo.URI),
		c.Mongo.Database,
		c.Redis.Address,
		c.Redis.DB,
		mask(c.JWT.Secret),
		c.JWT.TokenTTL,
		c.SMTP.Host,
		c.SMTP.Port,
		c.SMTP.User,
		c.RateLimit.Requests,
		c.RateLimit.Window,
		strings.Join(c.CORS.AllowedOrigins, ","),
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
