package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type Config struct {
	Env        string        `yaml:"env" env:"ENV"`
	LogLevel   string        `yaml:"log_level" env:"LOG_LEVEL"`
	Name       string        `yaml:"name" env:"NAME"`
	URLTTL     time.Duration `yaml:"url_ttl" env:"URL_TTL"`
	HTTPServer HTTPServer    `yaml:"http_server"`
	Storage    Storage       `yaml:"storage"`
}

type HTTPServer struct {
	Port           Port          `yaml:"port" env:"PORT"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file" env:"HTTP_CERT_FILE"`
	KeyFile        string        `yaml:"key_file" env:"HTTP_KEY_FILE"`
}

const defaultPort Port = 3000

var defaultHTTPServer = HTTPServer{
	Port:           defaultPort,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Port is the listening port of the HTTP server.
type Port int

// parsePort reads the leading integer of v, ignoring anything after it.
// No digits, or a zero value, select the default port.
func parsePort(v string) (interface{}, error) {
	v = strings.TrimLeft(v, " \t\n\r")

	end := 0
	if end < len(v) && (v[end] == '+' || v[end] == '-') {
		end++
	}
	digits := end
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	if end == digits {
		return defaultPort, nil
	}

	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", v, err)
	}
	if n == 0 {
		return defaultPort, nil
	}

	return Port(n), nil
}

type Storage struct {
	Driver   string   `yaml:"driver" env:"STORAGE_DRIVER"`
	SQLite   SQLite   `yaml:"sqlite" envPrefix:"SQLITE_"`
	Postgres Postgres `yaml:"postgres" envPrefix:"POSTGRES_"`
}

// DSN returns the data source name of the selected driver.
func (s *Storage) DSN() string {
	if s.Driver == DriverPostgres {
		return s.Postgres.DSN()
	}
	return s.SQLite.DSN
}

type SQLite struct {
	DSN string `yaml:"dsn" env:"DSN"`
}

var defaultSQLite = SQLite{
	DSN: ":memory:",
}

type Postgres struct {
	User            string        `yaml:"user" env:"USER"`
	Password        string        `yaml:"password" env:"PASSWORD"`
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	DB              string        `yaml:"db" env:"DB"`
	SSLMode         string        `yaml:"sslmode" env:"SSLMODE"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

// Load builds the configuration from defaults, the YAML file at path (when
// path is not empty) and finally the environment.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	setDefaults(&cfg)

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	funcs := map[reflect.Type]env.ParserFunc{
		reflect.TypeOf(Port(0)): parsePort,
	}

	if err := env.ParseWithFuncs(&cfg, funcs); err != nil {
		return nil, fmt.Errorf("%s: failed to parse environment: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}

	return nil
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvDev, EnvStage, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}

	if c.HTTPServer.Port < 0 || c.HTTPServer.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.HTTPServer.Port)
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.URLTTL <= 0 {
		return fmt.Errorf("url_ttl must be positive, got %s", c.URLTTL)
	}

	return nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.LogLevel = "info"
	cfg.Name = "World"
	cfg.URLTTL = 30 * 24 * time.Hour
	cfg.HTTPServer = defaultHTTPServer
	cfg.Storage = Storage{
		Driver:   DriverSQLite,
		SQLite:   defaultSQLite,
		Postgres: defaultPostgres,
	}
}
