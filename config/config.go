package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins"` // пусто: любые origin
	RequestTimeout string   `yaml:"requestTimeout"` // 30s
}

type GRPC struct {
	Addr string `yaml:"addr"` // пусто: gRPC health не поднимается
}

type WS struct {
	PingInterval   string `yaml:"pingInterval"`   // 15s
	WriteWait      string `yaml:"writeWait"`      // 5s
	MaxMessageSize int64  `yaml:"maxMessageSize"` // bytes
}

type Chat struct {
	MaxMessageLength int `yaml:"maxMessageLength"`
}

type Postgres struct {
	DSN             string `yaml:"dsn"`
	MaxConns        int32  `yaml:"maxConns"`
	MinConns        int32  `yaml:"minConns"`
	MaxConnLifetime string `yaml:"maxConnLifetime"`
	ApplicationName string `yaml:"applicationName"`
}

type Redis struct {
	Addr     string `yaml:"addr"` // пусто: подписчик выключен
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type Auth struct {
	JWTPublicKeyPath string `yaml:"jwtPublicKeyPath"` // пусто: токен не проверяется
	Issuer           string `yaml:"issuer"`
	Audience         string `yaml:"audience"`
	ClockSkew        string `yaml:"clockSkew"`
}

type Internal struct {
	Token string `yaml:"token"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // realtime-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	GRPC     GRPC     `yaml:"grpc"`
	WS       WS       `yaml:"ws"`
	Chat     Chat     `yaml:"chat"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Auth     Auth     `yaml:"auth"`
	Internal Internal `yaml:"internal"`
	Logging  Logging  `yaml:"logging"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.Auth.JWTPublicKeyPath != "" && c.Auth.Issuer == "" {
		return errors.New("auth.issuer is required when auth.jwtPublicKeyPath is set")
	}
	// дефолты
	if c.WS.MaxMessageSize <= 0 {
		c.WS.MaxMessageSize = 64 << 10
	}
	if c.Chat.MaxMessageLength <= 0 {
		c.Chat.MaxMessageLength = 4000
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = "clinic:notifications"
	}
	if c.Postgres.ApplicationName == "" {
		c.Postgres.ApplicationName = "realtime-service"
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "realtime-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	c.Internal.Token = strings.TrimSpace(c.Internal.Token)
	return nil
}

func (w WS) PingEvery() time.Duration { return parseDurationOr(15*time.Second, w.PingInterval) }
func (w WS) WriteTimeout() time.Duration { return parseDurationOr(5*time.Second, w.WriteWait) }

func (h HTTP) Timeout() time.Duration { return parseDurationOr(30*time.Second, h.RequestTimeout) }

func (p Postgres) ConnLifetime() time.Duration {
	return parseDurationOr(time.Hour, p.MaxConnLifetime)
}

func (a Auth) Skew() time.Duration { return parseDurationOr(30*time.Second, a.ClockSkew) }

func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
