package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config roomadmin 客户端配置
type Config struct {
	API struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`
	Auth  AuthConfig  `yaml:"auth"`
	Redis RedisConfig `yaml:"redis"`
	Log   struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Mock struct {
		Addr      string `yaml:"addr"`
		Envelope  string `yaml:"envelope"`
		AuthToken string `yaml:"auth_token"`
	} `yaml:"mock"`
	Export struct {
		Sheet string `yaml:"sheet"`
	} `yaml:"export"`
}

// AuthConfig 凭证存储与登录跳转
type AuthConfig struct {
	Store           string `yaml:"store"` // memory | redis
	TokenKey        string `yaml:"token_key"`
	LoginRoute      string `yaml:"login_route"`
	RedirectDelayMS int    `yaml:"redirect_delay_ms"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) RedirectDelay() time.Duration {
	return time.Duration(c.Auth.RedirectDelayMS) * time.Millisecond
}

func defaults() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:8080"
	cfg.API.TimeoutSeconds = 15
	cfg.Auth.Store = "memory"
	cfg.Auth.TokenKey = "roomadmin:auth:token"
	cfg.Auth.LoginRoute = "/login"
	cfg.Auth.RedirectDelayMS = 1500
	cfg.Redis.Addr = "localhost:6379"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.Mock.Addr = ":8080"
	cfg.Mock.Envelope = "paginated"
	cfg.Export.Sheet = "Rooms"
	return cfg
}

// Load 读取配置：默认值 -> ROOMADMIN_CONFIG 指向的 YAML 文件 -> 环境变量
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("ROOMADMIN_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.API.BaseURL = getEnv("API_BASE_URL", cfg.API.BaseURL)
	cfg.API.TimeoutSeconds = parseInt(getEnv("API_TIMEOUT_SECONDS", ""), cfg.API.TimeoutSeconds)

	cfg.Auth.Store = getEnv("AUTH_STORE", cfg.Auth.Store)
	cfg.Auth.TokenKey = getEnv("AUTH_TOKEN_KEY", cfg.Auth.TokenKey)
	cfg.Auth.LoginRoute = getEnv("AUTH_LOGIN_ROUTE", cfg.Auth.LoginRoute)
	cfg.Auth.RedirectDelayMS = parseInt(getEnv("AUTH_REDIRECT_DELAY_MS", ""), cfg.Auth.RedirectDelayMS)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", ""), cfg.Redis.DB)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Mock.Addr = getEnv("MOCK_ADDR", cfg.Mock.Addr)
	cfg.Mock.Envelope = getEnv("MOCK_ENVELOPE", cfg.Mock.Envelope)
	cfg.Mock.AuthToken = getEnv("MOCK_AUTH_TOKEN", cfg.Mock.AuthToken)

	cfg.Export.Sheet = getEnv("EXPORT_SHEET", cfg.Export.Sheet)

	if cfg.Auth.Store != "memory" && cfg.Auth.Store != "redis" {
		return nil, fmt.Errorf("AUTH_STORE must be memory or redis, got %q", cfg.Auth.Store)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
