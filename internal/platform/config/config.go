package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is loaded from an optional YAML file and overlaid with environment
// variables, so container deployments can override any single knob.
type Config struct {
	LogMode string `yaml:"log_mode"`

	HTTP struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`

	DB struct {
		Driver   string `yaml:"driver"` // postgres | sqlite
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		// Path is the sqlite file when Driver == "sqlite".
		Path string `yaml:"path"`
	} `yaml:"db"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Auth struct {
		JWTSecret       string `yaml:"jwt_secret"`
		AccessTokenTTL  int    `yaml:"access_token_ttl_seconds"`
		RefreshTokenTTL int    `yaml:"refresh_token_ttl_seconds"`
	} `yaml:"auth"`

	Tracing struct {
		Enabled      bool   `yaml:"enabled"`
		OTLPEndpoint string `yaml:"otlp_endpoint"`
	} `yaml:"tracing"`
}

func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{LogMode: "development"}
	cfg.HTTP.Addr = ":8080"
	cfg.HTTP.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	cfg.DB.Driver = "postgres"
	cfg.DB.Host = "localhost"
	cfg.DB.Port = "5432"
	cfg.DB.User = "postgres"
	cfg.DB.Name = "modulearn"
	cfg.DB.Path = "modulearn.db"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Auth.JWTSecret = "defaultsecret"
	cfg.Auth.AccessTokenTTL = 3600
	cfg.Auth.RefreshTokenTTL = 86400
	return cfg
}

func (c *Config) applyEnv() {
	c.LogMode = getEnv("LOG_MODE", c.LogMode)
	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	if origins := getEnv("HTTP_ALLOWED_ORIGINS", ""); origins != "" {
		c.HTTP.AllowedOrigins = strings.Split(origins, ",")
	}
	c.DB.Driver = getEnv("DB_DRIVER", c.DB.Driver)
	c.DB.Host = getEnv("POSTGRES_HOST", c.DB.Host)
	c.DB.Port = getEnv("POSTGRES_PORT", c.DB.Port)
	c.DB.User = getEnv("POSTGRES_USER", c.DB.User)
	c.DB.Password = getEnv("POSTGRES_PASSWORD", c.DB.Password)
	c.DB.Name = getEnv("POSTGRES_NAME", c.DB.Name)
	c.DB.Path = getEnv("SQLITE_PATH", c.DB.Path)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)
	c.Auth.JWTSecret = getEnv("JWT_SECRET_KEY", c.Auth.JWTSecret)
	c.Auth.AccessTokenTTL = getEnvAsInt("ACCESS_TOKEN_TTL", c.Auth.AccessTokenTTL)
	c.Auth.RefreshTokenTTL = getEnvAsInt("REFRESH_TOKEN_TTL", c.Auth.RefreshTokenTTL)
	if v := getEnv("TRACING_ENABLED", ""); v != "" {
		c.Tracing.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	c.Tracing.OTLPEndpoint = getEnv("OTLP_ENDPOINT", c.Tracing.OTLPEndpoint)
}

// DSN renders the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func getEnv(key, defaultVal string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	i, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return i
}
