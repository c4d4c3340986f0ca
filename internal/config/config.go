// Package config carga la configuración del servicio con viper.
//
// Orden de precedencia: variables MEDS_* > archivo (MEDS_CONFIG) > defaults.
// Las variables históricas PORT, DB_DSN, LOG_LEVEL, LOG_FORMAT y APP_NAME
// siguen funcionando.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const EnvPrefix = "MEDS"

type Config struct {
	App    string       `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Digest DigestConfig `mapstructure:"digest"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DBConfig: DSN vacío = storage en memoria.
type DBConfig struct {
	DSN     string `mapstructure:"dsn"`
	Migrate bool   `mapstructure:"migrate"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	JWTIssuer string `mapstructure:"jwt_issuer"`

	RemoteURL     string        `mapstructure:"remote_url"`
	RemoteAPIKey  string        `mapstructure:"remote_api_key"`
	RemoteTimeout time.Duration `mapstructure:"remote_timeout"`
}

type DigestConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Schedule    string `mapstructure:"schedule"`
	Parallelism int    `mapstructure:"parallelism"`
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app", "meds-buddy")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)

	v.SetDefault("db.dsn", "")
	v.SetDefault("db.migrate", true)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "")
	v.SetDefault("auth.remote_url", "")
	v.SetDefault("auth.remote_api_key", "")
	v.SetDefault("auth.remote_timeout", 5*time.Second)

	v.SetDefault("digest.enabled", true)
	v.SetDefault("digest.schedule", "10 0 * * *")
	v.SetDefault("digest.parallelism", 8)
}

// legacyEnv: variables sin prefijo que ya usaban los despliegues.
var legacyEnv = map[string]string{
	"server.port": "PORT",
	"db.dsn":      "DB_DSN",
	"log.level":   "LOG_LEVEL",
	"log.format":  "LOG_FORMAT",
	"app":         "APP_NAME",
}

func Load() (Config, error) {
	return load(os.Getenv(EnvPrefix + "_CONFIG"))
}

func load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Digest.Enabled {
		if _, err := cron.ParseStandard(c.Digest.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("digest.schedule: %w", err))
		}
	}
	if c.Digest.Parallelism <= 0 {
		errs = append(errs, fmt.Errorf("digest.parallelism must be positive"))
	}
	if c.Auth.JWTSecret != "" && c.Auth.RemoteURL != "" {
		errs = append(errs, errors.New("auth: configure jwt_secret or remote_url, not both"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
