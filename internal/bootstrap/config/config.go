package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"safetyhub/internal/bootstrap/logging"
	"safetyhub/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	BaseURL string `mapstructure:"base_url"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type UploadsConfig struct {
	Dir       string `mapstructure:"dir"`
	MaxSizeMB int64  `mapstructure:"max_size_mb"`
}

type QuizConfig struct {
	PassThreshold int `mapstructure:"pass_threshold"`
}

type NotifyConfig struct {
	TimeoutSeconds int        `mapstructure:"timeout_seconds"`
	TemplatesFile  string     `mapstructure:"templates_file"`
	Email          SMTPConfig `mapstructure:"email"`
	SMS            SMSConfig  `mapstructure:"sms"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	TLS      bool   `mapstructure:"tls"`
}

type SMSConfig struct {
	GatewayURL string `mapstructure:"gateway_url"`
	APIKey     string `mapstructure:"api_key"`
	Sender     string `mapstructure:"sender"`
	MaxLength  int    `mapstructure:"max_length"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	if cfg.Quiz.PassThreshold < 0 || cfg.Quiz.PassThreshold > 100 {
		return Config{}, errors.New("quiz.pass_threshold must be between 0 and 100")
	}
	if cfg.Uploads.MaxSizeMB <= 0 {
		return Config{}, errors.New("uploads.max_size_mb must be positive")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("server_addr", cfg.Server.Addr),
	)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "safetyhub")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/safetyhub.sqlite")
	v.SetDefault("uploads.dir", "data/uploads")
	v.SetDefault("uploads.max_size_mb", 64)
	v.SetDefault("quiz.pass_threshold", 80)
	v.SetDefault("notify.timeout_seconds", 15)
	v.SetDefault("notify.templates_file", "configs/templates.toml")
	v.SetDefault("notify.email.port", 587)
	v.SetDefault("notify.email.tls", true)
	v.SetDefault("notify.sms.max_length", 160)
}
