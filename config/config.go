package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Twilio   TwilioConfig   `mapstructure:"twilio"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Resend   ResendConfig   `mapstructure:"resend"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or memory
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

type TwilioConfig struct {
	AccountSID     string `mapstructure:"account_sid"`
	AuthToken      string `mapstructure:"auth_token"`
	WhatsAppNumber string `mapstructure:"whatsapp_number"`
}

func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.WhatsAppNumber != ""
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type NotifyConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type ResendConfig struct {
	Schedule    string        `mapstructure:"schedule"` // cron expression, empty disables the sweep
	MaxAttempts int           `mapstructure:"max_attempts"`
	Lookback    time.Duration `mapstructure:"lookback"`
}

type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type BusinessConfig struct {
	Name      string `mapstructure:"name"`
	ClientURL string `mapstructure:"client_url"`
}

// deployment env names
var envBindings = map[string]string{
	"server.port":                 "PORT",
	"server.mode":                 "GIN_MODE",
	"server.cors_origins":         "CORS_ORIGINS",
	"database.driver":             "DB_DRIVER",
	"database.url":                "DB_URL",
	"database.max_open_conns":     "DB_MAX_OPEN_CONNS",
	"database.max_idle_conns":     "DB_MAX_IDLE_CONNS",
	"database.conn_max_lifetime":  "DB_CONN_MAX_LIFETIME",
	"database.conn_max_idle_time": "DB_CONN_MAX_IDLE_TIME",
	"jwt.secret":                  "JWT_SECRET",
	"jwt.expiry_hours":            "JWT_EXPIRY_HOURS",
	"twilio.account_sid":          "TWILIO_ACCOUNT_SID",
	"twilio.auth_token":           "TWILIO_AUTH_TOKEN",
	"twilio.whatsapp_number":      "TWILIO_WHATSAPP_NUMBER",
	"smtp.host":                   "SMTP_HOST",
	"smtp.port":                   "SMTP_PORT",
	"smtp.username":               "SMTP_USER",
	"smtp.password":               "SMTP_PASS",
	"smtp.from":                   "SMTP_FROM",
	"notify.timeout":              "NOTIFY_TIMEOUT",
	"resend.schedule":             "RESEND_SCHEDULE",
	"resend.max_attempts":         "RESEND_MAX_ATTEMPTS",
	"resend.lookback":             "RESEND_LOOKBACK",
	"admin.email":                 "ADMIN_EMAIL",
	"admin.password":              "ADMIN_PASSWORD",
	"admin.name":                  "ADMIN_NAME",
	"business.name":               "BUSINESS_NAME",
	"business.client_url":         "CLIENT_URL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.conn_max_idle_time", time.Minute)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry_hours", 24)

	v.SetDefault("twilio.account_sid", "")
	v.SetDefault("twilio.auth_token", "")
	v.SetDefault("twilio.whatsapp_number", "")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")

	v.SetDefault("notify.timeout", 10*time.Second)

	v.SetDefault("resend.schedule", "")
	v.SetDefault("resend.max_attempts", 3)
	v.SetDefault("resend.lookback", 72*time.Hour)

	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.name", "Administrator")

	v.SetDefault("business.name", "IBA Global Service")
	v.SetDefault("business.client_url", "http://localhost:3000")
}

// Load reads ./config/config.yaml when present, then the environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) IsRelease() bool {
	return c.Server.Mode == "release"
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("DB_URL is required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}
	if c.IsRelease() && c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must be set in release mode")
	}
	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive, got %d", c.JWT.ExpiryHours)
	}
	if c.Notify.Timeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be positive, got %s", c.Notify.Timeout)
	}
	return nil
}
