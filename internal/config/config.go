package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Forms    FormsConfig    `mapstructure:"forms"`
	Drafts   DraftsConfig   `mapstructure:"drafts"`
	Currency CurrencyConfig `mapstructure:"currency"`
	Export   ExportConfig   `mapstructure:"export"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// FormsConfig holds the business constants used by derived fields
type FormsConfig struct {
	TaxRate             float64 `mapstructure:"tax_rate"`
	StandardWorkHours   float64 `mapstructure:"standard_work_hours"`
	DefaultPaymentTerms int     `mapstructure:"default_payment_terms"`
}

// DraftsConfig controls how long open forms are kept in memory
type DraftsConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
}

// CurrencyConfig controls how amounts are displayed
type CurrencyConfig struct {
	Code   string `mapstructure:"code"`
	Locale string `mapstructure:"locale"`
}

// ExportConfig holds spreadsheet export configuration
type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// Load reads configuration from configPath and the environment. Every key
// can be overridden by an ERP_ prefixed variable, e.g. ERP_FORMS_TAX_RATE.
// An empty configPath uses defaults and the environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ERP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.path", "data/erp.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.busy_timeout", 5*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.max_size_mb", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age_days", 30)

	v.SetDefault("forms.tax_rate", 0.18)
	v.SetDefault("forms.standard_work_hours", 8.0)
	v.SetDefault("forms.default_payment_terms", 30)

	v.SetDefault("drafts.ttl", 2*time.Hour)
	v.SetDefault("drafts.sweep_schedule", "*/5 * * * *")

	v.SetDefault("currency.code", "RWF")
	v.SetDefault("currency.locale", "en-RW")

	v.SetDefault("export.output_dir", "exports")
}

// bindEnvVars binds the conventional deployment variables
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("server.port", "ERP_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.path", "ERP_DATABASE_PATH", "DATABASE_PATH")
	_ = v.BindEnv("logger.level", "ERP_LOGGER_LEVEL", "LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Forms.TaxRate < 0 || c.Forms.TaxRate >= 1 {
		return fmt.Errorf("forms.tax_rate must be in [0, 1)")
	}
	if c.Forms.StandardWorkHours <= 0 || c.Forms.StandardWorkHours > 24 {
		return fmt.Errorf("forms.standard_work_hours must be in (0, 24]")
	}
	if c.Forms.DefaultPaymentTerms < 0 {
		return fmt.Errorf("forms.default_payment_terms cannot be negative")
	}

	if c.Drafts.TTL <= 0 {
		return fmt.Errorf("drafts.ttl must be positive")
	}
	if len(c.Currency.Code) != 3 {
		return fmt.Errorf("currency.code must be an ISO 4217 code")
	}

	return nil
}
