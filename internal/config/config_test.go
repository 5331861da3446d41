package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/erp.db", cfg.Database.Path)
	assert.Equal(t, 0.18, cfg.Forms.TaxRate)
	assert.Equal(t, 8.0, cfg.Forms.StandardWorkHours)
	assert.Equal(t, 30, cfg.Forms.DefaultPaymentTerms)
	assert.Equal(t, 2*time.Hour, cfg.Drafts.TTL)
	assert.Equal(t, "RWF", cfg.Currency.Code)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  mode: debug
forms:
  tax_rate: 0.16
  default_payment_terms: 14
drafts:
  ttl: 30m
`)
	t.Setenv("ERP_FORMS_STANDARD_WORK_HOURS", "9")
	t.Setenv("DATABASE_PATH", "/tmp/erp-test.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 0.16, cfg.Forms.TaxRate)
	assert.Equal(t, 14, cfg.Forms.DefaultPaymentTerms)
	assert.Equal(t, 9.0, cfg.Forms.StandardWorkHours)
	assert.Equal(t, 30*time.Minute, cfg.Drafts.TTL)
	assert.Equal(t, "/tmp/erp-test.db", cfg.Database.Path)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = Load(writeConfig(t, "forms:\n  tax_rate: 1.5\n"))
	assert.ErrorContains(t, err, "forms.tax_rate")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080, Mode: "release"},
			Database: DatabaseConfig{Path: "data/erp.db"},
			Forms:    FormsConfig{TaxRate: 0.18, StandardWorkHours: 8, DefaultPaymentTerms: 30},
			Drafts:   DraftsConfig{TTL: time.Hour},
			Currency: CurrencyConfig{Code: "RWF"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"no database", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"negative tax", func(c *Config) { c.Forms.TaxRate = -0.1 }, "forms.tax_rate"},
		{"zero work day", func(c *Config) { c.Forms.StandardWorkHours = 0 }, "forms.standard_work_hours"},
		{"negative terms", func(c *Config) { c.Forms.DefaultPaymentTerms = -1 }, "forms.default_payment_terms"},
		{"no ttl", func(c *Config) { c.Drafts.TTL = 0 }, "drafts.ttl"},
		{"bad currency", func(c *Config) { c.Currency.Code = "RW" }, "currency.code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
