package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.GRPCAddr)
	assert.Equal(t, "dev-token", cfg.Server.APIToken)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 0.01, cfg.Planning.Tolerance)
	assert.Equal(t, "KRW", cfg.Planning.Currency)
	assert.Equal(t, 3, cfg.Planning.RecommendationLimit)
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=folio sslmode=disable",
		cfg.Storage.ConnString())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
environment = "production"

[server]
grpc_addr = ":9000"
api_token = "file-token"

[storage]
driver = "memory"

[planning]
tolerance = 0.02
currency = "USD"

[scheduler]
grace_days = 5
`)
	t.Setenv("API_TOKEN", "env-token")
	t.Setenv("DB_HOST", "db")
	t.Setenv("FOLIO_CURRENCY", "eur")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.Equal(t, ":9000", cfg.Server.GRPCAddr)
	assert.Equal(t, "env-token", cfg.Server.APIToken)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "db", cfg.Storage.Host)
	assert.Equal(t, 0.02, cfg.Planning.Tolerance)
	assert.Equal(t, "EUR", cfg.Planning.Currency)
	assert.Equal(t, 5, cfg.Scheduler.GraceDays)
	assert.Equal(t, ":8081", cfg.Server.OpsAddr, "unset keys keep defaults")
}

func TestLoad_DSNOverridesFields(t *testing.T) {
	t.Setenv("DB_CONN_STR", "postgres://u:p@h/folio")
	t.Setenv("FOLIO_DB_DSN", "postgres://u:p@other/folio")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@other/folio", cfg.Storage.ConnString())
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeFile(t, "server = [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "Defaults", mutate: func(*Config) {}},
		{name: "Unknown Driver", mutate: func(c *Config) { c.Storage.Driver = "sqlite" }, wantErr: "unknown storage driver"},
		{name: "Zero Tolerance", mutate: func(c *Config) { c.Planning.Tolerance = 0 }, wantErr: "tolerance"},
		{name: "Empty Token", mutate: func(c *Config) { c.Server.APIToken = "" }, wantErr: "API token"},
		{name: "Dev Token In Production", mutate: func(c *Config) { c.Environment = EnvProduction }, wantErr: "development API token"},
		{name: "Negative Grace", mutate: func(c *Config) { c.Scheduler.GraceDays = -1 }, wantErr: "grace days"},
		{name: "Bad Lifetime", mutate: func(c *Config) { c.Storage.ConnMaxLifetime = "soon" }, wantErr: "conn_max_lifetime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStorageLifetime(t *testing.T) {
	d, err := StorageConfig{ConnMaxLifetime: "30m"}.Lifetime()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, d)

	d, err = StorageConfig{}.Lifetime()
	require.NoError(t, err)
	assert.Zero(t, d)
}
