package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
server:
  port: 9090
  corsOrigins: ["http://localhost:3000"]
database:
  driver: postgres
  host: db
  port: 5432
  user: app
  password: from-file
  name: callprep
storage:
  driver: memory
ai:
  provider: openai
  apiKey: sk-file
  model: gpt-4o
  timeout: 45s
transcription:
  provider: whisper
  endpoint: http://whisper:9000
auth:
  apiKeys:
    alice: key-a
`

func TestParse_DefaultsAndValues(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DATABASE_PASSWORD", "")
	t.Setenv("WHISPER_API_URL", "")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "sk-file", cfg.AI.APIKey)
	assert.Equal(t, 45*time.Second, cfg.AI.Timeout)
	assert.Equal(t, float32(0.7), cfg.AI.Temperature)
	assert.Equal(t, "five-part.v2", cfg.AI.Schema)
	assert.Equal(t, 2, cfg.Transcription.MaxConcurrent)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "key-a", cfg.Auth.APIKeys["alice"])
	assert.NoError(t, cfg.Validate())
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("WHISPER_API_URL", "http://other:9000")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.AI.APIKey)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, "http://other:9000", cfg.Transcription.Endpoint)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"bad db driver", func(c *Config) { c.Database.Driver = "sqlite" }, "database.driver"},
		{"bad storage driver", func(c *Config) { c.Storage.Driver = "ftp" }, "storage.driver"},
		{"bad schema", func(c *Config) { c.AI.Schema = "v3" }, "ai.schema"},
		{"no auth", func(c *Config) { c.Auth = AuthConfig{} }, "auth"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(sample))
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db", cfg.Database.Host)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDSNs(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "h", Port: 1, User: "u", Password: "p", Name: "n", SSLMode: "disable"}}
	assert.Equal(t, "u:p@tcp(h:1)/n?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
	assert.Equal(t, "host=h port=1 user=u password=p dbname=n sslmode=disable", cfg.PostgresDSN())
}
