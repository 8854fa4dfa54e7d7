package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"
  base_url: "https://lumewave.digital"
  cors_origins: ["https://lumewave.digital"]

database:
  driver: memory

email:
  provider: ses
  from: "insights@lumewave.digital"
  admin_email: "hello@lumewave.digital"
  timeout_seconds: 15

storage:
  type: "local"
  local_path: "./test-data"

insights:
  lease_ttl_seconds: 120
  poll_interval_seconds: 300

logging:
  level: debug
  redact_pii: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "https://lumewave.digital", cfg.Server.BaseURL)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "ses", cfg.Email.Provider)
	assert.Equal(t, 15*time.Second, cfg.Email.Timeout())
	assert.Equal(t, "./test-data", cfg.Storage.LocalPath)
	assert.Equal(t, 2*time.Minute, cfg.Insights.LeaseTTL())
	assert.Equal(t, 5*time.Minute, cfg.Insights.PollInterval())
	assert.False(t, cfg.Logging.ShouldRedact())
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: 0\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "http://localhost:3000", cfg.Server.BaseURL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "dev-secret", cfg.Email.UnsubscribeSecret)
	assert.Equal(t, "onboarding@resend.dev", cfg.Email.From)
	assert.Equal(t, "insights.pdf", cfg.Subscription.PDFKey)
	assert.Equal(t, "content.json", cfg.Content.DocumentKey)
	assert.Equal(t, "seo.json", cfg.Content.SEOSeedKey)
	assert.Equal(t, 500, cfg.Insights.DripLimit)
	assert.Equal(t, 1000, cfg.Insights.BroadcastLimit)
	assert.Equal(t, 10*time.Minute, cfg.Insights.LeaseTTL())
	assert.Zero(t, cfg.Insights.PollInterval())
	assert.True(t, cfg.Logging.ShouldRedact())
}

func TestLoadFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("email:\n  from: file@lumewave.digital\n"), 0644))

	t.Setenv("RESEND_FROM", "env@lumewave.digital")
	t.Setenv("UNSUBSCRIBE_SECRET", "s3cret")
	t.Setenv("NEXT_PUBLIC_BASE_URL", "https://lumewave.digital/")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/site")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env@lumewave.digital", cfg.Email.From)
	assert.Equal(t, "s3cret", cfg.Email.UnsubscribeSecret)
	assert.Equal(t, "https://lumewave.digital", cfg.Server.BaseURL)
	assert.Equal(t, "postgres://u:p@db/site", cfg.Database.URL)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadFromEnvMissingFile(t *testing.T) {
	t.Setenv("ADMIN_API_KEY", "k")
	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "k", cfg.Auth.AdminAPIKey)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestGetHost(t *testing.T) {
	t.Setenv("ECS_CONTAINER_METADATA_URI", "")
	t.Setenv("AWS_EXECUTION_ENV", "")
	t.Setenv("SERVER_HOST", "")
	assert.Equal(t, "127.0.0.1", ServerConfig{Host: "127.0.0.1"}.GetHost())

	t.Setenv("ECS_CONTAINER_METADATA_URI", "http://169.254.170.2/v4")
	assert.Equal(t, "0.0.0.0", ServerConfig{Host: "127.0.0.1"}.GetHost())
}
