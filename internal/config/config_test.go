package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-with-32-characters!!"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CSOPORTAL_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "./public", cfg.Upload.PublicDir)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxSizeBytes)
	assert.Equal(t, []string{"pdf", "doc", "docx", "jpg", "jpeg", "png"}, cfg.Upload.AllowedExts)
	assert.False(t, cfg.Letter.TrackBroadcastReads)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "", cfg.Database.Type)
	assert.Equal(t, "csoportal", cfg.JWT.Issuer)
}

func TestLoadRejectsDefaultSecret(t *testing.T) {
	t.Setenv("CSOPORTAL_JWT_SECRET", "change-me-in-production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default value")
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("CSOPORTAL_JWT_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestLoadRejectsUnknownDatabaseType(t *testing.T) {
	t.Setenv("CSOPORTAL_JWT_SECRET", testSecret)
	t.Setenv("CSOPORTAL_DATABASE_TYPE", "oracle")
	t.Setenv("CSOPORTAL_DATABASE_DSN", "whatever")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database.type")
}

func TestLoadRequiresDSNForSQL(t *testing.T) {
	t.Setenv("CSOPORTAL_JWT_SECRET", testSecret)
	t.Setenv("CSOPORTAL_DATABASE_TYPE", "mysql")
	t.Setenv("CSOPORTAL_DATABASE_DSN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.dsn is required")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CSOPORTAL_JWT_SECRET", testSecret)
	t.Setenv("CSOPORTAL_SERVER_PORT", "9090")
	t.Setenv("CSOPORTAL_UPLOAD_ALLOWED_EXTS", "PDF, .png")
	t.Setenv("CSOPORTAL_LETTER_TRACK_BROADCAST_READS", "true")
	t.Setenv("CSOPORTAL_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"pdf", "png"}, cfg.Upload.AllowedExts)
	assert.True(t, cfg.Letter.TrackBroadcastReads)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}
