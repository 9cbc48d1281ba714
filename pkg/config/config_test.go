package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("QUIZ_SECRET", "")

	_, err := LoadFile(missingFile(t))
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("QUIZ_SECRET", "s3cret")

	cfg, err := LoadFile(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.QuizSecret)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 180*time.Second, cfg.ChainDeadline())
	assert.Equal(t, 50*time.Second, cfg.SubmitTimeout())
	assert.Equal(t, 60*time.Second, cfg.PageLoadTimeout())
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("QUIZ_SECRET", "s3cret")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CHAIN_DEADLINE_SECONDS", "30")
	t.Setenv("MAX_CONCURRENCY", "2")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")

	cfg, err := LoadFile(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.ChainDeadline())
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoadFromEnvFile(t *testing.T) {
	t.Setenv("QUIZ_SECRET", "")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("QUIZ_SECRET=from-file\nLOG_LEVEL=debug\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.QuizSecret)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsZeroConcurrency(t *testing.T) {
	t.Setenv("QUIZ_SECRET", "s3cret")
	t.Setenv("MAX_CONCURRENCY", "0")

	_, err := LoadFile(missingFile(t))
	require.Error(t, err)
}
