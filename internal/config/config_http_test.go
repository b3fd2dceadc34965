package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv_HTTPDefaults(t *testing.T) {
	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "/app/web", cfg.HTTP.UIStaticDir)
	assert.True(t, cfg.HTTP.UIEnabled)
}

func TestNewFromEnv_Validation(t *testing.T) {
	t.Setenv("JOB_WORKERS", "0")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JOB_WORKERS")
}

func TestNewFromEnv_MediaDefaults(t *testing.T) {
	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "ffmpeg", cfg.Media.FFmpegBin)
	assert.Equal(t, "ffprobe", cfg.Media.FFprobeBin)
	assert.Equal(t, 600, cfg.Media.EncodeTimeoutSeconds)
	assert.Equal(t, int64(16384)<<20, cfg.Storage.MaxUploadBytes())
}
