package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)
	SetDefaults()
	viper.Set("api.base_url", "https://seclens.example.com")
	viper.Set("api.key", "k")
	viper.Set("api.secret", "s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 1, cfg.API.RateBurst)
	assert.Equal(t, 0, cfg.API.Retry.MaxAttempts)
	assert.Equal(t, 2000, cfg.Paging.PageSize)
	assert.Equal(t, time.Duration(0), cfg.Paging.Sleep)
}

func TestLoadRequiresConnectionSettings(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
		want string
	}{
		{
			name: "missing base url",
			set:  map[string]any{"api.key": "k", "api.secret": "s"},
			want: "api.base_url",
		},
		{
			name: "missing credentials",
			set:  map[string]any{"api.base_url": "https://seclens.example.com"},
			want: "api.key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			SetDefaults()
			for k, v := range tt.set {
				viper.Set(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInitReadsConfigFile(t *testing.T) {
	resetViper(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "seclens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://seclens.example.com
  key: file-key
  secret: file-secret
  retry:
    max_attempts: 4
paging:
  page_size: 500
  sleep: 250ms
`), 0o600))

	Init(path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.API.Key)
	assert.Equal(t, 4, cfg.API.Retry.MaxAttempts)
	assert.Equal(t, 500, cfg.Paging.PageSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Paging.Sleep)
}

func TestInitEnvironmentOverrides(t *testing.T) {
	resetViper(t)
	t.Setenv("SECLENS_API_BASE_URL", "https://env.example.com")
	t.Setenv("SECLENS_API_KEY", "env-key")
	t.Setenv("SECLENS_API_SECRET", "env-secret")

	Init("")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
	assert.Equal(t, "env-key", cfg.API.Key)
}
