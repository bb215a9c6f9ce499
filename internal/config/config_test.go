package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", EnvLocal)
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 10*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 12, cfg.Search.DefaultPageSize)
	assert.Equal(t, 100, cfg.Search.MaxPageSize)
	assert.Equal(t, 10.0, cfg.Search.DefaultRadiusKm)
	assert.Equal(t, 4, cfg.Search.SimilarDefaultLimit)
	assert.Equal(t, 20, cfg.Search.SimilarMaxLimit)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "sqlite"}, want: "unknown storage driver"},
		{name: "postgres without url", env: map[string]string{"STORAGE_DRIVER": "postgres", "DATABASE_URL": ""}, want: "DATABASE_URL"},
		{name: "mongo without uri", env: map[string]string{"STORAGE_DRIVER": "mongo", "MONGO_URI": ""}, want: "MONGO_URI"},
		{name: "page size above max", env: map[string]string{"STORAGE_DRIVER": "memory", "SEARCH_DEFAULT_PAGE_SIZE": "200"}, want: "page size"},
		{name: "radius above max", env: map[string]string{"STORAGE_DRIVER": "memory", "SEARCH_DEFAULT_RADIUS_KM": "900"}, want: "radius"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
