package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "/api", cfg.App.APIPrefix)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.AllowedOrigins)
	assert.Equal(t, "sqlite", cfg.Store.NormalizedType())
	assert.Equal(t, "https://api.pokemontcg.io/v2", cfg.Provider.BaseURL)
	assert.Equal(t, 250, cfg.Provider.PageSize)
	assert.Equal(t, 60*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "memory", cfg.SyncState.Type)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("API_PREFIX", "v2/")
	t.Setenv("POKEMON_TCG_API_KEY", "secret")
	t.Setenv("STORE_TYPE", "PostgreSQL")
	t.Setenv("STORE_USER", "tcg")
	t.Setenv("STORE_PASS", "pw")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Address())
	assert.Equal(t, "/v2", cfg.App.APIPrefix)
	assert.Equal(t, "secret", cfg.Provider.APIKey)
	assert.Equal(t, "postgres", cfg.Store.NormalizedType())
	assert.Equal(t, "postgres://tcg:pw@localhost:5432/pokemon?sslmode=disable", cfg.Store.DSN())
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}

func TestStoreConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  StoreConfig
		want string
	}{
		{
			name: "sqlite uses path",
			cfg:  StoreConfig{Type: "sqlite", Path: "/tmp/cards.db"},
			want: "/tmp/cards.db",
		},
		{
			name: "empty type falls back to sqlite",
			cfg:  StoreConfig{Path: "cards.db"},
			want: "cards.db",
		},
		{
			name: "mysql default port",
			cfg:  StoreConfig{Type: "mysql", Host: "db", Name: "pokemon", User: "root", Password: "x"},
			want: "root:x@tcp(db:3306)/pokemon?parseTime=true&multiStatements=true",
		},
		{
			name: "mariadb alias with explicit port",
			cfg:  StoreConfig{Type: "mariadb", Host: "db", Port: 3307, Name: "pokemon", User: "root"},
			want: "root:@tcp(db:3307)/pokemon?parseTime=true&multiStatements=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

func TestSyncStateConfig_RedisAddress(t *testing.T) {
	c := SyncStateConfig{RedisHost: "cache", RedisPort: 6380}
	assert.Equal(t, "cache:6380", c.RedisAddress())
}
