package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:           "development",
		StoreBackend:  BackendMemory,
		JWTSecret:     "a-development-secret",
		DataNamespace: "wild-card",
		AssetMaxDim:   2048,
		WildCardSlots: 3,
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid development config",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.StoreBackend = "etcd" },
			wantErr: "STORE_BACKEND",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.JWTSecret = "" },
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "missing namespace",
			mutate:  func(c *Config) { c.DataNamespace = "" },
			wantErr: "DATA_NAMESPACE",
		},
		{
			name:    "negative wild card slots",
			mutate:  func(c *Config) { c.WildCardSlots = -1 },
			wantErr: "WILD_CARD_SLOTS",
		},
		{
			name: "production rejects default secret",
			mutate: func(c *Config) {
				c.Env = "production"
				c.JWTSecret = "your-secret-key-change-in-production"
			},
			wantErr: "changed from the default",
		},
		{
			name: "production rejects short secret",
			mutate: func(c *Config) {
				c.Env = "production"
				c.JWTSecret = "short"
			},
			wantErr: "at least 32 characters",
		},
		{
			name: "production accepts strong secret",
			mutate: func(c *Config) {
				c.Env = "production"
				c.JWTSecret = strings.Repeat("s", 32)
			},
		},
		{
			name: "prod alias gets the same checks",
			mutate: func(c *Config) {
				c.Env = "prod"
				c.JWTSecret = "short"
			},
			wantErr: "at least 32 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
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

func TestPostgresDSN(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		DBHost:     "db.internal",
		DBPort:     "5433",
		DBUser:     "wildcard",
		DBPassword: "hunter2",
		DBName:     "wildcard",
		DBSSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=wildcard password=hunter2 dbname=wildcard sslmode=require",
		cfg.PostgresDSN())
}
