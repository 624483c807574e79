package common

import (
	"github.com/ValentinKolb/kvapp/lib/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func validConfig() ServerConfig {
	cfg := ServerConfig{
		Databases: []DatabaseConfig{
			{Name: "db", Path: "/tmp/x"},
			{Name: "cache", Engine: db.ImplMemory},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, DefaultBindAddr, cfg.BindAddr)
	assert.Equal(t, DefaultBindPort, cfg.BindPort)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddress())
	assert.Equal(t, int64(DefaultMaxValueBytes), cfg.MaxValueBytes)
	assert.Equal(t, DefaultEngine, cfg.Databases[0].Engine)
	assert.Equal(t, db.ImplMemory, cfg.Databases[1].Engine)
	assert.NoError(t, cfg.Validate())
}

func TestListenAddress(t *testing.T) {
	cfg := validConfig()

	cfg.Endpoint = "0.0.0.0:9000"
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddress())
	assert.False(t, cfg.IsUnixSocket())

	cfg.Endpoint = "/tmp/kvapp.sock"
	assert.Equal(t, "/tmp/kvapp.sock", cfg.ListenAddress())
	assert.True(t, cfg.IsUnixSocket())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ServerConfig)
		wantErr string
	}{
		{
			name:    "no databases",
			mutate:  func(c *ServerConfig) { c.Databases = nil },
			wantErr: "Databases is required",
		},
		{
			name:    "empty name",
			mutate:  func(c *ServerConfig) { c.Databases[0].Name = "" },
			wantErr: "Databases[0].Name is required",
		},
		{
			name:    "name with slash",
			mutate:  func(c *ServerConfig) { c.Databases[0].Name = "a/b" },
			wantErr: "not a valid database name",
		},
		{
			name:    "duplicate names",
			mutate:  func(c *ServerConfig) { c.Databases[1].Name = "db" },
			wantErr: "duplicate names",
		},
		{
			name:    "missing path",
			mutate:  func(c *ServerConfig) { c.Databases[0].Path = "" },
			wantErr: "Databases[0].Path is required",
		},
		{
			name:    "unknown engine",
			mutate:  func(c *ServerConfig) { c.Databases[0].Engine = "leveldb" },
			wantErr: "not a known engine",
		},
		{
			name:    "port out of range",
			mutate:  func(c *ServerConfig) { c.BindPort = 70000 },
			wantErr: "BindPort must be at most 65535",
		},
		{
			name:    "bad log level",
			mutate:  func(c *ServerConfig) { c.LogLevel = "verbose" },
			wantErr: "LogLevel must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidDatabaseName(t *testing.T) {
	for _, name := range []string{"db", "my-db", "v1.2", "a_b", "x~y"} {
		assert.True(t, ValidDatabaseName(name), name)
	}
	for _, name := range []string{"", ".", "..", "a b", "a/b", "ä", "a%20"} {
		assert.False(t, ValidDatabaseName(name), name)
	}
}

func TestString(t *testing.T) {
	s := validConfig()
	out := s.String()
	assert.Contains(t, out, "127.0.0.1:8080")
	assert.Contains(t, out, "/tmp/x (badger)")
	assert.Contains(t, out, "cache")
}
