package util

import (
	"github.com/ValentinKolb/kvapp/lib/db"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg-kvapp.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadServerConfigWithoutFile(t *testing.T) {
	// cfg-kvapp.json does not exist in the package directory
	v := viper.New()
	v.Set("db", "/var/lib/kvapp")

	cfg, err := LoadServerConfig(v)
	require.NoError(t, err)

	require.Len(t, cfg.Databases, 1)
	assert.Equal(t, common.DatabaseConfig{Name: "db", Path: "/var/lib/kvapp", Engine: db.ImplBadger}, cfg.Databases[0])
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddress())
	assert.Equal(t, int64(common.DefaultMaxValueBytes), cfg.MaxValueBytes)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadServerConfigExplicitMissingFile(t *testing.T) {
	v := viper.New()
	v.Set("config", filepath.Join(t.TempDir(), "absent.json"))

	_, err := LoadServerConfig(v)
	assert.Error(t, err)
}

func TestLoadServerConfigObjectFile(t *testing.T) {
	path := writeFile(t, `{
		"databases": [
			{"name": "users", "path": "/data/users", "engine": "bolt"},
			{"name": "cache", "engine": "memory"},
			{"name": "db", "path": "/data/db"}
		],
		"bind-addr": "0.0.0.0",
		"bind-port": 9000,
		"log-level": "debug"
	}`)

	v := viper.New()
	v.Set("config", path)

	cfg, err := LoadServerConfig(v)
	require.NoError(t, err)

	assert.Equal(t, []common.DatabaseConfig{
		{Name: "users", Path: "/data/users", Engine: db.ImplBolt},
		{Name: "cache", Engine: db.ImplMemory},
		{Name: "db", Path: "/data/db", Engine: db.ImplBadger},
	}, cfg.Databases)
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddress())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadServerConfigBareArray(t *testing.T) {
	path := writeFile(t, `[{"name": "a", "path": "/a"}, {"name": "b", "path": "/b"}]`)

	v := viper.New()
	v.Set("config", path)
	v.Set("engine", "bolt")

	cfg, err := LoadServerConfig(v)
	require.NoError(t, err)
	require.Len(t, cfg.Databases, 2)
	assert.Equal(t, "b", cfg.Databases[1].Name)
	assert.Equal(t, db.ImplBolt, cfg.Databases[1].Engine)
}

func TestLoadServerConfigOverride(t *testing.T) {
	path := writeFile(t, `{"databases": [{"name": "db", "path": "/d"}], "bind-port": 9000}`)

	v := viper.New()
	v.Set("config", path)
	v.Set("bind-port", 9100)

	cfg, err := LoadServerConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.BindPort)
}

func TestLoadServerConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"duplicate names": `[{"name": "db", "path": "/a"}, {"name": "db", "path": "/b"}]`,
		"bad name":        `[{"name": "a/b", "path": "/a"}]`,
		"missing path":    `[{"name": "db"}]`,
		"unknown engine":  `[{"name": "db", "path": "/a", "engine": "rocks"}]`,
		"empty list":      `[]`,
		"malformed json":  `[{"name": `,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			v.Set("config", writeFile(t, content))

			_, err := LoadServerConfig(v)
			assert.Error(t, err)
		})
	}
}

func TestWrapString(t *testing.T) {
	wrapped := WrapString("one two three four five six seven eight nine ten eleven twelve thirteen")
	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
}
