package util

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/ValentinKolb/kvapp/lib/db"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"github.com/spf13/viper"
	"io/fs"
	"os"
)

// ReadConfigFile merges the JSON config file at path into v.
// A file that holds a bare array is read as the list of databases.
func ReadConfigFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		wrapped := make([]byte, 0, len(data)+16)
		wrapped = append(wrapped, `{"databases":`...)
		wrapped = append(wrapped, data...)
		data = append(wrapped, '}')
	}

	v.SetConfigType("json")
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LoadServerConfig builds the server configuration from v.
//
// Precedence is flag, then KVAPP_* environment variable, then config file,
// then default. Without a config file a single database named "db" is served
// from the --db directory. A missing config file is only an error if it was
// asked for explicitly.
func LoadServerConfig(v *viper.Viper) (*common.ServerConfig, error) {
	path := v.GetString("config")
	if path == "" {
		path = common.DefaultConfigFile
	}

	fileLoaded := false
	switch err := ReadConfigFile(v, path); {
	case err == nil:
		fileLoaded = true
	case errors.Is(err, fs.ErrNotExist) && !v.IsSet("config"):
		// the default file is optional
	default:
		return nil, err
	}

	cfg := &common.ServerConfig{
		BindAddr:        v.GetString("bind-addr"),
		BindPort:        v.GetInt("bind-port"),
		Endpoint:        v.GetString("endpoint"),
		MaxValueBytes:   v.GetInt64("max-value-bytes"),
		ReadTimeout:     v.GetDuration("read-timeout"),
		WriteTimeout:    v.GetDuration("write-timeout"),
		IdleTimeout:     v.GetDuration("idle-timeout"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
		LogLevel:        v.GetString("log-level"),
	}

	if fileLoaded && v.IsSet("databases") {
		if err := v.UnmarshalKey("databases", &cfg.Databases); err != nil {
			return nil, fmt.Errorf("invalid databases in %s: %w", path, err)
		}
	} else {
		dir := v.GetString("db")
		if dir == "" {
			dir = common.DefaultDatabaseDir
		}
		cfg.Databases = []common.DatabaseConfig{{Name: common.DefaultDatabaseName, Path: dir}}
	}

	// --engine is the default for entries that do not name one
	if engine := db.Implementation(v.GetString("engine")); engine != "" {
		for i := range cfg.Databases {
			if cfg.Databases[i].Engine == "" {
				cfg.Databases[i].Engine = engine
			}
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
