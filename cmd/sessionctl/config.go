package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/sessionstore"
	"github.com/dmitrymomot/sessionstore/pkg/logger"
	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

const envPrefix = "SESSIONSTORE_"

var errNoConnection = errors.New("sessionctl: set --connections or --url")

// config is read from SESSIONSTORE_* variables; flags override it.
type config struct {
	Connections   string              `env:"CONNECTIONS"`
	Adapter       string              `env:"ADAPTER" envDefault:"postgres"`
	URL           string              `env:"URL"`
	Table         string              `env:"TABLE" envDefault:"sessions"`
	HashSalt      string              `env:"HASH_SALT"`
	HashAlgorithm string              `env:"HASH_ALGORITHM"`
	Sentry        logger.SentryConfig
	Log           logger.Config
	Timeout       time.Duration       `env:"TIMEOUT" envDefault:"30s"`
	Stringify     bool                `env:"STRINGIFY" envDefault:"true"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return cfg, fmt.Errorf("sessionctl: parse environment: %w", err)
	}
	return cfg, nil
}

// connections returns the descriptors from the YAML file, or a single
// descriptor built from --adapter and --url.
func (c config) connections() (map[string]orm.Connection, error) {
	if c.Connections != "" {
		f, err := os.Open(c.Connections)
		if err != nil {
			return nil, fmt.Errorf("sessionctl: open connections file: %w", err)
		}
		defer f.Close()
		return orm.LoadConnections(f)
	}
	if c.URL == "" {
		return nil, errNoConnection
	}
	return map[string]orm.Connection{
		orm.DefaultConnection: {Adapter: c.Adapter, URL: c.URL},
	}, nil
}

// storeOptions maps the configuration onto store options. The reaper is
// disabled; the reap command runs a single pass instead.
func (c config) storeOptions() ([]sessionstore.Option, error) {
	conns, err := c.connections()
	if err != nil {
		return nil, err
	}
	opts := []sessionstore.Option{
		sessionstore.WithConnections(conns),
		sessionstore.WithTableName(c.Table),
		sessionstore.WithStringify(c.Stringify),
		sessionstore.WithAutoRemove(sessionstore.AutoRemoveNone),
	}
	if c.HashSalt != "" || c.HashAlgorithm != "" {
		opts = append(opts, sessionstore.WithHash(c.HashSalt, sessionstore.HashAlgorithm(c.HashAlgorithm)))
	}
	return opts, nil
}
