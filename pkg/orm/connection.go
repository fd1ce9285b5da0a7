package orm

import (
	"errors"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Connection describes how an adapter reaches its backend.
// Fields not used by an adapter are ignored.
type Connection struct {
	Options       map[string]string `yaml:"options,omitempty"`
	Adapter       string            `yaml:"adapter"`
	URL           string            `yaml:"url,omitempty"`
	Database      string            `yaml:"database,omitempty"`
	KeyPrefix     string            `yaml:"key_prefix,omitempty"`
	RetryAttempts int               `yaml:"retry_attempts,omitempty"`
	RetryInterval time.Duration     `yaml:"retry_interval,omitempty"`
	PoolSize      int               `yaml:"pool_size,omitempty"`
}

type connectionsFile struct {
	Connections map[string]Connection `yaml:"connections"`
}

// LoadConnections parses connection descriptors from YAML:
//
//	connections:
//	  sessionstore:
//	    adapter: postgres
//	    url: postgres://localhost:5432/app
func LoadConnections(r io.Reader) (map[string]Connection, error) {
	var f connectionsFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrInvalidConnections, err)
	}
	if f.Connections == nil {
		f.Connections = map[string]Connection{}
	}
	for name, c := range f.Connections {
		if c.Adapter == "" {
			return nil, errors.Join(ErrInvalidConnections, errors.New("connection "+name+": adapter is required"))
		}
	}
	return f.Connections, nil
}
