// Package database provides a registry of database sinks for feature
// collections.
package database

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/omniscale/clipwater/feature"
)

type Config struct {
	Type             string
	ConnectionParams string
	Srid             int
}

type DB interface {
	// Write replaces the table named after the collection.
	Write(*feature.Collection) error
	Close() error
}

var databases map[string]func(Config) (DB, error)

func init() {
	databases = make(map[string]func(Config) (DB, error))
}

func Register(name string, f func(Config) (DB, error)) {
	databases[name] = f
}

func Open(conf Config) (DB, error) {
	newFunc, ok := databases[conf.Type]
	if !ok {
		return nil, errors.New("unsupported database type: " + conf.Type)
	}

	db, err := newFunc(conf)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// ConnectionType returns the scheme of a connection URL, e.g. postgis for
// postgis://localhost/osm.
func ConnectionType(param string) string {
	parts := strings.SplitN(param, ":", 2)
	return parts[0]
}

// NullDb discards all collections.
type NullDb struct{}

func (n *NullDb) Write(*feature.Collection) error { return nil }
func (n *NullDb) Close() error                    { return nil }

func NewNullDb(conf Config) (DB, error) {
	return &NullDb{}, nil
}

func init() {
	Register("null", NewNullDb)
}
