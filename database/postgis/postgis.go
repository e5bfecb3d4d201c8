// Package postgis writes feature collections into PostGIS tables.
package postgis

import (
	"database/sql"
	"fmt"
	"strings"

	pq "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/omniscale/clipwater/database"
	"github.com/omniscale/clipwater/feature"
	"github.com/omniscale/clipwater/geom/geos"
	"github.com/omniscale/clipwater/log"
)

const (
	defaultSchema = "public"
	defaultSrid   = 4326
)

type SQLError struct {
	query         string
	originalError error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s", e.originalError.Error(), e.query)
}

type PostGIS struct {
	Db     *sql.DB
	Schema string
	Srid   int
}

// IsConnectionURL returns true for postgis:// and postgres:// URLs.
func IsConnectionURL(dest string) bool {
	return strings.HasPrefix(dest, "postgis://") ||
		strings.HasPrefix(dest, "postgres://") ||
		strings.HasPrefix(dest, "postgresql://")
}

// Open connects to the database of conf. ConnectionParams is a postgis://
// or postgres:// URL, a schema=name query parameter selects the target
// schema.
func Open(conf database.Config) (*PostGIS, error) {
	connParams := conf.ConnectionParams
	if strings.HasPrefix(connParams, "postgis://") {
		connParams = strings.Replace(connParams, "postgis", "postgres", 1)
	}

	params, err := pq.ParseURL(connParams)
	if err != nil {
		return nil, errors.Wrap(err, "parsing connection URL")
	}
	params = disableDefaultSsl(params)
	schema, params := stripParam(params, "schema")
	if schema == "" {
		schema = defaultSchema
	}

	db, err := sql.Open("postgres", params)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// check that the connection actually works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connecting to database")
	}
	return New(db, schema, conf.Srid), nil
}

// New returns a PostGIS writer for an open database. srid defaults to 4326.
func New(db *sql.DB, schema string, srid int) *PostGIS {
	if srid == 0 {
		srid = defaultSrid
	}
	if schema == "" {
		schema = defaultSchema
	}
	return &PostGIS{Db: db, Schema: schema, Srid: srid}
}

func (pg *PostGIS) Close() error {
	return pg.Db.Close()
}

// Write replaces the table named after coll with the features of coll.
// The table is dropped, created, filled with COPY and indexed in a
// single transaction.
func (pg *PostGIS) Write(coll *feature.Collection) error {
	spec := NewTableSpec(pg.Schema, pg.Srid, coll)

	tx, err := pg.Db.Begin()
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer rollbackIfTx(&tx)

	for _, query := range []string{spec.DropTableSQL(), spec.CreateTableSQL()} {
		if _, err := tx.Exec(query); err != nil {
			return &SQLError{query, err}
		}
	}

	if err := pg.copyFeatures(tx, spec, coll); err != nil {
		return err
	}

	query := spec.CreateIndexSQL()
	if _, err := tx.Exec(query); err != nil {
		return &SQLError{query, err}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing")
	}
	tx = nil
	log.Printf("[info] wrote %d features to %s.%s", len(coll.Features), spec.Schema, spec.Name)
	return nil
}

func (pg *PostGIS) copyFeatures(tx *sql.Tx, spec *TableSpec, coll *feature.Collection) error {
	query := spec.CopySQL()
	stmt, err := tx.Prepare(query)
	if err != nil {
		return &SQLError{query, err}
	}
	defer stmt.Close()

	g := geos.NewGeos()
	defer g.Finish()
	g.SetHandleSrid(pg.Srid)

	for i, f := range coll.Features {
		row := make([]interface{}, 0, len(spec.Columns))
		row = append(row, f.Record...)
		for len(row) < len(spec.Columns)-1 {
			row = append(row, nil)
		}
		if len(f.Geometry) > 0 {
			geom := g.FromWkb(f.Geometry)
			if geom == nil {
				return errors.Errorf("feature %d of %s: invalid geometry", i, coll.Name)
			}
			row = append(row, string(g.AsEwkbHex(geom)))
			g.Destroy(geom)
		} else {
			row = append(row, nil)
		}
		if _, err := stmt.Exec(row...); err != nil {
			return &SQLError{query, err}
		}
	}
	// flush COPY buffer
	if _, err := stmt.Exec(); err != nil {
		return &SQLError{query, err}
	}
	return nil
}

func init() {
	newDB := func(conf database.Config) (database.DB, error) {
		pg, err := Open(conf)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	database.Register("postgis", newDB)
	database.Register("postgres", newDB)
	database.Register("postgresql", newDB)
}
