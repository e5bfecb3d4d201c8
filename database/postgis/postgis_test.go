package postgis

import (
	"database/sql/driver"
	"errors"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniscale/clipwater/feature"
	"github.com/omniscale/clipwater/geom/geos"
)

// ewkbArg matches hex EWKB with the given prefix.
type ewkbArg string

func (a ewkbArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, string(a))
}

func testCollection(t *testing.T) *feature.Collection {
	g := geos.NewGeos()
	defer g.Finish()
	p := g.FromWkt("POINT(1 2)")
	require.NotNil(t, p)
	defer g.Destroy(p)

	return &feature.Collection{
		Name:         "clipped_water",
		GeometryType: "Point",
		Schema: feature.Schema{
			{Name: "name", Type: feature.String},
			{Name: "osm_id", Type: feature.Integer64},
		},
		Features: []feature.Feature{
			{Geometry: g.AsWkb(p), Record: feature.Record{"Rio", int64(42)}},
			{Geometry: g.AsWkb(p), Record: feature.Record{nil, int64(43)}},
		},
	}
}

func TestWrite(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	coll := testCollection(t)
	spec := NewTableSpec("public", 4326, coll)

	mock.ExpectBegin()
	mock.ExpectExec(spec.DropTableSQL()).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(spec.CreateTableSQL()).WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare(spec.CopySQL())
	prep.ExpectExec().
		WithArgs("Rio", int64(42), ewkbArg("0101000020E6100000")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs(nil, int64(43), ewkbArg("0101000020E6100000")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(spec.CreateIndexSQL()).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	pg := New(db, "", 0)
	require.NoError(t, pg.Write(coll))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteRollback(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	coll := testCollection(t)
	spec := NewTableSpec("water", 4326, coll)

	mock.ExpectBegin()
	mock.ExpectExec(spec.DropTableSQL()).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(spec.CreateTableSQL()).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	pg := New(db, "water", 4326)
	err = pg.Write(coll)
	require.Error(t, err)
	assert.IsType(t, &SQLError{}, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableSpec(t *testing.T) {
	coll := &feature.Collection{
		Name: "clipped_waterways",
		Schema: feature.Schema{
			{Name: "name", Type: feature.String},
			{Name: "width", Type: feature.Real},
			{Name: "since", Type: feature.Date},
		},
	}
	spec := NewTableSpec("public", 4326, coll)

	assert.Equal(t, `DROP TABLE IF EXISTS "public"."clipped_waterways"`, spec.DropTableSQL())
	assert.Equal(t, `COPY "public"."clipped_waterways" ("name", "width", "since", "geometry") FROM STDIN`, spec.CopySQL())
	assert.Equal(t, `CREATE INDEX "clipped_waterways_geom" ON "public"."clipped_waterways" USING GIST ("geometry")`, spec.CreateIndexSQL())

	create := spec.CreateTableSQL()
	for _, col := range []string{
		"id SERIAL PRIMARY KEY",
		`"name" VARCHAR`,
		`"width" DOUBLE PRECISION`,
		`"since" DATE`,
		`"geometry" GEOMETRY(GEOMETRY, 4326)`,
	} {
		assert.Contains(t, create, col)
	}
}

func TestConnectionParams(t *testing.T) {
	assert.Equal(t, "host=localhost sslmode=disable", disableDefaultSsl("host=localhost"))
	assert.Equal(t, "host=localhost sslmode=require", disableDefaultSsl("host=localhost sslmode=require"))

	schema, rest := stripParam("dbname=osm host=localhost schema=water", "schema")
	assert.Equal(t, "water", schema)
	assert.Equal(t, "dbname=osm host=localhost", rest)

	schema, rest = stripParam("dbname=osm", "schema")
	assert.Equal(t, "", schema)
	assert.Equal(t, "dbname=osm", rest)

	assert.True(t, IsConnectionURL("postgis://localhost/osm"))
	assert.True(t, IsConnectionURL("postgres://localhost/osm"))
	assert.False(t, IsConnectionURL("clipped_water.shp"))
}
