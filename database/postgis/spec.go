package postgis

import (
	"fmt"
	"strings"

	pq "github.com/lib/pq"

	"github.com/omniscale/clipwater/feature"
)

const geometryColumn = "geometry"

type ColumnSpec struct {
	Name string
	Type string
}

type TableSpec struct {
	Name    string
	Schema  string
	Columns []ColumnSpec
	Srid    int
}

var columnTypes = map[feature.FieldType]string{
	feature.String:    "VARCHAR",
	feature.Integer:   "INTEGER",
	feature.Integer64: "BIGINT",
	feature.Real:      "DOUBLE PRECISION",
	feature.Date:      "DATE",
}

// NewTableSpec returns a table with one column for each field of coll and
// a trailing geometry column.
func NewTableSpec(schema string, srid int, coll *feature.Collection) *TableSpec {
	spec := &TableSpec{
		Name:   coll.Name,
		Schema: schema,
		Srid:   srid,
	}
	for _, field := range coll.Schema {
		spec.Columns = append(spec.Columns, ColumnSpec{
			Name: field.Name,
			Type: columnTypes[field.Type],
		})
	}
	spec.Columns = append(spec.Columns, ColumnSpec{
		Name: geometryColumn,
		Type: fmt.Sprintf("GEOMETRY(GEOMETRY, %d)", srid),
	})
	return spec
}

func (col *ColumnSpec) AsSQL() string {
	return fmt.Sprintf("%s %s", pq.QuoteIdentifier(col.Name), col.Type)
}

func (spec *TableSpec) fullName() string {
	return pq.QuoteIdentifier(spec.Schema) + "." + pq.QuoteIdentifier(spec.Name)
}

func (spec *TableSpec) DropTableSQL() string {
	return fmt.Sprintf(`DROP TABLE IF EXISTS %s`, spec.fullName())
}

func (spec *TableSpec) CreateTableSQL() string {
	cols := []string{
		"id SERIAL PRIMARY KEY",
	}
	for _, col := range spec.Columns {
		cols = append(cols, col.AsSQL())
	}
	columnSQL := strings.Join(cols, ",\n            ")
	return fmt.Sprintf(`
        CREATE TABLE %s (
            %s
        );`,
		spec.fullName(),
		columnSQL,
	)
}

func (spec *TableSpec) CopySQL() string {
	var cols []string
	for _, col := range spec.Columns {
		cols = append(cols, col.Name)
	}
	return pq.CopyInSchema(spec.Schema, spec.Name, cols...)
}

func (spec *TableSpec) CreateIndexSQL() string {
	return fmt.Sprintf(`CREATE INDEX %s ON %s USING GIST (%s)`,
		pq.QuoteIdentifier(spec.Name+"_geom"),
		spec.fullName(),
		pq.QuoteIdentifier(geometryColumn),
	)
}
