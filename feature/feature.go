// Package feature contains the in-memory model of a vector dataset: a
// collection of features with WKB geometries and attribute records.
package feature

import "fmt"

// Region is an axis-aligned rectangle in the native CRS of a dataset.
type Region struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

func (r Region) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", r.MinX, r.MinY, r.MaxX, r.MaxY)
}

type FieldType int

const (
	String FieldType = iota
	Integer
	Integer64
	Real
	Date
)

var fieldTypeNames = map[FieldType]string{
	String:    "String",
	Integer:   "Integer",
	Integer64: "Integer64",
	Real:      "Real",
	Date:      "Date",
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Field describes one attribute column as declared by the source.
type Field struct {
	Name      string
	Type      FieldType
	Width     int
	Precision int
}

type Schema []Field

// Index returns the position of the field called name or -1.
func (s Schema) Index(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Record holds the attribute values of a feature, aligned with the
// Schema. Values are nil, string, int64 or float64. Date fields are
// stored as strings.
type Record []interface{}

// Copy returns a shallow copy. Values are immutable so this is enough to
// decouple two records.
func (r Record) Copy() Record {
	if r == nil {
		return nil
	}
	c := make(Record, len(r))
	copy(c, r)
	return c
}

type Feature struct {
	// Geometry as little-endian WKB. nil for features without geometry.
	Geometry []byte
	Record   Record
}

type Collection struct {
	Name string
	// GeometryType is the OGC name of the layer geometry type, e.g.
	// LineString or Polygon.
	GeometryType string
	// SRS is the spatial reference as WKT, empty if unknown.
	SRS      string
	Schema   Schema
	Features []Feature
}

// Derive returns an empty collection with the metadata of c.
func (c *Collection) Derive(name string) *Collection {
	schema := make(Schema, len(c.Schema))
	copy(schema, c.Schema)
	return &Collection{
		Name:         name,
		GeometryType: c.GeometryType,
		SRS:          c.SRS,
		Schema:       schema,
	}
}

// Properties returns the record of f keyed by field name.
func (c *Collection) Properties(f Feature) map[string]interface{} {
	props := make(map[string]interface{}, len(c.Schema))
	for i, field := range c.Schema {
		if i < len(f.Record) {
			props[field.Name] = f.Record[i]
		} else {
			props[field.Name] = nil
		}
	}
	return props
}
