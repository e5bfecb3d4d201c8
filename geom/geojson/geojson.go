// Package geojson encodes feature collections as GeoJSON
// FeatureCollections and decodes them back.
package geojson

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"math"

	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"github.com/omniscale/clipwater/feature"
)

// Encode writes coll as a GeoJSON FeatureCollection to w. The collection
// name is added as top-level "name" member. Properties are keyed by field
// name, unset values are null. All features need a geometry.
func Encode(w io.Writer, coll *feature.Collection) error {
	fc := geojson.NewFeatureCollection()
	if coll.Name != "" {
		fc.ExtraMembers = geojson.Properties{"name": coll.Name}
	}

	for i, f := range coll.Features {
		if len(f.Geometry) == 0 {
			return errors.Errorf("feature %d of %s has no geometry", i, coll.Name)
		}
		geom, err := wkb.Unmarshal(f.Geometry)
		if err != nil {
			return errors.Wrapf(err, "feature %d of %s", i, coll.Name)
		}
		gf := geojson.NewFeature(geom)
		gf.Properties = coll.Properties(f)
		fc.Append(gf)
	}

	buf, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrapf(err, "encoding %s", coll.Name)
	}
	if _, err := w.Write(buf); err != nil {
		return errors.Wrapf(err, "writing %s", coll.Name)
	}
	return nil
}

// Decode reads a GeoJSON FeatureCollection from r. Properties are mapped to
// records with schema, properties missing from schema are ignored.
// Geometries are converted to little endian WKB.
func Decode(r io.Reader, schema feature.Schema) (*feature.Collection, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading GeoJSON")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing GeoJSON")
	}

	coll := &feature.Collection{Schema: schema}
	if name, ok := fc.ExtraMembers["name"].(string); ok {
		coll.Name = name
	}

	for i, gf := range fc.Features {
		f := feature.Feature{Record: make(feature.Record, len(schema))}
		if gf.Geometry != nil {
			f.Geometry, err = wkb.Marshal(gf.Geometry)
			if err != nil {
				return nil, errors.Wrapf(err, "feature %d", i)
			}
			if coll.GeometryType == "" {
				coll.GeometryType = gf.Geometry.GeoJSONType()
			}
		}
		for j, field := range schema {
			v, err := recordValue(field, gf.Properties[field.Name])
			if err != nil {
				return nil, errors.Wrapf(err, "feature %d", i)
			}
			f.Record[j] = v
		}
		coll.Features = append(coll.Features, f)
	}
	return coll, nil
}

func recordValue(field feature.Field, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch field.Type {
	case feature.Integer, feature.Integer64:
		switch n := v.(type) {
		case float64:
			if n != math.Trunc(n) {
				return nil, errors.Errorf("non integer value %v for %s", n, field.Name)
			}
			return int64(n), nil
		case json.Number:
			return n.Int64()
		}
	case feature.Real:
		switch n := v.(type) {
		case float64:
			return n, nil
		case json.Number:
			return n.Float64()
		}
	default:
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return nil, errors.Errorf("unexpected value %#v for %s field %s", v, field.Type, field.Name)
}
