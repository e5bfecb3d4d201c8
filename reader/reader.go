// Package reader loads vector datasets into feature collections.
package reader

import (
	"github.com/pkg/errors"

	"github.com/omniscale/clipwater/feature"
	"github.com/omniscale/clipwater/geom/ogr"
	"github.com/omniscale/clipwater/log"
)

// Load reads the first layer of the OGR dataset at path (e.g. a
// shapefile) into memory.
func Load(path string) (*feature.Collection, error) {
	ds, err := ogr.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	defer ds.Close()

	layer, err := ds.Layer()
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}

	srs, err := layer.SRS()
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}

	coll := &feature.Collection{
		Name:         layer.Name(),
		GeometryType: layer.GeometryType(),
		SRS:          srs,
		Schema:       layer.Schema(),
	}
	coll.Features, err = layer.Features(coll.Schema)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}

	log.Printf("[info] loaded %d %s features from %s", len(coll.Features), coll.GeometryType, path)
	return coll, nil
}
