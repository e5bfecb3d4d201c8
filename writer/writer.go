// Package writer stores feature collections as shapefiles, GeoJSON or
// PostGIS tables.
package writer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/omniscale/clipwater/database"
	"github.com/omniscale/clipwater/database/postgis"
	"github.com/omniscale/clipwater/feature"
	"github.com/omniscale/clipwater/geom/geojson"
	"github.com/omniscale/clipwater/geom/ogr"
	"github.com/omniscale/clipwater/log"
)

// defaultSrid of database tables. Input SRS is not reprojected.
const defaultSrid = 4326

type Format int

const (
	Shapefile Format = iota
	GeoJSON
	PostGIS
)

func (f Format) String() string {
	switch f {
	case Shapefile:
		return "shapefile"
	case GeoJSON:
		return "geojson"
	case PostGIS:
		return "postgis"
	}
	return "unknown"
}

// ParseFormat returns the Format for name as returned by Format.String.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "shapefile", "shp":
		return Shapefile, nil
	case "geojson":
		return GeoJSON, nil
	case "postgis":
		return PostGIS, nil
	}
	return 0, errors.Errorf("unknown format %q", name)
}

// FormatFromPath guesses the format from the file extension of dest or
// from the scheme of a database URL.
func FormatFromPath(dest string) (Format, error) {
	if postgis.IsConnectionURL(dest) {
		return PostGIS, nil
	}
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".shp":
		return Shapefile, nil
	case ".geojson", ".json":
		return GeoJSON, nil
	}
	return 0, errors.Errorf("unable to detect format of %s", dest)
}

// Write stores coll at dest. Existing files or tables are replaced.
func Write(coll *feature.Collection, dest string, format Format) error {
	var err error
	switch format {
	case Shapefile:
		err = writeShapefile(coll, dest)
	case GeoJSON:
		err = writeGeoJSON(coll, dest)
	case PostGIS:
		err = writePostGIS(coll, dest)
	default:
		err = errors.Errorf("unsupported format %s", format)
	}
	if err != nil {
		return errors.Wrapf(err, "writing %s", dest)
	}
	if format != PostGIS {
		log.Printf("[info] wrote %d features to %s", len(coll.Features), dest)
	}
	return nil
}

func checkDir(dest string) error {
	dir := filepath.Dir(dest)
	fi, err := os.Stat(dir)
	if err != nil {
		return errors.Wrap(err, "destination directory")
	}
	if !fi.IsDir() {
		return errors.Errorf("%s is not a directory", dir)
	}
	return nil
}

func writeShapefile(coll *feature.Collection, dest string) error {
	if err := checkDir(dest); err != nil {
		return err
	}
	ds, err := ogr.Create("ESRI Shapefile", dest)
	if err != nil {
		return err
	}
	defer ds.Close()

	name := strings.TrimSuffix(filepath.Base(dest), filepath.Ext(dest))
	// records are UTF-8 as read by OGR, the .cpg file declares it
	layer, err := ds.CreateLayer(name, coll.GeometryType, coll.SRS, coll.Schema, "ENCODING=UTF-8")
	if err != nil {
		return err
	}
	for i, f := range coll.Features {
		if err := layer.Append(f); err != nil {
			return errors.Wrapf(err, "feature %d", i)
		}
	}
	return nil
}

func writeGeoJSON(coll *feature.Collection, dest string) error {
	if err := checkDir(dest); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := geojson.Encode(f, coll); err != nil {
		f.Close()
		return err
	}
	return errors.WithStack(f.Close())
}

func writePostGIS(coll *feature.Collection, dest string) error {
	db, err := database.Open(database.Config{
		Type:             database.ConnectionType(dest),
		ConnectionParams: dest,
		Srid:             defaultSrid,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Write(coll)
}
