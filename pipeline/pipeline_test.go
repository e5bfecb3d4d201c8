package pipeline

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniscale/clipwater/config"
	"github.com/omniscale/clipwater/feature"
	"github.com/omniscale/clipwater/geom/geojson"
	"github.com/omniscale/clipwater/geom/geos"
	"github.com/omniscale/clipwater/reader"
	"github.com/omniscale/clipwater/writer"
)

func writeInput(t *testing.T, path, geomType string, wkts ...string) {
	g := geos.NewGeos()
	defer g.Finish()

	coll := &feature.Collection{
		Name:         "input",
		GeometryType: geomType,
		Schema: feature.Schema{
			{Name: "name", Type: feature.String, Width: 40},
			{Name: "osm_id", Type: feature.Integer64},
		},
	}
	for i, wkt := range wkts {
		geom := g.FromWkt(wkt)
		require.NotNil(t, geom, wkt)
		coll.Features = append(coll.Features, feature.Feature{
			Geometry: g.AsWkb(geom),
			Record:   feature.Record{wkt, int64(i + 1)},
		})
		g.Destroy(geom)
	}
	require.NoError(t, writer.Write(coll, path, writer.Shapefile))
}

func testJob(dir string) config.Job {
	return config.Job{
		Region: []float64{-47, -24, -46, -23},
		Layers: []config.Layer{
			{
				Name:  "clipped_waterways",
				Input: filepath.Join(dir, "waterways.shp"),
				Outputs: []config.Output{
					{Path: filepath.Join(dir, "clipped_waterways.shp")},
					{Path: filepath.Join(dir, "clipped_waterways.geojson"), Format: "geojson"},
				},
			},
			{
				Name:  "clipped_water",
				Input: filepath.Join(dir, "water.shp"),
				Outputs: []config.Output{
					{Path: filepath.Join(dir, "clipped_water.shp")},
					{Path: filepath.Join(dir, "clipped_water.geojson")},
				},
			},
		},
	}
}

const (
	lineInside   = "LINESTRING (-46.8 -23.8, -46.2 -23.2)"
	lineOutside  = "LINESTRING (-45.5 -22.5, -45.0 -22.0)"
	lineCrossing = "LINESTRING (-46.5 -23.5, -45.5 -23.5)"

	polyInside   = "POLYGON ((-46.6 -23.6, -46.4 -23.6, -46.4 -23.4, -46.6 -23.4, -46.6 -23.6))"
	polyCrossing = "POLYGON ((-46.5 -23.5, -45.5 -23.5, -45.5 -22.5, -46.5 -22.5, -46.5 -23.5))"
)

func TestRun(t *testing.T) {
	dir, err := ioutil.TempDir("", "clipwater_pipeline_test_")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	writeInput(t, filepath.Join(dir, "waterways.shp"), "LineString", lineInside, lineOutside, lineCrossing)
	writeInput(t, filepath.Join(dir, "water.shp"), "Polygon", polyInside, polyCrossing)

	stdout := &bytes.Buffer{}
	require.NoError(t, Run(testJob(dir), stdout))
	assert.Equal(t, "Clipping completed successfully!\n", stdout.String())

	g := geos.NewGeos()
	defer g.Finish()

	ww, err := reader.Load(filepath.Join(dir, "clipped_waterways.shp"))
	require.NoError(t, err)
	require.Len(t, ww.Features, 2)
	assert.Equal(t, feature.Record{lineInside, int64(1)}, ww.Features[0].Record)
	assert.Equal(t, feature.Record{lineCrossing, int64(3)}, ww.Features[1].Record)

	inside := g.FromWkt(lineInside)
	defer g.Destroy(inside)
	assert.Equal(t, g.AsWkb(inside), ww.Features[0].Geometry)

	truncated := g.FromWkb(ww.Features[1].Geometry)
	require.NotNil(t, truncated)
	defer g.Destroy(truncated)
	expected := g.FromWkt("LINESTRING (-46.5 -23.5, -46 -23.5)")
	defer g.Destroy(expected)
	assert.True(t, g.Equals(expected, truncated), g.AsWkt(truncated))

	water, err := reader.Load(filepath.Join(dir, "clipped_water.shp"))
	require.NoError(t, err)
	require.Len(t, water.Features, 2)
	clippedPoly := g.FromWkb(water.Features[1].Geometry)
	require.NotNil(t, clippedPoly)
	defer g.Destroy(clippedPoly)
	assert.InDelta(t, 0.25, clippedPoly.Area(), 1e-9)

	f, err := os.Open(filepath.Join(dir, "clipped_waterways.geojson"))
	require.NoError(t, err)
	defer f.Close()
	decoded, err := geojson.Decode(f, ww.Schema)
	require.NoError(t, err)
	assert.Equal(t, "clipped_waterways", decoded.Name)
	assert.Len(t, decoded.Features, 2)

	_, err = os.Stat(filepath.Join(dir, "clipped_water.geojson"))
	assert.NoError(t, err)
}

func TestRunMissingInput(t *testing.T) {
	dir, err := ioutil.TempDir("", "clipwater_pipeline_test_")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	// only the first input exists
	writeInput(t, filepath.Join(dir, "waterways.shp"), "LineString", lineInside)

	stdout := &bytes.Buffer{}
	err = Run(testJob(dir), stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "water.shp")
	assert.Empty(t, stdout.String())

	matches, err := filepath.Glob(filepath.Join(dir, "clipped_*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRunWritesOutputsInOrder(t *testing.T) {
	dir, err := ioutil.TempDir("", "clipwater_pipeline_test_")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	writeInput(t, filepath.Join(dir, "waterways.shp"), "LineString", lineInside)
	writeInput(t, filepath.Join(dir, "water.shp"), "Polygon", polyInside)

	// shapefiles of all layers are written before the first GeoJSON
	job := testJob(dir)
	job.Layers[1].Outputs[0].Path = filepath.Join(dir, "missing", "clipped_water.shp")

	stdout := &bytes.Buffer{}
	err = Run(job, stdout)
	require.Error(t, err)
	assert.Empty(t, stdout.String())

	_, err = os.Stat(filepath.Join(dir, "clipped_waterways.shp"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "clipped_waterways.geojson"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "clipped_water.geojson"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunInvalidOutputFormat(t *testing.T) {
	job := testJob("/nonexistent")
	job.Layers[0].Outputs[0].Path = "out.gpkg"

	stdout := &bytes.Buffer{}
	err := Run(job, stdout)
	assert.Error(t, err)
	assert.Empty(t, stdout.String())
}
