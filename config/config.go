// Package config contains the clip job. The default job is compiled in.
package config

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/omniscale/clipwater/feature"
	"github.com/omniscale/clipwater/geom/clip"
)

type Job struct {
	// Region as [minx, miny, maxx, maxy] in the CRS of the inputs.
	Region []float64 `yaml:"region"`
	Layers []Layer   `yaml:"layers"`
}

type Layer struct {
	// Name of the clipped collection. Used as GeoJSON name and table name.
	Name    string   `yaml:"name"`
	Input   string   `yaml:"input"`
	Outputs []Output `yaml:"outputs"`
}

type Output struct {
	Path string `yaml:"path"`
	// Format is optional and detected from Path if empty.
	Format string `yaml:"format,omitempty"`
}

const defaultJob = `
# Sao Paulo, Brazil
region: [-47.0, -24.0, -46.0, -23.0]

layers:
  - name: clipped_waterways
    input: data/sudeste-latest-free.shp/gis_osm_waterways_free_1.shp
    outputs:
      - path: data/clipped_waterways.shp
      - path: data/clipped_waterways.geojson
        format: geojson

  - name: clipped_water
    input: data/sudeste-latest-free.shp/gis_osm_water_a_free_1.shp
    outputs:
      - path: data/clipped_water.shp
      - path: data/clipped_water.geojson
        format: geojson
`

// DefaultJob returns the built-in job. It panics if the embedded
// definition is invalid.
func DefaultJob() Job {
	job, err := Parse([]byte(defaultJob))
	if err != nil {
		panic(err)
	}
	return job
}

// Parse decodes and validates a YAML job definition.
func Parse(data []byte) (Job, error) {
	var job Job
	if err := yaml.UnmarshalStrict(data, &job); err != nil {
		return Job{}, errors.Wrap(err, "parsing job")
	}
	if err := job.Validate(); err != nil {
		return Job{}, err
	}
	return job, nil
}

func (j Job) Validate() error {
	if len(j.Region) != 4 {
		return errors.Errorf("region needs four values, got %d", len(j.Region))
	}
	if len(j.Layers) == 0 {
		return errors.New("no layers")
	}
	for i, l := range j.Layers {
		if l.Input == "" {
			return errors.Errorf("layer %d: missing input", i)
		}
		if len(l.Outputs) == 0 {
			return errors.Errorf("layer %d: no outputs", i)
		}
		for _, o := range l.Outputs {
			if o.Path == "" {
				return errors.Errorf("layer %d: output without path", i)
			}
		}
	}
	return nil
}

// BBox returns the region of the job.
func (j Job) BBox() feature.Region {
	return clip.NewRegion(j.Region[0], j.Region[1], j.Region[2], j.Region[3])
}

// CollectionName returns Name or the base name of the first output.
func (l Layer) CollectionName() string {
	if l.Name != "" {
		return l.Name
	}
	base := filepath.Base(l.Outputs[0].Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
