package clip

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/omniscale/clipwater/feature"
	"github.com/omniscale/clipwater/geom/geos"
	"github.com/omniscale/clipwater/log"
)

// NewRegion returns the rectangle (minx, miny, maxx, maxy). The bounds are
// not checked. Swapped min and max values describe the same rectangle.
func NewRegion(minx, miny, maxx, maxy float64) feature.Region {
	return feature.Region{MinX: minx, MinY: miny, MaxX: maxx, MaxY: maxy}
}

// Clipper restricts geometries to a rectangular region.
type Clipper struct {
	g      *geos.Geos
	region *geos.Geom
	prep   *geos.PreparedGeom
	bounds geos.Bounds
}

// New creates a Clipper for region. The Clipper is bound to g and needs
// to be closed before g is finished.
func New(g *geos.Geos, region feature.Region) (*Clipper, error) {
	bounds := geos.Bounds{
		MinX: region.MinX,
		MinY: region.MinY,
		MaxX: region.MaxX,
		MaxY: region.MaxY,
	}
	geom := g.BoundsPolygon(bounds)
	if geom == nil {
		return nil, errors.Errorf("couldn't create polygon for region %s", region)
	}
	prep := g.Prepare(geom)
	if prep == nil {
		g.Destroy(geom)
		return nil, errors.Errorf("couldn't prepare region %s", region)
	}
	// bounds of the polygon are normalized, even for an inverted region
	return &Clipper{g: g, region: geom, prep: prep, bounds: geom.Bounds()}, nil
}

func (c *Clipper) Close() {
	if c.prep != nil {
		c.g.PreparedDestroy(c.prep)
		c.prep = nil
	}
	if c.region != nil {
		c.g.Destroy(c.region)
		c.region = nil
	}
}

func (c *Clipper) outsideBounds(geom *geos.Geom) bool {
	b := geom.Bounds()
	if b == geos.NilBounds {
		return true
	}
	return b.MaxX < c.bounds.MinX ||
		b.MaxY < c.bounds.MinY ||
		b.MinX > c.bounds.MaxX ||
		b.MinY > c.bounds.MaxY
}

// Clip returns the part of geom inside the region. It returns geom itself
// when the region covers geom completely and nil when nothing of geom
// remains. Other results are new geometries owned by the caller.
func (c *Clipper) Clip(geom *geos.Geom) (*geos.Geom, error) {
	g := c.g
	if g.IsEmpty(geom) || c.outsideBounds(geom) {
		return nil, nil
	}
	if g.PreparedCovers(c.prep, geom) {
		return geom, nil
	}
	if !g.PreparedIntersects(c.prep, geom) {
		return nil, nil
	}

	geomType := g.Type(geom)
	part := g.Intersection(c.region, geom)
	if part == nil {
		return nil, errors.New("couldn't create intersection")
	}
	if g.IsEmpty(part) {
		g.Destroy(part)
		return nil, nil
	}
	parts := filterGeometryByType(g, part, geomType)
	merged := mergeGeometries(g, parts, geomType)
	switch len(merged) {
	case 0:
		return nil, nil
	case 1:
		return merged[0], nil
	}
	var result *geos.Geom
	switch baseType(geomType) {
	case "LineString":
		result = g.MultiLineString(merged)
	case "Point":
		result = g.MultiPoint(merged)
	default:
		result = g.MultiPolygon(merged)
	}
	if result == nil {
		return nil, errors.Errorf("couldn't create collection of %d %s parts", len(merged), geomType)
	}
	return result, nil
}

// Stats counts the outcome of clipping a collection.
type Stats struct {
	Inside    int
	Truncated int
	Dropped   int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d inside, %d truncated, %d dropped", s.Inside, s.Truncated, s.Dropped)
}

// Collection returns a new collection with all features of coll restricted
// to region. Features covered by the region keep their geometry unchanged,
// features without any part in the region are dropped. Records are copied
// as they are and the feature order is kept.
func Collection(coll *feature.Collection, region feature.Region) (*feature.Collection, Stats, error) {
	var stats Stats

	g := geos.NewGeos()
	defer g.Finish()

	c, err := New(g, region)
	if err != nil {
		return nil, stats, err
	}
	defer c.Close()

	result := coll.Derive(coll.Name)
	for i, f := range coll.Features {
		if len(f.Geometry) == 0 {
			stats.Dropped++
			continue
		}
		geom := g.FromWkb(f.Geometry)
		if geom == nil {
			return nil, stats, errors.Errorf("feature %d of %s: invalid geometry", i, coll.Name)
		}
		clipped, err := c.Clip(geom)
		if err != nil {
			g.Destroy(geom)
			return nil, stats, errors.Wrapf(err, "clipping feature %d of %s", i, coll.Name)
		}
		switch clipped {
		case nil:
			stats.Dropped++
		case geom:
			stats.Inside++
			result.Features = append(result.Features, feature.Feature{
				Geometry: f.Geometry,
				Record:   f.Record.Copy(),
			})
		default:
			wkb := g.AsWkb(clipped)
			g.Destroy(clipped)
			if wkb == nil {
				g.Destroy(geom)
				return nil, stats, errors.Errorf("feature %d of %s: couldn't serialize clipped geometry", i, coll.Name)
			}
			stats.Truncated++
			result.Features = append(result.Features, feature.Feature{
				Geometry: wkb,
				Record:   f.Record.Copy(),
			})
		}
		g.Destroy(geom)
	}
	log.Printf("[info] clipped %s: %s", coll.Name, stats)
	return result, stats, nil
}

func baseType(geomType string) string {
	return strings.TrimPrefix(geomType, "Multi")
}

// filterGeometryByType returns the parts of geom with the same dimension as
// targetType, e.g. the lines of a GeometryCollection for LineString.
// Destroys geom if it is not returned.
func filterGeometryByType(g *geos.Geos, geom *geos.Geom, targetType string) []*geos.Geom {
	geomType := g.Type(geom)

	if baseType(geomType) == baseType(targetType) {
		return []*geos.Geom{geom}
	}

	if g.NumGeoms(geom) >= 1 {
		// GeometryCollection? return list of geometries
		var geoms []*geos.Geom
		for _, part := range g.Geoms(geom) {
			// only parts with same type
			if baseType(g.Type(part)) == baseType(targetType) {
				geoms = append(geoms, g.Clone(part))
			}
		}
		g.Destroy(geom)
		if len(geoms) != 0 {
			return geoms
		}
		return []*geos.Geom{}
	}
	g.Destroy(geom)
	return []*geos.Geom{}
}

// flatten splits all Multi* geometries of geoms into their parts. Parts
// with another type than single are destroyed.
func flatten(g *geos.Geos, geoms []*geos.Geom, single string) []*geos.Geom {
	var result []*geos.Geom
	for _, geom := range geoms {
		geomType := g.Type(geom)
		if geomType == "Multi"+single {
			for _, part := range g.Geoms(geom) {
				result = append(result, g.Clone(part))
			}
			g.Destroy(geom)
		} else if geomType == single {
			result = append(result, geom)
		} else {
			log.Printf("[warn] unexpected geometry type %s, expected %s", geomType, single)
			g.Destroy(geom)
		}
	}
	return result
}

func filterInvalidLineStrings(g *geos.Geos, geoms []*geos.Geom) []*geos.Geom {
	var result []*geos.Geom
	for _, geom := range geoms {
		if geom.Length() > 1e-9 {
			result = append(result, geom)
		} else {
			g.Destroy(geom)
		}
	}
	return result
}

// mergeGeometries merges intersection parts back into as few geometries as
// possible. Polygons are unioned into one (Multi)Polygon, lines are merged
// at shared end points.
func mergeGeometries(g *geos.Geos, geoms []*geos.Geom, geomType string) []*geos.Geom {
	switch baseType(geomType) {
	case "Polygon":
		polygons := flatten(g, geoms, "Polygon")
		polygon := g.UnionPolygons(polygons)
		if polygon == nil {
			return nil
		}
		return []*geos.Geom{polygon}
	case "LineString":
		linestrings := flatten(g, geoms, "LineString")
		linestrings = filterInvalidLineStrings(g, linestrings)
		if len(linestrings) == 0 {
			return nil
		}
		return g.LineMerge(linestrings)
	case "Point":
		return flatten(g, geoms, "Point")
	default:
		log.Printf("[warn] unexpected geometry type %s", geomType)
		for _, geom := range geoms {
			g.Destroy(geom)
		}
		return nil
	}
}
