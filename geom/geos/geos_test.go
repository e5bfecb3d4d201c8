package geos

import (
	"testing"
)

func TestBoundsPolygon(t *testing.T) {
	g := NewGeos()
	defer g.Finish()

	geom := g.BoundsPolygon(Bounds{-47, -24, -46, -23})
	if geom == nil {
		t.Fatal("no polygon")
	}
	defer g.Destroy(geom)

	if g.Type(geom) != "Polygon" {
		t.Fatal("not a polygon", g.Type(geom))
	}
	if !g.IsValid(geom) {
		t.Fatal("not valid")
	}
	if b := geom.Bounds(); b != (Bounds{-47, -24, -46, -23}) {
		t.Fatal("unexpected bounds", b)
	}
	if geom.Area() != 1.0 {
		t.Fatal("unexpected area", geom.Area())
	}
}

func TestBoundsDegenerate(t *testing.T) {
	g := NewGeos()
	defer g.Finish()

	line := g.FromWkt("LINESTRING(0 5, 10 5)")
	defer g.Destroy(line)
	if b := line.Bounds(); b != (Bounds{0, 5, 10, 5}) {
		t.Fatal("unexpected bounds", b)
	}

	empty := g.FromWkt("LINESTRING EMPTY")
	defer g.Destroy(empty)
	if b := empty.Bounds(); b != NilBounds {
		t.Fatal("unexpected bounds", b)
	}
}

func TestAsWkb(t *testing.T) {
	g := NewGeos()
	defer g.Finish()

	line := g.FromWkt("LINESTRING(0 0, 10 0)")
	defer g.Destroy(line)

	wkb := g.AsWkb(line)
	if len(wkb) == 0 || wkb[0] != 1 {
		t.Fatalf("expected little endian WKB, got %v", wkb)
	}

	geom := g.FromWkb(wkb)
	if geom == nil {
		t.Fatal("unable to parse WKB")
	}
	defer g.Destroy(geom)
	if !g.Equals(line, geom) {
		t.Fatal("geometries differ", g.AsWkt(geom))
	}
}

func TestLineMerge(t *testing.T) {
	g := NewGeos()
	defer g.Finish()

	lines := []*Geom{
		g.FromWkt("LINESTRING(0 0, 10 0)"),
		g.FromWkt("LINESTRING(10 0, 10 10)"),
		g.FromWkt("LINESTRING(20 20, 30 30)"),
	}
	merged := g.LineMerge(lines)
	if len(merged) != 2 {
		t.Fatal("expected two lines, got", len(merged))
	}
	if merged[0].Length()+merged[1].Length() < 34 {
		t.Fatal("lines got shorter")
	}
}

func TestAsEwkbHex(t *testing.T) {
	g := NewGeos()
	defer g.Finish()
	g.SetHandleSrid(4326)

	p := g.FromWkt("POINT(1 2)")
	defer g.Destroy(p)

	hex := string(g.AsEwkbHex(p))
	// little endian, point type with SRID flag, SRID 4326
	if len(hex) < 18 || hex[:18] != "0101000020E6100000" {
		t.Fatal("unexpected EWKB", hex)
	}
}
