package geos

/*
#cgo LDFLAGS: -lgeos_c
#include "geos_c.h"
#include <stdlib.h>
*/
import "C"

type CoordSeq struct {
	v *C.GEOSCoordSequence
}

func (this *Geos) CreateCoordSeq(size, dim uint32) (*CoordSeq, error) {
	result := C.GEOSCoordSeq_create_r(this.v, C.uint(size), C.uint(dim))
	if result == nil {
		return nil, CreateError("could not create CoordSeq")
	}
	return &CoordSeq{result}, nil
}

func (this *CoordSeq) SetXY(handle *Geos, i uint32, x, y float64) error {
	if C.GEOSCoordSeq_setX_r(handle.v, this.v, C.uint(i), C.double(x)) == 0 {
		return Error("unable to SetX")
	}
	if C.GEOSCoordSeq_setY_r(handle.v, this.v, C.uint(i), C.double(y)) == 0 {
		return Error("unable to SetY")
	}
	return nil
}

// AsLinearRing creates a LinearRing. The ring takes ownership of the
// CoordSeq.
func (this *CoordSeq) AsLinearRing(handle *Geos) (*Geom, error) {
	ring := C.GEOSGeom_createLinearRing_r(handle.v, this.v)
	if ring == nil {
		return nil, CreateError("unable to create LinearRing")
	}
	return &Geom{ring}, nil
}

func (this *Geos) DestroyCoordSeq(coordSeq *CoordSeq) {
	if coordSeq.v != nil {
		C.GEOSCoordSeq_destroy_r(this.v, coordSeq.v)
		coordSeq.v = nil
	}
}

// BoundsPolygon returns a closed, counter-clockwise polygon for bounds.
func (this *Geos) BoundsPolygon(bounds Bounds) *Geom {
	coordSeq, err := this.CreateCoordSeq(5, 2)
	if err != nil {
		return nil
	}
	corners := [5][2]float64{
		{bounds.MinX, bounds.MinY},
		{bounds.MaxX, bounds.MinY},
		{bounds.MaxX, bounds.MaxY},
		{bounds.MinX, bounds.MaxY},
		{bounds.MinX, bounds.MinY},
	}
	for i, c := range corners {
		if err := coordSeq.SetXY(this, uint32(i), c[0], c[1]); err != nil {
			this.DestroyCoordSeq(coordSeq)
			return nil
		}
	}

	// coordSeq inherited by LinearRing, no destroy
	ring, err := coordSeq.AsLinearRing(this)
	if err != nil {
		this.DestroyCoordSeq(coordSeq)
		return nil
	}
	geom := C.GEOSGeom_createPolygon_r(this.v, ring.v, nil, 0)
	if geom == nil {
		this.Destroy(ring)
		return nil
	}
	return &Geom{geom}
}
