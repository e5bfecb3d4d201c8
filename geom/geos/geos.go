package geos

/*
#cgo LDFLAGS: -lgeos_c
#include "geos_c.h"
#include <stdlib.h>

extern void goLogString(char *msg);
extern void debug_wrap(const char *fmt, ...);
extern GEOSContextHandle_t initGEOS_r_debug();
extern void initGEOS_debug();
*/
import "C"

import (
	"runtime"
	"unsafe"

	"github.com/omniscale/clipwater/log"
)

//export goLogString
func goLogString(msg *C.char) {
	log.Printf("[warn] GEOS: %s", C.GoString(msg))
}

type Geos struct {
	v          C.GEOSContextHandle_t
	srid       int
	wkbwriter  *C.GEOSWKBWriter
	ewkbwriter *C.GEOSWKBWriter
}

type Geom struct {
	v *C.GEOSGeometry
}

type CreateError string
type Error string

func (e Error) Error() string {
	return string(e)
}

func (e CreateError) Error() string {
	return string(e)
}

// NewGeos returns a new GEOS context. A context must not be shared
// between goroutines and needs to be released with Finish.
func NewGeos() *Geos {
	geos := &Geos{}
	geos.v = C.initGEOS_r_debug()
	return geos
}

func (this *Geos) Finish() {
	if this.v != nil {
		if this.wkbwriter != nil {
			C.GEOSWKBWriter_destroy_r(this.v, this.wkbwriter)
			this.wkbwriter = nil
		}
		if this.ewkbwriter != nil {
			C.GEOSWKBWriter_destroy_r(this.v, this.ewkbwriter)
			this.ewkbwriter = nil
		}
		C.finishGEOS_r(this.v)
		this.v = nil
	}
}

// SetHandleSrid sets the SRID that AsEwkbHex embeds in geometries.
func (this *Geos) SetHandleSrid(srid int) {
	this.srid = srid
}

func init() {
	/*
		Init global GEOS handle for non _r calls.
		In theory we need to always call the _r functions
		with a thread/goroutine-local GEOS instance to get thread
		safe behaviour. Some functions don't need a GEOS instance though
		and we can make use of that e.g. to call GEOSGeom_destroy in
		finalizer.
	*/
	C.initGEOS_debug()
}

func Version() string {
	return C.GoString(C.GEOSversion())
}

func (this *Geos) Destroy(geom *Geom) {
	runtime.SetFinalizer(geom, nil)
	if geom.v != nil {
		C.GEOSGeom_destroy_r(this.v, geom.v)
		geom.v = nil
	} else {
		log.Printf("[warn] double free?")
	}
}

func (this *Geos) Clone(geom *Geom) *Geom {
	if geom == nil || geom.v == nil {
		return nil
	}

	result := C.GEOSGeom_clone_r(this.v, geom.v)
	if result == nil {
		return nil
	}
	return &Geom{result}
}

func (this *Geos) Type(geom *Geom) string {
	geomType := C.GEOSGeomType_r(this.v, geom.v)
	if geomType == nil {
		return "Unknown"
	}
	defer C.GEOSFree_r(this.v, unsafe.Pointer(geomType))
	return C.GoString(geomType)
}

func (this *Geos) NumGeoms(geom *Geom) int32 {
	count := int32(C.GEOSGetNumGeometries_r(this.v, geom.v))
	return count
}

// Geoms returns the parts of a multi geometry or collection. The parts
// are owned by geom and must not be destroyed.
func (this *Geos) Geoms(geom *Geom) []*Geom {
	count := this.NumGeoms(geom)
	var result []*Geom
	for i := 0; int32(i) < count; i++ {
		part := C.GEOSGetGeometryN_r(this.v, geom.v, C.int(i))
		if part == nil {
			return nil
		}
		result = append(result, &Geom{part})
	}
	return result
}

func (this *Geos) IsEmpty(geom *Geom) bool {
	if C.GEOSisEmpty_r(this.v, geom.v) == 0 {
		return false
	}
	// 1 -> empty, 2 -> exception (already logged)
	return true
}

func (this *Geos) IsValid(geom *Geom) bool {
	if C.GEOSisValid_r(this.v, geom.v) == 1 {
		return true
	}
	return false
}

func (this *Geom) Area() float64 {
	var area C.double
	if ret := C.GEOSArea(this.v, &area); ret == 1 {
		return float64(area)
	} else {
		return 0
	}
}

func (this *Geom) Length() float64 {
	var length C.double
	if ret := C.GEOSLength(this.v, &length); ret == 1 {
		return float64(length)
	} else {
		return 0
	}
}

type Bounds struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

var NilBounds = Bounds{1e20, 1e20, -1e20, -1e20}

func (this *Geom) Bounds() Bounds {
	if this.v == nil || C.GEOSisEmpty(this.v) != 0 {
		return NilBounds
	}
	env := C.GEOSEnvelope(this.v)
	if env == nil {
		return NilBounds
	}
	defer C.GEOSGeom_destroy(env)

	// the envelope of a point or an axis-parallel line is no polygon
	coordsGeom := env
	if C.GEOSGeomTypeId(env) == C.GEOS_POLYGON {
		coordsGeom = C.GEOSGetExteriorRing(env)
		if coordsGeom == nil {
			return NilBounds
		}
	}
	cs := C.GEOSGeom_getCoordSeq(coordsGeom)
	if cs == nil {
		return NilBounds
	}
	var csLen C.uint
	C.GEOSCoordSeq_getSize(cs, &csLen)
	bounds := NilBounds
	var temp C.double
	for i := 0; i < int(csLen); i++ {
		C.GEOSCoordSeq_getX(cs, C.uint(i), &temp)
		x := float64(temp)
		if x < bounds.MinX {
			bounds.MinX = x
		}
		if x > bounds.MaxX {
			bounds.MaxX = x
		}
		C.GEOSCoordSeq_getY(cs, C.uint(i), &temp)
		y := float64(temp)
		if y < bounds.MinY {
			bounds.MinY = y
		}
		if y > bounds.MaxY {
			bounds.MaxY = y
		}
	}

	return bounds
}

func (this *Geos) MultiPolygon(polygons []*Geom) *Geom {
	return this.collection(C.GEOS_MULTIPOLYGON, polygons)
}

func (this *Geos) MultiLineString(lines []*Geom) *Geom {
	return this.collection(C.GEOS_MULTILINESTRING, lines)
}

func (this *Geos) MultiPoint(points []*Geom) *Geom {
	return this.collection(C.GEOS_MULTIPOINT, points)
}

// collection creates a new collection that takes ownership of geoms.
func (this *Geos) collection(typeID C.int, geoms []*Geom) *Geom {
	if len(geoms) == 0 {
		return nil
	}
	geomPtr := make([]*C.GEOSGeometry, len(geoms))
	for i, geom := range geoms {
		geomPtr[i] = geom.v
	}
	geom := C.GEOSGeom_createCollection_r(this.v, typeID, &geomPtr[0], C.uint(len(geoms)))
	if geom == nil {
		return nil
	}
	for _, part := range geoms {
		runtime.SetFinalizer(part, nil)
		part.v = nil
	}
	return &Geom{geom}
}
