package geos

/*
#cgo LDFLAGS: -lgeos_c
#include "geos_c.h"
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"
)

// wkbNDR selects little endian output in GEOSWKBWriter_setByteOrder.
const wkbNDR = 1

func (this *Geos) FromWkt(wkt string) *Geom {
	wktC := C.CString(wkt)
	defer C.free(unsafe.Pointer(wktC))
	geom := C.GEOSGeomFromWKT_r(this.v, wktC)
	if geom == nil {
		return nil
	}
	return &Geom{geom}
}

func (this *Geos) FromWkb(wkb []byte) *Geom {
	if len(wkb) == 0 {
		return nil
	}
	geom := C.GEOSGeomFromWKB_buf_r(this.v, (*C.uchar)(&wkb[0]), C.size_t(len(wkb)))
	if geom == nil {
		return nil
	}
	return &Geom{geom}
}

func (this *Geos) AsWkt(geom *Geom) string {
	str := C.GEOSGeomToWKT_r(this.v, geom.v)
	if str == nil {
		return ""
	}
	result := C.GoString(str)
	C.GEOSFree_r(this.v, unsafe.Pointer(str))
	return result
}

// AsWkb returns geom as little endian WKB.
func (this *Geos) AsWkb(geom *Geom) []byte {
	if this.wkbwriter == nil {
		this.wkbwriter = C.GEOSWKBWriter_create_r(this.v)
		if this.wkbwriter == nil {
			return nil
		}
		C.GEOSWKBWriter_setByteOrder_r(this.v, this.wkbwriter, wkbNDR)
	}

	var size C.size_t
	buf := C.GEOSWKBWriter_write_r(this.v, this.wkbwriter, geom.v, &size)
	if buf == nil {
		return nil
	}
	result := C.GoBytes(unsafe.Pointer(buf), C.int(size))
	C.GEOSFree_r(this.v, unsafe.Pointer(buf))
	return result
}

// AsEwkbHex returns geom as hex encoded EWKB, with the SRID of
// SetHandleSrid if set.
func (this *Geos) AsEwkbHex(geom *Geom) []byte {
	if this.ewkbwriter == nil {
		this.ewkbwriter = C.GEOSWKBWriter_create_r(this.v)
		if this.ewkbwriter == nil {
			return nil
		}
		if this.srid != 0 {
			C.GEOSWKBWriter_setIncludeSRID_r(this.v, this.ewkbwriter, C.char(1))
		}
	}

	if this.srid != 0 {
		C.GEOSSetSRID_r(this.v, geom.v, C.int(this.srid))
	}

	var size C.size_t
	buf := C.GEOSWKBWriter_writeHEX_r(this.v, this.ewkbwriter, geom.v, &size)
	if buf == nil {
		return nil
	}
	result := C.GoBytes(unsafe.Pointer(buf), C.int(size))
	C.GEOSFree_r(this.v, unsafe.Pointer(buf))

	return result
}
