package ogr

/*
#cgo LDFLAGS: -lgdal
#include <stdlib.h>
#include "ogr_api.h"
#include "ogr_srs_api.h"
#include "cpl_error.h"
#include "cpl_conv.h"
#include "cpl_string.h"

static OGRErr geomFromWkb(void *wkb, int size, OGRGeometryH *geom) {
	return OGR_G_CreateFromWkb(wkb, NULL, geom, size);
}
*/
import "C"
import (
	"fmt"
	"os"
	"unsafe"

	"github.com/omniscale/clipwater/feature"
)

func init() {
	C.OGRRegisterAll()
}

type DataSource struct {
	v C.OGRDataSourceH
}

type Layer struct {
	v C.OGRLayerH
}

type OgrError struct {
	message string
}

func (e *OgrError) Error() string {
	return e.message
}

func lastOgrError(fallback string) error {
	msg := C.CPLGetLastErrorMsg()
	if msg == nil {
		return &OgrError{fallback}
	}
	str := C.GoString(msg)
	if str == "" {
		return &OgrError{fallback}
	}
	return &OgrError{fallback + ": " + str}
}

// Open opens name read-only.
func Open(name string) (*DataSource, error) {
	namec := C.CString(name)
	defer C.free(unsafe.Pointer(namec))
	C.CPLErrorReset()
	ds := C.OGROpen(namec, 0, nil)
	if ds == nil {
		return nil, lastOgrError("failed to open " + name)
	}
	return &DataSource{ds}, nil
}

// Create creates a new datasource with the OGR driver driverName (e.g.
// "ESRI Shapefile"). An existing datasource at name is deleted first.
func Create(driverName, name string) (*DataSource, error) {
	driverc := C.CString(driverName)
	defer C.free(unsafe.Pointer(driverc))
	namec := C.CString(name)
	defer C.free(unsafe.Pointer(namec))

	C.CPLErrorReset()
	driver := C.OGRGetDriverByName(driverc)
	if driver == nil {
		return nil, &OgrError{"driver not available: " + driverName}
	}

	if _, err := os.Stat(name); err == nil {
		if C.OGR_Dr_DeleteDataSource(driver, namec) != C.OGRERR_NONE {
			return nil, lastOgrError("failed to remove existing " + name)
		}
		C.CPLErrorReset()
	}

	ds := C.OGR_Dr_CreateDataSource(driver, namec, nil)
	if ds == nil {
		return nil, lastOgrError("failed to create " + name)
	}
	return &DataSource{ds}, nil
}

// Close flushes and releases the datasource.
func (ds *DataSource) Close() {
	if ds.v != nil {
		C.OGR_DS_Destroy(ds.v)
		ds.v = nil
	}
}

func (ds *DataSource) Layer() (*Layer, error) {
	layer := C.OGR_DS_GetLayer(ds.v, 0)
	if layer == nil {
		return nil, lastOgrError("failed to get layer 0")
	}
	return &Layer{layer}, nil
}

// CreateLayer creates a layer with the geometry type, spatial reference
// and fields of the collection metadata. options are driver specific
// layer creation options as KEY=VALUE, e.g. ENCODING=UTF-8.
func (ds *DataSource) CreateLayer(name, geometryType, srsWkt string, schema feature.Schema, options ...string) (*Layer, error) {
	var srs C.OGRSpatialReferenceH
	if srsWkt != "" {
		wktc := C.CString(srsWkt)
		defer C.free(unsafe.Pointer(wktc))
		srs = C.OSRNewSpatialReference(wktc)
		if srs == nil {
			return nil, lastOgrError("invalid spatial reference")
		}
		defer C.OSRRelease(srs)
	}

	var opts **C.char
	for _, o := range options {
		oc := C.CString(o)
		opts = C.CSLAddString(opts, oc)
		C.free(unsafe.Pointer(oc))
	}
	defer C.CSLDestroy(opts)

	namec := C.CString(name)
	defer C.free(unsafe.Pointer(namec))
	layer := C.OGR_DS_CreateLayer(ds.v, namec, srs, wkbType(geometryType), opts)
	if layer == nil {
		return nil, lastOgrError("failed to create layer " + name)
	}

	for _, field := range schema {
		fieldc := C.CString(field.Name)
		fld := C.OGR_Fld_Create(fieldc, fieldType(field.Type))
		C.free(unsafe.Pointer(fieldc))
		if field.Width > 0 {
			C.OGR_Fld_SetWidth(fld, C.int(field.Width))
		}
		if field.Precision > 0 {
			C.OGR_Fld_SetPrecision(fld, C.int(field.Precision))
		}
		err := C.OGR_L_CreateField(layer, fld, 1)
		C.OGR_Fld_Destroy(fld)
		if err != C.OGRERR_NONE {
			return nil, lastOgrError("failed to create field " + field.Name)
		}
	}
	return &Layer{layer}, nil
}

func (layer *Layer) Name() string {
	return C.GoString(C.OGR_L_GetName(layer.v))
}

// GeometryType returns the OGC name of the layer geometry type, or
// Unknown.
func (layer *Layer) GeometryType() string {
	return geometryTypeName(C.OGR_GT_Flatten(C.OGR_L_GetGeomType(layer.v)))
}

// SRS returns the spatial reference of the layer as WKT or an empty
// string.
func (layer *Layer) SRS() (string, error) {
	srs := C.OGR_L_GetSpatialRef(layer.v)
	if srs == nil {
		return "", nil
	}
	var wkt *C.char
	if C.OSRExportToWkt(srs, &wkt) != C.OGRERR_NONE {
		return "", lastOgrError("failed to export spatial reference")
	}
	defer C.VSIFree(unsafe.Pointer(wkt))
	return C.GoString(wkt), nil
}

func (layer *Layer) Schema() feature.Schema {
	defn := C.OGR_L_GetLayerDefn(layer.v)
	n := int(C.OGR_FD_GetFieldCount(defn))
	schema := make(feature.Schema, 0, n)
	for i := 0; i < n; i++ {
		fld := C.OGR_FD_GetFieldDefn(defn, C.int(i))
		schema = append(schema, feature.Field{
			Name:      C.GoString(C.OGR_Fld_GetNameRef(fld)),
			Type:      schemaFieldType(C.OGR_Fld_GetType(fld)),
			Width:     int(C.OGR_Fld_GetWidth(fld)),
			Precision: int(C.OGR_Fld_GetPrecision(fld)),
		})
	}
	return schema
}

// Features reads all features of the layer. Geometries are returned as
// little endian WKB, features without geometry have a nil Geometry.
func (layer *Layer) Features(schema feature.Schema) ([]feature.Feature, error) {
	var features []feature.Feature

	C.OGR_L_ResetReading(layer.v)
	for {
		C.CPLErrorReset()
		feat := C.OGR_L_GetNextFeature(layer.v)
		if feat == nil {
			if C.CPLGetLastErrorType() >= C.CE_Failure {
				return nil, lastOgrError("failed to read feature")
			}
			break
		}
		f, err := readFeature(feat, schema)
		C.OGR_F_Destroy(feat)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, nil
}

func readFeature(feat C.OGRFeatureH, schema feature.Schema) (feature.Feature, error) {
	f := feature.Feature{}

	geom := C.OGR_F_GetGeometryRef(feat)
	if geom != nil {
		size := C.OGR_G_WkbSize(geom)
		if size > 0 {
			buf := make([]byte, size)
			if C.OGR_G_ExportToWkb(geom, C.wkbNDR, (*C.uchar)(unsafe.Pointer(&buf[0]))) != C.OGRERR_NONE {
				return f, lastOgrError("failed to export geometry")
			}
			f.Geometry = buf
		}
	}

	f.Record = make(feature.Record, len(schema))
	for i, field := range schema {
		idx := C.int(i)
		if C.OGR_F_IsFieldSetAndNotNull(feat, idx) == 0 {
			continue
		}
		switch field.Type {
		case feature.Integer, feature.Integer64:
			f.Record[i] = int64(C.OGR_F_GetFieldAsInteger64(feat, idx))
		case feature.Real:
			f.Record[i] = float64(C.OGR_F_GetFieldAsDouble(feat, idx))
		default:
			f.Record[i] = C.GoString(C.OGR_F_GetFieldAsString(feat, idx))
		}
	}
	return f, nil
}

// Append writes f as a new feature. The record needs to match the fields
// the layer was created with.
func (layer *Layer) Append(f feature.Feature) error {
	feat := C.OGR_F_Create(C.OGR_L_GetLayerDefn(layer.v))
	if feat == nil {
		return lastOgrError("failed to create feature")
	}
	defer C.OGR_F_Destroy(feat)

	if len(f.Geometry) > 0 {
		var geom C.OGRGeometryH
		if C.geomFromWkb(unsafe.Pointer(&f.Geometry[0]), C.int(len(f.Geometry)), &geom) != C.OGRERR_NONE {
			return lastOgrError("failed to parse geometry")
		}
		err := C.OGR_F_SetGeometry(feat, geom)
		C.OGR_G_DestroyGeometry(geom)
		if err != C.OGRERR_NONE {
			return lastOgrError("failed to set geometry")
		}
	}

	for i, v := range f.Record {
		idx := C.int(i)
		switch v := v.(type) {
		case nil:
			C.OGR_F_SetFieldNull(feat, idx)
		case string:
			vc := C.CString(v)
			C.OGR_F_SetFieldString(feat, idx, vc)
			C.free(unsafe.Pointer(vc))
		case int64:
			C.OGR_F_SetFieldInteger64(feat, idx, C.GIntBig(v))
		case float64:
			C.OGR_F_SetFieldDouble(feat, idx, C.double(v))
		default:
			return &OgrError{fmt.Sprintf("unsupported value %#v for field %d", v, i)}
		}
	}

	C.CPLErrorReset()
	if C.OGR_L_CreateFeature(layer.v, feat) != C.OGRERR_NONE {
		return lastOgrError("failed to write feature")
	}
	return nil
}

func schemaFieldType(t C.OGRFieldType) feature.FieldType {
	switch t {
	case C.OFTInteger:
		return feature.Integer
	case C.OFTInteger64:
		return feature.Integer64
	case C.OFTReal:
		return feature.Real
	case C.OFTDate:
		return feature.Date
	default:
		return feature.String
	}
}

func fieldType(t feature.FieldType) C.OGRFieldType {
	switch t {
	case feature.Integer:
		return C.OFTInteger
	case feature.Integer64:
		return C.OFTInteger64
	case feature.Real:
		return C.OFTReal
	case feature.Date:
		return C.OFTDate
	default:
		return C.OFTString
	}
}

func geometryTypeName(t C.OGRwkbGeometryType) string {
	switch t {
	case C.wkbPoint:
		return "Point"
	case C.wkbLineString:
		return "LineString"
	case C.wkbPolygon:
		return "Polygon"
	case C.wkbMultiPoint:
		return "MultiPoint"
	case C.wkbMultiLineString:
		return "MultiLineString"
	case C.wkbMultiPolygon:
		return "MultiPolygon"
	case C.wkbGeometryCollection:
		return "GeometryCollection"
	default:
		return "Unknown"
	}
}

func wkbType(name string) C.OGRwkbGeometryType {
	switch name {
	case "Point":
		return C.wkbPoint
	case "LineString":
		return C.wkbLineString
	case "Polygon":
		return C.wkbPolygon
	case "MultiPoint":
		return C.wkbMultiPoint
	case "MultiLineString":
		return C.wkbMultiLineString
	case "MultiPolygon":
		return C.wkbMultiPolygon
	case "GeometryCollection":
		return C.wkbGeometryCollection
	default:
		return C.wkbUnknown
	}
}
