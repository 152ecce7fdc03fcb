package grid

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"go.uber.org/zap"

	"github.com/voidshard/era5d/pkg/errors"
)

var (
	magicGRIB   = []byte("GRIB")
	magicCDF    = []byte("CDF")
	magicHDF5   = []byte("\x89HDF\r\n\x1a\n")
	fillAttrs   = []string{"_FillValue", "missing_value"}
	maxMagicLen = 8
)

type fileFormat int

const (
	formatNetCDF fileFormat = iota
	formatGRIB
)

// Open decodes a netCDF (classic or netCDF-4) or GRIB2 file.
//
// GRIB2 is read for regular latitude/longitude grids with simple packing,
// which is what the archive produces for ERA5. GRIB edition 1 is rejected.
func Open(path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrParse, err)
	}

	format, err := sniff(path)
	if err != nil {
		return nil, err
	}
	if format == formatGRIB {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrParse, err)
		}
		return decodeGRIB2(filepath.Base(path), data)
	}

	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrParse, err)
	}
	defer nc.Close()

	log := zap.S().Named("grid")
	ds := NewDataset(filepath.Base(path), info.Size())
	for _, name := range nc.ListVariables() {
		vr, err := nc.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", errors.ErrParse, name, err)
		}

		attrs := map[string]interface{}{}
		if vr.Attributes != nil {
			for _, k := range vr.Attributes.Keys() {
				v, _ := vr.Attributes.Get(k)
				attrs[k] = v
			}
		}

		shape, values, ok := flatten(vr.Values)
		if !ok {
			log.Debugw("skipping non numeric variable", "variable", name)
			continue
		}
		if len(shape) != len(vr.Dimensions) || product(shape) != len(values) {
			return nil, fmt.Errorf("%w: variable %s has dimensions %v but shape %v", errors.ErrParse, name, vr.Dimensions, shape)
		}

		unpack(values, attrs)
		ds.Add(&Variable{
			Name:   name,
			Dims:   append([]string{}, vr.Dimensions...),
			Shape:  shape,
			Values: values,
			Attrs:  attrs,
		})
	}
	return ds, nil
}

// sniff checks the file's magic bytes
func sniff(path string) (fileFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrParse, err)
	}
	defer f.Close()

	head := make([]byte, maxMagicLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("%w: reading header: %v", errors.ErrParse, err)
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, magicGRIB):
		return formatGRIB, nil
	case bytes.HasPrefix(head, magicCDF), bytes.HasPrefix(head, magicHDF5):
		return formatNetCDF, nil
	}
	return 0, fmt.Errorf("%w: not a netCDF or GRIB file", errors.ErrParse)
}

// unpack applies CF packing attributes in place: values equal to a fill value
// become NaN, then scale_factor & add_offset are applied.
func unpack(values []float64, attrs map[string]interface{}) {
	fills := []float64{}
	for _, k := range fillAttrs {
		if f, ok := toFloat(attrs[k]); ok {
			fills = append(fills, f)
		}
	}
	scale, hasScale := toFloat(attrs["scale_factor"])
	offset, hasOffset := toFloat(attrs["add_offset"])

	for i, v := range values {
		for _, f := range fills {
			if v == f || (math.IsNaN(f) && math.IsNaN(v)) {
				v = math.NaN()
				break
			}
		}
		if hasScale {
			v *= scale
		}
		if hasOffset {
			v += offset
		}
		values[i] = v
	}
}

// toFloat reads a numeric attribute, which may be a scalar or a one element slice.
func toFloat(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Len() == 0 {
			return 0, false
		}
		rv = rv.Index(0)
	}
	return numeric(rv)
}

func numeric(rv reflect.Value) (float64, bool) {
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// flatten walks nested slices (as the decoder returns them) into a shape & row
// major values. ok is false for non numeric data (strings, compounds).
func flatten(v interface{}) (shape []int, values []float64, ok bool) {
	if v == nil {
		return nil, nil, false
	}
	rv := reflect.ValueOf(v)

	shape = []int{}
	for cur := rv; cur.Kind() == reflect.Slice || cur.Kind() == reflect.Array; {
		shape = append(shape, cur.Len())
		if cur.Len() == 0 {
			break
		}
		cur = cur.Index(0)
	}

	values = []float64{}
	ok = walk(rv, len(shape), &values)
	return shape, values, ok
}

func walk(rv reflect.Value, depth int, out *[]float64) bool {
	if depth == 0 {
		f, ok := numeric(rv)
		if !ok {
			return false
		}
		*out = append(*out, f)
		return true
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	if rv.Len() == 0 {
		// an empty array of a numeric type is still numeric
		return isNumericKind(rv.Type())
	}
	for i := 0; i < rv.Len(); i++ {
		if !walk(rv.Index(i), depth-1, out) {
			return false
		}
	}
	return true
}

func product(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func isNumericKind(t reflect.Type) bool {
	for t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	_, ok := numeric(reflect.Zero(t))
	return ok
}
