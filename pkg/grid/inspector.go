package grid

import (
	"fmt"
	"math"
	"strings"

	"github.com/voidshard/era5d/pkg/errors"
	"github.com/voidshard/era5d/pkg/structs"
)

const notAvailable = "N/A"

var defaultLevels = []float64{1000}

// Inspector derives metadata & slices from decoded grid files.
type Inspector struct {
	open func(path string) (*Dataset, error)
}

func NewInspector() *Inspector {
	return &Inspector{open: Open}
}

// ParseFile opens & parses the file at path.
func (i *Inspector) ParseFile(path string) (*structs.GridMetadata, error) {
	ds, err := i.open(path)
	if err != nil {
		return nil, err
	}
	return i.Parse(ds)
}

// ExtractFile opens the file at path & extracts a slice of one variable.
func (i *Inspector) ExtractFile(path, variable string, timeIndex int, level *float64, full bool) (*structs.SliceResult, error) {
	ds, err := i.open(path)
	if err != nil {
		return nil, err
	}
	return i.ExtractSlice(ds, variable, timeIndex, level, full)
}

// Parse builds metadata for a dataset. Nothing is returned on error.
func (i *Inspector) Parse(ds *Dataset) (*structs.GridMetadata, error) {
	ax := resolveAxes(ds)
	if ax.lat == nil || ax.lon == nil {
		return nil, fmt.Errorf("%w: no latitude / longitude coordinates found", errors.ErrParse)
	}

	meta := &structs.GridMetadata{
		Filename:  ds.Filename,
		FileSize:  fmt.Sprintf("%.1f MB", float64(ds.Size)/(1024*1024)),
		Variables: []*structs.VariableSummary{},
		GridInfo:  gridInfo(ax.lat.Values, ax.lon.Values),
	}

	timeInfo, times, err := describeTimes(ax.time)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrParse, err)
	}
	meta.TimeInfo = timeInfo

	for _, name := range dataVariables(ds) {
		v := ds.Vars[name]
		summary := &structs.VariableSummary{
			Name:        v.Name,
			Description: v.Attr("long_name", v.Name),
			Units:       v.Attr("units", "unknown"),
			Levels:      defaultLevels,
			TimeSteps:   1,
			Shape:       append([]int{}, v.Shape...),
			Data:        structs.NewArrayData(v.Shape, v.Values, false),
		}
		if ax.time != nil {
			summary.TimeSteps = len(times)
		}
		if ax.level != nil && contains(v.Dims, ax.level.Name) {
			summary.Levels = append([]float64{}, ax.level.Values...)
		}
		if lo, hi, ok := v.Range(); ok {
			summary.DataRange = structs.Range{Min: &lo, Max: &hi}
		}
		meta.Variables = append(meta.Variables, summary)
	}
	return meta, nil
}

func gridInfo(lats, lons []float64) structs.GridInfo {
	info := structs.GridInfo{
		Resolution: notAvailable,
		Projection: structs.ProjectionLatLon,
		Dimensions: structs.Dimensions{NX: len(lons), NY: len(lats)},
	}
	if len(lats) >= 2 && len(lons) >= 2 {
		info.Resolution = fmt.Sprintf("%.2f° × %.2f°", math.Abs(lats[1]-lats[0]), math.Abs(lons[1]-lons[0]))
	}
	info.Extent.South, info.Extent.North = minMax(lats)
	info.Extent.West, info.Extent.East = minMax(lons)
	return info
}

func minMax(in []float64) (float64, float64) {
	v := &Variable{Values: in}
	lo, hi, ok := v.Range()
	if !ok {
		return 0, 0
	}
	return lo, hi
}

// describeTimes returns the time summary & the formatted time of each step.
func describeTimes(tv *Variable) (structs.TimeInfo, []string, error) {
	if tv == nil || len(tv.Values) == 0 {
		return structs.TimeInfo{
			StartTime:  notAvailable,
			EndTime:    notAvailable,
			TimeStep:   "Single time",
			TotalSteps: 1,
		}, nil, nil
	}

	out := make([]string, len(tv.Values))
	step := "Single time"
	decoded, err := DecodeTimes(tv.Attr("units", ""), tv.Values)
	if err == nil {
		for i, t := range decoded {
			out[i] = formatTime(t)
		}
		if len(decoded) > 1 {
			step = describeStep(decoded[1].Sub(decoded[0]))
		}
	} else {
		// no usable units; report raw values rather than failing the whole file
		for i, v := range tv.Values {
			out[i] = fmt.Sprintf("%g", v)
		}
		if len(tv.Values) > 1 {
			step = fmt.Sprintf("%g", math.Abs(tv.Values[1]-tv.Values[0]))
		}
	}

	return structs.TimeInfo{
		StartTime:  out[0],
		EndTime:    out[len(out)-1],
		TimeStep:   step,
		TotalSteps: len(out),
	}, out, nil
}

// dataVariables are variables that aren't coordinates: not named for an axis or
// a dimension, and not listed in another variable's "coordinates" attribute.
func dataVariables(ds *Dataset) []string {
	skip := map[string]bool{}
	for _, v := range ds.Vars {
		for _, d := range v.Dims {
			skip[d] = true
		}
		for _, c := range splitFields(v.Attr("coordinates", "")) {
			skip[c] = true
		}
	}

	out := []string{}
	for _, name := range ds.Order {
		if skip[name] || isCoordinate(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// ExtractSlice selects a 2D (latitude, longitude) slice of a variable at a
// time index & (if the variable has levels) the level nearest to level, or the
// first level if level is nil. Other dimensions are fixed at index 0.
func (i *Inspector) ExtractSlice(ds *Dataset, variable string, timeIndex int, level *float64, full bool) (*structs.SliceResult, error) {
	v, ok := ds.Var(variable)
	if !ok || isCoordinate(variable) {
		return nil, fmt.Errorf("%w: variable %s not found", errors.ErrExtraction, variable)
	}
	if timeIndex < 0 {
		return nil, fmt.Errorf("%w: time index %d out of range", errors.ErrExtraction, timeIndex)
	}
	ax := resolveAxes(ds)

	result := &structs.SliceResult{
		Variable:    v.Name,
		Description: v.Attr("long_name", v.Name),
		Units:       v.Attr("units", "unknown"),
		TimeIndex:   timeIndex,
	}

	strides := make([]int, len(v.Shape))
	stride := 1
	for d := len(v.Shape) - 1; d >= 0; d-- {
		strides[d] = stride
		stride *= v.Shape[d]
	}

	base := 0
	latDim, lonDim := -1, -1
	usedTime := false
	for d, name := range v.Dims {
		size := v.Shape[d]
		switch {
		case contains(latitudeNames, name):
			latDim = d
			continue
		case contains(longitudeNames, name):
			lonDim = d
			continue
		case contains(timeNames, name):
			if timeIndex >= size {
				return nil, fmt.Errorf("%w: time index %d out of range, %s has %d steps", errors.ErrExtraction, timeIndex, name, size)
			}
			usedTime = true
			base += timeIndex * strides[d]
			if ax.time != nil && ax.time.Name == name {
				_, times, err := describeTimes(ax.time)
				if err == nil && timeIndex < len(times) {
					result.Time = times[timeIndex]
				}
			}
		case contains(levelNames, name):
			idx := 0
			if coord, ok := ds.Var(name); ok && len(coord.Values) == size {
				if level != nil {
					idx = nearest(coord.Values, *level)
				}
				lv := coord.Values[idx]
				result.Level = &lv
			}
			base += idx * strides[d]
		default:
			if size == 0 {
				return nil, fmt.Errorf("%w: dimension %s is empty", errors.ErrExtraction, name)
			}
			// ensemble member, expver and friends
		}
	}
	if !usedTime && timeIndex > 0 {
		return nil, fmt.Errorf("%w: time index %d out of range, %s has no time dimension", errors.ErrExtraction, timeIndex, variable)
	}
	if latDim < 0 || lonDim < 0 {
		return nil, fmt.Errorf("%w: variable %s is not 2D over latitude / longitude (dims %v)", errors.ErrExtraction, variable, v.Dims)
	}

	ny, nx := v.Shape[latDim], v.Shape[lonDim]
	values := make([]float64, 0, ny*nx)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			values = append(values, v.Values[base+y*strides[latDim]+x*strides[lonDim]])
		}
	}

	result.Shape = []int{ny, nx}
	result.Data = structs.NewArrayData(result.Shape, values, full)
	result.Lats = coordValues(ds, v.Dims[latDim], ny)
	result.Lons = coordValues(ds, v.Dims[lonDim], nx)
	return result, nil
}

// coordValues returns the coordinate variable for a dimension, or indices if
// the file doesn't have one.
func coordValues(ds *Dataset, dim string, n int) []float64 {
	if c, ok := ds.Var(dim); ok && len(c.Values) == n {
		return append([]float64{}, c.Values...)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func nearest(values []float64, target float64) int {
	best := 0
	for i, v := range values {
		if math.Abs(v-target) < math.Abs(values[best]-target) {
			best = i
		}
	}
	return best
}

func splitFields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}
