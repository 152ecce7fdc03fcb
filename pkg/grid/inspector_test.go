package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ee "github.com/voidshard/era5d/pkg/errors"
)

func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// testDataset is an ERA5 style dataset: 2 hourly steps, 3 pressure levels, 4x3 grid.
func testDataset() *Dataset {
	ds := NewDataset("era5_test.netcdf", 3*1024*1024+100*1024)
	ds.Add(&Variable{Name: "number", Dims: []string{}, Shape: []int{}, Values: []float64{0}})
	ds.Add(&Variable{
		Name: "valid_time", Dims: []string{"valid_time"}, Shape: []int{2},
		Values: []float64{1051896, 1051897},
		Attrs:  map[string]interface{}{"units": "hours since 1900-01-01 00:00:00.0"},
	})
	ds.Add(&Variable{Name: "pressure_level", Dims: []string{"pressure_level"}, Shape: []int{3}, Values: []float64{1000, 850, 500}})
	ds.Add(&Variable{Name: "latitude", Dims: []string{"latitude"}, Shape: []int{4}, Values: []float64{50, 49.5, 49, 48.5}})
	ds.Add(&Variable{Name: "longitude", Dims: []string{"longitude"}, Shape: []int{3}, Values: []float64{0, 0.5, 1}})
	ds.Add(&Variable{
		Name: "t2m", Dims: []string{"valid_time", "latitude", "longitude"}, Shape: []int{2, 4, 3},
		Values: seq(24),
		Attrs:  map[string]interface{}{"long_name": "2 metre temperature", "units": "K", "coordinates": "number"},
	})
	ds.Add(&Variable{
		Name: "t", Dims: []string{"valid_time", "pressure_level", "latitude", "longitude"}, Shape: []int{2, 3, 4, 3},
		Values: seq(72),
	})
	return ds
}

func TestParse(t *testing.T) {
	meta, err := NewInspector().Parse(testDataset())

	require.Nil(t, err)
	assert.Equal(t, "era5_test.netcdf", meta.Filename)
	assert.Equal(t, "3.1 MB", meta.FileSize)

	assert.Equal(t, "0.50° × 0.50°", meta.GridInfo.Resolution)
	assert.Equal(t, "Regular latitude-longitude", meta.GridInfo.Projection)
	assert.Equal(t, 50.0, meta.GridInfo.Extent.North)
	assert.Equal(t, 48.5, meta.GridInfo.Extent.South)
	assert.Equal(t, 1.0, meta.GridInfo.Extent.East)
	assert.Equal(t, 0.0, meta.GridInfo.Extent.West)
	assert.Equal(t, 3, meta.GridInfo.Dimensions.NX)
	assert.Equal(t, 4, meta.GridInfo.Dimensions.NY)

	assert.Equal(t, "2020-01-01T00:00:00", meta.TimeInfo.StartTime)
	assert.Equal(t, "2020-01-01T01:00:00", meta.TimeInfo.EndTime)
	assert.Equal(t, "1 hour", meta.TimeInfo.TimeStep)
	assert.Equal(t, 2, meta.TimeInfo.TotalSteps)

	require.Equal(t, 2, len(meta.Variables))
	t2m, tp := meta.Variables[0], meta.Variables[1]

	assert.Equal(t, "t2m", t2m.Name)
	assert.Equal(t, "2 metre temperature", t2m.Description)
	assert.Equal(t, "K", t2m.Units)
	assert.Equal(t, []float64{1000}, t2m.Levels)
	assert.Equal(t, 2, t2m.TimeSteps)
	assert.Equal(t, 0.0, *t2m.DataRange.Min)
	assert.Equal(t, 23.0, *t2m.DataRange.Max)
	assert.Equal(t, []int{2, 4, 3}, t2m.Shape)
	assert.False(t, t2m.Data.Withheld())

	assert.Equal(t, "t", tp.Name)
	assert.Equal(t, "t", tp.Description)
	assert.Equal(t, "unknown", tp.Units)
	assert.Equal(t, []float64{1000, 850, 500}, tp.Levels)
}

func TestParseWithholdsLargeArrays(t *testing.T) {
	ds := testDataset()
	ds.Add(&Variable{
		Name: "big", Dims: []string{"valid_time", "latitude", "longitude"}, Shape: []int{1000, 4, 3},
		Values: seq(12000),
	})

	meta, err := NewInspector().Parse(ds)

	require.Nil(t, err)
	big := meta.Variables[2]
	assert.Equal(t, "big", big.Name)
	assert.True(t, big.Data.Withheld())
	assert.Equal(t, 11999.0, *big.DataRange.Max)
}

func TestParseAliases(t *testing.T) {
	ds := NewDataset("x.nc", 0)
	ds.Add(&Variable{Name: "lat", Dims: []string{"lat"}, Shape: []int{1}, Values: []float64{10}})
	ds.Add(&Variable{Name: "lon", Dims: []string{"lon"}, Shape: []int{2}, Values: []float64{20, 20.25}})
	ds.Add(&Variable{Name: "sp", Dims: []string{"lat", "lon"}, Shape: []int{1, 2}, Values: []float64{1, 2}})

	meta, err := NewInspector().Parse(ds)

	require.Nil(t, err)
	assert.Equal(t, "N/A", meta.GridInfo.Resolution)
	assert.Equal(t, "Single time", meta.TimeInfo.TimeStep)
	assert.Equal(t, 1, meta.Variables[0].TimeSteps)
}

func TestParseNoCoordinates(t *testing.T) {
	ds := NewDataset("x.nc", 0)
	ds.Add(&Variable{Name: "sp", Dims: []string{"y", "x"}, Shape: []int{1, 1}, Values: []float64{1}})

	meta, err := NewInspector().Parse(ds)

	assert.Nil(t, meta)
	assert.True(t, errors.Is(err, ee.ErrParse))
}

func TestExtractSliceLevel(t *testing.T) {
	level := 840.0

	s, err := NewInspector().ExtractSlice(testDataset(), "t", 1, &level, false)

	require.Nil(t, err)
	assert.Equal(t, "t", s.Variable)
	assert.Equal(t, 1, s.TimeIndex)
	assert.Equal(t, "2020-01-01T01:00:00", s.Time)
	assert.Equal(t, 850.0, *s.Level)
	assert.Equal(t, []int{4, 3}, s.Shape)
	assert.Equal(t, []float64{50, 49.5, 49, 48.5}, s.Lats)
	assert.Equal(t, []float64{0, 0.5, 1}, s.Lons)
	// time stride 36 + level stride 12
	assert.Equal(t, seq(60)[48:], s.Data.Values)
}

func TestExtractSliceDefaultLevel(t *testing.T) {
	s, err := NewInspector().ExtractSlice(testDataset(), "t", 0, nil, false)

	require.Nil(t, err)
	assert.Equal(t, 1000.0, *s.Level)
	assert.Equal(t, seq(12), s.Data.Values)
}

func TestExtractSliceTransposes(t *testing.T) {
	ds := testDataset()
	ds.Add(&Variable{Name: "swap", Dims: []string{"longitude", "latitude"}, Shape: []int{3, 4}, Values: seq(12)})

	s, err := NewInspector().ExtractSlice(ds, "swap", 0, nil, false)

	require.Nil(t, err)
	assert.Nil(t, s.Level)
	assert.Equal(t, []int{4, 3}, s.Shape)
	assert.Equal(t, []float64{0, 4, 8}, s.Data.Values[:3])
}

func TestExtractSliceErrors(t *testing.T) {
	ds := testDataset()
	ds.Add(&Variable{Name: "profile", Dims: []string{"latitude"}, Shape: []int{4}, Values: seq(4)})

	cases := []struct {
		Name      string
		Variable  string
		TimeIndex int
	}{
		{"UnknownVariable", "nope", 0},
		{"Coordinate", "latitude", 0},
		{"TimeTooLarge", "t2m", 2},
		{"NegativeTime", "t2m", -1},
		{"Not2D", "profile", 0},
		{"NoTimeDimension", "profile", 1},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			s, err := NewInspector().ExtractSlice(ds, c.Variable, c.TimeIndex, nil, false)

			assert.Nil(t, s)
			assert.True(t, errors.Is(err, ee.ErrExtraction), "got %v", err)
		})
	}
}

func TestExtractFileUsesOpener(t *testing.T) {
	i := &Inspector{open: func(path string) (*Dataset, error) {
		assert.Equal(t, "/data/x.nc", path)
		return testDataset(), nil
	}}

	s, err := i.ExtractFile("/data/x.nc", "t2m", 0, nil, true)

	require.Nil(t, err)
	assert.Equal(t, 12, len(s.Data.Values))
}
