package grid

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ee "github.com/voidshard/era5d/pkg/errors"
)

func TestFlatten(t *testing.T) {
	cases := []struct {
		Name   string
		Given  interface{}
		Shape  []int
		Values []float64
		OK     bool
	}{
		{"Scalar", float32(1.5), []int{}, []float64{1.5}, true},
		{"Vector", []int16{1, 2, 3}, []int{3}, []float64{1, 2, 3}, true},
		{"Matrix", [][]float64{{1, 2}, {3, 4}, {5, 6}}, []int{3, 2}, []float64{1, 2, 3, 4, 5, 6}, true},
		{"Cube", [][][]int8{{{1}, {2}}}, []int{1, 2, 1}, []float64{1, 2}, true},
		{"Unsigned", []uint8{255}, []int{1}, []float64{255}, true},
		{"Empty", []float32{}, []int{0}, []float64{}, true},
		{"String", "abc", []int{}, nil, false},
		{"Strings", []string{"a"}, []int{1}, nil, false},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			shape, values, ok := flatten(c.Given)

			assert.Equal(t, c.OK, ok)
			assert.Equal(t, c.Shape, shape)
			if c.OK {
				assert.Equal(t, c.Values, values)
			}
		})
	}
}

func TestUnpack(t *testing.T) {
	values := []float64{0, 10, -32767, 20}

	unpack(values, map[string]interface{}{
		"scale_factor": float64(0.5),
		"add_offset":   []float32{100},
		"_FillValue":   int16(-32767),
	})

	assert.Equal(t, 100.0, values[0])
	assert.Equal(t, 105.0, values[1])
	assert.True(t, math.IsNaN(values[2]))
	assert.Equal(t, 110.0, values[3])
}

func TestOpenRejects(t *testing.T) {
	cases := []struct {
		Name    string
		Content string
	}{
		{"GRIB", "GRIB\x00\x00\x01"},
		{"Garbage", "hello world"},
		{"Empty", ""},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "file")
			require.Nil(t, os.WriteFile(path, []byte(c.Content), 0600))

			ds, err := Open(path)

			assert.Nil(t, ds)
			assert.True(t, errors.Is(err, ee.ErrParse))
		})
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))

	assert.True(t, errors.Is(err, ee.ErrParse))
}

func TestOpenGRIB1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.grib")
	// edition 1 has a 3 byte length then the edition number
	header := []byte("GRIB\x00\x00\x1c\x01")
	require.Nil(t, os.WriteFile(path, append(header, make([]byte, 20)...), 0600))

	ds, err := Open(path)

	assert.Nil(t, ds)
	assert.True(t, errors.Is(err, ee.ErrParse))
	assert.Contains(t, err.Error(), "edition 1")
	assert.Contains(t, err.Error(), "netcdf")
}
