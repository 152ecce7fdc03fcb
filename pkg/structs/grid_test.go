package structs

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewArrayDataWithheld(t *testing.T) {
	big := make([]float64, 12000)

	withheld := NewArrayData([]int{120, 100}, big, false)
	full := NewArrayData([]int{120, 100}, big, true)
	small := NewArrayData([]int{2, 2}, []float64{1, 2, 3, 4}, false)

	assert.True(t, withheld.Withheld())
	assert.False(t, full.Withheld())
	assert.False(t, small.Withheld())
}

func TestArrayDataMarshal(t *testing.T) {
	cases := []struct {
		Name   string
		Given  ArrayData
		Expect string
	}{
		{"Withheld", ArrayData{Shape: []int{200, 100}}, `"too_large"`},
		{"Vector", ArrayData{Shape: []int{3}, Values: []float64{1, 2.5, 3}}, `[1,2.5,3]`},
		{"Matrix", ArrayData{Shape: []int{2, 2}, Values: []float64{1, 2, 3, 4}}, `[[1,2],[3,4]]`},
		{"NaN", ArrayData{Shape: []int{2}, Values: []float64{math.NaN(), 1}}, `[null,1]`},
		{"Empty", ArrayData{Shape: []int{0}, Values: []float64{}}, `[]`},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			out, err := json.Marshal(c.Given)

			assert.Nil(t, err)
			assert.Equal(t, c.Expect, string(out))
		})
	}
}

func TestArrayDataMarshalShapeMismatch(t *testing.T) {
	_, err := json.Marshal(ArrayData{Shape: []int{3}, Values: []float64{1}})

	assert.NotNil(t, err)
}

func TestArrayDataUnmarshal(t *testing.T) {
	var nested, withheld ArrayData

	assert.Nil(t, json.Unmarshal([]byte(`[[1,2,3],[4,null,6]]`), &nested))
	assert.Nil(t, json.Unmarshal([]byte(`"too_large"`), &withheld))

	assert.Equal(t, []int{2, 3}, nested.Shape)
	assert.Equal(t, 6, len(nested.Values))
	assert.True(t, math.IsNaN(nested.Values[4]))
	assert.True(t, withheld.Withheld())
}
