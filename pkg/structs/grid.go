package structs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

const (
	// MaxInlineElements is the largest array (exclusive) we'll return inline
	MaxInlineElements = 10000

	// WithheldSentinel replaces arrays that are too big to return
	WithheldSentinel = "too_large"

	ProjectionLatLon = "Regular latitude-longitude"
)

// GridMetadata describes a parsed grid file.
type GridMetadata struct {
	Filename  string             `json:"filename"`
	FileSize  string             `json:"fileSize"`
	Variables []*VariableSummary `json:"variables"`
	GridInfo  GridInfo           `json:"gridInfo"`
	TimeInfo  TimeInfo           `json:"timeInfo"`
}

type VariableSummary struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Units       string    `json:"units"`
	Levels      []float64 `json:"levels"`
	TimeSteps   int       `json:"timeSteps"`
	DataRange   Range     `json:"dataRange"`
	Shape       []int     `json:"shape"`
	Data        ArrayData `json:"data"`
}

// Range of finite values; nil when a variable has none.
type Range struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type GridInfo struct {
	Resolution string     `json:"resolution"`
	Projection string     `json:"projection"`
	Extent     Extent     `json:"extent"`
	Dimensions Dimensions `json:"dimensions"`
}

type Extent struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

type Dimensions struct {
	NX int `json:"nx"`
	NY int `json:"ny"`
}

type TimeInfo struct {
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	TimeStep   string `json:"timeStep"`
	TotalSteps int    `json:"totalSteps"`
}

// SliceResult is a 2D (lat, lon) extraction from a variable.
type SliceResult struct {
	Variable    string    `json:"variable"`
	Description string    `json:"description"`
	Units       string    `json:"units"`
	TimeIndex   int       `json:"timeIndex"`
	Time        string    `json:"time,omitempty"`
	Level       *float64  `json:"level,omitempty"`
	Lats        []float64 `json:"lats"`
	Lons        []float64 `json:"lons"`
	Shape       []int     `json:"shape"`
	Data        ArrayData `json:"data"`
}

// ArrayData is a row-major numeric array. A nil Values means the array was
// withheld, and it's written as WithheldSentinel. NaN is written as null.
type ArrayData struct {
	Shape  []int
	Values []float64
}

// NewArrayData returns the array inline if small enough (or full is set),
// otherwise a withheld placeholder.
func NewArrayData(shape []int, values []float64, full bool) ArrayData {
	if !full && len(values) >= MaxInlineElements {
		return ArrayData{Shape: shape}
	}
	if values == nil {
		values = []float64{}
	}
	return ArrayData{Shape: shape, Values: values}
}

func (a ArrayData) Withheld() bool {
	return a.Values == nil
}

func (a ArrayData) MarshalJSON() ([]byte, error) {
	if a.Withheld() {
		return json.Marshal(WithheldSentinel)
	}
	size := 1
	for _, d := range a.Shape {
		size *= d
	}
	if size != len(a.Values) {
		return nil, fmt.Errorf("array shape %v does not match %d values", a.Shape, len(a.Values))
	}
	var buf bytes.Buffer
	if len(a.Shape) == 0 {
		writeFloat(&buf, a.Values[0])
		return buf.Bytes(), nil
	}
	writeNested(&buf, a.Shape, a.Values)
	return buf.Bytes(), nil
}

func writeNested(buf *bytes.Buffer, shape []int, values []float64) {
	buf.WriteByte('[')
	if len(shape) == 1 {
		for i, v := range values {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeFloat(buf, v)
		}
	} else {
		stride := len(values) / max(shape[0], 1)
		for i := 0; i < shape[0]; i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeNested(buf, shape[1:], values[i*stride:(i+1)*stride])
		}
	}
	buf.WriteByte(']')
}

func writeFloat(buf *bytes.Buffer, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		buf.WriteString("null")
		return
	}
	buf.Write(strconv.AppendFloat(nil, v, 'g', -1, 64))
}

func (a *ArrayData) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != WithheldSentinel {
			return fmt.Errorf("unexpected array placeholder %q", s)
		}
		a.Shape = nil
		a.Values = nil
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	shape := []int{}
	for cur := raw; ; {
		l, ok := cur.([]interface{})
		if !ok {
			break
		}
		shape = append(shape, len(l))
		if len(l) == 0 {
			break
		}
		cur = l[0]
	}
	values := []float64{}
	if err := flattenJSON(raw, &values); err != nil {
		return err
	}
	a.Shape = shape
	a.Values = values
	return nil
}

func flattenJSON(v interface{}, out *[]float64) error {
	switch t := v.(type) {
	case nil:
		*out = append(*out, math.NaN())
	case float64:
		*out = append(*out, t)
	case []interface{}:
		for _, e := range t {
			if err := flattenJSON(e, out); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unexpected array element %v", v)
	}
	return nil
}
