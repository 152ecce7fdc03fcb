package grid

import (
	"fmt"
	"math"
)

// Variable is one decoded array from a grid file. Values are row major with
// scaling applied and missing points set to NaN.
type Variable struct {
	Name   string
	Dims   []string
	Shape  []int
	Values []float64
	Attrs  map[string]interface{}
}

// Attr returns a string attribute, or def if it's absent.
func (v *Variable) Attr(name, def string) string {
	a, ok := v.Attrs[name]
	if !ok {
		return def
	}
	switch t := a.(type) {
	case string:
		if t == "" {
			return def
		}
		return t
	case []string:
		if len(t) > 0 {
			return t[0]
		}
		return def
	}
	return fmt.Sprint(a)
}

// Size is the number of elements in the variable.
func (v *Variable) Size() int {
	return len(v.Values)
}

// Range returns the min & max of the finite values, ok is false if there are none.
func (v *Variable) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v.Values {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		ok = true
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi, ok
}

// Dataset is a decoded grid file.
type Dataset struct {
	Filename string
	Size     int64

	// Order is the order variables were listed in the file
	Order []string
	Vars  map[string]*Variable
}

func NewDataset(filename string, size int64) *Dataset {
	return &Dataset{Filename: filename, Size: size, Vars: map[string]*Variable{}}
}

// Add a variable, replacing any of the same name.
func (d *Dataset) Add(v *Variable) {
	if _, ok := d.Vars[v.Name]; !ok {
		d.Order = append(d.Order, v.Name)
	}
	d.Vars[v.Name] = v
}

// Var returns the named variable.
func (d *Dataset) Var(name string) (*Variable, bool) {
	v, ok := d.Vars[name]
	return v, ok
}
