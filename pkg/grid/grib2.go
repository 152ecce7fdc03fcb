package grid

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/voidshard/era5d/pkg/errors"
)

const (
	gribTimeUnits = "seconds since 1970-01-01 00:00:00"

	surfaceIsobaric = 100
	surfaceHeight   = 103

	bitmapNone  = 255
	bitmapHere  = 0
	bitmapReuse = 254
)

var gribEnd = []byte("7777")

// gribParam names an ERA5 parameter by (discipline, category, number).
type gribParam struct {
	discipline, category, number uint8
}

type gribName struct {
	short, long, units string
}

// ERA5 parameters that come out of the archive as GRIB2. Anything else is
// named after its parameter numbers.
var gribParams = map[gribParam]gribName{
	{0, 0, 0}: {"t", "Temperature", "K"},
	{0, 0, 6}: {"d", "Dew point temperature", "K"},
	{0, 1, 0}: {"q", "Specific humidity", "kg kg**-1"},
	{0, 1, 1}: {"r", "Relative humidity", "%"},
	{0, 1, 8}: {"tp", "Total precipitation", "kg m**-2"},
	{0, 2, 2}: {"u", "U component of wind", "m s**-1"},
	{0, 2, 3}: {"v", "V component of wind", "m s**-1"},
	{0, 2, 8}: {"w", "Vertical velocity", "Pa s**-1"},
	{0, 3, 0}: {"sp", "Surface pressure", "Pa"},
	{0, 3, 1}: {"msl", "Mean sea level pressure", "Pa"},
	{0, 3, 4}: {"z", "Geopotential", "m**2 s**-2"},
	{0, 6, 1}: {"tcc", "Total cloud cover", "%"},
}

// gribGrid is a regular latitude/longitude grid (template 3.0).
type gribGrid struct {
	ni, nj    int
	la1, la2  float64
	lo1, lo2  float64
	scanning  uint8
	numPoints int
}

func (g *gribGrid) equal(o *gribGrid) bool {
	return g.ni == o.ni && g.nj == o.nj && g.la1 == o.la1 && g.la2 == o.la2 && g.lo1 == o.lo1 && g.lo2 == o.lo2 && g.scanning == o.scanning
}

func (g *gribGrid) latitudes() []float64 {
	return axisValues(g.la1, g.la2, g.nj)
}

func (g *gribGrid) longitudes() []float64 {
	lo2 := g.lo2
	if g.scanning&0x80 == 0 && lo2 < g.lo1 {
		lo2 += 360
	} else if g.scanning&0x80 != 0 && lo2 > g.lo1 {
		lo2 -= 360
	}
	return axisValues(g.lo1, lo2, g.ni)
}

func axisValues(first, last float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		v := first
		if n > 1 {
			v += (last - first) * float64(i) / float64(n-1)
		}
		out[i] = math.Round(v*1e6) / 1e6
	}
	return out
}

// gribField is one decoded 2D field.
type gribField struct {
	name   gribName
	grid   *gribGrid
	valid  time.Time
	level  *float64
	values []float64
}

// message state carried between sections; sections 2 to 7 may repeat within a
// message & later ones inherit what came before.
type gribState struct {
	discipline uint8
	reference  time.Time
	grid       *gribGrid
	product    []byte
	packing    []byte
	bitmap     []bool
}

// decodeGRIB2 decodes every message in data into a Dataset laid out the way
// the netCDF files from the archive are: valid_time, [isobaricInhPa,]
// latitude, longitude.
func decodeGRIB2(filename string, data []byte) (*Dataset, error) {
	fields := []*gribField{}
	pos := 0
	for {
		next := bytes.Index(data[pos:], magicGRIB)
		if next < 0 {
			break
		}
		pos += next
		got, size, err := decodeMessage(data[pos:])
		if err != nil {
			return nil, fmt.Errorf("%w: GRIB message at byte %d: %v", errors.ErrParse, pos, err)
		}
		fields = append(fields, got...)
		pos += size
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no GRIB messages found", errors.ErrParse)
	}
	return buildDataset(filename, int64(len(data)), fields)
}

// decodeMessage decodes one message from the start of data, returning its
// fields & total length.
func decodeMessage(data []byte) ([]*gribField, int, error) {
	if len(data) < 16 {
		return nil, 0, fmt.Errorf("truncated header")
	}
	edition := data[7]
	if edition == 1 {
		return nil, 0, fmt.Errorf("GRIB edition 1 cannot be decoded, request format netcdf or GRIB2")
	}
	if edition != 2 {
		return nil, 0, fmt.Errorf("unknown GRIB edition %d, request format netcdf", edition)
	}
	total := binary.BigEndian.Uint64(data[8:16])
	if total < 20 || total > uint64(len(data)) {
		return nil, 0, fmt.Errorf("message length %d exceeds file", total)
	}
	msg := data[:total]
	if !bytes.Equal(msg[total-4:], gribEnd) {
		return nil, 0, fmt.Errorf("missing end marker")
	}

	st := &gribState{discipline: data[6]}
	fields := []*gribField{}
	pos := 16
	for pos < len(msg)-4 {
		if pos+5 > len(msg) {
			return nil, 0, fmt.Errorf("truncated section at byte %d", pos)
		}
		size := int(binary.BigEndian.Uint32(msg[pos : pos+4]))
		if size < 5 || pos+size > len(msg)-4 {
			return nil, 0, fmt.Errorf("bad section length %d at byte %d", size, pos)
		}
		sec := msg[pos : pos+size]

		var err error
		switch sec[4] {
		case 1:
			err = st.identification(sec)
		case 2:
			// local use
		case 3:
			st.grid, err = gridDefinition(sec)
		case 4:
			st.product, err = productDefinition(sec)
		case 5:
			st.packing, err = dataRepresentation(sec)
		case 6:
			err = st.bitmapSection(sec)
		case 7:
			var f *gribField
			f, err = st.field(sec)
			if err == nil {
				fields = append(fields, f)
			}
		default:
			err = fmt.Errorf("unknown section %d", sec[4])
		}
		if err != nil {
			return nil, 0, err
		}
		pos += size
	}
	return fields, int(total), nil
}

func (st *gribState) identification(sec []byte) error {
	if len(sec) < 19 {
		return fmt.Errorf("short identification section")
	}
	st.reference = time.Date(
		int(binary.BigEndian.Uint16(sec[12:14])), time.Month(sec[14]), int(sec[15]),
		int(sec[16]), int(sec[17]), int(sec[18]), 0, time.UTC,
	)
	return nil
}

func gridDefinition(sec []byte) (*gribGrid, error) {
	if len(sec) < 14 {
		return nil, fmt.Errorf("short grid definition section")
	}
	tmpl := binary.BigEndian.Uint16(sec[12:14])
	if tmpl != 0 {
		return nil, fmt.Errorf("unsupported grid template 3.%d, only regular latitude/longitude grids are read", tmpl)
	}
	if len(sec) < 72 {
		return nil, fmt.Errorf("short latitude/longitude grid template")
	}

	unit := 1e-6
	basic := binary.BigEndian.Uint32(sec[38:42])
	subdiv := binary.BigEndian.Uint32(sec[42:46])
	if basic != 0 && basic != math.MaxUint32 && subdiv != 0 && subdiv != math.MaxUint32 {
		unit = float64(basic) / float64(subdiv)
	}

	g := &gribGrid{
		numPoints: int(binary.BigEndian.Uint32(sec[6:10])),
		ni:        int(binary.BigEndian.Uint32(sec[30:34])),
		nj:        int(binary.BigEndian.Uint32(sec[34:38])),
		la1:       float64(signedInt32(sec[46:50])) * unit,
		lo1:       float64(signedInt32(sec[50:54])) * unit,
		la2:       float64(signedInt32(sec[55:59])) * unit,
		lo2:       float64(signedInt32(sec[59:63])) * unit,
		scanning:  sec[71],
	}
	if g.scanning&0x30 != 0 {
		return nil, fmt.Errorf("unsupported scanning mode %#x", g.scanning)
	}
	if g.ni <= 0 || g.nj <= 0 || g.ni*g.nj != g.numPoints {
		return nil, fmt.Errorf("grid of %dx%d doesn't hold %d points", g.ni, g.nj, g.numPoints)
	}
	return g, nil
}

// productDefinition keeps the template body; templates 4.0, 4.1, 4.8 & 4.11
// share the layout up to the first fixed surface, which is all we read.
func productDefinition(sec []byte) ([]byte, error) {
	if len(sec) < 9 {
		return nil, fmt.Errorf("short product definition section")
	}
	switch tmpl := binary.BigEndian.Uint16(sec[7:9]); tmpl {
	case 0, 1, 8, 11:
	default:
		return nil, fmt.Errorf("unsupported product template 4.%d", tmpl)
	}
	if len(sec) < 34 {
		return nil, fmt.Errorf("short product definition template")
	}
	return sec, nil
}

func dataRepresentation(sec []byte) ([]byte, error) {
	if len(sec) < 11 {
		return nil, fmt.Errorf("short data representation section")
	}
	if tmpl := binary.BigEndian.Uint16(sec[9:11]); tmpl != 0 {
		return nil, fmt.Errorf("unsupported packing 5.%d, only simple packing is read", tmpl)
	}
	if len(sec) < 21 {
		return nil, fmt.Errorf("short simple packing template")
	}
	return sec, nil
}

func (st *gribState) bitmapSection(sec []byte) error {
	if len(sec) < 6 {
		return fmt.Errorf("short bitmap section")
	}
	switch sec[5] {
	case bitmapNone:
		st.bitmap = nil
	case bitmapReuse:
		if st.bitmap == nil {
			return fmt.Errorf("bitmap reused before one was given")
		}
	case bitmapHere:
		if st.grid == nil {
			return fmt.Errorf("bitmap before grid definition")
		}
		bits := sec[6:]
		if len(bits)*8 < st.grid.numPoints {
			return fmt.Errorf("bitmap holds %d bits for %d points", len(bits)*8, st.grid.numPoints)
		}
		st.bitmap = make([]bool, st.grid.numPoints)
		for i := range st.bitmap {
			st.bitmap[i] = bits[i/8]&(0x80>>uint(i%8)) != 0
		}
	default:
		return fmt.Errorf("unsupported predefined bitmap %d", sec[5])
	}
	return nil
}

// field unpacks section 7 with the state gathered so far.
func (st *gribState) field(sec []byte) (*gribField, error) {
	if st.grid == nil || st.product == nil || st.packing == nil {
		return nil, fmt.Errorf("data section before grid, product or packing")
	}
	pk := st.packing
	packed := int(binary.BigEndian.Uint32(pk[5:9]))
	ref := float64(math.Float32frombits(binary.BigEndian.Uint32(pk[11:15])))
	binScale := math.Pow(2, float64(signedInt16(pk[15:17])))
	decScale := math.Pow10(int(signedInt16(pk[17:19])))
	width := uint(pk[19])

	if width > 64 {
		return nil, fmt.Errorf("%d bits per value", width)
	}
	if st.bitmap != nil && len(st.bitmap) != st.grid.numPoints {
		return nil, fmt.Errorf("bitmap of %d points for a grid of %d", len(st.bitmap), st.grid.numPoints)
	}
	br := &bitReader{data: sec[5:]}
	values := make([]float64, st.grid.numPoints)
	used := 0
	for i := range values {
		if st.bitmap != nil && !st.bitmap[i] {
			values[i] = math.NaN()
			continue
		}
		if used >= packed {
			return nil, fmt.Errorf("more points than packed values (%d)", packed)
		}
		x, err := br.read(width)
		if err != nil {
			return nil, err
		}
		values[i] = (ref + float64(x)*binScale) / decScale
		used++
	}

	pd := st.product
	param := gribParam{st.discipline, pd[9], pd[10]}
	name, ok := gribParams[param]
	if !ok {
		name = gribName{
			short: fmt.Sprintf("param%d_%d_%d", param.discipline, param.category, param.number),
			long:  fmt.Sprintf("GRIB2 parameter %d.%d.%d", param.discipline, param.category, param.number),
			units: "unknown",
		}
	}

	step, err := forecastStep(pd[17], binary.BigEndian.Uint32(pd[18:22]))
	if err != nil {
		return nil, err
	}

	f := &gribField{name: name, grid: st.grid, valid: st.reference.Add(step), values: values}
	surface := pd[22]
	scale := int(pd[23] & 0x7f)
	if pd[23]&0x80 != 0 {
		scale = -scale
	}
	value := float64(binary.BigEndian.Uint32(pd[24:28])) / math.Pow10(scale)
	switch surface {
	case surfaceIsobaric:
		hpa := value / 100
		f.level = &hpa
	case surfaceHeight:
		// 2 m temperature is "t2m", 10 m wind "u10"
		if name.short == "t" || name.short == "d" {
			f.name.short = fmt.Sprintf("%s%gm", name.short, value)
		} else {
			f.name.short = fmt.Sprintf("%s%g", name.short, value)
		}
		f.name.long = fmt.Sprintf("%g metre %s", value, lowerFirst(name.long))
	}
	return f, nil
}

func forecastStep(unit uint8, n uint32) (time.Duration, error) {
	var d time.Duration
	switch unit {
	case 0:
		d = time.Minute
	case 1:
		d = time.Hour
	case 2:
		d = 24 * time.Hour
	case 10:
		d = 3 * time.Hour
	case 11:
		d = 6 * time.Hour
	case 12:
		d = 12 * time.Hour
	case 13:
		d = time.Second
	default:
		return 0, fmt.Errorf("unsupported forecast time unit %d", unit)
	}
	return time.Duration(n) * d, nil
}

// buildDataset lays fields out on shared time & level axes. Slots with no field
// are NaN.
func buildDataset(filename string, size int64, fields []*gribField) (*Dataset, error) {
	grid := fields[0].grid
	times := map[int64]bool{}
	levels := map[float64]bool{}
	order := []string{}
	byName := map[string][]*gribField{}
	for _, f := range fields {
		if !grid.equal(f.grid) {
			return nil, fmt.Errorf("%w: fields use different grids", errors.ErrParse)
		}
		times[f.valid.Unix()] = true
		if f.level != nil {
			levels[*f.level] = true
		}
		if _, ok := byName[f.name.short]; !ok {
			order = append(order, f.name.short)
		}
		byName[f.name.short] = append(byName[f.name.short], f)
	}

	timeAxis := sortedKeys(times)
	timeIndex := map[int64]int{}
	timeValues := make([]float64, len(timeAxis))
	for i, t := range timeAxis {
		timeIndex[t] = i
		timeValues[i] = float64(t)
	}

	levelAxis := make([]float64, 0, len(levels))
	for l := range levels {
		levelAxis = append(levelAxis, l)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(levelAxis)))
	levelIndex := map[float64]int{}
	for i, l := range levelAxis {
		levelIndex[l] = i
	}

	lats, lons := grid.latitudes(), grid.longitudes()
	ds := NewDataset(filename, size)
	ds.Add(&Variable{
		Name: "valid_time", Dims: []string{"valid_time"}, Shape: []int{len(timeValues)}, Values: timeValues,
		Attrs: map[string]interface{}{"units": gribTimeUnits, "long_name": "time"},
	})
	if len(levelAxis) > 0 {
		ds.Add(&Variable{
			Name: "isobaricInhPa", Dims: []string{"isobaricInhPa"}, Shape: []int{len(levelAxis)}, Values: levelAxis,
			Attrs: map[string]interface{}{"units": "hPa", "long_name": "pressure"},
		})
	}
	ds.Add(&Variable{
		Name: "latitude", Dims: []string{"latitude"}, Shape: []int{len(lats)}, Values: lats,
		Attrs: map[string]interface{}{"units": "degrees_north"},
	})
	ds.Add(&Variable{
		Name: "longitude", Dims: []string{"longitude"}, Shape: []int{len(lons)}, Values: lons,
		Attrs: map[string]interface{}{"units": "degrees_east"},
	})

	plane := grid.ni * grid.nj
	for _, name := range order {
		group := byName[name]
		leveled := group[0].level != nil
		dims := []string{"valid_time", "latitude", "longitude"}
		shape := []int{len(timeAxis), grid.nj, grid.ni}
		nlev := 1
		if leveled {
			nlev = len(levelAxis)
			dims = []string{"valid_time", "isobaricInhPa", "latitude", "longitude"}
			shape = []int{len(timeAxis), nlev, grid.nj, grid.ni}
		}

		values := make([]float64, len(timeAxis)*nlev*plane)
		for i := range values {
			values[i] = math.NaN()
		}
		for _, f := range group {
			if (f.level != nil) != leveled {
				return nil, fmt.Errorf("%w: %s mixes pressure levels & single levels", errors.ErrParse, name)
			}
			slot := timeIndex[f.valid.Unix()] * nlev
			if leveled {
				slot += levelIndex[*f.level]
			}
			copy(values[slot*plane:(slot+1)*plane], f.values)
		}

		ds.Add(&Variable{
			Name: name, Dims: dims, Shape: shape, Values: values,
			Attrs: map[string]interface{}{"long_name": group[0].name.long, "units": group[0].name.units},
		})
	}
	return ds, nil
}

func sortedKeys(m map[int64]bool) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// GRIB2 signed integers are sign & magnitude, not two's complement.
func signedInt32(b []byte) int32 {
	u := binary.BigEndian.Uint32(b)
	v := int32(u & 0x7fffffff)
	if u&0x80000000 != 0 {
		return -v
	}
	return v
}

func signedInt16(b []byte) int16 {
	u := binary.BigEndian.Uint16(b)
	v := int16(u & 0x7fff)
	if u&0x8000 != 0 {
		return -v
	}
	return v
}

// bitReader reads big endian values of arbitrary bit width.
type bitReader struct {
	data []byte
	bit  uint64
}

func (b *bitReader) read(width uint) (uint64, error) {
	if width == 0 {
		return 0, nil
	}
	if b.bit+uint64(width) > uint64(len(b.data))*8 {
		return 0, fmt.Errorf("packed data ends early")
	}
	var out uint64
	for i := uint(0); i < width; i++ {
		byteAt := b.bit / 8
		shift := 7 - b.bit%8
		out = out<<1 | uint64(b.data[byteAt]>>shift&1)
		b.bit++
	}
	return out, nil
}
