package grid

// accepted names for each axis, in order of preference
var (
	latitudeNames  = []string{"latitude", "lat"}
	longitudeNames = []string{"longitude", "lon"}
	timeNames      = []string{"time", "valid_time"}
	levelNames     = []string{"isobaricInhPa", "pressure_level", "level"}
)

// axes holds the coordinate variable picked for each axis (nil if absent).
type axes struct {
	lat, lon, time, level *Variable
}

func resolveAxes(ds *Dataset) *axes {
	return &axes{
		lat:   firstCoord(ds, latitudeNames),
		lon:   firstCoord(ds, longitudeNames),
		time:  firstCoord(ds, timeNames),
		level: firstCoord(ds, levelNames),
	}
}

func firstCoord(ds *Dataset, names []string) *Variable {
	for _, n := range names {
		if v, ok := ds.Var(n); ok && len(v.Shape) <= 1 {
			return v
		}
	}
	return nil
}

// isCoordinate reports whether name is any known axis name
func isCoordinate(name string) bool {
	for _, set := range [][]string{latitudeNames, longitudeNames, timeNames, levelNames} {
		if contains(set, name) {
			return true
		}
	}
	return false
}

func contains(set []string, s string) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}
