package structs

// Catalog maps a category name to the archive variable identifiers in it.
type Catalog map[string][]string

var era5Variables = Catalog{
	"temperature": {
		"2m_temperature",
		"skin_temperature",
		"soil_temperature_level_1",
	},
	"precipitation": {
		"total_precipitation",
		"convective_precipitation",
		"precipitation_type",
	},
	"wind": {
		"10m_u_component_of_wind",
		"10m_v_component_of_wind",
		"100m_u_component_of_wind",
		"100m_v_component_of_wind",
	},
	"pressure": {
		"surface_pressure",
		"mean_sea_level_pressure",
	},
	"humidity": {
		"2m_dewpoint_temperature",
		"relative_humidity",
	},
	"radiation": {
		"surface_solar_radiation_downwards",
		"surface_thermal_radiation_downwards",
	},
}

// Variables returns a copy of the supported ERA5 variable catalog.
func Variables() Catalog {
	out := Catalog{}
	for k, v := range era5Variables {
		out[k] = append([]string{}, v...)
	}
	return out
}
