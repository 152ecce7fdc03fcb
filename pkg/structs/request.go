package structs

const (
	FormatNetCDF = "netcdf"
	FormatGRIB   = "grib"

	// DefaultTime is used when a request gives no time range
	DefaultTime = "00:00"
)

// RetrievalRequest is what a user submits to have a dataset downloaded.
type RetrievalRequest struct {
	Dataset     string   `json:"dataset" validate:"cds_id"`
	Variables   []string `json:"variables" validate:"min=1,dive,cds_id"`
	DateStart   string   `json:"dateStart" validate:"datetime=2006-01-02"`
	DateEnd     string   `json:"dateEnd" validate:"datetime=2006-01-02"`
	Area        *Area    `json:"area"`
	Format      string   `json:"format" validate:"oneof=netcdf grib"`
	ProductType string   `json:"productType" validate:"cds_id"`

	// Optional, HH:MM
	TimeRange []string `json:"timeRange,omitempty" validate:"omitempty,dive,datetime=15:04"`
}

// Area is a bounding box in degrees.
type Area struct {
	North float64 `json:"north" validate:"gte=-90,lte=90,gtfield=South"`
	South float64 `json:"south" validate:"gte=-90,lte=90"`
	East  float64 `json:"east" validate:"gte=-180,lte=360"`
	West  float64 `json:"west" validate:"gte=-180,lte=360"`
}

// Times returns the requested times, or the default single time.
func (r *RetrievalRequest) Times() []string {
	if len(r.TimeRange) == 0 {
		return []string{DefaultTime}
	}
	return append([]string{}, r.TimeRange...)
}

func (r *RetrievalRequest) Copy() *RetrievalRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.Variables = append([]string(nil), r.Variables...)
	if r.TimeRange != nil {
		c.TimeRange = append([]string{}, r.TimeRange...)
	}
	if r.Area != nil {
		a := *r.Area
		c.Area = &a
	}
	return &c
}

// ArchiveRequest is the query sent to the archive for one retrieval.
type ArchiveRequest struct {
	ProductType    []string  `json:"product_type"`
	Variable       []string  `json:"variable"`
	Date           string    `json:"date"`
	Time           []string  `json:"time"`
	Area           []float64 `json:"area"` // north, west, south, east
	Format         string    `json:"format"`
	DownloadFormat string    `json:"download_format"`
}

// ExtractRequest asks for a 2D slice of a completed job's file.
type ExtractRequest struct {
	JobID    string   `json:"jobId"`
	Variable string   `json:"variable"`
	TimeStep int      `json:"timeStep"`
	Level    *float64 `json:"level,omitempty"`

	// Full returns the data even when it's over the inline limit
	Full bool `json:"full,omitempty"`
}

// CredentialStatus reports whether archive credentials are usable.
type CredentialStatus struct {
	Connected    bool   `json:"connected"`
	APIKeyStatus string `json:"api_key_status"`
	Message      string `json:"message"`
}
