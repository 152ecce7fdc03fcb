package common

const (
	// API_HEALTH is a liveness check
	API_HEALTH = "/api/health"

	// API_CDS_STATUS checks archive credentials
	API_CDS_STATUS = "/api/cds/status"

	// API_VARIABLES lists supported variables by category
	API_VARIABLES = "/api/era5/variables"

	// API_REQUEST submits a retrieval request
	API_REQUEST = "/api/era5/request"

	// API_GENERATE_CODE renders example client code for a request
	API_GENERATE_CODE = "/api/era5/generate-code"

	// API_JOBS lists jobs
	API_JOBS = "/api/jobs"

	// API_JOB gets one job, API_JOBS + "/{id}"
	API_JOB = "/api/jobs/{id}"

	// API_DOWNLOAD streams the file of a completed job, API_DOWNLOAD + "/{id}"
	API_DOWNLOAD = "/api/download"

	// API_GRID_PARSE reads metadata from an uploaded grid file
	API_GRID_PARSE = "/api/grib/parse"

	// API_GRID_EXTRACT reads a slice from an uploaded grid file or a job's file
	API_GRID_EXTRACT = "/api/grib/extract"

	// API_METRICS serves prometheus metrics
	API_METRICS = "/metrics"

	// FormFile is the multipart field holding uploaded grid files
	FormFile = "file"
)
