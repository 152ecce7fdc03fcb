package common

import (
	"github.com/voidshard/era5d/pkg/structs"
)

// ErrorResponse is written for any failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type CodeResponse struct {
	Code string `json:"code"`
}

type ParseResponse struct {
	Success  bool                  `json:"success"`
	Metadata *structs.GridMetadata `json:"metadata"`
}

type ExtractResponse struct {
	Success bool `json:"success"`
	*structs.SliceResult
}
