package api

import (
	"context"
	"os"

	"github.com/voidshard/era5d/pkg/structs"
)

//go:generate mockgen -source=interface.go -destination=../../internal/mocks/pkg/api_mock/api_mock.go -package=api_mock API

// API represents the functions era5d servers should expose.
type API interface {
	// Implemented in era5d/internal/core.Service

	SubmitRequest(ctx context.Context, req *structs.RetrievalRequest) (*structs.Job, error)
	Job(ctx context.Context, id string) (*structs.Job, error)
	Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error)
	Download(ctx context.Context, id string) (*os.File, error)

	Variables() structs.Catalog
	CredentialStatus(ctx context.Context) *structs.CredentialStatus
	GenerateCode(req *structs.RetrievalRequest) (string, error)

	ParseGrid(path string) (*structs.GridMetadata, error)
	ExtractSlice(ctx context.Context, req *structs.ExtractRequest) (*structs.SliceResult, error)
	ExtractFile(path string, req *structs.ExtractRequest) (*structs.SliceResult, error)
}

// Service is an API that can also process queued jobs.
type Service interface {
	API

	// Register this process as a worker for queued jobs.
	Register() error

	// Run blocks processing jobs until Close is called.
	Run() error

	Close() error
}

type Server interface {
	ServeForever(api API) error
	Close() error
}
