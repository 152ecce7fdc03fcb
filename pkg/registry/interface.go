package registry

import (
	"context"

	"github.com/voidshard/era5d/pkg/structs"
)

//go:generate mockgen -source=interface.go -destination=../../internal/mocks/pkg/registry_mock/registry_mock.go -package=registry_mock

// Registry owns job records. Callers only ever see copies.
type Registry interface {
	// Create a new queued job for the request, with a fresh id.
	Create(ctx context.Context, req *structs.RetrievalRequest) (*structs.Job, error)

	// Get a job by id, or errors.ErrNotFound.
	Get(ctx context.Context, id string) (*structs.Job, error)

	// List jobs matching the query, newest first.
	List(ctx context.Context, q *structs.Query) ([]*structs.Job, error)

	// Update applies a patch to a job & returns the result. Concurrent updates to one
	// job are serialized, updates to different jobs don't wait on each other.
	Update(ctx context.Context, id string, patch *structs.JobPatch) (*structs.Job, error)

	Close() error
}

// New returns a Postgres registry if a URL is configured, otherwise an in memory one.
func New(opts *Options) (Registry, error) {
	if opts == nil || opts.URL == "" {
		return NewMemory(), nil
	}
	return NewPostgres(opts)
}
