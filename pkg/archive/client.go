package archive

import (
	"context"

	"github.com/voidshard/era5d/pkg/structs"
)

//go:generate mockgen -source=client.go -destination=../../internal/mocks/pkg/archive_mock/archive_mock.go -package=archive_mock

// Client talks to the climate data archive.
type Client interface {
	// Retrieve submits the request, waits for the archive to produce the file &
	// downloads it to target. There is no internal timeout; cancel ctx to give up.
	Retrieve(ctx context.Context, dataset string, req *structs.ArchiveRequest, target string) error

	// Check verifies the configured credentials with the archive.
	Check(ctx context.Context) error
}
