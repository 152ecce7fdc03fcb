package api

import (
	"github.com/voidshard/era5d/internal/core"
	"github.com/voidshard/era5d/pkg/archive"
	"github.com/voidshard/era5d/pkg/grid"
	"github.com/voidshard/era5d/pkg/queue"
	"github.com/voidshard/era5d/pkg/registry"
)

// New builds the registry & queue from their options & returns a Service using them.
func New(regOpts *registry.Options, qOpts *queue.Options, opts *Options) (Service, error) {
	reg, err := registry.New(regOpts)
	if err != nil {
		return nil, err
	}
	qu, err := queue.New(qOpts)
	if err != nil {
		reg.Close()
		return nil, err
	}
	return NewAPI(reg, qu, opts), nil
}

// NewAPI returns a Service over an existing registry & queue.
func NewAPI(reg registry.Registry, qu queue.Queue, opts *Options) Service {
	if opts == nil {
		opts = OptionsDefault()
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = OptionsDefault().DownloadDir
	}
	return core.NewService(reg, qu, archive.NewCDS(opts.Archive), grid.NewInspector(), opts.DownloadDir)
}
