package queue

import (
	"crypto/tls"
	"time"
)

const (
	defWorkers     = 4
	defBuffer      = 1000
	defTaskTimeout = 24 * time.Hour
)

// Options are options for the queue.
type Options struct {
	// URL encodes how we'll connect to the queue. If blank an in process
	// worker pool is used.
	URL string

	// TLSConfig needed to connect to the queue (optional).
	TLSConfig *tls.Config

	// Workers is the number of jobs processed at once.
	Workers int

	// Buffer is how many jobs the in process pool holds before Enqueue fails.
	Buffer int

	// TaskTimeout bounds a single task for brokers that insist on one (asynq
	// defaults to 30 minutes, which is far too short for the archive).
	TaskTimeout time.Duration
}

func (o *Options) setDefaults() {
	if o.Workers <= 0 {
		o.Workers = defWorkers
	}
	if o.Buffer <= 0 {
		o.Buffer = defBuffer
	}
	if o.TaskTimeout <= 0 {
		o.TaskTimeout = defTaskTimeout
	}
}

// New returns an asynq queue if a URL is configured, otherwise an in process pool.
func New(opts *Options) (Queue, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.URL == "" {
		return NewPool(opts), nil
	}
	return NewAsynqQueue(opts)
}
