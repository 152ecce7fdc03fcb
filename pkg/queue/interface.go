package queue

import (
	"context"
)

// Handler processes one queued retrieval job. A returned error is treated as
// a failed task (and logged / recorded by the queue) but never retried.
type Handler func(ctx context.Context, jobID string) error

//go:generate mockgen -source=interface.go -destination=../../internal/mocks/pkg/queue_mock/queue_mock.go -package=queue_mock

type Queue interface {
	// Register the task handler. This is the function that will be called for every
	// job id that is enqueued.
	Register(handler Handler) error

	// Run the queue & process tasks (via the Register func). This should block until Close() is called.
	Run() error

	// Enqueue a job id for processing. This must not wait for the job to be processed.
	//
	// If it supports it, the Queue will return a unique id for the queued task.
	Enqueue(ctx context.Context, jobID string) (string, error)

	// Close & shutdown the queue. In flight handlers have their context cancelled.
	Close() error
}
