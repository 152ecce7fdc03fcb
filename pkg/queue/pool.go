package queue

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var ErrQueueFull = fmt.Errorf("work queue is full")

// Pool is an in process queue: a buffered channel feeding a fixed number of
// worker routines.
type Pool struct {
	opts *Options

	work chan string
	errs chan error

	lock    sync.Mutex
	handler Handler
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewPool(opts *Options) *Pool {
	opts.setDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		opts:   opts,
		work:   make(chan string, opts.Buffer),
		errs:   make(chan error),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// handler errors are re-signalled here so they aren't lost
	go func() {
		for err := range p.errs {
			zap.S().Named("queue").Errorw("task failed", "error", err)
		}
	}()

	return p
}

func (p *Pool) Register(handler Handler) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.handler = handler
	return nil
}

// Enqueue never blocks; if the buffer is full it fails with ErrQueueFull.
func (p *Pool) Enqueue(ctx context.Context, jobID string) (string, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed {
		return "", fmt.Errorf("queue is closed")
	}
	select {
	case p.work <- jobID:
		return jobID, nil
	default:
		return "", ErrQueueFull
	}
}

func (p *Pool) Run() error {
	p.lock.Lock()
	handler := p.handler
	closed := p.closed
	if !closed {
		p.wg.Add(p.opts.Workers)
	}
	p.lock.Unlock()
	if closed {
		return nil
	}
	if handler == nil {
		p.wg.Add(-p.opts.Workers)
		return fmt.Errorf("no handler registered")
	}

	for i := 0; i < p.opts.Workers; i++ {
		go p.worker(handler)
	}
	<-p.done
	return nil
}

func (p *Pool) worker(handler Handler) {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case id := <-p.work:
			if err := handler(p.ctx, id); err != nil {
				p.errs <- fmt.Errorf("job %s: %w", id, err)
			}
		}
	}
}

// Close stops the workers, cancelling any in flight handlers. Jobs still
// buffered are not processed.
func (p *Pool) Close() error {
	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		return nil
	}
	p.closed = true
	p.lock.Unlock()

	p.cancel()
	close(p.done)
	p.wg.Wait()
	close(p.errs)
	return nil
}
