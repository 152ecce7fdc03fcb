package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolProcessesJobs(t *testing.T) {
	p := NewPool(&Options{Workers: 3})

	var lock sync.Mutex
	seen := map[string]bool{}
	var wg sync.WaitGroup
	wg.Add(10)
	p.Register(func(ctx context.Context, id string) error {
		defer wg.Done()
		lock.Lock()
		seen[id] = true
		lock.Unlock()
		if id == "job-3" {
			return fmt.Errorf("boom")
		}
		return nil
	})
	go p.Run()
	defer p.Close()

	for i := 0; i < 10; i++ {
		qid, err := p.Enqueue(context.Background(), fmt.Sprintf("job-%d", i))
		require.Nil(t, err)
		assert.Equal(t, fmt.Sprintf("job-%d", i), qid)
	}
	wg.Wait()

	assert.Equal(t, 10, len(seen))
}

func TestPoolEnqueueDoesNotWait(t *testing.T) {
	p := NewPool(&Options{Workers: 1, Buffer: 2})
	block := make(chan struct{})
	p.Register(func(ctx context.Context, id string) error {
		<-block
		return nil
	})
	// not running, so nothing drains the buffer

	_, err1 := p.Enqueue(context.Background(), "a")
	_, err2 := p.Enqueue(context.Background(), "b")
	_, err3 := p.Enqueue(context.Background(), "c")

	assert.Nil(t, err1)
	assert.Nil(t, err2)
	assert.True(t, errors.Is(err3, ErrQueueFull))
	close(block)
	p.Close()
}

func TestPoolCloseCancelsHandlers(t *testing.T) {
	p := NewPool(&Options{Workers: 1})
	started := make(chan struct{})
	cancelled := make(chan error, 1)
	p.Register(func(ctx context.Context, id string) error {
		close(started)
		<-ctx.Done()
		cancelled <- ctx.Err()
		return ctx.Err()
	})
	go p.Run()

	_, err := p.Enqueue(context.Background(), "a")
	require.Nil(t, err)
	<-started
	p.Close()

	select {
	case err := <-cancelled:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not cancelled")
	}

	_, err = p.Enqueue(context.Background(), "b")
	assert.NotNil(t, err)
}

func TestPoolRunWithoutHandler(t *testing.T) {
	p := NewPool(&Options{})
	defer p.Close()

	assert.NotNil(t, p.Run())
}
