package queue

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	asynqWorkQueue = "era5:work"
	asynqRetention = 24 * time.Hour

	// TaskRetrieve is the asynq task type for one retrieval job
	TaskRetrieve = "era5:retrieve"
)

// Asynq is a queue backed by redis, so API servers and workers can run as
// separate processes (they then need a shared registry).
type Asynq struct {
	opts *Options
	conn asynq.RedisConnOpt

	cli *asynq.Client

	// if register is called we're intended to start a server
	lock sync.Mutex
	mux  *asynq.ServeMux
	srv  *asynq.Server
	done chan struct{}
}

func NewAsynqQueue(opts *Options) (*Asynq, error) {
	opts.setDefaults()
	conn, err := redisConnOpt(opts)
	if err != nil {
		return nil, err
	}
	return &Asynq{
		opts: opts,
		conn: conn,
		cli:  asynq.NewClient(conn),
		done: make(chan struct{}),
	}, nil
}

// redisConnOpt accepts either a redis:// URI or a bare host:port
func redisConnOpt(opts *Options) (asynq.RedisConnOpt, error) {
	if !strings.Contains(opts.URL, "://") {
		return asynq.RedisClientOpt{Addr: opts.URL, TLSConfig: opts.TLSConfig}, nil
	}
	conn, err := asynq.ParseRedisURI(opts.URL)
	if err != nil {
		return nil, err
	}
	if c, ok := conn.(asynq.RedisClientOpt); ok && opts.TLSConfig != nil {
		c.TLSConfig = opts.TLSConfig
		return c, nil
	}
	return conn, nil
}

func (a *Asynq) Close() error {
	a.lock.Lock()
	defer a.lock.Unlock()
	select {
	case <-a.done:
		return nil
	default:
		close(a.done)
	}
	if a.srv != nil {
		a.srv.Stop()
		a.srv.Shutdown()
	}
	return a.cli.Close()
}

func (a *Asynq) Register(handler Handler) error {
	a.buildServer()
	a.mux.HandleFunc(TaskRetrieve, func(ctx context.Context, t *asynq.Task) error {
		return handler(ctx, string(t.Payload()))
	})
	return nil
}

// Run starts processing (if Register was called) & blocks until Close.
func (a *Asynq) Run() error {
	a.lock.Lock()
	srv, mux := a.srv, a.mux
	a.lock.Unlock()
	if srv != nil {
		if err := srv.Start(mux); err != nil {
			return err
		}
	}
	<-a.done
	return nil
}

// Enqueue adds a task for the job. The job id doubles as the task id, so a job
// can't be queued twice. Retries are disabled; a failed retrieval stays failed.
func (a *Asynq) Enqueue(ctx context.Context, jobID string) (string, error) {
	qtask := asynq.NewTask(TaskRetrieve, []byte(jobID))
	info, err := a.cli.EnqueueContext(
		ctx,
		qtask,
		asynq.Queue(asynqWorkQueue),
		asynq.TaskID(jobID),
		asynq.MaxRetry(0),
		asynq.Timeout(a.opts.TaskTimeout),
		asynq.Retention(asynqRetention),
	)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func (a *Asynq) buildServer() {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.mux != nil {
		// someone locked and set this first
		return
	}
	log := zap.S().Named("asynq")
	srv := asynq.NewServer(
		a.conn,
		asynq.Config{
			Concurrency: a.opts.Workers,
			Queues:      map[string]int{asynqWorkQueue: 1},
			Logger:      log,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
				log.Errorw("task failed", "type", t.Type(), "job", string(t.Payload()), "error", err)
			}),
		},
	)
	a.mux = asynq.NewServeMux()
	a.srv = srv
}

