package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/voidshard/era5d/internal/utils"
	"github.com/voidshard/era5d/pkg/errors"
	"github.com/voidshard/era5d/pkg/structs"
)

var timeNow = func() time.Time { return time.Now().UTC() }

type entry struct {
	lock sync.Mutex
	job  *structs.Job
}

// Memory is a process local registry.
//
// The map lock is only held to find or insert an entry; each entry has its own
// lock for reads & writes of the job itself.
type Memory struct {
	lock sync.RWMutex
	jobs map[string]*entry
}

func NewMemory() *Memory {
	return &Memory{jobs: map[string]*entry{}}
}

func (m *Memory) Create(ctx context.Context, req *structs.RetrievalRequest) (*structs.Job, error) {
	j := &structs.Job{
		Status:    structs.QUEUED,
		Progress:  0,
		Request:   req.Copy(),
		CreatedAt: timeNow(),
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	for {
		j.ID = utils.NewID()
		if _, ok := m.jobs[j.ID]; !ok {
			break
		}
	}
	m.jobs[j.ID] = &entry{job: j}
	return j.Copy(), nil
}

func (m *Memory) entry(id string) (*entry, error) {
	m.lock.RLock()
	e, ok := m.jobs[id]
	m.lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: job %s", errors.ErrNotFound, id)
	}
	return e, nil
}

func (m *Memory) Get(ctx context.Context, id string) (*structs.Job, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.job.Copy(), nil
}

func (m *Memory) List(ctx context.Context, q *structs.Query) ([]*structs.Job, error) {
	if q == nil {
		q = &structs.Query{}
	}
	q.Sanitize()

	m.lock.RLock()
	entries := make([]*entry, 0, len(m.jobs))
	for _, e := range m.jobs {
		entries = append(entries, e)
	}
	m.lock.RUnlock()

	jobs := []*structs.Job{}
	for _, e := range entries {
		e.lock.Lock()
		if q.Matches(e.job) {
			jobs = append(jobs, e.job.Copy())
		}
		e.lock.Unlock()
	}

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	if q.Offset >= len(jobs) {
		return []*structs.Job{}, nil
	}
	jobs = jobs[q.Offset:]
	if q.Limit > 0 && len(jobs) > q.Limit {
		jobs = jobs[:q.Limit]
	}
	return jobs, nil
}

func (m *Memory) Update(ctx context.Context, id string, patch *structs.JobPatch) (*structs.Job, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	if err := patch.Apply(e.job); err != nil {
		return nil, err
	}
	return e.job.Copy(), nil
}

func (m *Memory) Close() error {
	return nil
}
