package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/chosen1st/sqoop/errors"
	"github.com/chosen1st/sqoop/model"
	"github.com/chosen1st/sqoop/store"
)

var _ store.JobStore = (*MemoryStore)(nil)

// MemoryStore implements the JobStore interface using in-memory storage
type MemoryStore struct {
	mu        sync.RWMutex
	jobs      map[int64]model.Job
	nextID    int64
	connected bool
	options   Options
}

// NewStore creates a new in-memory store
func NewStore(options Options) *MemoryStore {
	if options.Clock == nil {
		options.Clock = time.Now
	}
	return &MemoryStore{
		jobs:    make(map[int64]model.Job),
		nextID:  options.FirstID,
		options: options,
	}
}

// Connect establishes connection (no-op for memory store)
func (m *MemoryStore) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = true
	return nil
}

// Close closes the store. Stored jobs are kept for a later Connect.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = false
	return nil
}

// Health checks the store health
func (m *MemoryStore) Health() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return errors.ErrNotConnected
	}
	return nil
}

// Type returns the store type
func (m *MemoryStore) Type() string {
	return "memory"
}

// Save stores a copy of the job
func (m *MemoryStore) Save(ctx context.Context, job model.Job) (model.Job, error) {
	if err := job.Validate(); err != nil {
		return model.Job{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return model.Job{}, errors.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return model.Job{}, err
	}

	if !job.HasPersistenceID() {
		job.PersistenceID = m.nextID
		m.nextID++
	} else if job.PersistenceID >= m.nextID {
		m.nextID = job.PersistenceID + 1
	}
	if existing, ok := m.jobs[job.PersistenceID]; ok {
		job.CreationDate = existing.CreationDate
	}

	job = store.Stamp(job, m.options.Clock())
	m.jobs[job.PersistenceID] = job.Clone()
	return job, nil
}

// Get retrieves a copy of a stored job
func (m *MemoryStore) Get(ctx context.Context, id int64) (model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return model.Job{}, errors.ErrNotConnected
	}

	job, ok := m.jobs[id]
	if !ok {
		return model.Job{}, errors.NewStoreError("get", m.key(id), errors.ErrJobNotFound)
	}
	return job.Clone(), nil
}

// List returns copies of every stored job ordered by id
func (m *MemoryStore) List(ctx context.Context) ([]model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return nil, errors.ErrNotConnected
	}

	jobs := make([]model.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job.Clone())
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].PersistenceID < jobs[j].PersistenceID
	})
	return jobs, nil
}

// Delete removes a stored job
func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return errors.ErrNotConnected
	}
	if _, ok := m.jobs[id]; !ok {
		return errors.NewStoreError("delete", m.key(id), errors.ErrJobNotFound)
	}

	delete(m.jobs, id)
	return nil
}

func (m *MemoryStore) key(id int64) string {
	return "job:" + strconv.FormatInt(id, 10)
}
