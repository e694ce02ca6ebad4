package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/chosen1st/sqoop/bean"
	"github.com/chosen1st/sqoop/errors"
	redisUtils "github.com/chosen1st/sqoop/internal/redis"
	"github.com/chosen1st/sqoop/model"
	"github.com/chosen1st/sqoop/store"
)

var _ store.JobStore = (*RedisStore)(nil)

// raiseNextID moves KEYS[1] up to ARGV[1], never down, so ids handed out by
// INCR stay clear of jobs saved under an explicit id.
var raiseNextID = redis.NewScript(1, `
local id = tonumber(ARGV[1])
if (tonumber(redis.call('GET', KEYS[1])) or 0) < id then
	redis.call('SET', KEYS[1], id)
end
return id
`)

// pool is the part of *redis.Pool the store uses
type pool interface {
	Get() redis.Conn
	Close() error
}

// RedisStore implements the JobStore interface for Redis. Each job is kept
// as a single-job envelope under <namespace>job:<id>, sensitive values
// included.
type RedisStore struct {
	pool       pool
	namespace  string
	options    Options
	serializer *bean.Serializer
	logger     *slog.Logger
}

// NewStore creates a new Redis store. Restored jobs are bound to the
// skeletons of schemas when it is non-nil.
func NewStore(options Options, schemas bean.SchemaSource) *RedisStore {
	if options.Clock == nil {
		options.Clock = time.Now
	}

	serializer := bean.NewSerializer()
	serializer.SetIncludeSensitive(true)
	if schemas != nil {
		serializer.SetSchemaSource(schemas)
	}

	return &RedisStore{
		namespace:  options.Namespace,
		options:    options,
		serializer: serializer,
		logger:     slog.Default(),
	}
}

// Connect establishes connection to Redis
func (r *RedisStore) Connect(ctx context.Context) error {
	p, err := redisUtils.CreatePool(r.options.PoolOptions)
	if err != nil {
		return err
	}

	conn, err := p.GetContext(ctx)
	if err != nil {
		p.Close()
		return errors.NewConnectionError(redisUtils.Redact(r.options.URI),
			fmt.Errorf("failed to get connection: %w", err))
	}
	defer conn.Close()

	if _, err := conn.Do("PING"); err != nil {
		p.Close()
		return errors.NewConnectionError(redisUtils.Redact(r.options.URI),
			fmt.Errorf("ping failed: %w", err))
	}

	r.pool = p
	return nil
}

// Close closes the Redis connection pool
func (r *RedisStore) Close() error {
	if r.pool != nil {
		return r.pool.Close()
	}
	return nil
}

// Health checks the Redis connection health
func (r *RedisStore) Health() error {
	if r.pool == nil {
		return errors.ErrNotConnected
	}

	conn := r.pool.Get()
	defer conn.Close()

	if _, err := conn.Do("PING"); err != nil {
		return errors.NewConnectionError(redisUtils.Redact(r.options.URI),
			fmt.Errorf("health check failed: %w", err))
	}

	return nil
}

// Type returns the store type
func (r *RedisStore) Type() string {
	return "redis"
}

// SetLogger sets the logger for the store
func (r *RedisStore) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// Save stores a job, taking a new id from <namespace>job:next-id when the
// job has none. An explicit id raises next-id so later saves cannot reuse it.
func (r *RedisStore) Save(ctx context.Context, job model.Job) (model.Job, error) {
	if r.pool == nil {
		return model.Job{}, errors.ErrNotConnected
	}
	if err := job.Validate(); err != nil {
		return model.Job{}, err
	}

	conn := r.pool.Get()
	defer conn.Close()

	if !job.HasPersistenceID() {
		id, err := redis.Int64(conn.Do("INCR", r.nextIDKey()))
		if err != nil {
			return model.Job{}, errors.NewStoreError("save", r.nextIDKey(), err)
		}
		job.PersistenceID = id
	} else {
		if _, err := raiseNextID.Do(conn, r.nextIDKey(), job.PersistenceID); err != nil {
			return model.Job{}, errors.NewStoreError("save", r.nextIDKey(), err)
		}
		if existing, err := r.load(conn, job.PersistenceID); err == nil {
			job.CreationDate = existing.CreationDate
		}
	}

	job = store.Stamp(job, r.options.Clock())

	data, err := r.serializer.Serialize(job)
	if err != nil {
		return model.Job{}, err
	}

	key := r.jobKey(job.PersistenceID)
	if _, err := conn.Do("SET", key, data); err != nil {
		return model.Job{}, errors.NewStoreError("save", key, err)
	}

	// Track the id (best effort)
	if _, err := conn.Do("SADD", r.jobsKey(), job.PersistenceID); err != nil {
		r.logger.Error("Failed to track job", "id", job.PersistenceID, "error", err)
	}

	r.logger.Debug("Saved job", "id", job.PersistenceID, "name", job.Name)
	return job, nil
}

// Get retrieves a stored job
func (r *RedisStore) Get(ctx context.Context, id int64) (model.Job, error) {
	if r.pool == nil {
		return model.Job{}, errors.ErrNotConnected
	}

	conn := r.pool.Get()
	defer conn.Close()

	return r.load(conn, id)
}

// List returns every tracked job ordered by id. Ids whose key has vanished
// are skipped.
func (r *RedisStore) List(ctx context.Context) ([]model.Job, error) {
	if r.pool == nil {
		return nil, errors.ErrNotConnected
	}

	conn := r.pool.Get()
	defer conn.Close()

	ids, err := redis.Int64s(conn.Do("SMEMBERS", r.jobsKey()))
	if err != nil {
		return nil, errors.NewStoreError("list", r.jobsKey(), err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	jobs := make([]model.Job, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		job, err := r.load(conn, id)
		if errors.IsNotFound(err) {
			r.logger.Warn("Tracked job has no data", "id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Delete removes a stored job
func (r *RedisStore) Delete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return errors.ErrNotConnected
	}

	conn := r.pool.Get()
	defer conn.Close()

	key := r.jobKey(id)
	removed, err := redis.Int(conn.Do("DEL", key))
	if err != nil {
		return errors.NewStoreError("delete", key, err)
	}

	// Remove from set of jobs (best effort)
	if _, err := conn.Do("SREM", r.jobsKey(), id); err != nil {
		r.logger.Error("Failed to untrack job", "id", id, "error", err)
	}

	if removed == 0 {
		return errors.NewStoreError("delete", key, errors.ErrJobNotFound)
	}
	return nil
}

// Helper methods

func (r *RedisStore) load(conn redis.Conn, id int64) (model.Job, error) {
	key := r.jobKey(id)

	data, err := redis.Bytes(conn.Do("GET", key))
	if err == redis.ErrNil {
		return model.Job{}, errors.NewStoreError("get", key, errors.ErrJobNotFound)
	}
	if err != nil {
		return model.Job{}, errors.NewStoreError("get", key, err)
	}

	jobs, err := r.serializer.Deserialize(data)
	if err != nil {
		return model.Job{}, errors.NewStoreError("get", key, err)
	}
	if len(jobs) != 1 {
		return model.Job{}, errors.NewStoreError("get", key,
			fmt.Errorf("expected 1 job, found %d", len(jobs)))
	}
	return jobs[0], nil
}

func (r *RedisStore) jobKey(id int64) string {
	return fmt.Sprintf("%sjob:%d", r.namespace, id)
}

func (r *RedisStore) jobsKey() string {
	return fmt.Sprintf("%sjobs", r.namespace)
}

func (r *RedisStore) nextIDKey() string {
	return fmt.Sprintf("%sjob:next-id", r.namespace)
}
