// Package store defines the persistence collaborator that assigns job ids.
package store

import (
	"context"
	"time"

	"github.com/chosen1st/sqoop/model"
)

// JobStore persists jobs and hands out their persistence ids
type JobStore interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Health() error

	// Save stores a job. A job without a persistence id gets a new one; the
	// returned copy carries the id and the stamped dates.
	Save(ctx context.Context, job model.Job) (model.Job, error)
	Get(ctx context.Context, id int64) (model.Job, error)
	// List returns every stored job ordered by id
	List(ctx context.Context) ([]model.Job, error)
	Delete(ctx context.Context, id int64) error

	// Type returns the store type
	Type() string
}

// Clock returns the current time
type Clock func() time.Time

// Stamp sets the dates of a job being saved at now. A job that has never
// been stored gets its creation date set as well. Dates are truncated to
// milliseconds, the precision the transfer envelope keeps.
func Stamp(job model.Job, now time.Time) model.Job {
	now = time.UnixMilli(now.UnixMilli())
	if job.CreationDate.IsZero() || job.CreationDate.UnixMilli() == 0 {
		job.CreationDate = now
	}
	job.LastUpdateDate = now
	return job
}
