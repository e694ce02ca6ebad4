package bean

import (
	"fmt"
	"log/slog"

	"github.com/chosen1st/sqoop/document"
	sqerrors "github.com/chosen1st/sqoop/errors"
	"github.com/chosen1st/sqoop/model"
)

// SchemaSource supplies the config skeletons a connector defines for one side
// of a job. The registry package provides an implementation.
type SchemaSource interface {
	Skeleton(connectorName string, direction model.Direction) ([]model.Config, bool)
}

// Option configures a JobBean
type Option func(*JobBean)

// WithJobs seeds the bean with jobs to extract
func WithJobs(jobs ...model.Job) Option {
	return func(b *JobBean) {
		for _, j := range jobs {
			b.jobs = append(b.jobs, j.Clone())
		}
	}
}

// WithSchemaSource makes Restore bind configs to connector skeletons
func WithSchemaSource(src SchemaSource) Option {
	return func(b *JobBean) {
		b.schemas = src
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(logger *slog.Logger) Option {
	return func(b *JobBean) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// JobBean transcodes a list of jobs to and from the transfer envelope. A bean
// is not safe for concurrent use.
type JobBean struct {
	jobs    []model.Job
	schemas SchemaSource
	logger  *slog.Logger
}

// New creates a bean configured by opts
func New(opts ...Option) *JobBean {
	b := &JobBean{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewJobBean creates a bean wrapping the given jobs
func NewJobBean(jobs ...model.Job) *JobBean {
	return New(WithJobs(jobs...))
}

// Add appends a job after the ones already held
func (b *JobBean) Add(job model.Job) {
	b.jobs = append(b.jobs, job.Clone())
}

// Jobs returns copies of the held jobs in order
func (b *JobBean) Jobs() []model.Job {
	out := make([]model.Job, len(b.jobs))
	for i, j := range b.jobs {
		out[i] = j.Clone()
	}
	return out
}

// Len returns the number of held jobs
func (b *JobBean) Len() int {
	return len(b.jobs)
}

// Extract builds the transfer envelope for the held jobs. includeSensitive
// applies to every input of every job.
func (b *JobBean) Extract(includeSensitive bool) (document.Document, error) {
	jobs := make([]interface{}, 0, len(b.jobs))
	for _, j := range b.jobs {
		obj, err := ExtractJob(j, includeSensitive)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, obj)
	}

	b.logger.Debug("Extracted jobs", "count", len(jobs), "sensitive", includeSensitive)

	return document.Document{
		KeyVersion: CurrentVersion,
		KeyJobs:    jobs,
	}, nil
}

// Restore replaces the held jobs with the ones decoded from doc. If any job
// fails to decode the held jobs are left unchanged.
func (b *JobBean) Restore(doc document.Document) error {
	if doc == nil {
		return sqerrors.NewMissingFieldError("envelope", KeyJobs)
	}

	if raw, ok := doc[KeyVersion]; ok && raw != nil {
		version, ok := document.Int64(raw)
		if !ok || version < 1 || version > CurrentVersion {
			return sqerrors.NewFormatError(KeyVersion, fmt.Sprintf("version between 1 and %d", CurrentVersion), raw)
		}
	}

	raw, ok := doc[KeyJobs]
	if !ok || raw == nil {
		return sqerrors.NewMissingFieldError("envelope", KeyJobs)
	}
	items, ok := document.Array(raw)
	if !ok {
		return sqerrors.NewFormatError(KeyJobs, "array", raw)
	}

	jobs := make([]model.Job, 0, len(items))
	for i, item := range items {
		obj, ok := document.Object(item)
		if !ok {
			return sqerrors.NewFormatError(fmt.Sprintf("%s[%d]", KeyJobs, i), "object", item)
		}
		j, err := RestoreJob(obj, b.schemas)
		if err != nil {
			return err
		}
		jobs = append(jobs, j)
	}

	b.jobs = jobs
	b.logger.Debug("Restored jobs", "count", len(jobs))
	return nil
}
