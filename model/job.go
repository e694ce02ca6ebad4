package model

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	sqerrors "github.com/chosen1st/sqoop/errors"
)

// PersistenceIDUnassigned marks a job the store has not saved yet
const PersistenceIDUnassigned int64 = -1

// Job is a named data transfer from one link to another
type Job struct {
	PersistenceID  int64
	Name           string
	Enabled        bool
	CreationDate   time.Time
	LastUpdateDate time.Time
	From           JobConfig
	To             JobConfig
}

// NewJob creates an unsaved, enabled job
func NewJob(name string, from, to JobConfig) Job {
	from.Direction = DirectionFrom
	to.Direction = DirectionTo
	return Job{
		PersistenceID: PersistenceIDUnassigned,
		Name:          name,
		Enabled:       true,
		From:          from.Clone(),
		To:            to.Clone(),
	}
}

// HasPersistenceID reports whether the store has assigned an id
func (j Job) HasPersistenceID() bool {
	return j.PersistenceID >= 0
}

// FromLinkName returns the name of the link data is read from
func (j Job) FromLinkName() string {
	return j.From.LinkName
}

// ToLinkName returns the name of the link data is written to
func (j Job) ToLinkName() string {
	return j.To.LinkName
}

// FromConnectorName returns the connector of the from link
func (j Job) FromConnectorName() string {
	return j.From.ConnectorName
}

// ToConnectorName returns the connector of the to link
func (j Job) ToConnectorName() string {
	return j.To.ConnectorName
}

// Clone returns a deep copy
func (j Job) Clone() Job {
	out := j
	out.From = j.From.Clone()
	out.To = j.To.Clone()
	return out
}

// Validate checks the job name and both directional configs
func (j Job) Validate() error {
	var result *multierror.Error
	if j.Name == "" {
		result = multierror.Append(result, fmt.Errorf("job: %w", sqerrors.ErrEmptyName))
	}
	if j.From.Direction != DirectionFrom {
		result = multierror.Append(result, fmt.Errorf("job %s: from config has direction %q", j.Name, j.From.Direction))
	}
	if j.To.Direction != DirectionTo {
		result = multierror.Append(result, fmt.Errorf("job %s: to config has direction %q", j.Name, j.To.Direction))
	}
	if err := j.From.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := j.To.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
