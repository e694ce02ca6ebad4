package memory

import (
	"time"

	"github.com/chosen1st/sqoop/store"
)

// Options for the in-memory store
type Options struct {
	// FirstID is the id given to the first saved job
	FirstID int64

	// Clock supplies the dates stamped on save
	Clock store.Clock
}

// DefaultOptions returns default memory store options
func DefaultOptions() Options {
	return Options{
		FirstID: 1,
		Clock:   time.Now,
	}
}
