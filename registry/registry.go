// Package registry keeps the connectors and links jobs refer to by name.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/chosen1st/sqoop/errors"
	"github.com/chosen1st/sqoop/model"
)

// Connector describes the config sections a connector defines for each side
// of a job
type Connector struct {
	Name string
	From []model.Config
	To   []model.Config
}

// Link is a configured endpoint based on a connector
type Link struct {
	ID            int64
	Name          string
	ConnectorName string
}

// Registry is a thread-safe connector and link registry
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
	links      map[int64]Link
}

// NewRegistry creates a new registry
func NewRegistry() *Registry {
	return &Registry{
		connectors: make(map[string]Connector),
		links:      make(map[int64]Link),
	}
}

// RegisterConnector adds or replaces a connector. Values present in its
// configs are dropped; only the structure is kept.
func (r *Registry) RegisterConnector(c Connector) error {
	if c.Name == "" {
		return errors.ErrEmptyName
	}

	from := clearedConfigs(c.From)
	to := clearedConfigs(c.To)
	for _, cfg := range append(append([]model.Config{}, from...), to...) {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("connector %s: %w", c.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.connectors[c.Name] = Connector{Name: c.Name, From: from, To: to}
	return nil
}

// Connector retrieves a connector by name
func (r *Registry) Connector(name string) (Connector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.connectors[name]
	if !ok {
		return Connector{}, false
	}
	return Connector{Name: c.Name, From: clearedConfigs(c.From), To: clearedConfigs(c.To)}, true
}

// Connectors returns all registered connector names in sorted order
func (r *Registry) Connectors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.connectors))
	for name := range r.connectors {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// RemoveConnector unregisters a connector. Links based on it must be removed
// first.
func (r *Registry) RemoveConnector(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.links {
		if l.ConnectorName == name {
			return fmt.Errorf("connector %s is used by link %s", name, l.Name)
		}
	}
	delete(r.connectors, name)
	return nil
}

// RegisterLink adds or replaces a link. Its connector must be registered.
func (r *Registry) RegisterLink(l Link) error {
	if l.Name == "" {
		return errors.ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connectors[l.ConnectorName]; !ok {
		return fmt.Errorf("link %s: %w %q", l.Name, errors.ErrUnknownConnector, l.ConnectorName)
	}
	for id, existing := range r.links {
		if existing.Name == l.Name && id != l.ID {
			return fmt.Errorf("link name %q already used by link %d", l.Name, id)
		}
	}

	r.links[l.ID] = l
	return nil
}

// ResolveLink returns the link with the given id
func (r *Registry) ResolveLink(id int64) (Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.links[id]
	if !ok {
		return Link{}, fmt.Errorf("%w: %d", errors.ErrUnknownLink, id)
	}
	return l, nil
}

// LinkID returns the id of the link with the given name
func (r *Registry) LinkID(name string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, l := range r.links {
		if l.Name == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", errors.ErrUnknownLink, name)
}

// Clear removes all connectors and links
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connectors = make(map[string]Connector)
	r.links = make(map[int64]Link)
}

// Skeleton returns empty copies of the config sections a connector defines
// for one direction
func (r *Registry) Skeleton(connectorName string, direction model.Direction) ([]model.Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.connectors[connectorName]
	if !ok {
		return nil, false
	}

	switch direction {
	case model.DirectionFrom:
		return clearedConfigs(c.From), true
	case model.DirectionTo:
		return clearedConfigs(c.To), true
	default:
		return nil, false
	}
}

// NewJob creates an unsaved job between two registered links, with the
// config skeletons of their connectors
func (r *Registry) NewJob(name string, fromLinkID, toLinkID int64) (model.Job, error) {
	from, err := r.ResolveLink(fromLinkID)
	if err != nil {
		return model.Job{}, err
	}
	to, err := r.ResolveLink(toLinkID)
	if err != nil {
		return model.Job{}, err
	}

	fromConfigs, ok := r.Skeleton(from.ConnectorName, model.DirectionFrom)
	if !ok {
		return model.Job{}, fmt.Errorf("%w %q", errors.ErrUnknownConnector, from.ConnectorName)
	}
	toConfigs, ok := r.Skeleton(to.ConnectorName, model.DirectionTo)
	if !ok {
		return model.Job{}, fmt.Errorf("%w %q", errors.ErrUnknownConnector, to.ConnectorName)
	}

	return model.NewJob(name,
		model.NewJobConfig(model.DirectionFrom, from.Name, from.ConnectorName, fromConfigs...),
		model.NewJobConfig(model.DirectionTo, to.Name, to.ConnectorName, toConfigs...),
	), nil
}

func clearedConfigs(configs []model.Config) []model.Config {
	out := make([]model.Config, len(configs))
	for i, c := range configs {
		out[i] = c.Cleared()
	}
	return out
}
