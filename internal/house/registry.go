package house

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// maxNameLength bounds house identifiers.
const maxNameLength = 64

// Registry holds one Store per house, created on first reference.
//
// Houses are independent: the registry lock only guards the map, never
// a cycle. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	stores   map[string]*Store
	settings map[string]Settings
	opts     options
}

// NewRegistry creates an empty registry. Options apply to every Store
// the registry creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		stores:   make(map[string]*Store),
		settings: make(map[string]Settings),
		opts:     buildOptions(opts),
	}
}

// ValidateName checks that name is a usable house identifier:
// 1-64 characters of letters, digits, '-' or '_'.
func ValidateName(name string) error {
	if name == "" || len(name) > maxNameLength {
		return fmt.Errorf("%w: length must be 1-%d", ErrInvalidName, maxNameLength)
	}
	for _, r := range name {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return nil
}

// Configure records settings for a house. The settings are used when
// the house is first opened; an already open house is not changed.
func (r *Registry) Configure(name string, s Settings) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[name] = s
	return nil
}

// Configured reports whether settings were recorded for name.
func (r *Registry) Configured(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.settings[name]
	return ok
}

// Open returns the store for name, creating it on first reference with
// its configured settings, or DefaultSettings when none were recorded.
func (r *Registry) Open(name string) (*Store, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	r.mu.RLock()
	st, ok := r.stores[name]
	r.mu.RUnlock()
	if ok {
		return st, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.stores[name]; ok {
		return st, nil
	}

	settings, ok := r.settings[name]
	if !ok {
		settings = DefaultSettings()
	}
	st = NewStore(name, settings,
		WithClock(r.opts.clock),
		WithLogger(r.opts.logger),
	)
	st.observers = append(st.observers, r.opts.observers...)
	r.stores[name] = st

	r.opts.logger.Info("house opened", "house", name, "configured", ok)
	return st, nil
}

// Get returns the store for name if it has been opened.
func (r *Registry) Get(name string) (*Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.stores[name]
	return st, ok
}

// Names returns the identifiers of all opened houses, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddObserver registers obs with every open store and every store
// opened later.
func (r *Registry) AddObserver(obs Observer) {
	r.mu.Lock()
	r.opts.observers = append(r.opts.observers, obs)
	stores := make([]*Store, 0, len(r.stores))
	for _, st := range r.stores {
		stores = append(stores, st)
	}
	r.mu.Unlock()

	for _, st := range stores {
		st.AddObserver(obs)
	}
}

// TickAll runs an empty cycle on every open house. Houses are ticked
// independently; all errors are returned joined.
func (r *Registry) TickAll() error {
	var errs []error
	for _, name := range r.Names() {
		st, ok := r.Get(name)
		if !ok {
			continue
		}
		if _, err := st.Tick(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
