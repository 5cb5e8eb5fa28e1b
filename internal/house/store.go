package house

import (
	"fmt"
	"sync"
	"time"
)

// Logger defines the logging interface used by Store and Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

// Commit describes one committed cycle.
type Commit struct {
	House string
	Prev  State
	Next  State

	// Lines are the event log lines appended by this cycle.
	Lines []string

	// Notes are the unstamped rejection notes among Lines.
	Notes []string

	Rule    Rule
	Clamped bool
	At      time.Time
}

// Observer is notified after every commit, in commit order.
//
// OnCommit runs on the updating goroutine while the house is still
// held for that cycle. Implementations must not block and must not
// modify the Commit.
type Observer interface {
	OnCommit(c Commit)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(c Commit)

// OnCommit calls f(c).
func (f ObserverFunc) OnCommit(c Commit) { f(c) }

// Option configures a Store or Registry.
type Option func(*options)

type options struct {
	clock     Clock
	logger    Logger
	observers []Observer
}

// WithClock sets the clock used to stamp event lines and time the alarm.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver adds a commit observer.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

func buildOptions(opts []Option) options {
	o := options{clock: time.Now, logger: noopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Store owns the state of one house.
//
// Cycles are strictly serialised: ApplyUpdate holds cycleMu for the
// whole cycle, so policy evaluation always sees the last committed
// state. GetState only takes the read lock and returns a deep copy, so
// readers never wait on a cycle in progress and never see a partial one.
type Store struct {
	name string

	cycleMu sync.Mutex   // Serialises cycles
	mu      sync.RWMutex // Protects state
	state   State

	clock     Clock
	logger    Logger
	observers []Observer // Guarded by cycleMu
}

// NewStore creates the store for one house with its initial state.
func NewStore(name string, settings Settings, opts ...Option) *Store {
	o := buildOptions(opts)
	return &Store{
		name:      name,
		state:     NewState(name, settings.withDefaults()),
		clock:     o.clock,
		logger:    o.logger,
		observers: o.observers,
	}
}

// Name returns the house identifier.
func (s *Store) Name() string {
	return s.name
}

// AddObserver registers an observer for subsequent commits.
func (s *Store) AddObserver(obs Observer) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()
	s.observers = append(s.observers, obs)
}

// GetState returns a snapshot of the committed state.
func (s *Store) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Tick runs a cycle with no update. Automatic policies are re-evaluated
// and the simulated climate advances by one step.
func (s *Store) Tick() (State, error) {
	return s.ApplyUpdate(nil)
}

// ApplyUpdate runs one full cycle: normalize, schedule check, policy
// evaluation, climate regulation, invariant check, commit and log.
//
// Rejected fields and requests are recorded in the event log and are
// not errors. An error is returned only when the cycle would violate an
// invariant; the previous state then stays committed.
func (s *Store) ApplyUpdate(fields Fields) (State, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	// Only cycles write state and they hold cycleMu.
	prev := s.state.Clone()
	now := s.clock()

	in := Normalize(prev, fields)
	res := Evaluate(in, in.Next.InNightWindow(), now)
	next := res.State
	next.Climate = Regulate(next.Climate)

	if err := CheckInvariants(next); err != nil {
		s.logger.Error("refusing to commit house state",
			"house", s.name,
			"rule", res.Rule,
			"error", err,
		)
		return prev, fmt.Errorf("applying update to house %s: %w", s.name, err)
	}

	lines := Stamp(now, append(res.Notes, Diff(prev, next)...))
	next.EventLog = append(next.EventLog, lines...)

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	if len(res.Notes) > 0 {
		s.logger.Debug("update partially rejected", "house", s.name, "notes", res.Notes)
	}
	if res.Clamped {
		s.logger.Warn("intruder clamp overrode lock", "house", s.name, "rule", res.Rule)
	}

	snapshot := next.Clone()
	commit := Commit{
		House:   s.name,
		Prev:    prev,
		Next:    snapshot,
		Lines:   lines,
		Notes:   res.Notes,
		Rule:    res.Rule,
		Clamped: res.Clamped,
		At:      now,
	}
	for _, obs := range s.observers {
		obs.OnCommit(commit)
	}

	return next.Clone(), nil
}

// withDefaults fills unset settings with package defaults.
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.TargetTemp == 0 {
		s.TargetTemp = d.TargetTemp
	}
	if s.CurrentTemp == 0 {
		s.CurrentTemp = s.TargetTemp
	}
	if s.Humidity == 0 {
		s.Humidity = d.Humidity
	}
	if s.AlarmDelay <= 0 {
		s.AlarmDelay = d.AlarmDelay
	}
	if s.NightStart == 0 && s.NightEnd == 0 {
		s.NightStart = d.NightStart
		s.NightEnd = d.NightEnd
	}
	return s
}
