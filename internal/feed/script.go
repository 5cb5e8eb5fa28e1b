package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/tartan-home-core/internal/house"
	"github.com/nerrad567/tartan-home-core/internal/infrastructure/config"
)

// defaultScenarioStart is the simulated clock's start when a scenario
// does not set one.
var defaultScenarioStart = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// ErrScenarioInvalid is returned for scenario files that cannot be played.
var ErrScenarioInvalid = errors.New("feed: invalid scenario")

// Scenario is a scripted sequence of updates against one house.
type Scenario struct {
	House    string             `yaml:"house"`
	Start    string             `yaml:"start"` // RFC 3339, optional
	Settings config.HouseConfig `yaml:"settings"`
	Steps    []Step             `yaml:"steps"`
}

// Step is one update followed by optional empty cycles and checks.
type Step struct {
	Name string `yaml:"name"`

	// Advance moves the simulated clock before the update.
	Advance time.Duration `yaml:"advance"`

	Update house.Fields `yaml:"update"`

	// Ticks runs this many further empty cycles after the update. The
	// update itself is always one cycle, even when empty.
	Ticks int `yaml:"ticks"`

	// Expect maps view field names to expected values.
	Expect map[string]any `yaml:"expect"`

	// ExpectLog lists substrings that must appear in the lines this
	// step appended to the event log.
	ExpectLog []string `yaml:"expect_log"`
}

// StepResult is the outcome of one step.
type StepResult struct {
	Name     string
	View     house.View
	Lines    []string
	Failures []string
}

// Report is the outcome of a played scenario.
type Report struct {
	House string
	Steps []StepResult
}

// Failed reports whether any expectation failed.
func (r *Report) Failed() bool {
	return r.FailureCount() > 0
}

// FailureCount returns the number of failed expectations.
func (r *Report) FailureCount() int {
	n := 0
	for _, s := range r.Steps {
		n += len(s.Failures)
	}
	return n
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScenarioInvalid, err)
	}
	if err := house.ValidateName(sc.House); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScenarioInvalid, err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrScenarioInvalid)
	}
	for i, st := range sc.Steps {
		if st.Advance < 0 || st.Ticks < 0 {
			return nil, fmt.Errorf("%w: step %d: negative advance or ticks", ErrScenarioInvalid, i+1)
		}
	}
	if sc.Start != "" {
		if _, err := time.Parse(time.RFC3339, sc.Start); err != nil {
			return nil, fmt.Errorf("%w: start: %w", ErrScenarioInvalid, err)
		}
	}
	return &sc, nil
}

// simClock is a settable clock for scenario playback.
type simClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *simClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *simClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Play runs sc against a fresh in-memory house. Invariant violations
// abort playback with an error; failed expectations are reported.
func Play(ctx context.Context, sc *Scenario, logger Logger) (*Report, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	settings, err := SettingsFromConfig(sc.Settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScenarioInvalid, err)
	}

	clock := &simClock{now: defaultScenarioStart}
	if sc.Start != "" {
		clock.now, _ = time.Parse(time.RFC3339, sc.Start) // validated by ParseScenario
	}
	st := house.NewStore(sc.House, settings, house.WithClock(clock.Now), house.WithLogger(logger))

	report := &Report{House: sc.House}
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}

		clock.Advance(step.Advance)
		before := len(st.GetState().EventLog)

		s, err := st.ApplyUpdate(step.Update)
		for t := 0; err == nil && t < step.Ticks; t++ {
			s, err = st.Tick()
		}
		if err != nil {
			return report, fmt.Errorf("%s: %w", name, err)
		}

		res := StepResult{
			Name:  name,
			View:  s.View(),
			Lines: append([]string(nil), s.EventLog[before:]...),
		}
		res.Failures = append(checkView(res.View, step.Expect), checkLines(res.Lines, step.ExpectLog)...)
		for _, f := range res.Failures {
			logger.Warn("scenario expectation failed", "house", sc.House, "step", name, "failure", f)
		}
		report.Steps = append(report.Steps, res)
	}
	return report, nil
}

// checkView compares expected values against the view's JSON fields.
func checkView(v house.View, expect map[string]any) []string {
	if len(expect) == 0 {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return []string{fmt.Sprintf("encoding view: %v", err)}
	}
	var actual map[string]any
	if err := json.Unmarshal(data, &actual); err != nil {
		return []string{fmt.Sprintf("decoding view: %v", err)}
	}

	keys := make([]string, 0, len(expect))
	for k := range expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var failures []string
	for _, k := range keys {
		got, ok := actual[k]
		if !ok {
			failures = append(failures, fmt.Sprintf("%s: no such field", k))
			continue
		}
		if fmt.Sprint(got) != fmt.Sprint(expect[k]) {
			failures = append(failures, fmt.Sprintf("%s = %v, want %v", k, got, expect[k]))
		}
	}
	return failures
}

func checkLines(lines, want []string) []string {
	var failures []string
	for _, w := range want {
		found := false
		for _, l := range lines {
			if strings.Contains(l, w) {
				found = true
				break
			}
		}
		if !found {
			failures = append(failures, fmt.Sprintf("event log missing %q", w))
		}
	}
	return failures
}
