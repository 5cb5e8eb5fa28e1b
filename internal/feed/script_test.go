package feed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/tartan-home-core/internal/house"
)

func TestPlay_Walkthrough(t *testing.T) {
	sc, err := LoadScenario("testdata/walkthrough.yaml")
	if err != nil {
		t.Fatalf("LoadScenario() error = %v", err)
	}

	report, err := Play(context.Background(), sc, nil)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if len(report.Steps) != len(sc.Steps) {
		t.Fatalf("steps = %d, want %d", len(report.Steps), len(sc.Steps))
	}
	for _, s := range report.Steps {
		for _, f := range s.Failures {
			t.Errorf("%s: %s", s.Name, f)
		}
	}
	if report.Failed() {
		t.Errorf("FailureCount() = %d", report.FailureCount())
	}
}

func TestPlay_ReportsFailedExpectations(t *testing.T) {
	sc, err := ParseScenario([]byte(`
house: alpha
settings:
  lock_passcode: "1234"
steps:
  - update: {lockRequest: UNLOCK, lockGivenPasscode: "1234"}
    expect: {doorLock: lock, nosuch: 1}
    expect_log: ["Door unlocked", "Alarm armed"]
`))
	if err != nil {
		t.Fatalf("ParseScenario() error = %v", err)
	}

	report, err := Play(context.Background(), sc, nil)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	got := report.Steps[0].Failures
	want := []string{
		"doorLock = unlock, want lock",
		"nosuch: no such field",
		`event log missing "Alarm armed"`,
	}
	if len(got) != len(want) {
		t.Fatalf("failures = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("failure[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if report.Steps[0].Name != "step 1" {
		t.Errorf("Name = %q, want default step name", report.Steps[0].Name)
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "house: [unterminated"},
		{"bad house", "house: 'a b'\nsteps: [{}]"},
		{"no steps", "house: alpha"},
		{"negative ticks", "house: alpha\nsteps: [{ticks: -1}]"},
		{"bad start", "house: alpha\nstart: yesterday\nsteps: [{}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.yaml)); !errors.Is(err, ErrScenarioInvalid) {
				t.Errorf("ParseScenario() error = %v, want ErrScenarioInvalid", err)
			}
		})
	}
}

func TestPlay_BadSettings(t *testing.T) {
	sc, err := ParseScenario([]byte("house: alpha\nsettings: {night_start: '2500'}\nsteps: [{}]"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Play(context.Background(), sc, nil); !errors.Is(err, house.ErrInvalidTime) {
		t.Errorf("Play() error = %v, want ErrInvalidTime", err)
	}
}

func TestPlay_Cancelled(t *testing.T) {
	sc, err := ParseScenario([]byte("house: alpha\nsteps: [{}, {}]"))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Play(ctx, sc, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Play() error = %v, want context.Canceled", err)
	}
	if len(report.Steps) != 0 {
		t.Errorf("steps run after cancel = %d", len(report.Steps))
	}
}

func TestCheckLines(t *testing.T) {
	lines := []string{"[Mar 01,2026 12:00]: Door unlocked"}
	if f := checkLines(lines, []string{"Door unlocked"}); len(f) != 0 {
		t.Errorf("unexpected failures %v", f)
	}
	if f := checkLines(nil, []string{"x"}); len(f) != 1 || !strings.Contains(f[0], `"x"`) {
		t.Errorf("failures = %v", f)
	}
}
