package telemetry

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nerrad567/tartan-home-core/internal/house"
)

var testNow = time.Date(2026, time.March, 1, 22, 30, 0, 0, time.UTC)

func newObservedStore(t *testing.T, obs house.Observer) *house.Store {
	t.Helper()
	return house.NewStore("alpha",
		house.Settings{LockPasscode: "1234", AlarmPasscode: "4321"},
		house.WithClock(func() time.Time { return testNow }),
		house.WithObserver(obs),
	)
}

func TestMetrics_OnCommit(t *testing.T) {
	m := NewMetrics()
	st := newObservedStore(t, m)

	if _, err := st.ApplyUpdate(house.Fields{
		house.FieldLockRequest:  "UNLOCK",
		house.FieldLockPasscode: "1234",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.ApplyUpdate(house.Fields{
		house.FieldLockRequest:  "LOCK",
		house.FieldLockPasscode: "9999",
	}); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(m.cycles.WithLabelValues("alpha", string(house.RuleExplicit))); got != 1 {
		t.Errorf("explicit cycles = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cycles.WithLabelValues("alpha", string(house.RuleNone))); got != 1 {
		t.Errorf("none cycles = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rejections.WithLabelValues("alpha")); got != 1 {
		t.Errorf("rejections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.doorOpen.WithLabelValues("alpha")); got != 1 {
		t.Errorf("door_open = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.temperature.WithLabelValues("alpha")); got != house.DefaultTargetTemp {
		t.Errorf("temperature = %v, want %d", got, house.DefaultTargetTemp)
	}
}

func TestMetrics_Clamp(t *testing.T) {
	m := NewMetrics()
	st := newObservedStore(t, m)

	s, err := st.ApplyUpdate(house.Fields{
		house.FieldProximity:        "occupied",
		house.FieldIntruderMode:     "on",
		house.FieldIntruderDetected: "on",
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.Access.Lock != house.LockUnlocked {
		t.Fatalf("lock = %v, want unlock", s.Access.Lock)
	}
	if got := testutil.ToFloat64(m.clamps.WithLabelValues("alpha")); got != 1 {
		t.Errorf("clamps = %v, want 1", got)
	}
}

func TestMetrics_RecordUpdate(t *testing.T) {
	m := NewMetrics()
	m.RecordUpdate("api", nil)
	m.RecordUpdate("api", nil)
	m.RecordUpdate("mqtt", fmt.Errorf("wrapped: %w", house.ErrInvariantViolation))
	m.RecordUpdate("mqtt", errors.New("decode"))

	tests := []struct {
		source, outcome string
		want            float64
	}{
		{"api", OutcomeOK, 2},
		{"mqtt", OutcomeViolation, 1},
		{"mqtt", OutcomeError, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.updates.WithLabelValues(tt.source, tt.outcome)); got != tt.want {
			t.Errorf("updates{%s,%s} = %v, want %v", tt.source, tt.outcome, got, tt.want)
		}
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.OnCommit(house.Commit{House: "alpha"})
	m.RecordUpdate("api", nil)

	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	m.WrapHandler("x", h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestMetrics_HandlerAndWrap(t *testing.T) {
	m := NewMetrics()
	h := m.WrapHandler("/houses/{house}", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/houses/x", nil))

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/houses/{house}", "404")); got != 1 {
		t.Errorf("http_requests_total = %v, want 1", got)
	}

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"tartan_http_requests_total", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
