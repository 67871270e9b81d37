package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveStepRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewProjectionCollector(reg)
	if err != nil {
		t.Fatalf("NewProjectionCollector: %v", err)
	}

	collector.ObserveStep(2 * time.Millisecond)
	collector.ObserveStep(3 * time.Millisecond)

	if got := testutil.ToFloat64(collector.StepsTotal); got != 2 {
		t.Fatalf("projection_steps_total = %v, want 2", got)
	}
	if count := histogramSampleCount(t, reg, "projection_step_duration_seconds"); count != 2 {
		t.Fatalf("projection_step_duration_seconds sample_count = %d, want 2", count)
	}
}

func TestScenarioGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewProjectionCollector(reg)
	if err != nil {
		t.Fatalf("NewProjectionCollector: %v", err)
	}

	collector.SetScenarioShape(21, 40)
	collector.SetPopulationTotal(12345.5)

	if got := testutil.ToFloat64(collector.ScenarioAgeGroups); got != 21 {
		t.Fatalf("projection_scenario_age_groups = %v, want 21", got)
	}
	if got := testutil.ToFloat64(collector.ScenarioSteps); got != 40 {
		t.Fatalf("projection_scenario_steps = %v, want 40", got)
	}
	if got := testutil.ToFloat64(collector.PopulationTotal); got != 12345.5 {
		t.Fatalf("projection_population_total = %v, want 12345.5", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewProjectionCollector(reg)
	if err != nil {
		t.Fatalf("NewProjectionCollector: %v", err)
	}
	collector.ObserveStep(time.Millisecond)

	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want 200", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "projection_steps_total") {
		t.Fatalf("metrics body missing projection_steps_total:\n%s", body)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var collector *ProjectionCollector

	collector.ObserveStep(time.Millisecond)
	collector.SetScenarioShape(1, 1)
	collector.SetPopulationTotal(1)
}

func TestDoubleRegistrationReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewProjectionCollector(reg)
	if err != nil {
		t.Fatalf("first NewProjectionCollector: %v", err)
	}
	second, err := NewProjectionCollector(reg)
	if err != nil {
		t.Fatalf("second NewProjectionCollector: %v", err)
	}

	first.ObserveStep(time.Millisecond)
	second.ObserveStep(time.Millisecond)

	if got := testutil.ToFloat64(second.StepsTotal); got != 2 {
		t.Fatalf("shared projection_steps_total = %v, want 2", got)
	}
}

func histogramSampleCount(t *testing.T, g prometheus.Gatherer, name string) uint64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name || mf.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		for _, m := range mf.GetMetric() {
			return m.GetHistogram().GetSampleCount()
		}
	}
	t.Fatalf("histogram %s not found", name)
	return 0
}
