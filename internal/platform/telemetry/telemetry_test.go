package telemetry

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestEcho(m *Metrics) *echo.Echo {
	e := echo.New()
	e.Use(m.Middleware())
	e.GET(MetricsPath, m.Handler())
	return e
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func TestMiddleware_RecordsDuration(t *testing.T) {
	m := New()
	e := newTestEcho(m)
	e.POST("/api/v1/assessments", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", strings.NewReader(`{}`))
	e.ServeHTTP(httptest.NewRecorder(), req)

	if got := m.RequestCount("POST", "/api/v1/assessments", "200"); got != 1 {
		t.Fatalf("expected count=1, got %d", got)
	}
	if h := m.requests.get(LabelsKey("POST", "/api/v1/assessments", "200")); h.Sum() <= 0 {
		t.Fatal("expected positive duration sum")
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New()
	e := newTestEcho(m)
	e.GET("/items/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	for _, id := range []string{"1", "2", "3"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}

	if got := m.RequestCount("GET", "/items/:id", "204"); got != 3 {
		t.Fatalf("expected count=3, got %d", got)
	}
}

func TestMiddleware_ErrorStatus(t *testing.T) {
	m := New()
	e := newTestEcho(m)
	e.GET("/teapot", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})
	e.GET("/boom", func(c echo.Context) error {
		return fmt.Errorf("boom")
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	if got := m.RequestCount("GET", "/teapot", "418"); got != 1 {
		t.Errorf("expected 418 series, got %d", got)
	}
	if got := m.RequestCount("GET", "/boom", "500"); got != 1 {
		t.Errorf("expected 500 series, got %d", got)
	}
}

func TestMiddleware_ActiveRequests(t *testing.T) {
	m := New()
	e := newTestEcho(m)

	var during int64
	e.GET("/slow", func(c echo.Context) error {
		during = m.ActiveRequests()
		return c.String(http.StatusOK, "ok")
	})
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))

	if during != 1 {
		t.Fatalf("expected active_requests=1 during handling, got %d", during)
	}
	if after := m.ActiveRequests(); after != 0 {
		t.Fatalf("expected active_requests=0 after request, got %d", after)
	}
}

func TestMiddleware_SkipsMetricsEndpoint(t *testing.T) {
	m := New()
	e := newTestEcho(m)

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, MetricsPath, nil))

	if keys := m.requests.keys(); len(keys) != 0 {
		t.Fatalf("expected no request series, got %v", keys)
	}
}

// ---------------------------------------------------------------------------
// Assessments
// ---------------------------------------------------------------------------

func TestRecordAssessment(t *testing.T) {
	m := New()
	m.RecordAssessment("monitor", 16)
	m.RecordAssessment("monitor", 30)
	m.RecordAssessment("immediate", 84)

	if got := m.AssessmentCount("monitor"); got != 2 {
		t.Errorf("expected monitor=2, got %d", got)
	}
	if got := m.AssessmentCount("immediate"); got != 1 {
		t.Errorf("expected immediate=1, got %d", got)
	}
	if got := m.AssessmentCount("soon"); got != 0 {
		t.Errorf("expected soon=0, got %d", got)
	}
	if m.urgency.Count() != 3 || m.urgency.Sum() != 130 {
		t.Errorf("unexpected urgency histogram count=%d sum=%g", m.urgency.Count(), m.urgency.Sum())
	}
}

// ---------------------------------------------------------------------------
// Handler
// ---------------------------------------------------------------------------

func TestHandler_PrometheusFormat(t *testing.T) {
	m := New()
	e := newTestEcho(m)
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	m.RecordAssessment("soon", 55)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, MetricsPath, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"# TYPE http_server_request_duration_seconds histogram",
		`http_server_request_duration_seconds_count{method="GET",route="/health",status_code="200"} 1`,
		`http_server_request_duration_seconds_bucket{method="GET",route="/health",status_code="200",le="+Inf"} 1`,
		"http_server_active_requests 0",
		"# TYPE assessments_total counter",
		`assessments_total{tier="soon"} 1`,
		`assessment_urgency_bucket{le="50"} 0`,
		`assessment_urgency_bucket{le="60"} 1`,
		"assessment_urgency_sum 55",
		"assessment_urgency_count 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q\n%s", want, body)
		}
	}
}

// ---------------------------------------------------------------------------
// Histogram
// ---------------------------------------------------------------------------

func TestHistogram_Observation(t *testing.T) {
	h := newHistogram([]float64{0.010, 0.025, 0.050, 5.0})

	h.Observe(0.005)
	h.Observe(0.015)
	h.Observe(3.0)
	h.Observe(30.0)

	if h.Count() != 4 {
		t.Fatalf("expected count=4, got %d", h.Count())
	}
	want := []int64{1, 2, 2, 3}
	got := h.cumulativeBuckets()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cumulative buckets = %v, want %v", got, want)
		}
	}
}

func TestMetrics_ConcurrentSafe(t *testing.T) {
	m := New()
	e := newTestEcho(m)
	e.GET("/items/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	var wg sync.WaitGroup
	goroutines := 50
	requestsPerGoroutine := 20

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < requestsPerGoroutine; i++ {
				e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, fmt.Sprintf("/items/%d", i), nil))
				m.RecordAssessment("monitor", i)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, MetricsPath, nil))
		}
	}()

	wg.Wait()

	total := int64(goroutines * requestsPerGoroutine)
	if got := m.RequestCount("GET", "/items/:id", "200"); got != total {
		t.Fatalf("expected count=%d, got %d", total, got)
	}
	if got := m.AssessmentCount("monitor"); got != total {
		t.Fatalf("expected assessments=%d, got %d", total, got)
	}
}
