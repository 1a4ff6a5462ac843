package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func get(r http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRequestID(t *testing.T) {
	r := newRouter()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	resp := get(r, "/ping", nil)
	id := resp.Header().Get(RequestIDHeader)
	if id == "" || resp.Body.String() != id {
		t.Errorf("Expected a generated id echoed in the body, got header %q body %q", id, resp.Body.String())
	}

	resp = get(r, "/ping", http.Header{RequestIDHeader: {"abc-123"}})
	if resp.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("Expected the client id to be reused, got %q", resp.Header().Get(RequestIDHeader))
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := newRouter()
	r.Use(RequestID(), Logger(slog.New(slog.NewTextHandler(&buf, nil))))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	get(r, "/missing", http.Header{RequestIDHeader: {"req-1"}})
	line := buf.String()
	for _, want := range []string{"level=WARN", "path=/missing", "status=404", "request_id=req-1"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in log line %q", want, line)
		}
	}
}

func TestRateLimitByIP(t *testing.T) {
	rl := NewIPRateLimiter(1, 2, time.Minute)
	r := newRouter()
	r.GET("/invite", RateLimitByIP(rl), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if resp := get(r, "/invite", nil); resp.Code != http.StatusOK {
			t.Fatalf("Expected request %d within the burst to pass, got %d", i, resp.Code)
		}
	}
	if resp := get(r, "/invite", nil); resp.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429 after the burst, got %d", resp.Code)
	}
}

func TestRateLimiterSweep(t *testing.T) {
	rl := NewIPRateLimiter(10, 1, time.Minute)
	rl.Allow("10.0.0.1")
	rl.sweep(time.Now().Add(2 * time.Minute))
	if len(rl.visitors) != 0 {
		t.Errorf("Expected idle visitors to be dropped, got %d", len(rl.visitors))
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := newRouter()
	r.Use(m.Handler())
	r.GET("/api/gifts/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	get(r, "/api/gifts/1", nil)
	get(r, "/api/gifts/2", nil)
	get(r, "/nowhere", nil)

	counts := map[string]float64{}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "wishwell_http_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range metric.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			counts[labels["route"]+" "+labels["status"]] = metric.GetCounter().GetValue()
		}
	}
	if counts["/api/gifts/:id 200"] != 2 {
		t.Errorf("Expected 2 requests on the route template, got %v", counts)
	}
	if counts["unmatched 404"] != 1 {
		t.Errorf("Expected 1 unmatched request, got %v", counts)
	}
}

func TestTracingPassesThrough(t *testing.T) {
	r := newRouter()
	r.Use(Tracing())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	if resp := get(r, "/ok", nil); resp.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", resp.Code)
	}
}
