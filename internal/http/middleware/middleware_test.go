package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"shutterplan/internal/observe"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	return r
}

func TestRequestID_Generated(t *testing.T) {
	r := newEngine(RequestID())
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = observe.RequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if seen == "" {
		t.Fatal("expected request id in context")
	}
	if got := w.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header %q does not match context id %q", got, seen)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	r := newEngine(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("expected caller id kept, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); len(got) > maxRequestIDLen {
		t.Errorf("oversized id not replaced: %d chars", len(got))
	}
}

func TestRecovery(t *testing.T) {
	r := newEngine(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "internal error" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestLogging_WritesAccessLine(t *testing.T) {
	var buf bytes.Buffer
	observe.SetupLogger(&buf, "info")
	t.Cleanup(func() { observe.SetupLogger(os.Stdout, "info") })

	r := newEngine(RequestID(), Logging())
	r.GET("/api/models", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("log line is not JSON: %q", buf.String())
	}
	if line["msg"] != "http request" || line["path"] != "/api/models" || line["request_id"] != "req-1" {
		t.Errorf("unexpected log line %v", line)
	}
	if line["status"] != float64(200) {
		t.Errorf("expected status 200, got %v", line["status"])
	}
}
