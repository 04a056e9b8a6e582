package logger

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFromFallsBackToDefault(t *testing.T) {
	if From(context.Background()) != slog.Default() {
		t.Fatalf("expected default logger for bare context")
	}
}

func TestWithFromRoundTrip(t *testing.T) {
	l := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	ctx := With(context.Background(), l)
	if From(ctx) != l {
		t.Fatalf("expected stored logger back from context")
	}
}

func TestMiddlewareScopesRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(Middleware(l))
	r.GET("/ping", func(c *gin.Context) {
		FromGin(c).Info("handler log")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "rid-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "rid-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
	out := buf.String()
	if !strings.Contains(out, "handler log") {
		t.Fatalf("expected handler log line, got %s", out)
	}
	// The handler's line must carry the request-scoped id, proving FromGin
	// resolved the middleware's logger and not the process default.
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.Contains(line, "handler log") && !strings.Contains(line, "rid-123") {
			t.Fatalf("handler log missing request_id: %s", line)
		}
	}
}
