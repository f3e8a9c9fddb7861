package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func setupTimeoutRouter(d time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(Timeout(d))
	r.GET("/stuck", func(c *gin.Context) {
		time.Sleep(300 * time.Millisecond)
	})
	r.GET("/fast", func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": hasDeadline})
	})
	return r
}

func TestTimeout_HandlerIgnoringContextIsCutOff(t *testing.T) {
	r := setupTimeoutRouter(20 * time.Millisecond)

	start := time.Now()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stuck", nil))
	elapsed := time.Since(start)

	if w.Code != http.StatusRequestTimeout {
		t.Fatalf("expected status %d, got %d", http.StatusRequestTimeout, w.Code)
	}
	if elapsed >= 250*time.Millisecond {
		t.Fatalf("expected response at the deadline, took %v", elapsed)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if body["code"] != float64(http.StatusRequestTimeout) {
		t.Errorf("expected code %d, got %v", http.StatusRequestTimeout, body["code"])
	}
	if body["message"] != "request timeout" {
		t.Errorf("expected message %q, got %v", "request timeout", body["message"])
	}
	if v, ok := body["data"]; !ok || v != nil {
		t.Errorf("expected data null, got %v (present=%v)", v, ok)
	}
}

func TestTimeout_FastHandlerSeesDeadline(t *testing.T) {
	r := setupTimeoutRouter(time.Second)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w.Body.String() != `{"deadline":true}` {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestTimeout_DisabledLeavesContext(t *testing.T) {
	r := setupTimeoutRouter(0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))

	if w.Body.String() != `{"deadline":false}` {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}
