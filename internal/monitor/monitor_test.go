package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/multishell/internal/config"
	"github.com/danmuck/multishell/internal/observability"
	"github.com/danmuck/multishell/internal/task"
	"github.com/danmuck/multishell/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"go.uber.org/goleak"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return New("multishell-test", config.MonitorConfig{Addr: "127.0.0.1:0"})
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(t)
	rr := get(s, "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status got=%d want=200", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "multishell-test" {
		t.Fatalf("unexpected body: %#v", body)
	}
}

func TestStatusServesLatestSnapshot(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(t)
	if rr := get(s, "/status"); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status before publish got=%d want=503", rr.Code)
	}
	repo := task.NewRepository(config.DefaultPools())
	s.Publish(Snapshot{
		Time:     time.Unix(1700000000, 0).UTC(),
		Status:   repo.Status(),
		Pools:    repo.Snapshot(),
		Sessions: []SessionStat{{Name: "m0", Stream: "vT", State: "comma", Connected: true}},
	})
	rr := get(s, "/status")
	if rr.Code != http.StatusOK {
		t.Fatalf("status got=%d want=200", rr.Code)
	}
	var snap Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if snap.Status != repo.Status() || len(snap.Pools) != 7 || len(snap.Sessions) != 1 || snap.Sessions[0].Name != "m0" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestMetricsExposed(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(t)
	observability.RecordPoolExhausted("comma")
	get(s, "/health")
	rr := get(s, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status got=%d want=200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"multishell_pool_exhausted_total", "multishell_http_requests_total"} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %s", want)
		}
	}
}

func TestRunShutsDownWithContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	testlog.Start(t)
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("run did not return")
	}
}
