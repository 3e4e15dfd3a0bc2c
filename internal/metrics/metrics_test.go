package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestObserveOperation(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	c := NewCollector()
	c.ObserveOperation("org/app", "rebase", "success", time.Second)
	c.ObserveOperation("org/app", "rebase", "success", 2*time.Second)
	c.ObserveOperation("org/app", "rebase", "failed", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.operations.WithLabelValues("org/app", "rebase", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("org/app", "rebase", "failed")))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector

	c.ObserveOperation("org/app", "squash", "skipped", time.Second)
	assert.NoError(t, c.Push(context.Background(), "http://localhost:1", "prflow", nil))
}

func TestPush(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	var mu sync.Mutex
	var reqPath, reqMethod string
	var reqBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		mu.Lock()
		reqPath = r.URL.Path
		reqMethod = r.Method
		reqBody = body
		mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := NewCollector()
	c.ObserveOperation("org/app", "squash", "success", time.Second)

	err := c.Push(context.Background(), srv.URL, "prflow", map[string]string{"repository": "app"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, http.MethodPut, reqMethod)
	assert.Equal(t, "/metrics/job/prflow/repository/app", reqPath)
	assert.NotEmpty(t, reqBody)
}
