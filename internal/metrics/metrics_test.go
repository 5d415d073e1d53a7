package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_ObserveProvider(t *testing.T) {
	c := NewCollector()

	c.ObserveProvider("googlebooks", "search", time.Now(), nil)
	c.ObserveProvider("googlebooks", "search", time.Now(), errors.New("boom"))
	c.ObserveProvider("googlebooks", "search", time.Now(), nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ProviderRequests.WithLabelValues("googlebooks", "search", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ProviderRequests.WithLabelValues("googlebooks", "search", "error")))
}

func TestCollector_PoolGauge(t *testing.T) {
	c := NewCollector()

	c.TaskQueued()
	c.TaskQueued()
	c.TaskFinished("ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.PoolQueued))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.PoolTasks.WithLabelValues("ok")))
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveProvider("x", "y", time.Now(), nil)
		c.ObserveStore("upsert", nil)
		c.ObserveMirror("publish", nil)
		c.TaskQueued()
		c.TaskFinished("ok")
		c.TaskRejected()
	})
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.ObserveStore("upsert_summary", nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	c.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bookmemo_store_operations_total")
}
