package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/ipsearch/internal/partition"
	"github.com/dreamware/ipsearch/internal/progress"
	"github.com/dreamware/ipsearch/internal/search"
)

func TestCollectorReport(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, nil)

	assert.Equal(t, -1.0, testutil.ToFloat64(c.eta))

	c.Report(progress.Compute(1000, 4000, 2*time.Second))

	assert.Equal(t, 1000.0, testutil.ToFloat64(c.examined))
	assert.Equal(t, 4000.0, testutil.ToFloat64(c.total))
	assert.InDelta(t, 500.0, testutil.ToFloat64(c.rate), 1e-9)
	assert.InDelta(t, 25.0, testutil.ToFloat64(c.percent), 1e-9)
	assert.InDelta(t, 6.0, testutil.ToFloat64(c.eta), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(c.elapsed), 1e-9)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.reports))

	c.Report(progress.Compute(0, 4000, 0))
	assert.Equal(t, -1.0, testutil.ToFloat64(c.eta))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.reports))
}

// TestCollectorWorkerStates reads worker state gauges from a live registry.
func TestCollectorWorkerStates(t *testing.T) {
	reg := prometheus.NewRegistry()
	workers := search.NewRegistry()
	workers.Assign(make([]partition.Range, 3))
	workers.Update(search.WorkerStatus{ID: 0, State: search.StateFound})

	New(reg, workers)

	expected := `
# HELP ipsearch_workers Workers per lifecycle state.
# TYPE ipsearch_workers gauge
ipsearch_workers{state="cancelled"} 0
ipsearch_workers{state="exhausted"} 0
ipsearch_workers{state="faulted"} 0
ipsearch_workers{state="found"} 1
ipsearch_workers{state="pending"} 2
ipsearch_workers{state="running"} 0
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ipsearch_workers"))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, nil)
	c.Report(progress.Compute(42, 100, time.Second))

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ipsearch_addresses_examined 42")
	assert.Contains(t, string(body), "ipsearch_addresses_total 100")
}
