package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordRun("forecast", "lstm")
	r.RecordRun("forecast", "lstm")
	r.RecordError("backtest", "invalid_parameter")
	r.RecordCacheLookup("memory", true)
	r.RecordLatency("simulate", 0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("forecast", "lstm")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("backtest", "invalid_parameter")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("memory", "true")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.latency))
}
