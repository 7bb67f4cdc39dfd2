package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder_AllMethods_Safe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("render", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncPageResult(ResultSuccess)
	r.IncBuildOutcome("success")
	r.SetPagesTotal(3)
	r.SetCategoriesTotal(2)
}

func TestPrometheusRecorder_NilReceiver_Safe(t *testing.T) {
	var p *PrometheusRecorder
	p.ObserveStageDuration("render", time.Second)
	p.IncPageResult(ResultFailed)
	p.SetPagesTotal(1)
}

func TestPrometheusRecorder_CountsResults(t *testing.T) {
	reg := prom.NewRegistry()
	p := NewPrometheusRecorder(reg)

	p.IncPageResult(ResultSuccess)
	p.IncPageResult(ResultSuccess)
	p.IncPageResult(ResultFailed)
	p.SetPagesTotal(2)
	p.SetCategoriesTotal(1)

	require.Equal(t, float64(2),
		testutil.ToFloat64(p.pageResults.WithLabelValues(string(ResultSuccess))))
	require.Equal(t, float64(1),
		testutil.ToFloat64(p.pageResults.WithLabelValues(string(ResultFailed))))
	require.Equal(t, float64(2), testutil.ToFloat64(p.pagesTotal))
	require.Equal(t, float64(1), testutil.ToFloat64(p.categories))
}
