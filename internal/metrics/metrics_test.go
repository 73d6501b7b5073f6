package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RouteStarted()
	m.RouteStarted()
	m.RouteStopped()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.active))

	m.Delivered("hello-world", "java", 2*time.Millisecond)
	m.Delivered("hello-world", "java", 3*time.Millisecond)
	m.Failed("hello-world", "java", StageRender)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.exchanges.WithLabelValues("hello-world", "java")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("hello-world", "java", StageRender)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.failures.WithLabelValues("hello-world", "java", StageDelivery)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "kamelrun_exchanges_total")
	assert.Contains(t, names, "kamelrun_routes_active")
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
