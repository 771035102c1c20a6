package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New("test")

	m.ObserveRun(time.Now(), 2, 5, 1)
	m.ObserveImport("pickup", 10, 3)
	m.Fail("import")
	m.Fail("import")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecommendationsTotal.WithLabelValues("yes")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.RecommendationsTotal.WithLabelValues("no")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatesSkipped))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.RowsImported.WithLabelValues("pickup")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RowsRejected.WithLabelValues("pickup")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ErrorsCount.WithLabelValues("import")))
}

func TestMetrics_HotelGauges(t *testing.T) {
	m := New("test")

	m.ObserveHotel("h1", -12.5, 3)
	assert.Equal(t, -12.5, testutil.ToFloat64(m.TrendPercentChange.WithLabelValues("h1")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RoomsOutOfService.WithLabelValues("h1")))

	m.ForgetHotel("h1")
	assert.Equal(t, 0, testutil.CollectAndCount(m.RoomsOutOfService))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := New("test"), New("test")
	a.Fail("x")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.ErrorsCount.WithLabelValues("x")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ErrorsCount.WithLabelValues("x")))

	families, err := a.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun(time.Now(), 1, 1, 1)
		m.ObserveImport("pickup", 1, 1)
		m.Fail("x")
		m.ObserveHotel("h1", 1, 1)
		m.ForgetHotel("h1")
	})
}
