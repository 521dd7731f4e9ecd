package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.WSConnections.Inc()
	c.MessagesTotal.Add(3)
	c.PersistFailures.WithLabelValues(OpSave).Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "espresso_ws_connections")
	assert.Contains(t, names, "espresso_messages_total")
	assert.Contains(t, names, "espresso_persist_failures_total")

	assert.Equal(t, float64(3), testutil.ToFloat64(c.MessagesTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.PersistFailures.WithLabelValues(OpSave)))
}

func TestNew_SeparateRegistriesDoNotConflict(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
