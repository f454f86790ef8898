package xmetrics_test

import (
	"testing"
	"time"

	"gactor/pkg/xmetrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := xmetrics.NewPrometheus(reg)

	m.MessageProcessed("greeter", "Greet", true)
	m.MessageProcessed("greeter", "Greet", true)
	m.MessageDropped("greeter", "Unknown")
	m.MessageDuration("greeter", "Greet", time.Millisecond)
	m.HandlerPanic("greeter", "Greet")
	m.MailboxDepth("greeter", 3)
	m.RouterDispatch("pool", 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "gactor_messages_total")
	assert.Contains(t, names, "gactor_mailbox_depth")
	assert.Contains(t, names, "gactor_pool_routed_total")

	n, err := testutil.GatherAndCount(reg, "gactor_messages_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNop(t *testing.T) {
	m := xmetrics.Nop()
	assert.NotPanics(t, func() {
		m.MessageProcessed("a", "b", false)
		m.MailboxDepth("a", 1)
	})
}
