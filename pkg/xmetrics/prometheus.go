package xmetrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var defaultBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}

type promMetrics struct {
	messagesTotal   *prometheus.CounterVec
	droppedTotal    *prometheus.CounterVec
	messageDuration *prometheus.HistogramVec
	panicTotal      *prometheus.CounterVec
	mailboxDepth    *prometheus.GaugeVec
	routedTotal     *prometheus.CounterVec
}

// Prometheus实现, 注册到reg
func NewPrometheus(reg prometheus.Registerer) ActorMetrics {
	m := &promMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gactor_messages_total",
			Help: "Total number of messages handled",
		}, []string{"actor", "message_type", "success"}),

		droppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gactor_messages_dropped_total",
			Help: "Total number of messages without a matching handler",
		}, []string{"actor", "message_type"}),

		messageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gactor_message_duration_seconds",
			Help:    "Handler execution time in seconds",
			Buckets: defaultBuckets,
		}, []string{"actor", "message_type"}),

		panicTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gactor_handler_panics_total",
			Help: "Total number of handler panics",
		}, []string{"actor", "message_type"}),

		mailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gactor_mailbox_depth",
			Help: "Pending messages in the actor inbox",
		}, []string{"actor"}),

		routedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gactor_pool_routed_total",
			Help: "Messages routed to each pool worker",
		}, []string{"pool", "worker"}),
	}

	reg.MustRegister(
		m.messagesTotal,
		m.droppedTotal,
		m.messageDuration,
		m.panicTotal,
		m.mailboxDepth,
		m.routedTotal,
	)
	return m
}

func (m *promMetrics) MessageProcessed(actor, msgType string, success bool) {
	m.messagesTotal.WithLabelValues(actor, msgType, strconv.FormatBool(success)).Inc()
}

func (m *promMetrics) MessageDropped(actor, msgType string) {
	m.droppedTotal.WithLabelValues(actor, msgType).Inc()
}

func (m *promMetrics) MessageDuration(actor, msgType string, d time.Duration) {
	m.messageDuration.WithLabelValues(actor, msgType).Observe(d.Seconds())
}

func (m *promMetrics) HandlerPanic(actor, msgType string) {
	m.panicTotal.WithLabelValues(actor, msgType).Inc()
}

func (m *promMetrics) MailboxDepth(actor string, depth int) {
	m.mailboxDepth.WithLabelValues(actor).Set(float64(depth))
}

func (m *promMetrics) RouterDispatch(pool string, worker int) {
	m.routedTotal.WithLabelValues(pool, strconv.Itoa(worker)).Inc()
}

var _ ActorMetrics = (*promMetrics)(nil)
