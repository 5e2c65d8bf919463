package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters. Each instance owns its registry so tests
// can build as many as they like.
type Metrics struct {
	registry        *prometheus.Registry
	sessionsStarted prometheus.Counter
	quizzesFinished *prometheus.CounterVec
	mailsQueued     prometheus.Counter
	mailsDropped    prometheus.Counter
	mailsFailed     prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Quiz session ids handed out by start and reset",
		}),
		quizzesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_finished_total",
			Help: "Finished quiz attempts",
		}, []string{"result"}), // result: passed/failed
		mailsQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notify_mails_queued_total",
			Help: "Mails accepted by the dispatcher queue",
		}),
		mailsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notify_mails_dropped_total",
			Help: "Mails dropped because the dispatcher queue was full",
		}),
		mailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notify_mails_failed_total",
			Help: "Mails the publisher failed to deliver",
		}),
	}
	m.registry.MustRegister(m.sessionsStarted, m.quizzesFinished, m.mailsQueued, m.mailsDropped, m.mailsFailed)
	return m
}

func (m *Metrics) SessionStarted() { m.sessionsStarted.Inc() }

func (m *Metrics) QuizFinished(passed bool) {
	result := "failed"
	if passed {
		result = "passed"
	}
	m.quizzesFinished.WithLabelValues(result).Inc()
}

func (m *Metrics) MailQueued()  { m.mailsQueued.Inc() }
func (m *Metrics) MailDropped() { m.mailsDropped.Inc() }
func (m *Metrics) MailFailed()  { m.mailsFailed.Inc() }

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
