package progress

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts store activity. A nil *Metrics records nothing.
type Metrics struct {
	sessionsStarted  prometheus.Counter
	sessionsEnded    prometheus.Counter
	flashcardReviews *prometheus.CounterVec
	testResults      prometheus.Counter
	saveFailures     prometheus.Counter
}

// NewMetrics registers the store counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		sessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "studytrack_sessions_started_total",
			Help: "Study sessions started.",
		}),
		sessionsEnded: f.NewCounter(prometheus.CounterOpts{
			Name: "studytrack_sessions_ended_total",
			Help: "Study sessions closed.",
		}),
		flashcardReviews: f.NewCounterVec(prometheus.CounterOpts{
			Name: "studytrack_flashcard_reviews_total",
			Help: "Flashcard study events by outcome.",
		}, []string{"result"}),
		testResults: f.NewCounter(prometheus.CounterOpts{
			Name: "studytrack_test_results_total",
			Help: "Per-topic test results recorded.",
		}),
		saveFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "studytrack_save_failures_total",
			Help: "Progress document writes that failed.",
		}),
	}
}

func (m *Metrics) sessionStarted() {
	if m != nil {
		m.sessionsStarted.Inc()
	}
}

func (m *Metrics) sessionEnded() {
	if m != nil {
		m.sessionsEnded.Inc()
	}
}

func (m *Metrics) flashcardReviewed(correct bool) {
	if m == nil {
		return
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.flashcardReviews.WithLabelValues(result).Inc()
}

func (m *Metrics) testRecorded() {
	if m != nil {
		m.testResults.Inc()
	}
}

func (m *Metrics) saveFailed() {
	if m != nil {
		m.saveFailures.Inc()
	}
}
