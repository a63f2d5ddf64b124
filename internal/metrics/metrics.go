package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Vote caster
	MetricVotesCast       = "votes_cast_total"
	MetricVotesRejected   = "votes_rejected_closed_total"
	MetricVoteWriteErrors = "vote_write_errors_total"
	// Change feed
	MetricStreamSubscribers = "stream_subscribers"
	MetricChangeEventsSent  = "change_events_sent_total"
)

type MetricService struct {
	votesCast         prometheus.Counter
	votesRejected     prometheus.Counter
	voteWriteErrors   prometheus.Counter
	streamSubscribers prometheus.Gauge
	changeEventsSent  prometheus.Counter
}

func NewMetricService(reg prometheus.Registerer) *MetricService {
	ms := &MetricService{
		votesCast: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricVotesCast,
			Help: "Successfully cast votes",
		}),
		votesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricVotesRejected,
			Help: "Votes rejected because the session was closed",
		}),
		voteWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricVoteWriteErrors,
			Help: "Vote writes that failed and were reported to the caller",
		}),
		streamSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricStreamSubscribers,
			Help: "Currently connected change stream subscribers",
		}),
		changeEventsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricChangeEventsSent,
			Help: "Change events delivered to stream subscribers",
		}),
	}

	reg.MustRegister(
		ms.votesCast,
		ms.votesRejected,
		ms.voteWriteErrors,
		ms.streamSubscribers,
		ms.changeEventsSent,
	)

	return ms
}

func (m *MetricService) IncVotesCast()         { m.votesCast.Inc() }
func (m *MetricService) IncVotesRejected()     { m.votesRejected.Inc() }
func (m *MetricService) IncVoteWriteErrors()   { m.voteWriteErrors.Inc() }
func (m *MetricService) IncStreamSubscribers() { m.streamSubscribers.Inc() }
func (m *MetricService) DecStreamSubscribers() { m.streamSubscribers.Dec() }
func (m *MetricService) IncChangeEventsSent()  { m.changeEventsSent.Inc() }
