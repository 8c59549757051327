package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	jobsPosted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobs_posted_total",
			Help: "Jobs posted to the marketplace.",
		},
	)

	claimAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_claim_attempts_total",
			Help: "Claim attempts by result (won/conflict/not_found).",
		},
		[]string{"result"},
	)

	updatesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_updates_total",
			Help: "Progress updates recorded, by update type.",
		},
		[]string{"type"},
	)

	jobsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobs_delivered_total",
			Help: "Deliverables submitted.",
		},
	)

	escrowReleased = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "escrow_released_total",
			Help: "Escrow records released at approval.",
		},
	)

	streamSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stream_subscribers",
			Help: "Currently connected live-stream subscribers.",
		},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			jobsPosted, claimAttempts, updatesRecorded,
			jobsDelivered, escrowReleased, streamSubscribers,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncJobPosted()      { jobsPosted.Inc() }
func IncJobDelivered()   { jobsDelivered.Inc() }
func IncEscrowReleased() { escrowReleased.Inc() }

func IncClaimAttempt(result string) {
	claimAttempts.WithLabelValues(norm(result)).Inc()
}

func IncUpdateRecorded(updateType string) {
	updatesRecorded.WithLabelValues(norm(updateType)).Inc()
}

func StreamSubscriberConnected()    { streamSubscribers.Inc() }
func StreamSubscriberDisconnected() { streamSubscribers.Dec() }
