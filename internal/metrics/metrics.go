// Package metrics exposes Prometheus counters for playback and transcription.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reprise_resolve_total",
		Help: "Source resolutions by outcome",
	}, []string{"outcome"}) // outcome=remote|handle|index|traversal|folder_access|denied|error

	progressWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reprise_progress_writes_total",
		Help: "Progress writes by result",
	}, []string{"result"}) // result=ok|error

	progressCoalescedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reprise_progress_coalesced_total",
		Help: "Progress writes superseded by a newer position before reaching the store",
	})

	completionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reprise_video_completions_total",
		Help: "Videos marked complete",
	})

	playbackErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reprise_playback_errors_total",
		Help: "Loads that ended in the error phase, by failure kind",
	}, []string{"kind"})

	transcriptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reprise_transcriptions_total",
		Help: "Transcription requests by result",
	}, []string{"result"}) // result=ok|error

	activeLeases = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reprise_media_leases_active",
		Help: "Media URLs currently leased",
	})
)

// IncResolve records a resolution outcome.
func IncResolve(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	resolveTotal.WithLabelValues(outcome).Inc()
}

// IncProgressWrite records a progress write result.
func IncProgressWrite(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	progressWritesTotal.WithLabelValues(result).Inc()
}

// IncProgressCoalesced records a progress write that was replaced before it ran.
func IncProgressCoalesced() { progressCoalescedTotal.Inc() }

// IncCompletion records a video marked complete.
func IncCompletion() { completionsTotal.Inc() }

// IncPlaybackError records a load that failed with kind.
func IncPlaybackError(kind string) {
	playbackErrorsTotal.WithLabelValues(kind).Inc()
}

// IncTranscription records a finished transcription request.
func IncTranscription(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	transcriptionsTotal.WithLabelValues(result).Inc()
}

// SetActiveLeases records the number of unreleased media leases.
func SetActiveLeases(n int) { activeLeases.Set(float64(n)) }
