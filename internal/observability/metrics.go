package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "actileap",
		Subsystem: "persistence",
		Name:      "last_workout_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout log persisted to Postgres.",
	})
	badgeUnlockCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "actileap",
		Subsystem: "progression",
		Name:      "badge_unlocks_total",
		Help:      "Badges unlocked, by badge.",
	}, []string{"badge"})
)

func init() {
	prometheus.MustRegister(workoutPersistGauge, badgeUnlockCounter)
}

// RecordWorkoutPersisted updates the persistence watermark gauge.
func RecordWorkoutPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	workoutPersistGauge.Set(float64(ts.Unix()))
}

// RecordBadgeUnlock counts a badge unlock.
func RecordBadgeUnlock(badge string) {
	badgeUnlockCounter.WithLabelValues(badge).Inc()
}
