package failure

import "github.com/prometheus/client_golang/prometheus"

var failureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "actileap",
	Subsystem: "store",
	Name:      "failures_total",
	Help:      "Number of store failures surfaced on the reporting channel, labeled by operation.",
}, []string{"operation"})

func init() {
	prometheus.MustRegister(failureCounter)
}

func recordFailure(op Operation) {
	failureCounter.WithLabelValues(string(op)).Inc()
}
