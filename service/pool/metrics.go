package pool

import (
	"errors"
	"time"

	"poolmanager/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pool",
		Name:      "operations_total",
		Help:      "ledger operations by action and result",
	}, []string{"action", "result"})

	operationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pool",
		Name:      "operation_seconds",
		Help:      "ledger operation latency including capability calls",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action"})
)

// observe record the outcome of an operation started at start
func observe(action core.EventAction, start time.Time, err *error) {
	result := "ok"
	if err != nil && *err != nil {
		result = "error"

		var code core.ErrorCode
		if errors.As(*err, &code) {
			result = code.Message()
		}
	}

	operationsTotal.WithLabelValues(string(action), result).Inc()
	operationSeconds.WithLabelValues(string(action)).Observe(time.Since(start).Seconds())
}
