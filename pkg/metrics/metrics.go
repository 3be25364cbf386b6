// Package metrics reports to New Relic. Every function is a no-op unless a
// New Relic application was placed on the context with NewContext.
package metrics

import (
	"context"
	"time"
)

// RecordEvent records a custom event named eventName.
func RecordEvent(ctx context.Context, eventName string, attributes map[string]interface{}) {
	if nr, ok := fromContext(ctx); ok {
		nr.RecordCustomEvent(eventName, attributes)
	}
}

// RecordDuration records duration in milliseconds under metricName.
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	if nr, ok := fromContext(ctx); ok {
		nr.RecordCustomMetric(metricName, float64(duration)/float64(time.Millisecond))
	}
}
