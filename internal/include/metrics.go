package include

import "time"

// Metrics receives one observation per resolved directive.
type Metrics interface {
	ObserveResolution(state State, duration time.Duration)
}

// NoOpMetrics returns a recorder that drops every observation.
func NoOpMetrics() Metrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) ObserveResolution(State, time.Duration) {}
