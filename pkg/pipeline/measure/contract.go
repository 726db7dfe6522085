package measure

import "time"

type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	// Names returns the metric names in the order they were added.
	Names() []string
	AllMetrics() map[string]Metric
}

type Metric interface {
	AddDuration(elapsed time.Duration)
	AddFailure()
	AVGDuration() time.Duration
	TotalDuration() time.Duration
	Count() int64
	Failures() int64
}
