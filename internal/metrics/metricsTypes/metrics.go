package metricsTypes

import "time"

type IMetricsClient interface {
	Incr(name string, labels []MetricsLabel, value float64) error
	Gauge(name string, value float64, labels []MetricsLabel) error
	Timing(name string, value time.Duration, labels []MetricsLabel) error
	Flush() error
}

type MetricsLabel struct {
	Name  string
	Value string
}

type MetricsType string

var (
	MetricsType_Incr   MetricsType = "incr"
	MetricsType_Gauge  MetricsType = "gauge"
	MetricsType_Timing MetricsType = "timing"
)

type MetricsTypeConfig struct {
	Name   string
	Labels []string
}

var (
	Metric_Incr_Conversion = "conversion_count"
	Metric_Incr_Fetch      = "fetch_count"

	Metric_Gauge_BatchFailures = "batch_failures"

	Metric_Timing_Conversion = "conversion_duration"
	Metric_Timing_Compile    = "compile_duration"
	Metric_Timing_Fetch      = "fetch_duration"
)

var MetricTypes = map[MetricsType][]MetricsTypeConfig{
	MetricsType_Incr: {
		MetricsTypeConfig{
			Name:   Metric_Incr_Conversion,
			Labels: []string{"edge", "status"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_Fetch,
			Labels: []string{"source", "status"},
		},
	},
	MetricsType_Gauge: {
		MetricsTypeConfig{
			Name:   Metric_Gauge_BatchFailures,
			Labels: []string{"input_format"},
		},
	},
	MetricsType_Timing: {
		MetricsTypeConfig{
			Name:   Metric_Timing_Conversion,
			Labels: []string{"edge"},
		},
		MetricsTypeConfig{
			Name:   Metric_Timing_Compile,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Timing_Fetch,
			Labels: []string{"source"},
		},
	},
}
