// Package dogstatsd pushes conversion metrics to a DogStatsD agent.
//
// A CLI run is short lived, so values are sent as they are recorded and
// buffered only until Flush rather than aggregated on the client.
package dogstatsd

import (
	"sort"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/Layr-Labs/abi-tool/internal/metrics/metricsTypes"
	"github.com/Layr-Labs/abi-tool/internal/version"
	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"go.uber.org/zap"
)

const Namespace = "abi_tool."

type StatsdClientConfig struct {
	// Addr is host:port of the agent, e.g. "localhost:8125".
	Addr       string
	SampleRate float64
}

type StatsdClient struct {
	client     statsd.ClientInterface
	logger     *zap.Logger
	sampleRate float64
}

func NewStatsdClient(cfg *StatsdClientConfig, l *zap.Logger) (*StatsdClient, error) {
	if cfg.Addr == "" {
		return nil, abiErrors.New("metrics", abiErrors.ErrConfig, "datadog.statsd.url is required when statsd is enabled")
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 || sampleRate > 1 {
		sampleRate = 1
	}

	s, err := statsd.New(cfg.Addr,
		statsd.WithNamespace(Namespace),
		statsd.WithTags([]string{"version:" + version.GetVersion()}),
		statsd.WithoutClientSideAggregation(),
		statsd.WithoutTelemetry(),
	)
	if err != nil {
		l.Sugar().Errorw("Failed to create statsd client",
			zap.String("addr", cfg.Addr),
			zap.Error(err),
		)
		return nil, abiErrors.Wrapf("metrics", abiErrors.ErrConfig, err, "could not reach statsd at %s", cfg.Addr)
	}

	return &StatsdClient{
		client:     s,
		logger:     l,
		sampleRate: sampleRate,
	}, nil
}

// tags renders labels as name:value pairs sorted by name. Labels without a value are skipped.
func tags(labels []metricsTypes.MetricsLabel) []string {
	sorted := make([]metricsTypes.MetricsLabel, 0, len(labels))
	for _, label := range labels {
		if label.Value == "" {
			continue
		}
		sorted = append(sorted, label)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	out := make([]string, 0, len(sorted))
	for _, label := range sorted {
		out = append(out, label.Name+":"+label.Value)
	}
	return out
}

func (s *StatsdClient) Incr(name string, labels []metricsTypes.MetricsLabel, value float64) error {
	return s.client.Count(name, int64(value), tags(labels), s.sampleRate)
}

func (s *StatsdClient) Gauge(name string, value float64, labels []metricsTypes.MetricsLabel) error {
	return s.client.Gauge(name, value, tags(labels), s.sampleRate)
}

// Timing reports durations as distributions so percentiles are computed by the agent.
func (s *StatsdClient) Timing(name string, value time.Duration, labels []metricsTypes.MetricsLabel) error {
	return s.client.Distribution(name, float64(value.Milliseconds()), tags(labels), s.sampleRate)
}

func (s *StatsdClient) Flush() error {
	if err := s.client.Flush(); err != nil {
		s.logger.Sugar().Errorw("Failed to flush statsd metrics", zap.Error(err))
		return abiErrors.Wrap("metrics", abiErrors.ErrIO, err)
	}
	return nil
}
