package dispatcher

import (
	"context"
	"errors"
	"time"

	"github.com/Layr-Labs/abi-tool/internal/metrics"
	"github.com/Layr-Labs/abi-tool/internal/metrics/metricsTypes"
	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"github.com/Layr-Labs/abi-tool/pkg/abiFormat"
	"github.com/Layr-Labs/abi-tool/pkg/artifactStore"
	"github.com/Layr-Labs/abi-tool/pkg/console"
	"github.com/Layr-Labs/abi-tool/pkg/converter"
	"go.uber.org/zap"
)

type ConversionRequest struct {
	InputPath       string
	InputFormat     abiFormat.InputFormat
	OutputFormat    abiFormat.OutputFormat
	OutputDirectory string
}

// NewConversionRequest parses the CLI spellings of the formats.
func NewConversionRequest(inputPath string, inputType string, outputType string, outputDir string) (*ConversionRequest, error) {
	if inputPath == "" {
		return nil, abiErrors.New("conversion_request", abiErrors.ErrInput, "input path missing, specify --in")
	}
	in, err := abiFormat.ParseInputFormat(inputType)
	if err != nil {
		return nil, err
	}
	out, err := abiFormat.ParseOutputFormat(outputType)
	if err != nil {
		return nil, err
	}
	return &ConversionRequest{
		InputPath:       inputPath,
		InputFormat:     in,
		OutputFormat:    out,
		OutputDirectory: outputDir,
	}, nil
}

// batchOrder is the order edges run in for OutputFormat_All.
var batchOrder = map[abiFormat.InputFormat][]abiFormat.OutputFormat{
	abiFormat.InputFormat_Source:       {abiFormat.OutputFormat_Json, abiFormat.OutputFormat_JsonMinified, abiFormat.OutputFormat_SignatureList},
	abiFormat.InputFormat_Json:         {abiFormat.OutputFormat_JsonMinified, abiFormat.OutputFormat_SignatureList},
	abiFormat.InputFormat_JsonMinified: {abiFormat.OutputFormat_Json, abiFormat.OutputFormat_SignatureList},
}

// Edges resolves a request to the edges it runs, in order.
func Edges(req *ConversionRequest) []converter.Edge {
	if req.OutputFormat != abiFormat.OutputFormat_All {
		return []converter.Edge{{From: req.InputFormat, To: req.OutputFormat}}
	}
	outputs := batchOrder[req.InputFormat]
	edges := make([]converter.Edge, 0, len(outputs))
	for _, out := range outputs {
		edges = append(edges, converter.Edge{From: req.InputFormat, To: out})
	}
	return edges
}

type EdgeConverter interface {
	Convert(ctx context.Context, edge converter.Edge, inputPath string, outputDir string) (*artifactStore.Artifact, error)
}

type EdgeResult struct {
	Edge     converter.Edge
	Artifact *artifactStore.Artifact
	Err      error
}

type BatchResult struct {
	Request *ConversionRequest
	Results []*EdgeResult
}

func (br *BatchResult) Artifacts() []*artifactStore.Artifact {
	artifacts := make([]*artifactStore.Artifact, 0, len(br.Results))
	for _, r := range br.Results {
		if r.Artifact != nil {
			artifacts = append(artifacts, r.Artifact)
		}
	}
	return artifacts
}

func (br *BatchResult) Failures() []*EdgeResult {
	failures := make([]*EdgeResult, 0)
	for _, r := range br.Results {
		if r.Err != nil {
			failures = append(failures, r)
		}
	}
	return failures
}

// Err joins every edge failure, or returns nil when all edges succeeded.
func (br *BatchResult) Err() error {
	errs := make([]error, 0)
	for _, f := range br.Failures() {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

type Dispatcher struct {
	converter   EdgeConverter
	printer     *console.Printer
	metricsSink *metrics.MetricsSink
	logger      *zap.Logger
}

func NewDispatcher(c EdgeConverter, p *console.Printer, ms *metrics.MetricsSink, l *zap.Logger) *Dispatcher {
	if p == nil {
		p = console.NewPrinter(nil)
	}
	if ms == nil {
		ms = metrics.NewNoopMetricsSink()
	}
	return &Dispatcher{
		converter:   c,
		printer:     p,
		metricsSink: ms,
		logger:      l,
	}
}

// Dispatch runs every edge of req. Edges are independent: a failing edge is recorded and the
// remaining edges still run. The returned error is BatchResult.Err().
func (d *Dispatcher) Dispatch(ctx context.Context, req *ConversionRequest) (*BatchResult, error) {
	edges := Edges(req)
	result := &BatchResult{
		Request: req,
		Results: make([]*EdgeResult, 0, len(edges)),
	}

	for _, edge := range edges {
		if err := ctx.Err(); err != nil {
			result.Results = append(result.Results, &EdgeResult{Edge: edge, Err: err})
			continue
		}
		result.Results = append(result.Results, d.runEdge(ctx, edge, req))
	}

	failures := result.Failures()
	if req.OutputFormat == abiFormat.OutputFormat_All {
		_ = d.metricsSink.Gauge(metricsTypes.Metric_Gauge_BatchFailures, float64(len(failures)), []metricsTypes.MetricsLabel{
			{Name: "input_format", Value: req.InputFormat.String()},
		})
	}
	if len(failures) > 0 {
		d.logger.Sugar().Errorw("Conversion finished with failures",
			zap.String("input", req.InputPath),
			zap.Int("edges", len(edges)),
			zap.Int("failures", len(failures)),
		)
	}
	return result, result.Err()
}

func (d *Dispatcher) runEdge(ctx context.Context, edge converter.Edge, req *ConversionRequest) *EdgeResult {
	start := time.Now()
	artifact, err := d.converter.Convert(ctx, edge, req.InputPath, req.OutputDirectory)
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "failure"
		d.logger.Sugar().Errorw("Conversion failed",
			zap.String("edge", edge.String()),
			zap.String("input", req.InputPath),
			zap.Error(err),
		)
		d.printer.PrintFailure(edge.String(), err)
	}

	_ = d.metricsSink.Incr(metricsTypes.Metric_Incr_Conversion, []metricsTypes.MetricsLabel{
		{Name: "edge", Value: edge.String()},
		{Name: "status", Value: status},
	}, 1)
	_ = d.metricsSink.Timing(metricsTypes.Metric_Timing_Conversion, duration, []metricsTypes.MetricsLabel{
		{Name: "edge", Value: edge.String()},
	})

	return &EdgeResult{Edge: edge, Artifact: artifact, Err: err}
}
