package abiFetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Layr-Labs/abi-tool/internal/metrics"
	"github.com/Layr-Labs/abi-tool/internal/metrics/metricsTypes"
	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"github.com/Layr-Labs/abi-tool/pkg/abiFormat"
	"github.com/Layr-Labs/abi-tool/pkg/abiSource"
	"github.com/Layr-Labs/abi-tool/pkg/artifactStore"
	"github.com/Layr-Labs/abi-tool/pkg/console"
	"github.com/Layr-Labs/abi-tool/pkg/converter"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type FetchRequest struct {
	Address         string
	OutputFormat    abiFormat.OutputFormat
	OutputDirectory string
}

func NewFetchRequest(address string, outputType string, outputDir string) (*FetchRequest, error) {
	if address == "" {
		return nil, abiErrors.New("fetch_request", abiErrors.ErrInput, "contract address missing, specify --addr")
	}
	if !common.IsHexAddress(address) {
		return nil, abiErrors.Newf("fetch_request", abiErrors.ErrInput, "%q is not a contract address", address)
	}
	out, err := abiFormat.ParseOutputFormat(outputType)
	if err != nil {
		return nil, err
	}
	if out == abiFormat.OutputFormat_Source {
		return nil, abiErrors.New("fetch_request", abiErrors.ErrUnsupportedConversion, "fetched ABIs cannot be written as source")
	}
	return &FetchRequest{
		Address:         address,
		OutputFormat:    out,
		OutputDirectory: outputDir,
	}, nil
}

type FetchResult struct {
	Address   string
	Artifacts []*artifactStore.Artifact
}

type AbiFetcher struct {
	source      abiSource.AbiSource
	store       converter.ArtifactWriter
	printer     *console.Printer
	metricsSink *metrics.MetricsSink
	Logger      *zap.Logger
}

func NewAbiFetcher(
	source abiSource.AbiSource,
	store converter.ArtifactWriter,
	p *console.Printer,
	ms *metrics.MetricsSink,
	l *zap.Logger,
) *AbiFetcher {
	if p == nil {
		p = console.NewPrinter(nil)
	}
	if ms == nil {
		ms = metrics.NewNoopMetricsSink()
	}
	return &AbiFetcher{
		source:      source,
		store:       store,
		printer:     p,
		metricsSink: ms,
		Logger:      l,
	}
}

// extraEmitters are written next to the pretty artifact for each output format.
func extraEmitters(out abiFormat.OutputFormat) []converter.Emitter {
	switch out {
	case abiFormat.OutputFormat_JsonMinified:
		return []converter.Emitter{converter.MinifiedEmitter}
	case abiFormat.OutputFormat_SignatureList:
		return []converter.Emitter{converter.SignaturesEmitter}
	case abiFormat.OutputFormat_All:
		return []converter.Emitter{converter.MinifiedEmitter, converter.SignaturesEmitter}
	}
	return nil
}

// Fetch downloads the ABI of req.Address and always writes it as <timestamp>_<address>.json.
// Further formats are rendered from the same download; their failures are joined into the
// returned error without discarding artifacts already written.
func (af *AbiFetcher) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	start := time.Now()
	raw, err := af.source.FetchAbi(ctx, req.Address)
	af.recordFetch(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	trimmed := []byte(strings.TrimSpace(raw))
	if !json.Valid(trimmed) {
		return nil, abiErrors.Newf("fetch", abiErrors.ErrValidation, "%s returned an ABI that is not valid JSON", af.source.Name())
	}

	result := &FetchResult{Address: req.Address}

	pretty, err := converter.RenderPretty(trimmed)
	if err != nil {
		return nil, err
	}
	artifact, err := af.store.Save(req.OutputDirectory, fmt.Sprintf("%s.json", req.Address), af.source.Name(), pretty)
	if err != nil {
		return nil, err
	}
	result.Artifacts = append(result.Artifacts, artifact)
	af.printer.PrintFetch(req.Address, console.Label_Pretty, artifact.Path, pretty)

	errs := make([]error, 0)
	for _, emitter := range extraEmitters(req.OutputFormat) {
		content, err := emitter.Render(trimmed)
		if err != nil {
			af.Logger.Sugar().Errorw("Failed to render fetched ABI",
				zap.String("address", req.Address),
				zap.String("suffix", emitter.Suffix),
				zap.Error(err),
			)
			af.printer.PrintFailure(emitter.Suffix, err)
			errs = append(errs, err)
			continue
		}
		suffix := fmt.Sprintf("%s_%s", req.Address, emitter.Suffix)
		artifact, err := af.store.Save(req.OutputDirectory, suffix, af.source.Name(), content)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		result.Artifacts = append(result.Artifacts, artifact)
		af.printer.PrintFetch(req.Address, emitter.Label, artifact.Path, content)
	}

	af.Logger.Sugar().Infow("Fetched contract ABI",
		zap.String("address", req.Address),
		zap.String("source", af.source.Name()),
		zap.Int("artifacts", len(result.Artifacts)),
	)
	return result, errors.Join(errs...)
}

func (af *AbiFetcher) recordFetch(d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	_ = af.metricsSink.Incr(metricsTypes.Metric_Incr_Fetch, []metricsTypes.MetricsLabel{
		{Name: "source", Value: af.source.Name()},
		{Name: "status", Value: status},
	}, 1)
	_ = af.metricsSink.Timing(metricsTypes.Metric_Timing_Fetch, d, []metricsTypes.MetricsLabel{
		{Name: "source", Value: af.source.Name()},
	})
}
