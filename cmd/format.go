package cmd

import (
	"context"
	"io"

	"github.com/Layr-Labs/abi-tool/internal/config"
	"github.com/Layr-Labs/abi-tool/internal/metrics"
	"github.com/Layr-Labs/abi-tool/pkg/artifactStore"
	"github.com/Layr-Labs/abi-tool/pkg/compiler"
	"github.com/Layr-Labs/abi-tool/pkg/console"
	"github.com/Layr-Labs/abi-tool/pkg/converter"
	"github.com/Layr-Labs/abi-tool/pkg/dispatcher"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

func newArtifactStore(cfg *config.Config, l *zap.Logger) *artifactStore.ArtifactStore {
	return artifactStore.NewArtifactStore(&artifactStore.ArtifactStoreConfig{
		UniqueNames: cfg.ConversionConfig.UniqueNames,
		Manifest:    cfg.ConversionConfig.Manifest,
	}, clockwork.NewRealClock(), l)
}

func runFormat(ctx context.Context, cfg *config.Config, sink *metrics.MetricsSink, stdout io.Writer, l *zap.Logger) error {
	req, err := dispatcher.NewConversionRequest(
		cfg.ConversionConfig.InputPath,
		cfg.ConversionConfig.InputType,
		cfg.ConversionConfig.OutputType,
		cfg.ConversionConfig.OutputPath,
	)
	if err != nil {
		return err
	}

	printer := console.NewPrinter(stdout)
	c := compiler.NewCompiler(&compiler.CompilerConfig{
		Path:           cfg.SolcConfig.Path,
		Version:        cfg.SolcConfig.Version,
		Timeout:        cfg.SolcConfig.Timeout,
		MaxBannerLines: cfg.SolcConfig.MaxBannerLines,
	}, sink, l)
	conv := converter.NewConverter(c, newArtifactStore(cfg, l), printer, l)
	d := dispatcher.NewDispatcher(conv, printer, sink, l)

	l.Sugar().Debugw("Dispatching conversion",
		zap.String("input", req.InputPath),
		zap.String("inputFormat", req.InputFormat.String()),
		zap.String("outputFormat", req.OutputFormat.String()),
	)
	_, err = d.Dispatch(ctx, req)
	return err
}
