package cmd

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Layr-Labs/abi-tool/internal/config"
	"github.com/Layr-Labs/abi-tool/internal/metrics"
	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"github.com/Layr-Labs/abi-tool/pkg/abiFetcher"
	"github.com/Layr-Labs/abi-tool/pkg/abiSource"
	"github.com/Layr-Labs/abi-tool/pkg/abiSource/etherscan"
	"github.com/Layr-Labs/abi-tool/pkg/abiSource/ipfs"
	"github.com/Layr-Labs/abi-tool/pkg/clients/ethereum"
	"github.com/Layr-Labs/abi-tool/pkg/console"
	"github.com/Layr-Labs/abi-tool/pkg/tokenResolver"
	"go.uber.org/zap"
)

func newAbiSource(cfg *config.Config, l *zap.Logger) (abiSource.AbiSource, error) {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	switch cfg.FetchConfig.AbiSource {
	case config.AbiSource_Etherscan:
		return etherscan.NewEtherscan(httpClient, tokenResolver.NewDefaultTokenResolver(), &etherscan.EtherscanConfig{
			Url:        cfg.EtherscanConfig.Url,
			ConfigFile: cfg.FetchConfig.ConfigFile,
		}, l), nil
	case config.AbiSource_Ipfs:
		if cfg.EthereumRpcConfig.BaseUrl == "" {
			return nil, abiErrors.New("abi_source", abiErrors.ErrConfig, "the ipfs source requires --ethereum.rpc-url")
		}
		ec := ethereum.NewClient(&ethereum.EthereumClientConfig{BaseUrl: cfg.EthereumRpcConfig.BaseUrl}, l)
		return ipfs.NewIpfs(ec, httpClient, &ipfs.IpfsConfig{
			Url:            cfg.IpfsConfig.Url,
			Progress:       cfg.FetchConfig.Progress,
			ProgressWriter: os.Stderr,
		}, l), nil
	}
	return nil, abiErrors.Newf("abi_source", abiErrors.ErrConfig, "unknown abi source %q", cfg.FetchConfig.AbiSource)
}

func runFetch(ctx context.Context, cfg *config.Config, sink *metrics.MetricsSink, stdout io.Writer, l *zap.Logger) error {
	req, err := abiFetcher.NewFetchRequest(
		cfg.FetchConfig.Address,
		cfg.ConversionConfig.OutputType,
		cfg.ConversionConfig.OutputPath,
	)
	if err != nil {
		return err
	}

	source, err := newAbiSource(cfg, l)
	if err != nil {
		return err
	}

	af := abiFetcher.NewAbiFetcher(source, newArtifactStore(cfg, l), console.NewPrinter(stdout), sink, l)
	_, err = af.Fetch(ctx, req)
	return err
}
