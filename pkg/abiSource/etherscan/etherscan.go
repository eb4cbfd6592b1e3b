package etherscan

import (
	"context"
	"net/http"
	"time"

	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"github.com/Layr-Labs/abi-tool/pkg/clients/etherscan"
	"github.com/Layr-Labs/abi-tool/pkg/tokenResolver"
	"go.uber.org/zap"
)

const SourceName = "etherscan"

type EtherscanConfig struct {
	Url string

	// ConfigFile holds etherscan_api_key. When empty the token comes from the environment.
	ConfigFile      string
	BackoffSchedule []time.Duration
}

type Etherscan struct {
	httpClient *http.Client
	resolver   tokenResolver.TokenResolver
	config     *EtherscanConfig
	logger     *zap.Logger
}

func NewEtherscan(hc *http.Client, resolver tokenResolver.TokenResolver, cfg *EtherscanConfig, l *zap.Logger) *Etherscan {
	return &Etherscan{
		httpClient: hc,
		resolver:   resolver,
		config:     cfg,
		logger:     l,
	}
}

func (eas *Etherscan) Name() string {
	return SourceName
}

func (eas *Etherscan) FetchAbi(ctx context.Context, address string) (string, error) {
	token, err := eas.resolver.Resolve(eas.config.ConfigFile)
	if err != nil {
		eas.logger.Sugar().Errorw("Failed to resolve the Etherscan API token",
			zap.String("configFile", eas.config.ConfigFile),
			zap.Error(err),
		)
		return "", err
	}

	client := etherscan.NewEtherscanClient(eas.httpClient, eas.logger, &etherscan.EtherscanClientConfig{
		Url:             eas.config.Url,
		ApiKey:          token,
		BackoffSchedule: eas.config.BackoffSchedule,
	})

	abi, err := client.ContractABI(ctx, address)
	if err != nil {
		eas.logger.Sugar().Errorw("Failed to fetch ABI from Etherscan",
			zap.Error(err),
			zap.String("address", address),
		)
		return "", abiErrors.Wrap("fetch_abi", abiErrors.ErrFetch, err)
	}

	eas.logger.Sugar().Infow("Successfully fetched ABI from Etherscan",
		zap.String("address", address),
	)

	return abi, nil
}
