package ipfs

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"github.com/Layr-Labs/abi-tool/pkg/abiSource"
	"github.com/Layr-Labs/abi-tool/pkg/clients/ethereum"
	"github.com/btcsuite/btcutil/base58"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

const (
	SourceName = "ipfs"

	// markerSequence is the CBOR encoding of {"ipfs": bytes(34)} appended to solc bytecode.
	markerSequence = "a264697066735822"
	ipfsHashHexLen = 68
)

type IpfsConfig struct {
	Url string

	// Progress renders a download bar on ProgressWriter.
	Progress       bool
	ProgressWriter io.Writer
}

type Ipfs struct {
	ethereumClient *ethereum.Client
	httpClient     *http.Client
	logger         *zap.Logger
	config         *IpfsConfig
}

func NewIpfs(ec *ethereum.Client, hc *http.Client, cfg *IpfsConfig, l *zap.Logger) *Ipfs {
	return &Ipfs{
		ethereumClient: ec,
		httpClient:     hc,
		logger:         l,
		config:         cfg,
	}
}

func (ias *Ipfs) Name() string {
	return SourceName
}

// GetIPFSUrlFromBytecode locates the metadata hash in the bytecode trailer and returns its
// gateway URL.
func (ias *Ipfs) GetIPFSUrlFromBytecode(bytecode string) (string, error) {
	index := strings.Index(strings.ToLower(bytecode), markerSequence)
	if index == -1 {
		return "", fmt.Errorf("CBOR marker sequence not found")
	}

	startIndex := index + len(markerSequence)
	if len(bytecode) < startIndex+ipfsHashHexLen {
		return "", fmt.Errorf("bytecode too short to contain complete IPFS hash")
	}

	hash, err := hex.DecodeString(bytecode[startIndex : startIndex+ipfsHashHexLen])
	if err != nil {
		return "", fmt.Errorf("failed to decode IPFS hash: %v", err)
	}

	return fmt.Sprintf("%s/%s", strings.TrimRight(ias.config.Url, "/"), base58.Encode(hash)), nil
}

func (ias *Ipfs) FetchAbi(ctx context.Context, address string) (string, error) {
	bytecode, err := ias.ethereumClient.GetCode(ctx, address)
	if err != nil {
		ias.logger.Sugar().Errorw("Failed to get the contract bytecode",
			zap.Error(err),
			zap.String("address", address),
		)
		return "", abiErrors.Wrap("fetch_abi", abiErrors.ErrFetch, err)
	}

	url, err := ias.GetIPFSUrlFromBytecode(bytecode)
	if err != nil {
		ias.logger.Sugar().Errorw("Failed to get IPFS URL from bytecode",
			zap.Error(err),
			zap.String("address", address),
		)
		return "", abiErrors.Wrap("fetch_abi", abiErrors.ErrFetch, err)
	}
	ias.logger.Sugar().Debugw("Successfully retrieved IPFS URL",
		zap.String("address", address),
		zap.String("ipfsUrl", url),
	)

	content, err := ias.download(ctx, url)
	if err != nil {
		ias.logger.Sugar().Errorw("Failed to download metadata from IPFS",
			zap.Error(err),
			zap.String("address", address),
			zap.String("ipfsUrl", url),
		)
		return "", abiErrors.Wrap("fetch_abi", abiErrors.ErrFetch, err)
	}

	var result abiSource.Response
	if err := json.Unmarshal(content, &result); err != nil {
		ias.logger.Sugar().Errorw("Failed to parse json from IPFS URL content",
			zap.Error(err),
		)
		return "", abiErrors.Wrapf("fetch_abi", abiErrors.ErrFetch, err, "invalid metadata document")
	}
	if len(result.Output.ABI) == 0 {
		return "", abiErrors.New("fetch_abi", abiErrors.ErrFetch, "metadata document has no ABI")
	}

	ias.logger.Sugar().Infow("Successfully fetched ABI from IPFS",
		zap.String("address", address),
	)
	return string(result.Output.ABI), nil
}

func (ias *Ipfs) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := ias.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status: %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	var dest io.Writer = &buf
	if ias.config.Progress && ias.config.ProgressWriter != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(ias.config.ProgressWriter),
			progressbar.OptionSetDescription("downloading metadata"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(ias.config.ProgressWriter)
			}),
		)
		defer bar.Finish()
		dest = io.MultiWriter(&buf, bar)
	}

	if _, err := io.Copy(dest, resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
