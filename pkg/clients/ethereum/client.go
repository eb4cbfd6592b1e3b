package ethereum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type RequestMethod struct {
	Name    string
	Timeout time.Duration
}

type RPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      uint   `json:"id"`
}

type RPCError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint           `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

var jsonRPCVersion = "2.0"

var DefaultBackoffs = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

type EthereumClientConfig struct {
	BaseUrl string

	// Backoffs is the wait after each failed attempt; its length is the attempt count.
	Backoffs []time.Duration
}

type Client struct {
	Logger       *zap.Logger
	httpClient   *http.Client
	clientConfig *EthereumClientConfig
}

func NewClient(cfg *EthereumClientConfig, l *zap.Logger) *Client {
	if cfg.Backoffs == nil {
		cfg.Backoffs = DefaultBackoffs
	}
	client := &http.Client{
		Timeout: time.Second * 10,
	}

	l.Sugar().Debugw("Creating new Ethereum client", zap.String("baseUrl", cfg.BaseUrl))

	return &Client{
		httpClient:   client,
		Logger:       l,
		clientConfig: cfg,
	}
}

func (c *Client) SetHttpClient(client *http.Client) {
	c.httpClient = client
}

// GetCode returns the deployed bytecode of address as a 0x prefixed hex string.
func (c *Client) GetCode(ctx context.Context, address string) (string, error) {
	rpcRequest := GetCodeRequest(address, 1)

	res, err := c.Call(ctx, rpcRequest, RPCMethod_getCode.RequestMethod.Timeout)
	if err != nil {
		return "", err
	}
	bytecode, err := RPCMethod_getCode.ResponseParser(res.Result)
	if err != nil {
		c.Logger.Sugar().Errorw("failed to get contract bytecode",
			zap.Error(err),
			zap.String("raw response", string(res.Result)),
		)
		return "", err
	}
	return bytecode, nil
}

func (c *Client) call(ctx context.Context, rpcRequest *RPCRequest, timeout time.Duration) (*RPCResponse, error) {
	requestBody, err := json.Marshal(rpcRequest)
	if err != nil {
		return nil, err
	}
	c.Logger.Sugar().Debugw("Request body", zap.String("requestBody", string(requestBody)))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.clientConfig.BaseUrl, bytes.NewReader(requestBody))
	if err != nil {
		return nil, errors.Wrap(err, "failed to make request")
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read body")
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received http error code %+v", response.StatusCode)
	}

	destination := &RPCResponse{}
	if err := json.Unmarshal(responseBody, destination); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	if destination.Error != nil {
		return nil, fmt.Errorf("received error response: %+v", destination.Error)
	}

	return destination, nil
}

func (c *Client) Call(ctx context.Context, rpcRequest *RPCRequest, timeout time.Duration) (*RPCResponse, error) {
	for i, backoff := range c.clientConfig.Backoffs {
		res, err := c.call(ctx, rpcRequest, timeout)
		if err == nil {
			if i > 0 {
				c.Logger.Sugar().Infow("Successfully called after backoff",
					zap.Int("attempt", i+1),
					zap.String("method", rpcRequest.Method),
				)
			}
			return res, nil
		}
		c.Logger.Sugar().Errorw("Failed to call",
			zap.Error(err),
			zap.Duration("backoff", backoff),
			zap.String("method", rpcRequest.Method),
		)
		if i == len(c.clientConfig.Backoffs)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	c.Logger.Sugar().Errorw("Exceeded retries for Call", zap.String("method", rpcRequest.Method))
	return nil, fmt.Errorf("exceeded retries for %s", rpcRequest.Method)
}
