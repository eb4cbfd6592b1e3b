package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var DefaultBackoffSchedule = []time.Duration{
	1 * time.Second,
	3 * time.Second,
	10 * time.Second,
	30 * time.Second,
	60 * time.Second,
}

var rateLimitPattern = regexp.MustCompile(`^Max rate limit reached`)

type EtherscanClientConfig struct {
	Url    string
	ApiKey string

	// BackoffSchedule is the wait between attempts when the rate limit is hit.
	BackoffSchedule []time.Duration
}

type EtherscanClient struct {
	httpClient *http.Client
	Logger     *zap.Logger
	Config     *EtherscanClientConfig

	sleep func(ctx context.Context, d time.Duration) error
}

type EtherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func NewEtherscanClient(hc *http.Client, l *zap.Logger, cfg *EtherscanClientConfig) *EtherscanClient {
	if cfg.BackoffSchedule == nil {
		cfg.BackoffSchedule = DefaultBackoffSchedule
	}
	return &EtherscanClient{
		httpClient: hc,
		Logger:     l,
		Config:     cfg,
		sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (ec *EtherscanClient) makeRequest(ctx context.Context, values url.Values) (*EtherscanResponse, error) {
	values.Set("apikey", ec.Config.ApiKey)

	fullUrl := fmt.Sprintf("%s?%s", ec.Config.Url, values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullUrl, http.NoBody)
	if err != nil {
		ec.Logger.Sugar().Errorw("Failed to create the Etherscan HTTP request",
			zap.Error(err),
		)
		return nil, err
	}

	req.Header.Set("User-Agent", "etherscan-api(Go)")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	res, err := ec.httpClient.Do(req)
	if err != nil {
		ec.Logger.Sugar().Errorw("Failed to perform the Etherscan HTTP request",
			zap.Error(err),
		)
		return nil, errors.Wrap(err, "etherscan request failed")
	}
	defer res.Body.Close()

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		ec.Logger.Sugar().Errorw("Failed to read the Etherscan HTTP response",
			zap.Error(err),
		)
		return nil, errors.Wrap(err, "failed to read etherscan response")
	}
	parsedbody := &EtherscanResponse{}
	if err := json.Unmarshal(bodyBytes, parsedbody); err != nil {
		ec.Logger.Sugar().Errorw("Failed to parse json from the Etherscan URL content",
			zap.Error(err),
		)
		return nil, errors.Wrap(err, "failed to parse etherscan response")
	}

	if res.StatusCode != http.StatusOK {
		return parsedbody, fmt.Errorf("response status %v %s, response body: %s", res.StatusCode, res.Status, parsedbody.Message)
	}

	if parsedbody.Status != "1" {
		return parsedbody, fmt.Errorf("etherscan server: %s: %s", parsedbody.Message, strings.Trim(string(parsedbody.Result), "\""))
	}

	ec.Logger.Sugar().Debug("Successfully fetched data from Etherscan")
	return parsedbody, nil
}

func (ec *EtherscanClient) makeRequestWithBackoff(ctx context.Context, values url.Values) (*EtherscanResponse, error) {
	for _, backoff := range ec.Config.BackoffSchedule {
		res, err := ec.makeRequest(ctx, values)
		if res == nil {
			return nil, err
		}

		if res.Status == "1" && err == nil {
			return res, nil
		}

		stringResult := strings.ReplaceAll(string(res.Result), "\"", "")
		if !rateLimitPattern.MatchString(stringResult) {
			return res, err
		}

		ec.Logger.Sugar().Infow("Rate limit reached, backing off",
			zap.Duration("backoff", backoff),
		)

		if err := ec.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to make the Etherscan request after backoff")
}

func (ec *EtherscanClient) buildBaseUrlParams(module string, action string) url.Values {
	return url.Values{
		"module": []string{module},
		"action": []string{action},
	}
}

// ContractABI returns the verified ABI of address. Etherscan returns it as a JSON encoded string.
func (ec *EtherscanClient) ContractABI(ctx context.Context, address string) (string, error) {
	baseUrlParams := ec.buildBaseUrlParams("contract", "getabi")
	baseUrlParams.Add("address", address)

	res, err := ec.makeRequestWithBackoff(ctx, baseUrlParams)
	if err != nil {
		ec.Logger.Sugar().Errorw("Failed to make the Etherscan HTTP request with backoff",
			zap.Error(err),
		)
		return "", err
	}

	var decodedOutput string
	err = json.Unmarshal(res.Result, &decodedOutput)
	if err != nil {
		ec.Logger.Sugar().Errorw("Failed to decode output from Etherscan URL content",
			zap.Error(err),
		)
		return "", errors.Wrap(err, "failed to decode etherscan result")
	}

	return decodedOutput, nil
}
