package etherscan

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"github.com/Layr-Labs/abi-tool/pkg/tokenResolver"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func Test_Etherscan(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	mockUrl := "https://api.etherscan.io/api"
	mockHttpClient := &http.Client{
		Transport: httpmock.DefaultTransport,
	}
	cfg := &EtherscanConfig{Url: mockUrl, BackoffSchedule: []time.Duration{time.Millisecond}}
	address := "0x29a954e9e7f12936db89b183ecdf879fbbb99f14"

	t.Run("Should fetch the ABI with the resolved token", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponderWithQuery("GET", mockUrl, map[string]string{
			"module":  "contract",
			"action":  "getabi",
			"address": address,
			"apikey":  "token-123",
		}, httpmock.NewStringResponder(200, `{
			"status": "1",
			"message": "OK",
			"result": "[{\"constant\":true,\"inputs\":[],\"name\":\"get\",\"outputs\":[{\"name\":\"\",\"type\":\"uint256\"}],\"payable\":false,\"stateMutability\":\"view\",\"type\":\"function\"}]"
		}`))

		eas := NewEtherscan(mockHttpClient, &tokenResolver.StaticTokenResolver{Token: "token-123"}, cfg, zap.NewNop())
		abi, err := eas.FetchAbi(context.Background(), address)
		assert.Nil(t, err)
		assert.Equal(t, `[{"constant":true,"inputs":[],"name":"get","outputs":[{"name":"","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`, abi)
	})
	t.Run("Should tag server errors as fetch errors", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", mockUrl, httpmock.NewStringResponder(200, `{
			"status": "0",
			"message": "NOTOK",
			"result": "Error fetching ABI"
		}`))

		eas := NewEtherscan(mockHttpClient, &tokenResolver.StaticTokenResolver{Token: "token-123"}, cfg, zap.NewNop())
		abi, err := eas.FetchAbi(context.Background(), address)
		assert.Equal(t, "", abi)
		assert.True(t, errors.Is(err, abiErrors.ErrFetch))
	})
	t.Run("Should not call the API without a token", func(t *testing.T) {
		httpmock.Reset()

		eas := NewEtherscan(mockHttpClient, &tokenResolver.StaticTokenResolver{}, cfg, zap.NewNop())
		_, err := eas.FetchAbi(context.Background(), address)
		assert.True(t, errors.Is(err, abiErrors.ErrConfig))
		assert.Equal(t, 0, httpmock.GetTotalCallCount())
	})
}
