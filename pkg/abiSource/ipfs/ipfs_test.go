package ipfs

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"github.com/Layr-Labs/abi-tool/pkg/clients/ethereum"
	"github.com/agiledragon/gomonkey/v2"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const (
	metadataHash = "b60fb2107d00735df4322e622ca337600d96587527d7009f292b2d09e23613c6"
	metadataCid  = "QmabLnskrd2jGubUVxk9ENFc3gfBphmRtvD2cASHc22g8V"
	gatewayUrl   = "https://ipfs.io/ipfs"
	address      = "0x29a954e9e7f12936db89b183ecdf879fbbb99f14"
)

var bytecode = "0x6080604052348015600f57600080fd5b50" + markerSequence + "1220" + metadataHash + "64736f6c63430008140033"

func setup(cfg *IpfsConfig) *Ipfs {
	l := zap.NewNop()
	ec := ethereum.NewClient(&ethereum.EthereumClientConfig{BaseUrl: "http://localhost:8545"}, l)
	return NewIpfs(ec, &http.Client{Transport: httpmock.DefaultTransport}, cfg, l)
}

func Test_GetIPFSUrlFromBytecode(t *testing.T) {
	ias := setup(&IpfsConfig{Url: gatewayUrl + "/"})

	t.Run("Should build the gateway URL from the metadata hash", func(t *testing.T) {
		url, err := ias.GetIPFSUrlFromBytecode(bytecode)
		assert.Nil(t, err)
		assert.Equal(t, gatewayUrl+"/"+metadataCid, url)
	})
	t.Run("Should fail without the CBOR marker", func(t *testing.T) {
		_, err := ias.GetIPFSUrlFromBytecode("0x6080604052")
		assert.ErrorContains(t, err, "CBOR marker sequence not found")
	})
	t.Run("Should fail on a truncated hash", func(t *testing.T) {
		_, err := ias.GetIPFSUrlFromBytecode("0x" + markerSequence + "1220ab")
		assert.ErrorContains(t, err, "too short")
	})
}

func Test_FetchAbi(t *testing.T) {
	patches := gomonkey.ApplyMethod(reflect.TypeOf(&ethereum.Client{}), "GetCode",
		func(_ *ethereum.Client, _ context.Context, _ string) (string, error) {
			return bytecode, nil
		})
	defer patches.Reset()

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	t.Run("Should return the ABI from the metadata document", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", gatewayUrl+"/"+metadataCid,
			httpmock.NewStringResponder(200, `{"compiler":{"version":"0.8.20"},"output":{"abi":[{"type":"function","name":"test","inputs":[],"outputs":[]}]}}`))

		var progress bytes.Buffer
		ias := setup(&IpfsConfig{Url: gatewayUrl, Progress: true, ProgressWriter: &progress})

		abi, err := ias.FetchAbi(context.Background(), address)
		assert.Nil(t, err)
		assert.Equal(t, `[{"type":"function","name":"test","inputs":[],"outputs":[]}]`, abi)
		assert.Contains(t, progress.String(), "downloading metadata")
	})
	t.Run("Should fail when the gateway errors", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", gatewayUrl+"/"+metadataCid, httpmock.NewStringResponder(504, "timeout"))

		_, err := setup(&IpfsConfig{Url: gatewayUrl}).FetchAbi(context.Background(), address)
		assert.True(t, errors.Is(err, abiErrors.ErrFetch))
		assert.ErrorContains(t, err, "gateway returned status: 504")
	})
	t.Run("Should fail when the metadata has no ABI", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", gatewayUrl+"/"+metadataCid, httpmock.NewStringResponder(200, `{"output":{}}`))

		_, err := setup(&IpfsConfig{Url: gatewayUrl}).FetchAbi(context.Background(), address)
		assert.True(t, errors.Is(err, abiErrors.ErrFetch))
	})
}
