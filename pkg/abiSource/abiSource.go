package abiSource

import (
	"context"
	"encoding/json"
)

// AbiSource retrieves the published ABI of a deployed contract.
type AbiSource interface {
	Name() string
	FetchAbi(ctx context.Context, address string) (string, error)
}

// Response is the solc metadata document pinned to IPFS.
type Response struct {
	Output struct {
		ABI json.RawMessage `json:"abi"`
	} `json:"output"`
}
