package abiFetcher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Layr-Labs/abi-tool/internal/tests"
	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"github.com/Layr-Labs/abi-tool/pkg/abiFormat"
	"github.com/Layr-Labs/abi-tool/pkg/artifactStore"
	"github.com/Layr-Labs/abi-tool/pkg/console"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const address = "0x29a954e9e7f12936db89b183ecdf879fbbb99f14"

type staticSource struct {
	abi   string
	err   error
	calls int
}

func (s *staticSource) Name() string {
	return "static"
}

func (s *staticSource) FetchAbi(ctx context.Context, address string) (string, error) {
	s.calls++
	return s.abi, s.err
}

func setup(t *testing.T, source *staticSource) (*AbiFetcher, *bytes.Buffer, string) {
	dir := t.TempDir()
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.March, 7, 9, 5, 0, 0, time.UTC))
	store := artifactStore.NewArtifactStore(&artifactStore.ArtifactStoreConfig{BaseDir: dir}, clock, zap.NewNop())
	out := &bytes.Buffer{}
	return NewAbiFetcher(source, store, console.NewPrinter(out), nil, zap.NewNop()), out, dir
}

func Test_NewFetchRequest(t *testing.T) {
	t.Run("Should require a hex address", func(t *testing.T) {
		_, err := NewFetchRequest("", "json", "")
		assert.True(t, errors.Is(err, abiErrors.ErrInput))

		_, err = NewFetchRequest("0x1234", "json", "")
		assert.True(t, errors.Is(err, abiErrors.ErrInput))
	})
	t.Run("Should default to all outputs", func(t *testing.T) {
		req, err := NewFetchRequest(address, "", "")
		assert.Nil(t, err)
		assert.Equal(t, abiFormat.OutputFormat_All, req.OutputFormat)
	})
	t.Run("Should reject source output", func(t *testing.T) {
		_, err := NewFetchRequest(address, "sol", "")
		assert.True(t, errors.Is(err, abiErrors.ErrUnsupportedConversion))
	})
}

func Test_Fetch(t *testing.T) {
	t.Run("Should write the pretty ABI named after the address", func(t *testing.T) {
		source := &staticSource{abi: tests.SampleAbi}
		f, out, dir := setup(t, source)

		result, err := f.Fetch(context.Background(), &FetchRequest{Address: address, OutputFormat: abiFormat.OutputFormat_Json})
		assert.Nil(t, err)
		assert.Len(t, result.Artifacts, 1)
		assert.Equal(t, filepath.Join(dir, "tmp", "07-03-2024_09:05_"+address+".json"), result.Artifacts[0].Path)

		contents, _ := os.ReadFile(result.Artifacts[0].Path)
		assert.JSONEq(t, tests.SampleAbi, string(contents))
		assert.Contains(t, out.String(), "Command: fetch\ncontract-address: "+address+"\noutput-type: Pretty JSON\n")
	})
	t.Run("Should render every format from one download", func(t *testing.T) {
		source := &staticSource{abi: tests.SampleAbi}
		f, _, _ := setup(t, source)

		result, err := f.Fetch(context.Background(), &FetchRequest{Address: address, OutputFormat: abiFormat.OutputFormat_All})
		assert.Nil(t, err)
		assert.Len(t, result.Artifacts, 3)
		assert.Equal(t, 1, source.calls)
		assert.Equal(t, address+"_abi_mini.json", result.Artifacts[1].Kind)
		assert.Equal(t, address+"_abi_ethers.json", result.Artifacts[2].Kind)
	})
	t.Run("Should keep the pretty artifact when the signature list fails", func(t *testing.T) {
		f, _, _ := setup(t, &staticSource{abi: tests.EventOnlyAbi})

		result, err := f.Fetch(context.Background(), &FetchRequest{Address: address, OutputFormat: abiFormat.OutputFormat_SignatureList})
		assert.True(t, errors.Is(err, abiErrors.ErrConversion))
		assert.Len(t, result.Artifacts, 1)
	})
	t.Run("Should propagate source failures", func(t *testing.T) {
		f, _, dir := setup(t, &staticSource{err: abiErrors.New("fetch_abi", abiErrors.ErrFetch, "NOTOK")})

		_, err := f.Fetch(context.Background(), &FetchRequest{Address: address, OutputFormat: abiFormat.OutputFormat_Json})
		assert.True(t, errors.Is(err, abiErrors.ErrFetch))

		_, statErr := os.Stat(filepath.Join(dir, "tmp"))
		assert.True(t, os.IsNotExist(statErr))
	})
	t.Run("Should reject a non JSON response", func(t *testing.T) {
		f, _, _ := setup(t, &staticSource{abi: "Contract source code not verified"})

		_, err := f.Fetch(context.Background(), &FetchRequest{Address: address, OutputFormat: abiFormat.OutputFormat_Json})
		assert.True(t, errors.Is(err, abiErrors.ErrValidation))
	})
}
