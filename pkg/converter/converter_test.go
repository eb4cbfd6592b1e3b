package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
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
	"pgregory.net/rapid"
)

const compactAbi = `[{"inputs":[{"internalType":"address","name":"to","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}]`

type fixture struct {
	converter *Converter
	store     *artifactStore.ArtifactStore
	clock     *clockwork.FakeClock
	console   *bytes.Buffer
	compiles  int
	dir       string
}

func setup(t *testing.T, compiled string, compileErr error) *fixture {
	f := &fixture{
		dir:     t.TempDir(),
		clock:   clockwork.NewFakeClockAt(time.Date(2024, time.March, 7, 9, 5, 0, 0, time.UTC)),
		console: &bytes.Buffer{},
	}
	f.store = artifactStore.NewArtifactStore(&artifactStore.ArtifactStoreConfig{BaseDir: f.dir}, f.clock, zap.NewNop())
	compiler := SourceCompilerFunc(func(ctx context.Context, sourcePath string) ([]byte, error) {
		f.compiles++
		if compileErr != nil {
			return nil, compileErr
		}
		return []byte(compiled), nil
	})
	f.converter = NewConverter(compiler, f.store, console.NewPrinter(f.console), zap.NewNop())
	return f
}

func readArtifact(t *testing.T, a *artifactStore.Artifact) string {
	contents, err := os.ReadFile(a.Path)
	assert.Nil(t, err)
	return string(contents)
}

func Test_Convert_Source(t *testing.T) {
	t.Run("Should write the compiler output verbatim for json_mini", func(t *testing.T) {
		f := setup(t, compactAbi, nil)
		source := tests.WriteFile(t, f.dir, "sample.sol", tests.SampleSource)

		artifact, err := f.converter.Convert(context.Background(), Edge{From: abiFormat.InputFormat_Source, To: abiFormat.OutputFormat_JsonMinified}, source, "")
		assert.Nil(t, err)
		assert.Equal(t, filepath.Join(f.dir, "tmp", "07-03-2024_09:05_abi_mini.json"), artifact.Path)
		assert.Equal(t, compactAbi, readArtifact(t, artifact))
		assert.Contains(t, f.console.String(), "output-type: JSON-minified")
	})
	t.Run("Should pretty print the compiler output", func(t *testing.T) {
		f := setup(t, compactAbi, nil)
		source := tests.WriteFile(t, f.dir, "sample.sol", tests.SampleSource)

		artifact, err := f.converter.Convert(context.Background(), Edge{From: abiFormat.InputFormat_Source, To: abiFormat.OutputFormat_Json}, source, "")
		assert.Nil(t, err)
		assert.True(t, strings.HasSuffix(artifact.Path, "_abi_pretty.json"))

		contents := readArtifact(t, artifact)
		assert.True(t, strings.HasPrefix(contents, "[\n  {\n    \"inputs\": ["))
		assert.JSONEq(t, compactAbi, contents)
	})
	t.Run("Should list signatures without a scratch file", func(t *testing.T) {
		f := setup(t, compactAbi, nil)
		source := tests.WriteFile(t, f.dir, "sample.sol", tests.SampleSource)

		artifact, err := f.converter.Convert(context.Background(), Edge{From: abiFormat.InputFormat_Source, To: abiFormat.OutputFormat_SignatureList}, source, "")
		assert.Nil(t, err)
		assert.Equal(t, "[\n  \"transfer(address,uint256)\"\n]", readArtifact(t, artifact))

		entries, _ := os.ReadDir(filepath.Join(f.dir, "tmp"))
		assert.Len(t, entries, 1)
	})
	t.Run("Should propagate compiler failures and write nothing", func(t *testing.T) {
		f := setup(t, "", abiErrors.New("validate_source", abiErrors.ErrValidation, "not a recognized compilation unit"))

		_, err := f.converter.Convert(context.Background(), Edge{From: abiFormat.InputFormat_Source, To: abiFormat.OutputFormat_Json}, "x.sol", "")
		assert.True(t, errors.Is(err, abiErrors.ErrValidation))

		_, statErr := os.Stat(filepath.Join(f.dir, "tmp"))
		assert.True(t, os.IsNotExist(statErr))
	})
	t.Run("Should overwrite within a minute and keep both across minutes", func(t *testing.T) {
		f := setup(t, compactAbi, nil)
		source := tests.WriteFile(t, f.dir, "sample.sol", tests.SampleSource)
		edge := Edge{From: abiFormat.InputFormat_Source, To: abiFormat.OutputFormat_JsonMinified}

		first, _ := f.converter.Convert(context.Background(), edge, source, "")
		f.clock.Advance(30 * time.Second)
		second, _ := f.converter.Convert(context.Background(), edge, source, "")
		assert.Equal(t, first.Path, second.Path)

		f.clock.Advance(time.Minute)
		third, _ := f.converter.Convert(context.Background(), edge, source, "")
		assert.NotEqual(t, first.Path, third.Path)
		assert.Equal(t, compactAbi, readArtifact(t, first))
		assert.Equal(t, compactAbi, readArtifact(t, third))
	})
}

func Test_Convert_Json(t *testing.T) {
	t.Run("Should minify a pretty ABI", func(t *testing.T) {
		f := setup(t, "", nil)
		input := tests.WriteFile(t, f.dir, "erc20.json", tests.SampleAbi)
		out := filepath.Join(f.dir, "out")

		artifact, err := f.converter.Convert(context.Background(), Edge{From: abiFormat.InputFormat_Json, To: abiFormat.OutputFormat_JsonMinified}, input, out)
		assert.Nil(t, err)
		assert.Equal(t, out, filepath.Dir(artifact.Path))

		contents := readArtifact(t, artifact)
		assert.NotContains(t, contents, "\n")
		assert.JSONEq(t, tests.SampleAbi, contents)
		assert.Equal(t, 0, f.compiles)
	})
	t.Run("Should list signatures in document order", func(t *testing.T) {
		f := setup(t, "", nil)
		input := tests.WriteFile(t, f.dir, "erc20.json", tests.SampleAbi)

		artifact, err := f.converter.Convert(context.Background(), Edge{From: abiFormat.InputFormat_Json, To: abiFormat.OutputFormat_SignatureList}, input, "")
		assert.Nil(t, err)

		var signatures []string
		assert.Nil(t, json.Unmarshal([]byte(readArtifact(t, artifact)), &signatures))
		assert.Equal(t, tests.SampleSignatures, signatures)
	})
	t.Run("Should fail on an ABI without functions", func(t *testing.T) {
		f := setup(t, "", nil)
		input := tests.WriteFile(t, f.dir, "events.json", tests.EventOnlyAbi)

		_, err := f.converter.Convert(context.Background(), Edge{From: abiFormat.InputFormat_JsonMinified, To: abiFormat.OutputFormat_SignatureList}, input, "")
		assert.True(t, errors.Is(err, abiErrors.ErrConversion))
		assert.Contains(t, err.Error(), "ABI could not be read and parsed")

		_, statErr := os.Stat(filepath.Join(f.dir, "tmp"))
		assert.True(t, os.IsNotExist(statErr))
	})
	t.Run("Should reject invalid JSON", func(t *testing.T) {
		f := setup(t, "", nil)
		input := tests.WriteFile(t, f.dir, "broken.json", `[{"type":`)

		_, err := f.converter.Convert(context.Background(), Edge{From: abiFormat.InputFormat_Json, To: abiFormat.OutputFormat_JsonMinified}, input, "")
		assert.True(t, errors.Is(err, abiErrors.ErrValidation))
	})
	t.Run("Should fail with an input error for a missing file", func(t *testing.T) {
		f := setup(t, "", nil)

		_, err := f.converter.Convert(context.Background(), Edge{From: abiFormat.InputFormat_Json, To: abiFormat.OutputFormat_JsonMinified}, filepath.Join(f.dir, "missing.json"), "")
		assert.True(t, errors.Is(err, abiErrors.ErrInput))
	})
	t.Run("Should reject conversions back to source", func(t *testing.T) {
		f := setup(t, "", nil)
		input := tests.WriteFile(t, f.dir, "erc20.json", tests.SampleAbi)

		for _, from := range []abiFormat.InputFormat{abiFormat.InputFormat_Json, abiFormat.InputFormat_JsonMinified} {
			_, err := f.converter.Convert(context.Background(), Edge{From: from, To: abiFormat.OutputFormat_Source}, input, "")
			assert.True(t, errors.Is(err, abiErrors.ErrUnsupportedConversion))
		}
		assert.Equal(t, "", f.console.String())
	})
}

func Test_RenderSignatures(t *testing.T) {
	t.Run("Should emit one signature per function entry", func(t *testing.T) {
		raw := `[
			{"type":"function","name":"mint","inputs":[{"name":"a","type":"uint256"}],"outputs":[]},
			{"type":"function","name":"mint","inputs":[{"name":"b","type":"uint256"}],"outputs":[]},
			{"type":"function","name":"burn","inputs":[],"outputs":[]}
		]`
		out, err := RenderSignatures([]byte(raw))
		assert.Nil(t, err)

		var signatures []string
		assert.Nil(t, json.Unmarshal(out, &signatures))
		assert.Equal(t, []string{"mint(uint256)", "mint(uint256)", "burn()"}, signatures)
	})
	t.Run("Should list entries that omit the type", func(t *testing.T) {
		out, err := RenderSignatures([]byte(`[{"name":"g","inputs":[{"name":"a","type":"address"}],"outputs":[]}]`))
		assert.Nil(t, err)
		assert.Equal(t, "[\n  \"g(address)\"\n]", string(out))
	})
	t.Run("Should reject an out of range integer type", func(t *testing.T) {
		_, err := RenderSignatures([]byte(`[{"type":"function","name":"f","inputs":[{"name":"a","type":"uint999"}]}]`))
		assert.True(t, errors.Is(err, abiErrors.ErrConversion))
		assert.True(t, errors.Is(err, abiErrors.ErrValidation))
	})
}

func abiValue() *rapid.Generator[any] {
	return rapid.OneOf(
		rapid.Map(rapid.StringMatching(`[a-zA-Z0-9 _(),\[\]]{0,12}`), func(s string) any { return s }),
		rapid.Map(rapid.IntRange(-1000000, 1000000), func(i int) any { return float64(i) }),
		rapid.Map(rapid.Bool(), func(b bool) any { return b }),
	)
}

func Test_Convert_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		entries := rapid.SliceOfN(rapid.MapOfN(rapid.StringMatching(`[a-z]{1,8}`), abiValue(), 0, 6), 0, 8).Draw(rt, "abi")
		doc := make([]any, 0, len(entries))
		for _, e := range entries {
			doc = append(doc, e)
		}

		compact, err := json.Marshal(doc)
		if err != nil {
			rt.Fatalf("marshal: %v", err)
		}
		pretty, err := RenderPretty(compact)
		if err != nil {
			rt.Fatalf("pretty: %v", err)
		}

		dir := t.TempDir()
		f := setup(t, "", nil)
		input := filepath.Join(dir, "abi.json")
		if err := os.WriteFile(input, pretty, 0644); err != nil {
			rt.Fatalf("write: %v", err)
		}

		mini, err := f.converter.Convert(context.Background(), Edge{From: abiFormat.InputFormat_Json, To: abiFormat.OutputFormat_JsonMinified}, input, dir)
		if err != nil {
			rt.Fatalf("json->json_mini: %v", err)
		}
		back, err := f.converter.Convert(context.Background(), Edge{From: abiFormat.InputFormat_JsonMinified, To: abiFormat.OutputFormat_Json}, mini.Path, dir)
		if err != nil {
			rt.Fatalf("json_mini->json: %v", err)
		}

		var original, roundTripped any
		_ = json.Unmarshal(pretty, &original)
		if err := json.Unmarshal(back.Content, &roundTripped); err != nil {
			rt.Fatalf("unmarshal: %v", err)
		}
		assert.Equal(rt, original, roundTripped)
	})
}
