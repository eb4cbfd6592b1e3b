package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"github.com/Layr-Labs/abi-tool/pkg/abiFormat"
	"github.com/Layr-Labs/abi-tool/pkg/abiParser"
	"github.com/Layr-Labs/abi-tool/pkg/artifactStore"
	"github.com/Layr-Labs/abi-tool/pkg/console"
	"go.uber.org/zap"
)

type SourceCompiler interface {
	CompileToAbi(ctx context.Context, sourcePath string) ([]byte, error)
}

type SourceCompilerFunc func(ctx context.Context, sourcePath string) ([]byte, error)

func (f SourceCompilerFunc) CompileToAbi(ctx context.Context, sourcePath string) ([]byte, error) {
	return f(ctx, sourcePath)
}

type ArtifactWriter interface {
	Save(explicitDir string, suffix string, source string, content []byte) (*artifactStore.Artifact, error)
}

type Edge struct {
	From abiFormat.InputFormat
	To   abiFormat.OutputFormat
}

func (e Edge) String() string {
	return fmt.Sprintf("%s->%s", e.From, e.To)
}

type Emitter struct {
	Suffix string
	Label  string
	Render func(raw []byte) ([]byte, error)
}

var (
	PrettyEmitter     = Emitter{Suffix: abiFormat.Suffix_Pretty, Label: console.Label_Pretty, Render: RenderPretty}
	MinifiedEmitter   = Emitter{Suffix: abiFormat.Suffix_Minified, Label: console.Label_Minified, Render: RenderMinified}
	SignaturesEmitter = Emitter{Suffix: abiFormat.Suffix_Signatures, Label: console.Label_Signatures, Render: RenderSignatures}
)

// edges lists every supported conversion. Anything else, including conversions back to
// source, is rejected with ErrUnsupportedConversion.
var edges = map[Edge]Emitter{
	{From: abiFormat.InputFormat_Source, To: abiFormat.OutputFormat_Json}:                PrettyEmitter,
	{From: abiFormat.InputFormat_Source, To: abiFormat.OutputFormat_JsonMinified}:        MinifiedEmitter,
	{From: abiFormat.InputFormat_Source, To: abiFormat.OutputFormat_SignatureList}:       SignaturesEmitter,
	{From: abiFormat.InputFormat_Json, To: abiFormat.OutputFormat_JsonMinified}:          MinifiedEmitter,
	{From: abiFormat.InputFormat_Json, To: abiFormat.OutputFormat_SignatureList}:         SignaturesEmitter,
	{From: abiFormat.InputFormat_JsonMinified, To: abiFormat.OutputFormat_Json}:          PrettyEmitter,
	{From: abiFormat.InputFormat_JsonMinified, To: abiFormat.OutputFormat_SignatureList}: SignaturesEmitter,
}

func IsSupported(e Edge) bool {
	_, ok := edges[e]
	return ok
}

type Converter struct {
	compiler SourceCompiler
	store    ArtifactWriter
	printer  *console.Printer
	logger   *zap.Logger
}

func NewConverter(c SourceCompiler, store ArtifactWriter, p *console.Printer, l *zap.Logger) *Converter {
	if p == nil {
		p = console.NewPrinter(nil)
	}
	return &Converter{
		compiler: c,
		store:    store,
		printer:  p,
		logger:   l,
	}
}

// Convert runs a single edge and returns the artifact it wrote.
func (c *Converter) Convert(ctx context.Context, edge Edge, inputPath string, outputDir string) (*artifactStore.Artifact, error) {
	emitter, ok := edges[edge]
	if !ok {
		return nil, abiErrors.Newf("convert", abiErrors.ErrUnsupportedConversion, "no conversion from %s to %s", edge.From, edge.To)
	}

	raw, err := c.Load(ctx, edge.From, inputPath)
	if err != nil {
		return nil, err
	}

	content, err := emitter.Render(raw)
	if err != nil {
		c.logger.Sugar().Errorw("Failed to render artifact",
			zap.String("edge", edge.String()),
			zap.String("input", inputPath),
			zap.Error(err),
		)
		return nil, err
	}

	artifact, err := c.store.Save(outputDir, emitter.Suffix, inputPath, content)
	if err != nil {
		return nil, err
	}
	c.logger.Sugar().Infow("Converted ABI",
		zap.String("edge", edge.String()),
		zap.String("input", inputPath),
		zap.String("output", artifact.Path),
	)
	c.printer.PrintConversion(inputPath, emitter.Label, artifact.Path, content)
	return artifact, nil
}

// Load produces the raw ABI for an input, compiling it when it is source.
func (c *Converter) Load(ctx context.Context, format abiFormat.InputFormat, inputPath string) ([]byte, error) {
	if format == abiFormat.InputFormat_Source {
		if c.compiler == nil {
			return nil, abiErrors.New("load_abi", abiErrors.ErrCompiler, "no compiler configured")
		}
		return c.compiler.CompileToAbi(ctx, inputPath)
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, abiErrors.Wrapf("load_abi", abiErrors.ErrInput, err, "cannot read %s", inputPath)
	}
	if !json.Valid(raw) {
		return nil, abiErrors.Newf("load_abi", abiErrors.ErrValidation, "%s is not valid JSON", inputPath)
	}
	return raw, nil
}

// RenderPretty indents raw with two spaces. Key order is preserved.
func RenderPretty(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return nil, abiErrors.Wrapf("render_pretty", abiErrors.ErrConversion, err, "invalid JSON")
	}
	return buf.Bytes(), nil
}

func RenderMinified(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, abiErrors.Wrapf("render_minified", abiErrors.ErrConversion, err, "invalid JSON")
	}
	return buf.Bytes(), nil
}

// RenderSignatures lists the function signatures of raw as a JSON array. An ABI without
// functions is an error rather than an empty array.
func RenderSignatures(raw []byte) ([]byte, error) {
	model, err := abiParser.Parse(raw)
	if err != nil {
		return nil, abiErrors.Wrapf("render_signatures", abiErrors.ErrConversion, err, "ABI could not be read and parsed")
	}
	signatures := model.Signatures()
	if len(signatures) == 0 {
		return nil, abiErrors.New("render_signatures", abiErrors.ErrConversion, "ABI could not be read and parsed")
	}
	out, err := json.MarshalIndent(signatures, "", "  ")
	if err != nil {
		return nil, abiErrors.Wrap("render_signatures", abiErrors.ErrConversion, err)
	}
	return out, nil
}
