package compiler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Layr-Labs/abi-tool/internal/metrics"
	"github.com/Layr-Labs/abi-tool/internal/metrics/metricsTypes"
	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"go.uber.org/zap"
)

const (
	// LicenseMarker must open every compilable source file.
	LicenseMarker   = "// SPDX-License-Identifier"
	SourceExtension = ".sol"

	DefaultCompiler       = "solc"
	DefaultMaxBannerLines = 16

	maxLineBytes = 64 * 1024 * 1024
)

type CompilerConfig struct {
	// Path is the compiler binary. Resolved through PATH when it has no separator.
	Path string

	// Version, when set, selects a solc release managed by go-solc-select and overrides Path.
	Version string

	Timeout time.Duration

	// MaxBannerLines bounds how many non-ABI lines may precede the ABI line on stdout.
	MaxBannerLines int
}

type ResultError struct {
	Err       error
	CmdOutput string
	ExitCode  int
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("compiler exited with code %d: %s", e.ExitCode, strings.TrimSpace(e.CmdOutput))
}

func (e *ResultError) Unwrap() error {
	return e.Err
}

type Compiler struct {
	config      *CompilerConfig
	logger      *zap.Logger
	metricsSink *metrics.MetricsSink
}

func NewCompiler(cfg *CompilerConfig, ms *metrics.MetricsSink, l *zap.Logger) *Compiler {
	if cfg.Path == "" {
		cfg.Path = DefaultCompiler
	}
	if cfg.MaxBannerLines <= 0 {
		cfg.MaxBannerLines = DefaultMaxBannerLines
	}
	return &Compiler{
		config:      cfg,
		logger:      l,
		metricsSink: ms,
	}
}

// ValidateSource checks, in order, that the file is readable, starts with the license marker
// and carries the source extension.
func ValidateSource(sourcePath string) error {
	contents, err := os.ReadFile(sourcePath)
	if err != nil {
		return abiErrors.Wrapf("validate_source", abiErrors.ErrInput, err, "cannot read source")
	}
	if !bytes.HasPrefix(contents, []byte(LicenseMarker)) {
		return abiErrors.New("validate_source", abiErrors.ErrValidation, "not a recognized compilation unit")
	}
	if filepath.Ext(sourcePath) != SourceExtension {
		return abiErrors.New("validate_source", abiErrors.ErrValidation, "not a recognized compilation unit")
	}
	return nil
}

func (c *Compiler) resolveBinary() (string, error) {
	if c.config.Version != "" {
		return FindManagedCompiler(c.config.Version)
	}
	path, err := exec.LookPath(c.config.Path)
	if err != nil {
		return "", abiErrors.Wrapf("compile_to_abi", abiErrors.ErrCompiler, err, "compiler %s not found", c.config.Path)
	}
	return path, nil
}

// CompileToAbi runs `<solc> <sourcePath> --abi` and returns the ABI line of its output.
func (c *Compiler) CompileToAbi(ctx context.Context, sourcePath string) ([]byte, error) {
	if err := ValidateSource(sourcePath); err != nil {
		return nil, err
	}

	binary, err := c.resolveBinary()
	if err != nil {
		return nil, err
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if c.metricsSink != nil {
			_ = c.metricsSink.Timing(metricsTypes.Metric_Timing_Compile, time.Since(start), nil)
		}
	}()

	args := []string{sourcePath, "--abi"}
	fullCommand := fmt.Sprintf("%s %s", binary, strings.Join(args, " "))
	c.logger.Sugar().Debugw("Starting compiler", zap.String("fullCommand", fullCommand))

	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, abiErrors.Wrapf("compile_to_abi", abiErrors.ErrCompiler, err, "error creating stdout pipe")
	}
	if err := cmd.Start(); err != nil {
		return nil, abiErrors.Wrapf("compile_to_abi", abiErrors.ErrCompiler, err, "error starting %s", binary)
	}

	abi, scanErr := c.scanForAbi(stdout)

	// Remaining output must be consumed before Wait closes the pipe.
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		c.logger.Sugar().Errorw("Compiler cancelled",
			zap.String("fullCommand", fullCommand),
			zap.Error(ctxErr),
		)
		return nil, abiErrors.Wrapf("compile_to_abi", abiErrors.ErrCompiler, ctxErr, "compiler did not finish")
	}

	if waitErr != nil {
		resultErr := &ResultError{Err: waitErr, CmdOutput: stderr.String(), ExitCode: -1}
		var exitError *exec.ExitError
		if errors.As(waitErr, &exitError) {
			resultErr.ExitCode = exitError.ExitCode()
		}
		c.logger.Sugar().Errorw("Compiler exited with error",
			zap.String("fullCommand", fullCommand),
			zap.Int("exitCode", resultErr.ExitCode),
			zap.String("stderr", resultErr.CmdOutput),
		)
		return nil, abiErrors.Wrap("compile_to_abi", abiErrors.ErrCompiler, resultErr)
	}

	if scanErr != nil {
		return nil, scanErr
	}
	return abi, nil
}

// scanForAbi returns the first stdout line that parses as a JSON array.
func (c *Compiler) scanForAbi(stdout io.Reader) ([]byte, error) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	skipped := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if line[0] == '[' && json.Valid(line) {
			abi := make([]byte, len(line))
			copy(abi, line)
			return abi, nil
		}
		skipped++
		if skipped > c.config.MaxBannerLines {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, abiErrors.Wrapf("compile_to_abi", abiErrors.ErrExtraction, err, "ABI not found in compiler output")
	}
	return nil, abiErrors.New("compile_to_abi", abiErrors.ErrExtraction, "ABI not found in compiler output")
}
