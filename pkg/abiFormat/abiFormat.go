package abiFormat

import (
	"fmt"
	"strings"

	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
)

type InputFormat string
type OutputFormat string

const (
	InputFormat_Source       InputFormat = "sol"
	InputFormat_Json         InputFormat = "json"
	InputFormat_JsonMinified InputFormat = "json_mini"

	OutputFormat_Json          OutputFormat = "json"
	OutputFormat_JsonMinified  OutputFormat = "json_mini"
	OutputFormat_SignatureList OutputFormat = "ethers"
	OutputFormat_Source        OutputFormat = "sol"
	OutputFormat_All           OutputFormat = "all"
)

// Artifact suffixes, shared by the converters and the fetcher.
const (
	Suffix_Pretty     = "abi_pretty.json"
	Suffix_Minified   = "abi_mini.json"
	Suffix_Signatures = "abi_ethers.json"
)

var (
	inputFormats  = []InputFormat{InputFormat_Source, InputFormat_Json, InputFormat_JsonMinified}
	outputFormats = []OutputFormat{OutputFormat_Json, OutputFormat_JsonMinified, OutputFormat_SignatureList, OutputFormat_Source, OutputFormat_All}
)

func (f InputFormat) String() string {
	return string(f)
}

func (f OutputFormat) String() string {
	return string(f)
}

// ParseInputFormat accepts the exact CLI spellings: sol, json, json_mini.
func ParseInputFormat(s string) (InputFormat, error) {
	for _, f := range inputFormats {
		if string(f) == s {
			return f, nil
		}
	}
	if s == "" {
		return "", abiErrors.New("parse_input_format", abiErrors.ErrInput, "input type missing, specify json, json_mini or sol")
	}
	return "", abiErrors.New("parse_input_format", abiErrors.ErrInput, fmt.Sprintf("unknown input type %q, specify json, json_mini or sol", s))
}

// ParseOutputFormat is case-insensitive and defaults to OutputFormat_All.
func ParseOutputFormat(s string) (OutputFormat, error) {
	if s == "" {
		return OutputFormat_All, nil
	}
	lower := strings.ToLower(s)
	for _, f := range outputFormats {
		if string(f) == lower {
			return f, nil
		}
	}
	return "", abiErrors.New("parse_output_format", abiErrors.ErrInput, fmt.Sprintf("unknown output type %q, specify json, json_mini, ethers or all", s))
}
