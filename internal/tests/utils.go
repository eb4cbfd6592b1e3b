package tests

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Layr-Labs/abi-tool/internal/config"
)

func GetConfig() *config.Config {
	return config.NewConfig()
}

// SampleAbi covers a plain function, a view function, an event, a tuple argument and a
// constructor. Only the three functions produce signatures.
const SampleAbi = `[
  {
    "type": "constructor",
    "inputs": [{"name": "supply", "type": "uint256"}],
    "stateMutability": "nonpayable"
  },
  {
    "type": "function",
    "name": "transfer",
    "inputs": [
      {"name": "to", "type": "address"},
      {"name": "amount", "type": "uint256"}
    ],
    "outputs": [{"name": "", "type": "bool"}],
    "stateMutability": "nonpayable"
  },
  {
    "type": "event",
    "name": "Transfer",
    "inputs": [
      {"name": "from", "type": "address", "indexed": true},
      {"name": "to", "type": "address", "indexed": true},
      {"name": "value", "type": "uint256", "indexed": false}
    ],
    "anonymous": false
  },
  {
    "type": "function",
    "name": "balanceOf",
    "inputs": [{"name": "owner", "type": "address"}],
    "outputs": [{"name": "", "type": "uint256"}],
    "stateMutability": "view"
  },
  {
    "type": "function",
    "name": "submit",
    "inputs": [
      {
        "name": "order",
        "type": "tuple",
        "components": [
          {"name": "amount", "type": "uint256"},
          {"name": "recipient", "type": "address"}
        ]
      },
      {"name": "tags", "type": "bytes32[]"}
    ],
    "outputs": [],
    "stateMutability": "payable"
  }
]`

var SampleSignatures = []string{
	"transfer(address,uint256)",
	"balanceOf(address)",
	"submit((uint256,address),bytes32[])",
}

// EventOnlyAbi has no functions.
const EventOnlyAbi = `[{"type":"event","name":"Ping","inputs":[],"anonymous":false}]`

const SampleSource = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.0;

contract Token {
    function transfer(address to, uint256 amount) external returns (bool) {}
}
`

// WriteFile writes contents to dir/name and returns the path.
func WriteFile(t *testing.T, dir string, name string, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WriteFakeCompiler writes an executable script that prints output, records its arguments to
// <dir>/args.txt, and exits with exitCode. Output is stored next to the script and emitted with cat
// so it is reproduced byte for byte.
func WriteFakeCompiler(t *testing.T, dir string, output string, exitCode int) string {
	t.Helper()
	outputPath := WriteFile(t, dir, "compiler_output.txt", output)
	argsPath := filepath.Join(dir, "args.txt")

	script := fmt.Sprintf("#!/bin/sh\necho \"$@\" > '%s'\ncat '%s'\necho 'compiler diagnostics' 1>&2\nexit %d\n", argsPath, outputPath, exitCode)
	path := filepath.Join(dir, "solc.sh")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write fake compiler: %v", err)
	}
	return path
}

// SolcBanner mirrors what `solc <file> --abi` prints ahead of the ABI line.
func SolcBanner(path string, abi string) string {
	return fmt.Sprintf("\n======= %s:Token =======\nContract JSON ABI\n%s\n", path, abi)
}
