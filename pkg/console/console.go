package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const separatorWidth = 75

// Output-type labels shown in summaries.
const (
	Label_Pretty     = "Pretty JSON"
	Label_Minified   = "JSON-minified"
	Label_Signatures = "Ethers-rs"
)

// Printer writes the human readable summary of each artifact. It is separate from logging:
// summaries go to stdout, logs to stderr.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = io.Discard
	}
	return &Printer{w: w}
}

func separator() string {
	return strings.Repeat("-", separatorWidth)
}

func (p *Printer) PrintConversion(inputPath string, outputType string, outputPath string, content []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.w, separator())
	fmt.Fprintf(p.w, "Command: format\nfile: %s\noutput-type: %s\noutput-file: %s\n", inputPath, outputType, outputPath)
	fmt.Fprintf(p.w, "\n\nConsole Output:\n%s\n", content)
}

func (p *Printer) PrintFetch(address string, outputType string, outputPath string, content []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.w, separator())
	fmt.Fprintf(p.w, "Command: fetch\ncontract-address: %s\noutput-type: %s\noutput-file: %s\n", address, outputType, outputPath)
	fmt.Fprintf(p.w, "\n\n%s Console Output:\n%s\n", outputType, content)
}

// PrintFailure reports an edge that failed inside a batch without aborting the others.
func (p *Printer) PrintFailure(edge string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.w, separator())
	fmt.Fprintf(p.w, "Failed: %s\n%s\n", edge, err)
}
