package abiParser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Function struct {
	Name string
	// Signature is the canonical name(type,...) form with tuples expanded, e.g. submit((uint256,address)).
	Signature       string
	Selector        string
	StateMutability string
}

type entry struct {
	Type            string         `json:"type"`
	Name            string         `json:"name"`
	Inputs          []abi.Argument `json:"inputs"`
	Outputs         []abi.Argument `json:"outputs"`
	StateMutability string         `json:"stateMutability"`
	Constant        bool           `json:"constant"`
	Payable         bool           `json:"payable"`
}

// declaredEntry keeps argument types as written so they can be checked before go-ethereum
// normalizes them.
type declaredEntry struct {
	Name    string                    `json:"name"`
	Inputs  []abi.ArgumentMarshaling `json:"inputs"`
	Outputs []abi.ArgumentMarshaling `json:"outputs"`
}

var (
	arraySuffixPattern = regexp.MustCompile(`(\[[0-9]*\])+$`)
	integerPattern     = regexp.MustCompile(`^u?int([0-9]*)$`)
	fixedBytesPattern  = regexp.MustCompile(`^bytes([0-9]+)$`)
)

type Model struct {
	Abi       abi.ABI
	entries   int
	functions []Function
	bySig     *orderedmap.OrderedMap[string, Function]
}

// Parse validates raw as an ABI document and indexes its functions in document order.
// Entries without a type are functions.
func Parse(raw []byte) (*Model, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, abiErrors.New("parse_abi", abiErrors.ErrValidation, "ABI must be a JSON array")
	}

	normalized, err := defaultEntryTypes(trimmed)
	if err != nil {
		return nil, err
	}
	if err := checkDeclaredTypes(normalized); err != nil {
		return nil, err
	}

	parsed, err := abi.JSON(bytes.NewReader(normalized))
	if err != nil {
		return nil, abiErrors.Wrapf("parse_abi", abiErrors.ErrValidation, err, "invalid ABI")
	}

	var entries []entry
	if err := json.Unmarshal(normalized, &entries); err != nil {
		return nil, abiErrors.Wrapf("parse_abi", abiErrors.ErrValidation, err, "invalid ABI")
	}

	model := &Model{
		Abi:       parsed,
		entries:   len(entries),
		functions: make([]Function, 0, len(entries)),
		bySig:     orderedmap.New[string, Function](),
	}
	for _, e := range entries {
		if e.Type != "function" {
			continue
		}
		method := abi.NewMethod(e.Name, e.Name, abi.Function, e.StateMutability, e.Constant, e.Payable, e.Inputs, e.Outputs)
		fn := Function{
			Name:            e.Name,
			Signature:       method.Sig,
			Selector:        hexutil.Encode(method.ID),
			StateMutability: method.StateMutability,
		}
		model.functions = append(model.functions, fn)
		if _, exists := model.bySig.Get(fn.Signature); !exists {
			model.bySig.Set(fn.Signature, fn)
		}
	}
	return model, nil
}

// defaultEntryTypes sets "type":"function" on entries that omit it or leave it empty.
func defaultEntryTypes(raw []byte) ([]byte, error) {
	var objects []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &objects); err != nil {
		return nil, abiErrors.Wrapf("parse_abi", abiErrors.ErrValidation, err, "invalid ABI")
	}

	changed := false
	for _, obj := range objects {
		if obj == nil {
			return nil, abiErrors.New("parse_abi", abiErrors.ErrValidation, "ABI entries must be objects")
		}
		t, ok := obj["type"]
		if ok && string(t) != `""` && string(t) != "null" {
			continue
		}
		obj["type"] = json.RawMessage(`"function"`)
		changed = true
	}
	if !changed {
		return raw, nil
	}

	out, err := json.Marshal(objects)
	if err != nil {
		return nil, abiErrors.Wrap("parse_abi", abiErrors.ErrValidation, err)
	}
	return out, nil
}

func checkDeclaredTypes(raw []byte) error {
	var entries []declaredEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return abiErrors.Wrapf("parse_abi", abiErrors.ErrValidation, err, "invalid ABI")
	}
	for _, e := range entries {
		for _, args := range [][]abi.ArgumentMarshaling{e.Inputs, e.Outputs} {
			if err := checkArguments(e.Name, args); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkArguments(owner string, args []abi.ArgumentMarshaling) error {
	for _, arg := range args {
		if err := checkType(arg.Type); err != nil {
			return abiErrors.Newf("parse_abi", abiErrors.ErrValidation, "invalid ABI: %s: %v", owner, err)
		}
		if err := checkArguments(owner, arg.Components); err != nil {
			return err
		}
	}
	return nil
}

// checkType rejects elementary types go-ethereum lets through: unsized or out of range
// intN/uintN and bytesN.
func checkType(t string) error {
	base := arraySuffixPattern.ReplaceAllString(t, "")

	if m := integerPattern.FindStringSubmatch(base); m != nil {
		if m[1] == "" {
			return fmt.Errorf("type %q has no size", t)
		}
		size, err := strconv.Atoi(m[1])
		if err != nil || size < 8 || size > 256 || size%8 != 0 {
			return fmt.Errorf("type %q has an invalid size", t)
		}
		return nil
	}
	if m := fixedBytesPattern.FindStringSubmatch(base); m != nil {
		size, err := strconv.Atoi(m[1])
		if err != nil || size < 1 || size > 32 {
			return fmt.Errorf("type %q has an invalid size", t)
		}
	}
	return nil
}

func (m *Model) EntryCount() int {
	return m.entries
}

// Functions returns one Function per function entry, duplicates included.
func (m *Model) Functions() []Function {
	out := make([]Function, len(m.functions))
	copy(out, m.functions)
	return out
}

func (m *Model) Signatures() []string {
	out := make([]string, 0, len(m.functions))
	for _, fn := range m.functions {
		out = append(out, fn.Signature)
	}
	return out
}

// Lookup returns the first function declared with signature sig.
func (m *Model) Lookup(sig string) (Function, bool) {
	return m.bySig.Get(sig)
}

// UniqueSignatures lists each distinct signature once, in order of first declaration.
func (m *Model) UniqueSignatures() []string {
	out := make([]string, 0, m.bySig.Len())
	for pair := m.bySig.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func (m *Model) String() string {
	return fmt.Sprintf("abi(entries=%d, functions=%d)", m.entries, len(m.functions))
}
