package mir

import (
	"strconv"

	"github.com/bmb-lang/bmbc/internal/types"
)

// ContractFact is one proof-derived or assumed fact attached to a function
// as an attribute, consumed by the proof-guided elimination passes (§3
// "attributes...contract facts").
type ContractFact struct {
	Proposition string
	Verified    bool
}

// Attributes is a MirFunction's attribute set (§3).
type Attributes struct {
	AlwaysInline bool
	InlineHint   bool
	Pure         bool
	Const        bool
	IsMemoryFree bool
	PreFacts     []ContractFact
	PostFacts    []ContractFact
}

// Param is a typed MIR function parameter.
type Param struct {
	Name string
	Type *types.Type
}

// Capture describes one free variable captured by a closure lifted to a
// top-level MirFunction (§4.3 "Closures").
type Capture struct {
	Name   string
	Type   *types.Type
	Offset int
}

// MirFunction owns its parameters, return type, attributes, block graph
// (entry is Blocks[0]), and closure capture metadata.
type MirFunction struct {
	Name       string
	Params     []Param
	Return     *types.Type
	Attributes Attributes
	Blocks     []*BasicBlock
	Captures   []Capture

	// nextTemp is the monotone per-function counter lowering draws fresh
	// place/label names from, guaranteeing no collisions across sibling
	// scopes (§9 "SSA naming and hygiene").
	nextTemp int
}

// FreshTemp returns a unique temporary name for this function, prefixed
// with base.
func (f *MirFunction) FreshTemp(base string) string {
	f.nextTemp++

	return base + "_t" + strconv.Itoa(f.nextTemp)
}

// FreshLabel returns a unique block label for this function.
func (f *MirFunction) FreshLabel(base string) string {
	f.nextTemp++

	return base + "_" + strconv.Itoa(f.nextTemp)
}

// BlockByLabel returns the block with the given label, if any.
func (f *MirFunction) BlockByLabel(label string) *BasicBlock {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b
		}
	}

	return nil
}

// Entry returns the function's entry block (the first in Blocks), or nil
// for an empty function.
func (f *MirFunction) Entry() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}

	return f.Blocks[0]
}

// MirProgram is a mapping from function name to MirFunction (§3).
type MirProgram struct {
	Functions map[string]*MirFunction
}

// NewMirProgram returns an empty program.
func NewMirProgram() *MirProgram {
	return &MirProgram{Functions: make(map[string]*MirFunction)}
}
