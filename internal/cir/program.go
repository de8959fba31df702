package cir

import "github.com/bmb-lang/bmbc/internal/position"

// Contract is a function's pre/postconditions (§3: "contract tuples
// (preconditions, postconditions, loop_invariants)"). Loop invariants are
// not stored here; they ride on the ExprLoop nodes of the lifted body
// (CirExpr.LoopInvariants).
type Contract struct {
	Preconditions  []*Proposition
	Postconditions []*Proposition
}

// CirFunction is one function's contract-bearing view: its parameters (by
// name, for free-variable declaration in SMT-LIB2), its contract, its
// lifted body, and the effect set lowering computed for it.
type CirFunction struct {
	Name    string
	Params  []Param
	Return  string // sort name, resolved lazily by internal/smt
	Contract Contract
	Body    *CirExpr
	Effects EffectSet
	Span    position.Span
}

// Param is a CIR function parameter: a name and the sort its type maps to
// is resolved by internal/smt at translation time, not stored redundantly
// here.
type Param struct {
	Name string
	Type string // BMB source type name, kept for uninterpreted-sort fallback
}

// CirProgram is the verifier's view of an entire typed program: every
// top-level function and impl method, keyed by name.
type CirProgram struct {
	Functions map[string]*CirFunction
}

// NewCirProgram returns an empty program ready to be populated by Lower.
func NewCirProgram() *CirProgram {
	return &CirProgram{Functions: make(map[string]*CirFunction)}
}
