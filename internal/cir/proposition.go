// Package cir implements §4.2 of the compiler: lifting contract-bearing
// parts of a typed program into the canonical form the SMT bridge
// translates, and deriving the optimizer-facing ProvenFactSet from
// verified facts.
package cir

import "fmt"

// CompareOp enumerates the comparison operators a Proposition can carry.
type CompareOp int

const (
	CmpEq CompareOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

func (op CompareOp) String() string {
	switch op {
	case CmpEq:
		return "="
	case CmpNe:
		return "distinct"
	case CmpLt:
		return "<"
	case CmpLe:
		return "<="
	case CmpGt:
		return ">"
	case CmpGe:
		return ">="
	default:
		return "?"
	}
}

// Negate returns the comparison that holds exactly when op does not.
func (op CompareOp) Negate() CompareOp {
	switch op {
	case CmpEq:
		return CmpNe
	case CmpNe:
		return CmpEq
	case CmpLt:
		return CmpGe
	case CmpLe:
		return CmpGt
	case CmpGt:
		return CmpLe
	case CmpGe:
		return CmpLt
	default:
		return op
	}
}

// PropKind discriminates the shape of a Proposition.
type PropKind int

const (
	PropTrivialTrue PropKind = iota
	PropTrivialFalse
	PropCompare
	PropAnd
	PropOr
	PropNot
	PropImplies
	PropForall
	PropExists
	PropOld
)

// Proposition is a first-order formula over CirExpr comparisons, boolean
// connectives, quantifiers, and the Old(expr) state wrapper used in
// postconditions. Built exclusively through the constructors below, which
// guarantee trivial propositions short-circuit (§3, §8 property 3).
type Proposition struct {
	Kind PropKind

	// PropCompare.
	Op   CompareOp
	Lhs  *CirExpr
	Rhs  *CirExpr

	// PropAnd, PropOr, PropImplies: Left/Right reused.
	Left  *Proposition
	Right *Proposition

	// PropNot.
	Inner *Proposition

	// PropForall, PropExists.
	BoundVar string
	Body     *Proposition

	// PropOld.
	OldExpr *CirExpr
}

// True constructs the trivially-true proposition.
func True() *Proposition { return &Proposition{Kind: PropTrivialTrue} }

// False constructs the trivially-false proposition.
func False() *Proposition { return &Proposition{Kind: PropTrivialFalse} }

// IsTrivialTrue reports whether p is the trivially-true constant.
func (p *Proposition) IsTrivialTrue() bool { return p != nil && p.Kind == PropTrivialTrue }

// IsTrivialFalse reports whether p is the trivially-false constant.
func (p *Proposition) IsTrivialFalse() bool { return p != nil && p.Kind == PropTrivialFalse }

// Compare constructs `lhs op rhs`.
func Compare(op CompareOp, lhs, rhs *CirExpr) *Proposition {
	return &Proposition{Kind: PropCompare, Op: op, Lhs: lhs, Rhs: rhs}
}

// And constructs a ∧ b, short-circuiting on a trivial operand per §8
// property 3 (`And(true, p) ≡ p`).
func And(a, b *Proposition) *Proposition {
	if a.IsTrivialTrue() {
		return b
	}

	if b.IsTrivialTrue() {
		return a
	}

	if a.IsTrivialFalse() || b.IsTrivialFalse() {
		return False()
	}

	return &Proposition{Kind: PropAnd, Left: a, Right: b}
}

// Or constructs a ∨ b, short-circuiting on a trivial operand
// (`Or(false, p) ≡ p`).
func Or(a, b *Proposition) *Proposition {
	if a.IsTrivialFalse() {
		return b
	}

	if b.IsTrivialFalse() {
		return a
	}

	if a.IsTrivialTrue() || b.IsTrivialTrue() {
		return True()
	}

	return &Proposition{Kind: PropOr, Left: a, Right: b}
}

// Not constructs ¬p, collapsing double negation (`Not(Not(p)) ≡ p`) and
// negating trivial constants directly (`Not(true) ≡ trivially_false`).
func Not(p *Proposition) *Proposition {
	switch {
	case p.IsTrivialTrue():
		return False()
	case p.IsTrivialFalse():
		return True()
	case p.Kind == PropNot:
		return p.Inner
	default:
		return &Proposition{Kind: PropNot, Inner: p}
	}
}

// Implies constructs a ⇒ b.
func Implies(a, b *Proposition) *Proposition {
	if a.IsTrivialFalse() || b.IsTrivialTrue() {
		return True()
	}

	if a.IsTrivialTrue() {
		return b
	}

	return &Proposition{Kind: PropImplies, Left: a, Right: b}
}

// Forall constructs ∀ bound, body.
func Forall(bound string, body *Proposition) *Proposition {
	return &Proposition{Kind: PropForall, BoundVar: bound, Body: body}
}

// Exists constructs ∃ bound, body.
func Exists(bound string, body *Proposition) *Proposition {
	return &Proposition{Kind: PropExists, BoundVar: bound, Body: body}
}

// Old wraps expr as a reference to its value at function entry, valid only
// inside a postcondition.
func Old(expr *CirExpr) *Proposition {
	return &Proposition{Kind: PropOld, OldExpr: expr}
}

// HasQuantifier reports whether p (or a conjunct/disjunct of it) contains a
// Forall/Exists, which the SMT bridge uses to set needs_quantifiers (§4.2).
func (p *Proposition) HasQuantifier() bool {
	if p == nil {
		return false
	}

	switch p.Kind {
	case PropForall, PropExists:
		return true
	case PropAnd, PropOr, PropImplies:
		return p.Left.HasQuantifier() || p.Right.HasQuantifier()
	case PropNot:
		return p.Inner.HasQuantifier()
	default:
		return false
	}
}

// String renders p in a readable infix form, primarily for diagnostics and
// ProofFact descriptions, not for SMT emission (see internal/smt for that).
func (p *Proposition) String() string {
	if p == nil {
		return "<nil>"
	}

	switch p.Kind {
	case PropTrivialTrue:
		return "true"
	case PropTrivialFalse:
		return "false"
	case PropCompare:
		return fmt.Sprintf("%s %s %s", p.Lhs, p.Op, p.Rhs)
	case PropAnd:
		return fmt.Sprintf("(%s and %s)", p.Left, p.Right)
	case PropOr:
		return fmt.Sprintf("(%s or %s)", p.Left, p.Right)
	case PropNot:
		return fmt.Sprintf("not(%s)", p.Inner)
	case PropImplies:
		return fmt.Sprintf("(%s => %s)", p.Left, p.Right)
	case PropForall:
		return fmt.Sprintf("forall %s, %s", p.BoundVar, p.Body)
	case PropExists:
		return fmt.Sprintf("exists %s, %s", p.BoundVar, p.Body)
	case PropOld:
		return fmt.Sprintf("old(%s)", p.OldExpr)
	default:
		return "<invalid>"
	}
}
