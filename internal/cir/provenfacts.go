package cir

import "math"

// placeSummary is the per-place knowledge ProvenFactSet accumulates: an
// interval (lo, hi, each optionally unset) plus nonzero/non-null flags.
type placeSummary struct {
	hasLower bool
	lower    int64
	hasUpper bool
	upper    int64
	nonZero  bool
	nonNull  bool
}

// ProvenFactSet is the optimizer-facing view of verified preconditions
// (§3, §4.2): per place, what bounds, nonzero-ness, or non-null-ness are
// known. Built once from a function's verified pre facts and consulted
// read-only by every proof-guided optimization pass.
type ProvenFactSet struct {
	places map[string]*placeSummary
}

// NewProvenFactSet returns an empty fact set, equivalent to "nothing
// proven" for every place.
func NewProvenFactSet() *ProvenFactSet {
	return &ProvenFactSet{places: make(map[string]*placeSummary)}
}

func (pf *ProvenFactSet) summary(place string) *placeSummary {
	s, ok := pf.places[place]
	if !ok {
		s = &placeSummary{}
		pf.places[place] = s
	}

	return s
}

// LowerBound returns the tightest known lower bound for place, if any.
func (pf *ProvenFactSet) LowerBound(place string) (int64, bool) {
	s, ok := pf.places[place]
	if !ok || !s.hasLower {
		return 0, false
	}

	return s.lower, true
}

// UpperBound returns the tightest known upper bound for place, if any.
func (pf *ProvenFactSet) UpperBound(place string) (int64, bool) {
	s, ok := pf.places[place]
	if !ok || !s.hasUpper {
		return 0, false
	}

	return s.upper, true
}

// NonZero reports whether place is known never to be zero.
func (pf *ProvenFactSet) NonZero(place string) bool {
	s, ok := pf.places[place]

	return ok && s.nonZero
}

// NonNull reports whether place is known never to be null.
func (pf *ProvenFactSet) NonNull(place string) bool {
	s, ok := pf.places[place]

	return ok && s.nonNull
}

func (s *placeSummary) tightenLower(v int64) {
	if !s.hasLower || v > s.lower {
		s.hasLower = true
		s.lower = v
	}
}

func (s *placeSummary) tightenUpper(v int64) {
	if !s.hasUpper || v < s.upper {
		s.hasUpper = true
		s.upper = v
	}
}

// DeriveProvenFacts implements the ProvenFactSet derivation algorithm of
// §4.2: walk verified precondition propositions, extracting `x >= c`,
// `x > c`, `x <= c`, `x < c`, `x != 0`, and `x != null`-shaped comparisons
// into a per-place summary. `x > 0` tightens the lower bound to 1, the
// one-off rule the spec calls out explicitly.
func DeriveProvenFacts(facts []*Proposition) *ProvenFactSet {
	pf := NewProvenFactSet()

	for _, p := range facts {
		applyProposition(pf, p)
	}

	return pf
}

func applyProposition(pf *ProvenFactSet, p *Proposition) {
	if p == nil {
		return
	}

	switch p.Kind {
	case PropAnd:
		applyProposition(pf, p.Left)
		applyProposition(pf, p.Right)

	case PropCompare:
		applyCompare(pf, p)
	}
}

func applyCompare(pf *ProvenFactSet, p *Proposition) {
	place, c, swapped, ok := placeAndConst(p.Lhs, p.Rhs)
	if !ok {
		return
	}

	op := p.Op
	if swapped {
		op = reverseOperands(op)
	}

	s := pf.summary(place)

	switch op {
	case CmpGe:
		s.tightenLower(c)
	case CmpGt:
		if c == 0 {
			s.tightenLower(1) // spec's explicit `x > 0` ⇒ lower bound 1 rule.
		} else {
			s.tightenLower(c + 1)
		}
	case CmpLe:
		s.tightenUpper(c)
	case CmpLt:
		s.tightenUpper(c - 1)
	case CmpNe:
		if c == 0 {
			s.nonZero = true
			s.nonNull = true
		}
	}
}

// reverseOperands adjusts a comparison operator when the constant appeared
// on the left (`5 <= x` means the same as `x >= 5`).
func reverseOperands(op CompareOp) CompareOp {
	switch op {
	case CmpLt:
		return CmpGt
	case CmpLe:
		return CmpGe
	case CmpGt:
		return CmpLt
	case CmpGe:
		return CmpLe
	default:
		return op
	}
}

// placeAndConst recognizes `var op const` or `const op var`, returning the
// place name, the constant as int64, and whether the operands were
// swapped (const on the left).
func placeAndConst(lhs, rhs *CirExpr) (place string, c int64, swapped, ok bool) {
	if lhs.Kind == ExprVar && isConst(rhs) {
		return lhs.Name, constInt(rhs), false, true
	}

	if rhs.Kind == ExprVar && isConst(lhs) {
		return rhs.Name, constInt(lhs), true, true
	}

	return "", 0, false, false
}

func isConst(e *CirExpr) bool {
	return e != nil && (e.Kind == ExprConstInt || e.Kind == ExprConstFloat)
}

func constInt(e *CirExpr) int64 {
	if e.Kind == ExprConstFloat {
		return int64(math.Round(e.Float))
	}

	return e.Int
}
