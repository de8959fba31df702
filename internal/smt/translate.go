package smt

import (
	"fmt"
	"strings"

	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// sortFor maps a BMB source type name to its SMT-LIB2 sort (§4.2 "Sort
// mapping"): integer types to Int, float types to Real, bool to Bool, and
// anything else to a declared uninterpreted sort.
func sortFor(typeName string) string {
	switch typeName {
	case "i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "isize", "usize":
		return "Int"
	case "f32", "f64":
		return "Real"
	case "bool":
		return "Bool"
	default:
		return uninterpretedSort(typeName)
	}
}

func uninterpretedSort(typeName string) string {
	return "Sort_" + sanitizeIdent(typeName)
}

func sanitizeIdent(name string) string {
	var b strings.Builder

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return b.String()
}

func typeSort(t *types.Type) string {
	if t == nil {
		return "Int"
	}

	if t.Name != "" {
		return sortFor(t.Name)
	}

	return sortFor(t.Kind.String())
}

// query is one function's translated SMT-LIB2 script plus the set of
// uninterpreted sorts it needed declared.
type query struct {
	script           string
	uninterpreted    map[string]bool
	needsQuantifiers bool
}

// translateFunction builds the SMT-LIB2 script checking fn's contract: it
// asserts the precondition and the negated postcondition, so `unsat` means
// the postcondition is implied by the precondition (Verified) and `sat`
// produces a counterexample model (Failed).
func translateFunction(fn *cir.CirFunction) query {
	uninterp := make(map[string]bool)
	tr := &translator{uninterpreted: uninterp}

	var decls strings.Builder

	for _, p := range fn.Params {
		sort := sortFor(p.Type)
		if strings.HasPrefix(sort, "Sort_") {
			uninterp[sort] = true
		}

		fmt.Fprintf(&decls, "(declare-fun %s () %s)\n", sanitizeIdent(p.Name), sort)
	}

	pre := cir.True()
	for _, p := range fn.Contract.Preconditions {
		pre = cir.And(pre, p)
	}

	post := cir.True()
	for _, p := range fn.Contract.Postconditions {
		post = cir.And(post, p)
	}

	needsQuant := pre.HasQuantifier() || post.HasQuantifier()

	preSexpr := tr.prop(pre)
	postSexpr := tr.prop(post)

	var b strings.Builder

	b.WriteString("(set-logic ALL)\n")

	for sort := range uninterp {
		fmt.Fprintf(&b, "(declare-sort %s 0)\n", sort)
	}

	b.WriteString(decls.String())
	fmt.Fprintf(&b, "(assert %s)\n", preSexpr)
	fmt.Fprintf(&b, "(assert (not %s))\n", postSexpr)
	b.WriteString("(check-sat)\n")
	b.WriteString("(get-model)\n")

	return query{script: b.String(), uninterpreted: uninterp, needsQuantifiers: needsQuant}
}

// translator renders CIR propositions/expressions as SMT-LIB2 s-expressions,
// accumulating any uninterpreted sorts it encounters along the way.
type translator struct {
	uninterpreted map[string]bool
}

func (t *translator) prop(p *cir.Proposition) string {
	if p == nil {
		return "true"
	}

	switch p.Kind {
	case cir.PropTrivialTrue:
		return "true"
	case cir.PropTrivialFalse:
		return "false"
	case cir.PropCompare:
		return fmt.Sprintf("(%s %s %s)", smtCompareOp(p.Op), t.expr(p.Lhs), t.expr(p.Rhs))
	case cir.PropAnd:
		return fmt.Sprintf("(and %s %s)", t.prop(p.Left), t.prop(p.Right))
	case cir.PropOr:
		return fmt.Sprintf("(or %s %s)", t.prop(p.Left), t.prop(p.Right))
	case cir.PropNot:
		return fmt.Sprintf("(not %s)", t.prop(p.Inner))
	case cir.PropImplies:
		return fmt.Sprintf("(=> %s %s)", t.prop(p.Left), t.prop(p.Right))
	case cir.PropForall:
		return fmt.Sprintf("(forall ((%s Int)) %s)", sanitizeIdent(p.BoundVar), t.prop(p.Body))
	case cir.PropExists:
		return fmt.Sprintf("(exists ((%s Int)) %s)", sanitizeIdent(p.BoundVar), t.prop(p.Body))
	case cir.PropOld:
		return t.expr(p.OldExpr)
	default:
		return "true"
	}
}

func smtCompareOp(op cir.CompareOp) string {
	if op == cir.CmpNe {
		return "distinct"
	}

	return op.String()
}

func (t *translator) expr(e *cir.CirExpr) string {
	if e == nil {
		return "0"
	}

	switch e.Kind {
	case cir.ExprConstInt:
		return fmt.Sprintf("%d", e.Int)
	case cir.ExprConstFloat:
		return fmt.Sprintf("%g", e.Float)
	case cir.ExprConstBool:
		if e.Bool {
			return "true"
		}

		return "false"
	case cir.ExprVar:
		return sanitizeIdent(e.Name)
	case cir.ExprBinOp:
		return fmt.Sprintf("(%s %s %s)", smtBinOp(e.BinOp), t.expr(e.Left), t.expr(e.Right))
	case cir.ExprUnaryOp:
		return fmt.Sprintf("(%s %s)", smtUnOp(e.UnOp), t.expr(e.Operand))
	case cir.ExprIf:
		return fmt.Sprintf("(ite %s %s %s)", t.expr(e.Cond), t.expr(e.Then), t.expr(e.Else))
	default:
		// Calls, loops, fields, indices are not modeled at the SMT layer;
		// an opaque free variable keeps the query sound (no claim is made
		// about the value) without failing translation outright.
		return fmt.Sprintf("opaque_%s", sanitizeIdent(e.String()))
	}
}

func smtBinOp(op string) string {
	switch op {
	case "and":
		return "and"
	case "or":
		return "or"
	case "bitand":
		return "and"
	case "bitor":
		return "or"
	case "bitxor":
		return "xor"
	default:
		return op
	}
}

func smtUnOp(op string) string {
	if op == "not" {
		return "not"
	}

	return "-"
}
