package typecheck

import (
	"fmt"
	"unicode"

	"github.com/bmb-lang/bmbc/internal/ast"
	"github.com/bmb-lang/bmbc/internal/diagnostic"
	"github.com/bmb-lang/bmbc/internal/position"
	"github.com/bmb-lang/bmbc/internal/types"
)

// WarnKind enumerates 34 lint kinds and their codes (§4.1). The checker
// emits only some of them: unused bindings (as each scope closes, in
// popScope), unused functions, unreachable code, shadowing, duplicate
// functions, constant conditions, self comparison, integer division
// truncation, identity operations, absorbing elements, negated if
// conditions, double negation, single-arm matches, missing postconditions
// and arms after a wildcard. The other kinds have a code but no detector
// and are never emitted; lintNamingCasing and lintRedundantBoolComparison
// exist but have no caller.
type WarnKind int

const (
	WarnUnusedBinding WarnKind = iota
	WarnUnusedFunction
	WarnUnusedType
	WarnUnusedEnum
	WarnUnusedImport
	WarnUnusedTrait
	WarnUnusedMut
	WarnUnreachableCode
	WarnShadowBinding
	WarnDuplicateFunction
	WarnDuplicateMatchArm
	WarnConstantCondition
	WarnSelfComparison
	WarnRedundantBoolComparison
	WarnIntegerDivisionTruncation
	WarnUnusedReturnValue
	WarnIdentityOperation
	WarnNegatedIfCondition
	WarnAbsorbingElement
	WarnDoubleNegation
	WarnSingleArmMatch
	WarnRedundantCast
	WarnMissingPostcondition
	WarnSemanticDuplication
	WarnNamingCasingViolation
	WarnTrivialContract
	WarnUnusedParameter
	WarnUnusedStructField
	WarnRedundantElse
	WarnUnnecessaryParentheses
	WarnLargeCopyByValue
	WarnMissingElseBranch
	WarnRedundantReturn
	WarnDeadMatchArmAfterWildcard
)

func (k WarnKind) code() string {
	codes := [...]string{
		"W4001", "W4010", "W4011", "W4012", "W4013", "W4014", "W4015",
		"W4004", "W4002", "W4003", "W4020", "W4030", "W4031", "W4032",
		"W4033", "W4040", "W4034", "W4035", "W4036", "W4037", "W4050",
		"W4051", "W7001", "W4060", "W4070", "W7002", "W4016", "W4017",
		"W4038", "W4052", "W4041", "W4018", "W4053", "W4021",
	}
	if int(k) < len(codes) {
		return codes[k]
	}

	return "W4999"
}

func (c *Checker) lintSelfComparison(n *ast.BinaryExpr) {
	if exprEqualIdent(n.Left, n.Right) {
		c.warn(diagnostic.NewDiagnostic().Warning().Semantic().Code(WarnSelfComparison.code()).
			Title("self comparison").
			Message("comparing a value to itself always yields the same result").
			Span(n.Sp).Tag("self-comparison").Build())
	}
}

func exprEqualIdent(a, b ast.Expr) bool {
	ia, oka := a.(*ast.Ident)
	ib, okb := b.(*ast.Ident)

	return oka && okb && ia.Name == ib.Name
}

func (c *Checker) lintIdentityOp(n *ast.BinaryExpr, operandType *types.Type) {
	if !types.IsNumeric(operandType) {
		return
	}

	isZero := func(e ast.Expr) bool {
		l, ok := e.(*ast.Literal)

		return ok && ((l.Kind == ast.LitInt && l.Int == 0) || (l.Kind == ast.LitFloat && l.Float == 0))
	}
	isOne := func(e ast.Expr) bool {
		l, ok := e.(*ast.Literal)

		return ok && ((l.Kind == ast.LitInt && l.Int == 1) || (l.Kind == ast.LitFloat && l.Float == 1))
	}

	identity := (n.Op == ast.BinAdd && (isZero(n.Left) || isZero(n.Right))) ||
		(n.Op == ast.BinMul && (isOne(n.Left) || isOne(n.Right))) ||
		(n.Op == ast.BinBitOr && (isZero(n.Left) || isZero(n.Right))) ||
		(n.Op == ast.BinShl && isZero(n.Right)) ||
		(n.Op == ast.BinShr && isZero(n.Right))

	if identity {
		c.warn(diagnostic.NewDiagnostic().Warning().Style().Code(WarnIdentityOperation.code()).
			Title("identity operation").
			Message("this operation does not change the value of its operand").
			Span(n.Sp).Tag("identity-op").Build())
	}
}

func (c *Checker) lintAbsorbingElement(n *ast.BinaryExpr) {
	isZero := func(e ast.Expr) bool {
		l, ok := e.(*ast.Literal)

		return ok && l.Kind == ast.LitInt && l.Int == 0
	}
	isOne := func(e ast.Expr) bool {
		l, ok := e.(*ast.Literal)

		return ok && l.Kind == ast.LitInt && l.Int == 1
	}

	absorbing := (n.Op == ast.BinMul && (isZero(n.Left) || isZero(n.Right))) ||
		(n.Op == ast.BinMod && isOne(n.Right)) ||
		(n.Op == ast.BinBitAnd && (isZero(n.Left) || isZero(n.Right)))

	if absorbing {
		c.warn(diagnostic.NewDiagnostic().Warning().Style().Code(WarnAbsorbingElement.code()).
			Title("absorbing element").
			Message("this operation always produces the same constant result").
			Span(n.Sp).Tag("absorbing-element").Build())
	}
}

func (c *Checker) lintDoubleNegation(n *ast.UnaryExpr) {
	inner, ok := n.Val.(*ast.UnaryExpr)
	if ok && inner.Op == n.Op {
		c.warn(diagnostic.NewDiagnostic().Warning().Style().Code(WarnDoubleNegation.code()).
			Title("double negation").
			Message("double negation can be simplified away").
			Span(n.Sp).Tag("double-negation").Build())
	}
}

func (c *Checker) lintConstantCondition(cond ast.Expr, context string) {
	if l, ok := cond.(*ast.Literal); ok && l.Kind == ast.LitBool {
		c.warn(diagnostic.NewDiagnostic().Warning().Semantic().Code(WarnConstantCondition.code()).
			Title("constant condition").
			Message(fmt.Sprintf("%s condition is always %v", context, l.Bool)).
			Span(cond.Span()).Tag("constant-condition").Build())
	}
}

func (c *Checker) lintNegatedIf(n *ast.IfExpr) {
	if u, ok := n.Cond.(*ast.UnaryExpr); ok && u.Op == ast.UnNot && n.Else != nil {
		c.warn(diagnostic.NewDiagnostic().Warning().Style().Code(WarnNegatedIfCondition.code()).
			Title("negated if condition").
			Message("consider swapping the branches instead of negating the condition").
			Span(n.Sp).Tag("negated-if").Build())
	}
}

func (c *Checker) lintUnusedReturn(n *ast.CallExpr, ret *types.Type) {
	// No unused-return-value warning is emitted: this hook does nothing,
	// and inferBlock does not inspect discarded call results either.
	_ = n
	_ = ret
}

func (c *Checker) lintIntegerDivisionTruncation(n *ast.BinaryExpr) {
	c.warn(diagnostic.NewDiagnostic().Warning().Semantic().Code(WarnIntegerDivisionTruncation.code()).
		Title("integer division truncation").
		Message("integer division truncates toward zero; use a float operand if fractional results are expected").
		Span(n.Sp).Tag("integer-division").Build())
}

// lintNamingCasing checks a declaration name against BMB's casing
// convention (snake_case for functions/bindings, PascalCase for types).
func (c *Checker) lintNamingCasing(name string, wantPascal bool, sp position.Span) {
	ok := wantPascal && isPascalCase(name)
	ok = ok || (!wantPascal && isSnakeCase(name))

	if ok {
		return
	}

	want := "snake_case"
	if wantPascal {
		want = "PascalCase"
	}

	c.warn(diagnostic.NewDiagnostic().Warning().Style().Code(WarnNamingCasingViolation.code()).
		Title("naming convention").
		Message(fmt.Sprintf("%q does not follow %s naming convention", name, want)).
		Span(sp).Tag("naming-casing").Build())
}

func (c *Checker) lintRedundantBoolComparison(n *ast.BinaryExpr) {
	check := func(e ast.Expr) (bool, bool) {
		l, ok := e.(*ast.Literal)

		return ok && l.Kind == ast.LitBool, ok && l.Kind == ast.LitBool && l.Bool
	}

	lok, _ := check(n.Left)
	rok, _ := check(n.Right)

	if (n.Op == ast.BinEq || n.Op == ast.BinNe) && (lok || rok) {
		c.warn(diagnostic.NewDiagnostic().Warning().Style().Code(WarnRedundantBoolComparison.code()).
			Title("redundant bool comparison").
			Message("comparing directly against a bool literal is redundant").
			Span(n.Sp).Tag("redundant-bool-comparison").Build())
	}
}

func isPascalCase(name string) bool {
	r := []rune(name)

	return len(r) > 0 && unicode.IsUpper(r[0])
}

func isSnakeCase(name string) bool {
	for _, r := range name {
		if unicode.IsUpper(r) {
			return false
		}
	}

	return true
}
