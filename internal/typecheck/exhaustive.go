package typecheck

import (
	"fmt"

	"github.com/bmb-lang/bmbc/internal/ast"
	"github.com/bmb-lang/bmbc/internal/diagnostic"
	"github.com/bmb-lang/bmbc/internal/types"
)

// inferMatch type-checks a match expression: every arm's pattern is bound
// against the scrutinee type, guards must be bool, and arm bodies unify to
// a single result type the way if/block branches do. Exhaustiveness and
// reachability are checked structurally afterward (§4.1).
func (c *Checker) inferMatch(n *ast.MatchExpr) (*types.Type, error) {
	scrutT, err := c.checkExpr(n.Scrutinee)
	if err != nil {
		return nil, err
	}

	var result *types.Type

	seenWildcard := false

	for _, arm := range n.Arms {
		if seenWildcard {
			c.warn(diagnostic.NewDiagnostic().Warning().Semantic().Code(WarnDeadMatchArmAfterWildcard.code()).
				Title("unreachable match arm").
				Message("this arm can never match: a preceding arm already covers every remaining case").
				Span(arm.Sp).Tag("unreachable-pattern").Build())
		}

		c.pushScope()

		if err := c.bindPattern(arm.Pattern, scrutT); err != nil {
			c.popScope()

			return nil, err
		}

		if arm.Guard != nil {
			gt, err := c.checkExpr(arm.Guard)
			if err != nil {
				c.popScope()

				return nil, err
			}

			if !c.unify(gt, types.Bool) {
				c.popScope()

				return nil, c.typeError(fmt.Sprintf("match guard must be bool, found %s", gt), arm.Guard.Span())
			}
		}

		bt, err := c.checkExpr(arm.Body)
		if err != nil {
			c.popScope()

			return nil, err
		}

		c.popScope()

		if result == nil || result.Kind == types.KindDivergent {
			result = bt
		} else if bt.Kind != types.KindDivergent && !c.unify(result, bt) {
			return nil, c.typeError(fmt.Sprintf("match arms have incompatible types: %s and %s", result, bt), arm.Body.Span())
		}

		if arm.Guard == nil && isCatchAllPattern(arm.Pattern) {
			seenWildcard = true
		}
	}

	c.checkExhaustiveness(n, scrutT)
	c.lintSingleArmMatch(n)

	if result == nil {
		return types.Unit, nil
	}

	return result, nil
}

// isCatchAllPattern reports whether p matches every value of its type on
// its own: a wildcard, a bare binding, or an or-pattern with at least one
// catch-all alternative.
func isCatchAllPattern(p ast.Pattern) bool {
	switch pp := p.(type) {
	case *ast.WildcardPattern, *ast.BindingPattern:
		return true
	case *ast.OrPattern:
		for _, alt := range pp.Alternatives {
			if isCatchAllPattern(alt) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

// bindPattern declares the bindings a pattern introduces against scrutT,
// and reports a type error if the pattern's shape cannot match scrutT.
func (c *Checker) bindPattern(p ast.Pattern, scrutT *types.Type) error {
	switch n := p.(type) {
	case *ast.WildcardPattern:
		return nil

	case *ast.BindingPattern:
		c.declare(n.Name, scrutT, false, n.Sp)

		return nil

	case *ast.LiteralPattern:
		lt := c.inferLiteral(n.Value)
		if !c.unify(lt, scrutT) {
			return c.typeError(fmt.Sprintf("pattern type %s does not match scrutinee type %s", lt, scrutT), n.Sp)
		}

		return nil

	case *ast.RangePattern:
		if !types.IsNumeric(scrutT) {
			return c.typeError(fmt.Sprintf("range pattern requires a numeric scrutinee, found %s", scrutT), n.Sp)
		}

		return nil

	case *ast.TuplePattern:
		base := c.reg.Resolve(scrutT)
		if base == nil {
			base = scrutT
		}

		if base.Kind != types.KindTuple || len(base.Tuple) != len(n.Elems) {
			return c.typeError(fmt.Sprintf("tuple pattern does not match scrutinee type %s", scrutT), n.Sp)
		}

		for i, sub := range n.Elems {
			if err := c.bindPattern(sub, base.Tuple[i]); err != nil {
				return err
			}
		}

		return nil

	case *ast.EnumVariantPattern:
		return c.bindEnumVariantPattern(n, scrutT)

	case *ast.StructPattern:
		base := c.reg.Resolve(scrutT)
		if base == nil {
			base = scrutT
		}

		if base.Kind != types.KindStruct {
			return c.typeError(fmt.Sprintf("struct pattern does not match scrutinee type %s", scrutT), n.Sp)
		}

		for field, sub := range n.Fields {
			idx := indexOf(base.FieldNames, field)
			if idx < 0 {
				return c.typeError(fmt.Sprintf("%s has no field %q", base.Name, field), sub.Span())
			}

			if err := c.bindPattern(sub, base.FieldTypes[idx]); err != nil {
				return err
			}
		}

		return nil

	case *ast.OrPattern:
		for _, alt := range n.Alternatives {
			if err := c.bindPattern(alt, scrutT); err != nil {
				return err
			}
		}

		return nil

	default:
		return c.typeError("unsupported pattern kind", p.Span())
	}
}

func (c *Checker) bindEnumVariantPattern(n *ast.EnumVariantPattern, scrutT *types.Type) error {
	base := c.reg.Resolve(scrutT)
	if base == nil {
		base = scrutT
	}

	if base.Kind != types.KindEnum {
		return c.typeError(fmt.Sprintf("variant pattern %s::%s does not match scrutinee type %s", n.TypeName, n.Variant, scrutT), n.Sp)
	}

	idx := indexOf(base.VariantNames, n.Variant)
	if idx < 0 {
		return c.typeError(fmt.Sprintf("%s has no variant %q", base.Name, n.Variant), n.Sp)
	}

	payload := base.VariantPayload[idx]
	if len(n.SubPats) != len(payload) {
		return c.typeError(fmt.Sprintf("%s::%s expects %d field(s), found %d", base.Name, n.Variant, len(payload), len(n.SubPats)), n.Sp)
	}

	for i, sub := range n.SubPats {
		if err := c.bindPattern(sub, payload[i]); err != nil {
			return err
		}
	}

	return nil
}

// checkExhaustiveness reports non_exhaustive when no arm (or combination of
// arms) covers every value of scrutT. It only reasons about the top-level
// pattern shape of each arm, which suffices for the finite, flat match
// forms the language exposes (bool, enum variant sets, and catch-alls);
// nested refinements within an already-covered arm do not affect coverage.
func (c *Checker) checkExhaustiveness(n *ast.MatchExpr, scrutT *types.Type) {
	for _, arm := range n.Arms {
		if arm.Guard == nil && isCatchAllPattern(arm.Pattern) {
			return
		}
	}

	base := c.reg.Resolve(scrutT)
	if base == nil {
		base = scrutT
	}

	switch base.Kind {
	case types.KindBool:
		covered := map[bool]bool{}

		for _, arm := range n.Arms {
			if lp, ok := arm.Pattern.(*ast.LiteralPattern); ok && lp.Value.Kind == ast.LitBool && arm.Guard == nil {
				covered[lp.Value.Bool] = true
			}
		}

		if !covered[true] || !covered[false] {
			c.nonExhaustive(n, "missing arm(s) for the remaining bool value(s)")
		}

	case types.KindEnum:
		covered := map[string]bool{}

		for _, arm := range n.Arms {
			c.collectCoveredVariants(arm.Pattern, arm.Guard, covered)
		}

		var missing []string

		for _, v := range base.VariantNames {
			if !covered[v] {
				missing = append(missing, v)
			}
		}

		if len(missing) > 0 {
			c.nonExhaustive(n, fmt.Sprintf("missing variant(s): %v", missing))
		}

	default:
		c.nonExhaustive(n, "no wildcard or binding arm covers the remaining values")
	}
}

func (c *Checker) collectCoveredVariants(p ast.Pattern, guard ast.Expr, covered map[string]bool) {
	if guard != nil {
		return
	}

	switch n := p.(type) {
	case *ast.EnumVariantPattern:
		covered[n.Variant] = true
	case *ast.OrPattern:
		for _, alt := range n.Alternatives {
			c.collectCoveredVariants(alt, guard, covered)
		}
	}
}

func (c *Checker) nonExhaustive(n *ast.MatchExpr, detail string) {
	c.warn(diagnostic.NewDiagnostic().Warning().Semantic().Code("W4080").
		Title("non-exhaustive match").
		Message(fmt.Sprintf("match does not cover every possible value: %s", detail)).
		Span(n.Sp).Tag("non-exhaustive").Build())
}

// lintSingleArmMatch flags the common `match x { Variant(v) => ..., _ =>
// () }` shape, which reads more directly as an if-let.
func (c *Checker) lintSingleArmMatch(n *ast.MatchExpr) {
	if len(n.Arms) != 2 {
		return
	}

	first, second := n.Arms[0], n.Arms[1]
	if _, ok := first.Pattern.(*ast.EnumVariantPattern); !ok {
		return
	}

	if !isCatchAllPattern(second.Pattern) || second.Guard != nil {
		return
	}

	c.warn(diagnostic.NewDiagnostic().Warning().Style().Code(WarnSingleArmMatch.code()).
		Title("single-arm match").
		Message("this match has a single meaningful arm; consider an if-let instead").
		Span(n.Sp).Tag("single-arm-match").Build())
}
