package typecheck

import "github.com/bmb-lang/bmbc/internal/types"

// unifier holds the substitution map for type parameters generated as
// unification variables at generic instantiation sites. Substitutions are
// resolved eagerly (no separate "apply" pass) since the checker is a
// single linear traversal.
type unifier struct {
	subst map[string]*types.Type
}

func newUnifier() *unifier { return &unifier{subst: make(map[string]*types.Type)} }

func (u *unifier) resolve(t *types.Type) *types.Type {
	for t != nil && t.Kind == types.KindTypeParam {
		sub, ok := u.subst[t.Name]
		if !ok || sub == t {
			return t
		}

		t = sub
	}

	return t
}

func (u *unifier) bind(name string, t *types.Type) { u.subst[name] = t }

// unify performs structural unification. Composites unify member-wise;
// type parameters bind to whatever they meet first. A numeric type unifies
// only with the identical kind: an integer literal is typed i64 by
// inferLiteral, so it does not unify with an i32, u32 or u64 slot.
func (c *Checker) unify(a, b *types.Type) bool {
	a = c.solver.resolve(a)
	b = c.solver.resolve(b)

	if a == nil || b == nil {
		return a == b
	}

	if a.Kind == types.KindTypeParam {
		c.solver.bind(a.Name, b)

		return true
	}

	if b.Kind == types.KindTypeParam {
		c.solver.bind(b.Name, a)

		return true
	}

	if a.Kind == types.KindDivergent || b.Kind == types.KindDivergent {
		return true
	}

	if types.IsNumeric(a) && types.IsNumeric(b) && a.Kind == b.Kind {
		return true
	}

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case types.KindArray:
		if a.ArrayLen >= 0 && b.ArrayLen >= 0 && a.ArrayLen != b.ArrayLen {
			return false
		}

		return c.unify(a.Elem, b.Elem)
	case types.KindTuple:
		if len(a.Tuple) != len(b.Tuple) {
			return false
		}

		for i := range a.Tuple {
			if !c.unify(a.Tuple[i], b.Tuple[i]) {
				return false
			}
		}

		return true
	case types.KindNullable, types.KindRef, types.KindMutRef, types.KindPointer, types.KindRange, types.KindAtomic:
		return c.unify(a.Elem, b.Elem)
	case types.KindFunction:
		if len(a.Params) != len(b.Params) {
			return false
		}

		for i := range a.Params {
			if !c.unify(a.Params[i], b.Params[i]) {
				return false
			}
		}

		return c.unify(a.Return, b.Return)
	case types.KindStruct, types.KindEnum, types.KindAlias, types.KindTrait:
		if a.Name != b.Name {
			return false
		}

		for i := range a.TypeArgs {
			if i >= len(b.TypeArgs) || !c.unify(a.TypeArgs[i], b.TypeArgs[i]) {
				return false
			}
		}

		return true
	default:
		return true
	}
}

// coerceNullable implements the nullable coercion rule: assigning T to a
// slot of type T? implicitly wraps it at the type layer (§4.1).
func coerceNullable(value, slot *types.Type) *types.Type {
	if slot != nil && slot.Kind == types.KindNullable && value != nil && value.Kind != types.KindNullable {
		if types.Equal(value, slot.Elem) {
			return slot
		}
	}

	return value
}
