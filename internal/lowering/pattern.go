package lowering

import (
	"github.com/bmb-lang/bmbc/internal/ast"
	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// patternTest emits instructions evaluating whether scrut matches pat,
// returning a bool-typed Operand. It must not bind any names: binding only
// happens once the branch testing this operand has been taken
// (bindPatternVars).
func (b *builder) patternTest(scrut mir.Operand, scrutType *types.Type, pat ast.Pattern) mir.Operand {
	switch p := pat.(type) {
	case *ast.WildcardPattern, *ast.BindingPattern:
		return mir.BoolConst(true)

	case *ast.LiteralPattern:
		return b.compareEq(scrut, literalConst(p.Value))

	case *ast.RangePattern:
		lo := b.cmp("ge", scrut, literalConst(p.Lo))
		hiOp := "le"
		if !p.Inclusive {
			hiOp = "lt"
		}

		hi := b.cmp(hiOp, scrut, literalConst(p.Hi))

		return b.logicalAnd(lo, hi)

	case *ast.TuplePattern:
		var acc mir.Operand = mir.BoolConst(true)

		for i, sub := range p.Elems {
			elemType := tupleElemType(scrutType, i)
			elem := b.project(scrut, mir.ProjIndex, "", intOperand(int64(i)), elemType)
			t := b.patternTest(elem, elemType, sub)
			acc = b.logicalAnd(acc, t)
		}

		return acc

	case *ast.StructPattern:
		var acc mir.Operand = mir.BoolConst(true)

		for name, sub := range p.Fields {
			fieldType := structFieldType(scrutType, name)
			elem := b.project(scrut, mir.ProjField, name, mir.Operand{}, fieldType)
			t := b.patternTest(elem, fieldType, sub)
			acc = b.logicalAnd(acc, t)
		}

		return acc

	case *ast.EnumVariantPattern:
		idx := variantIndex(scrutType, p.Variant)
		tag := b.project(scrut, mir.ProjField, "__tag__", mir.Operand{}, types.I64)
		test := b.compareEq(tag, mir.IntConst(int64(idx)))

		for i, sub := range p.SubPats {
			payloadType := variantPayloadType(scrutType, p.Variant, i)
			elem := b.project(scrut, mir.ProjField, payloadField(i), mir.Operand{}, payloadType)
			t := b.patternTest(elem, payloadType, sub)
			test = b.logicalAnd(test, t)
		}

		return test

	case *ast.OrPattern:
		var acc mir.Operand = mir.BoolConst(false)

		for _, alt := range p.Alternatives {
			t := b.patternTest(scrut, scrutType, alt)
			acc = b.logicalOr(acc, t)
		}

		return acc

	default:
		return mir.BoolConst(true)
	}
}

// bindPatternVars assumes pat has already matched scrut and materializes
// every name pat binds into the current scope.
func (b *builder) bindPatternVars(scrut mir.Operand, scrutType *types.Type, pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.BindingPattern:
		b.bindOperand(p.Name, scrut, scrutType)

	case *ast.TuplePattern:
		for i, sub := range p.Elems {
			elemType := tupleElemType(scrutType, i)
			elem := b.project(scrut, mir.ProjIndex, "", intOperand(int64(i)), elemType)
			b.bindPatternVars(elem, elemType, sub)
		}

	case *ast.StructPattern:
		for name, sub := range p.Fields {
			fieldType := structFieldType(scrutType, name)
			elem := b.project(scrut, mir.ProjField, name, mir.Operand{}, fieldType)
			b.bindPatternVars(elem, fieldType, sub)
		}

	case *ast.EnumVariantPattern:
		for i, sub := range p.SubPats {
			payloadType := variantPayloadType(scrutType, p.Variant, i)
			elem := b.project(scrut, mir.ProjField, payloadField(i), mir.Operand{}, payloadType)
			b.bindPatternVars(elem, payloadType, sub)
		}

	case *ast.OrPattern:
		if len(p.Alternatives) > 0 {
			b.bindPatternVars(scrut, scrutType, p.Alternatives[0])
		}
	}
}

// bindOperand materializes op under name, copying into a fresh place when op
// is not already a place (a binding must name a place so later reads can
// resolve it).
func (b *builder) bindOperand(name string, op mir.Operand, t *types.Type) {
	if op.Kind == mir.OperandPlace {
		b.bind(name, op.Place.Name)

		return
	}

	dest := b.freshPlace(name, t)
	b.emit(mir.Copy(dest, op))
	b.bind(name, dest.Name)
}

func (b *builder) project(base mir.Operand, proj mir.Proj, field string, index mir.Operand, t *types.Type) mir.Operand {
	dest := b.freshPlace("proj", t)

	switch proj {
	case mir.ProjField:
		b.emit(mir.Instruction{Kind: mir.InstrFieldLoad, Dest: dest, Src: base, Field: field})
	case mir.ProjIndex:
		b.emit(mir.Instruction{Kind: mir.InstrIndexLoad, Dest: dest, Addr: base, Index: index})
	}

	return mir.OperandFromPlace(dest)
}

func (b *builder) compareEq(a, c mir.Operand) mir.Operand { return b.cmp("eq", a, c) }

func (b *builder) cmp(op string, a, c mir.Operand) mir.Operand {
	dest := b.freshPlace("cmp", types.Bool)
	b.emit(mir.BinOpInstr(dest, op, a, c))

	return mir.OperandFromPlace(dest)
}

func (b *builder) logicalAnd(a, c mir.Operand) mir.Operand {
	dest := b.freshPlace("and", types.Bool)
	b.emit(mir.BinOpInstr(dest, "and", a, c))

	return mir.OperandFromPlace(dest)
}

func (b *builder) logicalOr(a, c mir.Operand) mir.Operand {
	dest := b.freshPlace("or", types.Bool)
	b.emit(mir.BinOpInstr(dest, "or", a, c))

	return mir.OperandFromPlace(dest)
}

func literalConst(l *ast.Literal) mir.Operand {
	if l == nil {
		return mir.IntConst(0)
	}

	switch l.Kind {
	case ast.LitInt:
		return mir.IntConst(l.Int)
	case ast.LitFloat:
		return mir.OperandFromConst(mir.Constant{Kind: mir.ConstFloat, Float: l.Float})
	case ast.LitBool:
		return mir.BoolConst(l.Bool)
	case ast.LitChar:
		return mir.OperandFromConst(mir.Constant{Kind: mir.ConstChar, Char: l.Char})
	case ast.LitString:
		return mir.OperandFromConst(mir.Constant{Kind: mir.ConstString, String: l.String})
	default:
		return mir.OperandFromConst(mir.Constant{Kind: mir.ConstUnit})
	}
}

func intOperand(v int64) mir.Operand { return mir.IntConst(v) }

// payloadField names an enum variant's Nth payload slot for FieldLoad
// projection purposes.
func payloadField(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return "payload_" + string(digits[i])
	}

	return "payload_n"
}

func tupleElemType(t *types.Type, i int) *types.Type {
	if t == nil || t.Kind != types.KindTuple || i >= len(t.Tuple) {
		return types.I64
	}

	return t.Tuple[i]
}

func structFieldType(t *types.Type, name string) *types.Type {
	if t == nil || t.Kind != types.KindStruct {
		return types.I64
	}

	for i, n := range t.FieldNames {
		if n == name && i < len(t.FieldTypes) {
			return t.FieldTypes[i]
		}
	}

	return types.I64
}

func variantIndex(t *types.Type, variant string) int {
	if t == nil || t.Kind != types.KindEnum {
		return 0
	}

	for i, n := range t.VariantNames {
		if n == variant {
			return i
		}
	}

	return 0
}

func variantPayloadType(t *types.Type, variant string, i int) *types.Type {
	if t == nil || t.Kind != types.KindEnum {
		return types.I64
	}

	for vi, n := range t.VariantNames {
		if n == variant {
			if vi < len(t.VariantPayload) && i < len(t.VariantPayload[vi]) {
				return t.VariantPayload[vi][i]
			}
		}
	}

	return types.I64
}
