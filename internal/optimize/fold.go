package optimize

import (
	"math"

	"github.com/bmb-lang/bmbc/internal/cir"
	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// ConstantFolding evaluates InstrBinOp and InstrUnaryOp instructions whose
// operands are both compile-time constants, replacing them with an
// InstrConst carrying the folded value (§4.4 item 2: simplify_binop,
// fold_binop, fold_unaryop). fold_builtin_call is handled by the builtin
// registry's own constant-argument fast paths at lowering time, not here,
// since by the time MIR reaches the optimizer a builtin call is already an
// ordinary InstrCall with no reserved "builtin" marker to dispatch on.
type ConstantFolding struct {
	fastMath bool
}

func (ConstantFolding) Name() string { return "ConstantFolding" }

func (p *ConstantFolding) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	changed := false

	for _, blk := range fn.Blocks {
		for i, instr := range blk.Instructions {
			switch instr.Kind {
			case mir.InstrBinOp:
				if c, ok := foldBinOp(instr.BinOp, instr.Lhs, instr.Rhs, p.fastMath); ok {
					blk.Instructions[i] = mir.Const(instr.Dest, c)
					changed = true
				}
			case mir.InstrUnaryOp:
				if c, ok := foldUnaryOp(instr.UnOp, instr.Src); ok {
					blk.Instructions[i] = mir.Const(instr.Dest, c)
					changed = true
				}
			}
		}
	}

	return changed
}

func foldBinOp(op string, lhs, rhs mir.Operand, fastMath bool) (mir.Constant, bool) {
	if lhs.Kind != mir.OperandConst || rhs.Kind != mir.OperandConst {
		return mir.Constant{}, false
	}

	l, r := lhs.Const, rhs.Const

	if l.Kind == mir.ConstInt && r.Kind == mir.ConstInt {
		return foldIntBinOp(op, l.Int, r.Int)
	}

	if l.Kind == mir.ConstFloat && r.Kind == mir.ConstFloat && (fastMath || (!math.IsNaN(l.Float) && !math.IsNaN(r.Float))) {
		return foldFloatBinOp(op, l.Float, r.Float)
	}

	if l.Kind == mir.ConstBool && r.Kind == mir.ConstBool {
		return foldBoolBinOp(op, l.Bool, r.Bool)
	}

	if l.Kind == mir.ConstString && r.Kind == mir.ConstString {
		return foldStringBinOp(op, l.String, r.String)
	}

	return mir.Constant{}, false
}

func foldIntBinOp(op string, l, r int64) (mir.Constant, bool) {
	switch op {
	case "+":
		return mir.Constant{Kind: mir.ConstInt, Int: l + r}, true
	case "-":
		return mir.Constant{Kind: mir.ConstInt, Int: l - r}, true
	case "*":
		return mir.Constant{Kind: mir.ConstInt, Int: l * r}, true
	case "/":
		if r == 0 {
			return mir.Constant{}, false
		}

		return mir.Constant{Kind: mir.ConstInt, Int: l / r}, true
	case "%":
		if r == 0 {
			return mir.Constant{}, false
		}

		return mir.Constant{Kind: mir.ConstInt, Int: l % r}, true
	case "bitand":
		return mir.Constant{Kind: mir.ConstInt, Int: l & r}, true
	case "bitor":
		return mir.Constant{Kind: mir.ConstInt, Int: l | r}, true
	case "bitxor":
		return mir.Constant{Kind: mir.ConstInt, Int: l ^ r}, true
	case "shl":
		return mir.Constant{Kind: mir.ConstInt, Int: l << uint(r)}, true
	case "shr":
		return mir.Constant{Kind: mir.ConstInt, Int: l >> uint(r)}, true
	case "eq":
		return mir.Constant{Kind: mir.ConstBool, Bool: l == r}, true
	case "ne":
		return mir.Constant{Kind: mir.ConstBool, Bool: l != r}, true
	case "lt":
		return mir.Constant{Kind: mir.ConstBool, Bool: l < r}, true
	case "le":
		return mir.Constant{Kind: mir.ConstBool, Bool: l <= r}, true
	case "gt":
		return mir.Constant{Kind: mir.ConstBool, Bool: l > r}, true
	case "ge":
		return mir.Constant{Kind: mir.ConstBool, Bool: l >= r}, true
	default:
		return mir.Constant{}, false
	}
}

func foldFloatBinOp(op string, l, r float64) (mir.Constant, bool) {
	switch op {
	case "+":
		return mir.Constant{Kind: mir.ConstFloat, Float: l + r}, true
	case "-":
		return mir.Constant{Kind: mir.ConstFloat, Float: l - r}, true
	case "*":
		return mir.Constant{Kind: mir.ConstFloat, Float: l * r}, true
	case "/":
		return mir.Constant{Kind: mir.ConstFloat, Float: l / r}, true
	case "eq":
		return mir.Constant{Kind: mir.ConstBool, Bool: l == r}, true
	case "ne":
		return mir.Constant{Kind: mir.ConstBool, Bool: l != r}, true
	case "lt":
		return mir.Constant{Kind: mir.ConstBool, Bool: l < r}, true
	case "le":
		return mir.Constant{Kind: mir.ConstBool, Bool: l <= r}, true
	case "gt":
		return mir.Constant{Kind: mir.ConstBool, Bool: l > r}, true
	case "ge":
		return mir.Constant{Kind: mir.ConstBool, Bool: l >= r}, true
	default:
		return mir.Constant{}, false
	}
}

func foldBoolBinOp(op string, l, r bool) (mir.Constant, bool) {
	switch op {
	case "and":
		return mir.Constant{Kind: mir.ConstBool, Bool: l && r}, true
	case "or":
		return mir.Constant{Kind: mir.ConstBool, Bool: l || r}, true
	case "eq":
		return mir.Constant{Kind: mir.ConstBool, Bool: l == r}, true
	case "ne":
		return mir.Constant{Kind: mir.ConstBool, Bool: l != r}, true
	default:
		return mir.Constant{}, false
	}
}

func foldStringBinOp(op string, l, r string) (mir.Constant, bool) {
	switch op {
	case "+":
		return mir.Constant{Kind: mir.ConstString, String: l + r}, true
	case "eq":
		return mir.Constant{Kind: mir.ConstBool, Bool: l == r}, true
	case "ne":
		return mir.Constant{Kind: mir.ConstBool, Bool: l != r}, true
	default:
		return mir.Constant{}, false
	}
}

func foldUnaryOp(op string, src mir.Operand) (mir.Constant, bool) {
	if src.Kind != mir.OperandConst {
		return mir.Constant{}, false
	}

	c := src.Const

	switch op {
	case "-":
		if c.Kind == mir.ConstInt {
			return mir.Constant{Kind: mir.ConstInt, Int: -c.Int}, true
		}

		if c.Kind == mir.ConstFloat {
			return mir.Constant{Kind: mir.ConstFloat, Float: -c.Float}, true
		}
	case "not":
		if c.Kind == mir.ConstBool {
			return mir.Constant{Kind: mir.ConstBool, Bool: !c.Bool}, true
		}
	}

	return mir.Constant{}, false
}

// IdentityElimination rewrites binary operations with an identity operand
// into a copy of the non-identity side, and absorbing operations into
// their absorbing constant (§4.4 item 2: `x+0`, `x*1`, `x bor 0`, `x<<0`,
// `x band 0 -> 0`, `x%1 -> 0`).
type IdentityElimination struct{}

func (IdentityElimination) Name() string { return "IdentityElimination" }

func (IdentityElimination) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	changed := false

	for _, blk := range fn.Blocks {
		for i, instr := range blk.Instructions {
			if instr.Kind != mir.InstrBinOp {
				continue
			}

			if rewritten, ok := simplifyIdentity(instr); ok {
				blk.Instructions[i] = rewritten
				changed = true
			}
		}
	}

	return changed
}

func simplifyIdentity(instr mir.Instruction) (mir.Instruction, bool) {
	rc, rIsConst := constInt(instr.Rhs)
	lc, lIsConst := constInt(instr.Lhs)

	switch instr.BinOp {
	case "+":
		if rIsConst && rc == 0 {
			return mir.Copy(instr.Dest, instr.Lhs), true
		}

		if lIsConst && lc == 0 {
			return mir.Copy(instr.Dest, instr.Rhs), true
		}
	case "-":
		if rIsConst && rc == 0 {
			return mir.Copy(instr.Dest, instr.Lhs), true
		}
	case "*":
		if rIsConst && rc == 1 {
			return mir.Copy(instr.Dest, instr.Lhs), true
		}

		if lIsConst && lc == 1 {
			return mir.Copy(instr.Dest, instr.Rhs), true
		}

		if (rIsConst && rc == 0) || (lIsConst && lc == 0) {
			return mir.Const(instr.Dest, mir.Constant{Kind: mir.ConstInt, Int: 0}), true
		}
	case "bitor":
		if rIsConst && rc == 0 {
			return mir.Copy(instr.Dest, instr.Lhs), true
		}

		if lIsConst && lc == 0 {
			return mir.Copy(instr.Dest, instr.Rhs), true
		}
	case "shl", "shr":
		if rIsConst && rc == 0 {
			return mir.Copy(instr.Dest, instr.Lhs), true
		}
	case "bitand":
		if (rIsConst && rc == 0) || (lIsConst && lc == 0) {
			return mir.Const(instr.Dest, mir.Constant{Kind: mir.ConstInt, Int: 0}), true
		}
	case "%":
		if rIsConst && rc == 1 {
			return mir.Const(instr.Dest, mir.Constant{Kind: mir.ConstInt, Int: 0}), true
		}
	}

	return instr, false
}

func constInt(op mir.Operand) (int64, bool) {
	if op.Kind == mir.OperandConst && op.Const.Kind == mir.ConstInt {
		return op.Const.Int, true
	}

	return 0, false
}

// ComparisonSimplification folds a self-comparison of the same place into
// its statically-known result (§4.4 item 2: `x==x -> true`, `x!=x ->
// false`), gated on non-NaN since float self-equality is false for NaN;
// fastMath opts into treating all types as non-NaN-bearing.
type ComparisonSimplification struct {
	fastMath bool
}

func (ComparisonSimplification) Name() string { return "ComparisonSimplification" }

func (p *ComparisonSimplification) Run(fn *mir.MirFunction, _ *cir.ProvenFactSet) bool {
	changed := false

	for _, blk := range fn.Blocks {
		for i, instr := range blk.Instructions {
			if instr.Kind != mir.InstrBinOp {
				continue
			}

			if (instr.BinOp != "eq" && instr.BinOp != "ne") || !samePlace(instr.Lhs, instr.Rhs) {
				continue
			}

			if instr.Lhs.Place.Type != nil && instr.Lhs.Place.Type.Kind == types.KindF64 && !p.fastMath {
				continue
			}

			blk.Instructions[i] = mir.Const(instr.Dest, mir.Constant{Kind: mir.ConstBool, Bool: instr.BinOp == "eq"})
			changed = true
		}
	}

	return changed
}

func samePlace(a, b mir.Operand) bool {
	return a.Kind == mir.OperandPlace && b.Kind == mir.OperandPlace && a.Place.Name == b.Place.Name
}
