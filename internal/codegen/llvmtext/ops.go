package llvmtext

import "github.com/bmb-lang/bmbc/internal/types"

var cmpOps = map[string]bool{
	"eq": true, "ne": true, "lt": true, "le": true, "gt": true, "ge": true,
}

// isComparison reports whether op is one of the six comparison BinOp
// spellings MIR uses (§3 "comparisons").
func isComparison(op string) bool {
	return cmpOps[op]
}

// icmpPredicate maps a BinOp comparison spelling to its signed icmp
// predicate (§4.5 "comparisons emit icmp with signed predicates").
func icmpPredicate(op string) string {
	switch op {
	case "eq":
		return "eq"
	case "ne":
		return "ne"
	case "lt":
		return "slt"
	case "le":
		return "sle"
	case "gt":
		return "sgt"
	case "ge":
		return "sge"
	default:
		return "eq"
	}
}

// fcmpPredicate maps a BinOp comparison spelling to its ordered fcmp
// predicate (§4.5 "float comparisons emit fcmp").
func fcmpPredicate(op string) string {
	switch op {
	case "eq":
		return "oeq"
	case "ne":
		return "one"
	case "lt":
		return "olt"
	case "le":
		return "ole"
	case "gt":
		return "ogt"
	case "ge":
		return "oge"
	default:
		return "oeq"
	}
}

// arithOpcode maps a BinOp arithmetic/bitwise spelling and its operand type
// to an LLVM opcode mnemonic (§4.5 "Operation mapping").
func arithOpcode(op string, t *types.Type) string {
	isFloat := t != nil && t.Kind == types.KindF64

	switch op {
	case "+":
		if isFloat {
			return "fadd"
		}

		return "add nsw"
	case "-":
		if isFloat {
			return "fsub"
		}

		return "sub nsw"
	case "*":
		if isFloat {
			return "fmul"
		}

		return "mul nsw"
	case "/":
		if isFloat {
			return "fdiv"
		}

		return "sdiv"
	case "%":
		if isFloat {
			return "frem"
		}

		return "srem"
	case "bitand":
		return "and"
	case "bitor":
		return "or"
	case "bitxor":
		return "xor"
	case "shl":
		return "shl"
	case "shr":
		return "ashr"
	case "and":
		return "and"
	case "or":
		return "or"
	default:
		return "add nsw"
	}
}

// isLogical reports whether op is one of the two short-circuit-free boolean
// connectives MIR represents as a plain BinOp over i1 operands (§4.5
// "logical ops return i1").
func isLogical(op string) bool {
	return op == "and" || op == "or"
}
