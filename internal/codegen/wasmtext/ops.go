package wasmtext

var cmpOps = map[string]bool{
	"eq": true, "ne": true, "lt": true, "le": true, "gt": true, "ge": true,
}

func isComparison(op string) bool { return cmpOps[op] }

func isLogical(op string) bool { return op == "and" || op == "or" }

// cmpSuffix maps a BinOp comparison spelling to its WAT signed-predicate
// suffix (§4.6 "comparisons use signed predicates"). Equality has no
// sign; f64 has no signed variant either, handled separately by the
// caller.
func cmpSuffix(op string, float bool) string {
	switch op {
	case "eq":
		return "eq"
	case "ne":
		return "ne"
	case "lt":
		if float {
			return "lt"
		}

		return "lt_s"
	case "le":
		if float {
			return "le"
		}

		return "le_s"
	case "gt":
		if float {
			return "gt"
		}

		return "gt_s"
	case "ge":
		if float {
			return "ge"
		}

		return "ge_s"
	default:
		return "eq"
	}
}

// arithOpcode maps a BinOp arithmetic/bitwise spelling to its WAT mnemonic
// for value type prefix (e.g. "i64", "i32", "f64") (§4.6 "Op mapping":
// signed div/rem/shr, i64.eqz for NOT handled separately, negation as
// 0-sub handled separately).
func arithOpcode(op, prefix string) string {
	float := prefix == "f64"

	switch op {
	case "+":
		return "add"
	case "-":
		return "sub"
	case "*":
		return "mul"
	case "/":
		if float {
			return "div"
		}

		return "div_s"
	case "%":
		return "rem_s"
	case "bitand", "and":
		return "and"
	case "bitor", "or":
		return "or"
	case "bitxor":
		return "xor"
	case "shl":
		return "shl"
	case "shr":
		return "shr_s"
	default:
		return "add"
	}
}
