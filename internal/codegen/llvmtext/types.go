package llvmtext

import "github.com/bmb-lang/bmbc/internal/types"

// llvmType maps a BMB type to its LLVM IR spelling (§4.5 "Type mapping"). A
// nil type defaults to i64, the backend's documented total-function
// fallback for missing type info.
func llvmType(t *types.Type) string {
	if t == nil {
		return "i64"
	}

	switch t.Kind {
	case types.KindI32, types.KindU32:
		return "i32"
	case types.KindI64, types.KindU64:
		return "i64"
	case types.KindF64:
		return "double"
	case types.KindBool:
		return "i1"
	case types.KindChar:
		return "i32"
	case types.KindUnit:
		return "i8"
	case types.KindString:
		return "ptr"
	case types.KindArray, types.KindRef, types.KindMutRef, types.KindPointer, types.KindNullable,
		types.KindStruct, types.KindTuple, types.KindEnum:
		// Nullable's zero-sentinel baseline representation (§9 "Null
		// sentinel limitation") reuses the element's own type; every other
		// composite here (arrays, structs, tuples, enums) is heap- or
		// stack-allocated and referenced through an opaque pointer.
		if t.Kind == types.KindNullable {
			return llvmType(t.Elem)
		}

		return "ptr"
	default:
		return "i64"
	}
}

// typeRank orders types for Select/Phi widening: pointer > double > i64 >
// i32 > i1 (§4.5 "Select / Phi type widening"). Unknown/mismatched LLVM type
// strings rank lowest so a recognized type always wins a tie against them.
func typeRank(llvm string) int {
	switch llvm {
	case "ptr":
		return 4
	case "double":
		return 3
	case "i64":
		return 2
	case "i32":
		return 1
	case "i1":
		return 0
	default:
		return -1
	}
}

// widen picks the Phi/Select result type given the LLVM types of its
// operands: the highest-ranked type wins, so a mixed ptr/i64 merge types as
// ptr (§8 property 10) rather than narrowing a pointer to an integer.
func widen(llvmTypes ...string) string {
	best := "i1"
	bestRank := -2

	for _, t := range llvmTypes {
		if r := typeRank(t); r > bestRank {
			bestRank = r
			best = t
		}
	}

	return best
}
