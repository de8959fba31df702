package wasmtext

import "github.com/bmb-lang/bmbc/internal/types"

// watType maps a BMB type to its WAT value type (§4.6 "Type mapping"). A
// nil type defaults to i64, matching the LLVM backend's own fallback for
// missing type info under the shared "backend cannot fail" contract.
func watType(t *types.Type) string {
	if t == nil {
		return "i64"
	}

	switch t.Kind {
	case types.KindI32, types.KindU32:
		return "i32"
	case types.KindI64, types.KindU64:
		return "i64"
	case types.KindF64:
		return "f64"
	case types.KindBool:
		return "i32"
	case types.KindChar:
		return "i32"
	case types.KindUnit:
		return "i32"
	case types.KindString:
		return "i32"
	case types.KindNullable:
		return watType(t.Elem)
	case types.KindArray, types.KindRef, types.KindMutRef, types.KindPointer,
		types.KindStruct, types.KindTuple, types.KindEnum:
		// Every composite/pointer-shaped value is a linear-memory byte
		// offset, which this backend's baseline (wasm32-style address
		// space) represents as i32 (§4.6: "ptr/string -> i32").
		return "i32"
	default:
		return "i64"
	}
}
