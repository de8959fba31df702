package typecheck

import "github.com/bmb-lang/bmbc/internal/types"

// BuiltinFunctions enumerates the curated runtime-backed free functions
// from §4.3. The type checker, lowering, and codegen each keep their own
// registration of these (the "three-location registration discipline"
// §4.3 calls for); this is the type checker's.
var BuiltinFunctions = []string{
	"print", "println", "assert", "abs", "min", "max", "sqrt", "string_concat",
}

// registerBuiltins seeds the registry with the signatures of §4.3's
// curated builtin functions and the method surfaces §4.1 calls for:
// nullable's Option surface, array/string built-in methods.
func registerBuiltins(r *types.Registry) {
	r.DefineFunction("print", types.Func([]*types.Type{types.StringT}, types.Unit))
	r.DefineFunction("println", types.Func([]*types.Type{types.StringT}, types.Unit))
	r.DefineFunction("assert", types.Func([]*types.Type{types.Bool}, types.Unit))
	r.DefineFunction("abs", types.Func([]*types.Type{types.I64}, types.I64))
	r.DefineFunction("min", types.Func([]*types.Type{types.I64, types.I64}, types.I64))
	r.DefineFunction("max", types.Func([]*types.Type{types.I64, types.I64}, types.I64))
	r.DefineFunction("sqrt", types.Func([]*types.Type{types.F64}, types.F64))
	r.DefineFunction("string_concat", types.Func([]*types.Type{types.StringT, types.StringT}, types.StringT))

	// Option method surface, shared by every T? instantiation: dispatch
	// keys on the synthetic type name "?" since nullable has no registry
	// entry of its own (it is erased structurally, not nominally).
	r.AddMethod("?", "is_some", types.Func(nil, types.Bool))
	r.AddMethod("?", "is_none", types.Func(nil, types.Bool))
	r.AddMethod("?", "unwrap", types.Func(nil, types.Divergent)) // instantiated per-call by dispatch.go
	r.AddMethod("?", "unwrap_or", types.Func([]*types.Type{types.Divergent}, types.Divergent))

	// Array method surface, dispatch key "[]".
	r.AddMethod("[]", "len", types.Func(nil, types.I64))
	r.AddMethod("[]", "push", types.Func([]*types.Type{types.Divergent}, types.Unit))
	r.AddMethod("[]", "pop", types.Func(nil, types.Divergent))

	// String method surface.
	r.AddMethod("string", "len", types.Func(nil, types.I64))
	r.AddMethod("string", "byte_at", types.Func([]*types.Type{types.I64}, types.I64))
	r.AddMethod("string", "ord", types.Func([]*types.Type{types.I64}, types.I64))
	r.AddMethod("string", "concat", types.Func([]*types.Type{types.StringT}, types.StringT))
	r.AddMethod("string", "contains", types.Func([]*types.Type{types.StringT}, types.Bool))
	r.AddMethod("string", "starts_with", types.Func([]*types.Type{types.StringT}, types.Bool))
	r.AddMethod("string", "ends_with", types.Func([]*types.Type{types.StringT}, types.Bool))
	r.AddMethod("string", "to_upper", types.Func(nil, types.StringT))
	r.AddMethod("string", "to_lower", types.Func(nil, types.StringT))
	r.AddMethod("string", "trim", types.Func(nil, types.StringT))
}
