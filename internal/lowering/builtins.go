package lowering

import "github.com/bmb-lang/bmbc/internal/types"

// BuiltinSig is the lowering-side half of the three-location registration
// discipline (§4.3 "Builtin functions"): the type checker already knows the
// signature; lowering additionally needs the MIR-level return type and the
// external runtime symbol the call compiles to, since BMB source names
// (`string_concat`) and runtime symbols (`bmb_string_concat`) differ.
type BuiltinSig struct {
	Name         string
	RuntimeSymbol string
	Return       *types.Type
	IsPure       bool
}

// BuiltinRegistry resolves a BMB builtin name to its lowering signature.
type BuiltinRegistry struct {
	sigs map[string]BuiltinSig
}

// NewBuiltinRegistry returns a registry seeded with the curated builtin set
// named in §4.3: print, println, assert, abs, min, max, sqrt,
// string_concat, plus the nullable/array runtime helpers the ABI sections
// (§6) require codegen to declare externs for.
func NewBuiltinRegistry() *BuiltinRegistry {
	r := &BuiltinRegistry{sigs: make(map[string]BuiltinSig)}

	add := func(name, symbol string, ret *types.Type, pure bool) {
		r.sigs[name] = BuiltinSig{Name: name, RuntimeSymbol: symbol, Return: ret, IsPure: pure}
	}

	add("print", "bmb_print", types.Unit, false)
	add("println", "bmb_println", types.Unit, false)
	add("assert", "bmb_assert", types.Unit, false)
	add("abs", "bmb_abs", types.I64, true)
	add("min", "bmb_min", types.I64, true)
	add("max", "bmb_max", types.I64, true)
	add("sqrt", "bmb_sqrt", types.F64, true)
	add("string_concat", "bmb_string_concat", types.StringT, true)
	add("string_eq", "bmb_string_eq", types.Bool, true)
	add("string_len", "bmb_string_len", types.I64, true)
	add("array_push", "bmb_array_push", types.Unit, false)
	add("array_pop", "bmb_array_pop", types.I64, false)
	add("array_len", "bmb_array_len", types.I64, true)

	return r
}

// Lookup returns the builtin signature for name, if any.
func (r *BuiltinRegistry) Lookup(name string) (BuiltinSig, bool) {
	s, ok := r.sigs[name]

	return s, ok
}
