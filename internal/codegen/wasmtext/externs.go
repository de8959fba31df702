package wasmtext

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmb-lang/bmbc/internal/mir"
)

// externSpec is a runtime helper's WAT import signature.
type externSpec struct {
	params []string
	ret    string // "" means no result
}

// externTable lists every runtime helper this backend may call, mirroring
// internal/codegen/llvmtext's externTable but with WAT value types (every
// pointer-shaped value is i32 here, not ptr) (§4.6 "Responsibility":
// shares the same runtime contract as the LLVM backend, just a different
// value representation).
var externTable = map[string]externSpec{
	"string_eq":         {params: []string{"i32", "i32"}, ret: "i64"},
	"byte_at":           {params: []string{"i32", "i64"}, ret: "i64"},
	"len":               {params: []string{"i32"}, ret: "i64"},
	"ord":               {params: []string{"i32"}, ret: "i64"},
	"bmb_alloc":         {params: []string{"i64"}, ret: "i32"},
	"bmb_check_bounds":  {params: []string{"i32"}},
	"bmb_check_null":    {params: []string{"i32"}},
	"bmb_check_division": {params: []string{"i32"}},
	"bmb_check_contract": {params: []string{"i32"}},
	"bmb_panic":         {params: []string{"i32"}},
	"bmb_print":         {params: []string{"i32", "i64"}},
}

// usedExterns returns the externTable names prog actually calls, sorted,
// so EmitModule imports only what it needs (§4.6 mirrors §4.5's "declare
// only the runtime calls a module actually uses").
func usedExterns(prog *mir.MirProgram) []string {
	used := make(map[string]bool)

	for _, fn := range prog.Functions {
		for _, blk := range fn.Blocks {
			for _, instr := range blk.Instructions {
				if instr.Kind == mir.InstrCall {
					if _, ok := externTable[instr.Callee]; ok {
						if _, isSibling := prog.Functions[instr.Callee]; !isSibling {
							used[instr.Callee] = true
						}
					}
				}

				if instr.Kind == mir.InstrContractCheck {
					used[checkImportName(instr.CheckKind)] = true
				}

				if instr.Kind == mir.InstrArrayAlloc || instr.Kind == mir.InstrStructInit || instr.Kind == mir.InstrTupleInit {
					used["bmb_alloc"] = true
				}
			}
		}
	}

	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func checkImportName(kind mir.ContractCheckKind) string {
	switch kind {
	case mir.CheckBounds:
		return "bmb_check_bounds"
	case mir.CheckNull:
		return "bmb_check_null"
	case mir.CheckDivision:
		return "bmb_check_division"
	default:
		return "bmb_check_contract"
	}
}

func emitExterns(b *strings.Builder, prog *mir.MirProgram) {
	for _, name := range usedExterns(prog) {
		spec := externTable[name]

		params := ""
		if len(spec.params) > 0 {
			params = " (param " + strings.Join(spec.params, " ") + ")"
		}

		result := ""
		if spec.ret != "" {
			result = " (result " + spec.ret + ")"
		}

		fmt.Fprintf(b, "  (import \"env\" \"%s\" (func $%s%s%s))\n", name, name, params, result)
	}
}
