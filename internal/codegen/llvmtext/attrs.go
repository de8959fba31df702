package llvmtext

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmb-lang/bmbc/internal/mir"
)

// funcAttributes renders the attribute string for a user-defined function's
// `define` line (§4.5 "Function attributes"): every function but `main`
// gets `nosync`; a function lowering marked pure or const additionally gets
// `nofree`.
func funcAttributes(fn *mir.MirFunction) string {
	var attrs []string

	if fn.Name != "main" {
		attrs = append(attrs, "nosync")
	}

	if fn.Attributes.Pure || fn.Attributes.Const {
		attrs = append(attrs, "nofree")
	}

	if len(attrs) == 0 {
		return ""
	}

	return " " + strings.Join(attrs, " ")
}

// externSpec describes one runtime ABI function the string/array externs
// rely on (§6 "String runtime ABI", "Array runtime ABI").
type externSpec struct {
	params   []string
	ret      string
	readonly bool // pure, read-only extern: gets memory(argmem: read)
	noreturn bool // panic and process-exit helpers never return
}

// externTable lists every runtime extern a generated module may call. All
// of them take `nounwind willreturn`; a pointer return additionally gets
// `noalias`; a pointer argument additionally gets `nocapture readonly`
// since none of these externs mutate through a pointer argument — they are
// all functional, returning a new buffer rather than writing in place (§6:
// "declared ... noalias (on return) nocapture readonly (on read-only
// args) when they do not mutate through pointer arguments").
var externTable = map[string]externSpec{
	"string_eq":          {params: []string{"ptr", "ptr"}, ret: "i64", readonly: true},
	"string_concat":      {params: []string{"ptr", "ptr"}, ret: "ptr"},
	"string_slice":       {params: []string{"ptr", "i64", "i64"}, ret: "ptr"},
	"string_contains":    {params: []string{"ptr", "ptr"}, ret: "i1", readonly: true},
	"string_starts_with": {params: []string{"ptr", "ptr"}, ret: "i1", readonly: true},
	"string_ends_with":   {params: []string{"ptr", "ptr"}, ret: "i1", readonly: true},
	"string_to_upper":    {params: []string{"ptr"}, ret: "ptr"},
	"string_to_lower":    {params: []string{"ptr"}, ret: "ptr"},
	"string_trim":        {params: []string{"ptr"}, ret: "ptr"},
	"string_replace":     {params: []string{"ptr", "ptr", "ptr"}, ret: "ptr"},
	"string_repeat":      {params: []string{"ptr", "i64"}, ret: "ptr"},
	"string_index_of":    {params: []string{"ptr", "ptr"}, ret: "i64", readonly: true},

	"array_push":   {params: []string{"ptr", "i64"}, ret: "ptr"},
	"array_pop":    {params: []string{"ptr"}, ret: "ptr"},
	"array_slice":  {params: []string{"ptr", "i64", "i64"}, ret: "ptr"},
	"array_concat": {params: []string{"ptr", "ptr"}, ret: "ptr"},
	"array_len":    {params: []string{"ptr"}, ret: "i64", readonly: true},

	"bmb_check_bounds":   {params: []string{"i1"}, ret: "void"},
	"bmb_check_null":     {params: []string{"i1"}, ret: "void"},
	"bmb_check_division": {params: []string{"i1"}, ret: "void"},
	"bmb_check_contract": {params: []string{"i1"}, ret: "void"},

	"bmb_alloc": {params: []string{"i64"}, ret: "ptr"},

	"panic":   {params: []string{"ptr"}, ret: "void", noreturn: true},
	"print":   {params: []string{"ptr"}, ret: "void"},
	"println": {params: []string{"ptr"}, ret: "void"},
	"exit":    {params: []string{"i64"}, ret: "void", noreturn: true},
}

// usedExterns returns the names of every extern prog's functions actually
// call, so a module only declares the runtime surface it exercises.
func usedExterns(prog *mir.MirProgram) []string {
	used := make(map[string]bool)

	for _, fn := range prog.Functions {
		for _, blk := range fn.Blocks {
			for _, instr := range blk.Instructions {
				if instr.Kind == mir.InstrContractCheck {
					if name, ok := checkFuncs[instr.CheckKind]; ok {
						used[name] = true
					}
				}

				if instr.Kind == mir.InstrArrayAlloc {
					used["bmb_alloc"] = true
				}

				if instr.Kind != mir.InstrCall {
					continue
				}

				if _, ok := externTable[instr.Callee]; ok {
					if _, defined := prog.Functions[instr.Callee]; !defined {
						used[instr.Callee] = true
					}
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

// emitExterns writes one `declare` line per name in names, attributed per
// externTable.
func emitExterns(b *strings.Builder, names []string) {
	for _, name := range names {
		spec := externTable[name]
		b.WriteString(externDecl(name, spec))
	}

	if len(names) > 0 {
		b.WriteString("\n")
	}
}

func externDecl(name string, spec externSpec) string {
	var params []string

	for _, p := range spec.params {
		attr := ""
		if p == "ptr" {
			attr = " nocapture readonly"
		}

		params = append(params, p+attr)
	}

	retType := spec.ret
	if spec.ret == "ptr" {
		retType = "noalias ptr"
	}

	var fnAttrs []string
	fnAttrs = append(fnAttrs, "nounwind", "willreturn")

	if spec.readonly {
		fnAttrs = append(fnAttrs, "memory(argmem: read)")
	}

	if spec.noreturn {
		fnAttrs = append(fnAttrs, "noreturn")
	}

	return fmt.Sprintf("declare %s @%s(%s) %s\n", retType, name, strings.Join(params, ", "), strings.Join(fnAttrs, " "))
}
