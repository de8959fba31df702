package llvmtext

import (
	"fmt"
	"strings"
)

// stringPool interns every unique string literal a module emits, assigning
// each a stable id in first-discovery order. Mutated only during a single
// EmitModule call (§5 "Interned string table... mutated only during
// emission, within a single backend invocation").
type stringPool struct {
	order []string
	index map[string]int
}

func newStringPool() *stringPool {
	return &stringPool{index: make(map[string]int)}
}

// intern returns s's id, assigning a fresh one on first sight. Property 9:
// however many times s appears in the program, it gets exactly one id.
func (p *stringPool) intern(s string) int {
	if id, ok := p.index[s]; ok {
		return id
	}

	id := len(p.order)
	p.order = append(p.order, s)
	p.index[s] = id

	return id
}

// ref returns the ptrtoint constant expression the backend substitutes for
// any reference to s. A string the collection pass did not see is interned
// on the spot, though its global is then not in the already-emitted pool.
func (p *stringPool) ref(s string) string {
	id, ok := p.index[s]
	if !ok {
		id = p.intern(s)
	}

	return fmtGlobalRef(id)
}

// emit writes one @str_data_N / @str_bmb_N pair per interned string, in id
// order, to b. The data array carries an implicit trailing NUL (so the
// bytes it holds are usable as a C string by the extern runtime ABI), but
// the length/capacity fields of the struct record the logical length, not
// counting that terminator (§8 golden scenario D: "hello\0" stored, length
// 5).
func (p *stringPool) emit(b *strings.Builder) {
	for id, s := range p.order {
		bytes := []byte(s)
		length := len(bytes)
		fmt.Fprintf(b, "@str_data_%d = private unnamed_addr constant [%d x i8] c\"%s\\00\"\n", id, length+1, escapeLLVMString(bytes))
		fmt.Fprintf(b, "@str_bmb_%d = private unnamed_addr constant { ptr, i64, i64 } { ptr @str_data_%d, i64 %d, i64 %d }\n", id, id, length, length)
	}

	if len(p.order) > 0 {
		b.WriteString("\n")
	}
}

// escapeLLVMString renders bytes the way LLVM's c"..." constant syntax
// requires: printable ASCII passes through; quote, backslash, newline, CR,
// tab, NUL, and every other non-printable byte become \HH (§4.5 "Escape
// rules for string content").
func escapeLLVMString(bytes []byte) string {
	var b strings.Builder

	for _, c := range bytes {
		if isPrintableASCII(c) && c != '"' && c != '\\' {
			b.WriteByte(c)
			continue
		}

		fmt.Fprintf(&b, "\\%02X", c)
	}

	return b.String()
}

func isPrintableASCII(c byte) bool {
	return c >= 0x20 && c < 0x7f
}
