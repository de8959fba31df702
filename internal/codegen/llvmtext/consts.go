package llvmtext

import (
	"fmt"
	"math"
	"strconv"

	"github.com/bmb-lang/bmbc/internal/mir"
)

// renderConst renders a Constant's LLVM literal syntax (§4.5 "Constant
// emission"). callers supply the string pool so ConstString renders as a
// ptrtoint constant expression against an already-interned global.
func renderConst(c mir.Constant, pool *stringPool) string {
	switch c.Kind {
	case mir.ConstInt:
		return strconv.FormatInt(c.Int, 10)
	case mir.ConstFloat:
		return renderFloat(c.Float)
	case mir.ConstBool:
		if c.Bool {
			return "1"
		}

		return "0"
	case mir.ConstChar:
		return strconv.FormatInt(int64(c.Char), 10)
	case mir.ConstUnit:
		return "0"
	case mir.ConstString:
		return pool.ref(c.String)
	case mir.ConstFuncRef:
		return "@" + c.FuncRef
	default:
		return "0"
	}
}

// renderFloat renders a finite double in scientific notation and NaN/±Inf
// as their raw hex bit patterns, since scientific notation cannot spell
// them (§4.5 "Constant emission").
func renderFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return hexBits(math.Float64bits(f))
	case math.IsInf(f, 1):
		return hexBits(math.Float64bits(math.Inf(1)))
	case math.IsInf(f, -1):
		return hexBits(math.Float64bits(math.Inf(-1)))
	default:
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
}

func hexBits(bits uint64) string {
	return fmt.Sprintf("0x%016X", bits)
}
