// Package lowering implements AST → MIR lowering (§4.3): let-sequence
// desugaring with unique names, pattern compilation to Switch + Phi,
// zero-sentinel nullable erasure, closure capture lowering, for-in loop
// canonicalization, the array header layout, and method-call resolution.
package lowering

import (
	"github.com/bmb-lang/bmbc/internal/ast"
	"github.com/bmb-lang/bmbc/internal/mir"
	"github.com/bmb-lang/bmbc/internal/types"
)

// loopTarget records the blocks `break`/`continue` resolve to within the
// nearest enclosing loop (§4.3 "continue targets the increment block, not
// the header; break targets exit").
type loopTarget struct {
	continueLabel string
	breakLabel    string
	// breakPhi collects (predecessor label -> yielded value) pairs for a
	// `loop { ... break value; ... }` expression, populated as each break is
	// lowered and consumed by the builder once the loop's exit block closes.
	breakPhi []mir.PhiOperand
}

// builder accumulates a MirFunction's blocks as it walks one function body.
type builder struct {
	fn       *mir.MirFunction
	cur      *mir.BasicBlock
	scope    []map[string]string // source name -> current unique place name, innermost last
	loops    []*loopTarget
	builtins *BuiltinRegistry
	// terminated tracks whether cur already has its terminator set (via a
	// return/break/continue nested inside it), so later statements in the
	// same source block are lowered for side effects only and never append
	// a second terminator.
	terminated bool
}

func newBuilder(fn *mir.MirFunction, builtins *BuiltinRegistry) *builder {
	return &builder{fn: fn, scope: []map[string]string{make(map[string]string)}, builtins: builtins}
}

func (b *builder) pushScope() { b.scope = append(b.scope, make(map[string]string)) }
func (b *builder) popScope()  { b.scope = b.scope[:len(b.scope)-1] }

func (b *builder) bind(name, uniqueName string) {
	b.scope[len(b.scope)-1][name] = uniqueName
}

func (b *builder) resolve(name string) string {
	for i := len(b.scope) - 1; i >= 0; i-- {
		if u, ok := b.scope[i][name]; ok {
			return u
		}
	}

	return name
}

// newBlock appends a fresh block labelled base (uniqued) and returns it
// without switching the builder's current block.
func (b *builder) newBlock(base string) *mir.BasicBlock {
	blk := &mir.BasicBlock{Label: b.fn.FreshLabel(base)}
	b.fn.Blocks = append(b.fn.Blocks, blk)

	return blk
}

// switchTo makes blk the block subsequent emit calls append to.
func (b *builder) switchTo(blk *mir.BasicBlock) {
	b.cur = blk
	b.terminated = false
}

func (b *builder) emit(instr mir.Instruction) {
	b.cur.Instructions = append(b.cur.Instructions, instr)
}

// setTerm assigns cur's terminator and marks the block closed.
func (b *builder) setTerm(t mir.Terminator) {
	b.cur.Term = t
	b.terminated = true
}

// freshPlace allocates a new SSA place for sourceName with type t.
func (b *builder) freshPlace(sourceName string, t *types.Type) mir.Place {
	unique := b.fn.FreshTemp(sourceName)

	return mir.Place{Name: unique, Type: t}
}

func (b *builder) pushLoop(lt *loopTarget) { b.loops = append(b.loops, lt) }
func (b *builder) popLoop()                { b.loops = b.loops[:len(b.loops)-1] }
func (b *builder) currentLoop() *loopTarget {
	if len(b.loops) == 0 {
		return nil
	}

	return b.loops[len(b.loops)-1]
}

func exprType(tp TypeOracle, e ast.Expr) *types.Type {
	if tp == nil {
		return types.I64
	}

	return tp.TypeOf(e)
}

// TypeOracle is the minimal interface lowering needs from the type
// checker's output to resolve an expression's type; internal/typecheck's
// TypedProgram satisfies it.
type TypeOracle interface {
	TypeOf(e ast.Expr) *types.Type
}
