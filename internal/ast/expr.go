package ast

import "github.com/bmb-lang/bmbc/internal/position"

// ==== Literals ====

// LitKind discriminates the literal forms.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
	LitString
	LitChar
	LitUnit
	LitNull
)

// Literal is a constant value appearing directly in source.
type Literal struct {
	Kind   LitKind
	Int    int64
	Float  float64
	Bool   bool
	String string
	Char   rune
	Sp     position.Span
}

func (e *Literal) Span() position.Span { return e.Sp }
func (*Literal) isExpr()               {}

// Ident references a bound variable, function, or constant by name.
type Ident struct {
	Name string
	Sp   position.Span
}

func (e *Ident) Span() position.Span { return e.Sp }
func (*Ident) isExpr()               {}

// ==== Operators ====

// BinOp enumerates surface binary operators.
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd // logical &&
	BinOr  // logical ||
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
)

// BinaryExpr is a binary operator application.
type BinaryExpr struct {
	Op    BinOp
	Left  Expr
	Right Expr
	Sp    position.Span
}

func (e *BinaryExpr) Span() position.Span { return e.Sp }
func (*BinaryExpr) isExpr()               {}

// UnOp enumerates surface unary operators.
type UnOp int

const (
	UnNeg UnOp = iota
	UnNot
)

// UnaryExpr is a unary operator application.
type UnaryExpr struct {
	Op  UnOp
	Val Expr
	Sp  position.Span
}

func (e *UnaryExpr) Span() position.Span { return e.Sp }
func (*UnaryExpr) isExpr()               {}

// ==== Bindings and control flow ====

// LetExpr introduces a binding, with an implicit body of the remaining
// statements in the enclosing block (lowering desugars block-style let
// sequences into nested LetExprs; see internal/lowering).
type LetExpr struct {
	Name    string
	Type    TypeExpr // nil when the annotation is omitted
	Mutable bool
	Value   Expr
	Sp      position.Span
}

func (e *LetExpr) Span() position.Span { return e.Sp }
func (*LetExpr) isExpr()               {}

// AssignExpr assigns to an existing place (variable, field, or index).
type AssignExpr struct {
	Target Expr
	Op     string // "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>="
	Value  Expr
	Sp     position.Span
}

func (e *AssignExpr) Span() position.Span { return e.Sp }
func (*AssignExpr) isExpr()               {}

// BlockExpr is a sequence of expressions evaluated for effect, yielding
// the value of the final one (unit if empty or if the final expression
// ends with a semicolon at the surface level, which the parser encodes by
// appending a trailing Literal{Kind: LitUnit}).
type BlockExpr struct {
	Stmts []Expr
	Sp    position.Span
}

func (e *BlockExpr) Span() position.Span { return e.Sp }
func (*BlockExpr) isExpr()               {}

// IfExpr is a conditional expression; Else is nil for a statement-style if
// with no else branch (such an if has type unit).
type IfExpr struct {
	Cond Expr
	Then Expr
	Else Expr
	Sp   position.Span
}

func (e *IfExpr) Span() position.Span { return e.Sp }
func (*IfExpr) isExpr()               {}

// MatchArm is one arm of a MatchExpr: a pattern, optional guard, and body.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil when absent
	Body    Expr
	Sp      position.Span
}

// MatchExpr pattern-matches Scrutinee against Arms in order.
type MatchExpr struct {
	Scrutinee Expr
	Arms      []*MatchArm
	Sp        position.Span
}

func (e *MatchExpr) Span() position.Span { return e.Sp }
func (*MatchExpr) isExpr()               {}

// WhileExpr loops while Cond holds.
type WhileExpr struct {
	Cond       Expr
	Body       Expr
	Invariants []Expr // loop invariants consumed by CIR lowering
	Sp         position.Span
}

func (e *WhileExpr) Span() position.Span { return e.Sp }
func (*WhileExpr) isExpr()               {}

// ForInKind discriminates the source of a for-in loop's iteration.
type ForInKind int

const (
	ForInRange ForInKind = iota
	ForInArray
	ForInReceiver // a value implementing the iterator/receiver protocol
)

// ForInExpr iterates Binding over Iterable.
type ForInExpr struct {
	Binding    string
	Kind       ForInKind
	Iterable   Expr
	Body       Expr
	Invariants []Expr
	Sp         position.Span
}

func (e *ForInExpr) Span() position.Span { return e.Sp }
func (*ForInExpr) isExpr()               {}

// LoopExpr is an unconditional loop, terminated only by break/return.
type LoopExpr struct {
	Body Expr
	Sp   position.Span
}

func (e *LoopExpr) Span() position.Span { return e.Sp }
func (*LoopExpr) isExpr()               {}

// BreakExpr exits the nearest enclosing loop, optionally yielding a value
// (for `loop { ... break x; ... }` style loop expressions).
type BreakExpr struct {
	Value Expr // nil when no value is yielded
	Sp    position.Span
}

func (e *BreakExpr) Span() position.Span { return e.Sp }
func (*BreakExpr) isExpr()               {}

// ContinueExpr jumps to the increment step of the nearest enclosing loop.
type ContinueExpr struct {
	Sp position.Span
}

func (e *ContinueExpr) Span() position.Span { return e.Sp }
func (*ContinueExpr) isExpr()               {}

// ReturnExpr returns from the enclosing function, optionally with a value.
type ReturnExpr struct {
	Value Expr
	Sp    position.Span
}

func (e *ReturnExpr) Span() position.Span { return e.Sp }
func (*ReturnExpr) isExpr()               {}

// ==== Calls, access, construction ====

// CallExpr invokes Callee (a function value or name) with Args.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Sp     position.Span
}

func (e *CallExpr) Span() position.Span { return e.Sp }
func (*CallExpr) isExpr()               {}

// MethodCallExpr invokes Method on Receiver with Args.
type MethodCallExpr struct {
	Receiver Expr
	Method   string
	Args     []Expr
	Sp       position.Span
}

func (e *MethodCallExpr) Span() position.Span { return e.Sp }
func (*MethodCallExpr) isExpr()               {}

// FieldExpr accesses a named field of Receiver.
type FieldExpr struct {
	Receiver Expr
	Field    string
	Sp       position.Span
}

func (e *FieldExpr) Span() position.Span { return e.Sp }
func (*FieldExpr) isExpr()               {}

// IndexExpr indexes Receiver by Index.
type IndexExpr struct {
	Receiver Expr
	Index    Expr
	Sp       position.Span
}

func (e *IndexExpr) Span() position.Span { return e.Sp }
func (*IndexExpr) isExpr()               {}

// FieldInit is one `name: value` pair of a struct literal.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructLitExpr constructs a struct value.
type StructLitExpr struct {
	TypeName string
	Fields   []FieldInit
	Sp       position.Span
}

func (e *StructLitExpr) Span() position.Span { return e.Sp }
func (*StructLitExpr) isExpr()               {}

// EnumVariantExpr constructs an enum value of TypeName::Variant(Args...).
type EnumVariantExpr struct {
	TypeName string
	Variant  string
	Args     []Expr
	Sp       position.Span
}

func (e *EnumVariantExpr) Span() position.Span { return e.Sp }
func (*EnumVariantExpr) isExpr()               {}

// TupleExpr constructs a tuple value.
type TupleExpr struct {
	Elems []Expr
	Sp    position.Span
}

func (e *TupleExpr) Span() position.Span { return e.Sp }
func (*TupleExpr) isExpr()               {}

// ArrayLitExpr constructs an array from explicit elements.
type ArrayLitExpr struct {
	Elems []Expr
	Sp    position.Span
}

func (e *ArrayLitExpr) Span() position.Span { return e.Sp }
func (*ArrayLitExpr) isExpr()               {}

// ArrayRepeatExpr constructs `[value; count]`.
type ArrayRepeatExpr struct {
	Value Expr
	Count Expr
	Sp    position.Span
}

func (e *ArrayRepeatExpr) Span() position.Span { return e.Sp }
func (*ArrayRepeatExpr) isExpr()               {}

// RefExpr takes a reference to Value (`&value` or `&mut value`).
type RefExpr struct {
	Mutable bool
	Value   Expr
	Sp      position.Span
}

func (e *RefExpr) Span() position.Span { return e.Sp }
func (*RefExpr) isExpr()               {}

// CastExpr converts Value to Type (`value as Type`).
type CastExpr struct {
	Value Expr
	Type  TypeExpr
	Sp    position.Span
}

func (e *CastExpr) Span() position.Span { return e.Sp }
func (*CastExpr) isExpr()               {}

// ClosureExpr is an anonymous function literal. Captures is populated by a
// free-variable analysis pass after parsing, not by the parser itself.
type ClosureExpr struct {
	Params   []*Param
	Body     Expr
	Captures []string
	Sp       position.Span
}

func (e *ClosureExpr) Span() position.Span { return e.Sp }
func (*ClosureExpr) isExpr()               {}

// SpawnExpr starts Body on a new thread, yielding a Future/Thread handle.
type SpawnExpr struct {
	Body Expr
	Sp   position.Span
}

func (e *SpawnExpr) Span() position.Span { return e.Sp }
func (*SpawnExpr) isExpr()               {}

// SelectOp discriminates the channel operation a SelectArm waits on.
type SelectOp int

const (
	SelectRecv SelectOp = iota
	SelectSend
)

// SelectArm is one arm of a match-select block: a channel operation bound
// to Binding (for receive) or evaluated for Value (for send), guarding Body.
type SelectArm struct {
	Op      SelectOp
	Channel Expr
	Binding string // receive: name bound to the received value
	Value   Expr   // send: value transmitted
	Body    Expr
	Sp      position.Span
}

// SelectExpr waits on the first ready arm among several channel operations.
type SelectExpr struct {
	Arms    []*SelectArm
	Default Expr // nil when absent
	Sp      position.Span
}

func (e *SelectExpr) Span() position.Span { return e.Sp }
func (*SelectExpr) isExpr()               {}

// RangeExpr is `start..end` or `start..=end`.
type RangeExpr struct {
	Start     Expr
	End       Expr
	Inclusive bool
	Sp        position.Span
}

func (e *RangeExpr) Span() position.Span { return e.Sp }
func (*RangeExpr) isExpr()               {}

// ContractStateKind discriminates a contract-state reference.
type ContractStateKind int

const (
	ContractPre ContractStateKind = iota
	ContractPost
	ContractOld
)

// ContractRefExpr references contract-only state: `pre`, `post` (the
// implicit postcondition result), or `old(expr)` inside a postcondition.
type ContractRefExpr struct {
	Kind  ContractStateKind
	Inner Expr // set for ContractOld; nil otherwise
	Sp    position.Span
}

func (e *ContractRefExpr) Span() position.Span { return e.Sp }
func (*ContractRefExpr) isExpr()               {}
