// Package ast defines the spanned abstract syntax tree the BMB compiler
// consumes. Lexing and parsing are out of scope for this module (they are
// an external collaborator per the core pipeline's contract); only the
// shape below is consumed, typically produced by a parser package that
// this one does not import.
package ast

import "github.com/bmb-lang/bmbc/internal/position"

// Expr is implemented by every expression node. BMB is expression-oriented:
// let, block, if, match, and loops are all expressions with a value (unit
// when none is meaningful), mirroring how the type checker and lowering
// stages treat them uniformly.
type Expr interface {
	Span() position.Span
	isExpr()
}

// Program is the root of a parsed compilation unit.
type Program struct {
	Decls []Decl
	Sp    position.Span
}

// Decl is implemented by every top-level declaration.
type Decl interface {
	Span() position.Span
	isDecl()
}

// Param is a function or closure parameter.
type Param struct {
	Name string
	Type TypeExpr // nil when inferred (closures may omit types)
	Sp   position.Span
}

// Contract bundles a function's preconditions, postconditions, and (for
// loops) invariants, expressed as ordinary boolean expressions that may
// reference Old(...) and the implicit `result` binding in postconditions.
type Contract struct {
	Pre  []Expr
	Post []Expr
}

// FunctionDecl declares a named function.
type FunctionDecl struct {
	Name       string
	Generics   []string
	Params     []*Param
	Return     TypeExpr
	Contract   Contract
	Body       Expr // BlockExpr, or an expression body for `fn f(x) -> T = expr`
	Sp         position.Span
}

func (d *FunctionDecl) Span() position.Span { return d.Sp }
func (*FunctionDecl) isDecl()               {}

// StructField is one field of a struct declaration.
type StructField struct {
	Name string
	Type TypeExpr
	Sp   position.Span
}

// StructDecl declares a struct type.
type StructDecl struct {
	Name     string
	Generics []string
	Fields   []*StructField
	Sp       position.Span
}

func (d *StructDecl) Span() position.Span { return d.Sp }
func (*StructDecl) isDecl()               {}

// EnumVariantDecl is one variant of an enum, with an optional payload tuple.
type EnumVariantDecl struct {
	Name    string
	Payload []TypeExpr
	Sp      position.Span
}

// EnumDecl declares an enum (sum) type.
type EnumDecl struct {
	Name     string
	Generics []string
	Variants []*EnumVariantDecl
	Sp       position.Span
}

func (d *EnumDecl) Span() position.Span { return d.Sp }
func (*EnumDecl) isDecl()               {}

// TraitMethodDecl is a method signature declared by a trait.
type TraitMethodDecl struct {
	Name   string
	Params []*Param
	Return TypeExpr
	Sp     position.Span
}

// TraitDecl declares a trait (method-set contract).
type TraitDecl struct {
	Name    string
	Methods []*TraitMethodDecl
	Sp      position.Span
}

func (d *TraitDecl) Span() position.Span { return d.Sp }
func (*TraitDecl) isDecl()               {}

// ImplDecl implements a trait for a concrete type, or provides an inherent
// method set when Trait is empty.
type ImplDecl struct {
	Trait   string
	Type    TypeExpr
	Methods []*FunctionDecl
	Sp      position.Span
}

func (d *ImplDecl) Span() position.Span { return d.Sp }
func (*ImplDecl) isDecl()               {}

// ConstDecl declares a top-level constant.
type ConstDecl struct {
	Name  string
	Type  TypeExpr
	Value Expr
	Sp    position.Span
}

func (d *ConstDecl) Span() position.Span { return d.Sp }
func (*ConstDecl) isDecl()               {}

// ImportDecl names an external module symbol brought into scope. Module
// resolution itself is out of scope; only the declared name is consumed.
type ImportDecl struct {
	Path string
	Sp   position.Span
}

func (d *ImportDecl) Span() position.Span { return d.Sp }
func (*ImportDecl) isDecl()               {}

// ==== Type expressions (surface syntax for types, pre name resolution) ====

// TypeExpr is implemented by every surface type expression, resolved into
// a types.Type by the type checker.
type TypeExpr interface {
	Span() position.Span
	isTypeExpr()
}

// NamedTypeExpr is an identifier-like type reference, optionally generic.
type NamedTypeExpr struct {
	Name string
	Args []TypeExpr
	Sp   position.Span
}

func (t *NamedTypeExpr) Span() position.Span { return t.Sp }
func (*NamedTypeExpr) isTypeExpr()           {}

// ArrayTypeExpr is `[T]` or `[T; n]` (Len < 0 means no static length).
type ArrayTypeExpr struct {
	Elem TypeExpr
	Len  int
	Sp   position.Span
}

func (t *ArrayTypeExpr) Span() position.Span { return t.Sp }
func (*ArrayTypeExpr) isTypeExpr()           {}

// TupleTypeExpr is `(T1, T2, ...)`.
type TupleTypeExpr struct {
	Elems []TypeExpr
	Sp    position.Span
}

func (t *TupleTypeExpr) Span() position.Span { return t.Sp }
func (*TupleTypeExpr) isTypeExpr()           {}

// NullableTypeExpr is `T?`.
type NullableTypeExpr struct {
	Elem TypeExpr
	Sp   position.Span
}

func (t *NullableTypeExpr) Span() position.Span { return t.Sp }
func (*NullableTypeExpr) isTypeExpr()           {}

// RefTypeExpr is `&T` or `&mut T`.
type RefTypeExpr struct {
	Mutable bool
	Elem    TypeExpr
	Sp      position.Span
}

func (t *RefTypeExpr) Span() position.Span { return t.Sp }
func (*RefTypeExpr) isTypeExpr()           {}

// PointerTypeExpr is `*T`, a raw pointer.
type PointerTypeExpr struct {
	Elem TypeExpr
	Sp   position.Span
}

func (t *PointerTypeExpr) Span() position.Span { return t.Sp }
func (*PointerTypeExpr) isTypeExpr()           {}

// FunctionTypeExpr is `fn(T1, T2) -> R`.
type FunctionTypeExpr struct {
	Params []TypeExpr
	Return TypeExpr
	Sp     position.Span
}

func (t *FunctionTypeExpr) Span() position.Span { return t.Sp }
func (*FunctionTypeExpr) isTypeExpr()           {}
