package ast

import "github.com/bmb-lang/bmbc/internal/position"

// Pattern is implemented by every match-pattern node.
type Pattern interface {
	Span() position.Span
	isPattern()
}

// WildcardPattern matches anything and binds nothing (`_`).
type WildcardPattern struct {
	Sp position.Span
}

func (p *WildcardPattern) Span() position.Span { return p.Sp }
func (*WildcardPattern) isPattern()            {}

// BindingPattern matches anything and binds it to Name.
type BindingPattern struct {
	Name string
	Sp   position.Span
}

func (p *BindingPattern) Span() position.Span { return p.Sp }
func (*BindingPattern) isPattern()            {}

// LiteralPattern matches an exact literal value.
type LiteralPattern struct {
	Value *Literal
	Sp    position.Span
}

func (p *LiteralPattern) Span() position.Span { return p.Sp }
func (*LiteralPattern) isPattern()            {}

// RangePattern matches any value in [Lo, Hi] (or [Lo, Hi) when !Inclusive).
type RangePattern struct {
	Lo        *Literal
	Hi        *Literal
	Inclusive bool
	Sp        position.Span
}

func (p *RangePattern) Span() position.Span { return p.Sp }
func (*RangePattern) isPattern()            {}

// TuplePattern destructures a tuple.
type TuplePattern struct {
	Elems []Pattern
	Sp    position.Span
}

func (p *TuplePattern) Span() position.Span { return p.Sp }
func (*TuplePattern) isPattern()            {}

// EnumVariantPattern matches TypeName::Variant, destructuring its payload.
type EnumVariantPattern struct {
	TypeName string
	Variant  string
	SubPats  []Pattern
	Sp       position.Span
}

func (p *EnumVariantPattern) Span() position.Span { return p.Sp }
func (*EnumVariantPattern) isPattern()            {}

// StructPattern destructures a struct by field name.
type StructPattern struct {
	TypeName string
	Fields   map[string]Pattern
	Sp       position.Span
}

func (p *StructPattern) Span() position.Span { return p.Sp }
func (*StructPattern) isPattern()            {}

// OrPattern matches if any Alternatives pattern matches; expanded into
// separate matrix rows during exhaustiveness checking (§4.1).
type OrPattern struct {
	Alternatives []Pattern
	Sp           position.Span
}

func (p *OrPattern) Span() position.Span { return p.Sp }
func (*OrPattern) isPattern()            {}
