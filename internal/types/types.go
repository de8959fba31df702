// Package types defines the BMB type system: a discriminated sum covering
// primitives, composites, named user types, type parameters, and the
// concurrency-typed containers the language exposes directly as types.
package types

import (
	"fmt"
	"strings"
)

// Kind discriminates the variants of Type.
type Kind int

const (
	KindInvalid Kind = iota

	// Primitives.
	KindI32
	KindI64
	KindU32
	KindU64
	KindF64
	KindBool
	KindChar
	KindString
	KindUnit
	KindDivergent

	// Composites.
	KindArray
	KindTuple
	KindNullable
	KindRef
	KindMutRef
	KindPointer
	KindRange
	KindFunction

	// Named user types.
	KindStruct
	KindEnum
	KindAlias
	KindTrait

	// Generics.
	KindTypeParam

	// Concurrency-typed containers.
	KindThread
	KindMutex
	KindArc
	KindAtomic
	KindChannelSend
	KindChannelRecv
	KindRWLock
	KindBarrier
	KindCondvar
	KindFuture
	KindAsyncFile
	KindAsyncSocket
	KindThreadPool
	KindScope
)

func (k Kind) String() string {
	switch k {
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindF64:
		return "f64"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindUnit:
		return "unit"
	case KindDivergent:
		return "!"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindNullable:
		return "nullable"
	case KindRef:
		return "ref"
	case KindMutRef:
		return "mutref"
	case KindPointer:
		return "ptr"
	case KindRange:
		return "range"
	case KindFunction:
		return "fn"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindAlias:
		return "alias"
	case KindTrait:
		return "trait"
	case KindTypeParam:
		return "typeparam"
	case KindThread:
		return "Thread"
	case KindMutex:
		return "Mutex"
	case KindArc:
		return "Arc"
	case KindAtomic:
		return "Atomic"
	case KindChannelSend:
		return "ChannelSend"
	case KindChannelRecv:
		return "ChannelRecv"
	case KindRWLock:
		return "RWLock"
	case KindBarrier:
		return "Barrier"
	case KindCondvar:
		return "Condvar"
	case KindFuture:
		return "Future"
	case KindAsyncFile:
		return "AsyncFile"
	case KindAsyncSocket:
		return "AsyncSocket"
	case KindThreadPool:
		return "ThreadPool"
	case KindScope:
		return "Scope"
	default:
		return "<invalid>"
	}
}

// Type is the single discriminated sum covering every shape the language
// exposes. Zero-value fields not relevant to Kind are simply unused; this
// mirrors the source language's own tagged representation rather than a
// family of Go interfaces, since most consumers (unification, emission)
// want structural equality over a flat value, not dynamic dispatch.
type Type struct {
	Kind Kind

	// KindArray, KindNullable, KindRef, KindMutRef, KindPointer, KindRange,
	// KindAtomic: the element/target type.
	Elem *Type

	// KindArray: -1 means no static length.
	ArrayLen int

	// KindTuple: component types.
	Tuple []*Type

	// KindFunction: parameter list and return type.
	Params []*Type
	Return *Type

	// KindStruct, KindEnum, KindAlias, KindTrait, KindTypeParam: the name
	// resolved against the type registry (or the parameter name).
	Name string

	// KindStruct: ordered field names and types.
	FieldNames []string
	FieldTypes []*Type

	// KindEnum: variant names, each with an optional payload tuple.
	VariantNames   []string
	VariantPayload [][]*Type

	// Generic instantiation arguments applied to a named type, if any.
	TypeArgs []*Type
}

// Interned singleton primitives; primitives are shared per §3 invariants.
var (
	I32       = &Type{Kind: KindI32}
	I64       = &Type{Kind: KindI64}
	U32       = &Type{Kind: KindU32}
	U64       = &Type{Kind: KindU64}
	F64       = &Type{Kind: KindF64}
	Bool      = &Type{Kind: KindBool}
	Char      = &Type{Kind: KindChar}
	StringT   = &Type{Kind: KindString}
	Unit      = &Type{Kind: KindUnit}
	Divergent = &Type{Kind: KindDivergent}
)

// IsPrimitive reports whether t is one of the interned primitive singletons.
func IsPrimitive(t *Type) bool {
	if t == nil {
		return false
	}

	switch t.Kind {
	case KindI32, KindI64, KindU32, KindU64, KindF64, KindBool, KindChar, KindString, KindUnit, KindDivergent:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether t is an integer or floating-point primitive.
func IsNumeric(t *Type) bool {
	if t == nil {
		return false
	}

	switch t.Kind {
	case KindI32, KindI64, KindU32, KindU64, KindF64:
		return true
	default:
		return false
	}
}

// IsInteger reports whether t is a signed or unsigned integer primitive.
func IsInteger(t *Type) bool {
	if t == nil {
		return false
	}

	switch t.Kind {
	case KindI32, KindI64, KindU32, KindU64:
		return true
	default:
		return false
	}
}

// Nullable constructs `t?`.
func Nullable(t *Type) *Type { return &Type{Kind: KindNullable, Elem: t} }

// Array constructs `[T]` (length < 0) or `[T; n]` (length >= 0).
func Array(elem *Type, length int) *Type {
	return &Type{Kind: KindArray, Elem: elem, ArrayLen: length}
}

// TupleOf constructs a tuple type from its components.
func TupleOf(components ...*Type) *Type {
	return &Type{Kind: KindTuple, Tuple: components}
}

// Func constructs a function type.
func Func(params []*Type, ret *Type) *Type {
	return &Type{Kind: KindFunction, Params: params, Return: ret}
}

// Equal performs structural equality over already-resolved types; the
// type checker's coerceNullable uses it. Unification (typecheck's unify)
// compares member-wise on its own and does not call Equal.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}

	if a == nil || b == nil {
		return false
	}

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindArray, KindNullable, KindRef, KindMutRef, KindPointer, KindRange, KindAtomic:
		if a.Kind == KindArray && a.ArrayLen != b.ArrayLen {
			return false
		}

		return Equal(a.Elem, b.Elem)
	case KindTuple:
		return equalSlices(a.Tuple, b.Tuple)
	case KindFunction:
		return equalSlices(a.Params, b.Params) && Equal(a.Return, b.Return)
	case KindStruct, KindEnum, KindAlias, KindTrait, KindTypeParam:
		return a.Name == b.Name && equalSlices(a.TypeArgs, b.TypeArgs)
	default:
		return true
	}
}

func equalSlices(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}

	return true
}

// String renders a concrete, substituted type the way diagnostics quote it
// (e.g. "[i64]", "Option<i64>", "Result<i64, String>").
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind {
	case KindArray:
		if t.ArrayLen >= 0 {
			return fmt.Sprintf("[%s; %d]", t.Elem, t.ArrayLen)
		}

		return fmt.Sprintf("[%s]", t.Elem)
	case KindTuple:
		parts := make([]string, len(t.Tuple))
		for i, c := range t.Tuple {
			parts[i] = c.String()
		}

		return "(" + strings.Join(parts, ", ") + ")"
	case KindNullable:
		return t.Elem.String() + "?"
	case KindRef:
		return "&" + t.Elem.String()
	case KindMutRef:
		return "&mut " + t.Elem.String()
	case KindPointer:
		return "*" + t.Elem.String()
	case KindRange:
		return "Range<" + t.Elem.String() + ">"
	case KindFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}

		return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), t.Return)
	case KindStruct, KindEnum, KindAlias, KindTrait, KindTypeParam:
		if len(t.TypeArgs) == 0 {
			return t.Name
		}

		parts := make([]string, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			parts[i] = a.String()
		}

		return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ", "))
	case KindAtomic:
		return "Atomic<" + t.Elem.String() + ">"
	default:
		return t.Kind.String()
	}
}
