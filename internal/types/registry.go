package types

import "fmt"

// TraitImpl records one `impl Trait for Type` block's method set.
type TraitImpl struct {
	Trait   string
	Methods map[string]*Type // method name -> fn type (receiver-less)
}

// Registry resolves named types, functions, constants, and trait impls
// against a single table per program, per §3's invariant that named types
// resolve against a single registry per program. It is built once in §4.1
// and read-only thereafter (§5 "Type registry ... read-only thereafter").
type Registry struct {
	structs   map[string]*Type
	enums     map[string]*Type
	aliases   map[string]*Type
	traits    map[string]*Type
	functions map[string]*Type
	constants map[string]*Type

	// methods[typeName][methodName] -> fn type, built-in or trait-backed.
	methods map[string]map[string]*Type

	// impls[typeName] lists the trait impls contributing to methods[typeName].
	impls map[string][]*TraitImpl

	used map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		structs:   make(map[string]*Type),
		enums:     make(map[string]*Type),
		aliases:   make(map[string]*Type),
		traits:    make(map[string]*Type),
		functions: make(map[string]*Type),
		constants: make(map[string]*Type),
		methods:   make(map[string]map[string]*Type),
		impls:     make(map[string][]*TraitImpl),
		used:      make(map[string]bool),
	}
}

// DefineStruct registers a struct type, returning an error if a struct of
// the same name is already registered (duplicate detection,
// §4.1: "Duplicate detection on struct fields and enum variants").
func (r *Registry) DefineStruct(t *Type) error {
	if _, exists := r.structs[t.Name]; exists {
		return fmt.Errorf("duplicate struct declaration: %s", t.Name)
	}

	r.structs[t.Name] = t

	return nil
}

// DefineEnum registers an enum type.
func (r *Registry) DefineEnum(t *Type) error {
	if _, exists := r.enums[t.Name]; exists {
		return fmt.Errorf("duplicate enum declaration: %s", t.Name)
	}

	r.enums[t.Name] = t

	return nil
}

// DefineAlias registers a type alias.
func (r *Registry) DefineAlias(name string, target *Type) error {
	if _, exists := r.aliases[name]; exists {
		return fmt.Errorf("duplicate alias declaration: %s", name)
	}

	r.aliases[name] = &Type{Kind: KindAlias, Name: name, Elem: target}

	return nil
}

// DefineTrait registers a trait declaration.
func (r *Registry) DefineTrait(t *Type) error {
	if _, exists := r.traits[t.Name]; exists {
		return fmt.Errorf("duplicate trait declaration: %s", t.Name)
	}

	r.traits[t.Name] = t

	return nil
}

// DefineFunction registers a top-level function signature. Duplicate
// top-level functions are a warning, not a hard error (§4.1), so the
// caller decides whether to surface the returned bool as a lint.
func (r *Registry) DefineFunction(name string, fn *Type) (duplicate bool) {
	if _, exists := r.functions[name]; exists {
		return true
	}

	r.functions[name] = fn

	return false
}

// DefineConstant registers a top-level constant's type.
func (r *Registry) DefineConstant(name string, t *Type) {
	r.constants[name] = t
}

// AddMethod registers a built-in or trait-backed method for typeName,
// accessible through dispatch regardless of whether it came from an impl
// block or a compiler builtin (§4.1 "falls through to trait-impl methods").
func (r *Registry) AddMethod(typeName, methodName string, fn *Type) {
	set, ok := r.methods[typeName]
	if !ok {
		set = make(map[string]*Type)
		r.methods[typeName] = set
	}

	set[methodName] = fn
}

// AddImpl registers a trait impl block and its methods for typeName.
func (r *Registry) AddImpl(typeName string, impl *TraitImpl) {
	r.impls[typeName] = append(r.impls[typeName], impl)

	for name, fn := range impl.Methods {
		r.AddMethod(typeName, name, fn)
	}
}

// LookupMethod resolves (receiverTypeName, method) against the registry's
// per-type method set. ok is false on a miss; the caller computes a
// Levenshtein suggestion from MethodNames(typeName).
func (r *Registry) LookupMethod(typeName, method string) (*Type, bool) {
	set, ok := r.methods[typeName]
	if !ok {
		return nil, false
	}

	fn, ok := set[method]

	return fn, ok
}

// MethodNames returns the known method names for typeName, the candidate
// pool for the "did you mean?" suggestion (§4.1, Levenshtein threshold 2).
func (r *Registry) MethodNames(typeName string) []string {
	set, ok := r.methods[typeName]
	if !ok {
		return nil
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}

	return names
}

// LookupStruct resolves a struct type by name.
func (r *Registry) LookupStruct(name string) (*Type, bool) { t, ok := r.structs[name]; return t, ok }

// LookupEnum resolves an enum type by name.
func (r *Registry) LookupEnum(name string) (*Type, bool) { t, ok := r.enums[name]; return t, ok }

// LookupAlias resolves an alias by name.
func (r *Registry) LookupAlias(name string) (*Type, bool) { t, ok := r.aliases[name]; return t, ok }

// LookupTrait resolves a trait by name.
func (r *Registry) LookupTrait(name string) (*Type, bool) { t, ok := r.traits[name]; return t, ok }

// LookupFunction resolves a top-level function signature by name, marking
// it as referenced for unused-function analysis. Use LookupFunctionSignature
// instead when the lookup is for the declaration's own body (it must not
// count as a reference to itself).
func (r *Registry) LookupFunction(name string) (*Type, bool) {
	t, ok := r.functions[name]
	if ok {
		r.used[name] = true
	}

	return t, ok
}

// LookupFunctionSignature resolves a top-level function signature without
// marking it as used, for call sites that are not a genuine reference (a
// function looking up its own already-declared signature while checking
// its body).
func (r *Registry) LookupFunctionSignature(name string) (*Type, bool) {
	t, ok := r.functions[name]

	return t, ok
}

// Functions returns the full set of registered top-level function
// signatures, for whole-program passes like unused-function analysis.
func (r *Registry) Functions() map[string]*Type { return r.functions }

// FunctionUsed reports whether name was ever resolved through
// LookupFunction during checking.
func (r *Registry) FunctionUsed(name string) bool { return r.used[name] }

// LookupConstant resolves a top-level constant's type by name.
func (r *Registry) LookupConstant(name string) (*Type, bool) { t, ok := r.constants[name]; return t, ok }

// Resolve follows a named type through aliases to its underlying
// definition, stopping at the first non-alias kind.
func (r *Registry) Resolve(t *Type) *Type {
	seen := map[string]bool{}

	for t != nil && t.Kind == KindAlias {
		if seen[t.Name] {
			break // cyclic alias; name registry breaks the cycle per §9.
		}

		seen[t.Name] = true
		t = t.Elem
	}

	return t
}
