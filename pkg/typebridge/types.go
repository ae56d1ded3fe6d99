// Package typebridge converts a component's exported interface types to
// JSON Schema, decodes JSON tool-call arguments into typed values, encodes
// typed results back to JSON, and normalizes exported function names into
// protocol-valid tool names.
package typebridge

import "fmt"

// Kind identifies one member of the closed interface-type lattice the
// bridge understands.
type Kind string

const (
	KindBool     Kind = "bool"
	KindS8       Kind = "s8"
	KindU8       Kind = "u8"
	KindS16      Kind = "s16"
	KindU16      Kind = "u16"
	KindS32      Kind = "s32"
	KindU32      Kind = "u32"
	KindS64      Kind = "s64"
	KindU64      Kind = "u64"
	KindF32      Kind = "f32"
	KindF64      Kind = "f64"
	KindChar     Kind = "char"
	KindString   Kind = "string"
	KindList     Kind = "list"
	KindTuple    Kind = "tuple"
	KindRecord   Kind = "record"
	KindVariant  Kind = "variant"
	KindEnum     Kind = "enum"
	KindOption   Kind = "option"
	KindResult   Kind = "result"
	KindFlags    Kind = "flags"
	KindResource Kind = "resource"
)

// Field is a named, typed member of a record.
type Field struct {
	Name string
	Type *Type
}

// VariantCase is one arm of a variant. Payload is nil when the case
// carries no value.
type VariantCase struct {
	Name    string
	Payload *Type
}

// Type is a node in the interface-type lattice. Only the fields relevant
// to Kind are populated; the rest are zero.
type Type struct {
	Kind Kind

	Elem  *Type // list
	Items []*Type // tuple

	Fields []Field // record

	Cases []VariantCase // variant

	EnumCases []string // enum

	Inner *Type // option

	Ok  *Type // result: may be nil (no payload)
	Err *Type // result: may be nil (no payload)

	FlagNames []string // flags

	ResourceName string // resource
}

// IsNumeric reports whether the type is one of the integer or float kinds.
func (t *Type) IsNumeric() bool {
	switch t.Kind {
	case KindS8, KindU8, KindS16, KindU16, KindS32, KindU32, KindS64, KindU64, KindF32, KindF64:
		return true
	}
	return false
}

// IntWidth returns the bit width of an integer kind, or 0 if not an integer.
func (t *Type) IntWidth() int {
	switch t.Kind {
	case KindS8, KindU8:
		return 8
	case KindS16, KindU16:
		return 16
	case KindS32, KindU32:
		return 32
	case KindS64, KindU64:
		return 64
	}
	return 0
}

// IsSignedInt reports whether the kind is a signed integer type.
func (t *Type) IsSignedInt() bool {
	switch t.Kind {
	case KindS8, KindS16, KindS32, KindS64:
		return true
	}
	return false
}

// IsUnsignedInt reports whether the kind is an unsigned integer type.
func (t *Type) IsUnsignedInt() bool {
	switch t.Kind {
	case KindU8, KindU16, KindU32, KindU64:
		return true
	}
	return false
}

// FunctionKind identifies how an exported function is bound to its
// interface: a bare function, an instance method, a static method, or a
// resource constructor.
type FunctionKind string

const (
	FreeFunction FunctionKind = "free_function"
	Method       FunctionKind = "method"
	StaticMethod FunctionKind = "static_method"
	Constructor  FunctionKind = "constructor"
)

// FunctionID uniquely identifies an exported function within a component.
// InterfaceName is empty for world-level exports.
type FunctionID struct {
	InterfaceName string
	FunctionName  string
	Kind          FunctionKind
}

func (f FunctionID) String() string {
	if f.InterfaceName == "" {
		return f.FunctionName
	}
	return fmt.Sprintf("%s#%s", f.InterfaceName, f.FunctionName)
}

// Param is a named, typed function parameter.
type Param struct {
	Name string
	Type *Type
}

// Signature describes an exported function's parameters and (possibly
// multiple, always ordered) result types.
type Signature struct {
	ID      FunctionID
	Params  []Param
	Results []*Type

	// Raw marks a signature synthesized by fallbackSignatures when a
	// component ships no type sidecar: every parameter/result is an
	// opaque s64 passed directly as a core-wasm register rather than
	// lowered through the JSON-buffer calling convention real typed
	// signatures use.
	Raw bool
}
