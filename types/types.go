// Package types implements the closed type sum from the language's type
// system: Nat(width), Int(width), Float32, Bool, String, Pointer(Type), and
// Struct(id), plus the struct registry used to compute sizes.
package types

import "fmt"

// Kind is the closed sum of type constructors.
type Kind int

const (
	KindNat Kind = iota
	KindInt
	KindFloat32
	KindBool
	KindString
	KindPointer
	KindStruct
)

// WordSize is the machine word width in bytes; also the size of the String
// descriptor's two fields.
const WordSize = 8

// String descriptor layout, part of the ABI: {pointer, length} contiguous.
const (
	StrPtrOff = 0
	StrLenOff = WordSize
)

// Type is an immutable value of the closed type sum.
type Type struct {
	kind    Kind
	width   int    // for Nat/Int: 8, 16, 32, 64
	pointee *Type  // for Pointer
	structID string // for Struct
}

func Nat(width int) Type  { return Type{kind: KindNat, width: width} }
func Int(width int) Type  { return Type{kind: KindInt, width: width} }
func Float32() Type       { return Type{kind: KindFloat32} }
func Bool() Type          { return Type{kind: KindBool} }
func String() Type        { return Type{kind: KindString} }
func Pointer(to Type) Type {
	p := to
	return Type{kind: KindPointer, pointee: &p}
}
func Struct(id string) Type { return Type{kind: KindStruct, structID: id} }

func (t Type) Kind() Kind      { return t.kind }
func (t Type) Width() int      { return t.width }
func (t Type) StructID() string { return t.structID }

func (t Type) Equal(o Type) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case KindNat, KindInt:
		return t.width == o.width
	case KindPointer:
		return t.pointee.Equal(*o.pointee)
	case KindStruct:
		return t.structID == o.structID
	default:
		return true
	}
}

func (t Type) String() string {
	switch t.kind {
	case KindNat:
		return fmt.Sprintf("Nat%d", t.width)
	case KindInt:
		return fmt.Sprintf("Int%d", t.width)
	case KindFloat32:
		return "Float32"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindPointer:
		return "^" + t.pointee.String()
	case KindStruct:
		return t.structID
	default:
		return "?"
	}
}

// Field is one member of a struct's layout: its type and its byte offset
// from the start of the struct.
type Field struct {
	Name   string
	Type   Type
	Offset int
}

// StructInfo is a registered struct's field layout and total size.
type StructInfo struct {
	Name   string
	Fields []Field
	Size   int
}

// Registry resolves named struct types to their layout. Size computation for
// any Type, including nested structs and pointers, goes through it.
type Registry struct {
	structs map[string]*StructInfo
}

func NewRegistry() *Registry {
	return &Registry{structs: make(map[string]*StructInfo)}
}

// Declare registers a struct by name, assigning each field its byte offset
// in declaration order, and returns the registered layout (whose Size is the
// struct's total size).
func (r *Registry) Declare(name string, fieldTypes []struct {
	Name string
	Type Type
}) *StructInfo {
	info := &StructInfo{Name: name}
	offset := 0
	for _, f := range fieldTypes {
		info.Fields = append(info.Fields, Field{Name: f.Name, Type: f.Type, Offset: offset})
		offset += r.Size(f.Type)
	}
	info.Size = offset
	r.structs[name] = info
	return info
}

func (r *Registry) Lookup(name string) (*StructInfo, bool) {
	info, ok := r.structs[name]
	return info, ok
}

// Size returns a type's compile-time size in bytes.
func (r *Registry) Size(t Type) int {
	switch t.kind {
	case KindNat, KindInt:
		return t.width / 8
	case KindFloat32:
		return 4
	case KindBool:
		return 1
	case KindString:
		return 2 * WordSize
	case KindPointer:
		return WordSize
	case KindStruct:
		if info, ok := r.structs[t.structID]; ok {
			return info.Size
		}
		return 0
	default:
		return 0
	}
}

// Builtin looks up one of the fixed base type names (Nat8/16/32/64,
// Int8/16/32/64, Float32, Bool, String). Returns false for anything else
// (including struct names, which the caller resolves via the Registry).
func Builtin(name string) (Type, bool) {
	switch name {
	case "Nat8":
		return Nat(8), true
	case "Nat16":
		return Nat(16), true
	case "Nat32":
		return Nat(32), true
	case "Nat64":
		return Nat(64), true
	case "Int8":
		return Int(8), true
	case "Int16":
		return Int(16), true
	case "Int32":
		return Int(32), true
	case "Int64":
		return Int(64), true
	case "Float32":
		return Float32(), true
	case "Bool":
		return Bool(), true
	case "String":
		return String(), true
	default:
		return Type{}, false
	}
}
