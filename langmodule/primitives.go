// Package langmodule implements chigraph's pre-installed "lang" module
// (spec section 3): the primitive types every Context loads before any
// user module, and the core exec node types (entry, exit, if, const_*,
// strliteral) every function graph is built from. It has no dependency on
// package graph — it describes node kinds purely in terms of typing and
// nodetype, the same separation the teacher keeps between `typing` (types)
// and `sem`/`walk` (the things that use them).
package langmodule

import (
	"chigraph/irsink"
	"chigraph/typing"
)

// FullName is the module full-name every Context pre-installs.
const FullName = "lang"

// Primitive type names.
const (
	TypeI32    = "i32"
	TypeI1     = "i1"
	TypeI8     = "i8"
	TypeDouble = "double"
	TypePtr    = "ptr"
)

// TypeFromName returns the lang-module DataType for one of the primitive
// names above, binding its back-end handle through sink. Returns the zero
// DataType (Valid() == false) for an unrecognized name.
func TypeFromName(sink irsink.Sink, name string) typing.DataType {
	switch name {
	case TypeI32:
		return typing.DataType{OwningModule: FullName, Name: TypeI32, BackendType: sink.IntType(32)}
	case TypeI1:
		return typing.DataType{OwningModule: FullName, Name: TypeI1, BackendType: sink.IntType(1)}
	case TypeI8:
		return typing.DataType{OwningModule: FullName, Name: TypeI8, BackendType: sink.IntType(8)}
	case TypeDouble:
		return typing.DataType{OwningModule: FullName, Name: TypeDouble, BackendType: sink.FloatType()}
	default:
		return typing.DataType{}
	}
}

// PointerType returns `ptr<elem>`, the only parametric lang type.
func PointerType(sink irsink.Sink, elem typing.DataType) typing.DataType {
	return typing.DataType{
		OwningModule: FullName,
		Name:         "ptr<" + elem.Name + ">",
		BackendType:  sink.PtrType(elem.BackendType.(irsink.Type)),
	}
}
