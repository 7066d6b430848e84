// Package typing implements chigraph's type system: DataType, a
// module-qualified named type paired with opaque back-end and debug-type
// handles, and NamedDataType, a (name, DataType) pair used throughout the
// graph data model for parameters, fields, and local variables.
package typing

// BackendHandle is the back-end's representation of a DataType (for the
// llvm-backed irsink, a `types.Type`). The core never inspects it directly;
// it is threaded through to whichever IRSink implementation is lowering a
// function.
type BackendHandle interface{}

// DebugHandle is the back-end's debug-info representation of a DataType.
type DebugHandle interface{}

// DataType is a module-qualified named type. Equality is by qualified name
// only (OwningModule + Name); BackendType/DebugType are opaque handles that
// must be non-nil whenever the type participates in lowering, but they play
// no part in equality.
type DataType struct {
	// OwningModule is the full name of the module that declared this type.
	OwningModule string
	// Name is the type's local name within OwningModule.
	Name string

	BackendType BackendHandle
	DebugType   DebugHandle
}

// Valid reports whether the DataType satisfies the structural invariant
// from the data model: a non-empty owning module and a non-empty name. It
// does not check the back-end handles, which are only required once the
// type is used in lowering.
func (dt DataType) Valid() bool {
	return dt.OwningModule != "" && dt.Name != ""
}

// QualifiedName returns the "module:name" form used for display and for the
// `owningModule : localName` convention spec.md uses for NodeType names.
func (dt DataType) QualifiedName() string {
	return dt.OwningModule + ":" + dt.Name
}

// Equals compares two DataTypes by qualified name only, per spec.
func (dt DataType) Equals(other DataType) bool {
	return dt.OwningModule == other.OwningModule && dt.Name == other.Name
}

// NamedDataType pairs a DataType with the name it is bound under (a
// parameter name, a struct field name, and so on).
type NamedDataType struct {
	Name string
	Type DataType
}

// Equals compares both the binding name and the underlying DataType.
func (n NamedDataType) Equals(other NamedDataType) bool {
	return n.Name == other.Name && n.Type.Equals(other.Type)
}

// EqualSlices reports whether two NamedDataType slices have the same length
// and pairwise-equal elements in order. Used by validation's entry/exit
// signature matching.
func EqualSlices(a, b []NamedDataType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}
