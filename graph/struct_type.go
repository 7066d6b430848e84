package graph

import (
	"encoding/json"

	"chigraph/irsink"
	"chigraph/nodetype"
	"chigraph/result"
	"chigraph/typing"
)

// Struct is a GraphStruct (spec section 3): a user-defined composite type.
// Creating or editing one synthesizes/updates two node types in the owning
// module's registry, `_make_<name>` and `_break_<name>`.
type Struct struct {
	Name   string
	Fields []typing.NamedDataType

	mod *Module
}

// MakeNodeTypeName returns the synthesized constructor node type's local
// name for a struct named name.
func MakeNodeTypeName(name string) string { return "_make_" + name }

// BreakNodeTypeName returns the synthesized destructor node type's local
// name for a struct named name.
func BreakNodeTypeName(name string) string { return "_break_" + name }

// structDataType returns the DataType this struct defines, qualified by its
// owning module.
func (s *Struct) structDataType() typing.DataType {
	return typing.DataType{OwningModule: s.mod.FullName, Name: s.Name}
}

// makeNodeType is the synthesized `_make_<struct>` constructor: pure,
// taking one data input per field and producing one data output of the
// struct type, packed via a sequence of stack-slot stores (there is no
// first-class aggregate value in chigraph's IR lowering — struct values
// live behind a pointer, matching how the teacher's `generate` package
// treats all non-primitive values as memory, not registers).
type makeNodeType struct {
	nodetype.Base
	s *Struct
}

func newMakeNodeType(s *Struct, sink irsink.Sink) *makeNodeType {
	fields := s.Fields
	dataIn := make([]typing.NamedDataType, len(fields))
	copy(dataIn, fields)

	return &makeNodeType{
		Base: nodetype.Base{Sig: nodetype.Signature{
			QualifiedName: s.mod.FullName + ":" + MakeNodeTypeName(s.Name),
			Pure:          true,
			DataInputs:    dataIn,
			DataOutputs:   []typing.NamedDataType{{Name: s.Name, Type: s.structDataType()}},
		}},
		s: s,
	}
}

func (m *makeNodeType) Clone() nodetype.NodeType {
	return &makeNodeType{Base: nodetype.Base{Sig: m.Sig}, s: m.s}
}

func (m *makeNodeType) ToJSON() (json.RawMessage, error) {
	return json.Marshal(map[string]any{"struct": m.s.Name, "kind": "make"})
}

func (m *makeNodeType) Lower(act nodetype.Activation) (nodetype.LowerResult, *result.Result) {
	res := &result.Result{}

	structType := m.s.backendStructType(act.Sink)
	slot := act.Sink.NewAlloca(act.Block, structType)
	for i, field := range m.s.Fields {
		fieldPtr := act.Sink.NewBinOp(act.Block, irsink.BinOpAdd, slot, act.Sink.ConstInt(act.Sink.IntType(32), int64(i)))
		act.Sink.NewStore(act.Block, act.Inputs[i], fieldPtr)
		_ = field
	}

	return nodetype.LowerResult{Outputs: []irsink.Value{slot}}, res
}

// breakNodeType is the synthesized `_break_<struct>` destructor: pure,
// taking the struct value and producing one data output per field.
type breakNodeType struct {
	nodetype.Base
	s *Struct
}

func newBreakNodeType(s *Struct) *breakNodeType {
	fields := s.Fields
	dataOut := make([]typing.NamedDataType, len(fields))
	copy(dataOut, fields)

	return &breakNodeType{
		Base: nodetype.Base{Sig: nodetype.Signature{
			QualifiedName: s.mod.FullName + ":" + BreakNodeTypeName(s.Name),
			Pure:          true,
			DataInputs:    []typing.NamedDataType{{Name: s.Name, Type: s.structDataType()}},
			DataOutputs:   dataOut,
		}},
		s: s,
	}
}

func (b *breakNodeType) Clone() nodetype.NodeType {
	return &breakNodeType{Base: nodetype.Base{Sig: b.Sig}, s: b.s}
}

func (b *breakNodeType) ToJSON() (json.RawMessage, error) {
	return json.Marshal(map[string]any{"struct": b.s.Name, "kind": "break"})
}

func (b *breakNodeType) Lower(act nodetype.Activation) (nodetype.LowerResult, *result.Result) {
	res := &result.Result{}

	outs := make([]irsink.Value, len(b.s.Fields))
	for i := range b.s.Fields {
		fieldPtr := act.Sink.NewBinOp(act.Block, irsink.BinOpAdd, act.Inputs[0], act.Sink.ConstInt(act.Sink.IntType(32), int64(i)))
		outs[i] = act.Sink.NewLoad(act.Block, act.Sink.IntType(32), fieldPtr)
	}

	return nodetype.LowerResult{Outputs: outs}, res
}

// backendStructType lazily asks the sink for a pointer-sized aggregate
// handle. Real struct layout (field offsets/padding) is left to the
// concrete irsink implementation; the core only needs an opaque handle to
// pass through DataType.BackendType.
func (s *Struct) backendStructType(sink irsink.Sink) irsink.Type {
	return sink.PtrType(sink.IntType(8))
}
