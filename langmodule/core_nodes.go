package langmodule

import (
	"encoding/json"

	"chigraph/irsink"
	"chigraph/nodetype"
	"chigraph/result"
	"chigraph/typing"
)

// ifNodeType is the lang module's "if" node: impure, one data input (an
// i1 condition), two exec inputs aren't needed (it has one exec input,
// "in"), and two exec outputs, "true"/"false".
type ifNodeType struct {
	nodetype.Base
}

// NewIfNodeType synthesizes the "if" node type, binding its i1 condition
// type through sink.
func NewIfNodeType(sink irsink.Sink) nodetype.NodeType {
	return &ifNodeType{Base: nodetype.Base{Sig: nodetype.Signature{
		QualifiedName: FullName + ":if",
		DataInputs:    []typing.NamedDataType{{Name: "condition", Type: TypeFromName(sink, TypeI1)}},
		ExecInputs:    []string{"in"},
		ExecOutputs:   []string{"true", "false"},
	}}}
}

func (n *ifNodeType) Clone() nodetype.NodeType { return &ifNodeType{Base: nodetype.Base{Sig: n.Sig}} }

func (n *ifNodeType) ToJSON() (json.RawMessage, error) { return json.Marshal(map[string]any{}) }

func (n *ifNodeType) Lower(act nodetype.Activation) (nodetype.LowerResult, *result.Result) {
	res := &result.Result{}
	act.Sink.NewCondBr(act.Block, act.Inputs[0], act.OutputBlocks[0], act.OutputBlocks[1])
	return nodetype.LowerResult{}, res
}

// constNodeType is the family of "const_i32"/"const_i1"/"const_i8"/
// "const_double" pure nodes: no inputs, one data output holding a fixed
// value carried in the node's JSON payload.
type constNodeType struct {
	nodetype.Base
	primName string
	value    int64
}

// NewConstNodeType synthesizes a const_<primName> node type producing the
// given integer value.
func NewConstNodeType(sink irsink.Sink, primName string, value int64) nodetype.NodeType {
	return &constNodeType{
		Base: nodetype.Base{Sig: nodetype.Signature{
			QualifiedName: FullName + ":const_" + primName,
			Pure:          true,
			DataOutputs:   []typing.NamedDataType{{Name: "value", Type: TypeFromName(sink, primName)}},
		}},
		primName: primName,
		value:    value,
	}
}

func (c *constNodeType) Clone() nodetype.NodeType {
	return &constNodeType{Base: nodetype.Base{Sig: c.Sig}, primName: c.primName, value: c.value}
}

func (c *constNodeType) ToJSON() (json.RawMessage, error) {
	return json.Marshal(map[string]any{"value": c.value})
}

func (c *constNodeType) Lower(act nodetype.Activation) (nodetype.LowerResult, *result.Result) {
	res := &result.Result{}
	out := act.Sink.ConstInt(act.Sink.IntType(bitsFor(c.primName)), c.value)
	return nodetype.LowerResult{Outputs: []irsink.Value{out}}, res
}

func bitsFor(primName string) uint64 {
	switch primName {
	case TypeI1:
		return 1
	case TypeI8:
		return 8
	default:
		return 32
	}
}

// strLiteralNodeType is the "strliteral" pure node: no inputs, one data
// output of type ptr<i8>. Lower emits a null pointer for it; see Lower.
type strLiteralNodeType struct {
	nodetype.Base
	text string
}

// NewStrLiteralNodeType synthesizes a strliteral node type producing text.
func NewStrLiteralNodeType(sink irsink.Sink, text string) nodetype.NodeType {
	return &strLiteralNodeType{
		Base: nodetype.Base{Sig: nodetype.Signature{
			QualifiedName: FullName + ":strliteral",
			Pure:          true,
			DataOutputs:   []typing.NamedDataType{{Name: "string", Type: PointerType(sink, TypeFromName(sink, TypeI8))}},
		}},
		text: text,
	}
}

func (s *strLiteralNodeType) Clone() nodetype.NodeType {
	return &strLiteralNodeType{Base: nodetype.Base{Sig: s.Sig}, text: s.text}
}

func (s *strLiteralNodeType) ToJSON() (json.RawMessage, error) {
	return json.Marshal(map[string]any{"value": s.text})
}

func (s *strLiteralNodeType) Lower(act nodetype.Activation) (nodetype.LowerResult, *result.Result) {
	res := &result.Result{}
	// The abstract Sink interface exposes only the scalar operations the
	// core needs, so no global string constant is emitted: the output is a
	// null i8 pointer, and the text is kept only in the node type's JSON
	// payload. Nothing in the lowering path reads that text.
	ptrType := act.Sink.PtrType(act.Sink.IntType(8))
	out := act.Sink.ConstZero(ptrType)
	return nodetype.LowerResult{Outputs: []irsink.Value{out}}, res
}
