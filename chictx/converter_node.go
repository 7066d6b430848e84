package chictx

import (
	"encoding/json"

	"chigraph/irsink"
	"chigraph/nodetype"
	"chigraph/result"
	"chigraph/typing"
)

// identityConverterNodeType is a pure node converting between two DataTypes
// that share a back-end representation (e.g. a struct alias, or a named
// type over the same primitive). It is the only converter kind
// CreateConverterNodeType can currently produce.
type identityConverterNodeType struct {
	nodetype.Base
	from, to typing.DataType
}

func newIdentityConverterNodeType(from, to typing.DataType) *identityConverterNodeType {
	return &identityConverterNodeType{
		Base: nodetype.Base{Sig: nodetype.Signature{
			QualifiedName: "lang:convert_" + from.Name + "_to_" + to.Name,
			Pure:          true,
			DataInputs:    []typing.NamedDataType{{Name: "in", Type: from}},
			DataOutputs:   []typing.NamedDataType{{Name: "out", Type: to}},
		}},
		from: from,
		to:   to,
	}
}

func (c *identityConverterNodeType) Clone() nodetype.NodeType {
	return &identityConverterNodeType{Base: nodetype.Base{Sig: c.Sig}, from: c.from, to: c.to}
}

func (c *identityConverterNodeType) ToJSON() (json.RawMessage, error) {
	return json.Marshal(map[string]any{"from": c.from.QualifiedName(), "to": c.to.QualifiedName()})
}

func (c *identityConverterNodeType) Lower(act nodetype.Activation) (nodetype.LowerResult, *result.Result) {
	return nodetype.LowerResult{Outputs: []irsink.Value{act.Inputs[0]}}, &result.Result{}
}
