package langmodule

import (
	"encoding/json"

	"chigraph/nodetype"
	"chigraph/result"
	"chigraph/typing"
)

// entryNodeType is the lang module's "entry" node: impure, no data inputs,
// one data output per the owning function's declared data input, and one
// exec output per declared exec input (spec 3: "execution-only outputs
// matching declared inputs"). Activating exec input k means: this
// particular entry was reached via the function's k'th declared exec
// input, so lowering simply branches to OutputBlocks[k].
type entryNodeType struct {
	nodetype.Base
}

// NewEntryNodeType synthesizes the entry node type for a function whose
// declared data inputs and exec inputs are given.
func NewEntryNodeType(dataInputs []typing.NamedDataType, execInputs []string) nodetype.NodeType {
	return &entryNodeType{Base: nodetype.Base{Sig: nodetype.Signature{
		QualifiedName: FullName + ":entry",
		DataOutputs:   dataInputs,
		ExecOutputs:   execInputs,
	}}}
}

func (e *entryNodeType) Clone() nodetype.NodeType {
	return &entryNodeType{Base: nodetype.Base{Sig: e.Sig}}
}

func (e *entryNodeType) ToJSON() (json.RawMessage, error) {
	data := make([]map[string]string, len(e.Sig.DataOutputs))
	for i, d := range e.Sig.DataOutputs {
		data[i] = map[string]string{d.Name: d.Type.QualifiedName()}
	}
	return json.Marshal(map[string]any{"data": data, "exec": e.Sig.ExecOutputs})
}

func (e *entryNodeType) Lower(act nodetype.Activation) (nodetype.LowerResult, *result.Result) {
	res := &result.Result{}
	act.Sink.NewBr(act.Block, act.OutputBlocks[act.ExecInput])
	return nodetype.LowerResult{}, res
}

// exitNodeType is the lang module's "exit" node: impure, one data input per
// the function's declared data output, one exec input per declared exec
// output, no exec outputs of its own (it terminates the function).
type exitNodeType struct {
	nodetype.Base
	// execInputIndex is copied by Clone but is not set by NewExitNodeType
	// and not read by Lower; the returned index comes from
	// Activation.ExecInput.
	execInputIndex int
}

// NewExitNodeType synthesizes the exit node type for a function whose
// declared data outputs and exec outputs are given.
func NewExitNodeType(dataOutputs []typing.NamedDataType, execOutputs []string) nodetype.NodeType {
	return &exitNodeType{Base: nodetype.Base{Sig: nodetype.Signature{
		QualifiedName: FullName + ":exit",
		DataInputs:    dataOutputs,
		ExecInputs:    execOutputs,
	}}}
}

func (e *exitNodeType) Clone() nodetype.NodeType {
	return &exitNodeType{Base: nodetype.Base{Sig: e.Sig}, execInputIndex: e.execInputIndex}
}

func (e *exitNodeType) ToJSON() (json.RawMessage, error) {
	data := make([]map[string]string, len(e.Sig.DataInputs))
	for i, d := range e.Sig.DataInputs {
		data[i] = map[string]string{d.Name: d.Type.QualifiedName()}
	}
	return json.Marshal(map[string]any{"data": data, "exec": e.Sig.ExecInputs})
}

func (e *exitNodeType) Lower(act nodetype.Activation) (nodetype.LowerResult, *result.Result) {
	res := &result.Result{}
	// Returns the index of the exec input that activated this exit, i.e.
	// which of the function's declared exec outputs was taken; callers and
	// the interpreter use it to tell which exit path was taken.
	act.Sink.NewRet(act.Block, act.Sink.ConstInt(act.Sink.IntType(32), int64(act.ExecInput)))
	return nodetype.LowerResult{}, res
}
