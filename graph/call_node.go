package graph

import (
	"encoding/json"

	"chigraph/irsink"
	"chigraph/nodetype"
	"chigraph/result"
)

// callNodeType is the NodeType a user places to invoke another GraphFunction
// of the same or a dependency module (spec 4.5: `nodeTypeFromModule` resolves
// a module's own function names to callable node types, the graph-native
// analogue of the teacher's `sem.FuncDef` reference resolution in
// `walk/expr_walker.go`). Its signature mirrors the callee's exactly.
type callNodeType struct {
	nodetype.Base
	callee *Function
}

// newCallNodeType builds the callable node type for fn.
func newCallNodeType(fn *Function) *callNodeType {
	return &callNodeType{
		Base: nodetype.Base{Sig: nodetype.Signature{
			QualifiedName: fn.mod.FullName + ":" + fn.Name,
			DataInputs:    fn.DataInputs,
			DataOutputs:   fn.DataOutputs,
			ExecInputs:    fn.ExecInputs,
			ExecOutputs:   fn.ExecOutputs,
		}},
		callee: fn,
	}
}

func (c *callNodeType) Clone() nodetype.NodeType {
	return &callNodeType{Base: nodetype.Base{Sig: c.Sig}, callee: c.callee}
}

func (c *callNodeType) ToJSON() (json.RawMessage, error) {
	return json.Marshal(map[string]any{"callee": c.callee.Name})
}

// Lower emits a call to the callee's already-compiled back-end function
// (found via act.CallCache, the per-compile cache the module compiler
// populates, section 4.5's "per-compile cache (fullName -> back-end module
// handle)") and then branches to the activated exec output. The callee
// returns the inputexec_id of whichever exit it took (the same convention
// langmodule.exitNodeType uses, spec 4.3); this dispatches on that value
// with a chain of comparisons since irsink.Sink has no native switch.
func (c *callNodeType) Lower(act nodetype.Activation) (nodetype.LowerResult, *result.Result) {
	res := &result.Result{}

	backendFn, ok := act.CallCache.Lookup(c.callee.mod.FullName + "." + c.callee.Name)
	if !ok {
		res.AddEntry(result.CodeLoweringFailed, "callee not yet compiled: "+c.Sig.QualifiedName, nil)
		return nodetype.LowerResult{}, res
	}

	callArgs := append([]irsink.Value{}, act.Inputs...)
	retExecID := act.Sink.NewCall(act.Block, backendFn, callArgs...)

	if len(act.OutputBlocks) == 1 {
		act.Sink.NewBr(act.Block, act.OutputBlocks[0])
	} else {
		dispatchOnExecID(act, retExecID)
	}

	return nodetype.LowerResult{Outputs: nil}, res
}

// dispatchOnExecID terminates act.Block with a chain of equality checks
// against retExecID, branching to the matching OutputBlocks entry. The last
// candidate is taken unconditionally: validation guarantees retExecID always
// names one of the callee's declared exec outputs. Intermediate "else"
// continuations are fresh blocks allocated on act.Fn for exactly this
// dispatch chain.
func dispatchOnExecID(act nodetype.Activation, retExecID irsink.Value) {
	block := act.Block
	for i := 0; i < len(act.OutputBlocks)-1; i++ {
		cmp := act.Sink.NewICmp(block, irsink.ICmpEQ, retExecID, act.Sink.ConstInt(act.Sink.IntType(32), int64(i)))
		if i == len(act.OutputBlocks)-2 {
			act.Sink.NewCondBr(block, cmp, act.OutputBlocks[i], act.OutputBlocks[i+1])
			return
		}
		next := act.Sink.NewBlock(act.Fn, "call.dispatch")
		act.Sink.NewCondBr(block, cmp, act.OutputBlocks[i], next)
		block = next
	}
}

// CallNodeType returns the callable node type for one of m's own functions,
// or nil if name does not name a function in m.
func (m *Module) CallNodeType(name string) nodetype.NodeType {
	fn, ok := m.Functions[name]
	if !ok {
		return nil
	}
	return newCallNodeType(fn)
}
