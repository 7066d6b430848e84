// Package validate implements validateFunction (spec 4.2): the seven
// accumulating checks a GraphFunction must pass before its function
// compiler (fncompile) may run. There is no teacher package to adapt
// directly (chai's `chai/validate` import in `build/import.go` is a stub
// reference with no implementation in the retrieved slice), so this is
// built fresh in the idiom of the teacher's walker error-emission style
// (`walk/errors.go`'s short, single-purpose logging helpers) generalized
// from "log one diagnostic" to "accumulate into a Result".
package validate

import (
	"fmt"

	"chigraph/graph"
	"chigraph/result"
	"chigraph/typing"
)

// Function runs every check from spec 4.2 against f, accumulating all
// failures into one Result rather than stopping at the first.
func Function(f *graph.Function) *result.Result {
	res := &result.Result{}

	res.Merge(checkEntry(f))
	res.Merge(checkExits(f))
	res.Merge(checkConnectivity(f))
	res.Merge(checkTypeAgreement(f))
	res.Merge(checkPureExecSeparation(f))
	res.Merge(checkSymmetry(f))
	res.Merge(checkLocals(f))

	return res
}

// checkEntry verifies check 1: exactly one entry node, whose exec outputs
// match f.ExecInputs (by the entry node type's declared ExecOutputs, which
// CreateEntryNodeType derives from f.ExecInputs) and whose data outputs
// match f.DataInputs in order and type.
func checkEntry(f *graph.Function) *result.Result {
	res := &result.Result{}

	entry := f.EntryNode()
	if entry == nil {
		res.AddEntry(result.CodeMissingEntry, fmt.Sprintf("function %q has no entry node", f.Name), nil)
		return res
	}

	sig := entry.Type().Signature()
	if !typing.EqualSlices(sig.DataOutputs, f.DataInputs) {
		res.AddEntry(result.CodeMissingEntry, fmt.Sprintf("function %q entry data outputs do not match declared data inputs", f.Name), nil)
	}
	if !stringSlicesEqual(sig.ExecOutputs, f.ExecInputs) {
		res.AddEntry(result.CodeMissingEntry, fmt.Sprintf("function %q entry exec outputs do not match declared exec inputs", f.Name), nil)
	}

	return res
}

// checkExits verifies check 2: every designated exit node's exec inputs and
// data inputs match f.ExecOutputs/f.DataOutputs in order and type, and at
// least one exit is designated.
func checkExits(f *graph.Function) *result.Result {
	res := &result.Result{}

	exits := f.ExitNodes()
	if len(exits) == 0 {
		res.AddEntry(result.CodeExitMismatch, fmt.Sprintf("function %q has no exit node", f.Name), nil)
		return res
	}

	for _, exit := range exits {
		sig := exit.Type().Signature()
		if !typing.EqualSlices(sig.DataInputs, f.DataOutputs) {
			res.AddEntry(result.CodeExitMismatch, fmt.Sprintf("function %q exit %s data inputs do not match declared data outputs", f.Name, exit.ID()), nil)
		}
		if !stringSlicesEqual(sig.ExecInputs, f.ExecOutputs) {
			res.AddEntry(result.CodeExitMismatch, fmt.Sprintf("function %q exit %s exec inputs do not match declared exec outputs", f.Name, exit.ID()), nil)
		}
	}

	return res
}

// checkConnectivity verifies check 3: every data input is connected; every
// exec input of a reachable impure node has at least one predecessor; every
// exec output is connected or belongs to an exit node.
func checkConnectivity(f *graph.Function) *result.Result {
	res := &result.Result{}

	reachable := reachableImpureNodes(f)

	for _, n := range f.Nodes() {
		sig := n.Type().Signature()

		for i := range sig.DataInputs {
			if n.InputDataProducer(i) == nil {
				res.AddEntry(result.CodeDanglingInput, fmt.Sprintf("node %s data input %d is unconnected", n.ID(), i), nil)
			}
		}

		if sig.Pure || !reachable[n.ID().String()] {
			continue
		}

		for i := range sig.ExecInputs {
			if len(n.InputExecPredecessors(i)) == 0 {
				res.AddEntry(result.CodeDanglingInput, fmt.Sprintf("node %s exec input %d has no predecessor", n.ID(), i), nil)
			}
		}

		for j := range sig.ExecOutputs {
			if n.OutputExecSuccessor(j) == nil && !f.IsExit(n.ID()) {
				res.AddEntry(result.CodeDanglingOutput, fmt.Sprintf("node %s exec output %d is unconnected", n.ID(), j), nil)
			}
		}
	}

	return res
}

// checkTypeAgreement verifies check 4: every data edge's producer and
// consumer types agree. Connection operations already enforce this at edit
// time (graph.ConnectData, which jsonmod decoding also goes through); this
// check re-derives it structurally over the whole function.
func checkTypeAgreement(f *graph.Function) *result.Result {
	res := &result.Result{}

	for _, n := range f.Nodes() {
		sig := n.Type().Signature()
		for i, want := range sig.DataInputs {
			prod := n.InputDataProducer(i)
			if prod == nil {
				continue
			}
			prodSig := prod.Node.Type().Signature()
			if prod.Slot >= len(prodSig.DataOutputs) {
				res.AddEntry(result.CodeInputSlotRange, fmt.Sprintf("node %s input %d producer slot out of range", n.ID(), i), nil)
				continue
			}
			got := prodSig.DataOutputs[prod.Slot].Type
			if !got.Equals(want.Type) {
				res.AddEntry(result.CodeTypeMismatch, fmt.Sprintf("node %s input %d: producer type %s does not match declared type %s", n.ID(), i, got.QualifiedName(), want.Type.QualifiedName()), nil)
			}
		}
	}

	return res
}

// checkPureExecSeparation verifies check 5: pure nodes carry no exec slots,
// and no exec cycle reaches a pure node (pure nodes have none by
// construction, so this reduces to confirming the invariant holds, since a
// cycle through exec edges alone cannot involve a node with zero exec
// slots).
func checkPureExecSeparation(f *graph.Function) *result.Result {
	res := &result.Result{}

	for _, n := range f.Nodes() {
		sig := n.Type().Signature()
		if sig.Pure && (len(sig.ExecInputs) > 0 || len(sig.ExecOutputs) > 0) {
			res.AddEntry(result.CodePureHasExecSlots, fmt.Sprintf("pure node %s declares exec slots", n.ID()), nil)
		}
	}

	if hasExecCycle(f) {
		res.AddEntry(result.CodePureExecCycle, fmt.Sprintf("function %q has an exec cycle", f.Name), nil)
	}

	return res
}

// hasExecCycle detects a cycle reachable from the entry node purely through
// exec successor edges (depth-first, tracking the current path).
func hasExecCycle(f *graph.Function) bool {
	entry := f.EntryNode()
	if entry == nil {
		return false
	}

	visiting := map[string]bool{}
	done := map[string]bool{}

	var walk func(n *graph.NodeInstance) bool
	walk = func(n *graph.NodeInstance) bool {
		id := n.ID().String()
		if visiting[id] {
			return true
		}
		if done[id] {
			return false
		}
		visiting[id] = true

		sig := n.Type().Signature()
		for j := range sig.ExecOutputs {
			succ := n.OutputExecSuccessor(j)
			if succ == nil {
				continue
			}
			if walk(succ.Node) {
				return true
			}
		}

		visiting[id] = false
		done[id] = true
		return false
	}

	return walk(entry)
}

// checkSymmetry verifies check 6: every connection slot's counterpart
// agrees it is connected back. graph.DisconnectData/DisconnectExec already
// maintain this as an invariant during normal mutation (jsonmod decoding
// also goes through the connection operations); this check re-derives it
// structurally over the whole function.
func checkSymmetry(f *graph.Function) *result.Result {
	res := &result.Result{}

	for _, n := range f.Nodes() {
		sig := n.Type().Signature()

		for i := range sig.DataInputs {
			prod := n.InputDataProducer(i)
			if prod == nil {
				continue
			}
			if !consumerListedAsConsumer(prod.Node, prod.Slot, n, i) {
				res.AddEntry(result.CodeUnclassified, fmt.Sprintf("asymmetric data connection at node %s input %d", n.ID(), i), nil)
			}
		}

		for j := range sig.ExecOutputs {
			succ := n.OutputExecSuccessor(j)
			if succ == nil {
				continue
			}
			found := false
			for _, pred := range succ.Node.InputExecPredecessors(succ.Slot) {
				if pred.Node == n && pred.Slot == j {
					found = true
					break
				}
			}
			if !found {
				res.AddEntry(result.CodeUnclassified, fmt.Sprintf("asymmetric exec connection at node %s output %d", n.ID(), j), nil)
			}
		}
	}

	return res
}

func consumerListedAsConsumer(producer *graph.NodeInstance, outSlot int, consumer *graph.NodeInstance, inSlot int) bool {
	for _, cons := range producer.OutputDataConsumers(outSlot) {
		if cons.Node == consumer && cons.Slot == inSlot {
			return true
		}
	}
	return false
}

// checkLocals stands for check 7 (local-variable references) but performs
// no check and always succeeds. No node type in this repository references
// a local variable, and Function does not track which nodes name which
// local, so a node payload naming an undeclared or removed local is not
// detected here.
func checkLocals(f *graph.Function) *result.Result {
	return &result.Result{}
}

// reachableImpureNodes returns the set of impure node IDs reachable from
// the entry node via exec successor edges (breadth-first).
func reachableImpureNodes(f *graph.Function) map[string]bool {
	reached := map[string]bool{}
	entry := f.EntryNode()
	if entry == nil {
		return reached
	}

	queue := []*graph.NodeInstance{entry}
	reached[entry.ID().String()] = true

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		sig := n.Type().Signature()
		for j := range sig.ExecOutputs {
			succ := n.OutputExecSuccessor(j)
			if succ == nil {
				continue
			}
			id := succ.Node.ID().String()
			if !reached[id] {
				reached[id] = true
				queue = append(queue, succ.Node)
			}
		}
	}

	return reached
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
