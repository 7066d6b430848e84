package graph

import (
	"fmt"

	"chigraph/result"
)

// ConnectData wires A's data output i to B's data input j (spec 4.4). If B's
// input j already has a producer, it is disconnected first. Fails with
// E22/E23 on out-of-range slots and E24 on type mismatch; on any failure no
// edge is created and neither node's slots are modified.
func ConnectData(a *NodeInstance, i int, b *NodeInstance, j int) *result.Result {
	res := &result.Result{}

	aOutputs := a.nodeType.Signature().DataOutputs
	if i < 0 || i >= len(aOutputs) {
		res.AddEntry(result.CodeOutputSlotRange, fmt.Sprintf("output slot %d out of range on %s", i, a.id), nil)
		return res
	}

	bInputs := b.nodeType.Signature().DataInputs
	if j < 0 || j >= len(bInputs) {
		res.AddEntry(result.CodeInputSlotRange, fmt.Sprintf("input slot %d out of range on %s", j, b.id), nil)
		return res
	}

	if !aOutputs[i].Type.Equals(bInputs[j].Type) {
		res.AddEntry(result.CodeTypeMismatch, fmt.Sprintf(
			"cannot connect %s (type %s) to %s (type %s)",
			aOutputs[i].Name, aOutputs[i].Type.QualifiedName(),
			bInputs[j].Name, bInputs[j].Type.QualifiedName(),
		), map[string]string{
			"Producer Node JSON": nodeJSONSummary(a),
			"Consumer Node JSON": nodeJSONSummary(b),
		})
		return res
	}

	// Connecting an already-connected input first disconnects it.
	if b.inputData[j] != nil {
		b.disconnectDataInputRaw(j)
	}

	b.inputData[j] = &DataConn{Node: a, Slot: i}
	a.outputData[i] = append(a.outputData[i], DataConn{Node: b, Slot: j})

	a.touch()
	b.touch()

	return res
}

// ConnectExec wires A's exec output i to B's exec input j. If A's output i
// already has a successor, it is disconnected first.
func ConnectExec(a *NodeInstance, i int, b *NodeInstance, j int) *result.Result {
	res := &result.Result{}

	aOutputs := a.nodeType.Signature().ExecOutputs
	if i < 0 || i >= len(aOutputs) {
		res.AddEntry(result.CodeOutputSlotRange, fmt.Sprintf("exec output slot %d out of range on %s", i, a.id), nil)
		return res
	}

	bInputs := b.nodeType.Signature().ExecInputs
	if j < 0 || j >= len(bInputs) {
		res.AddEntry(result.CodeInputSlotRange, fmt.Sprintf("exec input slot %d out of range on %s", j, b.id), nil)
		return res
	}

	if a.outputExec[i] != nil {
		a.disconnectExecSlotRaw(i)
	}

	a.outputExec[i] = &ExecConn{Node: b, Slot: j}
	b.inputExec[j] = append(b.inputExec[j], ExecConn{Node: a, Slot: i})

	a.touch()
	b.touch()

	return res
}

// DisconnectData removes the edge feeding consumer b's data input j. The
// producer side is uniquely determined (a data input has at most one
// producer, spec 3), so only the consumer endpoint need be named — this is
// the unambiguous form of spec 4.4's `disconnectData(A, i, B)`. Errors with
// EUKN if the reverse edge on the producer side is missing (connection
// asymmetry, an invariant violation).
func DisconnectData(b *NodeInstance, j int) *result.Result {
	res := &result.Result{}

	if j < 0 || j >= len(b.inputData) {
		res.AddEntry(result.CodeInputSlotRange, fmt.Sprintf("input slot %d out of range on %s", j, b.id), nil)
		return res
	}

	conn := b.inputData[j]
	if conn == nil {
		res.AddEntry(result.CodeUnclassified, "no connection to disconnect", nil)
		return res
	}

	if !b.disconnectDataInputRaw(j) {
		res.AddEntry(result.CodeUnclassified, "connection asymmetry detected during disconnect", nil)
	}

	return res
}

// DisconnectExec removes the edge leaving producer a's exec output i.
func DisconnectExec(a *NodeInstance, i int) *result.Result {
	res := &result.Result{}

	if i < 0 || i >= len(a.outputExec) {
		res.AddEntry(result.CodeOutputSlotRange, fmt.Sprintf("exec output slot %d out of range on %s", i, a.id), nil)
		return res
	}

	if a.outputExec[i] == nil {
		res.AddEntry(result.CodeUnclassified, "no connection to disconnect", nil)
		return res
	}

	if !a.disconnectExecSlotRaw(i) {
		res.AddEntry(result.CodeUnclassified, "connection asymmetry detected during disconnect", nil)
	}

	return res
}

// disconnectDataInputRaw removes the data edge feeding b's input j,
// updating the producer's output set symmetrically. Returns false if the
// reverse edge was missing (asymmetry).
func (b *NodeInstance) disconnectDataInputRaw(j int) bool {
	conn := b.inputData[j]
	if conn == nil {
		return true
	}
	b.inputData[j] = nil
	b.touch()

	producer := conn.Node
	set := producer.outputData[conn.Slot]
	for idx, c := range set {
		if c.Node == b && c.Slot == j {
			producer.outputData[conn.Slot] = append(set[:idx], set[idx+1:]...)
			producer.touch()
			return true
		}
	}
	return false
}

// disconnectExecSlotRaw removes the exec edge leaving a's output i,
// updating the successor's input set symmetrically. Returns false if the
// reverse edge was missing.
func (a *NodeInstance) disconnectExecSlotRaw(i int) bool {
	conn := a.outputExec[i]
	if conn == nil {
		return true
	}
	a.outputExec[i] = nil
	a.touch()

	succ := conn.Node
	set := succ.inputExec[conn.Slot]
	for idx, c := range set {
		if c.Node == a && c.Slot == i {
			succ.inputExec[conn.Slot] = append(set[:idx], set[idx+1:]...)
			succ.touch()
			return true
		}
	}
	return false
}

func nodeJSONSummary(n *NodeInstance) string {
	return n.nodeType.Signature().QualifiedName
}
