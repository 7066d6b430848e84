// Package graph implements the graph data model (spec.md section 3):
// NodeInstance, Function, Struct, and Module, plus the connection
// operations (section 4.4) that mutate them. Each Function owns its nodes in
// an arena (one map keyed by stable UUID). A connection is a (node, slot)
// pair holding a direct *NodeInstance pointer to the other endpoint, not a
// node ID, so connected nodes reference each other in both directions.
package graph

import (
	"time"

	"github.com/google/uuid"

	"chigraph/nodetype"
)

// DataConn identifies one endpoint of a data edge: the node and the
// data-port index on that node.
type DataConn struct {
	Node *NodeInstance
	Slot int
}

// ExecConn identifies one endpoint of an exec edge.
type ExecConn struct {
	Node *NodeInstance
	Slot int
}

// NodeInstance is one placed node within a Function: identity, position,
// owned NodeType, and connection slots (spec section 3).
type NodeInstance struct {
	id       uuid.UUID
	X, Y     float64
	nodeType nodetype.NodeType

	fn *Function

	// inputData[i] is the single producer feeding data input i, or nil if
	// unconnected. Exactly one slot per declared data input.
	inputData []*DataConn
	// outputData[j] is the set of consumers fed by data output j.
	outputData [][]DataConn

	// inputExec[i] is the set of predecessors that can activate exec
	// input i. Empty slices for pure nodes (no exec inputs at all).
	inputExec [][]ExecConn
	// outputExec[j] is the single successor of exec output j, or nil.
	outputExec []*ExecConn
}

// InstanceID implements nodetype.Owner.
func (n *NodeInstance) InstanceID() string { return n.id.String() }

// ID returns the node's stable 128-bit identifier.
func (n *NodeInstance) ID() uuid.UUID { return n.id }

// Type returns the node's owned NodeType.
func (n *NodeInstance) Type() nodetype.NodeType { return n.nodeType }

// Function returns the Function this node is placed in.
func (n *NodeInstance) Function() *Function { return n.fn }

// InputDataProducer returns the single producer feeding data input i, or
// nil if unconnected.
func (n *NodeInstance) InputDataProducer(i int) *DataConn { return n.inputData[i] }

// OutputDataConsumers returns every consumer fed by data output j.
func (n *NodeInstance) OutputDataConsumers(j int) []DataConn { return n.outputData[j] }

// InputExecPredecessors returns every predecessor that can activate exec
// input i.
func (n *NodeInstance) InputExecPredecessors(i int) []ExecConn { return n.inputExec[i] }

// OutputExecSuccessor returns the single successor of exec output j, or nil
// if unconnected.
func (n *NodeInstance) OutputExecSuccessor(j int) *ExecConn { return n.outputExec[j] }

// newNodeInstance constructs and arity-normalizes a NodeInstance for nt,
// cloning nt so the instance owns a type object it can attach itself to as
// owner (spec 3: NodeType carries "a back-reference to its owning
// NodeInstance, set when placed").
func newNodeInstance(fn *Function, id uuid.UUID, nt nodetype.NodeType, x, y float64) *NodeInstance {
	owned := nt.Clone()

	inst := &NodeInstance{
		id:       id,
		X:        x,
		Y:        y,
		nodeType: owned,
		fn:       fn,
	}
	owned.SetOwner(inst)
	inst.normalizeSlots()
	return inst
}

// normalizeSlots resizes the connection containers to match the node
// type's current signature, preserving any connections whose index still
// falls within the new arity (used both at construction and after retype).
func (n *NodeInstance) normalizeSlots() {
	sig := n.nodeType.Signature()

	n.inputData = resizeDataConnPtrs(n.inputData, len(sig.DataInputs))
	n.outputData = resizeDataConnSets(n.outputData, len(sig.DataOutputs))

	if sig.Pure {
		n.inputExec = nil
		n.outputExec = nil
		return
	}

	n.inputExec = resizeExecConnSets(n.inputExec, len(sig.ExecInputs))
	n.outputExec = resizeExecConnPtrs(n.outputExec, len(sig.ExecOutputs))
}

func resizeDataConnPtrs(old []*DataConn, n int) []*DataConn {
	out := make([]*DataConn, n)
	copy(out, old)
	return out
}

func resizeDataConnSets(old [][]DataConn, n int) [][]DataConn {
	out := make([][]DataConn, n)
	copy(out, old)
	return out
}

func resizeExecConnSets(old [][]ExecConn, n int) [][]ExecConn {
	out := make([][]ExecConn, n)
	copy(out, old)
	return out
}

func resizeExecConnPtrs(old []*ExecConn, n int) []*ExecConn {
	out := make([]*ExecConn, n)
	copy(out, old)
	return out
}

// SetType retypes a node in place (spec section 3, "retype"): the slot
// vectors are renormalized to the new type's arity. Per the Open Question
// resolution in spec section 9, exec slots are trimmed by disconnecting
// every slot with index >= the new arity, leaving lower-indexed
// connections (and all data connections whose endpoint survives) intact.
func (n *NodeInstance) SetType(nt nodetype.NodeType) {
	newSig := nt.Signature()

	// Disconnect exec slots beyond the new arity before resizing, so the
	// counterpart endpoints are told about the removal.
	for i := len(newSig.ExecOutputs); i < len(n.outputExec); i++ {
		if n.outputExec[i] != nil {
			n.disconnectExecSlotRaw(i)
		}
	}
	for i := len(newSig.ExecInputs); i < len(n.inputExec); i++ {
		preds := append([]ExecConn(nil), n.inputExec[i]...)
		for _, pred := range preds {
			pred.Node.disconnectExecSlotRaw(pred.Slot)
		}
	}

	// Data slots beyond the new arity are dropped by the resize itself;
	// disconnect their counterparts first so the invariant holds on both
	// sides.
	for i := len(newSig.DataInputs); i < len(n.inputData); i++ {
		if n.inputData[i] != nil {
			n.disconnectDataInputRaw(i)
		}
	}
	for j := len(newSig.DataOutputs); j < len(n.outputData); j++ {
		consumers := append([]DataConn(nil), n.outputData[j]...)
		for _, cons := range consumers {
			cons.Node.disconnectDataInputRaw(cons.Slot)
		}
	}

	owner := n.nodeType.Owner()
	owned := nt.Clone()
	owned.SetOwner(owner)
	n.nodeType = owned
	n.normalizeSlots()

	n.touch()
}

func (n *NodeInstance) touch() {
	if n.fn != nil && n.fn.mod != nil {
		n.fn.mod.LastEditTime = time.Now()
	}
}
