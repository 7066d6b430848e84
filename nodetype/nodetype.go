// Package nodetype defines NodeType, the abstract schema-and-behavior
// object spec.md section 3/4.1/design-note-2 describes: a node's signature
// (pure flag, ordered data/exec inputs and outputs) plus the lowering
// callback that emits IR for one activation of the node. Concrete node
// kinds (built-in lang-module nodes, user function-call nodes, synthesized
// struct make/break nodes, module-provided extensions) all implement this
// interface, matching the teacher's capability-set dispatch used for
// sem.Operator overloads (operator.go) generalized from "one of a fixed set
// of operator forms" to "one of an open set of node kinds."
package nodetype

import (
	"encoding/json"
	"sync"

	"chigraph/irsink"
	"chigraph/result"
	"chigraph/typing"
)

// Owner is the minimal view of a placed NodeInstance that a NodeType needs
// to keep a back-reference to (spec 3: "a back-reference to its owning
// NodeInstance, set when placed"). graph.NodeInstance implements this; the
// interface exists purely to break the import cycle a direct dependency on
// package graph would create (graph depends on nodetype for NodeType,
// not the other way around).
type Owner interface {
	InstanceID() string
}

// Signature describes a node's calling convention: purity plus ordered data
// and execution ports.
type Signature struct {
	// QualifiedName is "moduleFullName:localName".
	QualifiedName string
	Pure          bool
	DataInputs    []typing.NamedDataType
	DataOutputs   []typing.NamedDataType
	// ExecInputs/ExecOutputs are empty for pure node types.
	ExecInputs  []string
	ExecOutputs []string
}

// Activation carries everything a lowering callback needs to emit IR for
// one activation of a node: which exec input fired (meaningless for pure
// nodes, always 0), the computed input data values (following producer
// edges, possibly through other pure nodes), the block reserved for each
// exec output by the driver's stage-1 pass, and the Sink to emit into.
type Activation struct {
	// ExecInput is the activating exec input index (section 4.3); always 0
	// for pure nodes.
	ExecInput int
	// Block is the block the callback should emit its instructions into.
	// For impure nodes this was reserved during stage 1 for this specific
	// (node, ExecInput) pair; for pure nodes it is the block of the
	// consumer that needs the value, since a pure node is lowered again at
	// each site that consumes it.
	Block irsink.Block
	// Inputs holds one value per declared data input, in order.
	Inputs []irsink.Value
	// OutputBlocks holds one reserved block per declared exec output, in
	// order; nil entries are impossible for a validated function (every
	// exec output of a non-exit node is connected, and exit nodes have no
	// exec outputs).
	OutputBlocks []irsink.Block
	Sink         irsink.Sink
	Fn           irsink.Function
	// CallCache resolves a call node's callee to its already-declared
	// back-end handle (spec 4.5's per-compile cache); nil when lowering a
	// node kind that never calls another function.
	CallCache *CallCache
}

// Result of lowering one activation: the computed value for each declared
// data output, in order. Pure nodes must fill every slot; impure nodes must
// also terminate Activation.Block with a branch to one of OutputBlocks (or
// a return, for exit nodes) before returning.
type LowerResult struct {
	Outputs []irsink.Value
}

// CallCache is the per-compile-session cache mapping a callable function's
// mangled name ("moduleFullName.functionName") to its already-declared
// back-end handle (spec 4.5: "per-compile cache (fullName -> back-end
// module handle) prevents duplicated lowering"). A chictx.Context owns
// exactly one and shares it across every module/function compiled in that
// session; modcompile.CompileWorkspace fans batch members out across
// goroutines, so access is mutex-guarded rather than left to a bare map.
type CallCache struct {
	mu sync.Mutex
	m  map[string]irsink.Function
}

// NewCallCache returns an empty CallCache.
func NewCallCache() *CallCache {
	return &CallCache{m: map[string]irsink.Function{}}
}

// Register records fn's back-end handle under its mangled name.
func (c *CallCache) Register(mangledName string, fn irsink.Function) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[mangledName] = fn
}

// Lookup returns the back-end handle registered under mangledName, if any.
func (c *CallCache) Lookup(mangledName string) (irsink.Function, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.m[mangledName]
	return f, ok
}

// NodeType is the schema + behavior object placed by a NodeInstance.
type NodeType interface {
	Signature() Signature

	// Lower emits IR for one activation. It returns a non-successful
	// Result to abort compilation of the containing function (section 4.3
	// error semantics); per-node lowering errors do not panic.
	Lower(act Activation) (LowerResult, *result.Result)

	// Clone returns an independent copy of this NodeType suitable for a
	// fresh NodeInstance to own (spec 3: NodeType is Clonable so each
	// NodeInstance can carry its own owner back-reference).
	Clone() NodeType

	// SetOwner/Owner implement the owner back-reference. SetOwner is
	// called exactly once, when a NodeInstance places this NodeType.
	SetOwner(o Owner)
	Owner() Owner

	// ToJSON returns this node type's on-disk representation for the
	// `nodes[id].type`/`data` fields in the module format (spec section 6).
	ToJSON() (json.RawMessage, error)
}

// Base is embeddable by concrete NodeType implementations to provide the
// Signature/Owner bookkeeping so each kind only needs to implement Lower,
// Clone, and ToJSON.
type Base struct {
	Sig   Signature
	owner Owner
}

func (b *Base) Signature() Signature { return b.Sig }
func (b *Base) SetOwner(o Owner)     { b.owner = o }
func (b *Base) Owner() Owner         { return b.owner }
