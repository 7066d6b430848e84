// Package fncompile implements the function compiler, spec section 4.3's
// "central algorithm": lowering one GraphFunction's exec-and-data graph
// into a back-end function. Grounded on the teacher's `walk.Walker`
// (`walk/walker.go`, `walk/block_walker.go` — the same "driver walks a
// graph, per-node-kind callback emits", generalized here from an AST to a
// connection graph) and `generate/generator.go` (building real functions,
// blocks, and instructions against a concrete IR library).
package fncompile

import (
	"fmt"

	"github.com/google/uuid"

	"chigraph/graph"
	"chigraph/irsink"
	"chigraph/nodetype"
	"chigraph/result"
	"chigraph/typing"
	"chigraph/validate"
)

// nodeState is the per-node-instance compiler bookkeeping spec 4.3
// describes: reserved first blocks keyed by activating exec input, a
// compiled-flag per activating exec input, and the computed output values
// for the most recently completed activation.
type nodeState struct {
	blocks  map[int]irsink.Block
	done    map[int]bool
	outputs []irsink.Value
}

// Compiler lowers one GraphFunction into an existing back-end module
// (identified implicitly by the Sink it was built with).
type Compiler struct {
	fn        *graph.Function
	sink      irsink.Sink
	callCache *nodetype.CallCache

	backendFn  irsink.Function
	allocBlock irsink.Block
	jumpback   irsink.Value
	locals     map[string]irsink.Value

	initialized bool
	compiled    bool

	states map[uuid.UUID]*nodeState
}

// New creates a Compiler for fn, emitting into sink. callCache resolves any
// call node's callee to its already-declared back-end handle (spec 4.5); it
// may be nil for a function with no call nodes.
func New(fn *graph.Function, sink irsink.Sink, callCache *nodetype.CallCache) *Compiler {
	return &Compiler{
		fn:        fn,
		sink:      sink,
		callCache: callCache,
		locals:    map[string]irsink.Value{},
		states:    map[uuid.UUID]*nodeState{},
	}
}

// Initialize runs once: optionally validates fn, declares the back-end
// function with its mangled name, allocates the dedicated alloc block, the
// pure_jumpback slot, and one zero-initialized stack slot per local
// variable. Calling it twice is a programmer error (spec invariant 8).
func (c *Compiler) Initialize(runValidation bool) *result.Result {
	res := &result.Result{}
	if c.initialized {
		res.AddEntry(result.CodeUnclassified, "Initialize called twice", nil)
		return res
	}

	if runValidation {
		vres := validate.Function(c.fn)
		res.Merge(vres)
		if !vres.Success() {
			return res
		}
	}

	mangled := c.fn.Module().FullName + "." + c.fn.Name

	paramTypes := make([]irsink.Type, 0, 1+len(c.fn.DataInputs)+len(c.fn.DataOutputs))
	paramTypes = append(paramTypes, c.sink.IntType(32))
	for _, in := range c.fn.DataInputs {
		paramTypes = append(paramTypes, backendType(in.Type))
	}
	for _, out := range c.fn.DataOutputs {
		paramTypes = append(paramTypes, c.sink.PtrType(backendType(out.Type)))
	}

	c.backendFn = c.sink.NewFunc(mangled, paramTypes...)
	c.allocBlock = c.sink.NewBlock(c.backendFn, "alloc")
	c.jumpback = c.sink.NewAlloca(c.allocBlock, c.sink.PtrType(c.sink.IntType(8)))

	for name, t := range c.fn.LocalVariables() {
		slot := c.sink.NewAlloca(c.allocBlock, backendType(t))
		c.sink.NewStore(c.allocBlock, c.sink.ConstZero(backendType(t)), slot)
		c.locals[name] = slot
	}

	c.initialized = true
	return res
}

// backendType extracts the back-end type handle a DataType carries. Every
// DataType participating in lowering must have a non-nil BackendType (spec
// section 3); a nil or wrongly-typed handle here means a lang-module or
// struct type was constructed without going through the type converter
// cache, a programmer error in this repo rather than a user-facing one.
func backendType(t typing.DataType) irsink.Type {
	return t.BackendType.(irsink.Type)
}

// FuncParam exposes the back-end function's index'th parameter, for node
// types (like langmodule's entry) that need to read inputexec_id or a
// data-input parameter directly.
func (c *Compiler) FuncParam(index int) irsink.Value {
	return c.sink.FuncParam(c.backendFn, index)
}

// BackendFunc returns the declared (possibly not yet fully lowered)
// back-end function handle. modcompile calls this right after Initialize,
// before Compile, so it can register every function in a module's
// per-compile cache up front — letting self- and mutually-recursive call
// nodes resolve no matter which order bodies are subsequently lowered in.
func (c *Compiler) BackendFunc() irsink.Function {
	return c.backendFn
}

// workItem is one FIFO entry: an impure node and the exec input index that
// activates it.
type workItem struct {
	node       *graph.NodeInstance
	execInput int
}

// Compile walks the function's exec graph from the entry node, emitting
// IR for every reachable node exactly once per activating exec input.
// Precondition: Initialize has run. Calling Compile twice is a programmer
// error (spec invariant 8).
func (c *Compiler) Compile() *result.Result {
	res := &result.Result{}

	if !c.initialized {
		res.AddEntry(result.CodeUnclassified, "Compile called before Initialize", nil)
		return res
	}
	if c.compiled {
		res.AddEntry(result.CodeUnclassified, "Compile called twice", nil)
		return res
	}

	entry := c.fn.EntryNode()
	if entry == nil {
		res.AddEntry(result.CodeMissingEntry, fmt.Sprintf("function %q has no entry node", c.fn.Name), nil)
		return res
	}

	queue := []workItem{{entry, 0}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		st := c.stateFor(item.node)
		if st.done[item.execInput] {
			continue
		}

		sig := item.node.Type().Signature()
		block := c.reserveBlock(item.node, item.execInput)

		inputs, ires := c.resolveInputs(item.node, block)
		res.Merge(ires)
		if !ires.Success() {
			c.abort()
			return res
		}

		outputBlocks := make([]irsink.Block, len(sig.ExecOutputs))
		var successors []workItem
		for j := range sig.ExecOutputs {
			succ := item.node.OutputExecSuccessor(j)
			if succ == nil {
				continue
			}
			outputBlocks[j] = c.reserveBlock(succ.Node, succ.Slot)
			successors = append(successors, workItem{succ.Node, succ.Slot})
		}

		act := nodetype.Activation{
			ExecInput:    item.execInput,
			Block:        block,
			Inputs:       inputs,
			OutputBlocks: outputBlocks,
			Sink:         c.sink,
			Fn:           c.backendFn,
			CallCache:    c.callCache,
		}

		lr, lres := item.node.Type().Lower(act)
		res.Merge(lres)
		if !lres.Success() {
			c.abort()
			return res
		}

		st.outputs = lr.Outputs
		st.done[item.execInput] = true

		queue = append(queue, successors...)
	}

	c.sink.NewBr(c.allocBlock, c.reserveBlock(entry, 0))
	c.compiled = true
	return res
}

// resolveInputs computes the Value for each of node's declared data
// inputs, following producer edges. A pure producer is lowered inline,
// fresh, directly into block (see valueForPureNode); an impure producer's
// value is read from the cached output of its own prior activation.
func (c *Compiler) resolveInputs(node *graph.NodeInstance, block irsink.Block) ([]irsink.Value, *result.Result) {
	res := &result.Result{}
	sig := node.Type().Signature()
	inputs := make([]irsink.Value, len(sig.DataInputs))

	for i := range sig.DataInputs {
		prod := node.InputDataProducer(i)
		if prod == nil {
			continue
		}

		if prod.Node.Type().Signature().Pure {
			vals, pres := c.valueForPureNode(prod.Node, block)
			res.Merge(pres)
			if prod.Slot < len(vals) {
				inputs[i] = vals[prod.Slot]
			}
			continue
		}

		st := c.stateFor(prod.Node)
		if prod.Slot < len(st.outputs) {
			inputs[i] = st.outputs[prod.Slot]
		}
	}

	return inputs, res
}

// valueForPureNode lowers a pure node's outputs directly into block. Pure
// nodes are re-lowered at every distinct call site rather than sharing one
// physical block through the indirect-branch "pure_jumpback" re-entry spec
// 4.3 describes: a back-end Value produced in one block cannot be reused
// from a different block without dominating it, and the abstract
// irsink.Sink has no construct for the re-entrant trampoline that would let
// a single lowering serve every call site safely. The pure_jumpback slot is
// still allocated during Initialize for interface parity; this simplified
// path does not use it. Pure node lowering is still computed at most once
// per call site (never memoized across sites, since memoizing would share
// a non-dominating SSA value).
func (c *Compiler) valueForPureNode(node *graph.NodeInstance, block irsink.Block) ([]irsink.Value, *result.Result) {
	res := &result.Result{}
	inputs, ires := c.resolveInputs(node, block)
	res.Merge(ires)
	if !ires.Success() {
		return nil, res
	}

	act := nodetype.Activation{Block: block, Inputs: inputs, Sink: c.sink, Fn: c.backendFn, CallCache: c.callCache}
	lr, lres := node.Type().Lower(act)
	res.Merge(lres)
	return lr.Outputs, res
}

// reserveBlock returns the first block reserved for (node, execInput),
// creating it on first request (stage 1 of spec 4.3: reserve before
// emitting).
func (c *Compiler) reserveBlock(node *graph.NodeInstance, execInput int) irsink.Block {
	st := c.stateFor(node)
	if b, ok := st.blocks[execInput]; ok {
		return b
	}
	b := c.sink.NewBlock(c.backendFn, fmt.Sprintf("n%s.%d", node.ID(), execInput))
	st.blocks[execInput] = b
	return b
}

func (c *Compiler) stateFor(node *graph.NodeInstance) *nodeState {
	st, ok := c.states[node.ID()]
	if !ok {
		st = &nodeState{blocks: map[int]irsink.Block{}, done: map[int]bool{}}
		c.states[node.ID()] = st
	}
	return st
}

// abort removes the half-built function from the back-end module (spec
// 4.3 error semantics), if the Sink supports removal.
func (c *Compiler) abort() {
	if remover, ok := c.sink.(irsink.FuncRemover); ok {
		remover.RemoveFunc(c.backendFn)
	}
}
