package graph

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chigraph/irsink"
	"chigraph/langmodule"
	"chigraph/nodetype"
	"chigraph/typing"
)

type stubResolver struct {
	mods map[string]*Module
}

func (s stubResolver) ModuleByFullName(name string) *Module { return s.mods[name] }

func i32(sink irsink.Sink) typing.DataType {
	return typing.DataType{OwningModule: "lang", Name: "i32", BackendType: sink.IntType(32)}
}

// TestStructSynthesizesNodeTypes covers spec scenario S3.
func TestStructSynthesizesNodeTypes(t *testing.T) {
	sink := irsink.NewLLVMSink()
	mod := NewModule("test/main", stubResolver{}, sink)

	_, inserted := mod.GetOrCreateStruct("hello")
	assert.True(t, inserted)
	assert.Equal(t, []string{"hello"}, mod.TypeNames())
	assert.Contains(t, mod.NodeTypeNames(), MakeNodeTypeName("hello"))
	assert.Contains(t, mod.NodeTypeNames(), BreakNodeTypeName("hello"))

	_, inserted = mod.GetOrCreateStruct("hello")
	assert.False(t, inserted)

	assert.True(t, mod.RemoveStruct("hello"))
	assert.False(t, mod.RemoveStruct("hello"))
	assert.Empty(t, mod.TypeNames())
	assert.NotContains(t, mod.NodeTypeNames(), MakeNodeTypeName("hello"))
}

// TestFunctionLifecycle covers spec scenario S4.
func TestFunctionLifecycle(t *testing.T) {
	sink := irsink.NewLLVMSink()
	mod := NewModule("test/main", stubResolver{}, sink)

	fn, inserted := mod.GetOrCreateFunction("mysexyfunc", nil, nil, []string{""}, []string{""})
	require.True(t, inserted)
	assert.Equal(t, []string{""}, fn.ExecInputs)
	assert.Equal(t, []string{""}, fn.ExecOutputs)
	assert.Contains(t, mod.NodeTypeNames(), "mysexyfunc")

	assert.True(t, mod.RemoveFunction("mysexyfunc"))
	assert.False(t, mod.RemoveFunction("mysexyfunc"))
}

// TestConnectDataTypeMismatchCaughtEarly covers spec scenario S6.
func TestConnectDataTypeMismatchCaughtEarly(t *testing.T) {
	sink := irsink.NewLLVMSink()
	mod := NewModule("test/main", stubResolver{}, sink)
	fn, _ := mod.GetOrCreateFunction("f", nil, nil, nil, nil)

	a, _ := fn.InsertNode(langmodule.NewConstNodeType(sink, "i32", 1), 0, 0, uuid.New())
	b, _ := fn.InsertNode(langmodule.NewIfNodeType(sink), 100, 0, uuid.New())

	res := ConnectData(a, 0, b, 0)
	assert.False(t, res.Success())
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "E24", res.Entries[0].Code)

	assert.Len(t, a.OutputDataConsumers(0), 0)
	assert.Nil(t, b.InputDataProducer(0))
}

// TestConnectionSymmetry covers invariants 1 and 2: connecting then
// disconnecting leaves both endpoints' slot vectors consistent.
func TestConnectionSymmetry(t *testing.T) {
	sink := irsink.NewLLVMSink()
	mod := NewModule("test/main", stubResolver{}, sink)
	fn, _ := mod.GetOrCreateFunction("f", nil, nil, []string{"in"}, []string{"out"})

	entry, _ := fn.InsertNode(fn.CreateEntryNodeType(), 0, 0, uuid.New())
	fn.SetEntry(entry)
	exit, _ := fn.InsertNode(fn.CreateExitNodeType(), 100, 0, uuid.New())
	fn.AddExit(exit)

	require.True(t, ConnectExec(entry, 0, exit, 0).Success())
	succ := entry.OutputExecSuccessor(0)
	require.NotNil(t, succ)
	assert.Equal(t, exit, succ.Node)

	preds := exit.InputExecPredecessors(0)
	require.Len(t, preds, 1)
	assert.Equal(t, entry, preds[0].Node)

	require.True(t, DisconnectExec(entry, 0).Success())
	assert.Nil(t, entry.OutputExecSuccessor(0))
	assert.Len(t, exit.InputExecPredecessors(0), 0)
}

// TestConnectDataTwiceLeavesOneEdge covers invariant 9.
func TestConnectDataTwiceLeavesOneEdge(t *testing.T) {
	sink := irsink.NewLLVMSink()
	mod := NewModule("test/main", stubResolver{}, sink)

	dataOut := []typing.NamedDataType{{Name: "y", Type: i32(sink)}}
	fn, _ := mod.GetOrCreateFunction("f", nil, dataOut, []string{"in"}, []string{"out"})

	a, _ := fn.InsertNode(langmodule.NewConstNodeType(sink, "i32", 7), 0, 0, uuid.New())
	exit, _ := fn.InsertNode(fn.CreateExitNodeType(), 100, 0, uuid.New())

	require.True(t, ConnectData(a, 0, exit, 0).Success())
	require.True(t, ConnectData(a, 0, exit, 0).Success())

	assert.Len(t, a.OutputDataConsumers(0), 1)
}

// TestPureNodeHasNoExecSlots covers invariant 4.
func TestPureNodeHasNoExecSlots(t *testing.T) {
	sink := irsink.NewLLVMSink()
	mod := NewModule("test/main", stubResolver{}, sink)
	fn, _ := mod.GetOrCreateFunction("f", nil, nil, nil, nil)

	c, _ := fn.InsertNode(langmodule.NewConstNodeType(sink, "i32", 9), 0, 0, uuid.New())
	sig := c.Type().Signature()
	assert.True(t, sig.Pure)
	assert.Empty(t, sig.ExecInputs)
	assert.Empty(t, sig.ExecOutputs)
}

// TestDependencyAddUnknownFails covers half of spec scenario S2:
// AddDependency against an unresolvable name fails without mutating state.
func TestDependencyAddUnknownFails(t *testing.T) {
	sink := irsink.NewLLVMSink()
	mod := NewModule("test/main", stubResolver{mods: map[string]*Module{}}, sink)

	res := mod.AddDependency("notarealmodule")
	assert.False(t, res.Success())
	assert.Empty(t, mod.Dependencies())
}

// TestSetTypePreservesSurvivingSlots covers invariant 5: retyping to a
// signature with fewer exec outputs drops only the slots beyond the new
// arity, leaving lower-indexed connections intact.
func TestSetTypePreservesSurvivingSlots(t *testing.T) {
	sink := irsink.NewLLVMSink()
	mod := NewModule("test/main", stubResolver{}, sink)
	fn, _ := mod.GetOrCreateFunction("f", nil, nil, []string{"in"}, []string{"out"})

	ifNode, _ := fn.InsertNode(langmodule.NewIfNodeType(sink), 0, 0, uuid.New())
	trueTarget, _ := fn.InsertNode(fn.CreateExitNodeType(), 100, 0, uuid.New())
	falseTarget, _ := fn.InsertNode(fn.CreateExitNodeType(), 100, 50, uuid.New())

	require.True(t, ConnectExec(ifNode, 0, trueTarget, 0).Success())
	require.True(t, ConnectExec(ifNode, 1, falseTarget, 0).Success())

	// Retype down to a single exec output; slot 0 ("true") must survive,
	// slot 1 ("false") must be disconnected on both ends.
	narrowed := &narrowedIfNodeType{NodeType: langmodule.NewIfNodeType(sink)}
	ifNode.SetType(narrowed)

	succ := ifNode.OutputExecSuccessor(0)
	require.NotNil(t, succ)
	assert.Equal(t, trueTarget, succ.Node)
	assert.Len(t, falseTarget.InputExecPredecessors(0), 0)
}

// narrowedIfNodeType wraps the lang "if" node type but reports a single
// exec output, exercising SetType's arity-shrink path without depending on
// an internal langmodule type.
type narrowedIfNodeType struct {
	nodetype.NodeType
}

func (n *narrowedIfNodeType) Signature() nodetype.Signature {
	sig := n.NodeType.Signature()
	sig.ExecOutputs = sig.ExecOutputs[:1]
	return sig
}

func (n *narrowedIfNodeType) Clone() nodetype.NodeType {
	return &narrowedIfNodeType{NodeType: n.NodeType.Clone()}
}

// TestDependencyAddRemove covers the rest of spec scenario S2.
func TestDependencyAddRemove(t *testing.T) {
	sink := irsink.NewLLVMSink()
	lang := NewModule("lang", stubResolver{}, sink)
	mod := NewModule("test/main", stubResolver{mods: map[string]*Module{"lang": lang}}, sink)

	require.True(t, mod.AddDependency("lang").Success())
	assert.Equal(t, []string{"lang"}, mod.Dependencies())

	require.True(t, mod.RemoveDependency("lang").Success())
	assert.Empty(t, mod.Dependencies())
}
