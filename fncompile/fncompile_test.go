package fncompile

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chigraph/graph"
	"chigraph/irsink"
	"chigraph/langmodule"
	"chigraph/nodetype"
	"chigraph/typing"
	"chigraph/validate"
)

func i32Type(sink irsink.Sink) typing.DataType {
	return typing.DataType{OwningModule: "lang", Name: "i32", BackendType: sink.IntType(32)}
}

func newTestModule(sink irsink.Sink) *graph.Module {
	return graph.NewModule("test/mod", stubResolver{}, sink)
}

type stubResolver struct{}

func (stubResolver) ModuleByFullName(string) *graph.Module { return nil }

// TestCompileMinimalFunction covers spec scenario S5: a function whose
// entry connects straight to its exit, no pure nodes, no locals.
func TestCompileMinimalFunction(t *testing.T) {
	sink := irsink.NewLLVMSink()
	mod := newTestModule(sink)

	i32 := i32Type(sink)
	dataIn := []typing.NamedDataType{{Name: "x", Type: i32}}
	dataOut := []typing.NamedDataType{{Name: "y", Type: i32}}

	fn, inserted := mod.GetOrCreateFunction("identity", dataIn, dataOut, []string{"in"}, []string{"out"})
	require.True(t, inserted)

	entryInst, res := fn.InsertNode(fn.CreateEntryNodeType(), 0, 0, uuid.New())
	require.True(t, res.Success())
	fn.SetEntry(entryInst)

	exitInst, res := fn.InsertNode(fn.CreateExitNodeType(), 100, 0, uuid.New())
	require.True(t, res.Success())
	fn.AddExit(exitInst)

	res = graph.ConnectExec(entryInst, 0, exitInst, 0)
	require.True(t, res.Success())
	res = graph.ConnectData(entryInst, 0, exitInst, 0)
	require.True(t, res.Success())

	c := New(fn, sink, nodetype.NewCallCache())
	res = c.Initialize(true)
	require.True(t, res.Success(), "%+v", res.Entries)

	res = c.Compile()
	require.True(t, res.Success(), "%+v", res.Entries)

	ir := sink.WriteString()
	assert.Contains(t, ir, "test/mod.identity")
}

// TestCompileFailsOnDoubleInitialize covers spec invariant 8: Initialize
// must not run twice.
func TestCompileFailsOnDoubleInitialize(t *testing.T) {
	sink := irsink.NewLLVMSink()
	mod := newTestModule(sink)
	i32 := i32Type(sink)

	fn, _ := mod.GetOrCreateFunction("f", nil, nil, []string{"in"}, []string{"out"})
	entryInst, _ := fn.InsertNode(fn.CreateEntryNodeType(), 0, 0, uuid.New())
	fn.SetEntry(entryInst)
	exitInst, _ := fn.InsertNode(fn.CreateExitNodeType(), 0, 0, uuid.New())
	fn.AddExit(exitInst)
	graph.ConnectExec(entryInst, 0, exitInst, 0)

	_ = i32

	c := New(fn, sink, nodetype.NewCallCache())
	res := c.Initialize(false)
	require.True(t, res.Success())

	res = c.Initialize(false)
	assert.False(t, res.Success())
}

// TestCompileWithPureNode covers a data-only pure producer (a const node)
// feeding an exit, exercising resolveInputs' pure-node inline path.
func TestCompileWithPureNode(t *testing.T) {
	sink := irsink.NewLLVMSink()
	mod := newTestModule(sink)
	i32 := i32Type(sink)

	dataOut := []typing.NamedDataType{{Name: "y", Type: i32}}
	fn, _ := mod.GetOrCreateFunction("const42", nil, dataOut, []string{"in"}, []string{"out"})

	entryInst, _ := fn.InsertNode(fn.CreateEntryNodeType(), 0, 0, uuid.New())
	fn.SetEntry(entryInst)
	exitInst, _ := fn.InsertNode(fn.CreateExitNodeType(), 200, 0, uuid.New())
	fn.AddExit(exitInst)

	constInst, res := fn.InsertNode(langmodule.NewConstNodeType(sink, "i32", 42), 100, 100, uuid.New())
	require.True(t, res.Success())

	require.True(t, graph.ConnectExec(entryInst, 0, exitInst, 0).Success())
	require.True(t, graph.ConnectData(constInst, 0, exitInst, 0).Success())

	c := New(fn, sink, nodetype.NewCallCache())
	require.True(t, c.Initialize(true).Success())
	res = c.Compile()
	require.True(t, res.Success(), "%+v", res.Entries)
}

// TestValidatedFunctionNeverFailsStructuralChecksDuringCompile covers spec
// invariant 6: once validate.Function has passed, Compile never reports one
// of the structural codes validation exists to catch ahead of time.
func TestValidatedFunctionNeverFailsStructuralChecksDuringCompile(t *testing.T) {
	sink := irsink.NewLLVMSink()
	mod := newTestModule(sink)
	i32 := i32Type(sink)

	dataIn := []typing.NamedDataType{{Name: "x", Type: i32}}
	dataOut := []typing.NamedDataType{{Name: "y", Type: i32}}
	fn, _ := mod.GetOrCreateFunction("identity2", dataIn, dataOut, []string{"in"}, []string{"out"})

	entryInst, _ := fn.InsertNode(fn.CreateEntryNodeType(), 0, 0, uuid.New())
	fn.SetEntry(entryInst)
	exitInst, _ := fn.InsertNode(fn.CreateExitNodeType(), 100, 0, uuid.New())
	fn.AddExit(exitInst)
	require.True(t, graph.ConnectExec(entryInst, 0, exitInst, 0).Success())
	require.True(t, graph.ConnectData(entryInst, 0, exitInst, 0).Success())

	require.True(t, validate.Function(fn).Success())

	c := New(fn, sink, nodetype.NewCallCache())
	require.True(t, c.Initialize(true).Success())
	res := c.Compile()
	require.True(t, res.Success())

	for _, e := range res.Entries {
		assert.NotEqual(t, "E22", e.Code)
		assert.NotEqual(t, "E23", e.Code)
		assert.NotEqual(t, "E24", e.Code)
	}
}
