package modcompile

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chigraph/chictx"
	"chigraph/graph"
	"chigraph/irsink"
	"chigraph/nodetype"
	"chigraph/typing"
)

func buildIdentityModule(t *testing.T, ctx *chictx.Context, name string) *graph.Module {
	t.Helper()

	mod, res := ctx.NewGraphModule(name)
	require.True(t, res.Success())

	i32, res := ctx.TypeFromModule(ctx.LangModule(), "i32")
	require.True(t, res.Success())

	dataIn := []typing.NamedDataType{{Name: "x", Type: i32}}
	dataOut := []typing.NamedDataType{{Name: "y", Type: i32}}
	fn, inserted := mod.GetOrCreateFunction("identity", dataIn, dataOut, []string{"in"}, []string{"out"})
	require.True(t, inserted)

	entry, res := fn.InsertNode(fn.CreateEntryNodeType(), 0, 0, uuid.New())
	require.True(t, res.Success())
	fn.SetEntry(entry)

	exit, res := fn.InsertNode(fn.CreateExitNodeType(), 100, 0, uuid.New())
	require.True(t, res.Success())
	fn.AddExit(exit)

	require.True(t, graph.ConnectExec(entry, 0, exit, 0).Success())
	require.True(t, graph.ConnectData(entry, 0, exit, 0).Success())

	return mod
}

func TestCompileModuleRegistersFunctions(t *testing.T) {
	sink := irsink.NewLLVMSink()
	ctx := chictx.New("", sink, nil)

	mod := buildIdentityModule(t, ctx, "app/main")

	res := CompileModule(mod, sink, nodetype.NewCallCache())
	require.True(t, res.Success(), "%+v", res.Entries)

	assert.Contains(t, sink.WriteString(), "app/main.identity")
}

func TestCompileWorkspaceBatchesByDependency(t *testing.T) {
	sink := irsink.NewLLVMSink()
	ctx := chictx.New("", sink, nil)

	base := buildIdentityModule(t, ctx, "app/base")
	dependent := buildIdentityModule(t, ctx, "app/dependent")
	require.True(t, dependent.AddDependency(base.FullName).Success())

	batches := DependencyBatches(ctx)
	require.True(t, len(batches) >= 2)

	res := CompileWorkspace(ctx, chictx.CompileSettings{})
	require.True(t, res.Success(), "%+v", res.Entries)
}
