package chictx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chigraph/irsink"
)

// TestEmptyModule covers spec scenario S1.
func TestEmptyModule(t *testing.T) {
	ctx := New("", irsink.NewLLVMSink(), nil)

	mod, res := ctx.NewGraphModule("test/main")
	require.True(t, res.Success())

	// lang is always pre-installed, so the fresh module is the second.
	assert.Len(t, ctx.Modules(), 2)
	assert.Same(t, mod, ctx.ModuleByFullName("test/main"))
	assert.Equal(t, "test/main", mod.FullName)
	assert.Equal(t, "main", mod.ShortName())
}

// TestDependencyAddRemove covers spec scenario S2 at the Context level:
// adding then removing a dependency does not implicitly unload it.
func TestDependencyAddRemove(t *testing.T) {
	ctx := New("", irsink.NewLLVMSink(), nil)
	mod, res := ctx.NewGraphModule("test/main")
	require.True(t, res.Success())

	require.True(t, mod.AddDependency("lang").Success())
	assert.Len(t, ctx.Modules(), 2)

	require.True(t, mod.RemoveDependency("lang").Success())
	assert.Len(t, ctx.Modules(), 2)

	assert.False(t, mod.AddDependency("notarealmodule").Success())
	assert.Empty(t, mod.Dependencies())
}

func TestNewGraphModuleRejectsDuplicateName(t *testing.T) {
	ctx := New("", irsink.NewLLVMSink(), nil)
	_, res := ctx.NewGraphModule("test/main")
	require.True(t, res.Success())

	_, res = ctx.NewGraphModule("test/main")
	assert.False(t, res.Success())
}

func TestUnloadModuleKeepsDependentsEdges(t *testing.T) {
	ctx := New("", irsink.NewLLVMSink(), nil)
	base, _ := ctx.NewGraphModule("test/base")
	dependent, _ := ctx.NewGraphModule("test/dependent")
	require.True(t, dependent.AddDependency(base.FullName).Success())

	assert.True(t, ctx.UnloadModule(base.FullName))
	assert.Nil(t, ctx.ModuleByFullName(base.FullName))
	assert.Contains(t, dependent.Dependencies(), base.FullName)
}
