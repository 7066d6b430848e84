package langmodule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chigraph/irsink"
	"chigraph/nodetype"
	"chigraph/typing"
)

func TestTypeFromNamePrimitives(t *testing.T) {
	sink := irsink.NewLLVMSink()

	for _, name := range []string{TypeI32, TypeI1, TypeI8, TypeDouble} {
		dt := TypeFromName(sink, name)
		assert.True(t, dt.Valid(), "TypeFromName(%q) should be valid", name)
		assert.Equal(t, FullName, dt.OwningModule)
		assert.Equal(t, name, dt.Name)
	}
}

func TestTypeFromNameUnknownIsInvalid(t *testing.T) {
	sink := irsink.NewLLVMSink()
	dt := TypeFromName(sink, "not_a_real_type")
	assert.False(t, dt.Valid())
}

func TestPointerType(t *testing.T) {
	sink := irsink.NewLLVMSink()
	elem := TypeFromName(sink, TypeI8)
	ptr := PointerType(sink, elem)

	assert.Equal(t, FullName, ptr.OwningModule)
	assert.Equal(t, "ptr<i8>", ptr.Name)
	assert.True(t, ptr.Valid())
}

func TestIfNodeTypeSignature(t *testing.T) {
	sink := irsink.NewLLVMSink()
	nt := NewIfNodeType(sink)
	sig := nt.Signature()

	assert.False(t, sig.Pure)
	require.Len(t, sig.DataInputs, 1)
	assert.Equal(t, "condition", sig.DataInputs[0].Name)
	assert.Equal(t, []string{"in"}, sig.ExecInputs)
	assert.Equal(t, []string{"true", "false"}, sig.ExecOutputs)
}

func TestIfNodeTypeCloneIsIndependent(t *testing.T) {
	sink := irsink.NewLLVMSink()
	nt := NewIfNodeType(sink)
	owner := fakeOwner{id: "n1"}
	nt.SetOwner(owner)

	clone := nt.Clone()
	assert.Nil(t, clone.Owner(), "a freshly cloned node type has no owner yet")
	assert.Equal(t, nt.Signature(), clone.Signature())
}

func TestConstNodeTypeSignatureAndJSON(t *testing.T) {
	sink := irsink.NewLLVMSink()
	nt := NewConstNodeType(sink, TypeI32, 42)
	sig := nt.Signature()

	assert.True(t, sig.Pure)
	require.Len(t, sig.DataOutputs, 1)
	assert.Equal(t, TypeI32, sig.DataOutputs[0].Type.Name)

	raw, err := nt.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"value": 42}`, string(raw))
}

func TestConstNodeTypeLowerProducesValue(t *testing.T) {
	sink := irsink.NewLLVMSink()
	nt := NewConstNodeType(sink, TypeI32, 7)

	out, res := nt.Lower(nodetype.Activation{Sink: sink})
	require.True(t, res.Success())
	require.Len(t, out.Outputs, 1)
}

func TestStrLiteralNodeTypeSignatureAndJSON(t *testing.T) {
	sink := irsink.NewLLVMSink()
	nt := NewStrLiteralNodeType(sink, "hello")
	sig := nt.Signature()

	assert.True(t, sig.Pure)
	require.Len(t, sig.DataOutputs, 1)
	assert.Equal(t, "ptr<i8>", sig.DataOutputs[0].Type.Name)

	raw, err := nt.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"value": "hello"}`, string(raw))
}

func TestEntryNodeTypeMirrorsDeclaredInputs(t *testing.T) {
	sink := irsink.NewLLVMSink()
	dataIn := []typing.NamedDataType{{Name: "x", Type: TypeFromName(sink, TypeI32)}}
	execIn := []string{"in"}

	nt := NewEntryNodeType(dataIn, execIn)
	sig := nt.Signature()

	assert.Equal(t, dataIn, sig.DataOutputs)
	assert.Equal(t, execIn, sig.ExecOutputs)
	assert.Empty(t, sig.DataInputs)
	assert.Empty(t, sig.ExecInputs)
}

func TestExitNodeTypeMirrorsDeclaredOutputs(t *testing.T) {
	sink := irsink.NewLLVMSink()
	dataOut := []typing.NamedDataType{{Name: "y", Type: TypeFromName(sink, TypeI32)}}
	execOut := []string{"out"}

	nt := NewExitNodeType(dataOut, execOut)
	sig := nt.Signature()

	assert.Equal(t, dataOut, sig.DataInputs)
	assert.Equal(t, execOut, sig.ExecInputs)
	assert.Empty(t, sig.DataOutputs)
	assert.Empty(t, sig.ExecOutputs)
}

type fakeOwner struct{ id string }

func (f fakeOwner) InstanceID() string { return f.id }
