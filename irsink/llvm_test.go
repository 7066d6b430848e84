package irsink

import (
	"strings"
	"testing"
)

func TestNewFuncAppearsInWriteString(t *testing.T) {
	sink := NewLLVMSink()
	fn := sink.NewFunc("test/main.main", sink.IntType(32))
	block := sink.NewBlock(fn, "entry")
	sink.NewRet(block, sink.ConstInt(sink.IntType(32), 0))

	ir := sink.WriteString()
	if !strings.Contains(ir, "test/main.main") {
		t.Errorf("expected rendered IR to contain the mangled function name, got:\n%s", ir)
	}
}

func TestRemoveFuncDropsHalfBuiltFunction(t *testing.T) {
	sink := NewLLVMSink()
	kept := sink.NewFunc("test/main.kept", sink.IntType(32))
	sink.NewRet(sink.NewBlock(kept, "entry"), sink.ConstInt(sink.IntType(32), 0))

	discarded := sink.NewFunc("test/main.discarded", sink.IntType(32))

	sink.RemoveFunc(discarded)

	ir := sink.WriteString()
	if !strings.Contains(ir, "test/main.kept") {
		t.Error("expected surviving function to remain in the module")
	}
	if strings.Contains(ir, "test/main.discarded") {
		t.Error("expected removed function to be absent from the module")
	}
}

func TestConstIntFallsBackToI32ForNonIntType(t *testing.T) {
	sink := NewLLVMSink()
	v := sink.ConstInt(sink.FloatType(), 3)
	if v == nil {
		t.Fatal("ConstInt should still produce a value for a non-integer type")
	}
}
