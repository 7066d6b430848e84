package irsink

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

// LLVMSink is the llir/llvm-backed Sink. A Context (section 4.5) owns
// exactly one of these per back-end context handle; Modules produced by it
// must not outlive the Context, matching spec section 5's shared-resource
// policy.
type LLVMSink struct {
	Module *ir.Module
}

// NewLLVMSink creates a Sink wrapping a fresh *ir.Module.
func NewLLVMSink() *LLVMSink {
	return &LLVMSink{Module: ir.NewModule()}
}

// NewFunc declares a function in the sink's module with the given mangled
// name and parameter types. Chigraph functions never return a back-end
// value directly (outputs are passed by reference, per spec 4.3); the
// return type is always i32, the synthetic activation-exec-input selector.
func (s *LLVMSink) NewFunc(mangledName string, paramTypes ...Type) Function {
	params := make([]*ir.Param, len(paramTypes))
	for i, t := range paramTypes {
		params[i] = ir.NewParam("", t)
	}
	return s.Module.NewFunc(mangledName, types.I32, params...)
}

// FuncParam returns fn's index'th declared parameter.
func (s *LLVMSink) FuncParam(fn Function, index int) Value {
	return fn.Params[index]
}

func (s *LLVMSink) NewBlock(fn Function, name string) Block {
	return fn.NewBlock(name)
}

func (s *LLVMSink) NewAlloca(block Block, elem Type) Value {
	return block.NewAlloca(elem)
}

func (s *LLVMSink) NewStore(block Block, val, ptr Value) {
	block.NewStore(val, ptr)
}

func (s *LLVMSink) NewLoad(block Block, elem Type, ptr Value) Value {
	return block.NewLoad(elem, ptr)
}

func (s *LLVMSink) NewBr(block Block, target Block) {
	block.NewBr(target)
}

func (s *LLVMSink) NewCondBr(block Block, cond Value, then, els Block) {
	block.NewCondBr(cond, then, els)
}

func (s *LLVMSink) NewIndirectBr(block Block, addr Value, possible ...Block) {
	block.NewIndirectBr(addr, possible...)
}

func (s *LLVMSink) NewRet(block Block, val Value) {
	block.NewRet(val)
}

func (s *LLVMSink) NewRetVoid(block Block) {
	block.NewRet(nil)
}

func (s *LLVMSink) NewBlockAddress(fn Function, target Block) Value {
	return constant.NewBlockAddress(fn, target)
}

func (s *LLVMSink) ConstInt(t Type, v int64) Value {
	it, ok := t.(*types.IntType)
	if !ok {
		it = types.I32
	}
	return constant.NewInt(it, v)
}

func (s *LLVMSink) ConstZero(t Type) Value {
	return constant.NewZeroInitializer(t)
}

func (s *LLVMSink) NewBinOp(block Block, op BinOp, lhs, rhs Value) Value {
	switch op {
	case BinOpAdd:
		return block.NewAdd(lhs, rhs)
	case BinOpSub:
		return block.NewSub(lhs, rhs)
	case BinOpMul:
		return block.NewMul(lhs, rhs)
	case BinOpSDiv:
		return block.NewSDiv(lhs, rhs)
	case BinOpAnd:
		return block.NewAnd(lhs, rhs)
	case BinOpOr:
		return block.NewOr(lhs, rhs)
	case BinOpXor:
		return block.NewXor(lhs, rhs)
	default:
		return block.NewAdd(lhs, rhs)
	}
}

func (s *LLVMSink) NewICmp(block Block, pred ICmpPred, lhs, rhs Value) Value {
	return block.NewICmp(icmpPred(pred), lhs, rhs)
}

func icmpPred(pred ICmpPred) enum.IPred {
	switch pred {
	case ICmpEQ:
		return enum.IPredEQ
	case ICmpNE:
		return enum.IPredNE
	case ICmpSLT:
		return enum.IPredSLT
	case ICmpSGT:
		return enum.IPredSGT
	case ICmpSLE:
		return enum.IPredSLE
	case ICmpSGE:
		return enum.IPredSGE
	default:
		return enum.IPredEQ
	}
}

func (s *LLVMSink) NewCall(block Block, callee Function, args ...Value) Value {
	return block.NewCall(callee, args...)
}

func (s *LLVMSink) PtrType(elem Type) Type {
	return types.NewPointer(elem)
}

func (s *LLVMSink) IntType(bits uint64) Type {
	return types.NewInt(bits)
}

func (s *LLVMSink) FloatType() Type {
	return types.Double
}

// RemoveFunc deletes a partially-built function from the sink's module,
// preserving the invariant (spec 4.3 error semantics / section 5
// cancellation) that the back-end module only ever contains complete
// functions.
func (s *LLVMSink) RemoveFunc(fn Function) {
	funcs := s.Module.Funcs
	for i, f := range funcs {
		if f == fn {
			s.Module.Funcs = append(funcs[:i], funcs[i+1:]...)
			return
		}
	}
}

// WriteString renders the module to LLVM IR textual form.
func (s *LLVMSink) WriteString() string {
	return s.Module.String()
}
