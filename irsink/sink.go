// Package irsink is the concrete "IR sink" spec.md treats abstractly: the
// boundary the core compiler emits instructions through. The only
// implementation shipped here is backed by github.com/llir/llvm, the same
// library the teacher repo's generate package uses to work around the lack
// of usable native LLVM bindings (see generate/generator.go upstream). A
// different back end would implement Sink against its own builder without
// touching fncompile or nodetype.
package irsink

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Type, Value, Block, and Function alias the llir/llvm types directly
// rather than wrapping them in fresh interfaces: there is exactly one
// back end in this repo, and the llir/llvm types already have the shape
// Sink's callers need (a Block is itself an instruction-appending builder).
type (
	Type     = types.Type
	Value    = value.Value
	Block    = *ir.Block
	Function = *ir.Func
)

// Sink is the interface the function compiler (fncompile) and node-type
// lowering callbacks (nodetype) use to emit IR. It never exposes the
// underlying *ir.Module directly so that node types cannot reach outside
// the function currently being lowered.
type Sink interface {
	// NewFunc declares a function with the given mangled name (spec 4.3:
	// "<moduleFullName>.<functionName>"), i32 return type (the synthetic
	// inputexec_id selector every chigraph function returns), and one
	// parameter type per entry, in order.
	NewFunc(mangledName string, paramTypes ...Type) Function

	// NewBlock appends a fresh, empty block to fn and returns it.
	NewBlock(fn Function, name string) Block

	// NewAlloca emits a stack allocation in block and returns the pointer
	// value. Used for local variables and the pure_jumpback slot.
	NewAlloca(block Block, elem Type) Value

	NewStore(block Block, val, ptr Value)
	NewLoad(block Block, elem Type, ptr Value) Value

	NewBr(block Block, target Block)
	NewCondBr(block Block, cond Value, then, els Block)
	// NewIndirectBr terminates block with an indirect branch through addr,
	// which must have been produced by NewBlockAddress against one of
	// possible. This is the pure_jumpback re-entry mechanism (spec 4.3).
	NewIndirectBr(block Block, addr Value, possible ...Block)
	NewRet(block Block, val Value)
	NewRetVoid(block Block)

	// NewBlockAddress returns a pointer-sized value naming target's entry
	// point within fn, suitable for storing into a pure_jumpback slot.
	NewBlockAddress(fn Function, target Block) Value

	ConstInt(t Type, v int64) Value
	ConstZero(t Type) Value

	// NewBinOp emits a binary instruction (op is one of the BinOp
	// constants below) and returns its result value.
	NewBinOp(block Block, op BinOp, lhs, rhs Value) Value
	NewICmp(block Block, pred ICmpPred, lhs, rhs Value) Value

	NewCall(block Block, callee Function, args ...Value) Value

	// FuncParam returns fn's index'th parameter as a Value, for reading the
	// synthetic inputexec_id and the interleaved data input/output
	// parameters (spec 4.3).
	FuncParam(fn Function, index int) Value

	// PtrType/IntType/FloatType construct back-end type handles for the
	// lang module's primitive types.
	PtrType(elem Type) Type
	IntType(bits uint64) Type
	FloatType() Type
}

// FuncRemover is implemented by Sinks that can delete a partially-built
// function from their back-end module (spec 4.3 error semantics: "on error
// the driver erases the half-built function"). Optional because not every
// conceivable back end need support mid-build removal; fncompile type-
// asserts for it and skips cleanup if absent.
type FuncRemover interface {
	RemoveFunc(fn Function)
}

// BinOp enumerates the binary instructions node types may request.
type BinOp int

const (
	BinOpAdd BinOp = iota
	BinOpSub
	BinOpMul
	BinOpSDiv
	BinOpAnd
	BinOpOr
	BinOpXor
)

// ICmpPred enumerates integer comparison predicates.
type ICmpPred int

const (
	ICmpEQ ICmpPred = iota
	ICmpNE
	ICmpSLT
	ICmpSGT
	ICmpSLE
	ICmpSGE
)
