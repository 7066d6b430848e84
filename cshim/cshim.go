// Package cshim wraps an external C compiler invocation: CompileCToIR runs
// the compiler on C source and parses the LLVM IR it emits. No node type in
// this repository calls it. Grounded on the teacher's own external-tool
// collaborators: `bootstrap/cmd/link.go`'s linkExecutable (build an
// exec.Cmd, run it, turn a non-exit-error into a fatal report) and
// `bootstrap/cmd/compiler.go`'s compileLLVMModule (round-trip an LLVM
// module through a temp file and an external tool, then read the result
// back). CompileCToIR does the reverse of compileLLVMModule: it hands C
// source to an external compiler and parses the LLVM IR it emits, using
// the same github.com/llir/llvm library the teacher's generate package
// uses to build IR in the first place.
package cshim

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"

	"chigraph/result"
)

// CompileCToIR shells out to the C compiler at compilerPath, asking it to
// emit textual LLVM IR for source, and parses the result into an
// *ir.Module. args are passed through to the compiler ahead of the
// fixed flags this shim always adds (-S -emit-llvm); a caller wanting
// -O2 or extra include paths passes them here.
//
// The source is written to a temporary .c file rather than piped over
// stdin because most C compilers (clang, gcc) refuse to infer a
// language from stdin without an explicit -x flag, and callers may want
// to point compilerPath at either.
func CompileCToIR(compilerPath string, args []string, source string) (*ir.Module, *result.Result) {
	res := &result.Result{}

	workDir, err := os.MkdirTemp("", "chigraph-cshim-*")
	if err != nil {
		res.AddEntry(result.CodeExternalToolFailed, "failed to create temp directory for C compilation: "+err.Error(), nil)
		return nil, res
	}
	defer os.RemoveAll(workDir)

	srcPath := filepath.Join(workDir, "input.c")
	if err := os.WriteFile(srcPath, []byte(source), 0644); err != nil {
		res.AddEntry(result.CodeExternalToolFailed, "failed to write C source to temp file: "+err.Error(), nil)
		return nil, res
	}

	outPath := filepath.Join(workDir, "output.ll")

	cmdArgs := append([]string{}, args...)
	cmdArgs = append(cmdArgs, "-S", "-emit-llvm", "-o", outPath, srcPath)

	cmd := exec.Command(compilerPath, cmdArgs...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			res.AddEntry(result.CodeExternalToolFailed, "C compilation failed:\n"+stderr.String(), map[string]string{"compiler": compilerPath})
		} else {
			res.AddEntry(result.CodeExternalToolFailed, "failed to run C compiler: "+err.Error(), map[string]string{"compiler": compilerPath})
		}
		return nil, res
	}

	mod, err := asm.ParseFile(outPath)
	if err != nil {
		res.AddEntry(result.CodeExternalToolFailed, "failed to parse LLVM IR produced by C compiler: "+err.Error(), nil)
		return nil, res
	}

	return mod, res
}
